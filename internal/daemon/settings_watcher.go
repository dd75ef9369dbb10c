package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/webfonts/internal/logfields"
)

// SettingsWatcher monitors theme settings files and triggers a debounced
// re-registration when one of them changes.
type SettingsWatcher struct {
	files        map[string]map[string]bool // directory -> watched base names
	onChange     func()
	watcher      *fsnotify.Watcher
	mu           sync.Mutex
	stopChan     chan struct{}
	triggerChan  chan struct{}
	debounceTime time.Duration
	stopped      bool
}

// NewSettingsWatcher creates a watcher for paths.
func NewSettingsWatcher(paths []string, debounce time.Duration, onChange func()) (*SettingsWatcher, error) {
	files := make(map[string]map[string]bool)
	for _, p := range paths {
		// Resolve absolute path for consistent watching
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve settings path %s: %w", p, err)
		}
		dir := filepath.Dir(abs)
		if files[dir] == nil {
			files[dir] = make(map[string]bool)
		}
		files[dir][filepath.Base(abs)] = true
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &SettingsWatcher{
		files:        files,
		onChange:     onChange,
		watcher:      watcher,
		stopChan:     make(chan struct{}),
		triggerChan:  make(chan struct{}, 1),
		debounceTime: debounce,
	}, nil
}

// Start begins monitoring the settings files.
func (sw *SettingsWatcher) Start(ctx context.Context) error {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	// Watch the directories (more reliable than watching files that editors replace)
	for dir := range sw.files {
		if err := sw.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch settings directory %s: %w", dir, err)
		}
		slog.Info("Watching theme settings", logfields.Path(dir))
	}

	go sw.watchLoop(ctx)
	go sw.debounceLoop(ctx)
	return nil
}

// Stop stops the watcher. It is safe to call more than once.
func (sw *SettingsWatcher) Stop() error {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.stopped {
		return nil
	}
	sw.stopped = true
	close(sw.stopChan)
	return sw.watcher.Close()
}

func (sw *SettingsWatcher) watches(name string) bool {
	return sw.files[filepath.Dir(name)][filepath.Base(name)]
}

func (sw *SettingsWatcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sw.stopChan:
			return
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if !sw.watches(event.Name) {
				continue
			}
			switch {
			case event.Has(fsnotify.Write), event.Has(fsnotify.Create), event.Has(fsnotify.Rename):
				slog.Debug("Theme settings change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
				sw.trigger()
			case event.Has(fsnotify.Remove):
				slog.Warn("Theme settings file removed", logfields.Path(event.Name))
			}
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Settings watcher error", logfields.Error(err))
		}
	}
}

func (sw *SettingsWatcher) debounceLoop(ctx context.Context) {
	var timer *time.Timer
	stop := func() {
		if timer != nil {
			timer.Stop()
		}
	}
	for {
		select {
		case <-ctx.Done():
			stop()
			return
		case <-sw.stopChan:
			stop()
			return
		case <-sw.triggerChan:
			stop()
			timer = time.AfterFunc(sw.debounceTime, sw.onChange)
		}
	}
}

func (sw *SettingsWatcher) trigger() {
	select {
	case sw.triggerChan <- struct{}{}:
	default:
		// Trigger already pending
	}
}
