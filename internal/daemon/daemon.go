// Package daemon keeps font face registrations current: it re-registers on a
// schedule and when theme settings change, and serves metrics and health.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/webfonts/internal/config"
	"git.home.luguber.info/inful/webfonts/internal/logfields"
	"git.home.luguber.info/inful/webfonts/internal/pipeline"
)

const periodicJobName = "periodic-registration"

// Runner is the registration run the daemon triggers.
type Runner interface {
	Run(ctx context.Context) (*pipeline.Report, error)
	LastReport() *pipeline.Report
}

// Daemon owns the scheduler, the settings watcher and the HTTP server.
type Daemon struct {
	cfg       *config.Config
	runner    Runner
	scheduler *Scheduler
	watcher   *SettingsWatcher
	server    *httpServer
}

// New builds a daemon. reg is the Prometheus registry served on the metrics
// path; it may be nil when metrics are disabled.
func New(cfg *config.Config, runner Runner, reg *prometheus.Registry) (*Daemon, error) {
	if cfg.Daemon == nil || cfg.Monitoring == nil {
		return nil, errors.New("daemon: configuration defaults not applied")
	}
	scheduler, err := NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Daemon{
		cfg:       cfg,
		runner:    runner,
		scheduler: scheduler,
		server:    newHTTPServer(cfg.Daemon.HTTP.Addr, cfg.Monitoring, reg, runner),
	}, nil
}

// Run starts the daemon and blocks until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return d.Stop(stopCtx)
}

// Start launches the HTTP server, the periodic job (which fires immediately)
// and, if enabled, the settings watcher. When a later step fails, whatever
// already started is stopped again.
func (d *Daemon) Start(ctx context.Context) error {
	if err := d.server.start(ctx); err != nil {
		return err
	}
	if err := d.startJobs(ctx); err != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if stopErr := d.Stop(stopCtx); stopErr != nil {
			slog.Warn("Daemon cleanup after failed start", logfields.Error(stopErr))
		}
		return err
	}

	slog.Info("Daemon started",
		slog.Duration("interval", d.cfg.DaemonInterval()),
		slog.Bool("watch", d.cfg.Daemon.Watch))
	return nil
}

func (d *Daemon) startJobs(ctx context.Context) error {
	trigger := func(reason string) func() {
		return func() { d.trigger(ctx, reason) }
	}

	if _, err := d.scheduler.SchedulePeriodic(periodicJobName, d.cfg.DaemonInterval(), true, trigger("schedule")); err != nil {
		return err
	}
	d.scheduler.Start()

	if d.cfg.Daemon.Watch {
		paths := make([]string, 0, len(d.cfg.Theme.Settings))
		for _, s := range d.cfg.SettingsPaths() {
			paths = append(paths, s.File)
		}
		w, err := NewSettingsWatcher(paths, d.cfg.DaemonDebounce(), trigger("settings-changed"))
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			_ = w.Stop()
			return err
		}
		d.watcher = w
	}
	return nil
}

// Stop shuts everything down and joins any errors.
func (d *Daemon) Stop(ctx context.Context) error {
	var errs []error
	if d.watcher != nil {
		if err := d.watcher.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("settings watcher: %w", err))
		}
	}
	if err := d.scheduler.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("scheduler: %w", err))
	}
	if err := d.server.stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http server: %w", err))
	}
	slog.Info("Daemon stopped")
	return errors.Join(errs...)
}

func (d *Daemon) trigger(ctx context.Context, reason string) {
	if ctx.Err() != nil {
		return
	}
	slog.Info("Registration triggered", logfields.JobName(reason))
	// The runner logs failures with the run context.
	_, _ = d.runner.Run(ctx)
}
