package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/webfonts/internal/config"
	"git.home.luguber.info/inful/webfonts/internal/pipeline"
)

type fakeRunner struct {
	runs   atomic.Int32
	report atomic.Pointer[pipeline.Report]
}

func (f *fakeRunner) Run(context.Context) (*pipeline.Report, error) {
	n := f.runs.Add(1)
	r := &pipeline.Report{RunID: fmt.Sprintf("run-%d", n), StartedAt: time.Now()}
	f.report.Store(r)
	return r, nil
}

func (f *fakeRunner) LastReport() *pipeline.Report { return f.report.Load() }

func daemonConfig(t *testing.T, watch bool) *config.Config {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "theme.json"), []byte("{}"), 0o600))
	return &config.Config{
		Theme: config.ThemeConfig{
			Directory: dir,
			Settings:  []config.SettingsSource{{Origin: "theme", File: "theme.json"}},
		},
		Daemon: &config.DaemonConfig{
			Interval: "1h",
			Watch:    watch,
			Debounce: "20ms",
			HTTP:     config.HTTPConfig{Addr: "127.0.0.1:0"},
		},
		Monitoring: &config.MonitoringConfig{
			Metrics: config.MonitoringMetrics{Enabled: true, Path: "/metrics"},
			Health:  config.MonitoringHealth{Path: "/health"},
		},
	}
}

func TestScheduler_RunsImmediately(t *testing.T) {
	s, err := NewScheduler()
	require.NoError(t, err)

	ran := make(chan struct{}, 1)
	id, err := s.SchedulePeriodic("test", time.Hour, true, func() {
		select {
		case ran <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, s.JobCount())

	s.Start()
	defer func() { require.NoError(t, s.Stop()) }()

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduled task did not run")
	}
}

func TestSettingsWatcher_DebouncesChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "theme.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))

	var calls atomic.Int32
	w, err := NewSettingsWatcher([]string{path}, 100*time.Millisecond, func() { calls.Add(1) })
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer func() { require.NoError(t, w.Stop()) }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o600))
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte(`{"version":2}`), 0o600))
	}

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 5*time.Second, 10*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "burst of writes triggers one run")
}

func TestSettingsWatcher_StopIsIdempotent(t *testing.T) {
	w, err := NewSettingsWatcher([]string{filepath.Join(t.TempDir(), "theme.json")}, time.Millisecond, func() {})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}

func TestHealthHandler(t *testing.T) {
	runner := &fakeRunner{}
	s := newHTTPServer(":0", daemonConfig(t, false).Monitoring, prometheus.NewRegistry(), runner)

	get := func() (*httptest.ResponseRecorder, HealthResponse) {
		rec := httptest.NewRecorder()
		s.srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		var body HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return rec, body
	}

	rec, body := get()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body.Status)
	assert.Nil(t, body.LastRun)

	runner.report.Store(&pipeline.Report{RunID: "r1", Err: errors.New("sink down")})
	rec, body = get()
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "degraded", body.Status)
	require.NotNil(t, body.LastRun)
	assert.Equal(t, "r1", body.LastRun.RunID)
	assert.Equal(t, "sink down", body.LastRun.Error)

	post := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(post, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, post.Code)

	metricsRec := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(metricsRec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, metricsRec.Code)
}

func TestDaemon_StartTriggersRunAndWatches(t *testing.T) {
	cfg := daemonConfig(t, true)
	runner := &fakeRunner{}
	d, err := New(cfg, runner, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, d.Start(ctx))

	assert.Eventually(t, func() bool { return runner.runs.Load() >= 1 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(cfg.Theme.Directory, "theme.json"), []byte(`{"version":2}`), 0o600))
	assert.Eventually(t, func() bool { return runner.runs.Load() >= 2 }, 5*time.Second, 10*time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	require.NoError(t, d.Stop(stopCtx))
}

func TestDaemon_StartFailureReleasesListener(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	cfg := daemonConfig(t, true)
	cfg.Daemon.HTTP.Addr = addr
	cfg.Theme.Settings = []config.SettingsSource{{Origin: "theme", File: filepath.Join("missing", "theme.json")}}
	d, err := New(cfg, &fakeRunner{}, nil)
	require.NoError(t, err)

	require.Error(t, d.Start(context.Background()))

	again, err := net.Listen("tcp", addr)
	require.NoError(t, err, "listener still bound after failed start")
	require.NoError(t, again.Close())
}

func TestNew_RequiresDefaults(t *testing.T) {
	_, err := New(&config.Config{}, &fakeRunner{}, nil)
	assert.Error(t, err)
}
