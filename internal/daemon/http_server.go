package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/webfonts/internal/config"
	"git.home.luguber.info/inful/webfonts/internal/logfields"
	"git.home.luguber.info/inful/webfonts/internal/metrics"
	"git.home.luguber.info/inful/webfonts/internal/pipeline"
	"git.home.luguber.info/inful/webfonts/internal/version"
)

// HealthResponse is the body served on the health path.
type HealthResponse struct {
	Status        string     `json:"status"`
	Timestamp     time.Time  `json:"timestamp"`
	Version       string     `json:"version"`
	UptimeSeconds float64    `json:"uptime_seconds"`
	LastRun       *RunStatus `json:"last_run,omitempty"`
}

// RunStatus summarizes the latest registration run.
type RunStatus struct {
	RunID       string    `json:"run_id"`
	StartedAt   time.Time `json:"started_at"`
	DurationMS  int64     `json:"duration_ms"`
	Faces       int       `json:"faces"`
	Diagnostics int       `json:"diagnostics"`
	Error       string    `json:"error,omitempty"`
}

type reportSource interface {
	LastReport() *pipeline.Report
}

// httpServer serves metrics and health.
type httpServer struct {
	srv     *http.Server
	reports reportSource
	started time.Time
}

func newHTTPServer(addr string, mon *config.MonitoringConfig, reg *prometheus.Registry, reports reportSource) *httpServer {
	s := &httpServer{reports: reports, started: time.Now()}
	mux := http.NewServeMux()
	mux.HandleFunc(mon.Health.Path, s.handleHealth)
	if mon.Metrics.Enabled && reg != nil {
		mux.Handle(mon.Metrics.Path, metrics.HTTPHandler(reg))
	}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// start binds the listener synchronously so address errors surface here.
func (s *httpServer) start(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", s.srv.Addr, err)
	}
	slog.Info("HTTP server listening", logfields.URL(ln.Addr().String()))
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", logfields.Error(err))
		}
	}()
	return nil
}

func (s *httpServer) stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *httpServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	health := HealthResponse{
		Status:        "healthy",
		Timestamp:     time.Now().UTC(),
		Version:       version.Version,
		UptimeSeconds: time.Since(s.started).Seconds(),
	}
	code := http.StatusOK
	if report := s.reports.LastReport(); report != nil {
		health.LastRun = &RunStatus{
			RunID:       report.RunID,
			StartedAt:   report.StartedAt.UTC(),
			DurationMS:  report.Duration.Milliseconds(),
			Faces:       len(report.Faces),
			Diagnostics: len(report.Diagnostics),
		}
		if report.Err != nil {
			health.Status = "degraded"
			health.LastRun.Error = report.Err.Error()
			code = http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(health); err != nil {
		slog.Error("Failed to write health response", logfields.Error(err))
	}
}
