package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"git.home.luguber.info/inful/webfonts/internal/config"
	"git.home.luguber.info/inful/webfonts/internal/eventstore"
	"git.home.luguber.info/inful/webfonts/internal/logfields"
	"git.home.luguber.info/inful/webfonts/internal/metrics"
	"git.home.luguber.info/inful/webfonts/internal/pipeline"
	"git.home.luguber.info/inful/webfonts/internal/registry"
)

// openRegistrar builds the sink named by cfg. The stdout sink writes to out.
func openRegistrar(cfg *config.Config, out io.Writer) (registry.Registrar, error) {
	switch cfg.Sink.Type {
	case config.SinkSQLite:
		return registry.NewSQLiteRegistrar(cfg.Sink.SQLite.Path)
	case config.SinkNATS:
		return registry.NewNATSRegistrar(cfg.Sink.NATS.URL, cfg.Sink.NATS.Subject, cfg.NATSTimeout())
	default:
		return registry.NewWriterRegistrar(out, registry.Format(cfg.Sink.Format)), nil
	}
}

// newMetrics returns a Prometheus registry with process collectors and a
// recorder bound to it.
func newMetrics() (*prometheus.Registry, metrics.Recorder) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, metrics.NewPrometheusRecorder(reg)
}

func overrideSink(cfg *config.Config, raw string) error {
	st := config.NormalizeSinkType(raw)
	if st == "" {
		return fmt.Errorf("unsupported sink %q", raw)
	}
	cfg.Sink.Type = st
	return config.ValidateConfig(cfg)
}

// runnerOptions opens the run history store when configured. The returned
// cleanup closes it.
func runnerOptions(cfg *config.Config, extra ...pipeline.Option) ([]pipeline.Option, func(), error) {
	opts := append([]pipeline.Option{}, extra...)
	if cfg.History.Path == "" {
		return opts, func() {}, nil
	}
	store, err := eventstore.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open run history: %w", err)
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			slog.Warn("Failed to close run history", logfields.Path(cfg.History.Path), logfields.Error(err))
		}
	}
	return append(opts, pipeline.WithEventStore(store)), cleanup, nil
}
