package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/webfonts/internal/daemon"
	"git.home.luguber.info/inful/webfonts/internal/logfields"
	"git.home.luguber.info/inful/webfonts/internal/pipeline"
)

// DaemonCmd implements the 'daemon' command.
type DaemonCmd struct {
	Addr string `help:"Override daemon.http.addr"`
}

func (d *DaemonCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	if d.Addr != "" {
		cfg.Daemon.HTTP.Addr = d.Addr
	}

	registrar, err := openRegistrar(cfg, g.Stdout)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := registrar.Close(); cerr != nil {
			slog.Warn("Failed to close registrar", logfields.Sink(registrar.Name()), logfields.Error(cerr))
		}
	}()

	reg, recorder := newMetrics()
	opts, cleanup, err := runnerOptions(cfg, pipeline.WithRecorder(recorder))
	if err != nil {
		return err
	}
	defer cleanup()
	runner := pipeline.NewRunner(cfg, registrar, opts...)

	dmn, err := daemon.New(cfg, runner, reg)
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	slog.Info("Starting daemon mode", logfields.Sink(registrar.Name()))
	if err := dmn.Run(ctx); err != nil {
		return fmt.Errorf("daemon error: %w", err)
	}
	slog.Info("Daemon stopped successfully")
	return nil
}
