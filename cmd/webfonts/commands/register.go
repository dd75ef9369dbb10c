package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/webfonts/internal/logfields"
	"git.home.luguber.info/inful/webfonts/internal/pipeline"
)

// RegisterCmd implements the 'register' command.
type RegisterCmd struct {
	Sink string `short:"s" help:"Override sink.type (stdout, sqlite, nats)"`
}

func (r *RegisterCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	if r.Sink != "" {
		if err := overrideSink(cfg, r.Sink); err != nil {
			return err
		}
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

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts, cleanup, err := runnerOptions(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := pipeline.NewRunner(cfg, registrar, opts...).Run(ctx)
	if err != nil {
		return err
	}
	if registrar.Name() != "stdout" {
		fmt.Fprintf(g.Stdout, "registered %d font face(s) with %s (run %s, %d skipped, %d diagnostic(s))\n",
			report.Result.Accepted, registrar.Name(), report.RunID, report.Result.Skipped, len(report.Diagnostics))
	}
	return nil
}
