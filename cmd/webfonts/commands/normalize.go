package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/webfonts/internal/config"
	"git.home.luguber.info/inful/webfonts/internal/pipeline"
	"git.home.luguber.info/inful/webfonts/internal/registry"
)

// NormalizeCmd implements the 'normalize' command.
type NormalizeCmd struct {
	Format  string `short:"f" help:"Output format (json, yaml); defaults to sink.format"`
	Workers int    `short:"w" help:"Families normalized in parallel; defaults to normalizer.workers"`
	Strict  bool   `help:"Fail when any diagnostic is reported"`
}

func (n *NormalizeCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	format := cfg.Sink.Format
	if n.Format != "" {
		if format = config.NormalizeOutputFormat(n.Format); format == "" {
			return fmt.Errorf("unsupported output format %q", n.Format)
		}
	}
	if n.Workers > 0 {
		cfg.Normalizer.Workers = n.Workers
	}

	ctx := context.Background()
	report, err := pipeline.NewRunner(cfg, nil, pipeline.WithoutDiagnosticLog()).Normalize(ctx)
	if err != nil {
		return err
	}
	out := registry.NewWriterRegistrar(g.Stdout, registry.Format(format))
	if _, err := out.Register(ctx, report.RunID, report.Faces); err != nil {
		return err
	}
	for _, d := range report.Diagnostics {
		fmt.Fprintln(g.Stderr, d.String())
	}
	if n.Strict && len(report.Diagnostics) > 0 {
		return fmt.Errorf("%d diagnostic(s) reported", len(report.Diagnostics))
	}
	return nil
}
