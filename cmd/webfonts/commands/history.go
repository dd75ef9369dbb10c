package commands

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/webfonts/internal/eventstore"
	"git.home.luguber.info/inful/webfonts/internal/registry"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Format string `short:"f" help:"Output format (table, json, yaml)" default:"table" enum:"table,json,yaml"`
	Limit  int    `short:"n" help:"Number of runs to show; defaults to history.limit"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	if cfg.History.Path == "" {
		return errors.New("run history is disabled (set history.path)")
	}
	limit := cfg.History.Limit
	if h.Limit > 0 {
		limit = h.Limit
	}

	store, err := eventstore.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	projection := eventstore.NewRunHistoryProjection(store, limit)
	if err := projection.Rebuild(context.Background()); err != nil {
		return err
	}
	runs := projection.GetHistory()

	if h.Format != "table" {
		return registry.Encode(g.Stdout, registry.Format(h.Format), runs)
	}

	tw := tabwriter.NewWriter(g.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTATUS\tSINK\tSTARTED\tDURATION\tFACES\tDIAGNOSTICS\tACCEPTED\tSKIPPED\tERROR")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			r.RunID, r.Status, r.Sink, r.StartedAt.UTC().Format(time.RFC3339), r.Duration.Round(time.Millisecond),
			r.TotalFaces(), r.Diagnostics, r.Accepted, r.Skipped, r.ErrorMessage)
	}
	return tw.Flush()
}
