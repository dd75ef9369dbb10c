package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/webfonts/internal/registry"
	"git.home.luguber.info/inful/webfonts/internal/webfonts"
)

// ListCmd implements the 'list' command.
type ListCmd struct {
	Format   string `short:"f" help:"Output format (table, json, yaml)" default:"table" enum:"table,json,yaml"`
	Database string `short:"d" help:"SQLite registry path; defaults to sink.sqlite.path"`
}

func (l *ListCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	path := cfg.Sink.SQLite.Path
	if l.Database != "" {
		path = l.Database
	}

	store, err := registry.NewSQLiteRegistrar(path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	faces, err := store.List(context.Background())
	if err != nil {
		return err
	}

	if l.Format != "table" {
		out := make([]webfonts.FontFace, len(faces))
		for i, f := range faces {
			out[i] = f.Face
		}
		return registry.Encode(g.Stdout, registry.Format(l.Format), out)
	}

	tw := tabwriter.NewWriter(g.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFAMILY\tWEIGHT\tSTYLE\tPROVIDER\tRUN\tREGISTERED")
	for _, f := range faces {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			f.ID, f.FontFamily, f.Face.StringValue("font-weight"), f.Face.StringValue("font-style"),
			f.Provider, f.RunID, f.RegisteredAt.UTC().Format(time.RFC3339))
	}
	return tw.Flush()
}
