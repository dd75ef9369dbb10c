package commands

import (
	"fmt"
	"path/filepath"

	"git.home.luguber.info/inful/webfonts/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force  bool   `help:"Overwrite existing configuration file"`
	Output string `short:"o" name:"output" help:"Output directory for generated config file"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	// If the user specified an output directory, place the config there as "webfonts.yaml".
	path := root.Config
	if i.Output != "" {
		path = filepath.Join(i.Output, "webfonts.yaml")
	}
	fmt.Fprintf(g.Stdout, "Writing configuration to %s\n", path)
	if err := config.Init(path, i.Force); err != nil {
		return err
	}
	fmt.Fprintln(g.Stdout, "initialized successfully")
	return nil
}
