package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/webfonts/cmd/webfonts/commands"
	"git.home.luguber.info/inful/webfonts/internal/errors"
	"git.home.luguber.info/inful/webfonts/internal/version"
)

func main() {
	var cli commands.CLI
	global := &commands.Global{Stdout: os.Stdout, Stderr: os.Stderr}

	ctx := kong.Parse(&cli,
		kong.Name("webfonts"),
		kong.Description("Normalize theme.json font families into registrable font faces."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(global, &cli),
	)

	if err := ctx.Run(); err != nil {
		errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
