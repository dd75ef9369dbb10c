// Package commands implements the webfonts subcommands.
package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/webfonts/internal/config"
	"git.home.luguber.info/inful/webfonts/internal/observability"
)

// Global carries the output streams shared by all commands.
type Global struct {
	Stdout io.Writer
	Stderr io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"webfonts.yaml" env:"WEBFONTS_CONFIG"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Init      InitCmd      `cmd:"" help:"Initialize a new configuration file"`
	Normalize NormalizeCmd `cmd:"" help:"Print the normalized font faces without registering them"`
	Register  RegisterCmd  `cmd:"" help:"Normalize font faces and hand them to the configured sink"`
	List      ListCmd      `cmd:"" help:"List font faces stored in the SQLite registry"`
	History   HistoryCmd   `cmd:"" help:"Show recent registration runs"`
	Daemon    DaemonCmd    `cmd:"" help:"Keep registrations current on a schedule and on theme changes"`
}

// AfterApply runs after flag parsing; sets up logging until a configuration
// file supplies its own settings.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(observability.NewLogger(os.Stderr, level, false))
	return nil
}

// loadConfig loads the configuration file and applies its logging settings.
func (c *CLI) loadConfig(g *Global) (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	configureLogging(g.Stderr, cfg.Monitoring, c.Verbose)
	return cfg, nil
}

func configureLogging(w io.Writer, mon *config.MonitoringConfig, verbose bool) {
	if mon == nil {
		return
	}
	level := slog.LevelInfo
	switch mon.Logging.Level {
	case config.LogLevelDebug:
		level = slog.LevelDebug
	case config.LogLevelWarn:
		level = slog.LevelWarn
	case config.LogLevelError:
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(observability.NewLogger(w, level, mon.Logging.Format == config.LogFormatJSON))
}
