package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Process exit codes used by the webfonts CLI.
const (
	ExitOK       = 0
	ExitGeneral  = 1
	ExitUsage    = 2
	ExitConfig   = 7
	ExitSink     = 8
	ExitInternal = 10
	ExitTheme    = 11
	ExitDaemon   = 12
)

var exitCodes = map[ErrorCategory]int{
	CategoryValidation: ExitUsage,
	CategoryConfig:     ExitConfig,
	CategoryNetwork:    ExitSink,
	CategoryRegistry:   ExitSink,
	CategoryTheme:      ExitTheme,
	CategoryFileSystem: ExitTheme,
	CategoryDaemon:     ExitDaemon,
	CategoryInternal:   ExitInternal,
}

// CLIErrorAdapter turns errors returned by commands into a message on
// stderr and a process exit code.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	stderr  io.Writer
	exit    func(int)
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{verbose: verbose, logger: logger, stderr: os.Stderr, exit: os.Exit}
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}
	we, ok := As(err)
	if !ok {
		return ExitGeneral
	}
	if code, ok := exitCodes[we.Category]; ok {
		return code
	}
	return ExitGeneral
}

// FormatError renders err for the terminal. Verbose mode prints the full
// chain; otherwise config and usage errors show only their message.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	we, ok := As(err)
	if !ok {
		return fmt.Sprintf("Error: %v", err)
	}
	if a.verbose {
		return we.Error()
	}
	if we.Category == CategoryConfig || we.Category == CategoryValidation {
		return we.Message
	}
	return fmt.Sprintf("%s: %s", we.Category, we.Message)
}

// HandleError prints err and exits with its exit code. A nil err is a no-op.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}
	if a.shouldLog(err) {
		a.logError(err)
	}
	_, _ = fmt.Fprintln(a.stderr, a.FormatError(err))
	a.exit(a.ExitCodeFor(err))
}

func (a *CLIErrorAdapter) shouldLog(err error) bool {
	if a.verbose {
		return true
	}
	we, ok := As(err)
	if !ok {
		return true
	}
	return we.Category == CategoryInternal || we.Category == CategoryDaemon || we.Severity == SeverityFatal
}

func (a *CLIErrorAdapter) logError(err error) {
	we, ok := As(err)
	if !ok {
		a.logger.Error("Unclassified error", "error", err)
		return
	}
	attrs := []slog.Attr{slog.String("category", string(we.Category))}
	if we.Retryable {
		attrs = append(attrs, slog.Bool("retryable", true))
	}
	for k, v := range we.Context {
		attrs = append(attrs, slog.Any(k, v))
	}
	a.logger.LogAttrs(context.Background(), severityLevel(we.Severity), we.Message, attrs...)
}

func severityLevel(severity ErrorSeverity) slog.Level {
	switch severity {
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
