package config

// LogLevel enumerates supported logging levels (mapped to slog levels by the CLI).
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// NormalizeLogLevel returns the canonical level or "" when raw is unknown.
func NormalizeLogLevel(raw string) LogLevel {
	return normalizeEnum(raw, LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError)
}

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

// NormalizeLogFormat returns the canonical format or "" when raw is unknown.
func NormalizeLogFormat(raw string) LogFormat {
	return normalizeEnum(raw, LogFormatJSON, LogFormatText)
}
