package config

import "strings"

// SinkType enumerates the registration sinks.
type SinkType string

const (
	SinkStdout SinkType = "stdout"
	SinkSQLite SinkType = "sqlite"
	SinkNATS   SinkType = "nats"
)

// NormalizeSinkType returns the canonical sink type or "" when raw is unknown.
func NormalizeSinkType(raw string) SinkType {
	return normalizeEnum(raw, SinkStdout, SinkSQLite, SinkNATS)
}

// OutputFormat enumerates encodings for printed font faces.
type OutputFormat string

const (
	FormatJSON OutputFormat = "json"
	FormatYAML OutputFormat = "yaml"
)

// NormalizeOutputFormat returns the canonical format or "" when raw is unknown.
func NormalizeOutputFormat(raw string) OutputFormat {
	if strings.EqualFold(strings.TrimSpace(raw), "yml") {
		return FormatYAML
	}
	return normalizeEnum(raw, FormatJSON, FormatYAML)
}

// RetryBackoffMode enumerates backoff growth strategies for sink retries.
type RetryBackoffMode string

const (
	RetryBackoffFixed       RetryBackoffMode = "fixed"
	RetryBackoffLinear      RetryBackoffMode = "linear"
	RetryBackoffExponential RetryBackoffMode = "exponential"
)

// NormalizeRetryBackoffMode returns the canonical mode or "" when raw is unknown.
func NormalizeRetryBackoffMode(raw string) RetryBackoffMode {
	return normalizeEnum(raw, RetryBackoffFixed, RetryBackoffLinear, RetryBackoffExponential)
}
