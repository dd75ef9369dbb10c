package config

import (
	"fmt"
	"strings"
)

// NormalizationResult captures adjustments & warnings from normalization pass.
type NormalizationResult struct{ Warnings []string }

// NormalizeConfig performs canonicalization on enumerated and bounded fields prior to default application.
// It mutates the provided config in-place and returns a result describing any coercions.
func NormalizeConfig(c *Config) (*NormalizationResult, error) {
	if c == nil {
		return nil, fmt.Errorf("config nil")
	}
	res := &NormalizationResult{}
	normalizeTheme(&c.Theme)
	normalizeSink(&c.Sink, res)
	c.History.Path = strings.TrimSpace(c.History.Path)
	if c.Normalizer.Workers < 0 {
		res.Warnings = append(res.Warnings, warnChanged("normalizer.workers", c.Normalizer.Workers, 0))
		c.Normalizer.Workers = 0
	}
	normalizeMonitoring(c.Monitoring, res)
	return res, nil
}

func normalizeTheme(t *ThemeConfig) {
	t.Directory = strings.TrimSpace(t.Directory)
	t.BaseURI = strings.TrimSpace(t.BaseURI)
	t.ParentBaseURI = strings.TrimSpace(t.ParentBaseURI)
	for i := range t.Settings {
		t.Settings[i].Origin = strings.ToLower(strings.TrimSpace(t.Settings[i].Origin))
		t.Settings[i].File = strings.TrimSpace(t.Settings[i].File)
	}
}

func normalizeSink(s *SinkConfig, res *NormalizationResult) {
	if st := NormalizeSinkType(string(s.Type)); st != "" {
		if s.Type != st {
			res.Warnings = append(res.Warnings, warnChanged("sink.type", s.Type, st))
			s.Type = st
		}
	} else if strings.TrimSpace(string(s.Type)) != "" {
		res.Warnings = append(res.Warnings, warnUnknown("sink.type", string(s.Type), string(SinkStdout)))
		s.Type = SinkStdout
	}
	if f := NormalizeOutputFormat(string(s.Format)); f != "" {
		if s.Format != f {
			res.Warnings = append(res.Warnings, warnChanged("sink.format", s.Format, f))
			s.Format = f
		}
	} else if strings.TrimSpace(string(s.Format)) != "" {
		res.Warnings = append(res.Warnings, warnUnknown("sink.format", string(s.Format), string(FormatJSON)))
		s.Format = FormatJSON
	}
	if m := NormalizeRetryBackoffMode(string(s.Retry.Mode)); m != "" {
		if s.Retry.Mode != m {
			res.Warnings = append(res.Warnings, warnChanged("sink.retry.mode", s.Retry.Mode, m))
			s.Retry.Mode = m
		}
	} else if strings.TrimSpace(string(s.Retry.Mode)) != "" {
		res.Warnings = append(res.Warnings, warnUnknown("sink.retry.mode", string(s.Retry.Mode), string(RetryBackoffLinear)))
		s.Retry.Mode = RetryBackoffLinear
	}
}

func normalizeMonitoring(cfg *MonitoringConfig, res *NormalizationResult) {
	if cfg == nil {
		return
	}
	if lvl := NormalizeLogLevel(string(cfg.Logging.Level)); lvl != "" {
		if cfg.Logging.Level != lvl {
			res.Warnings = append(res.Warnings, warnChanged("monitoring.logging.level", cfg.Logging.Level, lvl))
			cfg.Logging.Level = lvl
		}
	} else if string(cfg.Logging.Level) != "" {
		res.Warnings = append(res.Warnings, warnUnknown("monitoring.logging.level", string(cfg.Logging.Level), string(LogLevelInfo)))
		cfg.Logging.Level = LogLevelInfo
	}
	if f := NormalizeLogFormat(string(cfg.Logging.Format)); f != "" {
		if cfg.Logging.Format != f {
			res.Warnings = append(res.Warnings, warnChanged("monitoring.logging.format", cfg.Logging.Format, f))
			cfg.Logging.Format = f
		}
	} else if string(cfg.Logging.Format) != "" {
		res.Warnings = append(res.Warnings, warnUnknown("monitoring.logging.format", string(cfg.Logging.Format), string(LogFormatText)))
		cfg.Logging.Format = LogFormatText
	}
}

// normalizeEnum case-folds raw and returns the matching allowed value, or "".
func normalizeEnum[T ~string](raw string, allowed ...T) T {
	v := strings.ToLower(strings.TrimSpace(raw))
	for _, a := range allowed {
		if v == string(a) {
			return a
		}
	}
	return ""
}

func warnChanged(field string, from, to any) string {
	return fmt.Sprintf("normalized %s from '%v' to '%v'", field, from, to)
}

func warnUnknown(field, value, def string) string {
	return fmt.Sprintf("unknown %s '%s', defaulting to %s", field, value, def)
}
