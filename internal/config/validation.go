package config

import (
	"fmt"
	"net/url"
	"time"

	werrors "git.home.luguber.info/inful/webfonts/internal/errors"
)

// ValidateConfig validates the complete configuration structure.
func ValidateConfig(cfg *Config) error {
	validator := newConfigurationValidator(cfg)
	return validator.validate()
}

// configurationValidator coordinates validation across all configuration domains.
type configurationValidator struct {
	config *Config
}

func newConfigurationValidator(config *Config) *configurationValidator {
	return &configurationValidator{config: config}
}

// validate performs configuration validation using domain-specific methods.
func (cv *configurationValidator) validate() error {
	if err := cv.validateTheme(); err != nil {
		return err
	}
	if err := cv.validateSink(); err != nil {
		return err
	}
	return cv.validateDaemon()
}

func (cv *configurationValidator) validateTheme() error {
	t := cv.config.Theme
	if t.BaseURI == "" {
		return werrors.ConfigRequired("theme.base_uri")
	}
	if err := validateAbsoluteURI("theme.base_uri", t.BaseURI); err != nil {
		return err
	}
	if t.ParentBaseURI != "" {
		if err := validateAbsoluteURI("theme.parent_base_uri", t.ParentBaseURI); err != nil {
			return err
		}
	}
	seen := make(map[string]bool)
	for i, s := range t.Settings {
		if s.File == "" {
			return werrors.ValidationFailed(fmt.Sprintf("theme.settings[%d].file", i), "file cannot be empty")
		}
		if seen[s.File] {
			return werrors.ValidationFailed(fmt.Sprintf("theme.settings[%d].file", i), "duplicate settings file "+s.File)
		}
		seen[s.File] = true
	}
	return nil
}

func (cv *configurationValidator) validateSink() error {
	s := cv.config.Sink
	switch s.Type {
	case SinkStdout, SinkSQLite:
	case SinkNATS:
		if s.NATS.URL == "" {
			return werrors.ConfigRequired("sink.nats.url")
		}
		if s.NATS.Subject == "" {
			return werrors.ConfigRequired("sink.nats.subject")
		}
	default:
		return werrors.ValidationFailed("sink.type", fmt.Sprintf("unsupported sink type %q", s.Type))
	}
	if _, err := time.ParseDuration(s.NATS.Timeout); err != nil {
		return werrors.ValidationFailed("sink.nats.timeout", err.Error())
	}
	if _, err := time.ParseDuration(s.Retry.Initial); err != nil {
		return werrors.ValidationFailed("sink.retry.initial", err.Error())
	}
	if _, err := time.ParseDuration(s.Retry.Max); err != nil {
		return werrors.ValidationFailed("sink.retry.max", err.Error())
	}
	if s.Retry.MaxRetries < 0 {
		return werrors.ValidationFailed("sink.retry.max_retries", "cannot be negative")
	}
	return nil
}

func (cv *configurationValidator) validateDaemon() error {
	d := cv.config.Daemon
	if d == nil {
		return nil
	}
	interval, err := time.ParseDuration(d.Interval)
	if err != nil {
		return werrors.ValidationFailed("daemon.interval", err.Error())
	}
	if interval <= 0 {
		return werrors.ValidationFailed("daemon.interval", "must be positive")
	}
	if _, err := time.ParseDuration(d.Debounce); err != nil {
		return werrors.ValidationFailed("daemon.debounce", err.Error())
	}
	return nil
}

func validateAbsoluteURI(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return werrors.ValidationFailed(field, err.Error())
	}
	if u.Scheme == "" || u.Host == "" {
		return werrors.ValidationFailed(field, "must be an absolute URI")
	}
	return nil
}

// NATSTimeout returns the parsed NATS publish timeout.
func (c *Config) NATSTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Sink.NATS.Timeout)
	return d
}

// RetryDelays returns the parsed initial and maximum retry delays.
func (c *Config) RetryDelays() (initial, maxDelay time.Duration) {
	initial, _ = time.ParseDuration(c.Sink.Retry.Initial)
	maxDelay, _ = time.ParseDuration(c.Sink.Retry.Max)
	return initial, maxDelay
}

// DaemonInterval returns the parsed re-registration interval.
func (c *Config) DaemonInterval() time.Duration {
	if c.Daemon == nil {
		return 0
	}
	d, _ := time.ParseDuration(c.Daemon.Interval)
	return d
}

// DaemonDebounce returns the parsed watch debounce.
func (c *Config) DaemonDebounce() time.Duration {
	if c.Daemon == nil {
		return 0
	}
	d, _ := time.ParseDuration(c.Daemon.Debounce)
	return d
}
