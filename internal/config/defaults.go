package config

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config)
	Domain() string
}

// ThemeDefaultApplier handles theme settings defaults.
type ThemeDefaultApplier struct{}

func (ThemeDefaultApplier) Domain() string { return "theme" }

func (ThemeDefaultApplier) ApplyDefaults(cfg *Config) {
	if len(cfg.Theme.Settings) == 0 {
		cfg.Theme.Settings = []SettingsSource{{Origin: "theme", File: "theme.json"}}
	}
	for i := range cfg.Theme.Settings {
		if cfg.Theme.Settings[i].Origin == "" {
			cfg.Theme.Settings[i].Origin = "theme"
		}
	}
	if cfg.Normalizer.Workers == 0 {
		cfg.Normalizer.Workers = 1
	}
}

// SinkDefaultApplier handles registration sink defaults.
type SinkDefaultApplier struct{}

func (SinkDefaultApplier) Domain() string { return "sink" }

func (SinkDefaultApplier) ApplyDefaults(cfg *Config) {
	if cfg.Sink.Type == "" {
		cfg.Sink.Type = SinkStdout
	}
	if cfg.Sink.Format == "" {
		cfg.Sink.Format = FormatJSON
	}
	if cfg.Sink.SQLite.Path == "" {
		cfg.Sink.SQLite.Path = "webfonts.db"
	}
	if cfg.Sink.NATS.Subject == "" {
		cfg.Sink.NATS.Subject = "webfonts.faces"
	}
	if cfg.Sink.NATS.Timeout == "" {
		cfg.Sink.NATS.Timeout = "5s"
	}
	if cfg.Sink.Retry.Mode == "" {
		cfg.Sink.Retry.Mode = RetryBackoffLinear
	}
	if cfg.Sink.Retry.Initial == "" {
		cfg.Sink.Retry.Initial = "1s"
	}
	if cfg.Sink.Retry.Max == "" {
		cfg.Sink.Retry.Max = "30s"
	}
}

// HistoryDefaultApplier handles run history defaults.
type HistoryDefaultApplier struct{}

func (HistoryDefaultApplier) Domain() string { return "history" }

func (HistoryDefaultApplier) ApplyDefaults(cfg *Config) {
	if cfg.History.Limit <= 0 {
		cfg.History.Limit = 50
	}
}

// DaemonDefaultApplier handles daemon defaults.
type DaemonDefaultApplier struct{}

func (DaemonDefaultApplier) Domain() string { return "daemon" }

func (DaemonDefaultApplier) ApplyDefaults(cfg *Config) {
	if cfg.Daemon == nil {
		cfg.Daemon = &DaemonConfig{}
	}
	if cfg.Daemon.Interval == "" {
		cfg.Daemon.Interval = "15m"
	}
	if cfg.Daemon.Debounce == "" {
		cfg.Daemon.Debounce = "2s"
	}
	if cfg.Daemon.HTTP.Addr == "" {
		cfg.Daemon.HTTP.Addr = ":9465"
	}
}

// MonitoringDefaultApplier handles monitoring defaults.
type MonitoringDefaultApplier struct{}

func (MonitoringDefaultApplier) Domain() string { return "monitoring" }

func (MonitoringDefaultApplier) ApplyDefaults(cfg *Config) {
	if cfg.Monitoring == nil {
		cfg.Monitoring = &MonitoringConfig{}
	}
	m := cfg.Monitoring
	if m.Metrics.Path == "" {
		m.Metrics.Path = "/metrics"
	}
	if m.Health.Path == "" {
		m.Health.Path = "/health"
	}
	if m.Logging.Level == "" {
		m.Logging.Level = LogLevelInfo
	}
	if m.Logging.Format == "" {
		m.Logging.Format = LogFormatText
	}
}

var defaultAppliers = []DefaultApplier{
	ThemeDefaultApplier{},
	SinkDefaultApplier{},
	HistoryDefaultApplier{},
	DaemonDefaultApplier{},
	MonitoringDefaultApplier{},
}

// applyDefaults applies default values to configuration
func applyDefaults(cfg *Config) {
	for _, a := range defaultAppliers {
		a.ApplyDefaults(cfg)
	}
}
