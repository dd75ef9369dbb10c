package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	werrors "git.home.luguber.info/inful/webfonts/internal/errors"
)

// CurrentVersion is the only configuration format version understood by Load.
const CurrentVersion = "1.0"

// Config is the webfonts configuration file.
type Config struct {
	Version    string            `yaml:"version"`
	Theme      ThemeConfig       `yaml:"theme"`
	Normalizer NormalizerConfig  `yaml:"normalizer,omitempty"`
	Sink       SinkConfig        `yaml:"sink"`
	History    HistoryConfig     `yaml:"history,omitempty"`
	Daemon     *DaemonConfig     `yaml:"daemon,omitempty"`
	Monitoring *MonitoringConfig `yaml:"monitoring,omitempty"`
}

// ThemeConfig locates the active theme and the settings files declaring its fonts.
type ThemeConfig struct {
	Directory     string           `yaml:"directory"`                 // Local theme root
	BaseURI       string           `yaml:"base_uri"`                  // Public URI of the theme root
	ParentBaseURI string           `yaml:"parent_base_uri,omitempty"` // Parent theme URI for files the child does not ship
	Settings      []SettingsSource `yaml:"settings"`                  // Settings files, in origin order
}

// SettingsSource is one settings file and the origin its families belong to.
type SettingsSource struct {
	Origin string `yaml:"origin"`
	File   string `yaml:"file"` // Relative paths resolve against theme.directory
}

// NormalizerConfig tunes the font face normalizer.
type NormalizerConfig struct {
	Workers int `yaml:"workers"`
}

// SinkConfig selects where normalized faces are registered.
type SinkConfig struct {
	Type   SinkType         `yaml:"type"`
	Format OutputFormat     `yaml:"format,omitempty"` // stdout sink only
	SQLite SQLiteSinkConfig `yaml:"sqlite,omitempty"`
	NATS   NATSSinkConfig   `yaml:"nats,omitempty"`
	Retry  RetryConfig      `yaml:"retry,omitempty"`
}

// RetryConfig controls retries of registrations that failed transiently.
type RetryConfig struct {
	Mode       RetryBackoffMode `yaml:"mode"`
	Initial    string           `yaml:"initial"`
	Max        string           `yaml:"max"`
	MaxRetries int              `yaml:"max_retries"` // 0 disables retries
}

// SQLiteSinkConfig configures the SQLite registry.
type SQLiteSinkConfig struct {
	Path string `yaml:"path"`
}

// NATSSinkConfig configures the NATS publisher.
type NATSSinkConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
	Timeout string `yaml:"timeout"`
}

// HistoryConfig configures the run history event log.
type HistoryConfig struct {
	Path  string `yaml:"path"`  // SQLite file; empty disables history
	Limit int    `yaml:"limit"` // Runs kept in the projection
}

// DaemonConfig represents daemon-specific configuration
type DaemonConfig struct {
	Interval string     `yaml:"interval"` // Periodic re-registration, e.g. "15m"
	Watch    bool       `yaml:"watch"`    // Re-register when a settings file changes
	Debounce string     `yaml:"debounce"` // Quiet period before a watched change triggers a run
	HTTP     HTTPConfig `yaml:"http"`
}

// HTTPConfig represents the daemon's metrics and health listener.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// MonitoringConfig represents monitoring and observability configuration
type MonitoringConfig struct {
	Metrics MonitoringMetrics `yaml:"metrics"`
	Health  MonitoringHealth  `yaml:"health"`
	Logging MonitoringLogging `yaml:"logging"`
}

// MonitoringMetrics represents metrics configuration
type MonitoringMetrics struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// MonitoringHealth represents health check configuration
type MonitoringHealth struct {
	Path string `yaml:"path"`
}

// MonitoringLogging represents logging configuration
type MonitoringLogging struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// SettingsPaths returns the settings files with relative paths resolved
// against the theme directory.
func (c *Config) SettingsPaths() []SettingsSource {
	out := make([]SettingsSource, len(c.Theme.Settings))
	for i, s := range c.Theme.Settings {
		out[i] = s
		if !filepath.IsAbs(s.File) && c.Theme.Directory != "" {
			out[i].File = filepath.Join(c.Theme.Directory, s.File)
		}
	}
	return out
}

// Load loads a configuration file.
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	if err := loadEnvFile(); err != nil {
		// Don't fail if .env doesn't exist
		fmt.Fprintf(os.Stderr, "Note: .env file not found or couldn't be loaded: %v\n", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, werrors.ConfigNotFound(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse expands environment variables in data and decodes, normalizes,
// defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, werrors.Wrap(err, werrors.CategoryConfig, werrors.SeverityFatal, "failed to unmarshal config")
	}

	if config.Version != CurrentVersion {
		return nil, werrors.ValidationFailed("version",
			fmt.Sprintf("unsupported configuration version: %s (expected %s)", config.Version, CurrentVersion))
	}

	// Normalization pass (case-fold enumerations, bounds, early coercions)
	if nres, nerr := NormalizeConfig(&config); nerr != nil {
		return nil, fmt.Errorf("normalize: %w", nerr)
	} else if len(nres.Warnings) > 0 {
		for _, w := range nres.Warnings {
			fmt.Fprintf(os.Stderr, "config normalization: %s\n", w)
		}
	}

	// Apply defaults (after normalization so canonical values drive defaults)
	applyDefaults(&config)

	if err := ValidateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	exampleConfig := Config{
		Version: CurrentVersion,
		Theme: ThemeConfig{
			Directory: "./wp-content/themes/mytheme",
			BaseURI:   "https://example.com/wp-content/themes/mytheme",
			Settings: []SettingsSource{
				{Origin: "theme", File: "theme.json"},
			},
		},
		Normalizer: NormalizerConfig{Workers: 1},
		Sink: SinkConfig{
			Type:   SinkSQLite,
			Format: FormatJSON,
			SQLite: SQLiteSinkConfig{Path: "./webfonts.db"},
			NATS: NATSSinkConfig{
				URL:     "${NATS_URL}",
				Subject: "webfonts.faces",
				Timeout: "5s",
			},
			Retry: RetryConfig{Mode: RetryBackoffLinear, Initial: "1s", Max: "30s", MaxRetries: 2},
		},
		History: HistoryConfig{Path: "./webfonts-history.db", Limit: 50},
		Daemon: &DaemonConfig{
			Interval: "15m",
			Watch:    true,
			Debounce: "2s",
			HTTP:     HTTPConfig{Addr: ":9465"},
		},
		Monitoring: &MonitoringConfig{
			Metrics: MonitoringMetrics{Enabled: true, Path: "/metrics"},
			Health:  MonitoringHealth{Path: "/health"},
			Logging: MonitoringLogging{Level: LogLevelInfo, Format: LogFormatText},
		},
	}

	data, err := yaml.Marshal(&exampleConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal example config: %w", err)
	}

	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	// #nosec G306 -- example configuration is not sensitive
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
