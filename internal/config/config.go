package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	derrors "git.home.luguber.info/inful/docmanual/internal/foundation/errors"
)

// DefaultPath is the configuration file used when --config is not given.
const DefaultPath = "docmanual.yaml"

// Config represents the application configuration.
type Config struct {
	Manual      ManualConfig  `yaml:"manual"`
	Identifiers string        `yaml:"identifiers,omitempty"` // Identifier index feeding the Reference TOC
	Templates   string        `yaml:"templates,omitempty"`   // Directory of template overrides
	Output      OutputConfig  `yaml:"output"`
	Logging     LoggingConfig `yaml:"logging"`
	Metrics     MetricsConfig `yaml:"metrics"`
	Watch       WatchConfig   `yaml:"watch"`
}

// ManualConfig lists the author-supplied manual documents. Every field is an
// optional markdown path; an empty path omits that section.
type ManualConfig struct {
	Overview     string `yaml:"overview,omitempty"`
	Installation string `yaml:"installation,omitempty"`
	Usage        string `yaml:"usage,omitempty"`
	Example      string `yaml:"example,omitempty"`
	FAQ          string `yaml:"faq,omitempty"`
	Changelog    string `yaml:"changelog,omitempty"`
}

// Paths returns the configured (non-empty) document paths.
func (m ManualConfig) Paths() []string {
	var out []string
	for _, p := range []string{m.Overview, m.Installation, m.Usage, m.Example, m.FAQ, m.Changelog} {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// OutputConfig represents output configuration.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean"` // Remove the manual/ directory before writing
}

// LoggingConfig controls the process-wide slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level,omitempty"`
	Format LogFormat `yaml:"format,omitempty"`
}

// MetricsConfig toggles the Prometheus recorder.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen,omitempty"` // watch serves /metrics here when set
}

// WatchConfig tunes the watch command.
type WatchConfig struct {
	Debounce        time.Duration `yaml:"debounce,omitempty"`
	RebuildInterval time.Duration `yaml:"rebuild_interval,omitempty"` // 0 disables periodic rebuilds
	Retry           RetryConfig   `yaml:"retry,omitempty"`
}

// RetryConfig controls how often a failed watch rebuild is retried when the
// failure is transient (a source briefly missing mid-save).
type RetryConfig struct {
	Backoff    RetryBackoff  `yaml:"backoff,omitempty"`
	Initial    time.Duration `yaml:"initial,omitempty"`
	Max        time.Duration `yaml:"max,omitempty"`
	MaxRetries int           `yaml:"max_retries,omitempty"`
}

// Load reads, expands, normalizes and validates the configuration file.
// Relative document paths are resolved against the file's directory.
func Load(configPath string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return nil, derrors.ConfigError("configuration file not found").
			WithContext("path", configPath).
			Build()
	}
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryFileSystem, "read configuration file").
			Fatal().
			WithContext("path", configPath).
			Build()
	}

	cfg, err := Parse([]byte(os.ExpandEnv(string(data))))
	if err != nil {
		return nil, err
	}

	res := Normalize(cfg, filepath.Dir(configPath))
	for _, w := range res.Warnings {
		slog.Warn("Configuration normalized", "detail", w)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML configuration and applies defaults. Unknown keys are ignored.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryConfig, "failed to unmarshal config").
			Fatal().
			Build()
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Output.Directory == "" {
		cfg.Output.Directory = "./site"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = LogLevelInfo
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = LogFormatText
	}
	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = 300 * time.Millisecond
	}
}

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return derrors.ValidationError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}

	example := Config{
		Manual: ManualConfig{
			Overview:     "README.md",
			Installation: "docs/installation.md",
			Usage:        "docs/usage.md",
			Example:      "docs/example.md",
			FAQ:          "docs/faq.md",
			Changelog:    "CHANGELOG.md",
		},
		Identifiers: "docs/identifiers.yaml",
		Output:      OutputConfig{Directory: "./site"},
		Logging:     LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
		Watch:       WatchConfig{Debounce: 300 * time.Millisecond},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "write configuration file").
			Fatal().
			WithContext("path", configPath).
			Build()
	}
	return nil
}
