package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docagent/internal/foundation/errors"
)

// CurrentVersion is the configuration format version written by Init.
const CurrentVersion = "1.0"

// Config is the docagent configuration file.
type Config struct {
	Version       string              `yaml:"version"`
	Generator     GeneratorConfig     `yaml:"generator"`
	Metadata      MetadataConfig      `yaml:"metadata"`
	Catalog       CatalogConfig       `yaml:"catalog"`
	Server        ServerConfig        `yaml:"server"`
	Sessions      SessionsConfig      `yaml:"sessions"`
	Journal       JournalConfig       `yaml:"journal"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Export        ExportConfig        `yaml:"export"`
	Retry         RetryConfig         `yaml:"retry"`
}

// GeneratorConfig selects and configures the content generation provider.
type GeneratorConfig struct {
	Type     GeneratorType `yaml:"type"`               // http|llm|sample
	Endpoint string        `yaml:"endpoint,omitempty"` // Base URL of the http provider
	Token    string        `yaml:"token,omitempty"`    // Bearer token (http) or API key (llm)
	Model    string        `yaml:"model,omitempty"`    // Chat model name (llm)
	BaseURL  string        `yaml:"base_url,omitempty"` // OpenAI-compatible base URL (llm)
	Timeout  string        `yaml:"timeout"`            // Per-request timeout, e.g. "30s"
}

// MetadataConfig selects the repository metadata provider.
type MetadataConfig struct {
	Type   MetadataType `yaml:"type"` // auto|github|gitlab|forgejo|git|none
	APIURL string       `yaml:"api_url,omitempty"`
	Token  string       `yaml:"token,omitempty"`
}

// CatalogConfig points at an optional catalog file; empty uses the built-in catalog.
type CatalogConfig struct {
	Path string `yaml:"path,omitempty"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Address     string `yaml:"address"`
	Metrics     bool   `yaml:"metrics"`
	MetricsPath string `yaml:"metrics_path"`
}

// SessionsConfig controls idle session reaping.
type SessionsConfig struct {
	IdleTTL      string `yaml:"idle_ttl"`
	ReapInterval string `yaml:"reap_interval"`
}

// JournalConfig configures the lifecycle event journal. An empty path disables it.
type JournalConfig struct {
	Path string `yaml:"path,omitempty"`
}

// NotificationsConfig configures settlement notifications. An empty URL disables them.
type NotificationsConfig struct {
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject"`
	Stream  string `yaml:"stream"`
}

// ExportConfig configures document export.
type ExportConfig struct {
	Directory string `yaml:"directory"`
}

// RetryConfig configures caller-side retries of failed generations.
type RetryConfig struct {
	Backoff      RetryBackoffMode `yaml:"backoff"`
	InitialDelay string           `yaml:"initial_delay"`
	MaxDelay     string           `yaml:"max_delay"`
	MaxRetries   int              `yaml:"max_retries"`
}

// TimeoutDuration returns the parsed generation timeout.
func (g GeneratorConfig) TimeoutDuration() time.Duration {
	return parseDuration(g.Timeout, DefaultGenerationTimeout)
}

// IdleTTLDuration returns the parsed idle session lifetime.
func (s SessionsConfig) IdleTTLDuration() time.Duration {
	return parseDuration(s.IdleTTL, DefaultIdleTTL)
}

// ReapIntervalDuration returns the parsed reaper interval.
func (s SessionsConfig) ReapIntervalDuration() time.Duration {
	return parseDuration(s.ReapInterval, DefaultReapInterval)
}

// InitialDelayDuration returns the parsed initial retry delay.
func (r RetryConfig) InitialDelayDuration() time.Duration {
	return parseDuration(r.InitialDelay, DefaultRetryInitialDelay)
}

// MaxDelayDuration returns the parsed maximum retry delay.
func (r RetryConfig) MaxDelayDuration() time.Duration {
	return parseDuration(r.MaxDelay, DefaultRetryMaxDelay)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	_ = applyDefaults(cfg)
	return cfg
}

// Load reads, expands, defaults and validates the configuration at path.
// An empty path yields Default once environment files are loaded.
func Load(configPath string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	if configPath == "" {
		return Default(), nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, errors.ConfigError("configuration file not found").
			WithContext("path", configPath).
			Build()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			WithContext("path", configPath).
			Build()
	}

	cfg, err := Parse(data)
	if err != nil {
		if ce, ok := errors.AsClassified(err); ok {
			return nil, ce.WithContext("path", configPath)
		}
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML configuration after expanding ${VAR} references.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").Build()
	}

	// Defaults run after parsing so canonical values drive them.
	if err := applyDefaults(&cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to apply defaults").Build()
	}

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}

	example := Default()
	example.Generator = GeneratorConfig{
		Type:     GeneratorHTTP,
		Endpoint: "http://localhost:3001/api",
		Token:    "${DOCAGENT_PROVIDER_TOKEN}",
		Timeout:  "30s",
	}
	example.Metadata = MetadataConfig{Type: MetadataAuto, Token: "${GITHUB_TOKEN}"}
	example.Journal.Path = "./docagent-journal.db"

	data, err := yaml.Marshal(example)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal example config").Build()
	}

	header := fmt.Sprintf("# docagent configuration (version %s)\n# Values of the form ${VAR} are expanded from the environment.\n", CurrentVersion)
	if err := os.WriteFile(configPath, append([]byte(header), data...), 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").
			WithContext("path", configPath).
			Build()
	}
	return nil
}
