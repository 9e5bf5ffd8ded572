package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"rollcall/internal/fuzzy"
	"rollcall/internal/roster"
)

// DefaultPath is the config file read when --config is not given.
const DefaultPath = "rollcall.yaml"

// Config holds all rollcall configuration.
type Config struct {
	// Record source
	Source SourceConfig `yaml:"source"`

	// Name search
	Search SearchConfig `yaml:"search"`

	// Host bridge
	Host HostConfig `yaml:"host"`

	// Terminal picker
	UI UIConfig `yaml:"ui"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// SourceConfig configures where records come from.
type SourceConfig struct {
	Endpoint string `yaml:"endpoint"`
	Timeout  string `yaml:"timeout"`
}

// SearchConfig configures the name matcher.
type SearchConfig struct {
	Matcher   string  `yaml:"matcher"`   // approximate, subsequence
	Threshold float64 `yaml:"threshold"` // approximate only
	Distance  float64 `yaml:"distance"`  // approximate only
}

// HostConfig selects the host bridge.
type HostConfig struct {
	Kind       string `yaml:"kind"` // stream, webhook
	WebhookURL string `yaml:"webhook_url"`
	Timeout    string `yaml:"timeout"`
}

// ValidHostKinds lists the supported host bridges.
var ValidHostKinds = []string{"stream", "webhook"}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			Endpoint: roster.DefaultEndpoint,
			Timeout:  "30s",
		},

		Search: SearchConfig{
			Matcher:   string(fuzzy.KindApproximate),
			Threshold: fuzzy.DefaultThreshold,
			Distance:  fuzzy.DefaultDistance,
		},

		Host: HostConfig{
			Kind:    "stream",
			Timeout: "10s",
		},

		UI: DefaultUIConfig(),

		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("ROLLCALL_ENDPOINT"); url != "" {
		c.Source.Endpoint = url
	}
	if url := os.Getenv("ROLLCALL_WEBHOOK_URL"); url != "" {
		c.Host.WebhookURL = url
		c.Host.Kind = "webhook"
	}
	if level := os.Getenv("ROLLCALL_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if theme := os.Getenv("ROLLCALL_THEME"); theme != "" {
		c.UI.Theme = theme
	}
}

// GetSourceTimeout returns the record fetch timeout as a duration.
func (c *Config) GetSourceTimeout() time.Duration {
	d, err := time.ParseDuration(c.Source.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetHostTimeout returns the webhook delivery timeout as a duration.
func (c *Config) GetHostTimeout() time.Duration {
	d, err := time.ParseDuration(c.Host.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// GetGroupField returns the configured initial group field.
func (c *Config) GetGroupField() roster.GroupField {
	f, err := roster.ParseGroupField(c.UI.GroupBy)
	if err != nil {
		return roster.GroupNone
	}
	return f
}

// NewMatcher builds the configured name matcher.
func (c *Config) NewMatcher() (fuzzy.Matcher, error) {
	return fuzzy.New(fuzzy.Kind(c.Search.Matcher), c.Search.Threshold, c.Search.Distance)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if _, err := c.NewMatcher(); err != nil {
		return err
	}
	if c.Search.Threshold < 0 || c.Search.Threshold > 1 {
		return fmt.Errorf("search threshold must be within [0, 1], got %v", c.Search.Threshold)
	}
	if c.Search.Distance < 0 {
		return fmt.Errorf("search distance must not be negative, got %v", c.Search.Distance)
	}

	if !slices.Contains(ValidHostKinds, c.Host.Kind) {
		return fmt.Errorf("invalid host kind: %s (valid: %v)", c.Host.Kind, ValidHostKinds)
	}
	if c.Host.Kind == "webhook" && c.Host.WebhookURL == "" {
		return fmt.Errorf("webhook host requires host.webhook_url (or ROLLCALL_WEBHOOK_URL)")
	}

	if _, err := roster.ParseGroupField(c.UI.GroupBy); err != nil {
		return err
	}
	if !slices.Contains(ValidThemes, c.UI.Theme) {
		return fmt.Errorf("invalid theme: %s (valid: %v)", c.UI.Theme, ValidThemes)
	}

	for _, d := range []string{c.Source.Timeout, c.Host.Timeout} {
		if d == "" {
			continue
		}
		if _, err := time.ParseDuration(d); err != nil {
			return fmt.Errorf("invalid duration %q: %w", d, err)
		}
	}

	return nil
}
