// Package config handles configuration loading and validation for linkgenie.
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/riccilnl/linkgenie/internal/core/enhance"
	"github.com/riccilnl/linkgenie/internal/core/styles"
)

// DefaultBaseURL is the backend address used when none is configured.
const DefaultBaseURL = "http://localhost:8080"

// DefaultListFormat is the row template used by `linkgenie ls`.
const DefaultListFormat = `{{ .ID }}	{{ .Title | default .URL | truncate 60 }}	{{ join .TagNames "," }}`

// Config holds the application configuration.
type Config struct {
	API           APIConfig          `yaml:"api"`
	Enhance       EnhanceConfig      `yaml:"enhance"`
	Cache         CacheConfig        `yaml:"cache"`
	Database      DatabaseConfig     `yaml:"database"`
	Notifications NotificationConfig `yaml:"notifications"`
	UI            UIConfig           `yaml:"ui"`
	DataDir       string             `yaml:"-"` // set by caller, not from config file
}

// APIConfig describes how to reach the bookmark backend.
type APIConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Token     string        `yaml:"token"`
	Timeout   time.Duration `yaml:"timeout"`
	RateLimit float64       `yaml:"rate_limit"` // requests per second, 0 disables limiting
	Burst     int           `yaml:"burst"`
}

// EnhanceConfig tunes the AI enhancement polling loop.
type EnhanceConfig struct {
	PollInterval    time.Duration `yaml:"poll_interval"`
	GraceDelay      time.Duration `yaml:"grace_delay"`
	MaxAttempts     int           `yaml:"max_attempts"`
	MaxPollFailures int           `yaml:"max_poll_failures"`
}

// CacheConfig controls the offline bookmark cache.
type CacheConfig struct {
	Enabled       *bool         `yaml:"enabled"`
	TTL           time.Duration `yaml:"ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// IsEnabled reports whether the offline cache is on. Defaults to true.
func (c CacheConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// DatabaseConfig holds SQLite connection settings.
type DatabaseConfig struct {
	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`
	BusyTimeout  int `yaml:"busy_timeout"` // milliseconds
}

// NotificationConfig controls the notification history.
type NotificationConfig struct {
	Retention int `yaml:"retention"`
}

// UIConfig holds terminal presentation settings.
type UIConfig struct {
	Theme      string `yaml:"theme"`
	ListFormat string `yaml:"list_format"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	enhanceDefaults := enhance.DefaultOptions()
	return Config{
		API: APIConfig{
			BaseURL:   DefaultBaseURL,
			Timeout:   10 * time.Second,
			RateLimit: 10,
			Burst:     5,
		},
		Enhance: EnhanceConfig{
			PollInterval:    enhanceDefaults.PollInterval,
			GraceDelay:      enhanceDefaults.GraceDelay,
			MaxAttempts:     enhanceDefaults.MaxAttempts,
			MaxPollFailures: enhanceDefaults.MaxPollFailures,
		},
		Cache: CacheConfig{
			TTL:           7 * 24 * time.Hour,
			SweepInterval: 5 * time.Minute,
		},
		Database: DatabaseConfig{
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			BusyTimeout:  5000,
		},
		Notifications: NotificationConfig{
			Retention: 200,
		},
		UI: UIConfig{
			Theme:      styles.DefaultTheme,
			ListFormat: DefaultListFormat,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaults.API.BaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = defaults.API.Timeout
	}
	if c.API.Burst == 0 {
		c.API.Burst = defaults.API.Burst
	}
	if c.Enhance.PollInterval == 0 {
		c.Enhance.PollInterval = defaults.Enhance.PollInterval
	}
	if c.Enhance.GraceDelay == 0 {
		c.Enhance.GraceDelay = defaults.Enhance.GraceDelay
	}
	if c.Enhance.MaxAttempts == 0 {
		c.Enhance.MaxAttempts = defaults.Enhance.MaxAttempts
	}
	if c.Enhance.MaxPollFailures == 0 {
		c.Enhance.MaxPollFailures = defaults.Enhance.MaxPollFailures
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = defaults.Cache.TTL
	}
	if c.Cache.SweepInterval == 0 {
		c.Cache.SweepInterval = defaults.Cache.SweepInterval
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}
	if c.Notifications.Retention == 0 {
		c.Notifications.Retention = defaults.Notifications.Retention
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.UI.ListFormat == "" {
		c.UI.ListFormat = defaults.UI.ListFormat
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("api.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url must use http or https, got %q", c.API.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("api.base_url must include a host")
	}

	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout cannot be negative")
	}
	if c.API.RateLimit < 0 {
		return fmt.Errorf("api.rate_limit cannot be negative")
	}
	if c.API.Burst < 1 {
		return fmt.Errorf("api.burst must be at least 1")
	}

	if c.Enhance.PollInterval <= 0 {
		return fmt.Errorf("enhance.poll_interval must be positive")
	}
	if c.Enhance.GraceDelay < 0 {
		return fmt.Errorf("enhance.grace_delay cannot be negative")
	}
	if c.Enhance.MaxAttempts < 1 {
		return fmt.Errorf("enhance.max_attempts must be at least 1")
	}
	if c.Enhance.MaxPollFailures < 1 {
		return fmt.Errorf("enhance.max_poll_failures must be at least 1")
	}

	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl cannot be negative")
	}
	if c.Cache.SweepInterval <= 0 {
		return fmt.Errorf("cache.sweep_interval must be positive")
	}

	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("database.max_open_conns must be at least 1")
	}
	if c.Database.MaxIdleConns < 0 || c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns must be between 0 and max_open_conns")
	}
	if c.Database.BusyTimeout < 0 {
		return fmt.Errorf("database.busy_timeout cannot be negative")
	}

	if c.Notifications.Retention < 1 {
		return fmt.Errorf("notifications.retention must be at least 1")
	}

	return nil
}

// EnhanceOptions converts the enhance section to tracker options.
func (c *Config) EnhanceOptions() enhance.Options {
	return enhance.Options{
		PollInterval:    c.Enhance.PollInterval,
		GraceDelay:      c.Enhance.GraceDelay,
		MaxAttempts:     c.Enhance.MaxAttempts,
		MaxPollFailures: c.Enhance.MaxPollFailures,
	}
}

// Redacted returns a copy safe to print: the API token is masked.
func (c Config) Redacted() Config {
	if c.API.Token != "" {
		c.API.Token = "********"
	}
	return c
}
