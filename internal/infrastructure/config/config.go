package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Registry  RegistryConfig
	Switcher  SwitcherConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	// Global shares one limiter across all clients
	Global            bool `envconfig:"RATE_LIMIT_GLOBAL" default:"false"`
}

// RegistryConfig holds app manifest source configuration.
type RegistryConfig struct {
	AppsDir string        `envconfig:"APPS_DIR" default:"./apps"`
	URL     string        `envconfig:"REGISTRY_URL"`
	Timeout time.Duration `envconfig:"REGISTRY_TIMEOUT" default:"10s"`
	Retries int           `envconfig:"REGISTRY_RETRIES" default:"3"`
}

// SwitcherConfig holds app switcher configuration.
type SwitcherConfig struct {
	InlineBudget int `envconfig:"SWITCHER_INLINE_BUDGET" default:"5"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate checks values envconfig cannot express.
func (c *Config) Validate() error {
	if c.Switcher.InlineBudget < 0 {
		return fmt.Errorf("invalid config: SWITCHER_INLINE_BUDGET must be >= 0, got %d", c.Switcher.InlineBudget)
	}
	if c.Registry.Retries < 0 {
		return fmt.Errorf("invalid config: REGISTRY_RETRIES must be >= 0, got %d", c.Registry.Retries)
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Registry: RegistryConfig{
			AppsDir: "./apps",
			Timeout: 10 * time.Second,
			Retries: 3,
		},
		Switcher: SwitcherConfig{
			InlineBudget: 5,
		},
	}
}
