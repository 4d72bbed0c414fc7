// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// Store kinds.
const (
	StoreFile  = "file"
	StoreRedis = "redis"
)

// Config holds the settings of a grow run. Command-line flags override
// these after Load.
type Config struct {
	// Root is the directory file-backed adventures live in.
	Root      string     `env:"GROW_ROOT"`
	Store     string     `env:"GROW_STORE" envDefault:"file"`
	RedisAddr string     `env:"GROW_REDIS_ADDR" envDefault:"localhost:6379"`
	Adventure string     `env:"GROW_ADVENTURE"`
	LogLevel  slog.Level `env:"GROW_LOG_LEVEL" envDefault:"warn"`
	LogFormat string     `env:"GROW_LOG_FORMAT" envDefault:"text"`
	// Seed fixes the unknown-input responses; 0 means random.
	Seed int64 `env:"GROW_SEED"`
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if c.Root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("finding home directory: %w", err)
		}
		c.Root = filepath.Join(home, ".grow", "adventures")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks settings that have a fixed set of values.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreFile, StoreRedis:
	default:
		return fmt.Errorf("unknown store %q (want %q or %q)", c.Store, StoreFile, StoreRedis)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q (want \"text\" or \"json\")", c.LogFormat)
	}
	if c.Store == StoreRedis && c.RedisAddr == "" {
		return fmt.Errorf("redis store needs GROW_REDIS_ADDR")
	}
	return nil
}
