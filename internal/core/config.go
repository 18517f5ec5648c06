package core

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// Config holds runtime configuration, populated from environment variables.
type Config struct {
	APIBaseURL string `env:"TUG_API_URL"`
	APIKey     string `env:"TUG_API_KEY"`
	CachePath  string `env:"TUG_CACHE_PATH"`
	Verbose    bool   `env:"TUG_VERBOSE"`
}

// LoadConfig parses configuration from the environment and fills in
// defaults for anything unset.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}
	if cfg.CachePath == "" {
		cfg.CachePath = DefaultCachePath()
	}
	return cfg, nil
}

// DefaultCachePath returns the default location of the disk cache database.
func DefaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".tug", "cache.db")
}
