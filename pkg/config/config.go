// Package config loads owcareer settings from OWCAREER_* environment variables.
// Command-line flags are layered on top by the caller.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/codeGROOVE-dev/owcareer/pkg/career"
	"github.com/codeGROOVE-dev/owcareer/pkg/httpcache"
)

// Config holds settings shared by every lookup in one run.
type Config struct {
	BaseURL  string        `env:"OWCAREER_BASE_URL" envDefault:"https://playoverwatch.com"`
	Locale   string        `env:"OWCAREER_LOCALE" envDefault:"en-us"`
	Regions  string        `env:"OWCAREER_REGIONS" envDefault:"us,eu,kr"`
	LogLevel string        `env:"OWCAREER_LOG_LEVEL" envDefault:"info"`
	Timeout  time.Duration `env:"OWCAREER_TIMEOUT" envDefault:"10s"`
	MinDelay time.Duration `env:"OWCAREER_MIN_DELAY" envDefault:"500ms"`
	CacheTTL time.Duration `env:"OWCAREER_CACHE_TTL" envDefault:"0s"`
	Retries  uint          `env:"OWCAREER_RETRIES" envDefault:"0"`
	Parallel int           `env:"OWCAREER_PARALLEL" envDefault:"4"`
}

// Load reads the process environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// LoadFrom reads settings from environ instead of the process environment.
func LoadFrom(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks values that env cannot type-check on its own.
func (c *Config) Validate() error {
	if _, err := c.Builder(); err != nil {
		return err
	}
	if _, err := c.RegionOrder(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.Parallel < 1 {
		return fmt.Errorf("parallel must be at least 1, got %d", c.Parallel)
	}
	return nil
}

// Builder returns the career URL builder for BaseURL and Locale.
func (c *Config) Builder() (*career.Builder, error) {
	return career.New(career.WithBaseURL(c.BaseURL), career.WithLocale(c.Locale))
}

// RegionOrder parses Regions.
func (c *Config) RegionOrder() ([]career.Region, error) {
	return career.ParseRegions(c.Regions)
}

// Level parses LogLevel (debug, info, warn, error).
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return l, nil
}

// FetcherOptions returns the httpcache options for this config. The cache is
// only enabled when CacheTTL is positive and lives for the process only.
func (c *Config) FetcherOptions(logger *slog.Logger) ([]httpcache.Option, error) {
	opts := []httpcache.Option{
		httpcache.WithLogger(logger),
		httpcache.WithTimeout(c.Timeout),
		httpcache.WithMinDelay(c.MinDelay),
		httpcache.WithRetries(c.Retries),
	}
	if c.CacheTTL > 0 {
		cache, err := httpcache.NewMemory(c.CacheTTL)
		if err != nil {
			return nil, fmt.Errorf("create cache: %w", err)
		}
		opts = append(opts, httpcache.WithCache(cache))
	}
	return opts, nil
}
