// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (session store, backend client) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/taibuivan/aulagate/pkg/slice"
)

// Session store backends selectable through SESSION_BACKEND.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// # Configuration Schema

// Config holds all runtime configuration for the gate server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Session storage
	SessionBackend string        `env:"SESSION_BACKEND"  envDefault:"memory"`
	SessionIdleTTL time.Duration `env:"SESSION_IDLE_TTL" envDefault:"12h"`

	// ClientCookieName identifies the browser client owning a session.
	ClientCookieName string `env:"CLIENT_COOKIE_NAME" envDefault:"aulagate_client"`

	// Key-Value Cache (Redis), required when SessionBackend is "redis"
	RedisURL string `env:"REDIS_URL"`

	// Relational Database (PostgreSQL), required when SessionBackend is "postgres"
	DatabaseURL string `env:"DATABASE_URL"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// RoutesFile optionally replaces the built-in route table with a YAML file.
	RoutesFile string `env:"ROUTES_FILE"`

	// SPADir optionally serves the compiled single-page app for allowed page routes.
	SPADir string `env:"SPA_DIR"`

	// School REST backend (login, token verification, password reset)
	BackendURL     string        `env:"BACKEND_URL"     envDefault:"http://localhost:3000"`
	BackendTimeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"10s"`

	// Cross-Origin Resource Sharing, comma-separated origins allowed outside development
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct and validates it.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Map environment variables onto the struct, applying defaults.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field requirements that struct tags cannot express.
func (c *Config) Validate() error {
	switch c.SessionBackend {
	case BackendMemory:
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("config: REDIS_URL is required when SESSION_BACKEND=%s", BackendRedis)
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config: DATABASE_URL is required when SESSION_BACKEND=%s", BackendPostgres)
		}
	default:
		return fmt.Errorf("config: unknown SESSION_BACKEND %q", c.SessionBackend)
	}

	if c.SessionIdleTTL <= 0 {
		return fmt.Errorf("config: SESSION_IDLE_TTL must be positive")
	}

	if c.ClientCookieName == "" {
		return fmt.Errorf("config: CLIENT_COOKIE_NAME must not be empty")
	}

	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins splits ExtraOrigins into trimmed, non-empty origins.
func (c *Config) AllowedOrigins() []string {
	return slice.SplitList(c.ExtraOrigins)
}
