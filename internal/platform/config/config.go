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
  - DI-Friendly: Passed to core components (DB, Redis, upstream clients) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Cache Backends

const (
	CacheBackendRedis  = "redis"
	CacheBackendMemory = "memory"
	CacheBackendNone   = "none"
)

// # Configuration Schema

// Config holds all runtime configuration for the Binderdex API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis). Only required when CacheBackend is "redis".
	RedisURL     string `env:"REDIS_URL"`
	CacheBackend string `env:"CACHE_BACKEND" envDefault:"memory"`

	// MemoryCacheSize caps the entries of each in-process cache.
	MemoryCacheSize int `env:"MEMORY_CACHE_SIZE" envDefault:"1024"`

	// Cryptographic keys for identity signing
	JWTPrivKeyPath string `env:"JWT_PRIVATE_KEY_PATH,required"`
	JWTPubKeyPath  string `env:"JWT_PUBLIC_KEY_PATH,required"`

	// Upstream catalogs
	PokeAPIBaseURL    string        `env:"POKEAPI_BASE_URL"    envDefault:"https://pokeapi.co/api/v2"`
	TCGdexBaseURL     string        `env:"TCGDEX_BASE_URL"     envDefault:"https://api.tcgdex.net/v2"`
	PokeWalletBaseURL string        `env:"POKEWALLET_BASE_URL" envDefault:"https://api.pokewallet.io"`
	PokeWalletAPIKey  string        `env:"POKEWALLET_API_KEY"`
	CatalogTTL        time.Duration `env:"CATALOG_TTL"         envDefault:"1h"`
	CardCacheTTL      time.Duration `env:"CARD_CACHE_TTL"      envDefault:"1h"`

	// ImageCacheDir is where proxied card images are kept between requests.
	ImageCacheDir string `env:"IMAGE_CACHE_DIR" envDefault:"./data/image-cache"`

	// ReadOnly disables every binder write. Commits fail with CONFIGURATION_MISSING.
	ReadOnly bool `env:"READ_ONLY" envDefault:"false"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.CacheBackend {
	case CacheBackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when CACHE_BACKEND=%s", CacheBackendRedis)
		}
	case CacheBackendMemory, CacheBackendNone:
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q", c.CacheBackend)
	}

	if c.CatalogTTL < 0 || c.CardCacheTTL < 0 {
		return fmt.Errorf("cache TTLs must not be negative")
	}
	if c.MemoryCacheSize < 1 {
		return fmt.Errorf("MEMORY_CACHE_SIZE must be positive, got %d", c.MemoryCacheSize)
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

// UsesRedis reports whether the Redis cache backend is selected.
func (c *Config) UsesRedis() bool {
	return c.CacheBackend == CacheBackendRedis
}
