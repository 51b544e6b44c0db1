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
  - DI-Friendly: Passed to the bootstrap, which builds every client from it.
  - Zero Hidden State: No global variables are used to store config.

Optional backends (search engines, Kafka, chain networks) are enabled purely by
the presence of their settings.
*/
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Content store backends.
const (
	ContentStorePinata = "pinata"
	ContentStoreMemory = "memory"
)

// # Configuration Schema

// Config holds all runtime configuration for the publishing service and CLI.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Store (Redis). Empty falls back to in-process publish locks.
	RedisURL string `env:"REDIS_URL"`

	// JWTPubKeyPath is the RSA public key used to verify tokens minted by the main API.
	JWTPubKeyPath string `env:"JWT_PUBLIC_KEY_PATH"`

	// Content-addressed storage
	ContentStore    string   `env:"CONTENT_STORE"     envDefault:"pinata"`
	PinataBaseURL   string   `env:"PINATA_BASE_URL"   envDefault:"https://api.pinata.cloud"`
	PinataAPIKey    string   `env:"PINATA_API_KEY"`
	PinataSecretKey string   `env:"PINATA_SECRET_API_KEY"`
	GatewayMirrors  []string `env:"IPFS_GATEWAYS"     envSeparator:","`

	// Chain minting. Empty disables minting entirely.
	ChainNetworksFile string `env:"CHAIN_NETWORKS_FILE"`

	// Search backends
	MeiliURL      string   `env:"MEILI_URL"`
	MeiliAPIKey   string   `env:"MEILI_API_KEY"`
	MeiliIndex    string   `env:"MEILI_INDEX"     envDefault:"comics"`
	AlgoliaAppID  string   `env:"ALGOLIA_APP_ID"`
	AlgoliaAPIKey string   `env:"ALGOLIA_API_KEY"`
	AlgoliaIndex  string   `env:"ALGOLIA_INDEX"   envDefault:"comics"`
	KafkaBrokers  []string `env:"KAFKA_BROKERS"   envSeparator:","`
	KafkaTopic    string   `env:"KAFKA_TOPIC"     envDefault:"comic.published"`

	// SiteURL prefixes external links in published metadata.
	SiteURL string `env:"SITE_URL" envDefault:"https://yomira.app"`

	// PinConcurrency bounds how many pages are confirmed at once.
	PinConcurrency int `env:"PIN_CONCURRENCY" envDefault:"4"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct and validates it.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks rules that span several fields.
func (c *Config) Validate() error {
	var errs []error

	switch c.ContentStore {
	case ContentStorePinata:
		if c.PinataAPIKey == "" || c.PinataSecretKey == "" {
			errs = append(errs, errors.New("CONTENT_STORE=pinata requires PINATA_API_KEY and PINATA_SECRET_API_KEY"))
		}
	case ContentStoreMemory:
		if c.IsProduction() {
			errs = append(errs, errors.New("CONTENT_STORE=memory is not allowed in production"))
		}
	default:
		errs = append(errs, fmt.Errorf("CONTENT_STORE must be %q or %q, got %q", ContentStorePinata, ContentStoreMemory, c.ContentStore))
	}

	if (c.AlgoliaAppID == "") != (c.AlgoliaAPIKey == "") {
		errs = append(errs, errors.New("ALGOLIA_APP_ID and ALGOLIA_API_KEY must be set together"))
	}

	if c.PinConcurrency < 1 {
		errs = append(errs, errors.New("PIN_CONCURRENCY must be at least 1"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
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

// AllowedOrigins returns the extra CORS origins as a list.
func (c *Config) AllowedOrigins() []string {
	if strings.TrimSpace(c.ExtraOrigins) == "" {
		return nil
	}
	return strings.Split(c.ExtraOrigins, ",")
}
