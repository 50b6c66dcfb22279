// Package config loads the service configuration from TOML files, a .env file
// and environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/mytheresa/phone-catalog/app/assets"
	"github.com/mytheresa/phone-catalog/app/database"
	"github.com/mytheresa/phone-catalog/app/listing"
	"github.com/mytheresa/phone-catalog/app/logging"
)

const (
	// BaseConfigFile is the primary configuration file name. It is optional.
	BaseConfigFile = "config.toml"

	// OverlayConfigPattern is the file name pattern for environment-specific overlays.
	OverlayConfigPattern = "config.%s.toml"

	// EnvAppEnv specifies the environment name for configuration overlays.
	EnvAppEnv = "APP_ENV"

	// EnvSeedEnabled toggles seeding the demo catalog at startup.
	EnvSeedEnabled = "SEED_ENABLED"

	// EnvAutoMigrate toggles applying migrations at startup.
	EnvAutoMigrate = "AUTO_MIGRATE"
)

// Config represents the root service configuration.
type Config struct {
	Server     ServerConfig    `toml:"server"`
	Database   database.Config `toml:"database"`
	Logging    logging.Config  `toml:"logging"`
	Pagination listing.Config  `toml:"pagination"`
	Assets     assets.Config   `toml:"assets"`
	Seed       SeedConfig      `toml:"seed"`
}

// SeedConfig controls the startup bootstrap.
type SeedConfig struct {
	Enabled     *bool `toml:"enabled"`
	AutoMigrate *bool `toml:"auto_migrate"`
}

// SeedEnabled reports whether the demo catalog is seeded at startup. Default: true.
func (c *SeedConfig) SeedEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// AutoMigrateEnabled reports whether migrations run at startup. Default: true.
func (c *SeedConfig) AutoMigrateEnabled() bool {
	return c.AutoMigrate == nil || *c.AutoMigrate
}

// Load reads .env, the base configuration file and any environment-specific
// overlay, then finalizes the result. Missing files are skipped.
func Load(dir string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg, err := load(filepath.Join(dir, BaseConfigFile))
	if err != nil {
		return nil, err
	}

	if env := os.Getenv(EnvAppEnv); env != "" {
		path := filepath.Join(dir, fmt.Sprintf(OverlayConfigPattern, env))
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Finalize applies defaults, loads environment overrides, and validates every section.
func (c *Config) Finalize() error {
	c.loadEnv()

	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Logging.Finalize(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Pagination.Finalize(); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.Assets.Finalize(); err != nil {
		return fmt.Errorf("assets: %w", err)
	}
	return nil
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *Config) Merge(overlay *Config) {
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Logging.Merge(&overlay.Logging)
	c.Pagination.Merge(&overlay.Pagination)
	c.Assets.Merge(&overlay.Assets)
	if overlay.Seed.Enabled != nil {
		c.Seed.Enabled = overlay.Seed.Enabled
	}
	if overlay.Seed.AutoMigrate != nil {
		c.Seed.AutoMigrate = overlay.Seed.AutoMigrate
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvSeedEnabled); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Seed.Enabled = &b
		}
	}
	if v := os.Getenv(EnvAutoMigrate); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Seed.AutoMigrate = &b
		}
	}
}

func load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}
