package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gorm.io/gorm"

	"github.com/mytheresa/phone-catalog/app/assets"
	"github.com/mytheresa/phone-catalog/app/config"
	"github.com/mytheresa/phone-catalog/app/database"
	"github.com/mytheresa/phone-catalog/app/logging"
	"github.com/mytheresa/phone-catalog/models"
)

func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, logging.New(&cfg.Logging, os.Stdout), nil
}

func migrateUp(cfg *config.Config, logger *slog.Logger) error {
	m, err := database.NewMigrator(&cfg.Database, logger)
	if err != nil {
		return err
	}
	defer m.Close()

	return m.Up()
}

// seedCatalog fills an empty catalog with the demo phones. Seeded image
// references point at the configured public base URL, or at the local server.
func seedCatalog(ctx context.Context, cfg *config.Config, db *gorm.DB, logger *slog.Logger) error {
	baseURL := cfg.Assets.PublicBaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}

	seeder := models.NewSeeder(db, func(name string) string {
		return assets.PublicURL(baseURL, name)
	})

	seeded, err := seeder.Seed(ctx)
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	if seeded {
		logger.Info("demo catalog seeded")
	} else {
		logger.Info("catalog not empty, seed skipped")
	}
	return nil
}
