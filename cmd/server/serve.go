package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mytheresa/phone-catalog/app/assets"
	"github.com/mytheresa/phone-catalog/app/catalog"
	"github.com/mytheresa/phone-catalog/app/categories"
	"github.com/mytheresa/phone-catalog/app/database"
	"github.com/mytheresa/phone-catalog/app/listing"
	"github.com/mytheresa/phone-catalog/app/server"
	"github.com/mytheresa/phone-catalog/models"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	if cfg.Seed.AutoMigrateEnabled() {
		if err := migrateUp(cfg, logger); err != nil {
			return err
		}
	}

	db, err := database.Open(ctx, &cfg.Database, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("access connection pool: %w", err)
	}
	defer sqlDB.Close()

	if cfg.Seed.SeedEnabled() {
		if err := seedCatalog(ctx, cfg, db, logger); err != nil {
			return err
		}
	}

	store, err := assets.New(ctx, &cfg.Assets, logger)
	if err != nil {
		return fmt.Errorf("init asset store: %w", err)
	}

	phones := models.NewPhonesRepository(db)
	phoneHandler := catalog.NewCatalogHandler(
		phones,
		listing.NewService(phones, cfg.Pagination),
		catalog.NewImages(phones, store, logger),
		catalog.Options{
			MaxUploadSize: cfg.Assets.MaxUploadSizeBytes(),
			PublicBaseURL: cfg.Assets.PublicBaseURL,
		},
		logger,
	)
	categoryHandler := categories.NewCategoryHandler(models.NewCategoriesRepository(db), logger)

	router := server.NewRouter(store, sqlDB, logger, phoneHandler, categoryHandler)

	return server.New(&cfg.Server, router, logger).Run(ctx)
}
