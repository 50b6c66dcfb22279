package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mytheresa/phone-catalog/app/database"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate an empty catalog with the demo phones",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := database.Open(cmd.Context(), &cfg.Database, logger)
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("access connection pool: %w", err)
		}
		defer sqlDB.Close()

		return seedCatalog(cmd.Context(), cfg, db, logger)
	},
}
