package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mytheresa/phone-catalog/app/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the catalog schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		return migrateUp(cfg, logger)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Revert all migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}

		m, err := database.NewMigrator(&cfg.Database, logger)
		if err != nil {
			return err
		}
		defer m.Close()

		return m.Down()
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}

		m, err := database.NewMigrator(&cfg.Database, logger)
		if err != nil {
			return err
		}
		defer m.Close()

		v, dirty, err := m.Version()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "version: %d, dirty: %v\n", v, dirty)
		return nil
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateVersionCmd)
}
