package main

import (
	"errors"

	"eden_passes_backend/internal/config"
	"eden_passes_backend/internal/database"
	"eden_passes_backend/pkg/utils"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema for the configured SQL store",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Store.Driver == config.DriverMemory {
			return errors.New("STORE_DRIVER=memory has no schema to apply")
		}
		db, err := database.Connect(cmd.Context(), cfg.Store)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := database.ApplySchema(cmd.Context(), db, cfg.Store.Driver); err != nil {
			return err
		}
		utils.LogInfo("Migration finished", map[string]interface{}{"driver": cfg.Store.Driver})
		return nil
	},
}
