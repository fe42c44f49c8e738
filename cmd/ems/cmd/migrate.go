package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"ems/internal/platform/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply embedded SQL migrations to DATABASE_URL",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
		pool, err := db.Connect(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := db.Migrate(cmd.Context(), pool); err != nil {
			return err
		}
		slog.Info("migrations applied")
		return nil
	},
}
