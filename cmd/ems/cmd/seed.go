package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"ems/internal/app/server"
	"ems/internal/domain/auth"
	"ems/internal/platform/db"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo users and their records into the configured storage",
	Long: `seed writes the embedded demo data. Users that already exist are skipped
along with their records, so running it twice is safe. Against the memory
backend it only checks that the demo file loads.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		stores, err := server.OpenStores(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer stores.Close()

		if stores.Pool != nil && cfg.RunMigrations {
			if err := db.Migrate(cmd.Context(), stores.Pool); err != nil {
				return err
			}
		}

		users := auth.NewService(stores.Users, stores.Sessions, auth.Options{Secret: cfg.JWTSecret})
		result, err := db.Seed(cmd.Context(), db.SeedTargets{
			Users:   users,
			Tasks:   stores.Tasks,
			Leaves:  stores.Leaves,
			Tickets: stores.Tickets,
		}, cfg.SeedDemoPassword)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}
