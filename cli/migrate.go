package cli

import (
	"internship-portal/config"
	"internship-portal/config/setup"
	"log/slog"

	"github.com/spf13/cobra"
)

func newMigrateCommand(cfg *config.Config, logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := setup.InitDatabase(cfg.DBPath, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			cmd.Printf("database migrated: %s\n", cfg.DBPath)
			return nil
		},
	}
}
