package cli

import (
	"internship-portal/config"
	"log/slog"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the internship-portal command tree. Running it
// without a subcommand starts the server.
func NewRootCommand(cfg *config.Config, logger *slog.Logger) *cobra.Command {
	serve := newServeCommand(cfg, logger)

	root := &cobra.Command{
		Use:           "internship-portal",
		Short:         "University internship portal API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.PersistentFlags().StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to the SQLite database")

	root.AddCommand(serve, newMigrateCommand(cfg, logger), newCreateAdminCommand(cfg, logger))
	return root
}

// Execute runs the command line
func Execute(cfg *config.Config, logger *slog.Logger) error {
	if err := NewRootCommand(cfg, logger).Execute(); err != nil {
		logger.Error("command failed", "error", err)
		return err
	}
	return nil
}
