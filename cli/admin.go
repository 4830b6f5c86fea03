package cli

import (
	"fmt"
	"internship-portal/app"
	"internship-portal/config"
	"internship-portal/config/setup"
	"internship-portal/mail"
	"internship-portal/models"
	"internship-portal/services"
	"log/slog"

	"github.com/spf13/cobra"
)

func newCreateAdminCommand(cfg *config.Config, logger *slog.Logger) *cobra.Command {
	var req models.CreateUserRequest

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			req.Role = string(models.RoleAdmin)

			db, err := setup.InitDatabase(cfg.DBPath, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			application := app.New(cfg, db, app.Infra{Mailer: mail.NewLogMailer(logger)}, logger)
			if err := application.Validator.Validate(&req); err != nil {
				return fmt.Errorf("invalid admin account: %w", err)
			}

			actor := services.Actor{ID: "cli", Role: models.RoleAdmin}
			user, err := application.UserService.Create(cmd.Context(), actor, req)
			if err != nil {
				return err
			}

			cmd.Printf("created admin %s (%s)\n", user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "admin email address")
	cmd.Flags().StringVar(&req.Name, "name", "", "display name")
	cmd.Flags().StringVar(&req.Password, "password", "", "initial password")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("password")
	return cmd
}
