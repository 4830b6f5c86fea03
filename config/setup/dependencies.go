package setup

import (
	"context"
	"fmt"
	"internship-portal/app"
	"internship-portal/cache"
	"internship-portal/config"
	"internship-portal/database"
	"internship-portal/mail"
	"internship-portal/scheduler"
	"internship-portal/services"
	"internship-portal/storage"
	"log/slog"
	"time"
)

// InitDatabase initializes the SQLite database and runs migrations
func InitDatabase(dbPath string, logger *slog.Logger) (*database.DB, error) {
	db, err := database.New(dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("database initialized", "path", dbPath)
	return db, nil
}

// InitInfra builds the mail, storage, cache and Google backends chosen by configuration
func InitInfra(ctx context.Context, cfg *config.Config, logger *slog.Logger) (app.Infra, error) {
	var infra app.Infra

	switch cfg.MailDriver {
	case "ses":
		mailer, err := mail.NewSESMailerFromEnv(ctx, cfg.AWSRegion, cfg.MailFrom)
		if err != nil {
			return infra, fmt.Errorf("init ses mailer: %w", err)
		}
		infra.Mailer = mailer
		logger.Info("mail driver configured", "driver", "ses", "region", cfg.AWSRegion)
	default:
		infra.Mailer = mail.NewLogMailer(logger)
		logger.Info("mail driver configured", "driver", "log")
	}

	switch cfg.UploadDriver {
	case "s3":
		files, err := storage.NewS3ProviderFromEnv(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3PublicURL)
		if err != nil {
			return infra, fmt.Errorf("init s3 storage: %w", err)
		}
		infra.Files = files
		logger.Info("upload driver configured", "driver", "s3", "bucket", cfg.S3Bucket)
	default:
		files, err := storage.NewLocalProvider(cfg.UploadDir)
		if err != nil {
			return infra, fmt.Errorf("init local storage: %w", err)
		}
		infra.Files = files
		logger.Info("upload driver configured", "driver", "local", "dir", cfg.UploadDir)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	infra.Cache = cache.Connect(pingCtx, cfg.RedisAddr, logger)

	// A nil *GoogleAuth must not end up inside the interface
	if google := services.NewGoogleAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL); google != nil {
		infra.Google = google
		logger.Info("google sign-in enabled")
	}

	return infra, nil
}

// InitApp initializes the application with all dependencies and starts
// the background email worker and scheduler
func InitApp(ctx context.Context, cfg *config.Config, db *database.DB, logger *slog.Logger) (*app.App, *scheduler.Scheduler, error) {
	infra, err := InitInfra(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	application := app.New(cfg, db, infra, logger)
	logger.Info("application initialized with dependency injection")

	application.EmailWorker.Start()
	logger.Info("email worker started")

	sched, err := scheduler.New(scheduler.Jobs{
		Internships:   application.InternshipService,
		Sessions:      application.SessionStore,
		ResetTokens:   application.Repo,
		Notifications: application.NotificationService,
	}, logger)
	if err != nil {
		application.EmailWorker.Stop()
		return nil, nil, err
	}
	sched.Start()
	logger.Info("scheduler started")

	return application, sched, nil
}

// Shutdown performs graceful shutdown of all services
func Shutdown(application *app.App, sched *scheduler.Scheduler, logger *slog.Logger) {
	logger.Info("shutting down services...")

	if sched != nil {
		sched.Stop()
		logger.Info("scheduler stopped")
	}

	if application == nil {
		return
	}

	if application.EmailWorker != nil {
		application.EmailWorker.Stop()
		logger.Info("email worker stopped")
	}

	if closer, ok := application.Cache.(interface{ Close() error }); ok {
		closer.Close()
	}

	if application.DB != nil {
		application.DB.Close()
		logger.Info("database closed")
	}
}
