package app

import (
	"internship-portal/activity"
	"internship-portal/auth"
	"internship-portal/cache"
	"internship-portal/config"
	"internship-portal/database"
	"internship-portal/mail"
	"internship-portal/outbox"
	"internship-portal/services"
	"internship-portal/session"
	"internship-portal/storage"
	"internship-portal/validator"
	"log/slog"
	"time"
)

// App holds all application dependencies
// This struct is the central point for dependency injection
type App struct {
	Config       *config.Config
	DB           *database.DB
	Repo         *database.Repository
	SessionStore *session.Store
	Validator    *validator.Validator
	Logger       *slog.Logger
	Activity     *activity.Logger
	Cache        cache.Cache
	Files        storage.Provider
	EmailWorker  *outbox.Worker
	Emails       *outbox.Queue

	AuthService         *services.AuthService
	UserService         *services.UserService
	InternshipService   *services.InternshipService
	ApplicationService  *services.ApplicationService
	EvaluationService   *services.EvaluationService
	NoticeService       *services.NoticeService
	NotificationService *services.NotificationService
	AnalyticsService    *services.AnalyticsService
	AuditService        *services.AuditService
}

// Infra carries the external backends chosen by configuration
type Infra struct {
	Mailer mail.Mailer
	Files  storage.Provider
	Cache  cache.Cache
	Google services.GoogleProvider
}

// New creates a new App instance with all dependencies
func New(cfg *config.Config, db *database.DB, infra Infra, logger *slog.Logger) *App {
	repo := database.NewRepository(db)
	ttl := time.Duration(cfg.JWTTTLHours) * time.Hour
	sessionStore := session.NewStore(db.DB, ttl)
	activityLogger := activity.NewLogger(repo, logger)

	if infra.Cache == nil {
		infra.Cache = cache.Noop{}
	}

	worker := outbox.NewWorker(repo, infra.Mailer, logger)
	emails := outbox.NewQueue(repo, worker)
	templates := mail.Templates{AppURL: cfg.AppURL, University: cfg.UniversityName}

	notifications := services.NewNotificationService(repo)
	analytics := services.NewAnalyticsService(repo, infra.Cache, logger)
	users := services.NewUserService(repo, sessionStore, infra.Files, cfg.UploadMaxBytes, activityLogger, infra.Cache, logger)

	a := &App{
		Config:       cfg,
		DB:           db,
		Repo:         repo,
		SessionStore: sessionStore,
		Validator:    validator.New(),
		Logger:       logger,
		Activity:     activityLogger,
		Cache:        infra.Cache,
		Files:        infra.Files,
		EmailWorker:  worker,
		Emails:       emails,

		UserService:         users,
		NotificationService: notifications,
		AnalyticsService:    analytics,
		AuditService:        services.NewAuditService(repo),
	}

	a.AuthService = services.NewAuthService(services.AuthDeps{
		Users:     repo,
		Sessions:  sessionStore,
		Tokens:    auth.NewTokenManager(cfg.JWTSecret, ttl),
		Google:    infra.Google,
		Supabase:  auth.NewSupabaseVerifier(cfg.SupabaseJWTSecret),
		Emails:    emails,
		Templates: templates,
		Audit:     activityLogger,
		Cache:     infra.Cache,
		Logger:    logger,
	})
	a.InternshipService = services.NewInternshipService(repo, activityLogger, analytics, logger)
	a.ApplicationService = services.NewApplicationService(services.ApplicationDeps{
		Applications: repo,
		Internships:  repo,
		Users:        repo,
		Resumes:      users,
		Notifier:     notifications,
		Emails:       emails,
		Templates:    templates,
		Audit:        activityLogger,
		Analytics:    analytics,
		University:   cfg.UniversityName,
		Logger:       logger,
	})
	a.EvaluationService = services.NewEvaluationService(repo, repo, notifications, emails, templates, activityLogger, analytics, logger)
	a.NoticeService = services.NewNoticeService(repo, repo, notifications, activityLogger, logger)

	return a
}
