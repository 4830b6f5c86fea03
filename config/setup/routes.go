package setup

import (
	"internship-portal/app"
	"internship-portal/handlers"
	"internship-portal/metrics"
	"internship-portal/middleware"
	"internship-portal/models"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(fiberApp *fiber.App, application *app.App) {
	cfg := application.Config
	recorder := application.Activity

	// Public routes
	fiberApp.Get("/health", handlers.Health(application))
	fiberApp.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	fiberApp.Get("/api/time", handlers.ServerTime)

	// Auth routes; credential endpoints share a per-IP token bucket
	loginLimiter := middleware.NewLoginLimiter(cfg.LoginRatePerMinute, 5, recorder).Handler()
	fiberApp.Post("/api/auth/register", loginLimiter, handlers.Register(application))
	fiberApp.Post("/api/auth/login", loginLimiter, handlers.Login(application))
	fiberApp.Post("/api/auth/forgot-password", loginLimiter, handlers.ForgotPassword(application))
	fiberApp.Post("/api/auth/reset-password", loginLimiter, handlers.ResetPassword(application))
	fiberApp.Post("/api/auth/google", handlers.GoogleLogin(application))        // GIS popup login
	fiberApp.Post("/api/auth/supabase", handlers.SupabaseLogin(application))    // Supabase session exchange
	fiberApp.Get("/auth/google", handlers.GoogleRedirect(application))          // OAuth redirect login
	fiberApp.Get("/auth/google/callback", handlers.GoogleCallback(application)) // OAuth callback

	// Protected API routes
	api := fiberApp.Group("/api", middleware.AuthRequired(application.AuthService, recorder), limiter.New(limiter.Config{
		Max:        100,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			if userID := middleware.GetUserID(c); userID != "" {
				return "user:" + userID
			}
			return c.IP()
		},
		LimitReached: middleware.RateLimited(recorder),
	}))

	api.Post("/auth/logout", handlers.Logout(application))
	api.Get("/auth/me", handlers.Me(application))

	api.Get("/profile", handlers.GetProfile(application))
	api.Put("/profile", handlers.UpdateProfile(application))
	api.Put("/profile/password", handlers.ChangePassword(application))
	api.Post("/profile/resume", handlers.UploadResume(application))
	api.Get("/files/resume/:userID", handlers.DownloadUserResume(application))

	api.Get("/internships", handlers.ListInternships(application))
	api.Get("/internships/:id", handlers.GetInternship(application))

	api.Post("/applications", handlers.Apply(application))
	api.Get("/applications", handlers.ListMyApplications(application))
	api.Get("/applications/:id", handlers.GetApplication(application))
	api.Post("/applications/:id/withdraw", handlers.WithdrawApplication(application))
	api.Get("/applications/:id/letter", handlers.ApplicationLetter(application))
	api.Get("/applications/:id/resume", handlers.ApplicationResume(application))

	api.Get("/evaluations", handlers.ListMyEvaluations(application))
	api.Get("/notices", handlers.ListNotices(application))

	api.Get("/notifications", handlers.ListNotifications(application))
	api.Get("/notifications/unread-count", handlers.UnreadCount(application))
	api.Put("/notifications/read-all", handlers.MarkAllNotificationsRead(application))
	api.Put("/notifications/:id/read", handlers.MarkNotificationRead(application))

	// Admin routes
	admin := api.Group("/admin", middleware.RequireRole(models.RoleAdmin, recorder))

	admin.Get("/users", handlers.ListUsers(application))
	admin.Post("/users", handlers.CreateUser(application))
	admin.Get("/users/:id", handlers.GetUser(application))
	admin.Put("/users/:id", handlers.UpdateUser(application))
	admin.Put("/users/:id/status", handlers.SetUserStatus(application))
	admin.Delete("/users/:id", handlers.DeleteUser(application))

	admin.Get("/internships", handlers.ListInternships(application))
	admin.Post("/internships", handlers.CreateInternship(application))
	admin.Get("/internships/:id", handlers.GetInternship(application))
	admin.Put("/internships/:id", handlers.UpdateInternship(application))
	admin.Put("/internships/:id/status", handlers.SetInternshipStatus(application))
	admin.Delete("/internships/:id", handlers.DeleteInternship(application))

	admin.Get("/applications", handlers.ListApplications(application))
	admin.Get("/applications/export", handlers.ExportApplications(application))
	admin.Get("/applications/:id", handlers.GetApplication(application))
	admin.Put("/applications/:id/status", handlers.UpdateApplicationStatus(application))
	admin.Post("/applications/:id/evaluation", handlers.CreateEvaluation(application))
	admin.Put("/evaluations/:id", handlers.UpdateEvaluation(application))

	admin.Get("/notices", handlers.ListAllNotices(application))
	admin.Post("/notices", handlers.CreateNotice(application))
	admin.Get("/notices/:id", handlers.GetNotice(application))
	admin.Put("/notices/:id", handlers.UpdateNotice(application))
	admin.Put("/notices/:id/publish", handlers.PublishNotice(application))
	admin.Delete("/notices/:id", handlers.DeleteNotice(application))

	admin.Get("/analytics", handlers.Analytics(application))
	admin.Get("/activity-logs", handlers.ActivityLogs(application))
	admin.Get("/security-events", handlers.SecurityEvents(application))
	admin.Get("/emails/stats", handlers.EmailStats(application))
	admin.Post("/emails/:id/retry", handlers.RetryEmail(application))
}
