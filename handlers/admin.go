package handlers

import (
	"internship-portal/app"
	"internship-portal/models"

	"github.com/gofiber/fiber/v2"
)

// Analytics returns the admin dashboard figures
func Analytics(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dashboard, err := a.AnalyticsService.Dashboard(c.UserContext())
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(dashboard)
	}
}

func ActivityLogs(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := a.AuditService.ActivityLogs(models.ActivityFilter{
			ActorID:    c.Query("actor_id"),
			EntityType: c.Query("entity_type"),
			Action:     c.Query("action"),
			Page:       pageFromQuery(c),
		})
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(result)
	}
}

func SecurityEvents(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := a.AuditService.SecurityEvents(models.SecurityFilter{
			Event:    c.Query("event"),
			Severity: c.Query("severity"),
			Page:     pageFromQuery(c),
		})
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(result)
	}
}

// EmailStats reports outbox depth per delivery status
func EmailStats(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		counts, err := a.Repo.CountEmailsByStatus()
		if err != nil {
			return serverErrorWithDetails(c, "Failed to load email stats", err)
		}
		return success(c, fiber.Map{"counts": counts})
	}
}

// RetryEmail requeues an abandoned email
func RetryEmail(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		email, err := a.Repo.GetEmail(c.Params("id"))
		if err != nil {
			return serverErrorWithDetails(c, "Failed to load email", err)
		}
		if email == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "email not found"})
		}
		if email.Status != models.EmailAbandoned {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "only abandoned emails can be retried"})
		}

		if err := a.Repo.RetryEmail(email.ID); err != nil {
			return serverErrorWithDetails(c, "Failed to requeue email", err)
		}
		if a.EmailWorker != nil {
			a.EmailWorker.Trigger()
		}
		return success(c, fiber.Map{"success": true})
	}
}
