package handlers

import (
	"context"
	"internship-portal/app"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Health reports liveness and database reachability
func Health(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		if err := a.DB.PingContext(ctx); err != nil {
			a.Logger.Error("health check failed", "error", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":   "unavailable",
				"database": "down",
			})
		}

		return c.JSON(fiber.Map{
			"status":   "ok",
			"database": "up",
			"time":     time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// ServerTime returns the current time in the requested timezone, used by
// clients to render deadlines ("today" is server-side UTC).
func ServerTime(c *fiber.Ctx) error {
	timezone := c.Query("timezone", "UTC")

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}

	now := time.Now().In(loc)

	return c.JSON(fiber.Map{
		"timestamp": now.Unix(),
		"timezone":  loc.String(),
		"iso":       now.Format(time.RFC3339),
		"date":      now.Format("2006-01-02"),
	})
}
