package handlers

import (
	"internship-portal/app"
	"internship-portal/middleware"

	"github.com/gofiber/fiber/v2"
)

func ListNotifications(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := a.NotificationService.List(middleware.GetUserID(c), c.QueryBool("unread"), pageFromQuery(c))
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(result)
	}
}

func UnreadCount(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		n, err := a.NotificationService.UnreadCount(middleware.GetUserID(c))
		if err != nil {
			return handleError(c, err)
		}
		return success(c, fiber.Map{"count": n})
	}
}

func MarkNotificationRead(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := a.NotificationService.MarkRead(middleware.GetUserID(c), c.Params("id")); err != nil {
			return handleError(c, err)
		}
		return success(c, fiber.Map{"success": true})
	}
}

func MarkAllNotificationsRead(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		n, err := a.NotificationService.MarkAllRead(middleware.GetUserID(c))
		if err != nil {
			return handleError(c, err)
		}
		return success(c, fiber.Map{"success": true, "updated": n})
	}
}
