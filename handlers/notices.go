package handlers

import (
	"internship-portal/app"
	"internship-portal/middleware"
	"internship-portal/models"

	"github.com/gofiber/fiber/v2"
)

// ListNotices returns published notices visible to the caller's role
func ListNotices(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := a.NoticeService.ListVisible(middleware.GetActor(c), pageFromQuery(c))
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(result)
	}
}

// ListAllNotices includes drafts (admin)
func ListAllNotices(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := a.NoticeService.ListAll(pageFromQuery(c))
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(result)
	}
}

func GetNotice(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		notice, err := a.NoticeService.Get(c.Params("id"))
		if err != nil {
			return handleError(c, err)
		}
		return success(c, fiber.Map{"notice": notice})
	}
}

func CreateNotice(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.NoticeRequest
		if ok, err := parseBody(a, c, &req); !ok {
			return err
		}

		notice, err := a.NoticeService.Create(c.UserContext(), middleware.GetActor(c), req)
		if err != nil {
			return handleError(c, err)
		}
		return created(c, fiber.Map{"notice": notice})
	}
}

func UpdateNotice(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.NoticeRequest
		if ok, err := parseBody(a, c, &req); !ok {
			return err
		}

		notice, err := a.NoticeService.Update(c.UserContext(), middleware.GetActor(c), c.Params("id"), req)
		if err != nil {
			return handleError(c, err)
		}
		return success(c, fiber.Map{"notice": notice})
	}
}

// PublishNotice publishes or unpublishes a notice
func PublishNotice(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.NoticePublishRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}

		notice, err := a.NoticeService.SetPublished(c.UserContext(), middleware.GetActor(c), c.Params("id"), req.Published)
		if err != nil {
			return handleError(c, err)
		}
		return success(c, fiber.Map{"notice": notice})
	}
}

func DeleteNotice(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := a.NoticeService.Delete(c.UserContext(), middleware.GetActor(c), c.Params("id")); err != nil {
			return handleError(c, err)
		}
		return success(c, fiber.Map{"success": true})
	}
}
