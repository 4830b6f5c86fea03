package handlers

import (
	"internship-portal/app"
	"internship-portal/middleware"
	"internship-portal/models"

	"github.com/gofiber/fiber/v2"
)

// ListInternships returns a page of internships; only open ones for students
func ListInternships(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := a.InternshipService.List(middleware.GetActor(c), models.InternshipFilter{
			Search:   c.Query("search"),
			Location: c.Query("location"),
			WorkType: c.Query("work_type"),
			Status:   c.Query("status"),
			Page:     pageFromQuery(c),
		})
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(result)
	}
}

func GetInternship(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		in, err := a.InternshipService.Get(c.Params("id"))
		if err != nil {
			return handleError(c, err)
		}
		return success(c, fiber.Map{"internship": in})
	}
}

func CreateInternship(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.InternshipRequest
		if ok, err := parseBody(a, c, &req); !ok {
			return err
		}

		in, err := a.InternshipService.Create(c.UserContext(), middleware.GetActor(c), req)
		if err != nil {
			return handleError(c, err)
		}
		return created(c, fiber.Map{"internship": in})
	}
}

func UpdateInternship(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.InternshipRequest
		if ok, err := parseBody(a, c, &req); !ok {
			return err
		}

		in, err := a.InternshipService.Update(c.UserContext(), middleware.GetActor(c), c.Params("id"), req)
		if err != nil {
			return handleError(c, err)
		}
		return success(c, fiber.Map{"internship": in})
	}
}

// SetInternshipStatus closes or reopens an internship
func SetInternshipStatus(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.InternshipStatusRequest
		if ok, err := parseBody(a, c, &req); !ok {
			return err
		}

		in, err := a.InternshipService.SetStatus(c.UserContext(), middleware.GetActor(c), c.Params("id"), models.InternshipStatus(req.Status))
		if err != nil {
			return handleError(c, err)
		}
		return success(c, fiber.Map{"internship": in})
	}
}

func DeleteInternship(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := a.InternshipService.Delete(c.UserContext(), middleware.GetActor(c), c.Params("id")); err != nil {
			return handleError(c, err)
		}
		return success(c, fiber.Map{"success": true})
	}
}
