package handlers

import (
	"internship-portal/app"
	"internship-portal/middleware"
	"internship-portal/models"

	"github.com/gofiber/fiber/v2"
)

// ListUsers returns a filtered page of accounts (admin)
func ListUsers(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := a.UserService.List(models.UserFilter{
			Role:   c.Query("role"),
			Status: c.Query("status"),
			Search: c.Query("search"),
			Page:   pageFromQuery(c),
		})
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(result)
	}
}

func GetUser(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := a.UserService.Get(c.Params("id"))
		if err != nil {
			return handleError(c, err)
		}
		return success(c, fiber.Map{"user": user})
	}
}

func CreateUser(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.CreateUserRequest
		if ok, err := parseBody(a, c, &req); !ok {
			return err
		}

		user, err := a.UserService.Create(c.UserContext(), middleware.GetActor(c), req)
		if err != nil {
			return handleError(c, err)
		}
		return created(c, fiber.Map{"user": user})
	}
}

func UpdateUser(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.UpdateUserRequest
		if ok, err := parseBody(a, c, &req); !ok {
			return err
		}

		user, err := a.UserService.Update(c.UserContext(), middleware.GetActor(c), c.Params("id"), req)
		if err != nil {
			return handleError(c, err)
		}
		return success(c, fiber.Map{"user": user})
	}
}

// SetUserStatus suspends or reactivates an account
func SetUserStatus(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.UpdateUserStatusRequest
		if ok, err := parseBody(a, c, &req); !ok {
			return err
		}

		user, err := a.UserService.SetStatus(c.UserContext(), middleware.GetActor(c), c.Params("id"), models.UserStatus(req.Status))
		if err != nil {
			return handleError(c, err)
		}
		return success(c, fiber.Map{"user": user})
	}
}

func DeleteUser(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := a.UserService.Delete(c.UserContext(), middleware.GetActor(c), c.Params("id")); err != nil {
			return handleError(c, err)
		}
		return success(c, fiber.Map{"success": true})
	}
}
