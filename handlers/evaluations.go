package handlers

import (
	"internship-portal/app"
	"internship-portal/middleware"
	"internship-portal/models"

	"github.com/gofiber/fiber/v2"
)

// ListMyEvaluations returns the caller's evaluations
func ListMyEvaluations(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		evaluations, err := a.EvaluationService.ListOwn(middleware.GetActor(c))
		if err != nil {
			return handleError(c, err)
		}
		return success(c, fiber.Map{"evaluations": evaluations})
	}
}

func CreateEvaluation(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.EvaluationRequest
		if ok, err := parseBody(a, c, &req); !ok {
			return err
		}

		ev, err := a.EvaluationService.Create(c.UserContext(), middleware.GetActor(c), c.Params("id"), req)
		if err != nil {
			return handleError(c, err)
		}
		return created(c, fiber.Map{"evaluation": ev})
	}
}

func UpdateEvaluation(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.EvaluationRequest
		if ok, err := parseBody(a, c, &req); !ok {
			return err
		}

		ev, err := a.EvaluationService.Update(c.UserContext(), middleware.GetActor(c), c.Params("id"), req)
		if err != nil {
			return handleError(c, err)
		}
		return success(c, fiber.Map{"evaluation": ev})
	}
}
