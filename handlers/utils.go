package handlers

import (
	"errors"
	"internship-portal/app"
	"internship-portal/export"
	"internship-portal/middleware"
	"internship-portal/models"
	"internship-portal/services"
	"internship-portal/storage"
	"internship-portal/validator"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

func success(c *fiber.Ctx, data fiber.Map) error {
	return c.JSON(data)
}

func created(c *fiber.Ctx, data fiber.Map) error {
	return c.Status(fiber.StatusCreated).JSON(data)
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
}

func serverErrorWithDetails(c *fiber.Ctx, message string, err error) error {
	slog.Error("server error",
		"request_id", middleware.GetRequestID(c),
		"method", c.Method(),
		"path", c.Path(),
		"message", message,
		"error", err,
	)

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":      message,
		"request_id": middleware.GetRequestID(c),
	})
}

func validationError(c *fiber.Ctx, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":   "Validation failed",
			"details": verrs,
		})
	}
	return badRequest(c, err.Error())
}

// parseBody decodes and validates a request body. It writes the error
// response itself and reports false when the handler should stop.
func parseBody(a *app.App, c *fiber.Ctx, req any) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		return false, badRequest(c, "Invalid request body")
	}
	if err := a.Validator.Validate(req); err != nil {
		return false, validationError(c, err)
	}
	return true, nil
}

// errorStatus maps service errors to HTTP status codes; first match wins.
var errorStatus = []struct {
	err    error
	status int
}{
	{services.ErrUserNotFound, fiber.StatusNotFound},
	{services.ErrInternshipNotFound, fiber.StatusNotFound},
	{services.ErrApplicationNotFound, fiber.StatusNotFound},
	{services.ErrEvaluationNotFound, fiber.StatusNotFound},
	{services.ErrNoticeNotFound, fiber.StatusNotFound},
	{services.ErrNotificationNotFound, fiber.StatusNotFound},
	{services.ErrResumeNotFound, fiber.StatusNotFound},

	{services.ErrInvalidCredentials, fiber.StatusUnauthorized},
	{services.ErrInvalidToken, fiber.StatusUnauthorized},
	{services.ErrInvalidAuthCode, fiber.StatusUnauthorized},
	{services.ErrSessionNotFound, fiber.StatusUnauthorized},
	{services.ErrUnauthorized, fiber.StatusUnauthorized},

	{services.ErrAccountSuspended, fiber.StatusForbidden},
	{services.ErrForbidden, fiber.StatusForbidden},

	{services.ErrEmailTaken, fiber.StatusConflict},
	{services.ErrAlreadyApplied, fiber.StatusConflict},
	{services.ErrEvaluationExists, fiber.StatusConflict},
	{services.ErrInternshipHasPlacements, fiber.StatusConflict},
	{services.ErrNoSlotsRemaining, fiber.StatusConflict},
	{services.ErrInvalidTransition, fiber.StatusConflict},

	{services.ErrInvalidDates, fiber.StatusBadRequest},
	{services.ErrSlotsBelowAccepted, fiber.StatusBadRequest},
	{services.ErrCannotModifySelf, fiber.StatusBadRequest},
	{services.ErrResumeRequired, fiber.StatusBadRequest},
	{services.ErrInternshipClosed, fiber.StatusBadRequest},
	{services.ErrEvaluationNotAllowed, fiber.StatusBadRequest},
	{services.ErrInvalidUserInfo, fiber.StatusBadRequest},
	{services.ErrResetTokenInvalid, fiber.StatusBadRequest},
	{storage.ErrEmptyFile, fiber.StatusBadRequest},
	{export.ErrUnsupportedFormat, fiber.StatusBadRequest},
	{storage.ErrFileTooLarge, fiber.StatusRequestEntityTooLarge},
	{storage.ErrUnsupportedFileType, fiber.StatusUnsupportedMediaType},

	{services.ErrProviderDisabled, fiber.StatusNotImplemented},
}

// handleError answers with the status a service error maps to, or a logged 500
func handleError(c *fiber.Ctx, err error) error {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return c.Status(e.status).JSON(fiber.Map{"error": err.Error()})
		}
	}
	return serverErrorWithDetails(c, "Internal server error", err)
}

// pageFromQuery reads page and pageSize query parameters
func pageFromQuery(c *fiber.Ctx) models.Page {
	return models.NewPage(c.QueryInt("page", 1), c.QueryInt("pageSize", models.DefaultPageSize))
}

func clientMeta(c *fiber.Ctx) services.ClientMeta {
	return services.ClientMeta{IP: c.IP(), UserAgent: c.Get(fiber.HeaderUserAgent)}
}

func setAuthCookie(a *app.App, c *fiber.Ctx, token string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.AuthCookie,
		Value:    token,
		Expires:  expires,
		HTTPOnly: true,
		Secure:   a.Config.IsProduction(),
		SameSite: "Lax",
		Path:     "/",
	})
}
