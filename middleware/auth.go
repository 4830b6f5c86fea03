package middleware

import (
	"context"
	"errors"
	"internship-portal/models"
	"internship-portal/services"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// AuthCookie carries the access token for browser clients.
const AuthCookie = "auth_token"

// Authenticator resolves an access token to its principal
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*services.Principal, error)
}

// SecurityRecorder records security events
type SecurityRecorder interface {
	SecurityEvent(ctx context.Context, ev models.SecurityEvent)
}

// AuthRequired creates an authentication middleware that requires a valid
// auth_token cookie or Bearer token bound to a live session
func AuthRequired(authenticator Authenticator, recorder SecurityRecorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(AuthCookie)
		fromCookie := token != ""

		if token == "" {
			authHeader := c.Get("Authorization")
			if authHeader == "" {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Missing authorization",
				})
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Invalid authorization header format",
				})
			}
			token = parts[1]
		}

		principal, err := authenticator.Authenticate(c.UserContext(), token)
		if err != nil {
			if fromCookie {
				c.ClearCookie(AuthCookie)
			}

			switch {
			case errors.Is(err, services.ErrAccountSuspended):
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"error": "Account suspended",
				})
			case errors.Is(err, services.ErrInvalidToken), errors.Is(err, services.ErrSessionNotFound):
				recorder.SecurityEvent(c.UserContext(), models.SecurityEvent{
					Event:    models.EventTokenInvalid,
					Severity: models.SeverityWarning,
					IP:       c.IP(),
					Path:     c.Path(),
					Detail:   err.Error(),
				})
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Invalid or expired token",
				})
			default:
				return err
			}
		}

		c.Locals("userID", principal.User.ID)
		c.Locals("userRole", string(principal.User.Role))
		c.Locals("sessionID", principal.SessionID)
		c.Locals("principal", principal)

		return c.Next()
	}
}

// RequireRole rejects authenticated users without the given role
func RequireRole(role models.Role, recorder SecurityRecorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetUserRole(c) != role {
			recorder.SecurityEvent(c.UserContext(), models.SecurityEvent{
				Event:    models.EventForbidden,
				Severity: models.SeverityWarning,
				UserID:   GetUserID(c),
				IP:       c.IP(),
				Path:     c.Path(),
				Detail:   "requires role " + string(role),
			})
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden",
			})
		}
		return c.Next()
	}
}

func GetUserID(c *fiber.Ctx) string {
	userID, ok := c.Locals("userID").(string)
	if !ok {
		return ""
	}
	return userID
}

func GetUserRole(c *fiber.Ctx) models.Role {
	role, ok := c.Locals("userRole").(string)
	if !ok {
		return ""
	}
	return models.Role(role)
}

func GetSessionID(c *fiber.Ctx) string {
	sessionID, ok := c.Locals("sessionID").(string)
	if !ok {
		return ""
	}
	return sessionID
}

func GetPrincipal(c *fiber.Ctx) *services.Principal {
	p, _ := c.Locals("principal").(*services.Principal)
	return p
}

// GetActor returns the authenticated caller as a service actor
func GetActor(c *fiber.Ctx) services.Actor {
	return services.Actor{
		ID:   GetUserID(c),
		Role: GetUserRole(c),
		IP:   c.IP(),
	}
}
