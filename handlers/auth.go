package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"internship-portal/app"
	"internship-portal/middleware"
	"internship-portal/models"
	"internship-portal/services"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
)

const oauthStateCookie = "oauth_state"

func loginResponse(a *app.App, c *fiber.Ctx, status int, result *services.LoginResult) error {
	setAuthCookie(a, c, result.Token, result.ExpiresAt)
	return c.Status(status).JSON(fiber.Map{
		"success":    true,
		"token":      result.Token,
		"expires_at": result.ExpiresAt,
		"user":       result.User,
	})
}

// Register creates a student account and signs it in
func Register(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.RegisterRequest
		if ok, err := parseBody(a, c, &req); !ok {
			return err
		}

		result, err := a.AuthService.Register(c.UserContext(), req, clientMeta(c))
		if err != nil {
			return handleError(c, err)
		}
		return loginResponse(a, c, fiber.StatusCreated, result)
	}
}

// Login handles email and password authentication
func Login(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.LoginRequest
		if ok, err := parseBody(a, c, &req); !ok {
			return err
		}

		result, err := a.AuthService.Login(c.UserContext(), req.Email, req.Password, clientMeta(c))
		if err != nil {
			return handleError(c, err)
		}
		return loginResponse(a, c, fiber.StatusOK, result)
	}
}

// GoogleLogin handles the Google Identity Services popup (ID token or code)
func GoogleLogin(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.GoogleLoginRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		if req.IDToken == "" && req.Code == "" {
			return badRequest(c, "Either id_token or code is required")
		}

		result, err := a.AuthService.LoginWithGoogle(c.UserContext(), req, clientMeta(c))
		if err != nil {
			return handleError(c, err)
		}
		return loginResponse(a, c, fiber.StatusOK, result)
	}
}

// GoogleRedirect sends the browser to the Google consent screen
func GoogleRedirect(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		state, err := newState()
		if err != nil {
			return serverErrorWithDetails(c, "Failed to start sign-in", err)
		}

		authURL, err := a.AuthService.GoogleAuthURL(state)
		if err != nil {
			return handleError(c, err)
		}

		// Store state in a short-lived cookie for CSRF protection
		c.Cookie(&fiber.Cookie{
			Name:     oauthStateCookie,
			Value:    state,
			Expires:  time.Now().Add(10 * time.Minute),
			HTTPOnly: true,
			Secure:   a.Config.IsProduction(),
			SameSite: "Lax",
			Path:     "/",
		})

		return c.Redirect(authURL, fiber.StatusTemporaryRedirect)
	}
}

// GoogleCallback handles the OAuth callback from Google
func GoogleCallback(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fail := func(reason string) error {
			return c.Redirect(a.Config.AppURL+"/login?error="+url.QueryEscape(reason), fiber.StatusTemporaryRedirect)
		}

		stateCookie := c.Cookies(oauthStateCookie)
		c.ClearCookie(oauthStateCookie)
		if stateCookie == "" || c.Query("state") != stateCookie {
			a.Activity.SecurityEvent(c.UserContext(), models.SecurityEvent{
				Event:    models.EventTokenInvalid,
				Severity: models.SeverityWarning,
				IP:       c.IP(),
				Path:     c.Path(),
				Detail:   "google: oauth state mismatch",
			})
			return fail("invalid_state")
		}

		if errParam := c.Query("error"); errParam != "" {
			return fail(errParam)
		}

		code := c.Query("code")
		if code == "" {
			return fail("missing_code")
		}

		result, err := a.AuthService.LoginWithGoogle(c.UserContext(), models.GoogleLoginRequest{Code: code}, clientMeta(c))
		if err != nil {
			reason := "login_failed"
			if errors.Is(err, services.ErrAccountSuspended) {
				reason = "account_suspended"
			}
			return fail(reason)
		}

		setAuthCookie(a, c, result.Token, result.ExpiresAt)
		return c.Redirect(a.Config.AppURL+"/", fiber.StatusTemporaryRedirect)
	}
}

// SupabaseLogin exchanges a Supabase access token for a portal session
func SupabaseLogin(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.SupabaseLoginRequest
		if ok, err := parseBody(a, c, &req); !ok {
			return err
		}

		result, err := a.AuthService.LoginWithSupabase(c.UserContext(), req.AccessToken, clientMeta(c))
		if err != nil {
			return handleError(c, err)
		}
		return loginResponse(a, c, fiber.StatusOK, result)
	}
}

// ForgotPassword always answers the same way so accounts cannot be enumerated
func ForgotPassword(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.ForgotPasswordRequest
		if ok, err := parseBody(a, c, &req); !ok {
			return err
		}

		if err := a.AuthService.ForgotPassword(c.UserContext(), req.Email); err != nil {
			return serverErrorWithDetails(c, "Failed to process request", err)
		}
		return success(c, fiber.Map{
			"success": true,
			"message": "If the email is registered, a reset link has been sent",
		})
	}
}

func ResetPassword(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.ResetPasswordRequest
		if ok, err := parseBody(a, c, &req); !ok {
			return err
		}

		if err := a.AuthService.ResetPassword(c.UserContext(), req.Token, req.NewPassword, clientMeta(c)); err != nil {
			return handleError(c, err)
		}
		return success(c, fiber.Map{"success": true})
	}
}

// Logout revokes the current session
func Logout(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal := middleware.GetPrincipal(c)
		if principal != nil {
			if err := a.AuthService.Logout(c.UserContext(), principal, c.IP()); err != nil {
				return serverErrorWithDetails(c, "Failed to log out", err)
			}
		}

		c.ClearCookie(middleware.AuthCookie)
		return success(c, fiber.Map{"success": true})
	}
}

// Me returns the signed-in user
func Me(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal := middleware.GetPrincipal(c)
		if principal == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"authenticated": false})
		}
		return success(c, fiber.Map{
			"authenticated": true,
			"user":          principal.User,
		})
	}
}

// newState returns a random OAuth state token
func newState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
