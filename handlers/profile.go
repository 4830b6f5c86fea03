package handlers

import (
	"internship-portal/app"
	"internship-portal/middleware"
	"internship-portal/models"
	"internship-portal/services"
	"io"
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// GetProfile returns the caller's account
func GetProfile(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := a.UserService.GetProfile(middleware.GetUserID(c))
		if err != nil {
			return handleError(c, err)
		}
		return success(c, fiber.Map{"user": user})
	}
}

func UpdateProfile(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.UpdateProfileRequest
		if ok, err := parseBody(a, c, &req); !ok {
			return err
		}

		user, err := a.UserService.UpdateProfile(c.UserContext(), middleware.GetActor(c), req)
		if err != nil {
			return handleError(c, err)
		}
		return success(c, fiber.Map{"user": user})
	}
}

func ChangePassword(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.ChangePasswordRequest
		if ok, err := parseBody(a, c, &req); !ok {
			return err
		}

		err := a.AuthService.ChangePassword(c.UserContext(), middleware.GetUserID(c), req.CurrentPassword, req.NewPassword)
		if err != nil {
			return handleError(c, err)
		}
		return success(c, fiber.Map{"success": true})
	}
}

// UploadResume stores the multipart "resume" file on the caller's profile
func UploadResume(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("resume")
		if err != nil {
			return badRequest(c, "resume file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return serverErrorWithDetails(c, "Failed to read upload", err)
		}
		defer f.Close()

		user, err := a.UserService.UploadResume(c.UserContext(), middleware.GetActor(c), fh.Filename, fh.Size, f)
		if err != nil {
			return handleError(c, err)
		}
		return success(c, fiber.Map{"user": user})
	}
}

// DownloadUserResume streams a profile resume to its owner or an admin
func DownloadUserResume(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		file, err := a.UserService.OpenResume(c.UserContext(), middleware.GetActor(c), c.Params("userID"))
		if err != nil {
			return handleError(c, err)
		}
		return sendFile(c, file)
	}
}

// openUpload returns the optional multipart file under field
func openUpload(c *fiber.Ctx, field string) (*services.Upload, multipart.File, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		// Absent or not multipart
		return nil, nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	return &services.Upload{Filename: fh.Filename, Size: fh.Size, Reader: f}, f, nil
}

func sendFile(c *fiber.Ctx, file *services.StoredFile) error {
	defer file.Body.Close()

	body, err := io.ReadAll(file.Body)
	if err != nil {
		return serverErrorWithDetails(c, "Failed to read file", err)
	}

	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderContentDisposition, "attachment; filename="+strconv.Quote(file.Filename))
	c.Set("X-Content-Type-Options", "nosniff")
	return c.Send(body)
}
