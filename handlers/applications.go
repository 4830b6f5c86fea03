package handlers

import (
	"bytes"
	"internship-portal/app"
	"internship-portal/export"
	"internship-portal/letter"
	"internship-portal/middleware"
	"internship-portal/models"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Apply submits an application. Accepts JSON or multipart with an optional "resume" file.
func Apply(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.ApplyRequest
		if ok, err := parseBody(a, c, &req); !ok {
			return err
		}

		upload, f, err := openUpload(c, "resume")
		if err != nil {
			return serverErrorWithDetails(c, "Failed to read upload", err)
		}
		if f != nil {
			defer f.Close()
		}

		application, err := a.ApplicationService.Apply(c.UserContext(), middleware.GetActor(c), req, upload)
		if err != nil {
			return handleError(c, err)
		}
		return created(c, fiber.Map{"application": application})
	}
}

// ListMyApplications returns the caller's applications
func ListMyApplications(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := a.ApplicationService.ListOwn(middleware.GetActor(c), c.Query("status"), pageFromQuery(c))
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(result)
	}
}

// GetApplication returns one application; students only see their own
func GetApplication(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		application, err := a.ApplicationService.Get(middleware.GetActor(c), c.Params("id"))
		if err != nil {
			return handleError(c, err)
		}
		return success(c, fiber.Map{"application": application})
	}
}

func WithdrawApplication(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		application, err := a.ApplicationService.Withdraw(c.UserContext(), middleware.GetActor(c), c.Params("id"))
		if err != nil {
			return handleError(c, err)
		}
		return success(c, fiber.Map{"application": application})
	}
}

// ApplicationLetter renders the application letter as HTML
func ApplicationLetter(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		data, err := a.ApplicationService.LetterData(middleware.GetActor(c), c.Params("id"))
		if err != nil {
			return handleError(c, err)
		}

		html, err := letter.Render(c.UserContext(), *data)
		if err != nil {
			return serverErrorWithDetails(c, "Failed to render letter", err)
		}

		if c.QueryBool("download") {
			name := letter.Filename(data.StudentName, data.Company)
			c.Set(fiber.HeaderContentDisposition, "attachment; filename="+strconv.Quote(name))
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.Send(html)
	}
}

// ApplicationResume streams the resume submitted with an application
func ApplicationResume(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		file, err := a.ApplicationService.OpenResume(c.UserContext(), middleware.GetActor(c), c.Params("id"))
		if err != nil {
			return handleError(c, err)
		}
		return sendFile(c, file)
	}
}

func applicationFilter(c *fiber.Ctx) models.ApplicationFilter {
	return models.ApplicationFilter{
		Status:       c.Query("status"),
		InternshipID: c.Query("internship_id"),
		Search:       c.Query("search"),
		Page:         pageFromQuery(c),
	}
}

// ListApplications returns a filtered page of all applications (admin)
func ListApplications(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := a.ApplicationService.List(applicationFilter(c))
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(result)
	}
}

// UpdateApplicationStatus reviews an application (admin)
func UpdateApplicationStatus(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.ApplicationStatusRequest
		if ok, err := parseBody(a, c, &req); !ok {
			return err
		}

		application, err := a.ApplicationService.UpdateStatus(c.UserContext(), middleware.GetActor(c),
			c.Params("id"), models.ApplicationStatus(req.Status), req.Note)
		if err != nil {
			return handleError(c, err)
		}
		return success(c, fiber.Map{"application": application})
	}
}

// ExportApplications downloads the filtered applications as CSV or XLSX
func ExportApplications(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		format := c.Query("format", export.FormatCSV)
		contentType, _, err := export.ContentType(format)
		if err != nil {
			return handleError(c, err)
		}

		var buf bytes.Buffer
		if err := a.ApplicationService.Export(c.UserContext(), middleware.GetActor(c), &buf, format, applicationFilter(c)); err != nil {
			return handleError(c, err)
		}

		c.Set(fiber.HeaderContentType, contentType)
		c.Set(fiber.HeaderContentDisposition, "attachment; filename="+strconv.Quote(export.Filename(format, time.Now())))
		return c.Send(buf.Bytes())
	}
}
