package handlers_test

import (
	"bytes"
	"encoding/json"
	"internship-portal/app"
	"internship-portal/auth"
	"internship-portal/config"
	"internship-portal/config/setup"
	"internship-portal/mail"
	"internship-portal/models"
	"internship-portal/storage"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassword = "passw0rd123"

type testServer struct {
	app   *app.App
	fiber *fiber.App
}

// setupTestServer builds the full route table over a temporary database
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	tmpDir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := &config.Config{
		Env:                "test",
		CORSOrigins:        "*",
		AppURL:             "http://localhost:3000",
		UniversityName:     "Test University",
		JWTSecret:          "test-secret",
		JWTTTLHours:        1,
		UploadMaxBytes:     1 << 20,
		LoginRatePerMinute: 60,
	}

	db, err := setup.InitDatabase(filepath.Join(tmpDir, "test.db"), logger)
	require.NoError(t, err, "Failed to initialize test database")
	t.Cleanup(func() { db.Close() })

	files, err := storage.NewLocalProvider(filepath.Join(tmpDir, "uploads"))
	require.NoError(t, err)

	application := app.New(cfg, db, app.Infra{Mailer: mail.NewLogMailer(logger), Files: files}, logger)

	fiberApp := setup.NewFiberApp(cfg, logger)
	setup.ApplyMiddleware(fiberApp, application)
	setup.RegisterRoutes(fiberApp, application)

	return &testServer{app: application, fiber: fiberApp}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.send(t, req, token)
}

func (s *testServer) send(t *testing.T, req *http.Request, token string) (*http.Response, map[string]any) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.fiber.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp, out
}

// createAdmin inserts an admin directly and signs it in
func (s *testServer) createAdmin(t *testing.T) string {
	t.Helper()

	hash, err := auth.HashPassword(testPassword)
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, s.app.Repo.CreateUser(&models.User{
		ID:           uuid.New().String(),
		Email:        "admin@uni.edu",
		PasswordHash: hash,
		Name:         "Placement Office",
		Role:         models.RoleAdmin,
		Status:       models.UserStatusActive,
		AuthProvider: models.AuthProviderPassword,
		CreatedAt:    now,
		UpdatedAt:    now,
	}))

	resp, body := s.do(t, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email": "admin@uni.edu", "password": testPassword,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	return body["token"].(string)
}

func (s *testServer) registerStudent(t *testing.T, email string) string {
	t.Helper()

	resp, body := s.do(t, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"email":      email,
		"password":   testPassword,
		"name":       "Ada Student",
		"student_no": "CS-2024-001",
		"department": "Computer Science",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	return body["token"].(string)
}

func date(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format(models.DateLayout)
}

func (s *testServer) createInternship(t *testing.T, adminToken string, slots int) string {
	t.Helper()

	resp, body := s.do(t, http.MethodPost, "/api/admin/internships", adminToken, fiber.Map{
		"title":       "Backend Intern",
		"company":     "Acme Labs",
		"description": "Build and operate internal services.",
		"location":    "Jakarta",
		"work_type":   "hybrid",
		"slots":       slots,
		"stipend":     1500,
		"start_date":  date(30),
		"end_date":    date(120),
		"deadline":    date(10),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	return body["internship"].(map[string]any)["id"].(string)
}

const coverLetter = "I am excited to apply for this internship because it matches my coursework in distributed systems."

func applyRequest(t *testing.T, internshipID string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("internship_id", internshipID))
	require.NoError(t, w.WriteField("cover_letter", coverLetter))
	part, err := w.CreateFormFile("resume", "cv.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n%%EOF\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/applications", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestHealth(t *testing.T) {
	s := setupTestServer(t)

	resp, body := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "up", body["database"])
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestAuthFlow(t *testing.T) {
	s := setupTestServer(t)
	token := s.registerStudent(t, "ada@uni.edu")

	resp, body := s.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	user := body["user"].(map[string]any)
	assert.Equal(t, "ada@uni.edu", user["email"])
	assert.Equal(t, "student", user["role"])
	assert.NotContains(t, user, "password_hash")

	resp, _ = s.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// The session is revoked even though the JWT has not expired
	resp, _ = s.do(t, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body = s.do(t, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email": "ADA@uni.edu", "password": testPassword,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.NotEmpty(t, body["token"])

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "auth_token" {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "login sets the auth cookie")
	assert.True(t, cookie.HttpOnly)
}

func TestRegister_Errors(t *testing.T) {
	s := setupTestServer(t)
	s.registerStudent(t, "ada@uni.edu")

	tests := []struct {
		name           string
		body           fiber.Map
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "Weak password",
			body:           fiber.Map{"email": "bob@uni.edu", "password": "password", "name": "Bob"},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedError:  "Validation failed",
		},
		{
			name:           "Invalid email",
			body:           fiber.Map{"email": "not-an-email", "password": testPassword, "name": "Bob"},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedError:  "Validation failed",
		},
		{
			name:           "Duplicate email",
			body:           fiber.Map{"email": "Ada@Uni.edu", "password": testPassword, "name": "Ada Again"},
			expectedStatus: http.StatusConflict,
			expectedError:  "email already registered",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := s.do(t, http.MethodPost, "/api/auth/register", "", tt.body)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			assert.Equal(t, tt.expectedError, body["error"])
		})
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	s := setupTestServer(t)
	s.registerStudent(t, "ada@uni.edu")

	resp, body := s.do(t, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email": "ada@uni.edu", "password": "wrong-passw0rd",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid email or password", body["error"])
}

func TestExternalProvidersDisabled(t *testing.T) {
	s := setupTestServer(t)

	resp, _ := s.do(t, http.MethodPost, "/api/auth/google", "", fiber.Map{"id_token": "abc"})
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPost, "/api/auth/google", "", fiber.Map{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPost, "/api/auth/supabase", "", fiber.Map{"access_token": "abc"})
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
}

func TestGoogleCallback_StateMismatch(t *testing.T) {
	s := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=forged&code=abc", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "expected"})
	resp, _ := s.send(t, req, "")

	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "error=invalid_state")
}

func TestProtectedRoutes(t *testing.T) {
	s := setupTestServer(t)
	student := s.registerStudent(t, "ada@uni.edu")

	resp, _ := s.do(t, http.MethodGet, "/api/internships", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/api/admin/users", student, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	events, err := s.app.AuditService.SecurityEvents(models.SecurityFilter{Event: models.EventForbidden, Page: models.NewPage(1, 10)})
	require.NoError(t, err)
	assert.Equal(t, 1, events.TotalRows)
}

func TestProfile(t *testing.T) {
	s := setupTestServer(t)
	token := s.registerStudent(t, "ada@uni.edu")

	resp, body := s.do(t, http.MethodPut, "/api/profile", token, fiber.Map{
		"name": "Ada Lovelace", "phone": "+62 812 0000", "department": "Informatics",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "Ada Lovelace", body["user"].(map[string]any)["name"])

	resp, body = s.do(t, http.MethodPut, "/api/profile/password", token, fiber.Map{
		"current_password": "wrong-passw0rd", "new_password": "newpassw0rd",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, body)

	resp, _ = s.do(t, http.MethodPut, "/api/profile/password", token, fiber.Map{
		"current_password": testPassword, "new_password": "newpassw0rd",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestApplicationWorkflow(t *testing.T) {
	s := setupTestServer(t)
	admin := s.createAdmin(t)
	student := s.registerStudent(t, "ada@uni.edu")
	internshipID := s.createInternship(t, admin, 1)

	// Students only see open internships, with remaining slots
	resp, body := s.do(t, http.MethodGet, "/api/internships?search=backend", student, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["totalRows"])
	listed := body["data"].([]any)[0].(map[string]any)
	assert.Equal(t, float64(1), listed["remaining_slots"])

	// Apply with a resume upload
	resp, body = s.send(t, applyRequest(t, internshipID), student)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	applicationID := body["application"].(map[string]any)["id"].(string)

	resp, body = s.send(t, applyRequest(t, internshipID), student)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, body)

	resp, body = s.do(t, http.MethodGet, "/api/notifications/unread-count", student, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["count"])

	// Admin review
	resp, body = s.do(t, http.MethodPut, "/api/admin/applications/"+applicationID+"/status", admin, fiber.Map{
		"status": "accepted", "note": "Welcome aboard",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "accepted", body["application"].(map[string]any)["status"])

	resp, body = s.do(t, http.MethodPut, "/api/admin/applications/"+applicationID+"/status", admin, fiber.Map{
		"status": "rejected",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode, body)

	resp, _ = s.do(t, http.MethodPost, "/api/applications/"+applicationID+"/withdraw", student, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Letter
	req := httptest.NewRequest(http.MethodGet, "/api/applications/"+applicationID+"/letter?download=1", nil)
	resp, _ = s.send(t, req, student)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")

	// Resume download
	req = httptest.NewRequest(http.MethodGet, "/api/applications/"+applicationID+"/resume", nil)
	resp, _ = s.send(t, req, admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))

	// Evaluation
	resp, body = s.do(t, http.MethodPost, "/api/admin/applications/"+applicationID+"/evaluation", admin, fiber.Map{
		"score": 91, "feedback": "Outstanding ownership of the billing migration.",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	assert.Equal(t, "A", body["evaluation"].(map[string]any)["grade"])

	resp, body = s.do(t, http.MethodGet, "/api/evaluations", student, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["evaluations"], 1)

	// Analytics
	resp, body = s.do(t, http.MethodGet, "/api/admin/analytics", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["students"])
	assert.Equal(t, float64(1), body["total_applications"])

	// Placements block deletion
	resp, _ = s.do(t, http.MethodDelete, "/api/admin/internships/"+internshipID, admin, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestApply_OtherStudentCannotRead(t *testing.T) {
	s := setupTestServer(t)
	admin := s.createAdmin(t)
	ada := s.registerStudent(t, "ada@uni.edu")
	bob := s.registerStudent(t, "bob@uni.edu")
	internshipID := s.createInternship(t, admin, 2)

	resp, body := s.send(t, applyRequest(t, internshipID), ada)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	applicationID := body["application"].(map[string]any)["id"].(string)

	resp, _ = s.do(t, http.MethodGet, "/api/applications/"+applicationID, bob, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/api/applications/"+applicationID, ada, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestExportApplications(t *testing.T) {
	s := setupTestServer(t)
	admin := s.createAdmin(t)
	student := s.registerStudent(t, "ada@uni.edu")
	internshipID := s.createInternship(t, admin, 3)

	resp, body := s.send(t, applyRequest(t, internshipID), student)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/applications/export?format=csv", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	resp, err := s.fiber.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".csv")

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Ada Student")
	assert.Contains(t, string(raw), "Acme Labs")

	resp, _ = s.do(t, http.MethodGet, "/api/admin/applications/export?format=pdf", admin, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNotices(t *testing.T) {
	s := setupTestServer(t)
	admin := s.createAdmin(t)
	student := s.registerStudent(t, "ada@uni.edu")

	resp, body := s.do(t, http.MethodPost, "/api/admin/notices", admin, fiber.Map{
		"title": "Orientation week", "body": "Orientation starts Monday at 9am.", "audience": "students",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	noticeID := body["notice"].(map[string]any)["id"].(string)

	// Drafts are invisible to students
	resp, body = s.do(t, http.MethodGet, "/api/notices", student, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["totalRows"])

	resp, body = s.do(t, http.MethodPut, "/api/admin/notices/"+noticeID+"/publish", admin, fiber.Map{"published": true})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	resp, body = s.do(t, http.MethodGet, "/api/notices", student, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["totalRows"])

	resp, body = s.do(t, http.MethodGet, "/api/notifications?unread=true", student, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, float64(1), body["totalRows"])
	notificationID := body["data"].([]any)[0].(map[string]any)["id"].(string)

	// Another user's notification is not found
	resp, _ = s.do(t, http.MethodPut, "/api/notifications/"+notificationID+"/read", admin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPut, "/api/notifications/"+notificationID+"/read", student, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = s.do(t, http.MethodGet, "/api/notifications/unread-count", student, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["count"])
}

func TestAdminUsers(t *testing.T) {
	s := setupTestServer(t)
	admin := s.createAdmin(t)
	student := s.registerStudent(t, "ada@uni.edu")

	resp, body := s.do(t, http.MethodGet, "/api/admin/users?role=student", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, float64(1), body["totalRows"])
	studentID := body["data"].([]any)[0].(map[string]any)["id"].(string)

	resp, body = s.do(t, http.MethodPut, "/api/admin/users/"+studentID+"/status", admin, fiber.Map{"status": "suspended"})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	// Suspension revokes existing sessions
	resp, _ = s.do(t, http.MethodGet, "/api/auth/me", student, nil)
	assert.Contains(t, []int{http.StatusUnauthorized, http.StatusForbidden}, resp.StatusCode)

	resp, body = s.do(t, http.MethodGet, "/api/auth/me", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	adminID := body["user"].(map[string]any)["id"].(string)

	resp, _ = s.do(t, http.MethodDelete, "/api/admin/users/"+adminID, admin, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/api/admin/activity-logs?entity_type=user", admin, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = s.do(t, http.MethodGet, "/api/admin/emails/stats", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "counts")
}
