package services

import (
	"bytes"
	"context"
	"internship-portal/database"
	"internship-portal/mail"
	"internship-portal/models"
	"internship-portal/storage"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// portal wires the services against a real SQLite database
type portal struct {
	repo          *database.Repository
	audit         *recordingAudit
	emails        *fakeQueue
	analytics     *countingInvalidator
	users         *UserService
	internships   *InternshipService
	applications  *ApplicationService
	evaluations   *EvaluationService
	notices       *NoticeService
	notifications *NotificationService
	admin         Actor
}

func setupPortal(t *testing.T) *portal {
	t.Helper()

	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = func() time.Time { return time.Now().UTC() } })

	dir := t.TempDir()
	db, err := database.New(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })

	files, err := storage.NewLocalProvider(filepath.Join(dir, "uploads"))
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := database.NewRepository(db)
	p := &portal{
		repo:      repo,
		audit:     &recordingAudit{},
		emails:    &fakeQueue{},
		analytics: &countingInvalidator{},
	}
	templates := mail.Templates{AppURL: "https://portal.test", University: "Test University"}

	p.notifications = NewNotificationService(repo)
	p.users = NewUserService(repo, nil, files, 1<<20, p.audit, nil, logger)
	p.internships = NewInternshipService(repo, p.audit, p.analytics, logger)
	p.applications = NewApplicationService(ApplicationDeps{
		Applications: repo,
		Internships:  repo,
		Users:        repo,
		Resumes:      p.users,
		Notifier:     p.notifications,
		Emails:       p.emails,
		Templates:    templates,
		Audit:        p.audit,
		Analytics:    p.analytics,
		University:   "Test University",
		Logger:       logger,
	})
	p.evaluations = NewEvaluationService(repo, repo, p.notifications, p.emails, templates, p.audit, p.analytics, logger)
	p.notices = NewNoticeService(repo, repo, p.notifications, p.audit, logger)

	admin := p.createUser(t, "admin@example.com", models.RoleAdmin)
	p.admin = Actor{ID: admin.ID, Role: models.RoleAdmin, IP: "127.0.0.1"}
	return p
}

func (p *portal) createUser(t *testing.T, email string, role models.Role) *models.User {
	t.Helper()
	ts := now()
	u := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         "User " + email,
		Role:         role,
		Status:       models.UserStatusActive,
		StudentNo:    "S-1001",
		AuthProvider: models.AuthProviderPassword,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
	require.NoError(t, p.repo.CreateUser(u))
	return u
}

func (p *portal) student(t *testing.T, email string) Actor {
	t.Helper()
	u := p.createUser(t, email, models.RoleStudent)
	return Actor{ID: u.ID, Role: models.RoleStudent, IP: "127.0.0.2"}
}

func (p *portal) createInternship(t *testing.T, slots int) *models.Internship {
	t.Helper()
	in, err := p.internships.Create(context.Background(), p.admin, models.InternshipRequest{
		Title:       "Backend Intern",
		Company:     "Acme",
		Description: "Build services",
		Location:    "Remote",
		WorkType:    "remote",
		Slots:       slots,
		StartDate:   "2026-06-01",
		EndDate:     "2026-08-31",
		Deadline:    "2026-04-30",
	})
	require.NoError(t, err)
	return in
}

func pdfUpload() *Upload {
	body := []byte("%PDF-1.4\n1 0 obj <<>> endobj\ntrailer <<>>\n%%EOF\n")
	return &Upload{Filename: "cv.pdf", Size: int64(len(body)), Reader: bytes.NewReader(body)}
}

func applyRequest(internshipID string) models.ApplyRequest {
	return models.ApplyRequest{
		InternshipID: internshipID,
		CoverLetter:  "I would like to join the backend team.\n\nI have built several Go services.",
	}
}

func TestInternshipService_Validation(t *testing.T) {
	p := setupPortal(t)
	ctx := context.Background()

	req := models.InternshipRequest{
		Title: "Intern", Company: "Acme", Description: "d", Location: "x", WorkType: "onsite",
		Slots: 1, StartDate: "2026-06-01", EndDate: "2026-05-01", Deadline: "2026-04-30",
	}
	_, err := p.internships.Create(ctx, p.admin, req)
	assert.ErrorIs(t, err, ErrInvalidDates)

	req.EndDate = "2026-07-01"
	req.Deadline = "2026-06-15"
	_, err = p.internships.Create(ctx, p.admin, req)
	assert.ErrorIs(t, err, ErrInvalidDates)

	in := p.createInternship(t, 2)
	assert.Equal(t, 2, in.SlotsRemaining)

	// Students only see open postings.
	_, err = p.internships.SetStatus(ctx, p.admin, in.ID, models.InternshipClosed)
	require.NoError(t, err)
	student := p.student(t, "s@example.com")
	page, err := p.internships.List(student, models.InternshipFilter{Page: models.NewPage(1, 20)})
	require.NoError(t, err)
	assert.Equal(t, 0, page.TotalRows)
	page, err = p.internships.List(p.admin, models.InternshipFilter{Page: models.NewPage(1, 20)})
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalRows)
}

func TestApplicationService_Lifecycle(t *testing.T) {
	p := setupPortal(t)
	ctx := context.Background()
	in := p.createInternship(t, 1)
	alice := p.student(t, "alice@example.com")
	bob := p.student(t, "bob@example.com")

	t.Run("Error - Resume required", func(t *testing.T) {
		_, err := p.applications.Apply(ctx, alice, applyRequest(in.ID), nil)
		assert.ErrorIs(t, err, ErrResumeRequired)
	})

	var aliceApp, bobApp *models.Application
	t.Run("Success - Apply with uploaded resume", func(t *testing.T) {
		var err error
		aliceApp, err = p.applications.Apply(ctx, alice, applyRequest(in.ID), pdfUpload())
		require.NoError(t, err)
		assert.Equal(t, models.ApplicationPending, aliceApp.Status)
		assert.Equal(t, "Backend Intern", aliceApp.InternshipTitle)
		assert.NotEmpty(t, aliceApp.ResumeKey)

		count, err := p.notifications.UnreadCount(alice.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
		count, err = p.notifications.UnreadCount(p.admin.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
		assert.Contains(t, p.emails.subjects(), "Application received: Backend Intern")

		file, err := p.applications.OpenResume(ctx, p.admin, aliceApp.ID)
		require.NoError(t, err)
		defer file.Body.Close()
		assert.Equal(t, "resume.pdf", file.Filename)
	})

	t.Run("Error - Already applied", func(t *testing.T) {
		_, err := p.applications.Apply(ctx, alice, applyRequest(in.ID), pdfUpload())
		assert.ErrorIs(t, err, ErrAlreadyApplied)
	})

	t.Run("Error - Other students cannot read the application", func(t *testing.T) {
		_, err := p.applications.Get(bob, aliceApp.ID)
		assert.ErrorIs(t, err, ErrApplicationNotFound)
	})

	t.Run("Success - Accept takes the only slot", func(t *testing.T) {
		var err error
		bobApp, err = p.applications.Apply(ctx, bob, applyRequest(in.ID), pdfUpload())
		require.NoError(t, err)

		accepted, err := p.applications.UpdateStatus(ctx, p.admin, aliceApp.ID, models.ApplicationAccepted, "Welcome aboard")
		require.NoError(t, err)
		assert.Equal(t, models.ApplicationAccepted, accepted.Status)
		assert.Equal(t, "Welcome aboard", accepted.AdminNote)
		assert.Equal(t, p.admin.ID, accepted.ReviewedBy)

		_, err = p.applications.UpdateStatus(ctx, p.admin, bobApp.ID, models.ApplicationAccepted, "")
		assert.ErrorIs(t, err, ErrNoSlotsRemaining)
	})

	t.Run("Error - Invalid transitions", func(t *testing.T) {
		_, err := p.applications.UpdateStatus(ctx, p.admin, aliceApp.ID, models.ApplicationUnderReview, "")
		assert.ErrorIs(t, err, ErrInvalidTransition)

		_, err = p.applications.Withdraw(ctx, alice, aliceApp.ID)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("Success - Withdraw pending application", func(t *testing.T) {
		withdrawn, err := p.applications.Withdraw(ctx, bob, bobApp.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ApplicationWithdrawn, withdrawn.Status)
	})

	t.Run("Error - Internship with placements cannot be deleted", func(t *testing.T) {
		err := p.internships.Delete(ctx, p.admin, in.ID)
		assert.ErrorIs(t, err, ErrInternshipHasPlacements)
	})

	t.Run("Success - Letter data", func(t *testing.T) {
		data, err := p.applications.LetterData(alice, aliceApp.ID)
		require.NoError(t, err)
		assert.Equal(t, "Acme", data.Company)
		assert.Equal(t, "Test University", data.University)
		assert.Equal(t, "S-1001", data.StudentNo)
	})

	t.Run("Success - Export CSV", func(t *testing.T) {
		var buf bytes.Buffer
		err := p.applications.Export(ctx, p.admin, &buf, "csv", models.ApplicationFilter{InternshipID: in.ID})
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "alice@example.com")
		assert.Contains(t, buf.String(), "bob@example.com")
	})

	assert.Greater(t, p.analytics.count(), 0)
	assert.Contains(t, p.audit.actions(), "application.status")
}

func TestApplicationService_ClosedInternship(t *testing.T) {
	p := setupPortal(t)
	ctx := context.Background()
	in := p.createInternship(t, 3)
	student := p.student(t, "late@example.com")

	now = func() time.Time { return time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC) }
	_, err := p.applications.Apply(ctx, student, applyRequest(in.ID), pdfUpload())
	assert.ErrorIs(t, err, ErrInternshipClosed)

	closed, err := p.internships.CloseExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), closed)

	_, err = p.internships.SetStatus(ctx, p.admin, in.ID, models.InternshipOpen)
	assert.ErrorIs(t, err, ErrInvalidDates)
}

func TestEvaluationService(t *testing.T) {
	p := setupPortal(t)
	ctx := context.Background()
	in := p.createInternship(t, 2)
	student := p.student(t, "eval@example.com")

	app, err := p.applications.Apply(ctx, student, applyRequest(in.ID), pdfUpload())
	require.NoError(t, err)

	_, err = p.evaluations.Create(ctx, p.admin, app.ID, models.EvaluationRequest{Score: 90, Feedback: "Great"})
	assert.ErrorIs(t, err, ErrEvaluationNotAllowed)

	_, err = p.applications.UpdateStatus(ctx, p.admin, app.ID, models.ApplicationAccepted, "")
	require.NoError(t, err)

	ev, err := p.evaluations.Create(ctx, p.admin, app.ID, models.EvaluationRequest{Score: 84, Feedback: "Solid work"})
	require.NoError(t, err)
	assert.Equal(t, "B", ev.Grade)
	assert.Contains(t, p.emails.subjects(), "Internship evaluation posted")

	_, err = p.evaluations.Create(ctx, p.admin, app.ID, models.EvaluationRequest{Score: 70, Feedback: "Again"})
	assert.ErrorIs(t, err, ErrEvaluationExists)

	updated, err := p.evaluations.Update(ctx, p.admin, ev.ID, models.EvaluationRequest{Score: 95, Feedback: "Excellent"})
	require.NoError(t, err)
	assert.Equal(t, "A", updated.Grade)

	own, err := p.evaluations.ListOwn(student)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "Backend Intern", own[0].InternshipTitle)
}

func TestNoticeService_PublishFanOut(t *testing.T) {
	p := setupPortal(t)
	ctx := context.Background()
	student := p.student(t, "reader@example.com")

	notice, err := p.notices.Create(ctx, p.admin, models.NoticeRequest{
		Title: "Orientation", Body: "Orientation starts Monday at 9am.", Audience: "students",
	})
	require.NoError(t, err)

	visible, err := p.notices.ListVisible(student, models.NewPage(1, 20))
	require.NoError(t, err)
	assert.Equal(t, 0, visible.TotalRows, "drafts are hidden")

	published, err := p.notices.SetPublished(ctx, p.admin, notice.ID, true)
	require.NoError(t, err)
	assert.True(t, published.Published)
	assert.NotNil(t, published.PublishedAt)

	// Republishing does not notify twice.
	_, err = p.notices.SetPublished(ctx, p.admin, notice.ID, true)
	require.NoError(t, err)

	count, err := p.notifications.UnreadCount(student.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	visible, err = p.notices.ListVisible(student, models.NewPage(1, 20))
	require.NoError(t, err)
	assert.Equal(t, 1, visible.TotalRows)

	adminOnly, err := p.notices.Create(ctx, p.admin, models.NoticeRequest{
		Title: "Staff meeting", Body: "Room 101.", Audience: "admins",
	})
	require.NoError(t, err)
	_, err = p.notices.SetPublished(ctx, p.admin, adminOnly.ID, true)
	require.NoError(t, err)

	visible, err = p.notices.ListVisible(student, models.NewPage(1, 20))
	require.NoError(t, err)
	assert.Equal(t, 1, visible.TotalRows)
	visible, err = p.notices.ListVisible(p.admin, models.NewPage(1, 20))
	require.NoError(t, err)
	assert.Equal(t, 2, visible.TotalRows)
}

func TestNotificationService(t *testing.T) {
	p := setupPortal(t)
	student := p.student(t, "n@example.com")
	other := p.student(t, "o@example.com")

	require.NoError(t, p.notifications.Notify([]string{student.ID}, "test", "One", "first", ""))
	require.NoError(t, p.notifications.Notify([]string{student.ID}, "test", "Two", "second", ""))

	page, err := p.notifications.List(student.ID, true, models.NewPage(1, 20))
	require.NoError(t, err)
	require.Equal(t, 2, page.TotalRows)

	assert.ErrorIs(t, p.notifications.MarkRead(other.ID, page.Data[0].ID), ErrNotificationNotFound)
	require.NoError(t, p.notifications.MarkRead(student.ID, page.Data[0].ID))

	n, err := p.notifications.MarkAllRead(student.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	count, err := p.notifications.UnreadCount(student.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestUserService_Admin(t *testing.T) {
	p := setupPortal(t)
	ctx := context.Background()

	_, err := p.users.SetStatus(ctx, p.admin, p.admin.ID, models.UserStatusSuspended)
	assert.ErrorIs(t, err, ErrCannotModifySelf)
	assert.ErrorIs(t, p.users.Delete(ctx, p.admin, p.admin.ID), ErrCannotModifySelf)

	created, err := p.users.Create(ctx, p.admin, models.CreateUserRequest{
		Email: "Staff@Example.com", Password: "secret123", Name: "Staff", Role: "admin",
	})
	require.NoError(t, err)
	assert.Equal(t, "staff@example.com", created.Email)

	_, err = p.users.Create(ctx, p.admin, models.CreateUserRequest{
		Email: "staff@example.com", Password: "secret123", Name: "Staff", Role: "admin",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)

	page, err := p.users.List(models.UserFilter{Role: "admin", Page: models.NewPage(1, 20)})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalRows)

	student := p.student(t, "profile@example.com")
	_, err = p.users.OpenResume(ctx, student, p.admin.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = p.users.OpenResume(ctx, student, student.ID)
	assert.ErrorIs(t, err, ErrResumeNotFound)

	upload := pdfUpload()
	user, err := p.users.UploadResume(ctx, student, upload.Filename, upload.Size, upload.Reader)
	require.NoError(t, err)
	assert.NotEmpty(t, user.ResumeKey)

	file, err := p.users.OpenResume(ctx, p.admin, student.ID)
	require.NoError(t, err)
	body, err := io.ReadAll(file.Body)
	file.Body.Close()
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF-")))

	require.NoError(t, p.users.Delete(ctx, p.admin, student.ID))
	_, err = p.users.Get(student.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
