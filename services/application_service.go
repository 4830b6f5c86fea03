package services

import (
	"context"
	"errors"
	"internship-portal/activity"
	"internship-portal/database"
	"internship-portal/export"
	"internship-portal/letter"
	"internship-portal/mail"
	"internship-portal/metrics"
	"internship-portal/models"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// Upload is a file received with a request
type Upload struct {
	Filename string
	Size     int64
	Reader   io.Reader
}

// ApplicationService runs the application lifecycle
type ApplicationService struct {
	applications ApplicationRepository
	internships  InternshipRepository
	users        UserRepository
	resumes      *UserService
	notifier     Notifier
	emails       EmailQueue
	templates    mail.Templates
	audit        AuditLogger
	analytics    AnalyticsInvalidator
	university   string
	logger       *slog.Logger
}

// ApplicationDeps groups the collaborators of ApplicationService
type ApplicationDeps struct {
	Applications ApplicationRepository
	Internships  InternshipRepository
	Users        UserRepository
	Resumes      *UserService
	Notifier     Notifier
	Emails       EmailQueue
	Templates    mail.Templates
	Audit        AuditLogger
	Analytics    AnalyticsInvalidator
	University   string
	Logger       *slog.Logger
}

// NewApplicationService creates a new application service
func NewApplicationService(d ApplicationDeps) *ApplicationService {
	return &ApplicationService{
		applications: d.Applications,
		internships:  d.Internships,
		users:        d.Users,
		resumes:      d.Resumes,
		notifier:     d.Notifier,
		emails:       d.Emails,
		templates:    d.Templates,
		audit:        d.Audit,
		analytics:    d.Analytics,
		university:   d.University,
		logger:       d.Logger,
	}
}

// Apply submits a student's application. Without an upload the profile resume is used.
func (as *ApplicationService) Apply(ctx context.Context, actor Actor, req models.ApplyRequest, upload *Upload) (*models.Application, error) {
	student, err := as.users.GetUserByID(actor.ID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, ErrUserNotFound
	}
	if !student.IsActive() {
		return nil, ErrAccountSuspended
	}

	in, err := as.internships.GetInternship(req.InternshipID)
	if err != nil {
		return nil, err
	}
	if in == nil {
		return nil, ErrInternshipNotFound
	}
	if !in.AcceptingApplications(today()) {
		return nil, ErrInternshipClosed
	}

	existing, err := as.applications.GetApplicationByStudentAndInternship(student.ID, in.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyApplied
	}

	resumeKey := student.ResumeKey
	uploaded := false
	if upload != nil {
		resumeKey, err = as.resumes.storeResume(ctx, student.ID, upload.Filename, upload.Size, upload.Reader)
		if err != nil {
			return nil, err
		}
		uploaded = true
	}
	if resumeKey == "" {
		return nil, ErrResumeRequired
	}

	ts := now()
	app := &models.Application{
		ID:           uuid.New().String(),
		StudentID:    student.ID,
		InternshipID: in.ID,
		CoverLetter:  strings.TrimSpace(req.CoverLetter),
		ResumeKey:    resumeKey,
		Status:       models.ApplicationPending,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
	if err := as.applications.CreateApplication(app); err != nil {
		if uploaded {
			as.resumes.removeFile(ctx, resumeKey)
		}
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrAlreadyApplied
		}
		return nil, err
	}

	metrics.ApplicationSubmitted()
	as.analytics.Invalidate(ctx)

	link := "/applications/" + app.ID
	as.notify([]string{student.ID}, models.NotificationApplicationSubmitted,
		"Application submitted", "Your application for "+in.Title+" at "+in.Company+" was received.", link)
	if adminIDs, err := as.users.ListActiveAdminIDs(); err != nil {
		as.logger.Error("failed to list admins for notification", "error", err)
	} else {
		as.notify(adminIDs, models.NotificationApplicationSubmitted,
			"New application", student.Name+" applied for "+in.Title+" at "+in.Company+".", "/admin"+link)
	}
	as.queue(as.templates.ApplicationReceived(student.Email, student.Name, in.Title, in.Company))

	as.audit.Record(ctx, activity.Entry{
		ActorID: actor.ID, ActorRole: string(actor.Role), Action: "application.submit",
		EntityType: "application", EntityID: app.ID, IP: actor.IP,
		Metadata: map[string]any{"internship_id": in.ID, "resume_uploaded": uploaded},
	})

	return as.getApplication(app.ID)
}

func (as *ApplicationService) getApplication(id string) (*models.Application, error) {
	app, err := as.applications.GetApplication(id)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, ErrApplicationNotFound
	}
	return app, nil
}

// Get returns an application visible to the actor. Students only see their own.
func (as *ApplicationService) Get(actor Actor, id string) (*models.Application, error) {
	app, err := as.getApplication(id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && app.StudentID != actor.ID {
		return nil, ErrApplicationNotFound
	}
	return app, nil
}

// ListOwn lists the actor's applications
func (as *ApplicationService) ListOwn(actor Actor, status string, page models.Page) (models.PageResult[models.Application], error) {
	return as.List(models.ApplicationFilter{StudentID: actor.ID, Status: status, Page: page})
}

func (as *ApplicationService) List(filter models.ApplicationFilter) (models.PageResult[models.Application], error) {
	apps, total, err := as.applications.ListApplications(filter)
	if err != nil {
		return models.PageResult[models.Application]{}, err
	}
	return models.NewPageResult(apps, total, filter.Page), nil
}

// Withdraw lets a student pull a pending or under-review application
func (as *ApplicationService) Withdraw(ctx context.Context, actor Actor, id string) (*models.Application, error) {
	app, err := as.getApplication(id)
	if err != nil {
		return nil, err
	}
	if app.StudentID != actor.ID {
		return nil, ErrApplicationNotFound
	}
	if !app.Status.CanWithdraw() {
		return nil, ErrInvalidTransition
	}

	ok, err := as.applications.ChangeApplicationStatus(database.StatusChange{
		ApplicationID: id,
		From:          app.Status,
		To:            models.ApplicationWithdrawn,
		At:            now(),
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidTransition
	}
	as.analytics.Invalidate(ctx)

	as.audit.Record(ctx, activity.Entry{
		ActorID: actor.ID, ActorRole: string(actor.Role), Action: "application.withdraw",
		EntityType: "application", EntityID: id, IP: actor.IP,
		Metadata: map[string]any{"from": app.Status},
	})
	return as.getApplication(id)
}

// UpdateStatus applies an admin review decision
func (as *ApplicationService) UpdateStatus(ctx context.Context, actor Actor, id string, to models.ApplicationStatus, note string) (*models.Application, error) {
	app, err := as.getApplication(id)
	if err != nil {
		return nil, err
	}
	if !app.Status.CanReviewTo(to) {
		return nil, ErrInvalidTransition
	}

	if to == models.ApplicationAccepted {
		in, err := as.internships.GetInternship(app.InternshipID)
		if err != nil {
			return nil, err
		}
		if in == nil {
			return nil, ErrInternshipNotFound
		}
		if in.RemainingSlots() == 0 {
			return nil, ErrNoSlotsRemaining
		}
	}

	note = strings.TrimSpace(note)
	ok, err := as.applications.ChangeApplicationStatus(database.StatusChange{
		ApplicationID: id,
		From:          app.Status,
		To:            to,
		Note:          note,
		ReviewedBy:    actor.ID,
		At:            now(),
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost a race: either the status moved or the last slot was taken.
		current, err := as.getApplication(id)
		if err != nil {
			return nil, err
		}
		if current.Status == app.Status && to == models.ApplicationAccepted {
			return nil, ErrNoSlotsRemaining
		}
		return nil, ErrInvalidTransition
	}
	as.analytics.Invalidate(ctx)

	as.notify([]string{app.StudentID}, models.NotificationApplicationStatus,
		"Application "+strings.ReplaceAll(string(to), "_", " "),
		"Your application for "+app.InternshipTitle+" at "+app.Company+" is now "+strings.ReplaceAll(string(to), "_", " ")+".",
		"/applications/"+id)
	as.queue(as.templates.ApplicationStatusChanged(app.StudentEmail, app.StudentName,
		app.InternshipTitle, app.Company, string(to), note))

	as.audit.Record(ctx, activity.Entry{
		ActorID: actor.ID, ActorRole: string(actor.Role), Action: "application.status",
		EntityType: "application", EntityID: id, IP: actor.IP,
		Metadata: map[string]any{"from": app.Status, "to": to},
	})
	return as.getApplication(id)
}

// Export writes every application matching the filter as CSV or XLSX
func (as *ApplicationService) Export(ctx context.Context, actor Actor, w io.Writer, format string, filter models.ApplicationFilter) error {
	apps, err := as.applications.ListAllApplications(filter)
	if err != nil {
		return err
	}
	if err := export.WriteApplications(w, format, apps); err != nil {
		return err
	}

	as.audit.Record(ctx, activity.Entry{
		ActorID: actor.ID, ActorRole: string(actor.Role), Action: "application.export",
		EntityType: "application", IP: actor.IP,
		Metadata: map[string]any{"format": format, "rows": len(apps)},
	})
	return nil
}

// LetterData gathers the fields of the application letter
func (as *ApplicationService) LetterData(actor Actor, id string) (*letter.Data, error) {
	app, err := as.Get(actor, id)
	if err != nil {
		return nil, err
	}

	in, err := as.internships.GetInternship(app.InternshipID)
	if err != nil {
		return nil, err
	}
	if in == nil {
		return nil, ErrInternshipNotFound
	}

	student, err := as.users.GetUserByID(app.StudentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, ErrUserNotFound
	}

	return &letter.Data{
		University:      as.university,
		Date:            now(),
		Company:         in.Company,
		Location:        in.Location,
		InternshipTitle: in.Title,
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		StudentName:     student.Name,
		StudentNo:       student.StudentNo,
		Department:      student.Department,
		Email:           student.Email,
		Phone:           student.Phone,
		CoverLetter:     app.CoverLetter,
	}, nil
}

// OpenResume opens the resume submitted with an application
func (as *ApplicationService) OpenResume(ctx context.Context, actor Actor, id string) (*StoredFile, error) {
	app, err := as.Get(actor, id)
	if err != nil {
		return nil, err
	}
	if app.ResumeKey == "" {
		return nil, ErrResumeNotFound
	}
	return as.resumes.openFile(ctx, app.ResumeKey)
}

func (as *ApplicationService) notify(userIDs []string, kind, title, message, link string) {
	if len(userIDs) == 0 {
		return
	}
	if err := as.notifier.Notify(userIDs, kind, title, message, link); err != nil {
		as.logger.Error("failed to create notifications", "kind", kind, "error", err)
	}
}

func (as *ApplicationService) queue(msg mail.Message, err error) {
	if err == nil {
		err = as.emails.Enqueue(msg)
	}
	if err != nil {
		as.logger.Error("failed to queue email", "to", msg.To, "error", err)
	}
}
