package services

import (
	"context"
	"internship-portal/activity"
	"internship-portal/models"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// InternshipService manages internship postings
type InternshipService struct {
	internships InternshipRepository
	audit       AuditLogger
	analytics   AnalyticsInvalidator
	logger      *slog.Logger
}

// NewInternshipService creates a new internship service
func NewInternshipService(internships InternshipRepository, audit AuditLogger, analytics AnalyticsInvalidator, logger *slog.Logger) *InternshipService {
	return &InternshipService{
		internships: internships,
		audit:       audit,
		analytics:   analytics,
		logger:      logger,
	}
}

// List returns internships; only admins see closed postings
func (is *InternshipService) List(actor Actor, filter models.InternshipFilter) (models.PageResult[models.Internship], error) {
	if !actor.IsAdmin() {
		filter.Status = string(models.InternshipOpen)
	}

	internships, total, err := is.internships.ListInternships(filter)
	if err != nil {
		return models.PageResult[models.Internship]{}, err
	}
	return models.NewPageResult(internships, total, filter.Page), nil
}

func (is *InternshipService) Get(id string) (*models.Internship, error) {
	in, err := is.internships.GetInternship(id)
	if err != nil {
		return nil, err
	}
	if in == nil {
		return nil, ErrInternshipNotFound
	}
	return in, nil
}

// validateDates enforces start <= end and deadline <= start
func validateDates(start, end, deadline string) error {
	s, err := time.Parse(models.DateLayout, start)
	if err != nil {
		return ErrInvalidDates
	}
	e, err := time.Parse(models.DateLayout, end)
	if err != nil {
		return ErrInvalidDates
	}
	d, err := time.Parse(models.DateLayout, deadline)
	if err != nil {
		return ErrInvalidDates
	}
	if e.Before(s) || d.After(s) {
		return ErrInvalidDates
	}
	return nil
}

func (is *InternshipService) Create(ctx context.Context, actor Actor, req models.InternshipRequest) (*models.Internship, error) {
	if err := validateDates(req.StartDate, req.EndDate, req.Deadline); err != nil {
		return nil, err
	}

	ts := now()
	in := &models.Internship{
		ID:        uuid.New().String(),
		Status:    models.InternshipOpen,
		CreatedBy: actor.ID,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	applyInternshipRequest(in, req)

	if err := is.internships.CreateInternship(in); err != nil {
		return nil, err
	}
	is.analytics.Invalidate(ctx)

	is.audit.Record(ctx, activity.Entry{
		ActorID: actor.ID, ActorRole: string(actor.Role), Action: "internship.create",
		EntityType: "internship", EntityID: in.ID, IP: actor.IP,
		Metadata: map[string]any{"title": in.Title, "company": in.Company},
	})
	return is.Get(in.ID)
}

func (is *InternshipService) Update(ctx context.Context, actor Actor, id string, req models.InternshipRequest) (*models.Internship, error) {
	in, err := is.Get(id)
	if err != nil {
		return nil, err
	}
	if err := validateDates(req.StartDate, req.EndDate, req.Deadline); err != nil {
		return nil, err
	}
	if req.Slots < in.AcceptedCount {
		return nil, ErrSlotsBelowAccepted
	}

	applyInternshipRequest(in, req)
	if err := is.internships.UpdateInternship(in); err != nil {
		return nil, err
	}

	is.audit.Record(ctx, activity.Entry{
		ActorID: actor.ID, ActorRole: string(actor.Role), Action: "internship.update",
		EntityType: "internship", EntityID: id, IP: actor.IP,
	})
	return is.Get(id)
}

func applyInternshipRequest(in *models.Internship, req models.InternshipRequest) {
	in.Title = strings.TrimSpace(req.Title)
	in.Company = strings.TrimSpace(req.Company)
	in.Description = strings.TrimSpace(req.Description)
	in.Location = strings.TrimSpace(req.Location)
	in.WorkType = models.WorkType(req.WorkType)
	in.Slots = req.Slots
	in.Stipend = req.Stipend
	in.StartDate = req.StartDate
	in.EndDate = req.EndDate
	in.Deadline = req.Deadline
}

// SetStatus closes or reopens a posting. A posting whose deadline has passed cannot be reopened.
func (is *InternshipService) SetStatus(ctx context.Context, actor Actor, id string, status models.InternshipStatus) (*models.Internship, error) {
	in, err := is.Get(id)
	if err != nil {
		return nil, err
	}
	if status == models.InternshipOpen && in.Deadline < today() {
		return nil, ErrInvalidDates
	}

	if err := is.internships.SetInternshipStatus(id, status); err != nil {
		return nil, err
	}
	is.analytics.Invalidate(ctx)

	is.audit.Record(ctx, activity.Entry{
		ActorID: actor.ID, ActorRole: string(actor.Role), Action: "internship.status",
		EntityType: "internship", EntityID: id, IP: actor.IP,
		Metadata: map[string]any{"from": in.Status, "to": status},
	})
	return is.Get(id)
}

// Delete removes a posting and its applications unless someone was placed on it
func (is *InternshipService) Delete(ctx context.Context, actor Actor, id string) error {
	in, err := is.Get(id)
	if err != nil {
		return err
	}
	if in.AcceptedCount > 0 {
		return ErrInternshipHasPlacements
	}

	if err := is.internships.DeleteInternship(id); err != nil {
		return err
	}
	is.analytics.Invalidate(ctx)

	is.audit.Record(ctx, activity.Entry{
		ActorID: actor.ID, ActorRole: string(actor.Role), Action: "internship.delete",
		EntityType: "internship", EntityID: id, IP: actor.IP,
		Metadata: map[string]any{"title": in.Title},
	})
	return nil
}

// CloseExpired closes open postings whose deadline has passed
func (is *InternshipService) CloseExpired(ctx context.Context) (int64, error) {
	n, err := is.internships.CloseExpiredInternships(today())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		is.analytics.Invalidate(ctx)
		is.audit.Record(ctx, activity.Entry{
			ActorRole: "system", Action: "internship.close_expired",
			EntityType: "internship", Metadata: map[string]any{"closed": n},
		})
	}
	return n, nil
}
