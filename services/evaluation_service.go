package services

import (
	"context"
	"errors"
	"fmt"
	"internship-portal/activity"
	"internship-portal/database"
	"internship-portal/mail"
	"internship-portal/models"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// EvaluationService grades completed placements
type EvaluationService struct {
	evaluations  EvaluationRepository
	applications ApplicationRepository
	notifier     Notifier
	emails       EmailQueue
	templates    mail.Templates
	audit        AuditLogger
	analytics    AnalyticsInvalidator
	logger       *slog.Logger
}

func NewEvaluationService(evaluations EvaluationRepository, applications ApplicationRepository, notifier Notifier, emails EmailQueue, templates mail.Templates, audit AuditLogger, analytics AnalyticsInvalidator, logger *slog.Logger) *EvaluationService {
	return &EvaluationService{
		evaluations:  evaluations,
		applications: applications,
		notifier:     notifier,
		emails:       emails,
		templates:    templates,
		audit:        audit,
		analytics:    analytics,
		logger:       logger,
	}
}

// Create evaluates an accepted application. Each application has at most one evaluation.
func (es *EvaluationService) Create(ctx context.Context, actor Actor, applicationID string, req models.EvaluationRequest) (*models.Evaluation, error) {
	app, err := es.applications.GetApplication(applicationID)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, ErrApplicationNotFound
	}
	if app.Status != models.ApplicationAccepted {
		return nil, ErrEvaluationNotAllowed
	}

	existing, err := es.evaluations.GetEvaluationByApplication(applicationID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEvaluationExists
	}

	ts := now()
	ev := &models.Evaluation{
		ID:            uuid.New().String(),
		ApplicationID: applicationID,
		EvaluatorID:   actor.ID,
		Score:         req.Score,
		Grade:         models.GradeForScore(req.Score),
		Feedback:      strings.TrimSpace(req.Feedback),
		CreatedAt:     ts,
		UpdatedAt:     ts,
	}
	if err := es.evaluations.CreateEvaluation(ev); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrEvaluationExists
		}
		return nil, err
	}
	es.analytics.Invalidate(ctx)

	if err := es.notifier.Notify([]string{app.StudentID}, models.NotificationEvaluationPosted,
		"Evaluation posted",
		fmt.Sprintf("Your internship at %s was graded %s.", app.Company, ev.Grade),
		"/evaluations"); err != nil {
		es.logger.Error("failed to notify student of evaluation", "evaluation_id", ev.ID, "error", err)
	}

	msg, err := es.templates.EvaluationPosted(app.StudentEmail, app.StudentName, app.InternshipTitle, ev.Grade, ev.Score)
	if err == nil {
		err = es.emails.Enqueue(msg)
	}
	if err != nil {
		es.logger.Error("failed to queue evaluation email", "evaluation_id", ev.ID, "error", err)
	}

	es.audit.Record(ctx, activity.Entry{
		ActorID: actor.ID, ActorRole: string(actor.Role), Action: "evaluation.create",
		EntityType: "evaluation", EntityID: ev.ID, IP: actor.IP,
		Metadata: map[string]any{"application_id": applicationID, "score": ev.Score},
	})
	return es.get(ev.ID)
}

// Update rescores an evaluation
func (es *EvaluationService) Update(ctx context.Context, actor Actor, id string, req models.EvaluationRequest) (*models.Evaluation, error) {
	ev, err := es.get(id)
	if err != nil {
		return nil, err
	}

	previous := ev.Score
	ev.Score = req.Score
	ev.Grade = models.GradeForScore(req.Score)
	ev.Feedback = strings.TrimSpace(req.Feedback)
	ev.EvaluatorID = actor.ID

	if err := es.evaluations.UpdateEvaluation(ev); err != nil {
		return nil, err
	}
	es.analytics.Invalidate(ctx)

	es.audit.Record(ctx, activity.Entry{
		ActorID: actor.ID, ActorRole: string(actor.Role), Action: "evaluation.update",
		EntityType: "evaluation", EntityID: id, IP: actor.IP,
		Metadata: map[string]any{"from": previous, "to": ev.Score},
	})
	return es.get(id)
}

func (es *EvaluationService) get(id string) (*models.Evaluation, error) {
	ev, err := es.evaluations.GetEvaluation(id)
	if err != nil {
		return nil, err
	}
	if ev == nil {
		return nil, ErrEvaluationNotFound
	}
	return ev, nil
}

// ListOwn returns the evaluations of the actor's placements
func (es *EvaluationService) ListOwn(actor Actor) ([]models.Evaluation, error) {
	return es.evaluations.ListEvaluationsByStudent(actor.ID)
}
