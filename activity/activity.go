package activity

import (
	"context"
	"encoding/json"
	"internship-portal/metrics"
	"internship-portal/models"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Repository persists audit rows.
type Repository interface {
	CreateActivityLog(entry *models.ActivityLog) error
	CreateSecurityEvent(ev *models.SecurityEvent) error
}

// Entry describes one audited action.
type Entry struct {
	ActorID    string
	ActorRole  string
	Action     string
	EntityType string
	EntityID   string
	IP         string
	Metadata   map[string]any
}

// Logger records activity and security events. Persistence failures are
// logged and swallowed so auditing never fails a request.
type Logger struct {
	repo   Repository
	logger *slog.Logger
}

func NewLogger(repo Repository, logger *slog.Logger) *Logger {
	return &Logger{repo: repo, logger: logger}
}

func (l *Logger) Record(ctx context.Context, e Entry) {
	var metadata string
	if len(e.Metadata) > 0 {
		if data, err := json.Marshal(e.Metadata); err == nil {
			metadata = string(data)
		}
	}

	row := &models.ActivityLog{
		ID:         uuid.New().String(),
		ActorID:    e.ActorID,
		ActorRole:  e.ActorRole,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Metadata:   metadata,
		IP:         e.IP,
		CreatedAt:  time.Now().UTC(),
	}
	if err := l.repo.CreateActivityLog(row); err != nil {
		l.logger.ErrorContext(ctx, "failed to record activity",
			"action", e.Action, "entity_type", e.EntityType, "entity_id", e.EntityID, "error", err)
	}
}

// SecurityEvent records a security-relevant event with its severity.
func (l *Logger) SecurityEvent(ctx context.Context, ev models.SecurityEvent) {
	ev.ID = uuid.New().String()
	ev.CreatedAt = time.Now().UTC()
	if ev.Severity == "" {
		ev.Severity = models.SeverityWarning
	}

	metrics.SecurityEvent(ev.Event)
	l.logger.WarnContext(ctx, "security event",
		"event", ev.Event, "severity", ev.Severity, "user_id", ev.UserID,
		"email", ev.Email, "ip", ev.IP, "path", ev.Path)

	if err := l.repo.CreateSecurityEvent(&ev); err != nil {
		l.logger.ErrorContext(ctx, "failed to record security event", "event", ev.Event, "error", err)
	}
}
