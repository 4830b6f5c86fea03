package activity

import (
	"context"
	"errors"
	"internship-portal/models"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) CreateActivityLog(entry *models.ActivityLog) error {
	return m.Called(entry).Error(0)
}

func (m *mockRepo) CreateSecurityEvent(ev *models.SecurityEvent) error {
	return m.Called(ev).Error(0)
}

var _ Repository = (*mockRepo)(nil)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRecord_SerializesMetadata(t *testing.T) {
	repo := new(mockRepo)
	l := NewLogger(repo, discard())

	repo.On("CreateActivityLog", mock.MatchedBy(func(e *models.ActivityLog) bool {
		return e.Action == "application.status" &&
			e.EntityID == "app-1" &&
			e.Metadata == `{"from":"pending","to":"accepted"}` &&
			e.ID != "" && !e.CreatedAt.IsZero()
	})).Return(nil)

	l.Record(context.Background(), Entry{
		ActorID: "admin-1", ActorRole: "admin", Action: "application.status",
		EntityType: "application", EntityID: "app-1",
		Metadata: map[string]any{"from": "pending", "to": "accepted"},
	})
	repo.AssertExpectations(t)
}

func TestRecord_SwallowsErrors(t *testing.T) {
	repo := new(mockRepo)
	l := NewLogger(repo, discard())

	repo.On("CreateActivityLog", mock.Anything).Return(errors.New("db down"))

	assert.NotPanics(t, func() {
		l.Record(context.Background(), Entry{Action: "user.create", EntityType: "user"})
	})
}

func TestSecurityEvent_DefaultsSeverity(t *testing.T) {
	repo := new(mockRepo)
	l := NewLogger(repo, discard())

	repo.On("CreateSecurityEvent", mock.MatchedBy(func(ev *models.SecurityEvent) bool {
		return ev.Event == models.EventLoginFailed && ev.Severity == models.SeverityWarning && ev.ID != ""
	})).Return(nil)

	l.SecurityEvent(context.Background(), models.SecurityEvent{Event: models.EventLoginFailed, Email: "x@uni.ac.id"})
	repo.AssertExpectations(t)
}
