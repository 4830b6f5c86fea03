package database

import (
	"errors"
	"internship-portal/models"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityAndSecurityLogs(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	now := time.Now().UTC()
	require.NoError(t, repo.CreateActivityLog(&models.ActivityLog{
		ID: uuid.New().String(), ActorID: "a1", ActorRole: "admin", Action: "internship.create",
		EntityType: "internship", EntityID: "i1", CreatedAt: now,
	}))
	require.NoError(t, repo.CreateActivityLog(&models.ActivityLog{
		ID: uuid.New().String(), ActorID: "s1", ActorRole: "student", Action: "application.submit",
		EntityType: "application", EntityID: "x1", CreatedAt: now,
	}))

	logs, total, err := repo.ListActivityLogs(models.ActivityFilter{EntityType: "internship", Page: models.NewPage(1, 10)})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "internship.create", logs[0].Action)

	require.NoError(t, repo.CreateSecurityEvent(&models.SecurityEvent{
		ID: uuid.New().String(), Event: models.EventLoginFailed, Severity: models.SeverityWarning,
		Email: "x@example.com", IP: "10.0.0.1", CreatedAt: now,
	}))

	events, total, err := repo.ListSecurityEvents(models.SecurityFilter{Severity: "warning", Page: models.NewPage(1, 10)})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, models.SeverityWarning, events[0].Severity)
}

func TestListActivityLogs_QueryError(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	repo := NewRepository(Wrap(sqlDB))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM activity_logs`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM activity_logs`)).
		WillReturnError(errors.New("disk I/O error"))

	_, _, err = repo.ListActivityLogs(models.ActivityFilter{Page: models.NewPage(1, 10)})
	assert.EqualError(t, err, "disk I/O error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateApplication_PassesThroughDriverErrors(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	repo := NewRepository(Wrap(sqlDB))

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO applications`)).
		WillReturnError(errors.New("database is locked"))

	err = repo.CreateApplication(&models.Application{ID: "a", StudentID: "s", InternshipID: "i", Status: models.ApplicationPending})
	assert.EqualError(t, err, "database is locked")
	assert.NotErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}
