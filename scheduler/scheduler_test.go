package scheduler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJobs struct {
	closed, sessions, tokens, purged int
	tokenCutoff                      time.Time
	err                              error
}

func (f *fakeJobs) CloseExpired(context.Context) (int64, error) {
	f.closed++
	return 3, f.err
}

func (f *fakeJobs) CleanupExpired() (int64, error) {
	f.sessions++
	return 1, f.err
}

func (f *fakeJobs) ClearExpiredResetTokens(now time.Time) (int64, error) {
	f.tokens++
	f.tokenCutoff = now
	return 0, f.err
}

func (f *fakeJobs) PurgeOld() (int64, error) {
	f.purged++
	return 7, f.err
}

func newTestScheduler(t *testing.T, f *fakeJobs) (*Scheduler, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s, err := New(Jobs{Internships: f, Sessions: f, ResetTokens: f, Notifications: f}, logger)
	require.NoError(t, err)
	return s, &buf
}

func TestNew_RegistersEveryJob(t *testing.T) {
	s, _ := newTestScheduler(t, &fakeJobs{})
	assert.Len(t, s.cron.Entries(), 3)
}

func TestJobs(t *testing.T) {
	f := &fakeJobs{}
	s, buf := newTestScheduler(t, f)

	s.CloseExpiredInternships()
	s.CleanupAuth()
	s.PurgeNotifications()

	assert.Equal(t, 1, f.closed)
	assert.Equal(t, 1, f.sessions)
	assert.Equal(t, 1, f.tokens)
	assert.Equal(t, 1, f.purged)
	assert.WithinDuration(t, time.Now().UTC(), f.tokenCutoff, time.Minute)

	out := buf.String()
	assert.Contains(t, out, "job=close_expired_internships")
	assert.Contains(t, out, "affected=3")
	assert.Contains(t, out, "job=purge_notifications")
}

func TestJobs_ErrorsAreLogged(t *testing.T) {
	f := &fakeJobs{err: errors.New("database is locked")}
	s, buf := newTestScheduler(t, f)

	s.CleanupAuth()

	// Token cleanup still runs after the session cleanup fails
	assert.Equal(t, 1, f.tokens)
	assert.Contains(t, buf.String(), "scheduled job failed")
	assert.Contains(t, buf.String(), "database is locked")
}

func TestStartStop(t *testing.T) {
	s, _ := newTestScheduler(t, &fakeJobs{})
	s.Start()

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestJobs_PanicIsRecoveredAndLogged(t *testing.T) {
	s, buf := newTestScheduler(t, &fakeJobs{})

	job := s.chain.Then(cron.FuncJob(func() {
		panic("nil repository")
	}))
	assert.NotPanics(t, job.Run)

	out := buf.String()
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "cron: panic")
	assert.Contains(t, out, "error=\"nil repository\"")
}
