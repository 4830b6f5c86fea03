package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

type InternshipCloser interface {
	CloseExpired(ctx context.Context) (int64, error)
}

type SessionCleaner interface {
	CleanupExpired() (int64, error)
}

type ResetTokenCleaner interface {
	ClearExpiredResetTokens(now time.Time) (int64, error)
}

type NotificationPurger interface {
	PurgeOld() (int64, error)
}

// Jobs are the maintenance targets run on a schedule.
type Jobs struct {
	Internships   InternshipCloser
	Sessions      SessionCleaner
	ResetTokens   ResetTokenCleaner
	Notifications NotificationPurger
}

// Job specs in robfig/cron syntax.
const (
	CloseInternshipsSpec   = "@every 15m"
	CleanupSessionsSpec    = "@hourly"
	PurgeNotificationsSpec = "@daily"
	jobTimeout             = 2 * time.Minute
)

// Scheduler runs periodic maintenance jobs.
type Scheduler struct {
	cron   *cron.Cron
	chain  cron.Chain
	jobs   Jobs
	logger *slog.Logger
}

// cronLogger routes robfig/cron's own logging into slog. Its chatty
// scheduling messages go to debug.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}

func New(jobs Jobs, logger *slog.Logger) (*Scheduler, error) {
	cl := cronLogger{logger: logger}
	wrappers := []cron.JobWrapper{
		cron.Recover(cl),
		cron.SkipIfStillRunning(cl),
	}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cl),
			cron.WithChain(wrappers...),
		),
		chain:  cron.NewChain(wrappers...),
		jobs:   jobs,
		logger: logger,
	}

	entries := []struct {
		spec string
		run  func()
	}{
		{CloseInternshipsSpec, s.CloseExpiredInternships},
		{CleanupSessionsSpec, s.CleanupAuth},
		{PurgeNotificationsSpec, s.PurgeNotifications},
	}
	for _, e := range entries {
		if _, err := s.cron.AddFunc(e.spec, e.run); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Start runs the scheduler in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// CloseExpiredInternships closes open internships past their deadline
func (s *Scheduler) CloseExpiredInternships() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.jobs.Internships.CloseExpired(ctx)
	s.report("close_expired_internships", n, err)
}

// CleanupAuth deletes expired sessions and password reset tokens
func (s *Scheduler) CleanupAuth() {
	n, err := s.jobs.Sessions.CleanupExpired()
	s.report("cleanup_sessions", n, err)

	n, err = s.jobs.ResetTokens.ClearExpiredResetTokens(time.Now().UTC())
	s.report("clear_reset_tokens", n, err)
}

func (s *Scheduler) PurgeNotifications() {
	n, err := s.jobs.Notifications.PurgeOld()
	s.report("purge_notifications", n, err)
}

func (s *Scheduler) report(job string, affected int64, err error) {
	if err != nil {
		s.logger.Error("scheduled job failed", "job", job, "error", err)
		return
	}
	if affected > 0 {
		s.logger.Info("scheduled job completed", "job", job, "affected", affected)
		return
	}
	s.logger.Debug("scheduled job completed", "job", job, "affected", 0)
}
