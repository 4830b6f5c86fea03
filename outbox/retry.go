package outbox

import (
	"internship-portal/metrics"
	"internship-portal/models"
	"time"
)

// ==================== RETRY LOGIC & BACKOFF ====================

var now = func() time.Time { return time.Now().UTC() }

const (
	baseRetryDelay = time.Minute
	maxRetryDelay  = 30 * time.Minute
)

// retryDelay is how long an email waits after its latest failed attempt:
// 1m, 2m, 4m, ... capped at maxRetryDelay.
func retryDelay(attempts int) time.Duration {
	if attempts <= 0 {
		return 0
	}
	d := baseRetryDelay
	for i := 1; i < attempts && d < maxRetryDelay; i++ {
		d *= 2
	}
	if d > maxRetryDelay {
		return maxRetryDelay
	}
	return d
}

// filterDueEmails drops failed emails still inside their backoff window.
func filterDueEmails(emails []models.OutboundEmail, at time.Time) []models.OutboundEmail {
	var due []models.OutboundEmail
	for _, e := range emails {
		if e.Attempts == 0 || e.LastAttemptAt == nil {
			due = append(due, e)
			continue
		}
		if at.Sub(*e.LastAttemptAt) >= retryDelay(e.Attempts) {
			due = append(due, e)
		}
	}
	return due
}

type deliveryResult struct {
	sent      int
	failed    int
	abandoned int
	skipped   int
}

// maxErrorLength caps the transport error stored with the email.
const maxErrorLength = 500

// recordFailure counts the failed attempt. The repository abandons the email
// once it reaches models.MaxEmailAttempts.
func (w *Worker) recordFailure(e *models.OutboundEmail, sendErr error, result *deliveryResult) {
	msg := sendErr.Error()
	if len(msg) > maxErrorLength {
		msg = msg[:maxErrorLength]
	}

	if err := w.repo.MarkEmailFailed(e.ID, msg); err != nil {
		w.logger.Error("failed to mark email failed", "email_id", e.ID, "error", err)
	}

	if willAbandon(e.Attempts) {
		w.logger.Warn("email abandoned", "email_id", e.ID, "recipient", e.Recipient, "error", msg)
		metrics.EmailSent(string(models.EmailAbandoned))
		result.abandoned++
		return
	}

	w.logger.Warn("email delivery failed", "email_id", e.ID, "attempt", e.Attempts+1, "error", msg)
	metrics.EmailSent(string(models.EmailFailed))
	result.failed++
}

// willAbandon reports whether the attempt after `attempts` prior ones is the last.
func willAbandon(attempts int) bool {
	return attempts+1 >= models.MaxEmailAttempts
}
