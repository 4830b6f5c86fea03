package outbox

import (
	"context"
	"internship-portal/mail"
	"internship-portal/metrics"
	"internship-portal/models"
	"time"
)

// ==================== DELIVERY ====================

// deliverPending sends one batch of pending emails and failed ones whose
// backoff has elapsed. Returns true if work was found.
func (w *Worker) deliverPending() bool {
	emails, err := w.repo.GetPendingEmails(w.batchSize)
	if err != nil {
		w.logger.Error("failed to load pending emails", "error", err)
		return false
	}

	emails = filterDueEmails(emails, now())

	if len(emails) == 0 {
		return false
	}

	result := &deliveryResult{}
	for i := range emails {
		w.deliver(&emails[i], result)
	}

	w.logger.Info("email batch processed",
		"sent", result.sent,
		"failed", result.failed,
		"abandoned", result.abandoned,
		"skipped", result.skipped,
	)
	return true
}

func (w *Worker) deliver(e *models.OutboundEmail, result *deliveryResult) {
	claimed, err := w.repo.MarkEmailSending(e.ID)
	if err != nil {
		w.logger.Error("failed to claim email", "email_id", e.ID, "error", err)
		result.skipped++
		return
	}
	if !claimed {
		result.skipped++
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.sendTimeout)
	defer cancel()

	err = w.mailer.Send(ctx, mail.Message{
		To:       e.Recipient,
		Subject:  e.Subject,
		HTMLBody: e.HTMLBody,
		TextBody: e.TextBody,
	})
	if err != nil {
		w.recordFailure(e, err, result)
		return
	}

	if err := w.repo.MarkEmailSent(e.ID); err != nil {
		w.logger.Error("failed to mark email sent", "email_id", e.ID, "error", err)
	}
	metrics.EmailSent(string(models.EmailSent))
	result.sent++
}

// recoverStuck requeues emails a previous process claimed but never finished.
func (w *Worker) recoverStuck() {
	n, err := w.repo.ResetStuckEmails(time.Now().UTC().Add(-10 * time.Minute))
	if err != nil {
		w.logger.Error("failed to requeue stuck emails", "error", err)
		return
	}
	if n > 0 {
		w.logger.Warn("requeued stuck emails", "count", n)
	}
}
