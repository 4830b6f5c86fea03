package database

import (
	"database/sql"
	"internship-portal/models"
	"time"
)

// ==================== EMAIL OUTBOX OPERATIONS ====================

const outboxColumns = `id, recipient, subject, html_body, text_body, status, attempts,
	last_error, last_attempt_at, created_at, sent_at`

func scanEmail(s scanner) (*models.OutboundEmail, error) {
	var e models.OutboundEmail
	var status string
	var lastError sql.NullString
	var lastAttempt, sentAt sql.NullTime

	err := s.Scan(&e.ID, &e.Recipient, &e.Subject, &e.HTMLBody, &e.TextBody, &status,
		&e.Attempts, &lastError, &lastAttempt, &e.CreatedAt, &sentAt)
	if err != nil {
		return nil, err
	}

	e.Status = models.EmailStatus(status)
	e.LastError = lastError.String
	e.LastAttemptAt = timePtr(lastAttempt)
	e.SentAt = timePtr(sentAt)
	return &e, nil
}

func (r *Repository) EnqueueEmail(e *models.OutboundEmail) error {
	if e.Status == "" {
		e.Status = models.EmailPending
	}
	_, err := r.db.Exec(`
		INSERT INTO email_outbox (id, recipient, subject, html_body, text_body, status, attempts, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?)
	`, e.ID, e.Recipient, e.Subject, e.HTMLBody, e.TextBody, string(e.Status), e.CreatedAt)
	return err
}

func (r *Repository) GetEmail(id string) (*models.OutboundEmail, error) {
	e, err := scanEmail(r.db.QueryRow(`SELECT `+outboxColumns+` FROM email_outbox WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// GetPendingEmails returns emails awaiting delivery. Never-attempted emails
// come first so a backlog of failing ones cannot hold them up.
func (r *Repository) GetPendingEmails(limit int) ([]models.OutboundEmail, error) {
	rows, err := r.db.Query(`SELECT `+outboxColumns+` FROM email_outbox
		WHERE status IN (?, ?) AND attempts < ?
		ORDER BY attempts ASC, created_at ASC LIMIT ?`,
		string(models.EmailPending), string(models.EmailFailed), models.MaxEmailAttempts, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	emails := make([]models.OutboundEmail, 0)
	for rows.Next() {
		e, err := scanEmail(rows)
		if err != nil {
			return nil, err
		}
		emails = append(emails, *e)
	}
	return emails, rows.Err()
}

// MarkEmailSending claims an email for delivery. It returns false if another worker got it first.
func (r *Repository) MarkEmailSending(id string) (bool, error) {
	n, err := rowsAffected(r.db.Exec(`
		UPDATE email_outbox SET status = ?, last_attempt_at = ?
		WHERE id = ? AND status IN (?, ?)
	`, string(models.EmailSending), time.Now().UTC(), id,
		string(models.EmailPending), string(models.EmailFailed)))
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *Repository) MarkEmailSent(id string) error {
	_, err := r.db.Exec(`
		UPDATE email_outbox SET status = ?, attempts = attempts + 1, last_error = NULL, sent_at = ?
		WHERE id = ?
	`, string(models.EmailSent), time.Now().UTC(), id)
	return err
}

// MarkEmailFailed records a failed attempt. The email is abandoned once it
// reaches MaxEmailAttempts.
func (r *Repository) MarkEmailFailed(id, errMsg string) error {
	_, err := r.db.Exec(`
		UPDATE email_outbox SET
			attempts = attempts + 1,
			last_error = ?,
			status = CASE WHEN attempts + 1 >= ? THEN ? ELSE ? END
		WHERE id = ?
	`, errMsg, models.MaxEmailAttempts, string(models.EmailAbandoned), string(models.EmailFailed), id)
	return err
}

// RetryEmail resets an abandoned email so the worker picks it up again
func (r *Repository) RetryEmail(id string) error {
	_, err := r.db.Exec(`
		UPDATE email_outbox SET status = ?, attempts = 0, last_error = NULL
		WHERE id = ? AND status = ?
	`, string(models.EmailPending), id, string(models.EmailAbandoned))
	return err
}

// ResetStuckEmails returns emails left in "sending" by a crashed worker to the queue
func (r *Repository) ResetStuckEmails(olderThan time.Time) (int64, error) {
	return rowsAffected(r.db.Exec(`
		UPDATE email_outbox SET status = ?
		WHERE status = ? AND last_attempt_at < ?
	`, string(models.EmailFailed), string(models.EmailSending), olderThan))
}

// CountEmailsByStatus reports outbox depth per status
func (r *Repository) CountEmailsByStatus() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT status, COUNT(*) FROM email_outbox GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
