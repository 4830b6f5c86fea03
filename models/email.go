package models

import "time"

type EmailStatus string

const (
	EmailPending   EmailStatus = "pending"
	EmailSending   EmailStatus = "sending"
	EmailSent      EmailStatus = "sent"
	EmailFailed    EmailStatus = "failed"
	EmailAbandoned EmailStatus = "abandoned"
)

// MaxEmailAttempts is the number of delivery attempts before an email is abandoned.
const MaxEmailAttempts = 5

type OutboundEmail struct {
	ID            string      `json:"id"`
	Recipient     string      `json:"recipient"`
	Subject       string      `json:"subject"`
	HTMLBody      string      `json:"-"`
	TextBody      string      `json:"-"`
	Status        EmailStatus `json:"status"`
	Attempts      int         `json:"attempts"`
	LastError     string      `json:"last_error,omitempty"`
	LastAttemptAt *time.Time  `json:"last_attempt_at,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	SentAt        *time.Time  `json:"sent_at,omitempty"`
}
