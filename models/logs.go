package models

import "time"

type ActivityLog struct {
	ID         string    `json:"id"`
	ActorID    string    `json:"actor_id"`
	ActorRole  string    `json:"actor_role"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id,omitempty"`
	Metadata   string    `json:"metadata,omitempty"`
	IP         string    `json:"ip,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type ActivityFilter struct {
	ActorID    string
	EntityType string
	Action     string
	Page       Page
}

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

const (
	EventLoginFailed      = "login_failed"
	EventLoginRateLimited = "login_rate_limited"
	EventRateLimited      = "rate_limited"
	EventTokenInvalid     = "token_invalid"
	EventForbidden        = "forbidden"
	EventAccountSuspended = "account_suspended"
	EventPasswordReset    = "password_reset"
)

type SecurityEvent struct {
	ID        string    `json:"id"`
	Event     string    `json:"event"`
	Severity  Severity  `json:"severity"`
	UserID    string    `json:"user_id,omitempty"`
	Email     string    `json:"email,omitempty"`
	IP        string    `json:"ip,omitempty"`
	Path      string    `json:"path,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type SecurityFilter struct {
	Event    string
	Severity string
	Page     Page
}
