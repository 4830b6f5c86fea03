package models

import "time"

const (
	NotificationApplicationSubmitted = "application_submitted"
	NotificationApplicationStatus    = "application_status"
	NotificationEvaluationPosted     = "evaluation_posted"
	NotificationNoticePublished      = "notice_published"
)

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Link      string    `json:"link,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
