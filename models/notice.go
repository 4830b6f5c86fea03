package models

import "time"

type Audience string

const (
	AudienceAll      Audience = "all"
	AudienceStudents Audience = "students"
	AudienceAdmins   Audience = "admins"
)

// Includes reports whether users with the given role may read the notice.
func (a Audience) Includes(role Role) bool {
	switch a {
	case AudienceAll:
		return true
	case AudienceStudents:
		return role == RoleStudent || role == RoleAdmin
	case AudienceAdmins:
		return role == RoleAdmin
	}
	return false
}

type Notice struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	Audience    Audience   `json:"audience"`
	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedBy   string     `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type NoticeRequest struct {
	Title    string `json:"title" validate:"required,min=3,max=200"`
	Body     string `json:"body" validate:"required,max=20000"`
	Audience string `json:"audience" validate:"required,oneof=all students admins"`
}

type NoticePublishRequest struct {
	Published bool `json:"published"`
}
