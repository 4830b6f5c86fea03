package models

import "time"

type ApplicationStatus string

const (
	ApplicationPending     ApplicationStatus = "pending"
	ApplicationUnderReview ApplicationStatus = "under_review"
	ApplicationAccepted    ApplicationStatus = "accepted"
	ApplicationRejected    ApplicationStatus = "rejected"
	ApplicationWithdrawn   ApplicationStatus = "withdrawn"
)

// reviewTransitions lists the statuses an admin may move an application to.
var reviewTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationPending:     {ApplicationUnderReview, ApplicationAccepted, ApplicationRejected},
	ApplicationUnderReview: {ApplicationAccepted, ApplicationRejected},
}

// CanReviewTo reports whether an admin may move an application from s to next.
func (s ApplicationStatus) CanReviewTo(next ApplicationStatus) bool {
	for _, allowed := range reviewTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// CanWithdraw reports whether the student may still withdraw.
func (s ApplicationStatus) CanWithdraw() bool {
	return s == ApplicationPending || s == ApplicationUnderReview
}

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationUnderReview, ApplicationAccepted, ApplicationRejected, ApplicationWithdrawn:
		return true
	}
	return false
}

type Application struct {
	ID           string            `json:"id"`
	StudentID    string            `json:"student_id"`
	InternshipID string            `json:"internship_id"`
	CoverLetter  string            `json:"cover_letter"`
	ResumeKey    string            `json:"resume_key,omitempty"`
	Status       ApplicationStatus `json:"status"`
	AdminNote    string            `json:"admin_note,omitempty"`
	ReviewedBy   string            `json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time        `json:"reviewed_at,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`

	// Joined columns for list and detail views.
	InternshipTitle string `json:"internship_title,omitempty"`
	Company         string `json:"company,omitempty"`
	StudentName     string `json:"student_name,omitempty"`
	StudentEmail    string `json:"student_email,omitempty"`
	StudentNo       string `json:"student_no,omitempty"`
}

type ApplicationFilter struct {
	StudentID    string
	InternshipID string
	Status       string
	Search       string
	Page         Page
}

type ApplyRequest struct {
	InternshipID string `json:"internship_id" form:"internship_id" validate:"required,uuid"`
	CoverLetter  string `json:"cover_letter" form:"cover_letter" validate:"required,min=50,max=5000"`
}

type ApplicationStatusRequest struct {
	Status string `json:"status" validate:"required,appstatus"`
	Note   string `json:"note" validate:"max=2000"`
}
