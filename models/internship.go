package models

import "time"

type WorkType string

const (
	WorkTypeOnsite WorkType = "onsite"
	WorkTypeRemote WorkType = "remote"
	WorkTypeHybrid WorkType = "hybrid"
)

type InternshipStatus string

const (
	InternshipOpen   InternshipStatus = "open"
	InternshipClosed InternshipStatus = "closed"
)

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"

type Internship struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Company     string           `json:"company"`
	Description string           `json:"description"`
	Location    string           `json:"location"`
	WorkType    WorkType         `json:"work_type"`
	Slots       int              `json:"slots"`
	Stipend     float64          `json:"stipend"`
	StartDate   string           `json:"start_date"`
	EndDate     string           `json:"end_date"`
	Deadline    string           `json:"deadline"`
	Status      InternshipStatus `json:"status"`
	CreatedBy   string           `json:"created_by"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`

	// Populated by detail queries.
	ApplicantCount int `json:"applicant_count"`
	AcceptedCount  int `json:"accepted_count"`
	SlotsRemaining int `json:"remaining_slots"`
}

func (i *Internship) RemainingSlots() int {
	remaining := i.Slots - i.AcceptedCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

// AcceptingApplications reports whether students may still apply on the given day.
func (i *Internship) AcceptingApplications(today string) bool {
	return i.Status == InternshipOpen && today <= i.Deadline
}

type InternshipFilter struct {
	Search   string
	Location string
	WorkType string
	Status   string
	Page     Page
}

type InternshipRequest struct {
	Title       string  `json:"title" validate:"required,min=3,max=200"`
	Company     string  `json:"company" validate:"required,min=2,max=200"`
	Description string  `json:"description" validate:"required,max=10000"`
	Location    string  `json:"location" validate:"required,max=200"`
	WorkType    string  `json:"work_type" validate:"required,worktype"`
	Slots       int     `json:"slots" validate:"gte=1,lte=1000"`
	Stipend     float64 `json:"stipend" validate:"gte=0"`
	StartDate   string  `json:"start_date" validate:"required,dateformat"`
	EndDate     string  `json:"end_date" validate:"required,dateformat"`
	Deadline    string  `json:"deadline" validate:"required,dateformat"`
}

type InternshipStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=open closed"`
}
