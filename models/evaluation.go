package models

import "time"

type Evaluation struct {
	ID            string    `json:"id"`
	ApplicationID string    `json:"application_id"`
	EvaluatorID   string    `json:"evaluator_id"`
	Score         int       `json:"score"`
	Grade         string    `json:"grade"`
	Feedback      string    `json:"feedback"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	InternshipTitle string `json:"internship_title,omitempty"`
	Company         string `json:"company,omitempty"`
	StudentID       string `json:"student_id,omitempty"`
	StudentName     string `json:"student_name,omitempty"`
}

// GradeForScore maps a 0-100 score to a letter grade.
func GradeForScore(score int) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

type EvaluationRequest struct {
	Score    int    `json:"score" validate:"gte=0,lte=100"`
	Feedback string `json:"feedback" validate:"required,max=5000"`
}
