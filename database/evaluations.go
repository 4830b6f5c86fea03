package database

import (
	"database/sql"
	"internship-portal/models"
	"time"
)

// ==================== EVALUATION OPERATIONS ====================

const evaluationColumns = `e.id, e.application_id, e.evaluator_id, e.score, e.grade, e.feedback,
	e.created_at, e.updated_at, i.title, i.company, a.student_id, u.name`

const evaluationJoins = ` FROM evaluations e
	JOIN applications a ON a.id = e.application_id
	JOIN internships i ON i.id = a.internship_id
	JOIN users u ON u.id = a.student_id`

func scanEvaluation(s scanner) (*models.Evaluation, error) {
	var ev models.Evaluation
	err := s.Scan(
		&ev.ID, &ev.ApplicationID, &ev.EvaluatorID, &ev.Score, &ev.Grade, &ev.Feedback,
		&ev.CreatedAt, &ev.UpdatedAt, &ev.InternshipTitle, &ev.Company, &ev.StudentID, &ev.StudentName,
	)
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

func (r *Repository) GetEvaluation(id string) (*models.Evaluation, error) {
	ev, err := scanEvaluation(r.db.QueryRow(`SELECT `+evaluationColumns+evaluationJoins+` WHERE e.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ev, nil
}

func (r *Repository) GetEvaluationByApplication(applicationID string) (*models.Evaluation, error) {
	ev, err := scanEvaluation(r.db.QueryRow(`SELECT `+evaluationColumns+evaluationJoins+` WHERE e.application_id = ?`, applicationID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ev, nil
}

// CreateEvaluation inserts an evaluation; one per application
func (r *Repository) CreateEvaluation(ev *models.Evaluation) error {
	_, err := r.db.Exec(`
		INSERT INTO evaluations (id, application_id, evaluator_id, score, grade, feedback, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, ev.ID, ev.ApplicationID, ev.EvaluatorID, ev.Score, ev.Grade, ev.Feedback, ev.CreatedAt, ev.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *Repository) UpdateEvaluation(ev *models.Evaluation) error {
	_, err := r.db.Exec(`
		UPDATE evaluations SET score = ?, grade = ?, feedback = ?, evaluator_id = ?, updated_at = ?
		WHERE id = ?
	`, ev.Score, ev.Grade, ev.Feedback, ev.EvaluatorID, time.Now().UTC(), ev.ID)
	return err
}

// ListEvaluationsByStudent returns every evaluation of a student's placements, newest first
func (r *Repository) ListEvaluationsByStudent(studentID string) ([]models.Evaluation, error) {
	rows, err := r.db.Query(`SELECT `+evaluationColumns+evaluationJoins+`
		WHERE a.student_id = ? ORDER BY e.created_at DESC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	evaluations := make([]models.Evaluation, 0)
	for rows.Next() {
		ev, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		evaluations = append(evaluations, *ev)
	}
	return evaluations, rows.Err()
}
