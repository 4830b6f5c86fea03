package database

import (
	"database/sql"
	"internship-portal/models"
	"time"
)

// ==================== APPLICATION OPERATIONS ====================

const applicationColumns = `a.id, a.student_id, a.internship_id, a.cover_letter, a.resume_key,
	a.status, a.admin_note, a.reviewed_by, a.reviewed_at, a.created_at, a.updated_at,
	i.title, i.company, u.name, u.email, u.student_no`

const applicationJoins = ` FROM applications a
	JOIN internships i ON i.id = a.internship_id
	JOIN users u ON u.id = a.student_id`

func scanApplication(s scanner) (*models.Application, error) {
	var app models.Application
	var status string
	var reviewedAt sql.NullTime

	err := s.Scan(
		&app.ID, &app.StudentID, &app.InternshipID, &app.CoverLetter, &app.ResumeKey,
		&status, &app.AdminNote, &app.ReviewedBy, &reviewedAt, &app.CreatedAt, &app.UpdatedAt,
		&app.InternshipTitle, &app.Company, &app.StudentName, &app.StudentEmail, &app.StudentNo,
	)
	if err != nil {
		return nil, err
	}

	app.Status = models.ApplicationStatus(status)
	app.ReviewedAt = timePtr(reviewedAt)
	return &app, nil
}

// GetApplication retrieves an application joined with internship and student details
func (r *Repository) GetApplication(id string) (*models.Application, error) {
	app, err := scanApplication(r.db.QueryRow(`SELECT `+applicationColumns+applicationJoins+` WHERE a.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return app, nil
}

// GetApplicationByStudentAndInternship finds a student's application to one internship
func (r *Repository) GetApplicationByStudentAndInternship(studentID, internshipID string) (*models.Application, error) {
	app, err := scanApplication(r.db.QueryRow(`SELECT `+applicationColumns+applicationJoins+`
		WHERE a.student_id = ? AND a.internship_id = ?`, studentID, internshipID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return app, nil
}

// CreateApplication inserts an application; a second one for the same pair yields ErrDuplicate
func (r *Repository) CreateApplication(app *models.Application) error {
	_, err := r.db.Exec(`
		INSERT INTO applications (id, student_id, internship_id, cover_letter, resume_key,
			status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		app.ID, app.StudentID, app.InternshipID, app.CoverLetter, app.ResumeKey,
		string(app.Status), app.CreatedAt, app.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// ListApplications returns one page of applications matching the filter, newest first
func (r *Repository) ListApplications(filter models.ApplicationFilter) ([]models.Application, int, error) {
	where := applicationWhere(filter)

	total, err := r.count(`SELECT COUNT(*)`+applicationJoins+where.String(), where.args...)
	if err != nil {
		return nil, 0, err
	}

	args := append(where.args, filter.Page.Limit(), filter.Page.Offset())
	rows, err := r.db.Query(`SELECT `+applicationColumns+applicationJoins+where.String()+`
		ORDER BY a.created_at DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	apps, err := collectApplications(rows)
	if err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

// ListAllApplications returns every application matching the filter (exports)
func (r *Repository) ListAllApplications(filter models.ApplicationFilter) ([]models.Application, error) {
	where := applicationWhere(filter)

	rows, err := r.db.Query(`SELECT `+applicationColumns+applicationJoins+where.String()+`
		ORDER BY a.created_at DESC`, where.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectApplications(rows)
}

func applicationWhere(filter models.ApplicationFilter) whereClause {
	var where whereClause
	if filter.StudentID != "" {
		where.add("a.student_id = ?", filter.StudentID)
	}
	if filter.InternshipID != "" {
		where.add("a.internship_id = ?", filter.InternshipID)
	}
	if filter.Status != "" {
		where.add("a.status = ?", filter.Status)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		where.add(`(u.name LIKE ? ESCAPE '\' OR u.email LIKE ? ESCAPE '\' OR i.title LIKE ? ESCAPE '\' OR i.company LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern, pattern)
	}
	return where
}

func collectApplications(rows *sql.Rows) ([]models.Application, error) {
	apps := make([]models.Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *app)
	}
	return apps, rows.Err()
}

// StatusChange describes a guarded application status update.
type StatusChange struct {
	ApplicationID string
	From          models.ApplicationStatus
	To            models.ApplicationStatus
	Note          string
	ReviewedBy    string
	At            time.Time
}

// ChangeApplicationStatus moves an application from one status to another.
// It returns false when the application is no longer in the expected status or,
// for acceptances, when the internship has no slots left.
func (r *Repository) ChangeApplicationStatus(change StatusChange) (bool, error) {
	query := `
		UPDATE applications SET
			status = ?,
			admin_note = CASE WHEN ? != '' THEN ? ELSE admin_note END,
			reviewed_by = CASE WHEN ? != '' THEN ? ELSE reviewed_by END,
			reviewed_at = CASE WHEN ? != '' THEN ? ELSE reviewed_at END,
			updated_at = ?
		WHERE id = ? AND status = ?`
	args := []any{
		string(change.To),
		change.Note, change.Note,
		change.ReviewedBy, change.ReviewedBy,
		change.ReviewedBy, change.At,
		change.At,
		change.ApplicationID, string(change.From),
	}

	if change.To == models.ApplicationAccepted {
		query += `
			AND (SELECT COUNT(*) FROM applications x
				WHERE x.internship_id = applications.internship_id AND x.status = 'accepted')
			  < (SELECT slots FROM internships WHERE id = applications.internship_id)`
	}

	n, err := rowsAffected(r.db.Exec(query, args...))
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// CountAcceptedApplications counts accepted applications for an internship
func (r *Repository) CountAcceptedApplications(internshipID string) (int, error) {
	return r.count(`SELECT COUNT(*) FROM applications WHERE internship_id = ? AND status = ?`,
		internshipID, string(models.ApplicationAccepted))
}
