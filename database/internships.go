package database

import (
	"database/sql"
	"internship-portal/models"
	"time"
)

// ==================== INTERNSHIP OPERATIONS ====================

const internshipColumns = `i.id, i.title, i.company, i.description, i.location, i.work_type,
	i.slots, i.stipend, i.start_date, i.end_date, i.deadline, i.status, i.created_by,
	i.created_at, i.updated_at,
	(SELECT COUNT(*) FROM applications a WHERE a.internship_id = i.id AND a.status != 'withdrawn'),
	(SELECT COUNT(*) FROM applications a WHERE a.internship_id = i.id AND a.status = 'accepted')`

func scanInternship(s scanner) (*models.Internship, error) {
	var in models.Internship
	var workType, status string

	err := s.Scan(
		&in.ID, &in.Title, &in.Company, &in.Description, &in.Location, &workType,
		&in.Slots, &in.Stipend, &in.StartDate, &in.EndDate, &in.Deadline, &status,
		&in.CreatedBy, &in.CreatedAt, &in.UpdatedAt,
		&in.ApplicantCount, &in.AcceptedCount,
	)
	if err != nil {
		return nil, err
	}

	in.WorkType = models.WorkType(workType)
	in.Status = models.InternshipStatus(status)
	in.SlotsRemaining = in.RemainingSlots()
	return &in, nil
}

// GetInternship retrieves an internship with its applicant counts
func (r *Repository) GetInternship(id string) (*models.Internship, error) {
	in, err := scanInternship(r.db.QueryRow(`SELECT `+internshipColumns+` FROM internships i WHERE i.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return in, nil
}

func (r *Repository) CreateInternship(in *models.Internship) error {
	_, err := r.db.Exec(`
		INSERT INTO internships (id, title, company, description, location, work_type, slots,
			stipend, start_date, end_date, deadline, status, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		in.ID, in.Title, in.Company, in.Description, in.Location, string(in.WorkType), in.Slots,
		in.Stipend, in.StartDate, in.EndDate, in.Deadline, string(in.Status), in.CreatedBy,
		in.CreatedAt, in.UpdatedAt,
	)
	return err
}

func (r *Repository) UpdateInternship(in *models.Internship) error {
	_, err := r.db.Exec(`
		UPDATE internships SET
			title = ?,
			company = ?,
			description = ?,
			location = ?,
			work_type = ?,
			slots = ?,
			stipend = ?,
			start_date = ?,
			end_date = ?,
			deadline = ?,
			updated_at = ?
		WHERE id = ?
	`,
		in.Title, in.Company, in.Description, in.Location, string(in.WorkType), in.Slots,
		in.Stipend, in.StartDate, in.EndDate, in.Deadline, time.Now().UTC(), in.ID,
	)
	return err
}

func (r *Repository) SetInternshipStatus(id string, status models.InternshipStatus) error {
	_, err := r.db.Exec(`UPDATE internships SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), id)
	return err
}

func (r *Repository) DeleteInternship(id string) error {
	_, err := r.db.Exec(`DELETE FROM internships WHERE id = ?`, id)
	return err
}

// ListInternships returns one page of internships matching the filter, soonest deadline first
func (r *Repository) ListInternships(filter models.InternshipFilter) ([]models.Internship, int, error) {
	var where whereClause
	if filter.Status != "" {
		where.add("i.status = ?", filter.Status)
	}
	if filter.WorkType != "" {
		where.add("i.work_type = ?", filter.WorkType)
	}
	if filter.Location != "" {
		where.add(`i.location LIKE ? ESCAPE '\'`, likePattern(filter.Location))
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		where.add(`(i.title LIKE ? ESCAPE '\' OR i.company LIKE ? ESCAPE '\' OR i.description LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern)
	}

	total, err := r.count(`SELECT COUNT(*) FROM internships i`+where.String(), where.args...)
	if err != nil {
		return nil, 0, err
	}

	args := append(where.args, filter.Page.Limit(), filter.Page.Offset())
	rows, err := r.db.Query(`SELECT `+internshipColumns+` FROM internships i`+where.String()+`
		ORDER BY i.deadline ASC, i.created_at DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	internships := make([]models.Internship, 0)
	for rows.Next() {
		in, err := scanInternship(rows)
		if err != nil {
			return nil, 0, err
		}
		internships = append(internships, *in)
	}

	return internships, total, rows.Err()
}

// CloseExpiredInternships closes open internships whose deadline is before today
func (r *Repository) CloseExpiredInternships(today string) (int64, error) {
	return rowsAffected(r.db.Exec(`
		UPDATE internships SET status = ?, updated_at = ?
		WHERE status = ? AND deadline < ?
	`, string(models.InternshipClosed), time.Now().UTC(), string(models.InternshipOpen), today))
}
