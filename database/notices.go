package database

import (
	"database/sql"
	"internship-portal/models"
	"strings"
	"time"
)

// ==================== NOTICE OPERATIONS ====================

const noticeColumns = `id, title, body, audience, published, published_at, created_by, created_at, updated_at`

func scanNotice(s scanner) (*models.Notice, error) {
	var n models.Notice
	var audience string
	var published int
	var publishedAt sql.NullTime

	err := s.Scan(&n.ID, &n.Title, &n.Body, &audience, &published, &publishedAt,
		&n.CreatedBy, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}

	n.Audience = models.Audience(audience)
	n.Published = published == 1
	n.PublishedAt = timePtr(publishedAt)
	return &n, nil
}

func (r *Repository) GetNotice(id string) (*models.Notice, error) {
	n, err := scanNotice(r.db.QueryRow(`SELECT `+noticeColumns+` FROM notices WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (r *Repository) CreateNotice(n *models.Notice) error {
	_, err := r.db.Exec(`
		INSERT INTO notices (id, title, body, audience, published, published_at, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.Title, n.Body, string(n.Audience), boolToInt(n.Published), nullTime(n.PublishedAt),
		n.CreatedBy, n.CreatedAt, n.UpdatedAt)
	return err
}

func (r *Repository) UpdateNotice(n *models.Notice) error {
	_, err := r.db.Exec(`
		UPDATE notices SET title = ?, body = ?, audience = ?, updated_at = ? WHERE id = ?
	`, n.Title, n.Body, string(n.Audience), time.Now().UTC(), n.ID)
	return err
}

// SetNoticePublished toggles publication; publishing stamps published_at
func (r *Repository) SetNoticePublished(id string, published bool, at time.Time) error {
	var publishedAt *time.Time
	if published {
		publishedAt = &at
	}
	_, err := r.db.Exec(`
		UPDATE notices SET published = ?, published_at = ?, updated_at = ? WHERE id = ?
	`, boolToInt(published), nullTime(publishedAt), at, id)
	return err
}

func (r *Repository) DeleteNotice(id string) error {
	_, err := r.db.Exec(`DELETE FROM notices WHERE id = ?`, id)
	return err
}

// ListNotices returns a page of notices. An empty audience list means any audience.
func (r *Repository) ListNotices(audiences []models.Audience, publishedOnly bool, page models.Page) ([]models.Notice, int, error) {
	var where whereClause
	if publishedOnly {
		where.add("published = 1")
	}
	if len(audiences) > 0 {
		placeholders := make([]string, len(audiences))
		args := make([]any, len(audiences))
		for i, a := range audiences {
			placeholders[i] = "?"
			args[i] = string(a)
		}
		where.add("audience IN ("+strings.Join(placeholders, ", ")+")", args...)
	}

	total, err := r.count(`SELECT COUNT(*) FROM notices`+where.String(), where.args...)
	if err != nil {
		return nil, 0, err
	}

	args := append(where.args, page.Limit(), page.Offset())
	rows, err := r.db.Query(`SELECT `+noticeColumns+` FROM notices`+where.String()+`
		ORDER BY COALESCE(published_at, created_at) DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	notices := make([]models.Notice, 0)
	for rows.Next() {
		n, err := scanNotice(rows)
		if err != nil {
			return nil, 0, err
		}
		notices = append(notices, *n)
	}
	return notices, total, rows.Err()
}
