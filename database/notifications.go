package database

import (
	"fmt"
	"internship-portal/models"
	"time"
)

// ==================== NOTIFICATION OPERATIONS ====================

func (r *Repository) CreateNotification(n *models.Notification) error {
	_, err := r.db.Exec(`
		INSERT INTO notifications (id, user_id, kind, title, message, link, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.UserID, n.Kind, n.Title, n.Message, n.Link, boolToInt(n.IsRead), n.CreatedAt)
	return err
}

// CreateNotifications inserts a batch in one transaction
func (r *Repository) CreateNotifications(batch []models.Notification) error {
	if len(batch) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO notifications (id, user_id, kind, title, message, link, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, n := range batch {
		if _, err := stmt.Exec(n.ID, n.UserID, n.Kind, n.Title, n.Message, n.Link, boolToInt(n.IsRead), n.CreatedAt); err != nil {
			return fmt.Errorf("insert notification for %s: %w", n.UserID, err)
		}
	}

	return tx.Commit()
}

// ListNotifications returns a page of a user's notifications, newest first
func (r *Repository) ListNotifications(userID string, unreadOnly bool, page models.Page) ([]models.Notification, int, error) {
	var where whereClause
	where.add("user_id = ?", userID)
	if unreadOnly {
		where.add("is_read = 0")
	}

	total, err := r.count(`SELECT COUNT(*) FROM notifications`+where.String(), where.args...)
	if err != nil {
		return nil, 0, err
	}

	args := append(where.args, page.Limit(), page.Offset())
	rows, err := r.db.Query(`
		SELECT id, user_id, kind, title, message, link, is_read, created_at
		FROM notifications`+where.String()+`
		ORDER BY created_at DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	notifications := make([]models.Notification, 0)
	for rows.Next() {
		var n models.Notification
		var isRead int
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Title, &n.Message, &n.Link, &isRead, &n.CreatedAt); err != nil {
			return nil, 0, err
		}
		n.IsRead = isRead == 1
		notifications = append(notifications, n)
	}
	return notifications, total, rows.Err()
}

func (r *Repository) CountUnreadNotifications(userID string) (int, error) {
	return r.count(`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = 0`, userID)
}

// MarkNotificationRead marks one notification read; false when it is not the user's
func (r *Repository) MarkNotificationRead(id, userID string) (bool, error) {
	n, err := rowsAffected(r.db.Exec(`UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?`, id, userID))
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *Repository) MarkAllNotificationsRead(userID string) (int64, error) {
	return rowsAffected(r.db.Exec(`UPDATE notifications SET is_read = 1 WHERE user_id = ? AND is_read = 0`, userID))
}

// PurgeReadNotifications deletes read notifications created before the cutoff
func (r *Repository) PurgeReadNotifications(before time.Time) (int64, error) {
	return rowsAffected(r.db.Exec(`DELETE FROM notifications WHERE is_read = 1 AND created_at < ?`, before))
}
