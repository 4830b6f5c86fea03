package database

import (
	"internship-portal/models"
)

// ==================== ACTIVITY & SECURITY LOGS ====================

func (r *Repository) CreateActivityLog(entry *models.ActivityLog) error {
	_, err := r.db.Exec(`
		INSERT INTO activity_logs (id, actor_id, actor_role, action, entity_type, entity_id, metadata, ip, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.ActorID, entry.ActorRole, entry.Action, entry.EntityType, entry.EntityID,
		entry.Metadata, entry.IP, entry.CreatedAt)
	return err
}

func (r *Repository) ListActivityLogs(filter models.ActivityFilter) ([]models.ActivityLog, int, error) {
	var where whereClause
	if filter.ActorID != "" {
		where.add("actor_id = ?", filter.ActorID)
	}
	if filter.EntityType != "" {
		where.add("entity_type = ?", filter.EntityType)
	}
	if filter.Action != "" {
		where.add("action = ?", filter.Action)
	}

	total, err := r.count(`SELECT COUNT(*) FROM activity_logs`+where.String(), where.args...)
	if err != nil {
		return nil, 0, err
	}

	args := append(where.args, filter.Page.Limit(), filter.Page.Offset())
	rows, err := r.db.Query(`
		SELECT id, actor_id, actor_role, action, entity_type, entity_id, metadata, ip, created_at
		FROM activity_logs`+where.String()+`
		ORDER BY created_at DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	logs := make([]models.ActivityLog, 0)
	for rows.Next() {
		var l models.ActivityLog
		if err := rows.Scan(&l.ID, &l.ActorID, &l.ActorRole, &l.Action, &l.EntityType,
			&l.EntityID, &l.Metadata, &l.IP, &l.CreatedAt); err != nil {
			return nil, 0, err
		}
		logs = append(logs, l)
	}
	return logs, total, rows.Err()
}

func (r *Repository) CreateSecurityEvent(ev *models.SecurityEvent) error {
	_, err := r.db.Exec(`
		INSERT INTO security_events (id, event, severity, user_id, email, ip, path, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ev.ID, ev.Event, string(ev.Severity), ev.UserID, ev.Email, ev.IP, ev.Path, ev.Detail, ev.CreatedAt)
	return err
}

func (r *Repository) ListSecurityEvents(filter models.SecurityFilter) ([]models.SecurityEvent, int, error) {
	var where whereClause
	if filter.Event != "" {
		where.add("event = ?", filter.Event)
	}
	if filter.Severity != "" {
		where.add("severity = ?", filter.Severity)
	}

	total, err := r.count(`SELECT COUNT(*) FROM security_events`+where.String(), where.args...)
	if err != nil {
		return nil, 0, err
	}

	args := append(where.args, filter.Page.Limit(), filter.Page.Offset())
	rows, err := r.db.Query(`
		SELECT id, event, severity, user_id, email, ip, path, detail, created_at
		FROM security_events`+where.String()+`
		ORDER BY created_at DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events := make([]models.SecurityEvent, 0)
	for rows.Next() {
		var ev models.SecurityEvent
		var severity string
		if err := rows.Scan(&ev.ID, &ev.Event, &severity, &ev.UserID, &ev.Email, &ev.IP,
			&ev.Path, &ev.Detail, &ev.CreatedAt); err != nil {
			return nil, 0, err
		}
		ev.Severity = models.Severity(severity)
		events = append(events, ev)
	}
	return events, total, rows.Err()
}
