package database

import (
	"database/sql"
	"fmt"
	"internship-portal/models"
	"strings"
	"time"
)

// ==================== USER OPERATIONS ====================

const userColumns = `id, email, password_hash, name, role, status, student_no, department,
	phone, resume_key, auth_provider, reset_token_hash, reset_token_expires_at,
	created_at, updated_at, last_login_at`

func scanUser(s scanner) (*models.User, error) {
	var user models.User
	var role, status string
	var resetHash sql.NullString
	var resetExpires, lastLogin sql.NullTime

	err := s.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Name, &role, &status,
		&user.StudentNo, &user.Department, &user.Phone, &user.ResumeKey,
		&user.AuthProvider, &resetHash, &resetExpires,
		&user.CreatedAt, &user.UpdatedAt, &lastLogin,
	)
	if err != nil {
		return nil, err
	}

	user.Role = models.Role(role)
	user.Status = models.UserStatus(status)
	user.ResetTokenHash = resetHash.String
	user.ResetTokenExpiresAt = timePtr(resetExpires)
	user.LastLoginAt = timePtr(lastLogin)
	return &user, nil
}

func (r *Repository) getUserWhere(cond string, arg any) (*models.User, error) {
	user, err := scanUser(r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE `+cond, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByID retrieves a user by ID
func (r *Repository) GetUserByID(userID string) (*models.User, error) {
	return r.getUserWhere("id = ?", userID)
}

// GetUserByEmail retrieves a user by (case-insensitive) email
func (r *Repository) GetUserByEmail(email string) (*models.User, error) {
	return r.getUserWhere("email = ?", strings.ToLower(strings.TrimSpace(email)))
}

// GetUserByResetTokenHash retrieves the user owning a password reset token
func (r *Repository) GetUserByResetTokenHash(hash string) (*models.User, error) {
	return r.getUserWhere("reset_token_hash = ?", hash)
}

// CreateUser inserts a new user; the email must be unique
func (r *Repository) CreateUser(user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	_, err := r.db.Exec(`
		INSERT INTO users (id, email, password_hash, name, role, status, student_no,
			department, phone, resume_key, auth_provider, created_at, updated_at, last_login_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		user.ID, user.Email, user.PasswordHash, user.Name, string(user.Role), string(user.Status),
		user.StudentNo, user.Department, user.Phone, user.ResumeKey, user.AuthProvider,
		user.CreatedAt, user.UpdatedAt, nullTime(user.LastLoginAt),
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UpdateUser updates profile fields and role
func (r *Repository) UpdateUser(user *models.User) error {
	_, err := r.db.Exec(`
		UPDATE users SET
			name = ?,
			role = ?,
			student_no = ?,
			department = ?,
			phone = ?,
			updated_at = ?
		WHERE id = ?
	`, user.Name, string(user.Role), user.StudentNo, user.Department, user.Phone, time.Now().UTC(), user.ID)
	return err
}

func (r *Repository) UpdateUserStatus(userID string, status models.UserStatus) error {
	_, err := r.db.Exec(`UPDATE users SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), userID)
	return err
}

// UpdateUserPassword stores a new hash and invalidates any reset token
func (r *Repository) UpdateUserPassword(userID, passwordHash string) error {
	_, err := r.db.Exec(`
		UPDATE users SET
			password_hash = ?,
			reset_token_hash = NULL,
			reset_token_expires_at = NULL,
			updated_at = ?
		WHERE id = ?
	`, passwordHash, time.Now().UTC(), userID)
	return err
}

func (r *Repository) SetResetToken(userID, tokenHash string, expiresAt time.Time) error {
	_, err := r.db.Exec(`
		UPDATE users SET reset_token_hash = ?, reset_token_expires_at = ?, updated_at = ?
		WHERE id = ?
	`, tokenHash, expiresAt, time.Now().UTC(), userID)
	return err
}

// ClearExpiredResetTokens removes reset tokens that expired before now
func (r *Repository) ClearExpiredResetTokens(now time.Time) (int64, error) {
	return rowsAffected(r.db.Exec(`
		UPDATE users SET reset_token_hash = NULL, reset_token_expires_at = NULL
		WHERE reset_token_expires_at IS NOT NULL AND reset_token_expires_at < ?
	`, now))
}

func (r *Repository) SetUserResume(userID, key string) error {
	_, err := r.db.Exec(`UPDATE users SET resume_key = ?, updated_at = ? WHERE id = ?`,
		key, time.Now().UTC(), userID)
	return err
}

func (r *Repository) TouchLastLogin(userID string, at time.Time) error {
	_, err := r.db.Exec(`UPDATE users SET last_login_at = ? WHERE id = ?`, at, userID)
	return err
}

func (r *Repository) DeleteUser(userID string) error {
	_, err := r.db.Exec(`DELETE FROM users WHERE id = ?`, userID)
	return err
}

// ListUsers returns one page of users matching the filter and the total match count
func (r *Repository) ListUsers(filter models.UserFilter) ([]models.User, int, error) {
	var where whereClause
	if filter.Role != "" {
		where.add("role = ?", filter.Role)
	}
	if filter.Status != "" {
		where.add("status = ?", filter.Status)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		where.add(`(name LIKE ? ESCAPE '\' OR email LIKE ? ESCAPE '\' OR student_no LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern)
	}

	total, err := r.count(`SELECT COUNT(*) FROM users`+where.String(), where.args...)
	if err != nil {
		return nil, 0, err
	}

	args := append(where.args, filter.Page.Limit(), filter.Page.Offset())
	rows, err := r.db.Query(`SELECT `+userColumns+` FROM users`+where.String()+`
		ORDER BY created_at DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *user)
	}

	return users, total, rows.Err()
}

// ListActiveStudentIDs returns the IDs of every active student (notice fan-out)
func (r *Repository) ListActiveStudentIDs() ([]string, error) {
	rows, err := r.db.Query(`SELECT id FROM users WHERE role = ? AND status = ?`,
		string(models.RoleStudent), string(models.UserStatusActive))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListActiveAdminIDs returns the IDs of every active admin
func (r *Repository) ListActiveAdminIDs() ([]string, error) {
	rows, err := r.db.Query(`SELECT id FROM users WHERE role = ? AND status = ?`,
		string(models.RoleAdmin), string(models.UserStatusActive))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
