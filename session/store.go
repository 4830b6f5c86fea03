package session

import (
	"database/sql"
	"internship-portal/models"
	"time"

	"github.com/google/uuid"
)

// touchInterval limits how often last_used_at is rewritten for a busy session.
const touchInterval = time.Minute

// Store keeps login sessions in the sessions table. A JWT carries the session
// ID so logging out or resetting a password revokes outstanding tokens.
type Store struct {
	db  *sql.DB
	ttl time.Duration
}

func NewStore(db *sql.DB, ttl time.Duration) *Store {
	return &Store{db: db, ttl: ttl}
}

func (s *Store) TTL() time.Duration {
	return s.ttl
}

func (s *Store) Create(userID, ip, userAgent string) (*models.Session, error) {
	now := time.Now().UTC()
	sess := &models.Session{
		ID:         uuid.New().String(),
		UserID:     userID,
		IP:         ip,
		UserAgent:  userAgent,
		ExpiresAt:  now.Add(s.ttl),
		CreatedAt:  now,
		LastUsedAt: now,
	}

	_, err := s.db.Exec(`
		INSERT INTO sessions (id, user_id, ip, user_agent, expires_at, created_at, last_used_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, sess.ID, sess.UserID, sess.IP, sess.UserAgent, sess.ExpiresAt, sess.CreatedAt, sess.LastUsedAt)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// Get returns the session, or nil if it does not exist or has expired.
func (s *Store) Get(sessionID string) (*models.Session, error) {
	var sess models.Session
	err := s.db.QueryRow(`
		SELECT id, user_id, ip, user_agent, expires_at, created_at, last_used_at
		FROM sessions WHERE id = ?
	`, sessionID).Scan(&sess.ID, &sess.UserID, &sess.IP, &sess.UserAgent,
		&sess.ExpiresAt, &sess.CreatedAt, &sess.LastUsedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if sess.Expired(time.Now()) {
		return nil, nil
	}
	return &sess, nil
}

func (s *Store) Touch(sessionID string) error {
	now := time.Now().UTC()
	_, err := s.db.Exec(`UPDATE sessions SET last_used_at = ? WHERE id = ? AND last_used_at < ?`,
		now, sessionID, now.Add(-touchInterval))
	return err
}

func (s *Store) Delete(sessionID string) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, sessionID)
	return err
}

// DeleteByUser revokes every session belonging to a user.
func (s *Store) DeleteByUser(userID string) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE user_id = ?`, userID)
	return err
}

func (s *Store) CleanupExpired() (int64, error) {
	res, err := s.db.Exec(`DELETE FROM sessions WHERE expires_at < ?`, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
