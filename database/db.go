package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-sqlite3"
)

// ErrDuplicate is returned when an insert violates a unique constraint.
var ErrDuplicate = errors.New("duplicate record")

type DB struct {
	*sql.DB
}

// connPragmas are applied by the driver to every pooled connection, so they
// hold no matter which connection a statement lands on.
const connPragmas = "_foreign_keys=on&_busy_timeout=5000"

func dsn(dbPath string) string {
	if dbPath == ":memory:" {
		return "file::memory:?cache=shared&" + connPragmas
	}
	return "file:" + dbPath + "?" + connPragmas + "&_journal_mode=WAL"
}

func New(dbPath string) (*DB, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &DB{db}, nil
}

// Wrap adapts an existing connection pool, e.g. one created by sqlmock.
func Wrap(db *sql.DB) *DB {
	return &DB{db}
}

func (db *DB) Migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'student',
			status TEXT NOT NULL DEFAULT 'active',
			student_no TEXT NOT NULL DEFAULT '',
			department TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			resume_key TEXT NOT NULL DEFAULT '',
			auth_provider TEXT NOT NULL DEFAULT 'password',
			reset_token_hash TEXT,
			reset_token_expires_at DATETIME,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			last_login_at DATETIME
		)`,

		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			ip TEXT NOT NULL DEFAULT '',
			user_agent TEXT NOT NULL DEFAULT '',
			expires_at DATETIME NOT NULL,
			created_at DATETIME NOT NULL,
			last_used_at DATETIME NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,

		`CREATE TABLE IF NOT EXISTS internships (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			company TEXT NOT NULL,
			description TEXT NOT NULL,
			location TEXT NOT NULL,
			work_type TEXT NOT NULL,
			slots INTEGER NOT NULL CHECK (slots >= 1),
			stipend REAL NOT NULL DEFAULT 0,
			start_date TEXT NOT NULL,
			end_date TEXT NOT NULL,
			deadline TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'open',
			created_by TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS applications (
			id TEXT PRIMARY KEY,
			student_id TEXT NOT NULL,
			internship_id TEXT NOT NULL,
			cover_letter TEXT NOT NULL,
			resume_key TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pending',
			admin_note TEXT NOT NULL DEFAULT '',
			reviewed_by TEXT NOT NULL DEFAULT '',
			reviewed_at DATETIME,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			FOREIGN KEY (student_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (internship_id) REFERENCES internships(id) ON DELETE CASCADE,
			UNIQUE(student_id, internship_id)
		)`,

		`CREATE TABLE IF NOT EXISTS evaluations (
			id TEXT PRIMARY KEY,
			application_id TEXT UNIQUE NOT NULL,
			evaluator_id TEXT NOT NULL,
			score INTEGER NOT NULL CHECK (score BETWEEN 0 AND 100),
			grade TEXT NOT NULL,
			feedback TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			FOREIGN KEY (application_id) REFERENCES applications(id) ON DELETE CASCADE
		)`,

		`CREATE TABLE IF NOT EXISTS notices (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			body TEXT NOT NULL,
			audience TEXT NOT NULL DEFAULT 'all',
			published INTEGER NOT NULL DEFAULT 0,
			published_at DATETIME,
			created_by TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS notifications (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			title TEXT NOT NULL,
			message TEXT NOT NULL,
			link TEXT NOT NULL DEFAULT '',
			is_read INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,

		`CREATE TABLE IF NOT EXISTS activity_logs (
			id TEXT PRIMARY KEY,
			actor_id TEXT NOT NULL DEFAULT '',
			actor_role TEXT NOT NULL DEFAULT '',
			action TEXT NOT NULL,
			entity_type TEXT NOT NULL,
			entity_id TEXT NOT NULL DEFAULT '',
			metadata TEXT NOT NULL DEFAULT '',
			ip TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS security_events (
			id TEXT PRIMARY KEY,
			event TEXT NOT NULL,
			severity TEXT NOT NULL,
			user_id TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			ip TEXT NOT NULL DEFAULT '',
			path TEXT NOT NULL DEFAULT '',
			detail TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS email_outbox (
			id TEXT PRIMARY KEY,
			recipient TEXT NOT NULL,
			subject TEXT NOT NULL,
			html_body TEXT NOT NULL,
			text_body TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			attempts INTEGER NOT NULL DEFAULT 0,
			last_error TEXT,
			last_attempt_at DATETIME,
			created_at DATETIME NOT NULL,
			sent_at DATETIME
		)`,

		`CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_internships_status_deadline ON internships(status, deadline)`,
		`CREATE INDEX IF NOT EXISTS idx_applications_internship_status ON applications(internship_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_applications_student ON applications(student_id)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_user_read ON notifications(user_id, is_read)`,
		`CREATE INDEX IF NOT EXISTS idx_notices_published ON notices(published, published_at)`,
		`CREATE INDEX IF NOT EXISTS idx_activity_created ON activity_logs(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_security_created ON security_events(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_outbox_pending ON email_outbox(status) WHERE status IN ('pending', 'failed')`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

func (db *DB) Close() error {
	return db.DB.Close()
}

// isUniqueViolation reports whether err came from a UNIQUE or PRIMARY KEY constraint.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
