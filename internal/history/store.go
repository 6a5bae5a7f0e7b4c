// Package history persists UI sessions and the queries they run.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultLimit is how many entries the history region loads.
const DefaultLimit = 200

// Store manages the history database.
type Store struct {
	db    *sql.DB
	names *NameGenerator
}

// NewStore opens or creates history.db in dataDir.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "history.db")
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	store := &Store{db: db, names: NewNameGenerator()}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate history database: %w", err)
	}
	return store, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		user_name TEXT,
		public_key_fingerprint TEXT,
		anonymous_name TEXT,
		remote_addr TEXT,
		created_at DATETIME,
		last_active_at DATETIME,
		is_active INTEGER DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS query_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT REFERENCES sessions(id),
		user_name TEXT,
		connection TEXT,
		query TEXT NOT NULL,
		duration_ms INTEGER,
		rows INTEGER,
		error TEXT,
		created_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_query_history_user ON query_history(user_name, id);
	CREATE INDEX IF NOT EXISTS idx_query_history_session_id ON query_history(session_id);
	`)
	return err
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// GenerateAnonymousName returns a new handle for an anonymous user.
func (s *Store) GenerateAnonymousName() string {
	return s.names.Generate()
}

// CreateSession records a new session.
func (s *Store) CreateSession(ctx context.Context, session *Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_name, public_key_fingerprint, anonymous_name, remote_addr, created_at, last_active_at, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1)
	`, session.ID, nullString(session.UserName), nullString(session.PublicKeyFingerprint),
		nullString(session.AnonymousName), session.RemoteAddr, session.CreatedAt, session.LastActiveAt)
	return err
}

// EndSession marks a session as inactive.
func (s *Store) EndSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET is_active = 0, last_active_at = ? WHERE id = ?
	`, time.Now(), sessionID)
	return err
}

// ActiveSessions returns the number of sessions not yet ended.
func (s *Store) ActiveSessions(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions WHERE is_active = 1").Scan(&n)
	return n, err
}

// RecordQuery appends an executed query for the session's user.
func (s *Store) RecordQuery(ctx context.Context, session *Session, e Entry) (Entry, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.SessionID = session.ID

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO query_history (session_id, user_name, connection, query, duration_ms, rows, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, session.ID, session.DisplayName(), e.Connection, e.Query, e.Duration.Milliseconds(),
		e.Rows, nullString(e.Error), e.CreatedAt)
	if err != nil {
		return e, fmt.Errorf("failed to record query: %w", err)
	}
	e.ID, _ = res.LastInsertId()

	if _, err := s.db.ExecContext(ctx, "UPDATE sessions SET last_active_at = ? WHERE id = ?", e.CreatedAt, session.ID); err != nil {
		return e, fmt.Errorf("failed to touch session: %w", err)
	}
	return e, nil
}

// Recent returns the newest entries of the session's user, newest first.
func (s *Store) Recent(ctx context.Context, session *Session, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, connection, query, duration_ms, rows, error, created_at
		FROM query_history
		WHERE user_name = ?
		ORDER BY id DESC
		LIMIT ?
	`, session.DisplayName(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e      Entry
			ms     int64
			errStr sql.NullString
			conn   sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &conn, &e.Query, &ms, &e.Rows, &errStr, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		e.Connection = conn.String
		e.Duration = time.Duration(ms) * time.Millisecond
		e.Error = errStr.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Clear removes every entry of the session's user.
func (s *Store) Clear(ctx context.Context, session *Session) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM query_history WHERE user_name = ?", session.DisplayName())
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}
	return res.RowsAffected()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
