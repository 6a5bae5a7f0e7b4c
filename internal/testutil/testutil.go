// Package testutil provides test utilities for sqlpane tests.
package testutil

import (
	"bytes"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"
)

// Fixture schemas, built on demand so tests never share a file.
var fixtures = map[string]func(*sql.DB) error{
	"users.db": usersFixture,
	"empty.db": emptyFixture,
	"large.db": largeFixture,
}

// TestDB creates a fixture database in a temporary directory and returns
// its path. The directory is removed when the test ends.
func TestDB(t testing.TB, fixtureName string) string {
	t.Helper()

	build, ok := fixtures[fixtureName]
	if !ok {
		t.Fatalf("unknown fixture %s", fixtureName)
	}

	path := filepath.Join(t.TempDir(), fixtureName)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to create fixture %s: %v", fixtureName, err)
	}
	defer db.Close()

	if err := build(db); err != nil {
		t.Fatalf("failed to build fixture %s: %v", fixtureName, err)
	}
	return path
}

// EmptyDB creates a new database with no tables.
func EmptyDB(t testing.TB) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "blank.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to create empty db: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		t.Fatalf("failed to create empty db: %v", err)
	}
	return path
}

// users.db - users, posts and a table only admins should read
func usersFixture(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			email TEXT UNIQUE NOT NULL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE posts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			title TEXT NOT NULL,
			content TEXT,
			published INTEGER DEFAULT 0,
			FOREIGN KEY (user_id) REFERENCES users(id)
		);

		CREATE INDEX idx_posts_user ON posts(user_id);

		CREATE VIEW published_posts AS SELECT * FROM posts WHERE published = 1;

		CREATE TABLE sensitive_data (
			id INTEGER PRIMARY KEY,
			secret TEXT NOT NULL
		);

		INSERT INTO users (name, email) VALUES
			('Alice', 'alice@example.com'),
			('Bob', 'bob@example.com'),
			('Charlie', 'charlie@example.com');

		INSERT INTO posts (user_id, title, content, published) VALUES
			(1, 'Hello World', 'First post content', 1),
			(1, 'Draft Post', 'Work in progress', 0),
			(2, 'Bob''s Post', 'Hello from Bob', 1);

		INSERT INTO sensitive_data (id, secret) VALUES
			(1, 'TOP_SECRET_VALUE_123'),
			(2, 'CONFIDENTIAL_DATA_456');
	`)
	return err
}

// empty.db - tables but no rows
func emptyFixture(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			value REAL
		);

		CREATE TABLE logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			message TEXT,
			level TEXT DEFAULT 'INFO',
			timestamp TEXT DEFAULT CURRENT_TIMESTAMP
		);
	`)
	return err
}

// LargeRows is the number of rows in large.db.
const LargeRows = 1000

// large.db - many rows for scrolling tests
func largeFixture(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			value INTEGER,
			category TEXT
		);
	`); err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare("INSERT INTO records (name, value, category) VALUES (?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	categories := []string{"A", "B", "C", "D"}
	for i := 1; i <= LargeRows; i++ {
		if _, err := stmt.Exec(fmt.Sprintf("Record %d", i), i*10, categories[i%len(categories)]); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// OutputCapture is a helper for capturing CLI output.
type OutputCapture struct {
	Out bytes.Buffer
	Err bytes.Buffer
}

// Stdout returns captured stdout as string.
func (c *OutputCapture) Stdout() string {
	return c.Out.String()
}

// Stderr returns captured stderr as string.
func (c *OutputCapture) Stderr() string {
	return c.Err.String()
}

// Lines splits captured stdout into lines without the trailing newline.
func (c *OutputCapture) Lines() []string {
	s := strings.TrimRight(c.Out.String(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
