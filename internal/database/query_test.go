package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/johan-st/sqlpane/internal/testutil"
)

func openFixture(t *testing.T, fixture string, readOnly bool) *Connection {
	t.Helper()

	opts := DefaultOpenOptions()
	opts.ReadOnly = readOnly
	conn, err := Open(context.Background(), fixture, testutil.TestDB(t, fixture), opts)
	if err != nil {
		t.Fatalf("failed to open %s: %v", fixture, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestExecuteSelect(t *testing.T) {
	conn := openFixture(t, "users.db", false)

	grid, err := Execute(context.Background(), conn, "SELECT id, name, email FROM users ORDER BY id")
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	if !grid.IsSelect {
		t.Error("IsSelect = false, want true")
	}
	names := grid.HeaderNames()
	if len(names) != 3 || names[0] != "id" || names[1] != "name" || names[2] != "email" {
		t.Errorf("headers = %v, want [id name email]", names)
	}
	if grid.Headers[1].Type != "text" {
		t.Errorf("name type = %q, want text", grid.Headers[1].Type)
	}
	if len(grid.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(grid.Rows))
	}

	rows := grid.FormatRows()
	if rows[0][0] != "1" || rows[0][1] != "Alice" {
		t.Errorf("first row = %v, want [1 Alice ...]", rows[0])
	}
}

func TestExecuteNoRows(t *testing.T) {
	conn := openFixture(t, "empty.db", false)

	grid, err := Execute(context.Background(), conn, "SELECT * FROM items")
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if !grid.IsSelect || len(grid.Rows) != 0 {
		t.Errorf("got IsSelect=%v rows=%d, want select with no rows", grid.IsSelect, len(grid.Rows))
	}
	if len(grid.Headers) != 3 {
		t.Errorf("headers = %d, want 3", len(grid.Headers))
	}
}

func TestExecuteReturnsLastStatement(t *testing.T) {
	conn := openFixture(t, "users.db", false)

	grid, err := Execute(context.Background(), conn, `
		INSERT INTO users (name, email) VALUES ('Dana', 'dana@example.com');
		SELECT COUNT(*) FROM users;
	`)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if len(grid.Rows) != 1 || FormatValue(grid.Rows[0][0]) != "4" {
		t.Errorf("count = %v, want 4", grid.Rows)
	}
	if grid.Duration <= 0 {
		t.Error("Duration not set")
	}
}

func TestExecuteStopsAtFirstError(t *testing.T) {
	conn := openFixture(t, "users.db", false)
	ctx := context.Background()

	_, err := Execute(ctx, conn, "DELETE FROM users WHERE id = 3; SELECT * FROM missing; DELETE FROM users WHERE id = 2")
	if err == nil {
		t.Fatal("expected error for missing table")
	}

	grid, err := Execute(ctx, conn, "SELECT id FROM users ORDER BY id")
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if len(grid.Rows) != 2 {
		t.Errorf("rows = %d, want 2 (only the first delete ran)", len(grid.Rows))
	}
}

func TestExecuteExec(t *testing.T) {
	conn := openFixture(t, "users.db", false)

	grid, err := Execute(context.Background(), conn, "UPDATE posts SET published = 1 WHERE user_id = 1")
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if grid.IsSelect {
		t.Error("IsSelect = true, want false")
	}
	if grid.RowsAffected != 2 {
		t.Errorf("RowsAffected = %d, want 2", grid.RowsAffected)
	}
}

func TestExecuteEmpty(t *testing.T) {
	conn := openFixture(t, "users.db", false)

	for _, q := range []string{"", "  ", ";", "-- just a comment"} {
		if _, err := Execute(context.Background(), conn, q); !errors.Is(err, ErrEmptyQuery) {
			t.Errorf("Execute(%q) error = %v, want ErrEmptyQuery", q, err)
		}
	}
}

func TestExecuteRaw(t *testing.T) {
	conn := openFixture(t, "users.db", false)
	ctx := context.Background()

	grid, err := ExecuteRaw(ctx, conn, "  SELECT name FROM users WHERE name = 'a;b' OR id = 1  ")
	if err != nil {
		t.Fatalf("ExecuteRaw error: %v", err)
	}
	if len(grid.Rows) != 1 || grid.Rows[0][0] != "Alice" {
		t.Errorf("rows = %v, want [[Alice]]", grid.Rows)
	}

	if _, err := ExecuteRaw(ctx, conn, " \n "); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("ExecuteRaw(blank) error = %v, want ErrEmptyQuery", err)
	}

	ro := openFixture(t, "users.db", true)
	if _, err := ExecuteRaw(ctx, ro, "DELETE FROM users"); !errors.Is(err, ErrWriteDenied) {
		t.Errorf("ExecuteRaw(delete) on read-only error = %v, want ErrWriteDenied", err)
	}
}

func TestReadOnlyCannotWrite(t *testing.T) {
	conn := openFixture(t, "users.db", true)
	ctx := context.Background()

	writes := []string{
		"INSERT INTO users (name, email) VALUES ('x', 'x@example.com')",
		"UPDATE users SET name = 'x' WHERE id = 1",
		"DELETE FROM users WHERE id = 1",
		"DROP TABLE users",
		"SELECT 1; DELETE FROM users WHERE id = 1",
	}
	for _, q := range writes {
		if _, err := Execute(ctx, conn, q); !errors.Is(err, ErrWriteDenied) {
			t.Errorf("Execute(%q) error = %v, want ErrWriteDenied", q, err)
		}
	}

	if _, err := Execute(ctx, conn, "SELECT * FROM users"); err != nil {
		t.Errorf("SELECT on read-only connection: %v", err)
	}
}

func TestInjectionStoredLiterally(t *testing.T) {
	conn := openFixture(t, "users.db", false)
	ctx := context.Background()

	malicious := "Robert'); DROP TABLE users; --"
	_, err := conn.ExecContext(ctx, "INSERT INTO users (name, email) VALUES (?, ?)", malicious, "bobby@tables.com")
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	grid, err := Execute(ctx, conn, "SELECT name FROM users WHERE email = 'bobby@tables.com'")
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if len(grid.Rows) != 1 || grid.Rows[0][0] != malicious {
		t.Errorf("name = %v, want literal malicious string", grid.Rows)
	}
}

func TestQuoteIdentifier(t *testing.T) {
	tests := []struct {
		dialect Dialect
		input   string
		want    string
	}{
		{SQLite, "users", `"users"`},
		{SQLite, `user"name`, `"user""name"`},
		{SQLite, `"; DROP TABLE users; --`, `"""; DROP TABLE users; --"`},
		{Postgres, "Order", `"Order"`},
		{MySQL, "order", "`order`"},
		{MySQL, "a`b", "`a``b`"},
	}

	for _, tt := range tests {
		if got := QuoteIdentifier(tt.dialect, tt.input); got != tt.want {
			t.Errorf("QuoteIdentifier(%s, %q) = %q, want %q", tt.dialect, tt.input, got, tt.want)
		}
	}
}

func TestQuotedTableName(t *testing.T) {
	conn := openFixture(t, "users.db", false)
	ctx := context.Background()

	name := `odd "table"`
	if _, err := Execute(ctx, conn, "CREATE TABLE "+QuoteIdentifier(SQLite, name)+" (id INTEGER)"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	count, err := NewSchema(conn).GetRowCount(ctx, name)
	if err != nil {
		t.Fatalf("GetRowCount error: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want string
	}{
		{"nil", nil, "NULL"},
		{"bytes", []byte("abc"), "abc"},
		{"string", "x", "x"},
		{"int64", int64(-42), "-42"},
		{"float", 1.5, "1.5"},
		{"bool", true, "true"},
		{"date", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "2024-03-01"},
		{"timestamp", time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC), "2024-03-01T12:30:00Z"},
		{"null string", sql.NullString{}, "NULL"},
		{"valid null int", sql.NullInt64{Int64: 7, Valid: true}, "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatValue(tt.v); got != tt.want {
				t.Errorf("FormatValue(%v) = %q, want %q", tt.v, got, tt.want)
			}
		})
	}
}

func TestReturnsRows(t *testing.T) {
	tests := []struct {
		stmt string
		want bool
	}{
		{"SELECT 1", true},
		{"PRAGMA table_info(users)", true},
		{"INSERT INTO t VALUES (1) RETURNING id", true},
		{"INSERT INTO t VALUES (1)", false},
		{"CREATE TABLE t (id INT)", false},
	}
	for _, tt := range tests {
		if got := ReturnsRows(tt.stmt); got != tt.want {
			t.Errorf("ReturnsRows(%q) = %v, want %v", tt.stmt, got, tt.want)
		}
	}
}
