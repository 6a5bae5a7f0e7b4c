package database

import (
	"context"
	"errors"
	"testing"

	"github.com/johan-st/sqlpane/internal/access"
	"github.com/johan-st/sqlpane/internal/config"
	"github.com/johan-st/sqlpane/internal/testutil"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	cfg := &config.Config{
		Connections: []config.Connection{
			{Name: "app", URL: testutil.TestDB(t, "users.db")},
			{Name: "archive", URL: testutil.TestDB(t, "large.db"), ReadOnly: true},
		},
		AnonymousAccess: "none",
		Users: []config.User{
			{Name: "reader", Access: []config.AccessRule{{Pattern: "*", Level: "read-only"}}},
			{Name: "writer", Access: []config.AccessRule{{Pattern: "*", Level: "read-write"}}},
			{Name: "admin", Admin: true},
		},
	}

	manager := NewManager(cfg)
	t.Cleanup(manager.Close)
	return manager
}

func TestManagerAccessLevels(t *testing.T) {
	manager := newTestManager(t)

	tests := []struct {
		name       string
		user       *access.UserInfo
		connection string
		want       access.Level
	}{
		{"admin", &access.UserInfo{Name: "admin"}, "app", access.Admin},
		{"reader", &access.UserInfo{Name: "reader"}, "app", access.ReadOnly},
		{"writer", &access.UserInfo{Name: "writer"}, "app", access.ReadWrite},
		{"anonymous", &access.UserInfo{Name: "anon", IsAnonymous: true}, "app", access.None},
		{"local", access.Local(), "app", access.Admin},
		{"writer on read-only connection", &access.UserInfo{Name: "writer"}, "archive", access.ReadOnly},
		{"admin on read-only connection", &access.UserInfo{Name: "admin"}, "archive", access.ReadOnly},
		{"unknown connection", access.Local(), "nope", access.None},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := manager.GetAccessLevel(tt.user, tt.connection); got != tt.want {
				t.Errorf("GetAccessLevel() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestManagerExecuteAccessDenied(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()
	reader := &access.UserInfo{Name: "reader"}

	if _, err := manager.Execute(ctx, "app", reader, "SELECT * FROM users"); err != nil {
		t.Fatalf("reader SELECT: %v", err)
	}
	if _, err := manager.Execute(ctx, "app", reader, "DELETE FROM users WHERE id = 3"); !errors.Is(err, ErrWriteDenied) {
		t.Errorf("reader DELETE error = %v, want ErrWriteDenied", err)
	}

	anon := &access.UserInfo{Name: "anon", IsAnonymous: true}
	if _, err := manager.Execute(ctx, "app", anon, "SELECT 1"); err == nil {
		t.Error("anonymous SELECT expected access denied")
	}
}

func TestManagerWriteOperations(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()
	writer := &access.UserInfo{Name: "writer"}

	grid, err := manager.Execute(ctx, "app", writer, "DELETE FROM users WHERE id = 3")
	if err != nil {
		t.Fatalf("writer DELETE: %v", err)
	}
	if grid.RowsAffected != 1 {
		t.Errorf("RowsAffected = %d, want 1", grid.RowsAffected)
	}

	grid, err = manager.Execute(ctx, "app", &access.UserInfo{Name: "reader"}, "SELECT COUNT(*) FROM users")
	if err != nil {
		t.Fatalf("reader count: %v", err)
	}
	if got := FormatValue(grid.Rows[0][0]); got != "2" {
		t.Errorf("count = %s, want 2", got)
	}

	if _, err := manager.Execute(ctx, "archive", writer, "DELETE FROM records WHERE id = 1"); !errors.Is(err, ErrWriteDenied) {
		t.Errorf("write on read-only connection error = %v, want ErrWriteDenied", err)
	}
}

func TestManagerListConnections(t *testing.T) {
	manager := newTestManager(t)

	if got := manager.ListConnections(&access.UserInfo{Name: "anon", IsAnonymous: true}); len(got) != 0 {
		t.Errorf("anonymous sees %d connections, want 0", len(got))
	}

	got := manager.ListConnections(&access.UserInfo{Name: "writer"})
	if len(got) != 2 {
		t.Fatalf("writer sees %d connections, want 2", len(got))
	}
	if got[0].Name != "app" || got[0].AccessLevel != access.ReadWrite || got[0].Dialect != SQLite {
		t.Errorf("first = %+v, want app read-write sqlite", got[0])
	}
	if got[1].Name != "archive" || got[1].AccessLevel != access.ReadOnly {
		t.Errorf("second = %+v, want archive read-only", got[1])
	}
}

func TestManagerUnknownConnection(t *testing.T) {
	manager := newTestManager(t)

	if _, err := manager.OpenConnection(context.Background(), "nope", access.Local()); err == nil {
		t.Error("expected error for unknown connection")
	}
}

func TestManagerReusesPools(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	a, err := manager.OpenConnection(ctx, "app", &access.UserInfo{Name: "writer"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := manager.OpenConnection(ctx, "app", &access.UserInfo{Name: "admin"})
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("writers should share one pool")
	}

	r, err := manager.OpenConnection(ctx, "app", &access.UserInfo{Name: "reader"})
	if err != nil {
		t.Fatal(err)
	}
	if r == a || !r.ReadOnly {
		t.Error("reader should get a separate read-only pool")
	}
}

func TestManagerAdHocSurvivesReload(t *testing.T) {
	manager := newTestManager(t)
	manager.Add(config.Connection{Name: "scratch", URL: testutil.EmptyDB(t)})

	manager.UpdateConfig(&config.Config{
		Connections: []config.Connection{{Name: "other", URL: testutil.EmptyDB(t)}},
	})

	if got := manager.GetAccessLevel(access.Local(), "scratch"); got != access.Admin {
		t.Errorf("scratch level = %s, want admin", got)
	}
	if got := manager.GetAccessLevel(access.Local(), "app"); got != access.None {
		t.Errorf("removed connection level = %s, want none", got)
	}
}
