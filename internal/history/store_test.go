package history

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/johan-st/sqlpane/internal/access"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	session := NewSession(access.Local(), "")
	if err := store.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession error: %v", err)
	}

	for i := 1; i <= 3; i++ {
		_, err := store.RecordQuery(ctx, session, Entry{
			Connection: "app",
			Query:      fmt.Sprintf("SELECT %d", i),
			Duration:   time.Duration(i) * time.Millisecond,
			Rows:       int64(i),
		})
		if err != nil {
			t.Fatalf("RecordQuery error: %v", err)
		}
	}
	if _, err := store.RecordQuery(ctx, session, Entry{Connection: "app", Query: "SELEC", Error: "syntax error"}); err != nil {
		t.Fatalf("RecordQuery error: %v", err)
	}

	entries, err := store.Recent(ctx, session, 0)
	if err != nil {
		t.Fatalf("Recent error: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("entries = %d, want 4", len(entries))
	}
	if entries[0].Query != "SELEC" || !entries[0].Failed() {
		t.Errorf("newest = %+v, want failed SELEC", entries[0])
	}
	if entries[1].Query != "SELECT 3" || entries[1].Rows != 3 || entries[1].Duration != 3*time.Millisecond {
		t.Errorf("second = %+v, want SELECT 3 with 3 rows in 3ms", entries[1])
	}
	if entries[1].SessionID != session.ID || entries[1].Connection != "app" {
		t.Errorf("second = %+v, want session %s on app", entries[1], session.ID)
	}

	limited, err := store.Recent(ctx, session, 2)
	if err != nil {
		t.Fatalf("Recent error: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("limited = %d, want 2", len(limited))
	}
}

func TestHistoryIsPerUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := NewSession(&access.UserInfo{Name: "alice"}, "10.0.0.1:1234")
	bob := NewSession(&access.UserInfo{Name: "bob"}, "10.0.0.2:1234")
	later := NewSession(&access.UserInfo{Name: "alice"}, "10.0.0.1:5678")
	for _, s := range []*Session{alice, bob, later} {
		if err := store.CreateSession(ctx, s); err != nil {
			t.Fatal(err)
		}
	}

	store.RecordQuery(ctx, alice, Entry{Query: "SELECT 'alice'"})
	store.RecordQuery(ctx, bob, Entry{Query: "SELECT 'bob'"})

	entries, err := store.Recent(ctx, later, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Query != "SELECT 'alice'" {
		t.Errorf("alice sees %+v, want only her own query", entries)
	}

	n, err := store.Clear(ctx, later)
	if err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if n != 1 {
		t.Errorf("cleared %d, want 1", n)
	}

	entries, _ = store.Recent(ctx, bob, 10)
	if len(entries) != 1 {
		t.Errorf("bob has %d entries after alice cleared, want 1", len(entries))
	}
}

func TestSessions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	session := NewSession(&access.UserInfo{IsAnonymous: true, AnonymousName: "calm-otter-07"}, "10.0.0.3:22")
	if session.DisplayName() != "calm-otter-07" {
		t.Errorf("DisplayName = %q, want calm-otter-07", session.DisplayName())
	}
	if err := store.CreateSession(ctx, session); err != nil {
		t.Fatal(err)
	}

	n, err := store.ActiveSessions(ctx)
	if err != nil || n != 1 {
		t.Fatalf("ActiveSessions = %d, %v, want 1", n, err)
	}
	if err := store.EndSession(ctx, session.ID); err != nil {
		t.Fatal(err)
	}
	if n, _ := store.ActiveSessions(ctx); n != 0 {
		t.Errorf("ActiveSessions after end = %d, want 0", n)
	}
}

func TestNewSessionIDsAreUnique(t *testing.T) {
	a := NewSession(access.Local(), "")
	b := NewSession(access.Local(), "")
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("ids %q and %q should be distinct and non-empty", a.ID, b.ID)
	}
}

func TestGenerateName(t *testing.T) {
	pattern := regexp.MustCompile(`^[a-z]+-[a-z]+-\d{2}$`)
	g := NewNameGenerator()
	for i := 0; i < 50; i++ {
		if name := g.Generate(); !pattern.MatchString(name) {
			t.Fatalf("Generate() = %q, want adjective-noun-NN", name)
		}
	}

	if GenerateWithSeed(42) != GenerateWithSeed(42) {
		t.Error("GenerateWithSeed is not deterministic")
	}
}
