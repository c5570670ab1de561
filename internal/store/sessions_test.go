package store

import (
	"fmt"
	"testing"
	"time"
)

func seedChild(t *testing.T, db *DB, childID string) {
	t.Helper()
	if _, err := db.GetOrCreateChild(childID, ""); err != nil {
		t.Fatalf("GetOrCreateChild: %v", err)
	}
}

// insertSessionAt inserts a session row with a controlled start time.
func insertSessionAt(t *testing.T, db *DB, childID string, at time.Time) {
	t.Helper()
	sessionID := fmt.Sprintf("sess-%s-%d", childID, at.UnixMilli())
	_, err := db.Exec(`
		INSERT INTO sessions (session_id, child_id, started_at, status)
		VALUES (?, ?, ?, 'ended')
	`, sessionID, childID, at.UnixMilli())
	if err != nil {
		t.Fatalf("insert session: %v", err)
	}
}

func TestStartSession(t *testing.T) {
	db := testDB(t)
	seedChild(t, db, "child-1")

	s, err := db.StartSession("sess-001", "child-1")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if s.SessionID != "sess-001" {
		t.Errorf("SessionID = %q, want sess-001", s.SessionID)
	}
	if s.ChildID != "child-1" {
		t.Errorf("ChildID = %q, want child-1", s.ChildID)
	}
	if s.Status != "active" {
		t.Errorf("Status = %q, want active", s.Status)
	}
	if s.StartedAt == 0 {
		t.Error("StartedAt should be set")
	}

	// Duplicate session ids are rejected
	if _, err := db.StartSession("sess-001", "child-1"); err == nil {
		t.Error("expected error for duplicate session id")
	}
}

func TestGetSession(t *testing.T) {
	db := testDB(t)
	seedChild(t, db, "child-1")

	// Not found returns nil
	s, err := db.GetSession("nonexistent")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if s != nil {
		t.Errorf("expected nil for nonexistent session, got %+v", s)
	}

	db.StartSession("sess-001", "child-1")
	s, err = db.GetSession("sess-001")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if s == nil {
		t.Fatal("expected session, got nil")
	}
	if s.SessionID != "sess-001" {
		t.Errorf("SessionID = %q, want sess-001", s.SessionID)
	}
}

func TestEndSession(t *testing.T) {
	db := testDB(t)
	seedChild(t, db, "child-1")
	db.StartSession("sess-001", "child-1")

	if err := db.EndSession("sess-001"); err != nil {
		t.Fatalf("EndSession: %v", err)
	}

	s, _ := db.GetSession("sess-001")
	if s.Status != "ended" {
		t.Errorf("Status = %q, want ended", s.Status)
	}
	if s.EndedAt == nil {
		t.Fatal("EndedAt should be set")
	}
	first := *s.EndedAt

	// Ending again keeps the original end time.
	time.Sleep(5 * time.Millisecond)
	if err := db.EndSession("sess-001"); err != nil {
		t.Fatalf("EndSession again: %v", err)
	}
	s, _ = db.GetSession("sess-001")
	if *s.EndedAt != first {
		t.Errorf("EndedAt = %d, want original %d", *s.EndedAt, first)
	}
}

func TestRecentSessions(t *testing.T) {
	db := testDB(t)
	seedChild(t, db, "child-1")
	seedChild(t, db, "child-2")

	db.StartSession("sess-001", "child-1")
	db.StartSession("sess-002", "child-1")
	db.StartSession("sess-003", "child-1")
	db.StartSession("sess-other", "child-2")

	sessions, err := db.RecentSessions("child-1", 2)
	if err != nil {
		t.Fatalf("RecentSessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(sessions))
	}
	for _, s := range sessions {
		if s.ChildID != "child-1" {
			t.Errorf("leaked session for %q", s.ChildID)
		}
	}
}

func TestStreakDays(t *testing.T) {
	db := testDB(t)
	seedChild(t, db, "child-1")

	// Anchor mid-day so day boundaries are unambiguous.
	day := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	// Three consecutive days, then a gap, then one more.
	insertSessionAt(t, db, "child-1", day)
	insertSessionAt(t, db, "child-1", day.AddDate(0, 0, -1))
	insertSessionAt(t, db, "child-1", day.AddDate(0, 0, -2))
	insertSessionAt(t, db, "child-1", day.AddDate(0, 0, -5))

	streak, err := db.StreakDays("child-1")
	if err != nil {
		t.Fatalf("StreakDays: %v", err)
	}
	if streak != 3 {
		t.Errorf("streak = %d, want 3", streak)
	}
}

func TestStreakDaysSingleDay(t *testing.T) {
	db := testDB(t)
	seedChild(t, db, "child-1")

	day := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	// Two sittings on the same day still count once.
	insertSessionAt(t, db, "child-1", day)
	insertSessionAt(t, db, "child-1", day.Add(3*time.Hour))

	streak, err := db.StreakDays("child-1")
	if err != nil {
		t.Fatalf("StreakDays: %v", err)
	}
	if streak != 1 {
		t.Errorf("streak = %d, want 1", streak)
	}
}

func TestStreakDaysNoSessions(t *testing.T) {
	db := testDB(t)
	seedChild(t, db, "child-1")

	streak, err := db.StreakDays("child-1")
	if err != nil {
		t.Fatalf("StreakDays: %v", err)
	}
	if streak != 0 {
		t.Errorf("streak = %d, want 0", streak)
	}
}
