package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Session represents one sitting of a child at the device.
type Session struct {
	ID        int64
	SessionID string
	ChildID   string
	StartedAt int64
	EndedAt   *int64
	Status    string
}

// StartSession records a new active session.
func (db *DB) StartSession(sessionID, childID string) (*Session, error) {
	now := time.Now().UnixMilli()
	result, err := db.Exec(`
		INSERT INTO sessions (session_id, child_id, started_at, status)
		VALUES (?, ?, ?, 'active')
	`, sessionID, childID, now)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	id, _ := result.LastInsertId()
	return &Session{
		ID:        id,
		SessionID: sessionID,
		ChildID:   childID,
		StartedAt: now,
		Status:    "active",
	}, nil
}

// GetSession returns a session by its session_id, or nil if unknown.
func (db *DB) GetSession(sessionID string) (*Session, error) {
	var s Session
	err := db.QueryRow(`
		SELECT id, session_id, child_id, started_at, ended_at, status
		FROM sessions WHERE session_id = ?
	`, sessionID).Scan(&s.ID, &s.SessionID, &s.ChildID, &s.StartedAt, &s.EndedAt, &s.Status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &s, nil
}

// EndSession marks a session as ended. Already-ended sessions keep
// their original end time.
func (db *DB) EndSession(sessionID string) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		UPDATE sessions SET status = 'ended', ended_at = COALESCE(ended_at, ?)
		WHERE session_id = ?
	`, now, sessionID)
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

// RecentSessions returns a child's most recent sessions.
func (db *DB) RecentSessions(childID string, limit int) ([]Session, error) {
	rows, err := db.Query(`
		SELECT id, session_id, child_id, started_at, ended_at, status
		FROM sessions WHERE child_id = ?
		ORDER BY started_at DESC LIMIT ?
	`, childID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.SessionID, &s.ChildID, &s.StartedAt, &s.EndedAt, &s.Status); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// StreakDays counts how many consecutive calendar days, ending with the
// most recent session day, the child has shown up.
func (db *DB) StreakDays(childID string) (int, error) {
	rows, err := db.Query(`
		SELECT DISTINCT date(started_at / 1000, 'unixepoch') AS day
		FROM sessions WHERE child_id = ?
		ORDER BY day DESC
	`, childID)
	if err != nil {
		return 0, fmt.Errorf("streak days: %w", err)
	}
	defer rows.Close()

	var days []string
	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			return 0, fmt.Errorf("scan day: %w", err)
		}
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	if len(days) == 0 {
		return 0, nil
	}

	streak := 1
	prev, err := time.Parse("2006-01-02", days[0])
	if err != nil {
		return 0, fmt.Errorf("parse day %q: %w", days[0], err)
	}
	for _, d := range days[1:] {
		cur, err := time.Parse("2006-01-02", d)
		if err != nil {
			return 0, fmt.Errorf("parse day %q: %w", d, err)
		}
		if prev.Sub(cur) != 24*time.Hour {
			break
		}
		streak++
		prev = cur
	}
	return streak, nil
}
