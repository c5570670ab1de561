package store

import (
	"fmt"
	"time"
)

// Recommendation is one served recommendation, logged for the parent
// dashboard and the profile CLI.
type Recommendation struct {
	ID              int64
	SessionID       string
	ChildID         string
	Topic           string
	Reason          string
	DifficultyLevel int
	ContentMode     string
	IsChallenge     bool
	CreatedAt       int64
}

// LogRecommendation appends a served recommendation to the log.
func (db *DB) LogRecommendation(r *Recommendation) error {
	now := time.Now().UnixMilli()
	result, err := db.Exec(`
		INSERT INTO recommendations (session_id, child_id, topic, reason, difficulty_level, content_mode, is_challenge, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, r.SessionID, r.ChildID, r.Topic, r.Reason, r.DifficultyLevel, r.ContentMode, r.IsChallenge, now)
	if err != nil {
		return fmt.Errorf("log recommendation: %w", err)
	}
	r.ID, _ = result.LastInsertId()
	r.CreatedAt = now
	return nil
}

// RecentRecommendations returns a child's most recent recommendations.
func (db *DB) RecentRecommendations(childID string, limit int) ([]Recommendation, error) {
	rows, err := db.Query(`
		SELECT id, session_id, child_id, topic, reason, difficulty_level, content_mode, is_challenge, created_at
		FROM recommendations WHERE child_id = ?
		ORDER BY created_at DESC LIMIT ?
	`, childID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent recommendations: %w", err)
	}
	defer rows.Close()

	var out []Recommendation
	for rows.Next() {
		var r Recommendation
		if err := rows.Scan(&r.ID, &r.SessionID, &r.ChildID, &r.Topic, &r.Reason,
			&r.DifficultyLevel, &r.ContentMode, &r.IsChallenge, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
