package store

import (
	"fmt"
	"time"
)

// Interaction is one gate-accepted content interaction.
type Interaction struct {
	ID         int64
	SessionID  string
	ChildID    string
	ItemID     string
	Kind       string
	Topic      string
	Success    bool
	DurationMS int64
	CreatedAt  int64
}

// TopicStat aggregates a child's attempts on one topic.
type TopicStat struct {
	Topic     string
	Attempts  int
	Successes int
}

// LogInteraction appends an accepted interaction to the log.
func (db *DB) LogInteraction(ix *Interaction) error {
	now := time.Now().UnixMilli()
	result, err := db.Exec(`
		INSERT INTO interactions (session_id, child_id, item_id, kind, topic, success, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, ix.SessionID, ix.ChildID, ix.ItemID, ix.Kind, ix.Topic, ix.Success, ix.DurationMS, now)
	if err != nil {
		return fmt.Errorf("log interaction: %w", err)
	}
	ix.ID, _ = result.LastInsertId()
	ix.CreatedAt = now
	return nil
}

// RecentInteractions returns a child's most recent accepted
// interactions.
func (db *DB) RecentInteractions(childID string, limit int) ([]Interaction, error) {
	rows, err := db.Query(`
		SELECT id, session_id, child_id, item_id, kind, topic, success, duration_ms, created_at
		FROM interactions WHERE child_id = ?
		ORDER BY created_at DESC LIMIT ?
	`, childID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent interactions: %w", err)
	}
	defer rows.Close()

	var out []Interaction
	for rows.Next() {
		var ix Interaction
		if err := rows.Scan(&ix.ID, &ix.SessionID, &ix.ChildID, &ix.ItemID, &ix.Kind, &ix.Topic,
			&ix.Success, &ix.DurationMS, &ix.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		out = append(out, ix)
	}
	return out, rows.Err()
}

// TopicSuccessRates aggregates attempts and successes per topic for a
// child, most attempted first.
func (db *DB) TopicSuccessRates(childID string) ([]TopicStat, error) {
	rows, err := db.Query(`
		SELECT topic, COUNT(*), SUM(success)
		FROM interactions WHERE child_id = ? AND topic != ''
		GROUP BY topic ORDER BY COUNT(*) DESC, topic
	`, childID)
	if err != nil {
		return nil, fmt.Errorf("topic success rates: %w", err)
	}
	defer rows.Close()

	var stats []TopicStat
	for rows.Next() {
		var s TopicStat
		if err := rows.Scan(&s.Topic, &s.Attempts, &s.Successes); err != nil {
			return nil, fmt.Errorf("scan topic stat: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// CompletedTopics returns the distinct topics a child has succeeded at.
func (db *DB) CompletedTopics(childID string) ([]string, error) {
	rows, err := db.Query(`
		SELECT DISTINCT topic FROM interactions
		WHERE child_id = ? AND topic != '' AND success = 1
		ORDER BY topic
	`, childID)
	if err != nil {
		return nil, fmt.Errorf("completed topics: %w", err)
	}
	defer rows.Close()

	var topics []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}
