package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Child holds per-child settings. FocusTopics are parent-chosen topics
// the prefetcher favors.
type Child struct {
	ChildID     string
	Name        string
	Age         int
	FocusTopics []string
	CreatedAt   int64
	LastActive  int64
}

// GetOrCreateChild returns the child row, creating it on first sight.
// Existing children get their last_active touched.
func (db *DB) GetOrCreateChild(childID, name string) (*Child, error) {
	now := time.Now().UnixMilli()

	c, err := db.GetChild(childID)
	if err != nil {
		return nil, err
	}
	if c != nil {
		if _, err := db.Exec(`UPDATE children SET last_active = ? WHERE child_id = ?`, now, childID); err != nil {
			return nil, fmt.Errorf("touch child: %w", err)
		}
		c.LastActive = now
		return c, nil
	}

	if name == "" {
		name = childID
	}
	_, err = db.Exec(`
		INSERT INTO children (child_id, name, age, focus_topics, created_at, last_active)
		VALUES (?, ?, 6, '[]', ?, ?)
	`, childID, name, now, now)
	if err != nil {
		return nil, fmt.Errorf("insert child: %w", err)
	}
	return &Child{
		ChildID:    childID,
		Name:       name,
		Age:        6,
		CreatedAt:  now,
		LastActive: now,
	}, nil
}

// GetChild returns a child by id, or nil if unknown.
func (db *DB) GetChild(childID string) (*Child, error) {
	var c Child
	var topics string
	err := db.QueryRow(`
		SELECT child_id, name, age, focus_topics, created_at, last_active
		FROM children WHERE child_id = ?
	`, childID).Scan(&c.ChildID, &c.Name, &c.Age, &topics, &c.CreatedAt, &c.LastActive)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get child: %w", err)
	}
	if err := json.Unmarshal([]byte(topics), &c.FocusTopics); err != nil {
		return nil, fmt.Errorf("decode focus topics: %w", err)
	}
	return &c, nil
}

// SetFocusTopics replaces a child's focus topic list.
func (db *DB) SetFocusTopics(childID string, topics []string) error {
	if topics == nil {
		topics = []string{}
	}
	data, err := json.Marshal(topics)
	if err != nil {
		return fmt.Errorf("encode focus topics: %w", err)
	}
	res, err := db.Exec(`UPDATE children SET focus_topics = ? WHERE child_id = ?`, string(data), childID)
	if err != nil {
		return fmt.Errorf("set focus topics: %w", err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("no child found for %s", childID)
	}
	return nil
}
