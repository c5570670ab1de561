package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ambelin/attune/internal/engine"
)

// BehaviorVector is one child's persisted behavior profile row.
type BehaviorVector struct {
	ChildID   string
	Payload   []byte
	UpdatedAt int64
}

// LoadVector returns the stored profile payload for a child, or nil if
// the child has none yet.
func (db *DB) LoadVector(childID string) ([]byte, error) {
	var payload []byte
	err := db.QueryRow(`
		SELECT payload FROM behavior_profiles WHERE child_id = ?
	`, childID).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load vector: %w", err)
	}
	return payload, nil
}

// SaveVector stores or replaces a child's profile payload.
func (db *DB) SaveVector(childID string, payload []byte) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO behavior_profiles (child_id, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(child_id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
	`, childID, payload, now)
	if err != nil {
		return fmt.Errorf("save vector: %w", err)
	}
	return nil
}

// ListVectors returns every stored profile row.
func (db *DB) ListVectors() ([]BehaviorVector, error) {
	rows, err := db.Query(`
		SELECT child_id, payload, updated_at FROM behavior_profiles ORDER BY child_id
	`)
	if err != nil {
		return nil, fmt.Errorf("list vectors: %w", err)
	}
	defer rows.Close()

	var vectors []BehaviorVector
	for rows.Next() {
		var v BehaviorVector
		if err := rows.Scan(&v.ChildID, &v.Payload, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan vector: %w", err)
		}
		vectors = append(vectors, v)
	}
	return vectors, rows.Err()
}

// DecayVectors applies interest decay to every stored profile and drops
// interests that faded below the floor. Profiles that did not change
// are not rewritten. Returns the number of profiles updated.
func (db *DB) DecayVectors(halfLife time.Duration, floor float64, now time.Time) (int, error) {
	vectors, err := db.ListVectors()
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, v := range vectors {
		profile, err := engine.ProfileFromJSON(v.Payload)
		if err != nil {
			// A corrupt payload is skipped; the next save from a live
			// session replaces it.
			continue
		}

		decayed, dropped := profile.DecayInterests(halfLife, floor, now)
		if decayed == 0 && dropped == 0 {
			continue
		}

		payload, err := profile.Snapshot()
		if err != nil {
			return updated, fmt.Errorf("encode profile %s: %w", v.ChildID, err)
		}
		if err := db.SaveVector(v.ChildID, payload); err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}
