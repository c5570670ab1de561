package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "behavior_profiles: persisted per-child behavior vectors",
		SQL: `
CREATE TABLE behavior_profiles (
    child_id   TEXT PRIMARY KEY,
    payload    TEXT NOT NULL,
    updated_at INTEGER NOT NULL
);
`,
	},
	{
		Version:     2,
		Description: "children: child settings and focus topics",
		SQL: `
CREATE TABLE children (
    child_id     TEXT PRIMARY KEY,
    name         TEXT NOT NULL,
    age          INTEGER NOT NULL DEFAULT 6,
    focus_topics TEXT NOT NULL DEFAULT '[]',
    created_at   INTEGER NOT NULL,
    last_active  INTEGER NOT NULL
);
`,
	},
	{
		Version:     3,
		Description: "sessions: per-child session tracking",
		SQL: `
CREATE TABLE sessions (
    id         INTEGER PRIMARY KEY,
    session_id TEXT NOT NULL UNIQUE,
    child_id   TEXT NOT NULL,
    started_at INTEGER NOT NULL,
    ended_at   INTEGER,
    status     TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'ended')),

    FOREIGN KEY (child_id) REFERENCES children(child_id)
);

CREATE INDEX idx_sessions_child      ON sessions(child_id);
CREATE INDEX idx_sessions_started_at ON sessions(started_at DESC);
`,
	},
	{
		Version:     4,
		Description: "interactions: accepted content interactions",
		SQL: `
CREATE TABLE interactions (
    id          INTEGER PRIMARY KEY,
    session_id  TEXT NOT NULL,
    child_id    TEXT NOT NULL,
    item_id     TEXT,
    kind        TEXT,
    topic       TEXT,
    success     INTEGER NOT NULL DEFAULT 0,
    duration_ms INTEGER NOT NULL DEFAULT 0,
    created_at  INTEGER NOT NULL
);

CREATE INDEX idx_interactions_session ON interactions(session_id);
CREATE INDEX idx_interactions_child   ON interactions(child_id);
CREATE INDEX idx_interactions_topic   ON interactions(topic);
`,
	},
	{
		Version:     5,
		Description: "recommendations: served recommendation log",
		SQL: `
CREATE TABLE recommendations (
    id               INTEGER PRIMARY KEY,
    session_id       TEXT NOT NULL,
    child_id         TEXT NOT NULL,
    topic            TEXT NOT NULL,
    reason           TEXT NOT NULL,
    difficulty_level INTEGER NOT NULL,
    content_mode     TEXT NOT NULL,
    is_challenge     INTEGER NOT NULL DEFAULT 0,
    created_at       INTEGER NOT NULL
);

CREATE INDEX idx_recs_session ON recommendations(session_id);
CREATE INDEX idx_recs_child   ON recommendations(child_id, created_at DESC);
`,
	},
}

func (db *DB) migrate() error {
	// Create schema_versions table if it doesn't exist
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}
