package db

import (
	"database/sql"
	"fmt"
)

// SchemaSQL is the authoritative schema for a fresh database.
// Timestamps keep milliseconds so newest-first ordering holds for rows written back to back.
const SchemaSQL = `
CREATE TABLE IF NOT EXISTS rooms (
	id TEXT PRIMARY KEY,
	join_code TEXT NOT NULL UNIQUE,
	status TEXT NOT NULL CHECK(status IN ('open', 'in_progress', 'closed')) DEFAULT 'open',
	owner_id TEXT,
	created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%d %H:%M:%f', 'now')),
	updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%d %H:%M:%f', 'now'))
);

CREATE INDEX IF NOT EXISTS idx_rooms_owner_status ON rooms(owner_id, status, created_at DESC);

CREATE TABLE IF NOT EXISTS memberships (
	id TEXT PRIMARY KEY,
	room_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	role TEXT NOT NULL CHECK(role IN ('owner', 'player', 'spectator')) DEFAULT 'player',
	joined_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%d %H:%M:%f', 'now')),
	FOREIGN KEY (room_id) REFERENCES rooms(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_memberships_user_joined ON memberships(user_id, joined_at DESC);

CREATE TABLE IF NOT EXISTS matches (
	id TEXT PRIMARY KEY,
	room_id TEXT NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('setup', 'active', 'finished', 'abandoned')) DEFAULT 'setup',
	created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%d %H:%M:%f', 'now')),
	updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%d %H:%M:%f', 'now')),
	FOREIGN KEY (room_id) REFERENCES rooms(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_matches_room_created ON matches(room_id, created_at DESC);
`

const schemaVersionSQL = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY,
	applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`

// InitSchema creates the schema on a fresh database and migrates an existing one.
func InitSchema(database *sql.DB) error {
	var tableCount int
	err := database.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}

	if tableCount > 0 {
		// schema_version table exists - run any pending migrations
		return RunMigrations(database)
	}

	var roomTables int
	err = database.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='rooms'").Scan(&roomTables)
	if err != nil {
		return err
	}
	if roomTables > 0 {
		// Tables from before versioning - let the migrations bring them up to date
		return RunMigrations(database)
	}

	// Completely fresh install - create modern schema directly and mark every migration applied
	if _, err := database.Exec(SchemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := database.Exec(schemaVersionSQL); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}
	for _, m := range migrations {
		if _, err := database.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return err
		}
	}
	return nil
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
