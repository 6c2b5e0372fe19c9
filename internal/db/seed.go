package db

import (
	"database/sql"
	"fmt"
)

// SeedFixtures populates the database with a small demo lobby:
// a closed room whose owner has moved on to a newer open room, and a room mid-match.
func SeedFixtures(database *sql.DB) error {
	rooms := []struct{ id, code, status, owner, created string }{
		{"ROOM-001", "OLDR", "closed", "alice", "2026-01-01 10:00:00.000"},
		{"ROOM-002", "ABCD", "open", "alice", "2026-01-01 11:00:00.000"},
		{"ROOM-003", "WXYZ", "in_progress", "bob", "2026-01-01 11:30:00.000"},
	}
	for _, r := range rooms {
		if _, err := database.Exec(
			"INSERT INTO rooms (id, join_code, status, owner_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
			r.id, r.code, r.status, r.owner, r.created, r.created,
		); err != nil {
			return fmt.Errorf("seed rooms: %w", err)
		}
	}

	memberships := []struct{ id, room, user, role, joined string }{
		{"MEM-001", "ROOM-001", "alice", "owner", "2026-01-01 10:00:00.000"},
		{"MEM-002", "ROOM-001", "carol", "player", "2026-01-01 10:05:00.000"},
		{"MEM-003", "ROOM-002", "alice", "owner", "2026-01-01 11:00:00.000"},
		{"MEM-004", "ROOM-003", "bob", "owner", "2026-01-01 11:30:00.000"},
		{"MEM-005", "ROOM-003", "dave", "spectator", "2026-01-01 11:31:00.000"},
	}
	for _, m := range memberships {
		if _, err := database.Exec(
			"INSERT INTO memberships (id, room_id, user_id, role, joined_at) VALUES (?, ?, ?, ?, ?)",
			m.id, m.room, m.user, m.role, m.joined,
		); err != nil {
			return fmt.Errorf("seed memberships: %w", err)
		}
	}

	matches := []struct{ id, room, status, created string }{
		{"MATCH-001", "ROOM-003", "finished", "2026-01-01 11:35:00.000"},
		{"MATCH-002", "ROOM-003", "active", "2026-01-01 11:50:00.000"},
	}
	for _, m := range matches {
		if _, err := database.Exec(
			"INSERT INTO matches (id, room_id, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
			m.id, m.room, m.status, m.created, m.created,
		); err != nil {
			return fmt.Errorf("seed matches: %w", err)
		}
	}

	return nil
}
