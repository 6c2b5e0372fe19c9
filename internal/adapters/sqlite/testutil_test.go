// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() to ensure tests run against
// the authoritative schema, preventing drift between test and production.
//
// DO NOT hardcode CREATE TABLE statements in test files. Instead, use
// setupTestDB() and the seed* helpers.
package sqlite_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/roomsync/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
// This is the single shared test database setup function for all repository tests.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	// A second pooled connection would see a different, empty in-memory database.
	testDB.SetMaxOpenConns(1)

	if _, err := testDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	// Use the authoritative schema from schema.go
	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedRoom inserts a test room with an explicit creation time and returns its ID.
func seedRoom(t *testing.T, db *sql.DB, id, joinCode, status, ownerID, createdAt string) string {
	t.Helper()
	var owner sql.NullString
	if ownerID != "" {
		owner = sql.NullString{String: ownerID, Valid: true}
	}
	_, err := db.Exec(
		"INSERT INTO rooms (id, join_code, status, owner_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		id, joinCode, status, owner, createdAt, createdAt,
	)
	if err != nil {
		t.Fatalf("failed to seed room: %v", err)
	}
	return id
}

// seedMembership inserts a test membership with an explicit join time and returns its ID.
func seedMembership(t *testing.T, db *sql.DB, id, roomID, userID, role, joinedAt string) string {
	t.Helper()
	_, err := db.Exec(
		"INSERT INTO memberships (id, room_id, user_id, role, joined_at) VALUES (?, ?, ?, ?, ?)",
		id, roomID, userID, role, joinedAt,
	)
	if err != nil {
		t.Fatalf("failed to seed membership: %v", err)
	}
	return id
}

// seedMatch inserts a test match with an explicit creation time and returns its ID.
func seedMatch(t *testing.T, db *sql.DB, id, roomID, status, createdAt string) string {
	t.Helper()
	_, err := db.Exec(
		"INSERT INTO matches (id, room_id, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		id, roomID, status, createdAt, createdAt,
	)
	if err != nil {
		t.Fatalf("failed to seed match: %v", err)
	}
	return id
}
