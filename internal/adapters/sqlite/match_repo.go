package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/example/roomsync/internal/ports/secondary"
)

// MatchRepository implements secondary.MatchRepository with SQLite.
type MatchRepository struct {
	db *sql.DB
}

// NewMatchRepository creates a new SQLite match repository.
func NewMatchRepository(db *sql.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// Create persists a new match.
func (r *MatchRepository) Create(ctx context.Context, match *secondary.MatchRecord) error {
	status := match.Status
	if status == "" {
		status = "setup"
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO matches (id, room_id, status) VALUES (?, ?, ?)",
		match.ID, match.RoomID, status,
	)
	if err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}

	return nil
}

// GetByID retrieves a match by its ID. Returns (nil, nil) if it does not exist.
func (r *MatchRepository) GetByID(ctx context.Context, id string) (*secondary.MatchRecord, error) {
	record := &secondary.MatchRecord{}
	err := r.db.QueryRowContext(ctx,
		"SELECT id, room_id, status, created_at, updated_at FROM matches WHERE id = ?",
		id,
	).Scan(&record.ID, &record.RoomID, &record.Status, &record.CreatedAt, &record.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	return record, nil
}

// List retrieves matches matching the given filters, newest first.
func (r *MatchRepository) List(ctx context.Context, filters secondary.MatchFilters) ([]*secondary.MatchRecord, error) {
	query := "SELECT id, room_id, status, created_at, updated_at FROM matches WHERE 1=1"
	args := []any{}

	if filters.RoomID != "" {
		query += " AND room_id = ?"
		args = append(args, filters.RoomID)
	}

	if len(filters.Statuses) > 0 {
		query += " AND status IN (?" + strings.Repeat(", ?", len(filters.Statuses)-1) + ")"
		for _, s := range filters.Statuses {
			args = append(args, s)
		}
	}

	query += " ORDER BY created_at DESC, rowid DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	var matches []*secondary.MatchRecord
	for rows.Next() {
		record := &secondary.MatchRecord{}
		if err := rows.Scan(&record.ID, &record.RoomID, &record.Status, &record.CreatedAt, &record.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, record)
	}

	return matches, rows.Err()
}

// UpdateStatus sets the lifecycle status of a match.
func (r *MatchRepository) UpdateStatus(ctx context.Context, id, status string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE matches SET status = ?, updated_at = strftime('%Y-%m-%d %H:%M:%f', 'now') WHERE id = ?",
		status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update match status: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("match %s not found", id)
	}

	return nil
}

// Ensure MatchRepository implements the interface
var _ secondary.MatchRepository = (*MatchRepository)(nil)
