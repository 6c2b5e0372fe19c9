// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/roomsync/internal/ports/secondary"
)

const roomColumns = "id, join_code, status, owner_id, created_at, updated_at"

// RoomRepository implements secondary.RoomRepository with SQLite.
type RoomRepository struct {
	db *sql.DB
}

// NewRoomRepository creates a new SQLite room repository.
func NewRoomRepository(db *sql.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// Create persists a new room.
func (r *RoomRepository) Create(ctx context.Context, room *secondary.RoomRecord) error {
	var ownerID sql.NullString
	if room.OwnerID != "" {
		ownerID = sql.NullString{String: room.OwnerID, Valid: true}
	}

	status := room.Status
	if status == "" {
		status = "open"
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO rooms (id, join_code, status, owner_id) VALUES (?, ?, ?, ?)",
		room.ID, room.JoinCode, status, ownerID,
	)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	return nil
}

// GetByID retrieves a room by its ID. Returns (nil, nil) if it does not exist.
func (r *RoomRepository) GetByID(ctx context.Context, id string) (*secondary.RoomRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+roomColumns+" FROM rooms WHERE id = ?", id)
	record, err := scanRoom(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return record, nil
}

// GetByJoinCode retrieves a room by its canonical join code. Returns (nil, nil) if none.
func (r *RoomRepository) GetByJoinCode(ctx context.Context, joinCode string) (*secondary.RoomRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+roomColumns+" FROM rooms WHERE join_code = ?", joinCode)
	record, err := scanRoom(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room by join code: %w", err)
	}
	return record, nil
}

// List retrieves rooms matching the given filters, newest first.
func (r *RoomRepository) List(ctx context.Context, filters secondary.RoomFilters) ([]*secondary.RoomRecord, error) {
	query := "SELECT " + roomColumns + " FROM rooms WHERE 1=1"
	args := []any{}

	if filters.OwnerID != "" {
		query += " AND owner_id = ?"
		args = append(args, filters.OwnerID)
	}

	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}

	if filters.ExcludeID != "" {
		query += " AND id != ?"
		args = append(args, filters.ExcludeID)
	}

	query += " ORDER BY created_at DESC, rowid DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer rows.Close()

	var rooms []*secondary.RoomRecord
	for rows.Next() {
		record, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, record)
	}

	return rooms, rows.Err()
}

// UpdateStatus sets the lifecycle status of a room.
func (r *RoomRepository) UpdateStatus(ctx context.Context, id, status string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE rooms SET status = ?, updated_at = strftime('%Y-%m-%d %H:%M:%f', 'now') WHERE id = ?",
		status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update room status: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("room %s not found", id)
	}

	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(s rowScanner) (*secondary.RoomRecord, error) {
	var ownerID sql.NullString
	record := &secondary.RoomRecord{}
	if err := s.Scan(&record.ID, &record.JoinCode, &record.Status, &ownerID, &record.CreatedAt, &record.UpdatedAt); err != nil {
		return nil, err
	}
	record.OwnerID = ownerID.String
	return record, nil
}

// Ensure RoomRepository implements the interface
var _ secondary.RoomRepository = (*RoomRepository)(nil)
