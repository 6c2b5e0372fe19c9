package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/example/roomsync/internal/ports/secondary"
)

// MembershipRepository implements secondary.MembershipRepository with SQLite.
type MembershipRepository struct {
	db *sql.DB
}

// NewMembershipRepository creates a new SQLite membership repository.
func NewMembershipRepository(db *sql.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// Create persists a new membership.
func (r *MembershipRepository) Create(ctx context.Context, membership *secondary.MembershipRecord) error {
	role := membership.Role
	if role == "" {
		role = "player"
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO memberships (id, room_id, user_id, role) VALUES (?, ?, ?, ?)",
		membership.ID, membership.RoomID, membership.UserID, role,
	)
	if err != nil {
		return fmt.Errorf("failed to create membership: %w", err)
	}

	return nil
}

// ListByUser retrieves a user's memberships, most recently joined first.
func (r *MembershipRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*secondary.MembershipRecord, error) {
	query := "SELECT id, room_id, user_id, role, joined_at FROM memberships WHERE user_id = ? ORDER BY joined_at DESC, rowid DESC"
	args := []any{userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	defer rows.Close()

	var memberships []*secondary.MembershipRecord
	for rows.Next() {
		record := &secondary.MembershipRecord{}
		if err := rows.Scan(&record.ID, &record.RoomID, &record.UserID, &record.Role, &record.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		memberships = append(memberships, record)
	}

	return memberships, rows.Err()
}

// Rejoin moves the user's membership in FromRoomID over to ToRoomID with a fresh
// joined_at. When no such membership exists a new one is inserted instead.
func (r *MembershipRepository) Rejoin(ctx context.Context, rejoin secondary.RejoinRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin rejoin: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		"UPDATE memberships SET room_id = ?, role = ?, joined_at = strftime('%Y-%m-%d %H:%M:%f', 'now') WHERE user_id = ? AND room_id = ?",
		rejoin.ToRoomID, rejoin.Role, rejoin.UserID, rejoin.FromRoomID,
	)
	if err != nil {
		return fmt.Errorf("failed to move membership: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO memberships (id, room_id, user_id, role) VALUES (?, ?, ?, ?)",
			uuid.NewString(), rejoin.ToRoomID, rejoin.UserID, rejoin.Role,
		)
		if err != nil {
			return fmt.Errorf("failed to insert membership: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rejoin: %w", err)
	}
	return nil
}

// Ensure MembershipRepository implements the interface
var _ secondary.MembershipRepository = (*MembershipRepository)(nil)
