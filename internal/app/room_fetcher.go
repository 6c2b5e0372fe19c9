package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/roomsync/internal/core/room"
	"github.com/example/roomsync/internal/ports/secondary"
)

// ErrRoomNotFound is returned when a membership points at a room that does not exist.
var ErrRoomNotFound = errors.New("room not found")

// RoomState is the reconciliation view of a room.
type RoomState struct {
	RoomID   string
	JoinCode string      // Canonical form
	Status   room.Status // room.StatusUnknown for unrecognized stored values
	OwnerID  string
}

// RoomStateFetcher reads a room's lifecycle status, join code and owner.
type RoomStateFetcher struct {
	roomRepo secondary.RoomRepository
}

// NewRoomStateFetcher creates a new RoomStateFetcher.
func NewRoomStateFetcher(roomRepo secondary.RoomRepository) *RoomStateFetcher {
	return &RoomStateFetcher{roomRepo: roomRepo}
}

// Fetch returns the state of a room. A missing row yields ErrRoomNotFound.
func (f *RoomStateFetcher) Fetch(ctx context.Context, roomID string) (*RoomState, error) {
	if roomID == "" {
		return nil, fmt.Errorf("room ID is required")
	}

	record, err := f.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch room %s: %w", roomID, err)
	}
	if record == nil {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, roomID)
	}

	return &RoomState{
		RoomID:   record.ID,
		JoinCode: room.NormalizeJoinCode(record.JoinCode),
		Status:   room.ParseStatus(record.Status),
		OwnerID:  record.OwnerID,
	}, nil
}
