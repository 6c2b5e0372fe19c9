package primary

import "context"

// LobbyService defines the primary port for room and match writes.
// Every write is persisted and then announced on the change feed.
type LobbyService interface {
	// CreateRoom creates an open room owned by the requester, who joins it as owner.
	CreateRoom(ctx context.Context, req CreateRoomRequest) (*Room, error)

	// JoinRoom adds a user to a room by join code.
	JoinRoom(ctx context.Context, req JoinRoomRequest) (*Room, error)

	// StartRoom moves a room to in_progress.
	StartRoom(ctx context.Context, joinCode string) (*Room, error)

	// CloseRoom moves a room to closed.
	CloseRoom(ctx context.Context, joinCode string) (*Room, error)

	// ListRooms lists rooms with optional filters.
	ListRooms(ctx context.Context, filters RoomFilters) ([]*Room, error)

	// StartMatch creates a match in a room, moving the room to in_progress if needed.
	StartMatch(ctx context.Context, req StartMatchRequest) (*Match, error)

	// FinishMatch moves a match to finished or abandoned.
	FinishMatch(ctx context.Context, req FinishMatchRequest) (*Match, error)
}

// Room represents a room at the port boundary.
type Room struct {
	ID        string
	JoinCode  string
	Status    string
	OwnerID   string
	CreatedAt string
}

// Match represents a match at the port boundary.
type Match struct {
	ID        string
	RoomID    string
	Status    string
	CreatedAt string
}

// CreateRoomRequest contains parameters for creating a room.
type CreateRoomRequest struct {
	JoinCode string
	OwnerID  string
}

// JoinRoomRequest contains parameters for joining a room.
type JoinRoomRequest struct {
	JoinCode string
	UserID   string
	Role     string // player or spectator
}

// RoomFilters contains filter options for listing rooms.
type RoomFilters struct {
	OwnerID string
	Status  string
	Limit   int
}

// StartMatchRequest contains parameters for starting a match.
type StartMatchRequest struct {
	JoinCode    string
	RequesterID string
}

// FinishMatchRequest contains parameters for ending a match.
type FinishMatchRequest struct {
	MatchID string
	Abandon bool
}
