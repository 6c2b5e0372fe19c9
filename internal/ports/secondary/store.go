// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import "context"

// MembershipRepository defines the secondary port for membership persistence.
type MembershipRepository interface {
	// Create persists a new membership.
	Create(ctx context.Context, membership *MembershipRecord) error

	// ListByUser retrieves a user's memberships, most recently joined first.
	// A limit of zero or less returns every membership.
	ListByUser(ctx context.Context, userID string, limit int) ([]*MembershipRecord, error)

	// Rejoin moves a user's membership from one room to another with the given role,
	// stamping a fresh joined-at so the new membership becomes the most recent one.
	Rejoin(ctx context.Context, rejoin RejoinRecord) error
}

// MembershipRecord represents a membership as stored in persistence.
type MembershipRecord struct {
	ID       string
	RoomID   string
	UserID   string
	Role     string // owner, player, spectator
	JoinedAt string
}

// RejoinRecord describes a membership moving to a successor room.
type RejoinRecord struct {
	UserID     string
	FromRoomID string
	ToRoomID   string
	Role       string
}

// RoomRepository defines the secondary port for room persistence.
type RoomRepository interface {
	// Create persists a new room.
	Create(ctx context.Context, room *RoomRecord) error

	// GetByID retrieves a room by its ID. Returns (nil, nil) if the room does not exist.
	GetByID(ctx context.Context, id string) (*RoomRecord, error)

	// GetByJoinCode retrieves a room by its canonical join code. Returns (nil, nil) if none.
	GetByJoinCode(ctx context.Context, joinCode string) (*RoomRecord, error)

	// List retrieves rooms matching the given filters, newest first.
	List(ctx context.Context, filters RoomFilters) ([]*RoomRecord, error)

	// UpdateStatus sets the lifecycle status of a room.
	UpdateStatus(ctx context.Context, id, status string) error
}

// RoomRecord represents a room as stored in persistence.
type RoomRecord struct {
	ID        string
	JoinCode  string
	Status    string // open, in_progress, closed (unvalidated: the store may hold anything)
	OwnerID   string // Empty string means null
	CreatedAt string
	UpdatedAt string
}

// RoomFilters contains filter options for querying rooms.
type RoomFilters struct {
	OwnerID   string
	Status    string
	ExcludeID string
	Limit     int
}

// MatchRepository defines the secondary port for match persistence.
type MatchRepository interface {
	// Create persists a new match.
	Create(ctx context.Context, match *MatchRecord) error

	// GetByID retrieves a match by its ID. Returns (nil, nil) if the match does not exist.
	GetByID(ctx context.Context, id string) (*MatchRecord, error)

	// List retrieves matches matching the given filters, newest first.
	List(ctx context.Context, filters MatchFilters) ([]*MatchRecord, error)

	// UpdateStatus sets the lifecycle status of a match.
	UpdateStatus(ctx context.Context, id, status string) error
}

// MatchRecord represents a match as stored in persistence.
type MatchRecord struct {
	ID        string
	RoomID    string
	Status    string // setup, active, finished, abandoned
	CreatedAt string
	UpdatedAt string
}

// MatchFilters contains filter options for querying matches.
type MatchFilters struct {
	RoomID   string
	Statuses []string // Any of these; empty means all
	Limit    int
}
