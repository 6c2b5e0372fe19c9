// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle argument parsing, output formatting,
// but delegate business logic to services.
package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/example/roomsync/internal/ports/primary"
)

// LobbyAdapter is a thin adapter that translates CLI operations to LobbyService calls.
// It depends only on the LobbyService interface, enabling easy testing with mocks.
type LobbyAdapter struct {
	service primary.LobbyService
	out     io.Writer
}

// NewLobbyAdapter creates a new LobbyAdapter with the given service.
func NewLobbyAdapter(service primary.LobbyService, out io.Writer) *LobbyAdapter {
	return &LobbyAdapter{
		service: service,
		out:     out,
	}
}

// CreateRoom creates a room owned by userID.
func (a *LobbyAdapter) CreateRoom(ctx context.Context, joinCode, userID string) error {
	r, err := a.service.CreateRoom(ctx, primary.CreateRoomRequest{
		JoinCode: joinCode,
		OwnerID:  userID,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Created room %s (%s)\n", r.JoinCode, r.ID)
	return nil
}

// JoinRoom joins userID to the room with the given code.
func (a *LobbyAdapter) JoinRoom(ctx context.Context, joinCode, userID, role string) error {
	r, err := a.service.JoinRoom(ctx, primary.JoinRoomRequest{
		JoinCode: joinCode,
		UserID:   userID,
		Role:     role,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Joined room %s [%s]\n", r.JoinCode, r.Status)
	return nil
}

// StartRoom moves a room to in_progress.
func (a *LobbyAdapter) StartRoom(ctx context.Context, joinCode string) error {
	r, err := a.service.StartRoom(ctx, joinCode)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Room %s is now %s\n", r.JoinCode, r.Status)
	return nil
}

// CloseRoom moves a room to closed.
func (a *LobbyAdapter) CloseRoom(ctx context.Context, joinCode string) error {
	r, err := a.service.CloseRoom(ctx, joinCode)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Room %s is now %s\n", r.JoinCode, r.Status)
	return nil
}

// ListRooms lists rooms with optional owner and status filters.
func (a *LobbyAdapter) ListRooms(ctx context.Context, ownerID, status string) ([]*primary.Room, error) {
	rooms, err := a.service.ListRooms(ctx, primary.RoomFilters{
		OwnerID: ownerID,
		Status:  status,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	if len(rooms) == 0 {
		fmt.Fprintln(a.out, "No rooms found.")
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, "Create your first room:")
		fmt.Fprintln(a.out, "  roomsync room create ABCD")
		return rooms, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "CODE\tSTATUS\tOWNER\tID\tCREATED")
	fmt.Fprintln(w, "----\t------\t-----\t--\t-------")
	for _, r := range rooms {
		owner := r.OwnerID
		if owner == "" {
			owner = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.JoinCode, r.Status, owner, r.ID, r.CreatedAt)
	}
	w.Flush()
	return rooms, nil
}

// StartMatch starts a match in a room on behalf of userID.
func (a *LobbyAdapter) StartMatch(ctx context.Context, joinCode, userID string) error {
	m, err := a.service.StartMatch(ctx, primary.StartMatchRequest{
		JoinCode:    joinCode,
		RequesterID: userID,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Started match %s [%s]\n", m.ID, m.Status)
	return nil
}

// FinishMatch ends a match, abandoning it when abandon is set.
func (a *LobbyAdapter) FinishMatch(ctx context.Context, matchID string, abandon bool) error {
	m, err := a.service.FinishMatch(ctx, primary.FinishMatchRequest{
		MatchID: matchID,
		Abandon: abandon,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Match %s is now %s\n", m.ID, m.Status)
	return nil
}
