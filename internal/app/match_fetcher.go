package app

import (
	"context"
	"fmt"

	"github.com/example/roomsync/internal/core/match"
	"github.com/example/roomsync/internal/ports/secondary"
)

// ActiveMatchFetcher finds the match currently being played in a room.
type ActiveMatchFetcher struct {
	matchRepo secondary.MatchRepository
}

// NewActiveMatchFetcher creates a new ActiveMatchFetcher.
func NewActiveMatchFetcher(matchRepo secondary.MatchRepository) *ActiveMatchFetcher {
	return &ActiveMatchFetcher{matchRepo: matchRepo}
}

// Fetch returns the ID of the newest pre-terminal match in the room, or "" if none.
func (f *ActiveMatchFetcher) Fetch(ctx context.Context, roomID string) (string, error) {
	statuses := make([]string, 0, 2)
	for _, s := range match.PreTerminalStatuses() {
		statuses = append(statuses, string(s))
	}

	records, err := f.matchRepo.List(ctx, secondary.MatchFilters{
		RoomID:   roomID,
		Statuses: statuses,
		Limit:    1,
	})
	if err != nil {
		return "", fmt.Errorf("failed to fetch active match for room %s: %w", roomID, err)
	}
	if len(records) == 0 {
		return "", nil
	}
	return records[0].ID, nil
}
