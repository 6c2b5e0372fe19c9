package app

import (
	"context"
	"fmt"

	"github.com/example/roomsync/internal/ports/secondary"
)

// MembershipResolver finds a user's active membership.
type MembershipResolver struct {
	membershipRepo secondary.MembershipRepository
}

// NewMembershipResolver creates a new MembershipResolver.
func NewMembershipResolver(membershipRepo secondary.MembershipRepository) *MembershipResolver {
	return &MembershipResolver{membershipRepo: membershipRepo}
}

// Resolve returns the user's most recently joined membership, or nil if they have none.
// Older memberships are never expired; the newest one simply wins.
func (r *MembershipResolver) Resolve(ctx context.Context, userID string) (*secondary.MembershipRecord, error) {
	records, err := r.membershipRepo.ListByUser(ctx, userID, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve membership for %s: %w", userID, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}
