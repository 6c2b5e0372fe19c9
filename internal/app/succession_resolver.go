package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/example/roomsync/internal/core/room"
	"github.com/example/roomsync/internal/ports/secondary"
)

// DefaultSuccessionLookahead is how many of the owner's open rooms are considered.
const DefaultSuccessionLookahead = 5

// SuccessionRequest describes a closed room the caller is still a member of.
type SuccessionRequest struct {
	UserID       string
	ClosedRoomID string
	OwnerID      string
	PriorRole    room.Role
}

// SuccessionResolver follows a closed room to the newer open room its owner created,
// moving the caller's membership along.
type SuccessionResolver struct {
	roomRepo       secondary.RoomRepository
	membershipRepo secondary.MembershipRepository
	lookahead      int
	logger         *zap.Logger
}

// NewSuccessionResolver creates a new SuccessionResolver.
// A lookahead of zero or less uses DefaultSuccessionLookahead.
func NewSuccessionResolver(roomRepo secondary.RoomRepository, membershipRepo secondary.MembershipRepository, lookahead int, logger *zap.Logger) *SuccessionResolver {
	if lookahead <= 0 {
		lookahead = DefaultSuccessionLookahead
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SuccessionResolver{
		roomRepo:       roomRepo,
		membershipRepo: membershipRepo,
		lookahead:      lookahead,
		logger:         logger,
	}
}

// Resolve looks for a successor and rejoins the caller into it.
// It reports whether the caller was moved. Every failure is soft: it is logged and
// reported as not moved, because landing on the default screen is always safe.
func (s *SuccessionResolver) Resolve(ctx context.Context, req SuccessionRequest) bool {
	log := s.logger.With(
		zap.String("user", req.UserID),
		zap.String("closed_room", req.ClosedRoomID),
		zap.String("owner", req.OwnerID),
	)

	records, err := s.roomRepo.List(ctx, secondary.RoomFilters{
		OwnerID:   req.OwnerID,
		Status:    string(room.StatusOpen),
		ExcludeID: req.ClosedRoomID,
		Limit:     s.lookahead,
	})
	if err != nil {
		log.Warn("successor lookup failed", zap.Error(err))
		return false
	}

	candidates := make([]room.Candidate, 0, len(records))
	for _, r := range records {
		candidates = append(candidates, room.Candidate{ID: r.ID, JoinCode: room.NormalizeJoinCode(r.JoinCode)})
	}

	successor, found := room.SelectSuccessor(candidates, req.ClosedRoomID)
	if !found {
		log.Info("no successor room found")
		return false
	}

	// Discard the move if the pass was abandoned while the lookup was in flight.
	if ctx.Err() != nil {
		return false
	}

	role := room.RejoinRole(req.PriorRole)
	err = s.membershipRepo.Rejoin(ctx, secondary.RejoinRecord{
		UserID:     req.UserID,
		FromRoomID: req.ClosedRoomID,
		ToRoomID:   successor.ID,
		Role:       string(role),
	})
	if err != nil {
		log.Warn("rejoin into successor failed", zap.String("successor", successor.ID), zap.Error(err))
		return false
	}

	log.Info("rejoined successor room",
		zap.String("successor", successor.ID),
		zap.String("join_code", successor.JoinCode),
		zap.String("role", string(role)),
	)
	return true
}
