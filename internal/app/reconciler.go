package app

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/example/roomsync/internal/core/room"
	"github.com/example/roomsync/internal/ports/primary"
	"github.com/example/roomsync/internal/ports/secondary"
)

// ErrNoIdentity is returned when nobody is signed in.
var ErrNoIdentity = errors.New("no signed-in user")

// DefaultMaxSuccessionHops bounds how many successor rooms one pass follows.
// One hop is enough in practice: a rejoin always lands on an open room.
const DefaultMaxSuccessionHops = 2

var tracer = otel.Tracer("github.com/example/roomsync/internal/app")

// ReconcilerConfig tunes a Reconciler.
type ReconcilerConfig struct {
	MaxSuccessionHops int
}

// ReconcilerImpl derives the session context from the store and publishes it to a ContextStore.
// It is safe for concurrent use: overlapping passes each compute a full snapshot and the
// last one to finish wins.
type ReconcilerImpl struct {
	identity    secondary.IdentityProvider
	memberships *MembershipResolver
	rooms       *RoomStateFetcher
	matches     *ActiveMatchFetcher
	succession  *SuccessionResolver
	store       *ContextStore
	maxHops     int
	logger      *zap.Logger
}

// NewReconciler creates a new Reconciler with injected dependencies.
func NewReconciler(
	identity secondary.IdentityProvider,
	memberships *MembershipResolver,
	rooms *RoomStateFetcher,
	matches *ActiveMatchFetcher,
	succession *SuccessionResolver,
	store *ContextStore,
	cfg ReconcilerConfig,
	logger *zap.Logger,
) *ReconcilerImpl {
	if cfg.MaxSuccessionHops <= 0 {
		cfg.MaxSuccessionHops = DefaultMaxSuccessionHops
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconcilerImpl{
		identity:    identity,
		memberships: memberships,
		rooms:       rooms,
		matches:     matches,
		succession:  succession,
		store:       store,
		maxHops:     cfg.MaxSuccessionHops,
		logger:      logger,
	}
}

// Reconcile runs one pass for the signed-in user.
func (r *ReconcilerImpl) Reconcile(ctx context.Context) (primary.SessionContext, error) {
	userID, err := r.identity.CurrentUserID(ctx)
	if err != nil {
		return r.store.Current(), fmt.Errorf("failed to resolve identity: %w", err)
	}
	if userID == "" {
		return r.store.Current(), ErrNoIdentity
	}
	return r.ReconcileFor(ctx, userID)
}

// ReconcileFor runs one pass for the given user.
// Store failures abort the pass and leave the published context untouched. A pass whose
// ctx is cancelled before it finishes publishes nothing.
func (r *ReconcilerImpl) ReconcileFor(ctx context.Context, userID string) (primary.SessionContext, error) {
	ctx, span := tracer.Start(ctx, "roomsync.reconcile", trace.WithAttributes(
		attribute.String("roomsync.user", userID),
	))
	defer span.End()

	log := r.logger.With(zap.String("user", userID))

	next, hops, err := r.resolve(ctx, userID, log)
	span.SetAttributes(attribute.Int("roomsync.succession_hops", hops))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reconcile failed")
		if ctx.Err() == nil {
			log.Error("reconcile pass aborted", zap.Error(err))
		}
		return r.store.Current(), err
	}

	// The tracker may have been torn down while queries were in flight.
	if err := ctx.Err(); err != nil {
		log.Debug("discarding reconcile result after cancellation")
		return r.store.Current(), err
	}

	span.SetAttributes(
		attribute.String("roomsync.state", string(next.State)),
		attribute.String("roomsync.room", next.RoomID),
		attribute.String("roomsync.room_status", next.RoomStatus),
	)

	if r.store.Set(next) {
		log.Info("session context changed",
			zap.String("state", string(next.State)),
			zap.String("room", next.RoomID),
			zap.String("join_code", next.JoinCode),
			zap.String("status", next.RoomStatus),
			zap.String("match", next.MatchID),
		)
	}
	return next, nil
}

// resolve walks membership -> room -> (successor) -> match and returns the new context
// together with the number of successions performed.
func (r *ReconcilerImpl) resolve(ctx context.Context, userID string, log *zap.Logger) (primary.SessionContext, int, error) {
	hops := 0
	for {
		membership, err := r.memberships.Resolve(ctx, userID)
		if err != nil {
			return primary.SessionContext{}, hops, err
		}
		if membership == nil {
			return primary.NoSession(), hops, nil
		}

		state, err := r.rooms.Fetch(ctx, membership.RoomID)
		if errors.Is(err, ErrRoomNotFound) {
			log.Warn("membership points at a missing room", zap.String("room", membership.RoomID))
			return primary.NoSession(), hops, nil
		}
		if err != nil {
			return primary.SessionContext{}, hops, err
		}
		if !state.Status.Known() {
			log.Warn("room has an unrecognized status", zap.String("room", state.RoomID))
			return primary.NoSession(), hops, nil
		}

		if state.Status == room.StatusClosed && state.OwnerID != "" {
			guard := room.CanAttemptSuccession(room.SuccessionContext{
				RoomID:  state.RoomID,
				Status:  state.Status,
				OwnerID: state.OwnerID,
				Hops:    hops,
				MaxHops: r.maxHops,
			})
			if guard.Allowed {
				if err := ctx.Err(); err != nil {
					return primary.SessionContext{}, hops, err
				}
				moved := r.succession.Resolve(ctx, SuccessionRequest{
					UserID:       userID,
					ClosedRoomID: state.RoomID,
					OwnerID:      state.OwnerID,
					PriorRole:    room.ParseRole(membership.Role),
				})
				if moved {
					// Role, join code and match can all differ in the new room: start over.
					hops++
					continue
				}
			} else {
				log.Warn("succession skipped", zap.String("reason", guard.Reason))
			}
			return primary.NoSession(), hops, nil
		}

		matchID := ""
		if state.Status == room.StatusInProgress {
			matchID, err = r.matches.Fetch(ctx, state.RoomID)
			if err != nil {
				return primary.SessionContext{}, hops, err
			}
		}

		return primary.SessionContext{
			State:      primary.SessionActive,
			RoomID:     state.RoomID,
			JoinCode:   state.JoinCode,
			RoomStatus: string(state.Status),
			MatchID:    matchID,
		}, hops, nil
	}
}

// Ensure ReconcilerImpl implements the interface
var _ primary.Reconciler = (*ReconcilerImpl)(nil)
