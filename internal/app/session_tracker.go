package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/roomsync/internal/ports/primary"
	"github.com/example/roomsync/internal/ports/secondary"
)

// DefaultPollInterval is the fallback polling period used when push events go missing.
const DefaultPollInterval = 5 * time.Second

// userReconciler runs a reconciliation pass for a known user.
type userReconciler interface {
	ReconcileFor(ctx context.Context, userID string) (primary.SessionContext, error)
}

// TrackerConfig tunes a SessionTracker.
type TrackerConfig struct {
	PollInterval time.Duration
}

// SessionTrackerImpl keeps the session context in sync. It owns three signal sources:
// a membership subscription for the user, a subscription scoped to the current room and
// its matches, and a poll ticker. Every signal feeds the same coalescing trigger.
type SessionTrackerImpl struct {
	identity     secondary.IdentityProvider
	feed         secondary.ChangeFeed
	reconciler   userReconciler
	guard        *NavigationGuard
	store        *ContextStore
	pollInterval time.Duration
	logger       *zap.Logger

	// kick holds at most one pending pass; triggers arriving while one is queued merge into it.
	kick chan struct{}

	mu        sync.Mutex
	userID    string
	active    bool
	cancel    context.CancelFunc
	group     *errgroup.Group
	memberSub secondary.Subscription
	roomSub   secondary.Subscription
	roomKey   string // Room the live room subscription was created for
}

// NewSessionTracker creates a new SessionTracker. guard may be nil when nothing needs to
// follow the context with navigation.
func NewSessionTracker(
	identity secondary.IdentityProvider,
	feed secondary.ChangeFeed,
	reconciler userReconciler,
	guard *NavigationGuard,
	store *ContextStore,
	cfg TrackerConfig,
	logger *zap.Logger,
) *SessionTrackerImpl {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionTrackerImpl{
		identity:     identity,
		feed:         feed,
		reconciler:   reconciler,
		guard:        guard,
		store:        store,
		pollInterval: cfg.PollInterval,
		logger:       logger,
		kick:         make(chan struct{}, 1),
	}
}

// Start resolves the identity, subscribes to the user's memberships and starts the
// run and poll loops. Without an identity the tracker stays inactive.
func (t *SessionTrackerImpl) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active {
		return fmt.Errorf("session tracker already started for %s", t.userID)
	}

	userID, err := t.identity.CurrentUserID(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve identity: %w", err)
	}
	if userID == "" {
		t.logger.Info("no signed-in user; session tracker inactive")
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	memberSub, err := t.feed.Subscribe(runCtx, "memberships:"+userID, []secondary.Binding{
		{Table: secondary.TableMemberships, Event: secondary.EventAny, Column: "user_id", Value: userID},
	}, t.onChange)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to subscribe to memberships: %w", err)
	}

	group, groupCtx := errgroup.WithContext(runCtx)
	t.userID = userID
	t.cancel = cancel
	t.group = group
	t.memberSub = memberSub
	t.active = true

	group.Go(func() error { return t.runLoop(groupCtx) })
	group.Go(func() error { return t.pollLoop(groupCtx) })

	t.logger.Info("session tracker started",
		zap.String("user", userID),
		zap.Duration("poll_interval", t.pollInterval),
	)
	t.Trigger()
	return nil
}

// Stop cancels the loops, releases every subscription and waits for in-flight work to
// wind down. Results of passes still running are discarded.
func (t *SessionTrackerImpl) Stop() error {
	t.mu.Lock()
	if !t.active {
		t.mu.Unlock()
		return nil
	}
	t.active = false
	t.cancel()

	var errs []error
	if t.memberSub != nil {
		if err := t.memberSub.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close membership subscription: %w", err))
		}
		t.memberSub = nil
	}
	if err := t.closeRoomSubLocked(); err != nil {
		errs = append(errs, err)
	}
	group := t.group
	userID := t.userID
	t.mu.Unlock()

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		errs = append(errs, err)
	}

	t.logger.Info("session tracker stopped", zap.String("user", userID))
	return errors.Join(errs...)
}

// Trigger requests a reconciliation pass without blocking.
func (t *SessionTrackerImpl) Trigger() {
	select {
	case t.kick <- struct{}{}:
	default:
	}
}

// Active reports whether the tracker is running.
func (t *SessionTrackerImpl) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Current returns the latest session context.
func (t *SessionTrackerImpl) Current() primary.SessionContext {
	return t.store.Current()
}

// Watch streams session contexts as they change until ctx is done.
func (t *SessionTrackerImpl) Watch(ctx context.Context) <-chan primary.SessionContext {
	return t.store.Watch(ctx)
}

// RoomKey returns the room the live room subscription is bound to, "" if none.
func (t *SessionTrackerImpl) RoomKey() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.roomKey
}

func (t *SessionTrackerImpl) onChange(c secondary.Change) {
	t.logger.Debug("change received", zap.String("table", c.Table), zap.String("event", c.Event))
	t.Trigger()
}

func (t *SessionTrackerImpl) runLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.kick:
			t.pass(ctx)
		}
	}
}

func (t *SessionTrackerImpl) pollLoop(ctx context.Context) error {
	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			t.Trigger()
		}
	}
}

// pass runs one reconciliation and applies its consequences: the room subscription
// follows the context's room and the navigation guard sees the new context.
func (t *SessionTrackerImpl) pass(ctx context.Context) {
	sc, err := t.reconciler.ReconcileFor(ctx, t.userID)
	if ctx.Err() != nil || err != nil {
		// Errors are logged by the reconciler; the previous context stands until the next trigger.
		return
	}

	roomID := ""
	if sc.IsActive() {
		roomID = sc.RoomID
	}
	t.bindRoom(ctx, roomID)

	if t.guard != nil {
		if _, err := t.guard.Evaluate(ctx, sc); err != nil {
			t.logger.Warn("navigation guard failed", zap.Error(err))
		}
	}
}

// bindRoom keeps exactly one room-scoped subscription, keyed by room ID. A change of room
// tears down the old subscription before creating the new one; an empty room ID only
// tears down.
func (t *SessionTrackerImpl) bindRoom(ctx context.Context, roomID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.active || ctx.Err() != nil {
		return
	}
	if roomID == t.roomKey {
		return
	}

	if err := t.closeRoomSubLocked(); err != nil {
		t.logger.Warn("failed to release room subscription", zap.Error(err))
	}
	if roomID == "" {
		return
	}

	sub, err := t.feed.Subscribe(ctx, "room:"+roomID, []secondary.Binding{
		{Table: secondary.TableRooms, Event: secondary.EventAny, Column: "id", Value: roomID},
		{Table: secondary.TableMatches, Event: secondary.EventAny, Column: "room_id", Value: roomID},
	}, t.onChange)
	if err != nil {
		// Key stays empty so the next pass retries; polling covers the gap.
		t.logger.Warn("failed to subscribe to room", zap.String("room", roomID), zap.Error(err))
		return
	}
	t.roomSub = sub
	t.roomKey = roomID
	t.logger.Debug("room subscription bound", zap.String("room", roomID))
}

func (t *SessionTrackerImpl) closeRoomSubLocked() error {
	if t.roomSub == nil {
		t.roomKey = ""
		return nil
	}
	err := t.roomSub.Close()
	t.roomSub = nil
	key := t.roomKey
	t.roomKey = ""
	if err != nil {
		return fmt.Errorf("close room subscription %s: %w", key, err)
	}
	return nil
}

// Ensure SessionTrackerImpl implements the interface
var _ primary.SessionTracker = (*SessionTrackerImpl)(nil)
