// Package primary defines the primary ports (driving adapters) for the application.
// These are the interfaces through which the outside world drives the application.
package primary

import "context"

// SessionState is the resolution state of a SessionContext.
type SessionState string

const (
	// SessionUnresolved means no reconciliation pass has completed yet.
	SessionUnresolved SessionState = "unresolved"
	// SessionNone means the user has no active room.
	SessionNone SessionState = "none"
	// SessionActive means the user belongs to a room.
	SessionActive SessionState = "active"
)

// SessionContext is the derived answer to "where does this user currently belong".
// It is always replaced wholesale, never patched.
type SessionContext struct {
	State      SessionState
	RoomID     string
	JoinCode   string // Canonical (trimmed, uppercase)
	RoomStatus string // open, in_progress, closed
	MatchID    string // Active match, empty if none
}

// UnresolvedSession returns the context before the first pass completes.
func UnresolvedSession() SessionContext {
	return SessionContext{State: SessionUnresolved}
}

// NoSession returns the context of a user without an active room.
func NoSession() SessionContext {
	return SessionContext{State: SessionNone}
}

// IsActive reports whether the context points at a room.
func (c SessionContext) IsActive() bool {
	return c.State == SessionActive
}

// Reconciler defines the primary port for a single reconciliation pass.
type Reconciler interface {
	// Reconcile re-derives the session context from the store, publishes it, and returns it.
	// On a store failure the previously published context is left untouched.
	Reconcile(ctx context.Context) (SessionContext, error)
}

// SessionTracker defines the primary port for the long-running engine: it keeps the
// session context in sync from push events and polling and drives forced navigation.
type SessionTracker interface {
	// Start resolves the identity and opens the subscriptions and poll timer.
	// Without an identity the tracker stays inactive and Start returns nil.
	Start(ctx context.Context) error

	// Stop releases every subscription, cancels the timer and discards in-flight results.
	Stop() error

	// Trigger requests a reconciliation pass. It never blocks; bursts are coalesced.
	Trigger()

	// Active reports whether the tracker is running for a known identity.
	Active() bool

	// Current returns the latest session context.
	Current() SessionContext

	// Watch streams session contexts as they change until ctx is done.
	Watch(ctx context.Context) <-chan SessionContext
}
