package navigation

import (
	"fmt"
	"strings"

	"github.com/example/roomsync/internal/core/effects"
	"github.com/example/roomsync/internal/core/room"
)

// Snapshot is the part of the session context the routing rules look at.
type Snapshot struct {
	Active   bool // False when there is no resolved room (context none or unresolved)
	Status   room.Status
	JoinCode string
	MatchID  string
}

// Target computes the location the session context forces the user to.
// ok is false when the context does not force any location.
func Target(s Snapshot) (target string, ok bool) {
	if !s.Active {
		return "", false
	}
	switch s.Status {
	case room.StatusClosed:
		return RootPath, true
	case room.StatusOpen:
		if s.JoinCode == "" {
			return "", false
		}
		return RoomPath(s.JoinCode), true
	case room.StatusInProgress:
		// The match row may not exist yet right after the room starts.
		if s.MatchID == "" {
			return "", false
		}
		return MatchPath(s.MatchID), true
	default:
		return "", false
	}
}

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string // Human-readable reason (populated when not allowed)
}

// Error returns the guard result as an error if not allowed, nil otherwise.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// RedirectContext provides everything needed to decide on a forced redirect.
type RedirectContext struct {
	Snapshot      Snapshot
	Location      string // Where the user currently is
	Target        string // Where the context wants the user to be
	LastSignature string // Signature of the last redirect issued, empty if none
}

// CanRedirect evaluates the suppression rules for a forced redirect, in order:
// match screen while the room is still open, account screens, the root, already there,
// and finally an identical signature to the last redirect issued.
func CanRedirect(ctx RedirectContext) GuardResult {
	loc := CleanLocation(ctx.Location)

	if IsMatchScreen(loc) && ctx.Snapshot.Status == room.StatusOpen {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("%s is a match screen and room is still open", loc)}
	}
	if IsAccountScreen(loc) {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("%s is an account screen", loc)}
	}
	if loc == RootPath {
		return GuardResult{Allowed: false, Reason: "user is at the application root"}
	}
	if loc == CleanLocation(ctx.Target) {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("already at %s", loc)}
	}
	if ctx.LastSignature != "" && ctx.LastSignature == Signature(ctx.Snapshot, ctx.Target) {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("redirect to %s already issued", ctx.Target)}
	}
	return GuardResult{Allowed: true}
}

// Signature builds the debounce key for a redirect decision.
func Signature(s Snapshot, target string) string {
	return strings.Join([]string{string(s.Status), s.JoinCode, s.MatchID, target}, "|")
}

// PlanRedirect decides what, if anything, the navigator should do for a snapshot at a location.
// The returned effect is either an effects.NavigateEffect with Replace set, or an
// effects.NoEffect carrying the reason nothing happens.
func PlanRedirect(s Snapshot, location, lastSignature string) effects.Effect {
	target, ok := Target(s)
	if !ok {
		return effects.NoEffect{Reason: "context forces no location"}
	}

	result := CanRedirect(RedirectContext{
		Snapshot:      s,
		Location:      location,
		Target:        target,
		LastSignature: lastSignature,
	})
	if !result.Allowed {
		return effects.NoEffect{Reason: result.Reason}
	}

	return effects.NavigateEffect{
		Path:      target,
		Replace:   true,
		Signature: Signature(s, target),
	}
}
