package room

import "fmt"

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

// TransitionContext provides the context needed to evaluate a room status change.
type TransitionContext struct {
	RoomID     string
	JoinCode   string
	FromStatus Status
	ToStatus   Status
}

// CanTransition evaluates whether a room may move between two lifecycle states.
// Rule: open -> in_progress -> closed, forward only. Skipping in_progress (open -> closed)
// is allowed; a closed room never becomes active again.
func CanTransition(ctx TransitionContext) GuardResult {
	if !ctx.ToStatus.Known() {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("unknown target status %q for room %s", ctx.ToStatus, ctx.JoinCode),
		}
	}
	if ctx.FromStatus == StatusClosed {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("room %s is closed - create a new room instead of reopening it", ctx.JoinCode),
		}
	}
	if ctx.ToStatus.rank() <= ctx.FromStatus.rank() {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("room %s cannot move from %s to %s", ctx.JoinCode, ctx.FromStatus, ctx.ToStatus),
		}
	}
	return GuardResult{Allowed: true}
}

// CanStartRoom evaluates moving a room to in_progress.
func CanStartRoom(roomID, joinCode string, from Status) GuardResult {
	return CanTransition(TransitionContext{RoomID: roomID, JoinCode: joinCode, FromStatus: from, ToStatus: StatusInProgress})
}

// CanCloseRoom evaluates moving a room to closed.
func CanCloseRoom(roomID, joinCode string, from Status) GuardResult {
	return CanTransition(TransitionContext{RoomID: roomID, JoinCode: joinCode, FromStatus: from, ToStatus: StatusClosed})
}

// JoinContext provides the context needed to evaluate a join request.
type JoinContext struct {
	JoinCode   string
	RoomExists bool
	Status     Status
	Role       Role
}

// CanJoinRoom evaluates whether a user may join a room.
// Rule: players join open rooms only; spectators may also join rooms in progress.
// Nobody joins a closed room. The owner role is assigned at creation, never by joining.
func CanJoinRoom(ctx JoinContext) GuardResult {
	if !ctx.RoomExists {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("no room with code %s", ctx.JoinCode),
		}
	}
	if ctx.Role == RoleOwner {
		return GuardResult{
			Allowed: false,
			Reason:  "cannot join as owner - owners are set when the room is created",
		}
	}
	switch ctx.Status {
	case StatusOpen:
		return GuardResult{Allowed: true}
	case StatusInProgress:
		if ctx.Role == RoleSpectator {
			return GuardResult{Allowed: true}
		}
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("room %s is already in progress - join as spectator", ctx.JoinCode),
		}
	default:
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("room %s is %s", ctx.JoinCode, ctx.Status),
		}
	}
}

// SuccessionContext provides the context for deciding whether to look for a successor room.
type SuccessionContext struct {
	RoomID  string
	Status  Status
	OwnerID string
	Hops    int // Successions already performed in this pass
	MaxHops int
}

// CanAttemptSuccession evaluates whether a reconciliation pass should search for a successor.
// Rule: only closed rooms with a known owner, and only while the hop budget lasts.
func CanAttemptSuccession(ctx SuccessionContext) GuardResult {
	if ctx.Status != StatusClosed {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("room %s is %s, not closed", ctx.RoomID, ctx.Status),
		}
	}
	if ctx.OwnerID == "" {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("room %s has no owner to follow", ctx.RoomID),
		}
	}
	if ctx.Hops >= ctx.MaxHops {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("succession hop limit %d reached at room %s", ctx.MaxHops, ctx.RoomID),
		}
	}
	return GuardResult{Allowed: true}
}

// Candidate is a room considered as a successor.
type Candidate struct {
	ID       string
	JoinCode string
}

// SelectSuccessor picks the successor for a closed room from owner rooms ordered newest first.
// The closed room itself is skipped even if it shows up among the candidates.
func SelectSuccessor(candidates []Candidate, closedRoomID string) (Candidate, bool) {
	for _, c := range candidates {
		if c.ID == "" || c.ID == closedRoomID {
			continue
		}
		return c, true
	}
	return Candidate{}, false
}
