// Package match contains the pure business logic for match lifecycle.
// This is part of the Functional Core - no I/O, only pure functions.
package match

import (
	"fmt"
	"strings"
)

// Status represents the lifecycle status of a match.
type Status string

const (
	StatusSetup     Status = "setup"
	StatusActive    Status = "active"
	StatusFinished  Status = "finished"
	StatusAbandoned Status = "abandoned"
)

// PreTerminalStatuses lists the statuses of a match that can still be played.
// Only matches in one of these states count as a room's active match.
func PreTerminalStatuses() []Status {
	return []Status{StatusSetup, StatusActive}
}

// ParseStatus maps a stored status value to a Status. ok is false for unrecognized values.
func ParseStatus(raw string) (Status, bool) {
	s := Status(strings.TrimSpace(strings.ToLower(raw)))
	switch s {
	case StatusSetup, StatusActive, StatusFinished, StatusAbandoned:
		return s, true
	default:
		return "", false
	}
}

// IsPreTerminal reports whether the match can still be played.
func (s Status) IsPreTerminal() bool {
	return s == StatusSetup || s == StatusActive
}

// IsTerminal reports whether the match is over.
func (s Status) IsTerminal() bool {
	return s == StatusFinished || s == StatusAbandoned
}

// InitialStatus returns the status of a newly created match.
func InitialStatus() Status {
	return StatusSetup
}

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error returns the guard result as an error if not allowed, nil otherwise.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// StartContext provides the context for starting a match in a room.
type StartContext struct {
	JoinCode         string
	RoomStatus       string // open, in_progress, closed
	ActiveMatchID    string // Current pre-terminal match, if any
	RequesterIsOwner bool   // Requester owns the room
}

// CanStartMatch evaluates whether a new match can be started.
// Rule: only the owner starts matches, never in a closed room, and never while another
// match in the same room is still pre-terminal.
func CanStartMatch(ctx StartContext) GuardResult {
	if !ctx.RequesterIsOwner {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("only the owner of room %s can start a match", ctx.JoinCode),
		}
	}
	if ctx.RoomStatus == "closed" {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("room %s is closed", ctx.JoinCode),
		}
	}
	if ctx.ActiveMatchID != "" {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("room %s already has match %s in play", ctx.JoinCode, ctx.ActiveMatchID),
		}
	}
	return GuardResult{Allowed: true}
}

// FinishContext provides the context for ending a match.
type FinishContext struct {
	MatchID string
	Status  Status
	Target  Status
}

// CanFinishMatch evaluates whether a match may move to a terminal status.
func CanFinishMatch(ctx FinishContext) GuardResult {
	if !ctx.Target.IsTerminal() {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("%s is not a terminal match status", ctx.Target),
		}
	}
	if ctx.Status.IsTerminal() {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("match %s is already %s", ctx.MatchID, ctx.Status),
		}
	}
	return GuardResult{Allowed: true}
}
