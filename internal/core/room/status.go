// Package room contains the pure business logic for room lifecycle and membership rules.
// This is part of the Functional Core - no I/O, only pure functions.
package room

import "strings"

// Status represents the lifecycle status of a room.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusClosed     Status = "closed"

	// StatusUnknown is reported for any stored value outside the three lifecycle states.
	// It must never be used to compute a navigation target.
	StatusUnknown Status = ""
)

// ParseStatus maps a stored status value to a Status.
// Unrecognized values map to StatusUnknown.
func ParseStatus(raw string) Status {
	switch Status(strings.TrimSpace(strings.ToLower(raw))) {
	case StatusOpen:
		return StatusOpen
	case StatusInProgress:
		return StatusInProgress
	case StatusClosed:
		return StatusClosed
	default:
		return StatusUnknown
	}
}

// Known reports whether the status is one of the three lifecycle states.
func (s Status) Known() bool {
	return s == StatusOpen || s == StatusInProgress || s == StatusClosed
}

// rank orders statuses along the lifecycle. Unknown statuses rank below everything.
func (s Status) rank() int {
	switch s {
	case StatusOpen:
		return 1
	case StatusInProgress:
		return 2
	case StatusClosed:
		return 3
	default:
		return 0
	}
}

// InitialStatus returns the status of a newly created room.
func InitialStatus() Status {
	return StatusOpen
}

// NormalizeJoinCode returns the canonical form of a join code: trimmed and uppercased.
func NormalizeJoinCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
