package room

import "strings"

// Role is the part a user plays in a room.
type Role string

const (
	RoleOwner     Role = "owner"
	RolePlayer    Role = "player"
	RoleSpectator Role = "spectator"
)

// ParseRole maps a stored role value to a Role.
// Unrecognized values map to RolePlayer, the least privileged participating role.
func ParseRole(raw string) Role {
	switch Role(strings.TrimSpace(strings.ToLower(raw))) {
	case RoleOwner:
		return RoleOwner
	case RoleSpectator:
		return RoleSpectator
	default:
		return RolePlayer
	}
}

// RejoinRole returns the role a user takes when following their room to its successor.
// Spectators stay spectators; owners and players rejoin as players because the
// successor room already has its own owner.
func RejoinRole(prior Role) Role {
	if prior == RoleSpectator {
		return RoleSpectator
	}
	return RolePlayer
}
