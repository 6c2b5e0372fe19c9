// Package navigation contains the pure routing rules that map a session context and the
// user's current location to a forced redirect, if any.
// This is part of the Functional Core - no I/O, only pure functions.
package navigation

import (
	"net/url"
	"strings"
)

// RootPath is the application root. Manual returns to it are always honored.
const RootPath = "/"

const (
	lobbyPrefix = "/lobby/"
	matchPrefix = "/match/"
)

// Screens that belong to a running match. A user on one of them is never pulled back to
// the lobby while the room still reports open.
var matchScreenPrefixes = []string{"/match", "/game"}

// Account-type screens are never redirected away from.
var accountScreenPrefixes = []string{"/account", "/settings", "/profile", "/login", "/signup"}

// RoomPath returns the lobby screen for a join code.
func RoomPath(joinCode string) string {
	return lobbyPrefix + url.PathEscape(joinCode)
}

// MatchPath returns the match screen for a match id.
func MatchPath(matchID string) string {
	return matchPrefix + url.PathEscape(matchID)
}

// CleanLocation strips query, fragment and trailing slashes so locations compare by path.
// An empty location is the root.
func CleanLocation(location string) string {
	loc := strings.TrimSpace(location)
	if i := strings.IndexAny(loc, "?#"); i >= 0 {
		loc = loc[:i]
	}
	loc = strings.TrimRight(loc, "/")
	if loc == "" {
		return RootPath
	}
	if !strings.HasPrefix(loc, "/") {
		loc = "/" + loc
	}
	return loc
}

// IsRoot reports whether the location is the application root.
func IsRoot(location string) bool {
	return CleanLocation(location) == RootPath
}

// IsMatchScreen reports whether the location is part of a match.
func IsMatchScreen(location string) bool {
	return hasScreenPrefix(CleanLocation(location), matchScreenPrefixes)
}

// IsAccountScreen reports whether the location is an account or settings screen.
func IsAccountScreen(location string) bool {
	return hasScreenPrefix(CleanLocation(location), accountScreenPrefixes)
}

// hasScreenPrefix matches whole path segments: "/match" and "/match/1" match "/match",
// "/matchmaking" does not.
func hasScreenPrefix(loc string, prefixes []string) bool {
	for _, p := range prefixes {
		if loc == p || strings.HasPrefix(loc, p+"/") {
			return true
		}
	}
	return false
}
