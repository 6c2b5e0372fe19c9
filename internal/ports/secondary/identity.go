package secondary

import "context"

// IdentityProvider defines the secondary port for resolving the signed-in user.
// The identity is established once by an external auth step and does not change
// for the lifetime of the engine.
type IdentityProvider interface {
	// CurrentUserID returns the signed-in user's ID, or "" if nobody is signed in.
	CurrentUserID(ctx context.Context) (string, error)
}

// Navigator defines the secondary port for the routing layer.
type Navigator interface {
	// Location returns the path of the screen the user is currently on.
	Location() string

	// Replace navigates to path, replacing the current history entry so forced
	// redirects never stack up as back-navigable history.
	Replace(ctx context.Context, path string) error
}
