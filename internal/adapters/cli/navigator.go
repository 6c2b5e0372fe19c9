package cli

import (
	"context"
	"sync"

	"github.com/example/roomsync/internal/core/navigation"
	"github.com/example/roomsync/internal/ports/secondary"
)

// LocationSaver persists the current location, e.g. into the workspace config.
type LocationSaver func(path string) error

// TerminalNavigator is the navigator for the terminal client. The "screen" is a
// path held in memory and announced through the session adapter on every replace.
type TerminalNavigator struct {
	mu       sync.Mutex
	location string
	render   *SessionAdapter
	save     LocationSaver
}

// NewTerminalNavigator creates a navigator starting at location. render and save
// may be nil.
func NewTerminalNavigator(location string, render *SessionAdapter, save LocationSaver) *TerminalNavigator {
	return &TerminalNavigator{
		location: navigation.CleanLocation(location),
		render:   render,
		save:     save,
	}
}

// Location returns the current screen path.
func (n *TerminalNavigator) Location() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.location
}

// Replace moves to path. There is no history, so replacing is all a terminal can do.
func (n *TerminalNavigator) Replace(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n.mu.Lock()
	from := n.location
	n.location = navigation.CleanLocation(path)
	to := n.location
	n.mu.Unlock()

	if n.render != nil {
		n.render.RenderRedirect(from, to)
	}
	if n.save != nil {
		return n.save(to)
	}
	return nil
}

var _ secondary.Navigator = (*TerminalNavigator)(nil)
