package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/example/roomsync/internal/core/navigation"
	"github.com/example/roomsync/internal/ports/primary"
)

// SessionAdapter renders session contexts for the terminal.
type SessionAdapter struct {
	reconciler primary.Reconciler
	out        io.Writer
}

// NewSessionAdapter creates a new SessionAdapter.
func NewSessionAdapter(reconciler primary.Reconciler, out io.Writer) *SessionAdapter {
	return &SessionAdapter{
		reconciler: reconciler,
		out:        out,
	}
}

// Status runs one reconciliation pass and prints where the user belongs.
func (a *SessionAdapter) Status(ctx context.Context) (primary.SessionContext, error) {
	sc, err := a.reconciler.Reconcile(ctx)
	if err != nil {
		return sc, fmt.Errorf("failed to resolve session: %w", err)
	}
	a.Render(sc)
	return sc, nil
}

// Render prints a session context.
func (a *SessionAdapter) Render(sc primary.SessionContext) {
	switch sc.State {
	case primary.SessionActive:
		fmt.Fprintf(a.out, "Room:   %s (%s)\n", color.New(color.Bold).Sprint(sc.JoinCode), sc.RoomID)
		fmt.Fprintf(a.out, "Status: %s\n", statusColor(sc.RoomStatus))
		if sc.MatchID != "" {
			fmt.Fprintf(a.out, "Match:  %s\n", sc.MatchID)
		}
	case primary.SessionNone:
		fmt.Fprintln(a.out, "Not in a room")
	default:
		fmt.Fprintln(a.out, color.New(color.FgYellow).Sprint("Resolving..."))
	}
}

// RenderRedirect prints a forced navigation.
func (a *SessionAdapter) RenderRedirect(from, to string) {
	fmt.Fprintf(a.out, "%s %s → %s\n", color.New(color.FgCyan).Sprint("redirect"), navigation.CleanLocation(from), to)
}

func statusColor(status string) string {
	switch status {
	case "open":
		return color.New(color.FgGreen).Sprint(status)
	case "in_progress":
		return color.New(color.FgBlue).Sprint(status)
	case "closed":
		return color.New(color.FgRed).Sprint(status)
	default:
		return status
	}
}
