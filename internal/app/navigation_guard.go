package app

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/example/roomsync/internal/core/effects"
	"github.com/example/roomsync/internal/core/navigation"
	"github.com/example/roomsync/internal/core/room"
	"github.com/example/roomsync/internal/ports/primary"
	"github.com/example/roomsync/internal/ports/secondary"
)

// NavigationGuard turns session contexts into forced redirects, issuing at most one
// redirect per distinct signature.
type NavigationGuard struct {
	mu            sync.Mutex
	navigator     secondary.Navigator
	executor      EffectExecutor
	lastSignature string
	logger        *zap.Logger
}

// NewNavigationGuard creates a new NavigationGuard.
func NewNavigationGuard(navigator secondary.Navigator, executor EffectExecutor, logger *zap.Logger) *NavigationGuard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NavigationGuard{
		navigator: navigator,
		executor:  executor,
		logger:    logger,
	}
}

// Evaluate decides on a redirect for the context at the navigator's current location and
// executes it. It returns the effect that was planned.
func (g *NavigationGuard) Evaluate(ctx context.Context, sc primary.SessionContext) (effects.Effect, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	location := g.navigator.Location()
	eff := navigation.PlanRedirect(SnapshotOf(sc), location, g.lastSignature)

	nav, ok := eff.(effects.NavigateEffect)
	if !ok {
		return eff, g.executor.Execute(ctx, []effects.Effect{eff})
	}

	previous := g.lastSignature
	g.lastSignature = nav.Signature
	if err := g.executor.Execute(ctx, []effects.Effect{eff}); err != nil {
		// Let the next trigger try again.
		g.lastSignature = previous
		g.logger.Warn("redirect failed", zap.String("from", location), zap.String("to", nav.Path), zap.Error(err))
		return eff, err
	}

	g.logger.Info("redirected", zap.String("from", location), zap.String("to", nav.Path))
	return eff, nil
}

// LastSignature returns the signature of the last redirect issued.
func (g *NavigationGuard) LastSignature() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastSignature
}

// SnapshotOf converts a session context into the routing rules' view of it.
func SnapshotOf(sc primary.SessionContext) navigation.Snapshot {
	return navigation.Snapshot{
		Active:   sc.IsActive(),
		Status:   room.ParseStatus(sc.RoomStatus),
		JoinCode: sc.JoinCode,
		MatchID:  sc.MatchID,
	}
}
