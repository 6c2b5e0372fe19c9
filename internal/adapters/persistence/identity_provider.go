// Package persistence holds adapters backed by local workspace state.
package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/example/roomsync/internal/config"
	"github.com/example/roomsync/internal/ports/secondary"
)

// WorkspaceIdentityProvider resolves the signed-in user from an explicit
// override or, failing that, the workspace config file.
type WorkspaceIdentityProvider struct {
	override string
	dir      string
}

// NewWorkspaceIdentityProvider creates a provider reading dir/.roomsync/config.json.
// A non-empty override (typically ROOMSYNC_USER_ID) wins over the file.
func NewWorkspaceIdentityProvider(dir, override string) *WorkspaceIdentityProvider {
	return &WorkspaceIdentityProvider{
		override: strings.TrimSpace(override),
		dir:      dir,
	}
}

// CurrentUserID returns the signed-in user's ID, or "" when the workspace has
// never been initialised.
func (p *WorkspaceIdentityProvider) CurrentUserID(ctx context.Context) (string, error) {
	if p.override != "" {
		return p.override, nil
	}

	cfg, err := config.LoadConfig(p.dir)
	if errors.Is(err, config.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(cfg.UserID), nil
}

// Ensure WorkspaceIdentityProvider implements the interface
var _ secondary.IdentityProvider = (*WorkspaceIdentityProvider)(nil)
