package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/roomsync/internal/wire"
)

// requireUser returns the flag value when set, else the signed-in user.
func requireUser(ctx context.Context, flagValue string) (string, error) {
	if u := strings.TrimSpace(flagValue); u != "" {
		return u, nil
	}
	userID, err := wire.CurrentUserID(ctx)
	if err != nil {
		return "", err
	}
	if userID == "" {
		return "", fmt.Errorf("not signed in: run roomsync init --user <id> or pass --user")
	}
	return userID, nil
}
