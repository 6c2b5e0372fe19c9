package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/roomsync/internal/config"
	"github.com/example/roomsync/internal/wire"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Sign in and initialize the roomsync database",
		Long: `Record the signed-in user in .roomsync/config.json in the current directory
and create the database schema.

Examples:
  roomsync init --user alice
  ROOMSYNC_DB_PATH=/tmp/rooms.db roomsync init --user bob`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}

			cfg, err := initWorkspace(dir, userID)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Signed in as %s (%s)\n", cfg.UserID, config.Path(dir))

			if _, err := wire.Database(); err != nil {
				return err
			}
			fmt.Println("✓ Database initialized successfully")
			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  roomsync room create ABCD")
			fmt.Println("  roomsync watch")
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User ID to sign in as (required)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

// initWorkspace writes the signed-in user into the workspace config, keeping
// the last known location when the config already exists.
func initWorkspace(dir, userID string) (*config.Config, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("user ID cannot be empty")
	}

	cfg, err := config.LoadConfig(dir)
	if errors.Is(err, config.ErrNotFound) {
		cfg = &config.Config{}
	} else if err != nil {
		return nil, err
	}

	if cfg.UserID != userID {
		cfg.Location = ""
	}
	cfg.UserID = userID
	if err := config.SaveConfig(dir, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
