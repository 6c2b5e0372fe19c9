package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/roomsync/internal/db"
	"github.com/example/roomsync/internal/wire"
)

// SeedCmd returns the seed command
func SeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "seed",
		Short:  "Load demo rooms, memberships and matches",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := wire.Database()
			if err != nil {
				return err
			}
			if err := db.SeedFixtures(database); err != nil {
				return fmt.Errorf("failed to seed fixtures: %w", err)
			}
			fmt.Println("✓ Demo data loaded (rooms OLDR, ABCD, WXYZ)")
			return nil
		},
	}
}
