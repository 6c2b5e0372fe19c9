package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/roomsync/internal/app"
	"github.com/example/roomsync/internal/core/effects"
	"github.com/example/roomsync/internal/core/navigation"
	"github.com/example/roomsync/internal/wire"
)

// StatusCmd returns the status command
func StatusCmd() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which room you currently belong to",
		Long: `Run one reconciliation pass and print the session context.

With --at, also show where a client sitting on that screen would be sent.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			adapter, err := wire.SessionAdapter(os.Stdout)
			if err != nil {
				return err
			}
			sc, err := adapter.Status(ctx)
			if err != nil {
				return err
			}

			if at == "" {
				return nil
			}
			switch eff := navigation.PlanRedirect(app.SnapshotOf(sc), at, "").(type) {
			case effects.NavigateEffect:
				fmt.Printf("Redirect: %s → %s\n", navigation.CleanLocation(at), eff.Path)
			case effects.NoEffect:
				fmt.Printf("Redirect: none (%s)\n", eff.Reason)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "Screen path to evaluate the redirect from")

	return cmd
}
