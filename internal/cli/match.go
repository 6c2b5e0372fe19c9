package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/example/roomsync/internal/wire"
)

// MatchCmd returns the match command
func MatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Start and finish matches",
	}

	cmd.AddCommand(matchStartCmd())
	cmd.AddCommand(matchFinishCmd())

	return cmd
}

func matchStartCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "start [join-code]",
		Short: "Start a match in a room you own",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			user, err := requireUser(ctx, userID)
			if err != nil {
				return err
			}
			adapter, err := wire.LobbyAdapter(os.Stdout)
			if err != nil {
				return err
			}
			return adapter.StartMatch(ctx, args[0], user)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "Requester (defaults to the signed-in user)")
	return cmd
}

func matchFinishCmd() *cobra.Command {
	var abandon bool

	cmd := &cobra.Command{
		Use:   "finish [match-id]",
		Short: "Finish a match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := wire.LobbyAdapter(os.Stdout)
			if err != nil {
				return err
			}
			return adapter.FinishMatch(cmd.Context(), args[0], abandon)
		},
	}

	cmd.Flags().BoolVar(&abandon, "abandon", false, "Mark the match abandoned instead of finished")
	return cmd
}
