package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/example/roomsync/internal/wire"
)

// RoomCmd returns the room command
func RoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Manage rooms",
		Long:  `Create, join, start, close and list rooms. Every change is announced on the change feed.`,
	}

	cmd.AddCommand(roomCreateCmd())
	cmd.AddCommand(roomJoinCmd())
	cmd.AddCommand(roomStartCmd())
	cmd.AddCommand(roomCloseCmd())
	cmd.AddCommand(roomListCmd())

	return cmd
}

func roomCreateCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "create [join-code]",
		Short: "Create a room and join it as owner",
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
			return adapter.CreateRoom(ctx, args[0], user)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "Owner (defaults to the signed-in user)")
	return cmd
}

func roomJoinCmd() *cobra.Command {
	var userID, role string

	cmd := &cobra.Command{
		Use:   "join [join-code]",
		Short: "Join a room by code",
		Long: `Join a room by code. Open rooms accept players and spectators,
rooms in progress accept spectators only.`,
		Args: cobra.ExactArgs(1),
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
			return adapter.JoinRoom(ctx, args[0], user, role)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User joining (defaults to the signed-in user)")
	cmd.Flags().StringVar(&role, "role", "player", "Role: player or spectator")
	return cmd
}

func roomStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start [join-code]",
		Short: "Move a room to in_progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := wire.LobbyAdapter(os.Stdout)
			if err != nil {
				return err
			}
			return adapter.StartRoom(cmd.Context(), args[0])
		},
	}
}

func roomCloseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "close [join-code]",
		Short: "Close a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := wire.LobbyAdapter(os.Stdout)
			if err != nil {
				return err
			}
			return adapter.CloseRoom(cmd.Context(), args[0])
		},
	}
}

func roomListCmd() *cobra.Command {
	var ownerID, status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List rooms",
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := wire.LobbyAdapter(os.Stdout)
			if err != nil {
				return err
			}
			_, err = adapter.ListRooms(cmd.Context(), ownerID, status)
			return err
		},
	}

	cmd.Flags().StringVar(&ownerID, "owner", "", "Filter by owner")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (open, in_progress, closed)")
	return cmd
}
