package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/roomsync/internal/cli"
	"github.com/example/roomsync/internal/version"
	"github.com/example/roomsync/internal/wire"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "roomsync",
		Short:   "roomsync - keep a player in the room they belong to",
		Version: version.String(),
		Long: `roomsync derives which room a signed-in user currently belongs to from
memberships, rooms and matches, follows room succession when a room is
closed, and redirects the client when the answer changes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.StatusCmd())
	rootCmd.AddCommand(cli.WatchCmd())

	// Entity commands
	rootCmd.AddCommand(cli.RoomCmd())
	rootCmd.AddCommand(cli.MatchCmd())

	// Developer tools
	rootCmd.AddCommand(cli.SeedCmd())

	err := rootCmd.Execute()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if shutdownErr := wire.Shutdown(ctx); shutdownErr != nil {
		fmt.Fprintln(os.Stderr, shutdownErr)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
