package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cliadapter "github.com/example/roomsync/internal/adapters/cli"
	"github.com/example/roomsync/internal/config"
	"github.com/example/roomsync/internal/wire"
)

// WatchCmd returns the watch command
func WatchCmd() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow your session and get redirected as rooms change",
		Long: `Keep the session context in sync from change notifications and polling,
printing every change and every forced redirect until interrupted.

The current screen starts at --at, or the location saved by the last watch.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			dir := wire.WorkspaceDir()
			if at == "" {
				at = savedLocation(dir)
			}

			adapter, err := wire.SessionAdapter(os.Stdout)
			if err != nil {
				return err
			}
			navigator := cliadapter.NewTerminalNavigator(at, adapter, func(path string) error {
				return saveLocation(dir, path)
			})
			tracker, err := wire.NewSessionTracker(navigator)
			if err != nil {
				return err
			}

			if err := tracker.Start(ctx); err != nil {
				return err
			}
			if !tracker.Active() {
				fmt.Println("Not signed in. Run: roomsync init --user <id>")
				return nil
			}
			fmt.Printf("Watching from %s (Ctrl-C to stop)\n", navigator.Location())

			for sc := range tracker.Watch(ctx) {
				adapter.Render(sc)
			}

			if err := tracker.Stop(); err != nil {
				wire.Logger().Warn("tracker shutdown", zap.Error(err))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "Screen path the client starts on")

	return cmd
}

func savedLocation(dir string) string {
	cfg, err := config.LoadConfig(dir)
	if err != nil {
		return ""
	}
	return cfg.Location
}

func saveLocation(dir, path string) error {
	cfg, err := config.LoadConfig(dir)
	if errors.Is(err, config.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	cfg.Location = path
	return config.SaveConfig(dir, cfg)
}
