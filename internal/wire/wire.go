// Package wire provides dependency injection for the roomsync engine.
// It creates singleton services with lazy initialization.
package wire

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	cliadapter "github.com/example/roomsync/internal/adapters/cli"
	"github.com/example/roomsync/internal/adapters/memfeed"
	"github.com/example/roomsync/internal/adapters/natsfeed"
	"github.com/example/roomsync/internal/adapters/persistence"
	"github.com/example/roomsync/internal/adapters/sqlite"
	"github.com/example/roomsync/internal/app"
	"github.com/example/roomsync/internal/config"
	"github.com/example/roomsync/internal/db"
	"github.com/example/roomsync/internal/logging"
	"github.com/example/roomsync/internal/ports/primary"
	"github.com/example/roomsync/internal/ports/secondary"
	"github.com/example/roomsync/internal/telemetry"
)

const serviceName = "roomsync"

// changeFeed is a transport that both delivers and announces row changes.
type changeFeed interface {
	secondary.ChangeFeed
	secondary.ChangePublisher
}

var (
	settings     config.Settings
	logger       *zap.Logger
	database     *sql.DB
	feed         changeFeed
	identity     secondary.IdentityProvider
	workspaceDir string

	membershipRepo *sqlite.MembershipRepository
	roomRepo       *sqlite.RoomRepository
	matchRepo      *sqlite.MatchRepository

	lobbyService primary.LobbyService
	store        *app.ContextStore
	reconciler   *app.ReconcilerImpl

	closers  []func(context.Context) error
	trackers []*app.SessionTrackerImpl
	trackMu  sync.Mutex

	initErr error
	once    sync.Once
)

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	initErr = buildServices()
}

func buildServices() error {
	var err error
	settings, err = config.LoadSettings()
	if err != nil {
		return err
	}

	logger, err = logging.New(settings.LogLevel, settings.LogFormat)
	if err != nil {
		return err
	}

	shutdownTracing, err := telemetry.Setup(context.Background(), telemetry.Options{
		ServiceName: serviceName,
		Endpoint:    settings.OTelEndpoint,
		Enabled:     settings.OTelEnabled,
	})
	if err != nil {
		logger.Warn("tracing disabled", zap.Error(err))
	}
	closers = append(closers, shutdownTracing)

	workspaceDir, err = os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to resolve workspace: %w", err)
	}
	identity = persistence.NewWorkspaceIdentityProvider(workspaceDir, settings.UserID)

	// Get database connection
	path := settings.DBPath
	if path == "" {
		if path, err = db.DefaultPath(); err != nil {
			return err
		}
	}
	database, err = db.Open(path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	closers = append(closers, func(context.Context) error { return database.Close() })

	feed, err = openFeed()
	if err != nil {
		return err
	}

	// Create repository adapters (secondary ports) - sqlite adapters with injected DB
	membershipRepo = sqlite.NewMembershipRepository(database)
	roomRepo = sqlite.NewRoomRepository(database)
	matchRepo = sqlite.NewMatchRepository(database)

	// Create services (primary ports implementation)
	lobbyService = app.NewLobbyService(roomRepo, membershipRepo, matchRepo, feed, logger.Named("lobby"))

	store = app.NewContextStore()
	reconciler = app.NewReconciler(
		identity,
		app.NewMembershipResolver(membershipRepo),
		app.NewRoomStateFetcher(roomRepo),
		app.NewActiveMatchFetcher(matchRepo),
		app.NewSuccessionResolver(roomRepo, membershipRepo, settings.SuccessionLookahead, logger.Named("succession")),
		store,
		app.ReconcilerConfig{MaxSuccessionHops: settings.MaxSuccessionHops},
		logger.Named("reconciler"),
	)
	return nil
}

func openFeed() (changeFeed, error) {
	if settings.Feed != config.FeedNATS {
		return memfeed.NewHub(logger.Named("feed")), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	nc, err := natsfeed.Connect(ctx, natsfeed.ConnectOptions{
		URL:         settings.NATSURL,
		Name:        serviceName,
		Attempts:    settings.NATSConnectRetries,
		Wait:        2 * time.Second,
		OnReconnect: triggerTrackers,
	}, logger.Named("nats"))
	if err != nil {
		return nil, err
	}
	closers = append(closers, func(context.Context) error {
		err := nc.Drain()
		if errors.Is(err, nats.ErrConnectionClosed) {
			return nil
		}
		return err
	})
	return natsfeed.New(nc, settings.NATSSubjectPrefix, logger.Named("feed")), nil
}

// triggerTrackers requests a fresh pass from every tracker, since changes
// published while the connection was down never arrive.
func triggerTrackers() {
	trackMu.Lock()
	defer trackMu.Unlock()
	for _, t := range trackers {
		t.Trigger()
	}
}

// Init initializes the services, returning the first error encountered.
func Init() error {
	once.Do(initServices)
	return initErr
}

// Settings returns the environment settings.
func Settings() config.Settings {
	once.Do(initServices)
	return settings
}

// Logger returns the process logger. It is a no-op logger until Init succeeds.
func Logger() *zap.Logger {
	once.Do(initServices)
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// WorkspaceDir returns the directory holding the workspace config.
func WorkspaceDir() string {
	once.Do(initServices)
	return workspaceDir
}

// Database returns the shared database handle.
func Database() (*sql.DB, error) {
	if err := Init(); err != nil {
		return nil, err
	}
	return database, nil
}

// LobbyService returns the singleton LobbyService instance.
func LobbyService() (primary.LobbyService, error) {
	if err := Init(); err != nil {
		return nil, err
	}
	return lobbyService, nil
}

// Reconciler returns the singleton Reconciler instance.
func Reconciler() (primary.Reconciler, error) {
	if err := Init(); err != nil {
		return nil, err
	}
	return reconciler, nil
}

// NewSessionTracker builds a tracker that drives the given navigator.
// A nil navigator tracks the context without forcing navigation.
func NewSessionTracker(navigator secondary.Navigator) (*app.SessionTrackerImpl, error) {
	if err := Init(); err != nil {
		return nil, err
	}

	var guard *app.NavigationGuard
	if navigator != nil {
		executor := app.NewEffectExecutor(navigator, logger.Named("effects"))
		guard = app.NewNavigationGuard(navigator, executor, logger.Named("guard"))
	}

	tracker := app.NewSessionTracker(
		identity,
		feed,
		reconciler,
		guard,
		store,
		app.TrackerConfig{PollInterval: settings.PollInterval},
		logger.Named("tracker"),
	)

	trackMu.Lock()
	trackers = append(trackers, tracker)
	trackMu.Unlock()
	return tracker, nil
}

// LobbyAdapter returns a new LobbyAdapter writing to out.
// Each call creates a new adapter (adapters are stateless translators).
func LobbyAdapter(out io.Writer) (*cliadapter.LobbyAdapter, error) {
	svc, err := LobbyService()
	if err != nil {
		return nil, err
	}
	return cliadapter.NewLobbyAdapter(svc, out), nil
}

// SessionAdapter returns a new SessionAdapter writing to out.
func SessionAdapter(out io.Writer) (*cliadapter.SessionAdapter, error) {
	rec, err := Reconciler()
	if err != nil {
		return nil, err
	}
	return cliadapter.NewSessionAdapter(rec, out), nil
}

// CurrentUserID resolves the signed-in user.
func CurrentUserID(ctx context.Context) (string, error) {
	if err := Init(); err != nil {
		return "", err
	}
	return identity.CurrentUserID(ctx)
}

// Shutdown releases the feed, the database and the tracer provider, newest first.
func Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	closers = nil
	if logger != nil {
		_ = logger.Sync()
	}
	return errors.Join(errs...)
}
