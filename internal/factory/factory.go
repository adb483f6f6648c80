package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mcoot/roomhub/internal/api"
	"github.com/mcoot/roomhub/internal/dependencies/clock"
	"github.com/mcoot/roomhub/internal/dependencies/identity"
	"github.com/mcoot/roomhub/internal/dependencies/random"
	"github.com/mcoot/roomhub/internal/services/coordinator"
	"github.com/mcoot/roomhub/internal/services/game"
	"github.com/mcoot/roomhub/internal/services/registry"
	"github.com/mcoot/roomhub/internal/services/room"
	"github.com/mcoot/roomhub/internal/services/signaling"
	"github.com/mcoot/roomhub/internal/storage"
	"github.com/mcoot/roomhub/internal/storage/memory"
	redisstorage "github.com/mcoot/roomhub/internal/storage/redis"
	"github.com/mcoot/roomhub/internal/web/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock    clock.Clock
	Random   random.Random
	Identity identity.Source

	// Services
	Registry    *registry.Registry
	Rooms       *room.Store
	Relay       *signaling.Relay
	Games       *game.Controller
	Coordinator *coordinator.Coordinator

	// Transport
	WebSocket *ws.Handler
	Router    http.Handler
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// WebSocket holds transport settings; zero value means ws.DefaultConfig()
	WebSocket ws.Config
}

// New creates a new application with all dependencies wired. Any rooms
// left in storage by a previous process are dropped, since the identities
// they reference died with it.
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Clear(ctx); err != nil {
		return nil, fmt.Errorf("clear stale rooms: %w", err)
	}

	wsCfg := cfg.WebSocket
	if wsCfg == (ws.Config{}) {
		wsCfg = ws.DefaultConfig()
	}

	return newWithDependencies(store, clock.New(), random.New(), identity.New(), wsCfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	ids identity.Source,
	wsCfg ws.Config,
	logger *slog.Logger,
) *App {
	reg := registry.New(ids, clk, logger)
	rooms := room.NewStore(store, clk, rnd, logger)
	relay := signaling.New(reg, logger)
	games := game.NewController(rooms, logger, game.DefaultVariants()...)
	coord := coordinator.New(reg, rooms, relay, games, clk, logger)
	wsHandler := ws.NewHandler(coord, wsCfg, logger)

	router := api.NewRouter(api.RouterConfig{
		Logger:        logger,
		Rooms:         rooms,
		Stats:         coord,
		WebSocket:     wsHandler,
		AllowedOrigin: wsCfg.AllowedOrigin,
	})

	return &App{
		Storage:     store,
		Clock:       clk,
		Random:      rnd,
		Identity:    ids,
		Registry:    reg,
		Rooms:       rooms,
		Relay:       relay,
		Games:       games,
		Coordinator: coord,
		WebSocket:   wsHandler,
		Router:      router,
	}
}

// Close releases storage resources
func (a *App) Close() error {
	if c, ok := a.Storage.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
