package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/fleetgrid/battleship-go/internal/dependencies/clock"
	"github.com/fleetgrid/battleship-go/internal/dependencies/random"
	"github.com/fleetgrid/battleship-go/internal/hub"
	"github.com/fleetgrid/battleship-go/internal/registry"
	"github.com/fleetgrid/battleship-go/internal/services/match"
	"github.com/fleetgrid/battleship-go/internal/services/queue"
	"github.com/fleetgrid/battleship-go/internal/services/session"
	"github.com/fleetgrid/battleship-go/internal/storage"
	"github.com/fleetgrid/battleship-go/internal/storage/memory"
	redisstorage "github.com/fleetgrid/battleship-go/internal/storage/redis"
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
	Clock  clock.Clock
	Random random.Random

	// Core components
	Registry        *registry.Registry
	Queue           *queue.Queue
	MatchController *match.Controller
	HubManager      *hub.Manager
	SessionManager  *session.Manager
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
	// SessionConfig controls session lifecycle behavior
	SessionConfig session.Config
}

// New creates a new application with all dependencies wired
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
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	clk := clock.New()
	rnd := random.New()

	return newWithDependencies(store, clk, rnd, cfg.SessionConfig, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, sessionCfg session.Config, logger *slog.Logger) *App {
	reg := registry.New(logger)
	q := queue.New(logger)
	matchController := match.NewController(store, clk, rnd, logger)
	hubManager := hub.NewManager(logger)
	sessionManager := session.NewManager(sessionCfg, reg, q, matchController, hubManager, store, clk, logger)

	return &App{
		Storage:         store,
		Clock:           clk,
		Random:          rnd,
		Registry:        reg,
		Queue:           q,
		MatchController: matchController,
		HubManager:      hubManager,
		SessionManager:  sessionManager,
	}
}
