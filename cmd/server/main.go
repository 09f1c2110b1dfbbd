package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fleetgrid/battleship-go/internal/api"
	"github.com/fleetgrid/battleship-go/internal/factory"
	"github.com/fleetgrid/battleship-go/internal/services/session"
	redisstorage "github.com/fleetgrid/battleship-go/internal/storage/redis"
	"github.com/fleetgrid/battleship-go/internal/transport"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Build factory config from environment
	cfg := factory.Config{
		Logger:      logger,
		StorageType: os.Getenv("STORAGE_TYPE"),
		SessionConfig: session.Config{
			AbandonTimeout: envDuration(logger, "ABANDON_TIMEOUT", 60*time.Second),
		},
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			logger.Error("REDIS_URL required when STORAGE_TYPE=redis")
			os.Exit(1)
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		cfg.RedisConfig = &redisCfg
	}

	// Create application factory
	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Game server on the TCP port
	gameServer := transport.NewServer(transport.Config{
		Addr:        envString("TCP_ADDR", ":5000"),
		IdleTimeout: envDuration(logger, "IDLE_TIMEOUT", 10*time.Minute),
	}, app.SessionManager, logger)

	if err := gameServer.Start(context.Background()); err != nil {
		logger.Error("failed to start game server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Status API, metrics, and websocket bridge on the HTTP port
	router := api.NewRouter(api.RouterConfig{
		Logger:    logger,
		Storage:   app.Storage,
		Sessions:  app.SessionManager,
		Registry:  app.Registry,
		Queue:     app.Queue,
		Matches:   app.MatchController,
		WSHandler: transport.NewWSHandler(app.SessionManager, logger),
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = os.Getenv("HTTP_HOST")
	if port := os.Getenv("HTTP_PORT"); port != "" {
		parsed, err := strconv.Atoi(port)
		if err != nil {
			logger.Error("invalid HTTP_PORT", slog.String("value", port))
			os.Exit(1)
		}
		serverConfig.Port = parsed
	}
	httpServer := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Start HTTP server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	logger.Info("server started",
		slog.String("game_addr", gameServer.Addr().String()),
		slog.String("http_addr", httpServer.Addr()),
	)

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := gameServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("game server shutdown error", slog.String("error", err.Error()))
		}
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}

func envString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func envDuration(logger *slog.Logger, key string, defaultVal time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		logger.Warn("invalid duration, using default",
			slog.String("key", key),
			slog.String("value", raw),
		)
		return defaultVal
	}
	return parsed
}
