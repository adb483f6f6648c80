package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mcoot/roomhub/internal/api"
	"github.com/mcoot/roomhub/internal/factory"
	redisstorage "github.com/mcoot/roomhub/internal/storage/redis"
	"github.com/mcoot/roomhub/internal/web/ws"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	envErr := godotenv.Load()

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(os.Getenv("LOG_LEVEL")),
	}))
	slog.SetDefault(logger)

	if envErr != nil {
		logger.Debug("no .env file loaded, using process environment")
	}

	cfg, serverCfg, err := configFromEnv(logger)
	if err != nil {
		return err
	}

	app, err := factory.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer func() { _ = app.Close() }()

	server := api.NewServer(app.Router, serverCfg, logger)
	server.RegisterOnShutdown(app.WebSocket.CloseAll)

	ln, err := server.Listen()
	if err != nil {
		return err
	}
	logger.Info("server configured",
		slog.String("addr", ln.Addr().String()),
		slog.String("storage", cfg.StorageType),
		slog.String("allowed_origin", cfg.WebSocket.AllowedOrigin))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, ln); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// configFromEnv builds factory and server configuration from environment
func configFromEnv(logger *slog.Logger) (factory.Config, api.ServerConfig, error) {
	serverCfg := api.DefaultServerConfig()
	serverCfg.Host = os.Getenv("HOST")
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil || p <= 0 || p > 65535 {
			return factory.Config{}, serverCfg, fmt.Errorf("invalid PORT %q", port)
		}
		serverCfg.Port = p
	}

	wsCfg := ws.DefaultConfig()
	if origin := os.Getenv("ALLOWED_ORIGIN"); origin != "" {
		wsCfg.AllowedOrigin = origin
	}
	if limit := os.Getenv("MAX_MESSAGE_BYTES"); limit != "" {
		n, err := strconv.ParseInt(limit, 10, 64)
		if err != nil || n <= 0 {
			return factory.Config{}, serverCfg, fmt.Errorf("invalid MAX_MESSAGE_BYTES %q", limit)
		}
		wsCfg.MaxMessageBytes = n
	}

	cfg := factory.Config{
		Logger:      logger,
		StorageType: os.Getenv("STORAGE_TYPE"),
		WebSocket:   wsCfg,
	}
	if cfg.StorageType == "" {
		cfg.StorageType = factory.StorageTypeMemory
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			return factory.Config{}, serverCfg, errors.New("REDIS_URL required when STORAGE_TYPE=redis")
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		if prefix := os.Getenv("REDIS_PREFIX"); prefix != "" {
			redisCfg.Prefix = prefix
		}
		cfg.RedisConfig = &redisCfg
	}

	return cfg, serverCfg, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
