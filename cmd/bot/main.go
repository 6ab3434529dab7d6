package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"activitybot/internal/config"
	"activitybot/internal/discord"
	"activitybot/internal/store"
	"activitybot/internal/tracker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	st, err := newStore(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize store", zap.Error(err))
	}
	defer st.Close()

	tr := tracker.New(st, logger)

	bot, err := discord.New(cfg.DiscordToken, tr, logger)
	if err != nil {
		logger.Fatal("Failed to create Discord bot", zap.Error(err))
	}

	if err := bot.Start(); err != nil {
		logger.Fatal("Failed to start bot", zap.Error(err))
	}
	defer bot.Stop()

	// Wait for interrupt signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	logger.Info("Shutting down bot",
		zap.Int("open_voice_sessions", tr.OpenSessions()))
}

func newLogger(level string) (*zap.Logger, error) {
	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zapLevel)
	return zcfg.Build()
}

func newStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.Store, error) {
	switch cfg.StoreDriver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.DatabaseDSN, logger)
	case "redis":
		return store.NewRedis(ctx, cfg.RedisAddr)
	case "memory":
		logger.Warn("using in-memory store, counters are lost on restart")
		return store.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
