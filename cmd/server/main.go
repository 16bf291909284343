package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"castella/internal/app"
	"castella/internal/config"
	"castella/internal/logging"
)

func main() {
	_ = godotenv.Overload("../.env")
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Overload(".env")
	}

	cfg := config.Load()
	logger, err := logging.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApplication(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to construct application", zap.Error(err))
	}

	go func() {
		if err := application.Start(); err != nil {
			logger.Fatal("server exited with error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	application.Shutdown(shutdownCtx)
}
