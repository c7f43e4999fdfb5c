package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"vibe-stock-dashboard/internal/logger"
	"vibe-stock-dashboard/internal/store"
	"vibe-stock-dashboard/internal/trace"
)

// initializeSystem initializes logger and tracer
func initializeSystem(ctx context.Context) error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := trace.Init(ctx, trace.ConfigFromEnv()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

// loadConfig reads CONFIG_PATH, defaulting to config.yaml
func loadConfig(ctx context.Context) (*store.Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

// newAccessLogger builds the zap logger used for HTTP access lines.
func newAccessLogger() (*zap.Logger, error) {
	if os.Getenv("LOG_FORMAT") == "text" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
