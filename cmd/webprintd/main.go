package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/gorm"

	"webprint-client/config"
	"webprint-client/internal/app"
	"webprint-client/internal/db"
	"webprint-client/pkg/logging"
)

func main() {
	logging.Setup("webprintd")

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if errors.Is(err, os.ErrNotExist) {
		slog.Warn("configuration file not found, using defaults", "path", configPath)
		cfg = config.Default()
	} else if err != nil {
		slog.Error("failed to load configuration", "path", configPath, "error", err)
		os.Exit(1)
	} else {
		slog.Info("configuration loaded", "path", configPath)
	}

	// Print history is optional; the client works without a database.
	var gormDB *gorm.DB
	if cfg.Database.DSN != "" {
		gormDB, err = db.Init(&cfg.Database)
		if err != nil {
			slog.Error("failed to initialize database, print history is disabled", "error", err)
			gormDB = nil
		}
	}

	a, err := app.New(cfg, gormDB)
	if err != nil {
		slog.Error("failed to build application", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a.Start(ctx)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: a.Router(),
	}

	go func() {
		slog.Info("local view API listening", "port", cfg.Server.Port, "print_api", cfg.API.BaseURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server ListenAndServe", "error", err)
			os.Exit(1)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	slog.Info("shutdown signal received, stopping services")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server Shutdown", "error", err)
	}
	if err := a.Close(shutdownCtx); err != nil {
		slog.Warn("sign-out on shutdown failed", "error", err)
	}

	slog.Info("server gracefully stopped")
}
