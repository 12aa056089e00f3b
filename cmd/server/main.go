// Package main is the entry point for the roadmap dashboard.
// It fetches project records from a Notion database, groups them by fiscal
// quarter, orders each quarter by workflow stage, and serves the result as
// an HTML page and a JSON API.
//
// The application follows the same layering throughout:
// - Dependency injection via DI container
// - Repository pattern for the cache database
// - Service layer for the roadmap pipeline
// - HTTP handlers for the page and API endpoints
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/roadmap/internal/config"
	"github.com/aristath/roadmap/internal/di"
	"github.com/aristath/roadmap/internal/server"
	"github.com/aristath/roadmap/pkg/logger"
)

// main is the application entry point. It orchestrates the startup sequence:
// 1. Loads configuration from environment variables (.env file supported)
// 2. Initializes logging system
// 3. Wires all dependencies via DI container (cache database, Notion client, roadmap service)
// 4. Starts the scheduler (cache warm-up, expired entry cleanup, WAL checkpoints)
// 5. Warms the roadmap cache in the background
// 6. Starts HTTP server for the dashboard and API
// 7. Waits for shutdown signal and performs graceful shutdown
func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		// Use fallback logger if config fails
		// This ensures we can log the configuration error even if config loading fails
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger with config level
	// Pretty console output in dev mode, JSON lines otherwise
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Str("data_dir", cfg.DataDir).
		Bool("private_view", cfg.Roadmap.AllowPrivate).
		Bool("only_public", cfg.Roadmap.OnlyPublic).
		Dur("cache_ttl", cfg.Roadmap.CacheTTL).
		Msg("Starting roadmap")

	// Wire all dependencies using DI container
	// - cache.db is opened and migrated first
	// - The client data repository is created on top of it
	// - The stage and period tables are built once and never change at runtime
	// - The roadmap service, its cache and the HTTP handler are created last
	container, jobs, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer container.Close()

	// Start the scheduler
	// Jobs run on cron schedules; a failing job is logged and retried on its next tick.
	container.Scheduler.Start()

	// Warm the cache so the first visitor does not wait on Notion
	// A failure here is not fatal: the page fetches on demand.
	go func() {
		if err := container.Scheduler.RunNow(jobs.RoadmapRefresh); err != nil {
			log.Warn().Err(err).Msg("Initial roadmap warm-up failed")
		}
	}()

	// Start HTTP server
	srv := server.New(server.Config{
		Log:       log,
		Port:      cfg.Port,
		DevMode:   cfg.DevMode,
		Container: container,
		Jobs:      jobs,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for interrupt signal
	// The application blocks here until it receives SIGINT (Ctrl+C) or SIGTERM (kill command).
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	// The HTTP server is given up to 10 seconds to finish processing in-flight requests.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Stop the scheduler after the server so no new manual triggers arrive
	// Waits for a running refresh to finish.
	container.Scheduler.Stop()

	log.Info().Msg("Server stopped")
}

// All dependency wiring is handled by di.Wire()
// The DI container initializes:
//   - internal/di/databases.go (cache database)
//   - internal/di/services.go (repositories, Notion client, roadmap pipeline)
//   - internal/di/jobs.go (scheduled jobs)
//   - internal/di/wire.go (main orchestration)
