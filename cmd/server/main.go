// ShapeSync - Real-Time Shape Collection Synchronization
// Copyright 2026 ShapeSync contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shapesync/shapesync

// Package main is the entry point for the ShapeSync server.
//
// ShapeSync keeps a shared collection of shapes synchronized across
// websocket subscribers in real time. Mutations arrive over a REST API,
// are validated and applied to the in-memory store, and the resulting
// events fan out to every connected session.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: load settings from environment variables and config files (Koanf v2)
//  2. Store: the authoritative in-memory shape collection
//  3. Broadcast Hub: per-session queues for real-time fan-out
//  4. Mutation Gateway: the single-writer funnel ordering store updates and broadcasts
//  5. HTTP Server: REST API, websocket endpoint, health probes, Prometheus metrics
//
// The hub and HTTP server run under a suture supervisor tree for
// automatic restart and graceful shutdown.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (HTTP_PORT, LOG_LEVEL, WS_SESSION_BUFFER, ...)
//   - Config file (config.yaml)
//   - Built-in defaults
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete
//   - Closes every subscriber session
//
// # Example Usage
//
//	export HTTP_PORT=8000
//	export CORS_ORIGINS=https://app.example.com
//	./shapesync
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shapesync/shapesync/internal/api"
	"github.com/shapesync/shapesync/internal/config"
	"github.com/shapesync/shapesync/internal/gateway"
	"github.com/shapesync/shapesync/internal/logging"
	"github.com/shapesync/shapesync/internal/store"
	"github.com/shapesync/shapesync/internal/supervisor"
	"github.com/shapesync/shapesync/internal/supervisor/services"
	ws "github.com/shapesync/shapesync/internal/websocket"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Msg("Starting ShapeSync with supervisor tree")
	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Int("session_buffer", cfg.WebSocket.SessionBuffer).
		Strs("cors_origins", cfg.Security.CORSOrigins).
		Bool("rate_limit_disabled", cfg.Security.RateLimitDisabled).
		Msg("Configuration loaded")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridge zerolog to slog for sutureslog compatibility
	slogLogger := logging.NewSlogLogger()

	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	st := store.New()
	hub := ws.NewHub(cfg.WebSocket.SessionBuffer)
	gw := gateway.New(st, hub)

	handler := api.NewHandler(st, gw, hub, cfg)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Messaging layer services
	tree.AddMessagingService(hub)
	logging.Info().Msg("Broadcast hub added to supervisor tree")

	// API layer services
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
