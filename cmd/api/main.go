// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Yomira publishing HTTP API.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Run database migrations (idempotent).
//  4. Wire infrastructure and services (internal/app).
//  5. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/yomira-publish/internal/api"
	"github.com/taibuivan/yomira-publish/internal/app"
	"github.com/taibuivan/yomira-publish/internal/platform/config"
	"github.com/taibuivan/yomira-publish/internal/platform/constants"
	"github.com/taibuivan/yomira-publish/internal/platform/migration"
	pgstore "github.com/taibuivan/yomira-publish/internal/platform/postgres"
	redisstore "github.com/taibuivan/yomira-publish/internal/platform/redis"
	"github.com/taibuivan/yomira-publish/internal/publish"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	log := app.NewLogger(false)
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = app.NewLogger(true)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("content_store", cfg.ContentStore),
	)

	// ── 3. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 4. Wiring ─────────────────────────────────────────────────────────
	// Bound connection attempts so misconfiguration fails fast.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	container, err := app.New(startupCtx, cfg, log)
	startupCancel()
	must(log, err, "wire services")
	defer container.Close()

	health := api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error { return pgstore.Ping(ctx, container.Pool) },
	}
	if container.Redis != nil {
		health.CheckCache = func(ctx context.Context) error { return redisstore.Ping(ctx, container.Redis) }
	}
	liveness, readiness := api.NewHealthHandlers(health, log)

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	server := api.NewServer(rootCtx, cfg, log, container.Verifier, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Publish:   publish.NewHandler(container.Orchestrator, container.Pinner, container.Gateways),
	})

	// ── 5. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	log.Info("server_shutting_down", slog.Duration("timeout", constants.ShutdownTimeout))
	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
		container.Close()
		os.Exit(1)
	}

	log.Info("server_stopped")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
// It is limited to startup wiring.
func must(log *slog.Logger, err error, step string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("step", step),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
