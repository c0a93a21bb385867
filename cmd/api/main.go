// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the aulagate HTTP server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Open the session backend (memory, Redis, or PostgreSQL with migrations).
//  4. Load the route table.
//  5. Wire metrics, the school backend client and HTTP handlers.
//  6. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
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

	"github.com/taibuivan/aulagate/internal/api"
	"github.com/taibuivan/aulagate/internal/backend"
	"github.com/taibuivan/aulagate/internal/metrics"
	"github.com/taibuivan/aulagate/internal/navigation"
	"github.com/taibuivan/aulagate/internal/platform/config"
	"github.com/taibuivan/aulagate/internal/platform/constants"
	"github.com/taibuivan/aulagate/internal/platform/migration"
	pgstore "github.com/taibuivan/aulagate/internal/platform/postgres"
	redisstore "github.com/taibuivan/aulagate/internal/platform/redis"
	"github.com/taibuivan/aulagate/internal/session"
)

// sweepInterval is how often idle PostgreSQL sessions are removed.
const sweepInterval = 15 * time.Minute

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String(constants.FieldApp, constants.AppName))
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String(constants.FieldVersion, constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String(constants.FieldApp, constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("session_backend", cfg.SessionBackend),
	)

	// Root context for background workers; canceled on shutdown.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// Startup deadline so misconfiguration is caught quickly.
	startupCtx, startupCancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer startupCancel()

	// ── 3. Session Backend ────────────────────────────────────────────────
	sessions, health, closeSessions := openSessions(rootCtx, startupCtx, cfg, log)
	defer closeSessions()

	// ── 4. Route Table ────────────────────────────────────────────────────
	table, err := loadTable(cfg.RoutesFile)
	must(log, err, "load route table")
	log.Info("route_table_loaded", slog.Int("routes", len(table.Routes())), slog.String("file", cfg.RoutesFile))

	// ── 5. Domain Wiring ──────────────────────────────────────────────────
	registry := metrics.NewRegistry()
	recorder := metrics.NewMetrics(registry)

	schoolAPI := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout, recorder)
	navigator := navigation.NewNavigator(table, navigation.NewGuard(recorder).Decide, recorder)
	shell, assets := api.SPA(cfg.SPADir)

	liveness, readiness := api.NewHealthHandlers(health, log)

	handlers := api.Handlers{
		Liveness:   liveness,
		Readiness:  readiness,
		Metrics:    metrics.Handler(registry),
		Session:    session.NewHandler(schoolAPI),
		Navigation: navigation.NewHandler(navigator),
		Pages:      navigation.Pages(navigator, shell),
		Assets:     assets,
	}

	server := api.NewServer(rootCtx, cfg, log, sessions, handlers, session.WithObserver(recorder))

	// ── 6. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	rootCancel()

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting_down_server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped_cleanly")
}

/*
openSessions connects the configured session backend.

Returns:
  - session.Provider: Opens one store per browser client
  - api.HealthDependencies: Readiness checkers for the backend
  - func(): Releases connections on shutdown
*/
func openSessions(rootCtx, startupCtx context.Context, cfg *config.Config, log *slog.Logger) (session.Provider, api.HealthDependencies, func()) {
	switch cfg.SessionBackend {
	case config.BackendRedis:
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")

		health := api.HealthDependencies{
			CheckCache: func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) },
		}
		return session.NewRedisProvider(rdb, cfg.SessionIdleTTL), health, func() {
			log.Info("closing_redis_client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis_close_error", slog.Any("error", cerr))
			}
		}

	case config.BackendPostgres:
		pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
		must(log, err, "connect to postgres")

		must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

		provider := session.NewPostgresProvider(pool)
		go sweep(rootCtx, provider, cfg.SessionIdleTTL, log)

		health := api.HealthDependencies{
			CheckDatabase: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) },
		}
		return provider, health, func() {
			log.Info("closing_postgres_pool")
			pool.Close()
		}

	default:
		log.Warn("memory_session_backend_in_use", slog.String("note", "sessions are lost on restart"))
		return session.NewMemoryProvider(), api.HealthDependencies{}, func() {}
	}
}

// sweep periodically removes PostgreSQL sessions idle for longer than idle.
func sweep(ctx context.Context, provider *session.PostgresProvider, idle time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := provider.Sweep(ctx, idle)
			if err != nil {
				log.Error("session_sweep_failed", slog.Any("error", err))
				continue
			}
			if removed > 0 {
				log.Info("session_sweep_completed", slog.Int64("removed", removed))
			}
		}
	}
}

// loadTable builds the route table from path, or the built-in routes when path is empty.
func loadTable(path string) (*navigation.Table, error) {
	if path == "" {
		return navigation.MustTable(navigation.DefaultRoutes()), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open routes file: %w", err)
	}
	defer file.Close()

	routes, err := navigation.LoadRoutes(file)
	if err != nil {
		return nil, err
	}
	return navigation.NewTable(routes)
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned
// and handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
