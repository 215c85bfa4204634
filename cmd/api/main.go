// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Libris HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables (and .env files).
//  3. Open the catalog store: PostgreSQL (pgxpool + migrations) or SQLite (GORM).
//  4. Connect to Redis when configured, for the shared rate limiter.
//  5. Wire HTTP handlers.
//  6. Start HTTP server with graceful shutdown.
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

	"github.com/taibuivan/libris/internal/api"
	"github.com/taibuivan/libris/internal/core/book"
	"github.com/taibuivan/libris/internal/platform/config"
	"github.com/taibuivan/libris/internal/platform/constants"
	"github.com/taibuivan/libris/internal/platform/migration"
	pgstore "github.com/taibuivan/libris/internal/platform/postgres"
	"github.com/taibuivan/libris/internal/platform/ratelimit"
	redisstore "github.com/taibuivan/libris/internal/platform/redis"
	sqlitestore "github.com/taibuivan/libris/internal/platform/sqlite"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("[Libris] service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("database_driver", cfg.DatabaseDriver),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// Lives until shutdown; stops background goroutines such as the limiter janitor.
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	// ── 3. Catalog Store ──────────────────────────────────────────────────
	var (
		transactor book.Transactor
		database   *api.HealthCheck
	)

	switch cfg.DatabaseDriver {
	case config.DriverSQLite:
		db, err := sqlitestore.Open(cfg.SQLitePath, log, cfg.Debug)
		must(log, err, "open sqlite")
		defer func() {
			log.Info("closing sqlite database")
			if cerr := sqlitestore.Close(db); cerr != nil {
				log.Error("sqlite close error", slog.Any("error", cerr))
			}
		}()

		must(log, sqlitestore.Migrate(db, book.Models()...), "migrate sqlite")

		transactor = book.NewSQLiteTransactor(db)
		database = &api.HealthCheck{
			Name:  config.DriverSQLite,
			Check: func(ctx context.Context) error { return sqlitestore.Ping(ctx, db) },
		}

	default:
		pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
		must(log, err, "connect to postgres")
		defer func() {
			log.Info("closing postgres pool")
			pool.Close()
		}()

		must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

		transactor = book.NewPostgresTransactor(pool)
		database = &api.HealthCheck{
			Name:  config.DriverPostgres,
			Check: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) },
		}
	}

	// ── 4. Redis & Rate Limiting ──────────────────────────────────────────
	var (
		limiter ratelimit.Limiter
		cache   *api.HealthCheck
	)

	if cfg.RedisURL != "" {
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing redis client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}()

		limiter = ratelimit.NewRedis(rdb, cfg.RateLimitBurst, constants.RateLimitWindow)
		cache = &api.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) },
		}
	} else {
		limiter = ratelimit.NewMemory(appCtx, cfg.RateLimitRPS, cfg.RateLimitBurst)
		log.Info("rate_limiter_in_memory")
	}

	// ── 5. Domain Wiring ──────────────────────────────────────────────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		Database: database,
		Cache:    cache,
	}, log)

	bookService := book.NewService(transactor, log)
	bookHandler := book.NewHandler(bookService)

	// ── 6. HTTP Server ────────────────────────────────────────────────────
	server := api.NewServer(cfg, log, limiter, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Book:      bookHandler,
	})

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
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		return
	}

	log.Info("server stopped cleanly")
}

// newLogger builds the JSON logger with the global app attribute.
func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", constants.AppName))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
