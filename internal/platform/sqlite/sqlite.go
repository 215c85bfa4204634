// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sqlite opens the embedded SQLite catalog through GORM.
//
// # Architecture
//
// This package belongs to the Infrastructure layer. It is the alternative to
// the PostgreSQL pool, selected with DATABASE_DRIVER=sqlite for local runs
// and used by storage-backed service tests. Schema creation is done with
// GORM AutoMigrate over the models each domain package exposes.
package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	// busyTimeout lets a writer wait for the file lock instead of failing.
	busyTimeout = 5 * time.Second
	// slowQueryThreshold marks queries worth a warning in the logs.
	slowQueryThreshold = 200 * time.Millisecond
	// pingTimeout is the maximum duration for a health check ping.
	pingTimeout = 2 * time.Second
)

// Open connects to the SQLite file at path with foreign keys enabled.
//
// The pool is capped at one connection: SQLite allows a single writer and a
// second connection would only block on the file lock.
func Open(path string, log *slog.Logger, debug bool) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s?_foreign_keys=on&_busy_timeout=%d", path, busyTimeout.Milliseconds())

	level := logger.Warn
	if debug {
		level = logger.Info
	}

	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{
		Logger: logger.New(slog.NewLogLogger(log.Handler(), slog.LevelDebug), logger.Config{
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	log.Info("sqlite_opened", slog.String("path", path))

	return db, nil
}

// Migrate creates or alters the tables backing models.
func Migrate(db *gorm.DB, models ...any) error {
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("sqlite: auto-migrate failed: %w", err)
	}
	return nil
}

// Ping verifies that the database file is reachable.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("sqlite: failed to access connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		return fmt.Errorf("sqlite: ping failed: %w", err)
	}
	return nil
}

// Close releases the underlying connection.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
