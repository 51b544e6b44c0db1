// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package migration wraps golang-migrate for the publish schema.
//
// # Architecture
//
// The API server applies pending migrations at startup; operators can also
// run them explicitly through `publishctl migrate`.
package migration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// pgx5 driver registers "pgx5" scheme for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	// file source reads .sql files from disk.
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// State describes the schema version recorded in the database.
type State struct {
	Version uint
	Dirty   bool
	// Empty is true when no migration has ever been applied.
	Empty bool
}

func open(dsn, migrationsPath string, logger *slog.Logger) (*migrate.Migrate, func(), error) {
	migrator, err := migrate.New("file://"+migrationsPath, ToPgx5DSN(dsn))
	if err != nil {
		return nil, nil, fmt.Errorf("migration: failed to initialize: %w", err)
	}
	migrator.Log = &migrateLogger{logger: logger}

	closeFn := func() {
		sourceError, dbError := migrator.Close()
		if sourceError != nil {
			logger.Error("migration_source_close_failed", slog.Any("error", sourceError))
		}
		if dbError != nil {
			logger.Error("migration_db_close_failed", slog.Any("error", dbError))
		}
	}
	return migrator, closeFn, nil
}

/*
RunUp applies all pending UP migrations.

Parameters:
  - dsn: A libpq-compatible DSN or postgres:// URL.
  - migrationsPath: Filesystem path to the migrations directory.
  - logger: Structured logger for migration events.

Returns:
  - error: Initialisation failures, a dirty schema, or a failed migration.
*/
func RunUp(dsn string, migrationsPath string, logger *slog.Logger) error {
	migrator, closeFn, err := open(dsn, migrationsPath, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	before, err := stateOf(migrator)
	if err != nil {
		return err
	}

	if before.Dirty {
		return fmt.Errorf("migration: database is in a dirty state at version %d (manual intervention required)", before.Version)
	}

	logger.Info("migration_started", slog.Int("current_version", int(before.Version)))

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("migration_already_up_to_date")
			return nil
		}
		return fmt.Errorf("migration: up failed: %w", err)
	}

	after, _ := stateOf(migrator)
	logger.Info("migration_successful",
		slog.Int("from_version", int(before.Version)),
		slog.Int("to_version", int(after.Version)),
	)

	return nil
}

// Status reports the current schema version without changing anything.
func Status(dsn string, migrationsPath string, logger *slog.Logger) (State, error) {
	migrator, closeFn, err := open(dsn, migrationsPath, logger)
	if err != nil {
		return State{}, err
	}
	defer closeFn()

	return stateOf(migrator)
}

func stateOf(migrator *migrate.Migrate) (State, error) {
	version, dirty, err := migrator.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return State{Empty: true}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("migration: failed to get current version: %w", err)
	}
	return State{Version: version, Dirty: dirty}, nil
}

// ToPgx5DSN rewrites postgres:// and postgresql:// URLs to the pgx5:// scheme
// golang-migrate expects. Other inputs are returned unchanged.
func ToPgx5DSN(dsn string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if rest, ok := strings.CutPrefix(dsn, prefix); ok {
			return "pgx5://" + rest
		}
	}
	return dsn
}

// migrateLogger adapts golang-migrate's logger interface to slog.
type migrateLogger struct {
	logger *slog.Logger
}

// Printf implements migrate.Logger.
func (l *migrateLogger) Printf(format string, args ...any) {
	l.logger.Debug("migration_log", slog.String("message", strings.TrimSpace(fmt.Sprintf(format, args...))))
}

// Verbose implements migrate.Logger.
func (l *migrateLogger) Verbose() bool {
	return l.logger.Enabled(context.Background(), slog.LevelDebug)
}
