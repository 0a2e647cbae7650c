package database

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pressly/goose/v3"
)

// Migrate applies pending SQL migrations from migrationsDir against the pool.
func (cp *ConnectionPool) Migrate(ctx context.Context, migrationsDir string) error {
	if _, err := os.Stat(migrationsDir); err != nil {
		return fmt.Errorf("locate migrations dir: %w", err)
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("configure goose: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	cp.logger.Info("applying migrations", slog.String("dir", migrationsDir))
	if err := goose.UpContext(runCtx, cp.db, migrationsDir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	cp.logger.Info("migrations applied")
	return nil
}

// MigrationStatus reports applied and pending migrations.
func (cp *ConnectionPool) MigrationStatus(migrationsDir string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("configure goose: %w", err)
	}
	if err := goose.Status(cp.db, migrationsDir); err != nil {
		return fmt.Errorf("migration status: %w", err)
	}
	return nil
}
