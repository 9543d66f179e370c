package database

import (
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// RunMigrations applies any pending goose migrations from migrationsDir.
// The schema (users, refresh_tokens, products, orders, order_items) is
// created entirely through these files; startup fails if any of them
// cannot be applied.
func RunMigrations(db *sql.DB, migrationsDir string, logger *zap.Logger) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	logger.Info("Applying pending migrations", zap.String("dir", migrationsDir))

	if err := goose.Up(db, migrationsDir); err != nil {
		logger.Error("Migration run failed", zap.Error(err))
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
