package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

// migrationFiles holds the versioned schema. Tables must be created before the
// tables whose foreign keys reference them.
//
//go:embed migrations/*.sql
var migrationFiles embed.FS

// newMigrationProvider returns a goose provider bound to db and the embedded migrations.
func newMigrationProvider(db *sql.DB) (*goose.Provider, error) {
	fsys, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open migrations: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}

	return provider, nil
}

// runMigrations applies every pending migration.
func runMigrations(ctx context.Context, db *sql.DB) error {
	provider, err := newMigrationProvider(db)
	if err != nil {
		return err
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}

// MigrateUp applies pending migrations and returns how many were applied.
func (s *SQLiteStore) MigrateUp(ctx context.Context) (int, error) {
	provider, err := newMigrationProvider(s.db)
	if err != nil {
		return 0, err
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return len(results), nil
}

// MigrateDown rolls back the most recently applied migration.
func (s *SQLiteStore) MigrateDown(ctx context.Context) error {
	provider, err := newMigrationProvider(s.db)
	if err != nil {
		return err
	}

	if _, err := provider.Down(ctx); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}

	return nil
}

// MigrationStatus reports every known migration and whether it has been applied.
func (s *SQLiteStore) MigrationStatus(ctx context.Context) ([]*goose.MigrationStatus, error) {
	provider, err := newMigrationProvider(s.db)
	if err != nil {
		return nil, err
	}

	status, err := provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration status: %w", err)
	}

	return status, nil
}
