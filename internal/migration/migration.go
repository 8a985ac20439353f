package migration

import (
	"context"

	"studyviz/internal"
	"studyviz/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createViewSnapshotsTable(ctx, db); err != nil {
		return errors.DatabaseError(err, "failed to create view_snapshots table")
	}

	if err := r.addViewSnapshotsColumns(ctx, db); err != nil {
		return errors.DatabaseError(err, "failed to add view_snapshots columns")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.DatabaseError(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createViewSnapshotsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS view_snapshots (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			session_id VARCHAR(64) NOT NULL,
			state JSONB NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

// dataset_hash was added once saved views started checking the dataset they
// were taken from.
func (r *MigrationRunner) addViewSnapshotsColumns(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		DO $$
		BEGIN
			IF NOT EXISTS (
				SELECT 1 FROM information_schema.columns
				WHERE table_name = 'view_snapshots' AND column_name = 'dataset_hash'
			) THEN
				ALTER TABLE view_snapshots ADD COLUMN dataset_hash VARCHAR(64) NOT NULL DEFAULT '';
			END IF;
		END $$;
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_view_snapshots_updated_at ON view_snapshots(updated_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_view_snapshots_dataset_hash ON view_snapshots(dataset_hash)",
	}

	for _, indexSQL := range indexes {
		if _, err := db.ExecContext(ctx, indexSQL); err != nil {
			// Log but don't fail on index creation errors
			internal.DefaultLogger.WithComponent("Migration").Warn("failed to create index: %v", err)
		}
	}

	return nil
}
