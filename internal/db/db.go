// Package db provides optional PostgreSQL storage for campaign run history.
// The campaign runs fine without it; callers treat connection failure as a
// warning, not an error.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the run-history tables if they do not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS campaign_runs (
			id              UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			spreadsheet_id  TEXT NOT NULL,
			total_companies INT NOT NULL,
			status          TEXT NOT NULL,
			processed       INT NOT NULL DEFAULT 0,
			successes       INT NOT NULL DEFAULT 0,
			failures        INT NOT NULL DEFAULT 0,
			errors          INT NOT NULL DEFAULT 0,
			started_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			completed_at    TIMESTAMPTZ
		);
		CREATE TABLE IF NOT EXISTS company_outcomes (
			id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			run_id        UUID NOT NULL REFERENCES campaign_runs(id),
			company_url   TEXT NOT NULL,
			domain        TEXT,
			outcome       TEXT NOT NULL,
			stage         TEXT,
			reason        TEXT,
			contact_email TEXT,
			draft_id      TEXT,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`)
	if err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}
