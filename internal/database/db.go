package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps the pgx connection pool
type DB struct {
	Pool *pgxpool.Pool
}

// New connects to Postgres and verifies the connection
func New(ctx context.Context, pgURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, pgURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &DB{Pool: pool}, nil
}

// Close releases the pool
func (db *DB) Close() {
	db.Pool.Close()
}

// Schema creates the dataset tables when missing. Each run replaces entity_records wholesale.
const Schema = `
CREATE TABLE IF NOT EXISTS pipeline_runs (
	run_id          UUID PRIMARY KEY,
	started_at      TIMESTAMPTZ NOT NULL,
	finished_at     TIMESTAMPTZ NOT NULL,
	listings        INT NOT NULL,
	processed       INT NOT NULL,
	succeeded       INT NOT NULL,
	not_found       INT NOT NULL,
	quality_flagged INT NOT NULL,
	stale_excluded  INT NOT NULL,
	errored         INT NOT NULL,
	cancelled       INT NOT NULL,
	summary         JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS entity_records (
	cik            VARCHAR(10) PRIMARY KEY,
	symbol         VARCHAR(16) NOT NULL,
	reference_date DATE,
	record         JSONB NOT NULL,
	audit          JSONB NOT NULL,
	run_id         UUID NOT NULL REFERENCES pipeline_runs(run_id)
);

CREATE INDEX IF NOT EXISTS entity_records_symbol_idx ON entity_records (symbol);
`

// Migrate applies Schema
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
