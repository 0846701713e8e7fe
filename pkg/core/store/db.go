// Package store persists extraction runs. It is a hybrid vault: Postgres
// when DATABASE_URL is configured, a local JSON directory otherwise, so
// the CLI works offline with no setup.
package store

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Open builds a RunStore for the current environment. With DATABASE_URL
// set it dials a connection pool and uses Postgres as primary; without
// it the store is purely file-backed under dir.
func Open(ctx context.Context, dir string) (*RunStore, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return NewRunStore(nil, dir), nil
	}

	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return NewRunStore(pool, dir), nil
}

// Close releases the connection pool, if any.
func (s *RunStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
