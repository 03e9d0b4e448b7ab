package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Occupancy writes come from a handful of staff clients, so the pool
// stays small.
const (
	maxConns          = 10
	minConns          = 1
	healthCheckPeriod = 30 * time.Second
)

// DB holds the pool backing the shelter occupancy table. Readiness checks
// and pool metrics read it directly.
type DB struct {
	Pool *pgxpool.Pool
}

// New opens the occupancy pool for dsn and fails unless the server answers
// a ping. The API runs without occupancy tracking when this errors.
func New(ctx context.Context, dsn string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = maxConns
	cfg.MinConns = minConns
	cfg.HealthCheckPeriod = healthCheckPeriod

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open occupancy pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping occupancy database: %w", err)
	}
	return &DB{Pool: pool}, nil
}

// Ping reports whether the occupancy database answers.
func (db *DB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// Close releases the pool.
func (db *DB) Close() {
	db.Pool.Close()
}
