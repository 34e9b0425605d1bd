package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// DB wraps the Postgres connection pool
type DB struct {
	Pool *pgxpool.Pool
}

// schema holds the cache tables. Statements are idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS market_segment (
	name         TEXT PRIMARY KEY,
	refreshed_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS market_holding (
	segment  TEXT NOT NULL REFERENCES market_segment(name) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	name     TEXT NOT NULL,
	ticker   TEXT NOT NULL DEFAULT '',
	country  TEXT NOT NULL DEFAULT '',
	sector   TEXT NOT NULL DEFAULT '',
	industry TEXT NOT NULL DEFAULT '',
	currency TEXT NOT NULL DEFAULT '',
	exchange TEXT NOT NULL DEFAULT '',
	type     TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (segment, position)
);

CREATE TABLE IF NOT EXISTS fund_pull (
	fund        TEXT PRIMARY KEY,
	pull_date   TIMESTAMPTZ NOT NULL,
	next_update TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS fund_holding (
	fund     TEXT NOT NULL REFERENCES fund_pull(fund) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	name     TEXT NOT NULL,
	ticker   TEXT NOT NULL DEFAULT '',
	country  TEXT NOT NULL DEFAULT '',
	sector   TEXT NOT NULL DEFAULT '',
	type     TEXT NOT NULL DEFAULT '',
	weight   DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (fund, position)
);
`

// New connects to Postgres, verifies the connection and creates the cache
// tables if they do not exist.
func New(ctx context.Context, url string) (*DB, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(connectCtx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(connectCtx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	log.Infof("Connected to Postgres")
	return &DB{Pool: pool}, nil
}

// Close releases the pool
func (db *DB) Close() {
	db.Pool.Close()
}
