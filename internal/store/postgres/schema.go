package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema holds the DDL for every table the repositories touch. Statements
// are idempotent so EnsureSchema can run on every startup.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS companies (
		ticker           TEXT PRIMARY KEY,
		name             TEXT NOT NULL DEFAULT '',
		sector           TEXT NOT NULL DEFAULT '',
		industry         TEXT NOT NULL DEFAULT '',
		market_cap       DOUBLE PRECISION NOT NULL DEFAULT 0,
		current_price    DOUBLE PRECISION NOT NULL DEFAULT 0,
		investment_score DOUBLE PRECISION,
		target_price     DOUBLE PRECISION
	)`,
	`CREATE TABLE IF NOT EXISTS price_bars (
		ticker      TEXT NOT NULL,
		price_date  DATE NOT NULL,
		open_price  DOUBLE PRECISION NOT NULL,
		high_price  DOUBLE PRECISION NOT NULL,
		low_price   DOUBLE PRECISION NOT NULL,
		close_price DOUBLE PRECISION NOT NULL,
		adj_close   DOUBLE PRECISION NOT NULL,
		volume      BIGINT NOT NULL,
		PRIMARY KEY (ticker, price_date)
	)`,
	`CREATE TABLE IF NOT EXISTS benchmark_prices (
		symbol      TEXT NOT NULL,
		price_date  DATE NOT NULL,
		close_price DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (symbol, price_date)
	)`,
	`CREATE TABLE IF NOT EXISTS analysts (
		analyst_id       TEXT PRIMARY KEY,
		name             TEXT NOT NULL DEFAULT '',
		firm             TEXT NOT NULL DEFAULT '',
		confidence_score DOUBLE PRECISION,
		total_ratings    INTEGER NOT NULL DEFAULT 0,
		accurate_ratings INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS ratings (
		id            BIGSERIAL PRIMARY KEY,
		analyst_id    TEXT NOT NULL,
		ticker        TEXT NOT NULL,
		rating_date   DATE NOT NULL,
		rating        TEXT NOT NULL,
		price_target  DOUBLE PRECISION,
		was_accurate  BOOLEAN,
		actual_return DOUBLE PRECISION,
		UNIQUE (analyst_id, ticker, rating_date)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ratings_ticker_date ON ratings (ticker, rating_date)`,
	`CREATE INDEX IF NOT EXISTS idx_ratings_analyst_date ON ratings (analyst_id, rating_date)`,
	`CREATE TABLE IF NOT EXISTS jobs (
		id         BIGSERIAL PRIMARY KEY,
		job_type   TEXT NOT NULL,
		status     TEXT NOT NULL,
		start_time TIMESTAMPTZ NOT NULL,
		end_time   TIMESTAMPTZ,
		detail     TEXT
	)`,
}

// EnsureSchema creates any missing tables and indexes.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
