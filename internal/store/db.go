// Package store persists calculation records, per-person splits, and
// bracket schedules in Postgres.
package store

import (
	"context"
	"fmt"
	"os"
	"sync"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	pool *pgxpool.Pool
	once sync.Once
)

// InitDB initializes the connection pool from the DATABASE_URL environment
// variable. Safe to call more than once; only the first call connects.
func InitDB(ctx context.Context) error {
	var err error
	once.Do(func() {
		dbURL := os.Getenv("DATABASE_URL")
		if dbURL == "" {
			err = fmt.Errorf("DATABASE_URL environment variable not set")
			return
		}

		config, parseErr := pgxpool.ParseConfig(dbURL)
		if parseErr != nil {
			err = fmt.Errorf("failed to parse database config: %w", parseErr)
			return
		}
		// NUMERIC columns scan directly into decimal.Decimal.
		config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			pgxdecimal.Register(conn.TypeMap())
			return nil
		}

		pool, err = pgxpool.NewWithConfig(ctx, config)
	})
	return err
}

// GetPool returns the shared connection pool, nil before InitDB.
func GetPool() *pgxpool.Pool {
	return pool
}

// Ping verifies the database is reachable.
func Ping(ctx context.Context) error {
	if pool == nil {
		return fmt.Errorf("database pool not configured")
	}
	return pool.Ping(ctx)
}

// Close releases the pool.
func Close() {
	if pool != nil {
		pool.Close()
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS tax_records (
  id BIGSERIAL PRIMARY KEY,
  num_people INTEGER NOT NULL,
  revenue NUMERIC NOT NULL,
  total_costs NUMERIC NOT NULL,
  group_income NUMERIC NOT NULL,
  individual_income NUMERIC NOT NULL,
  tax_origin TEXT NOT NULL,
  tax_option TEXT NOT NULL,
  distribution_method TEXT NOT NULL DEFAULT 'N/A',
  salary_amount NUMERIC NOT NULL DEFAULT 0,
  tax_amount NUMERIC NOT NULL,
  net_income_per_person NUMERIC NOT NULL,
  net_income_group NUMERIC NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS people (
  id BIGSERIAL PRIMARY KEY,
  record_id BIGINT NOT NULL REFERENCES tax_records(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  work_share NUMERIC NOT NULL,
  gross_income NUMERIC NOT NULL,
  tax_paid NUMERIC NOT NULL,
  net_income NUMERIC NOT NULL
);

CREATE TABLE IF NOT EXISTS tax_brackets (
  id BIGSERIAL PRIMARY KEY,
  country TEXT NOT NULL,
  tax_type TEXT NOT NULL,
  income_limit NUMERIC,
  rate NUMERIC NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_people_record ON people(record_id);
CREATE INDEX IF NOT EXISTS idx_brackets_country ON tax_brackets(country, tax_type);
`

// InitSchema creates the tables when they do not exist. A NULL
// income_limit marks the unbounded terminal bracket.
func InitSchema(ctx context.Context) error {
	if pool == nil {
		return fmt.Errorf("database pool not configured")
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}
