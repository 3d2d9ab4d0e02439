package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping Postgres: %w", err)
	}
	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS products (
	product_id     BIGINT PRIMARY KEY,
	sku            TEXT NOT NULL UNIQUE,
	name           TEXT NOT NULL,
	price          NUMERIC(14,2) NOT NULL,
	sale_price     NUMERIC(14,2),
	images         TEXT[] NOT NULL DEFAULT '{}',
	warehouse_main INT NOT NULL DEFAULT 0,
	warehouse_east INT NOT NULL DEFAULT 0,
	warehouse_west INT NOT NULL DEFAULT 0,
	status         TEXT NOT NULL DEFAULT 'active',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS cart_lines (
	id         BIGSERIAL PRIMARY KEY,
	owner      TEXT NOT NULL,
	product_id BIGINT NOT NULL,
	quantity   INT NOT NULL CHECK (quantity > 0),
	added_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_cart_lines_owner ON cart_lines (owner);
`

// EnsureSchema creates the catalog and cart tables when missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Ping is shaped for the health endpoint.
func Ping(pool *pgxpool.Pool) func(context.Context) error {
	return pool.Ping
}
