package loaders

import (
	"context"
	"fmt"

	"github.com/gobapps/gob-api/internal/utils"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS ticker_market_cache (
		ticker         text PRIMARY KEY,
		current_price  double precision,
		change_percent double precision,
		change_amount  double precision,
		volume         double precision,
		market_cap     double precision,
		pe_ratio       double precision,
		pcf_ratio      double precision,
		pbv_ratio      double precision,
		dividend_yield double precision,
		updated_at     timestamptz NOT NULL DEFAULT now(),
		expires_at     timestamptz NOT NULL,
		CONSTRAINT ticker_market_cache_expiry CHECK (expires_at > updated_at)
	)`,
	`CREATE TABLE IF NOT EXISTS daily_market_cache (
		date       date NOT NULL,
		cache_type text NOT NULL,
		data       jsonb NOT NULL,
		updated_at timestamptz NOT NULL DEFAULT now(),
		PRIMARY KEY (date, cache_type)
	)`,
	`CREATE TABLE IF NOT EXISTS app_config (
		config_key      text PRIMARY KEY,
		config_category text NOT NULL DEFAULT 'general',
		config_value    jsonb NOT NULL,
		description     text,
		is_active       boolean NOT NULL DEFAULT true,
		updated_at      timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS app_config_category_idx ON app_config (config_category) WHERE is_active`,
	`CREATE TABLE IF NOT EXISTS tickers (
		ticker       text PRIMARY KEY,
		source       text NOT NULL CHECK (source IN ('team', 'watchlist', 'both', 'manual')),
		is_active    boolean NOT NULL DEFAULT true,
		company_name text,
		exchange     text,
		country      text,
		priority     integer NOT NULL DEFAULT 0,
		updated_at   timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS briefing_archive (
		id         uuid PRIMARY KEY,
		type       text NOT NULL,
		json       jsonb NOT NULL,
		html       text NOT NULL,
		recipients text[] NOT NULL DEFAULT '{}',
		sent_at    timestamptz NOT NULL
	)`,
}

// EnsureSchema creates every table the service reads or writes.
func (c *PostgresClient) EnsureSchema(ctx context.Context) error {
	for i, stmt := range schemaStatements {
		if _, err := c.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d failed: %w", i, err)
		}
	}
	utils.Zlog.Info("Database schema ensured")
	return nil
}
