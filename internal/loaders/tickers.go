package loaders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"

	"github.com/gobapps/gob-api/internal/types"
)

const tickerColumns = `ticker, source, is_active, COALESCE(company_name, ''), COALESCE(exchange, ''),
		COALESCE(country, ''), priority, updated_at`

const upsertTicker = `
	INSERT INTO tickers (ticker, source, is_active, company_name, exchange, country, priority, updated_at)
	VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7, $8)
	ON CONFLICT (ticker) DO UPDATE SET
		source       = EXCLUDED.source,
		is_active    = EXCLUDED.is_active,
		company_name = COALESCE(EXCLUDED.company_name, tickers.company_name),
		exchange     = COALESCE(EXCLUDED.exchange, tickers.exchange),
		country      = COALESCE(EXCLUDED.country, tickers.country),
		priority     = EXCLUDED.priority,
		updated_at   = EXCLUDED.updated_at`

// ListTickers returns registry rows ordered by priority (highest first), then symbol.
func (c *PostgresClient) ListTickers(ctx context.Context, activeOnly bool) ([]types.TickerRegistryRow, error) {
	query := `SELECT ` + tickerColumns + ` FROM tickers`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY priority DESC, ticker`

	rows, err := c.pool.Query(ctx, query)
	if err != nil {
		return nil, queryError("tickers", err)
	}
	defer rows.Close()

	var out []types.TickerRegistryRow
	for rows.Next() {
		r, err := scanTicker(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tickers row: %w", err)
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tickers: %w", err)
	}
	return out, nil
}

// GetTicker returns the registry row for ticker, active or not, or nil when unknown.
func (c *PostgresClient) GetTicker(ctx context.Context, ticker string) (*types.TickerRegistryRow, error) {
	row, err := scanTicker(c.pool.QueryRow(ctx, `SELECT `+tickerColumns+` FROM tickers WHERE ticker = $1`, ticker))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, queryError("tickers", err)
	}
	return row, nil
}

func (c *PostgresClient) UpsertTicker(ctx context.Context, row types.TickerRegistryRow) error {
	_, err := c.UpsertTickers(ctx, []types.TickerRegistryRow{row})
	return err
}

// UpsertTickers writes registry rows in batches, returning the number applied.
func (c *PostgresClient) UpsertTickers(ctx context.Context, rows []types.TickerRegistryRow) (int, error) {
	written := 0
	for start := 0; start < len(rows); start += c.batchSize {
		end := start + c.batchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := &pgx.Batch{}
		for _, r := range rows[start:end] {
			batch.Queue(upsertTicker, r.Ticker, string(r.Source), r.IsActive, r.CompanyName,
				r.Exchange, r.Country, r.Priority, r.UpdatedAt)
		}
		n, err := c.execBatch(ctx, batch)
		written += n
		if err != nil {
			return written, fmt.Errorf("failed to upsert tickers: %w", err)
		}
	}
	return written, nil
}

// DeactivateTicker flips is_active off. It reports false when the ticker is unknown.
func (c *PostgresClient) DeactivateTicker(ctx context.Context, ticker string) (bool, error) {
	tag, err := c.pool.Exec(ctx,
		`UPDATE tickers SET is_active = false, updated_at = now() WHERE ticker = $1`, ticker)
	if err != nil {
		return false, fmt.Errorf("failed to deactivate ticker: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanTicker(row pgx.Row) (*types.TickerRegistryRow, error) {
	var r types.TickerRegistryRow
	var source string
	if err := row.Scan(&r.Ticker, &source, &r.IsActive, &r.CompanyName, &r.Exchange,
		&r.Country, &r.Priority, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.Source = types.TickerSource(source)
	return &r, nil
}
