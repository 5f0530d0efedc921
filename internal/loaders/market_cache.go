package loaders

import (
	"context"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/jackc/pgx/v4"

	"github.com/gobapps/gob-api/internal/types"
)

const selectTickerRows = `
	SELECT ticker, current_price, change_percent, change_amount, volume, market_cap,
	       pe_ratio, pcf_ratio, pbv_ratio, dividend_yield, updated_at, expires_at
	FROM ticker_market_cache
	WHERE ticker = ANY($1)`

// The WHERE clause on the update makes concurrent refreshers safe: a row
// written from an older read never replaces a newer one.
const upsertTickerRow = `
	INSERT INTO ticker_market_cache (
		ticker, current_price, change_percent, change_amount, volume, market_cap,
		pe_ratio, pcf_ratio, pbv_ratio, dividend_yield, updated_at, expires_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	ON CONFLICT (ticker) DO UPDATE SET
		current_price  = EXCLUDED.current_price,
		change_percent = EXCLUDED.change_percent,
		change_amount  = EXCLUDED.change_amount,
		volume         = EXCLUDED.volume,
		market_cap     = EXCLUDED.market_cap,
		pe_ratio       = EXCLUDED.pe_ratio,
		pcf_ratio      = EXCLUDED.pcf_ratio,
		pbv_ratio      = EXCLUDED.pbv_ratio,
		dividend_yield = EXCLUDED.dividend_yield,
		updated_at     = EXCLUDED.updated_at,
		expires_at     = EXCLUDED.expires_at
	WHERE ticker_market_cache.updated_at <= EXCLUDED.updated_at`

// GetTickerRows returns the cached rows for tickers. Tickers with no row are
// simply absent from the result.
func (c *PostgresClient) GetTickerRows(ctx context.Context, tickers []string) ([]types.TickerMarketCacheRow, error) {
	rows, err := c.pool.Query(ctx, selectTickerRows, tickers)
	if err != nil {
		return nil, queryError("ticker_market_cache", err)
	}
	defer rows.Close()

	var out []types.TickerMarketCacheRow
	for rows.Next() {
		var r types.TickerMarketCacheRow
		if err := rows.Scan(&r.Ticker, &r.CurrentPrice, &r.ChangePercent, &r.ChangeAmount, &r.Volume,
			&r.MarketCap, &r.PERatio, &r.PCFRatio, &r.PBVRatio, &r.DividendYield, &r.UpdatedAt, &r.ExpiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan ticker_market_cache row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ticker_market_cache: %w", err)
	}
	return out, nil
}

// UpsertTickerRows writes rows in batches and returns how many were applied.
// Rows older than what is already stored are skipped, not counted.
func (c *PostgresClient) UpsertTickerRows(ctx context.Context, rows []types.TickerMarketCacheRow) (int, error) {
	written := 0
	for start := 0; start < len(rows); start += c.batchSize {
		end := start + c.batchSize
		if end > len(rows) {
			end = len(rows)
		}

		batch := &pgx.Batch{}
		for _, r := range rows[start:end] {
			if !r.ExpiresAt.After(r.UpdatedAt) {
				return written, fmt.Errorf("ticker %s: expires_at must be after updated_at", r.Ticker)
			}
			batch.Queue(upsertTickerRow, r.Ticker, r.CurrentPrice, r.ChangePercent, r.ChangeAmount, r.Volume,
				r.MarketCap, r.PERatio, r.PCFRatio, r.PBVRatio, r.DividendYield, r.UpdatedAt, r.ExpiresAt)
		}

		n, err := c.execBatch(ctx, batch)
		written += n
		if err != nil {
			return written, fmt.Errorf("failed to upsert ticker_market_cache: %w", err)
		}
	}
	return written, nil
}

// GetDailyCache returns the entry for (cacheType, date), or nil when absent.
func (c *PostgresClient) GetDailyCache(ctx context.Context, cacheType, date string) (*types.DailyCacheEntry, error) {
	var entry types.DailyCacheEntry
	var data string
	err := c.pool.QueryRow(ctx, `
		SELECT date::text, cache_type, data::text, updated_at
		FROM daily_market_cache
		WHERE date = $1::date AND cache_type = $2`, date, cacheType).
		Scan(&entry.Date, &entry.CacheType, &data, &entry.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, queryError("daily_market_cache", err)
	}
	entry.Data = json.RawMessage(data)
	return &entry, nil
}

func (c *PostgresClient) UpsertDailyCache(ctx context.Context, entry types.DailyCacheEntry) error {
	_, err := c.pool.Exec(ctx, `
		INSERT INTO daily_market_cache (date, cache_type, data, updated_at)
		VALUES ($1::date, $2, $3::jsonb, $4)
		ON CONFLICT (date, cache_type) DO UPDATE SET
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at`,
		entry.Date, entry.CacheType, string(entry.Data), entry.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert daily_market_cache: %w", err)
	}
	return nil
}

func (c *PostgresClient) execBatch(ctx context.Context, batch *pgx.Batch) (int, error) {
	br := c.pool.SendBatch(ctx, batch)
	defer br.Close()

	affected := 0
	for i := 0; i < batch.Len(); i++ {
		tag, err := br.Exec()
		if err != nil {
			return affected, err
		}
		affected += int(tag.RowsAffected())
	}
	return affected, nil
}
