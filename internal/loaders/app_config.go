package loaders

import (
	"context"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/jackc/pgx/v4"

	"github.com/gobapps/gob-api/internal/types"
)

const appConfigColumns = `config_key, config_category, config_value::text, COALESCE(description, ''), is_active, updated_at`

// GetConfig looks a key up. With activeOnly false a soft-deleted row is
// returned as well. A missing key yields nil.
func (c *PostgresClient) GetConfig(ctx context.Context, key string, activeOnly bool) (*types.AppConfigEntry, error) {
	query := `SELECT ` + appConfigColumns + ` FROM app_config WHERE config_key = $1`
	if activeOnly {
		query += ` AND is_active`
	}
	entry, err := scanConfig(c.pool.QueryRow(ctx, query, key))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, queryError("app_config", err)
	}
	return entry, nil
}

// ListConfig returns active rows, optionally restricted to one category.
func (c *PostgresClient) ListConfig(ctx context.Context, category string) ([]types.AppConfigEntry, error) {
	query := `SELECT ` + appConfigColumns + ` FROM app_config WHERE is_active`
	args := []interface{}{}
	if category != "" {
		query += ` AND config_category = $1`
		args = append(args, category)
	}
	query += ` ORDER BY config_category, config_key`

	rows, err := c.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, queryError("app_config", err)
	}
	defer rows.Close()

	var out []types.AppConfigEntry
	for rows.Next() {
		entry, err := scanConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan app_config row: %w", err)
		}
		out = append(out, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read app_config: %w", err)
	}
	return out, nil
}

// UpsertConfig inserts or replaces the row keyed by config_key and marks it
// active again.
func (c *PostgresClient) UpsertConfig(ctx context.Context, entry types.AppConfigEntry) (*types.AppConfigEntry, error) {
	row := c.pool.QueryRow(ctx, `
		INSERT INTO app_config (config_key, config_category, config_value, description, is_active, updated_at)
		VALUES ($1, $2, $3::jsonb, NULLIF($4, ''), true, $5)
		ON CONFLICT (config_key) DO UPDATE SET
			config_category = EXCLUDED.config_category,
			config_value    = EXCLUDED.config_value,
			description     = COALESCE(EXCLUDED.description, app_config.description),
			is_active       = true,
			updated_at      = EXCLUDED.updated_at
		RETURNING `+appConfigColumns,
		entry.ConfigKey, entry.ConfigCategory, string(entry.ConfigValue), entry.Description, entry.UpdatedAt)
	stored, err := scanConfig(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert app_config: %w", err)
	}
	return stored, nil
}

// DeactivateConfig soft-deletes key. It reports false when no row exists.
func (c *PostgresClient) DeactivateConfig(ctx context.Context, key string) (bool, error) {
	tag, err := c.pool.Exec(ctx,
		`UPDATE app_config SET is_active = false, updated_at = now() WHERE config_key = $1`, key)
	if err != nil {
		return false, fmt.Errorf("failed to deactivate app_config: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanConfig(row pgx.Row) (*types.AppConfigEntry, error) {
	var entry types.AppConfigEntry
	var value string
	if err := row.Scan(&entry.ConfigKey, &entry.ConfigCategory, &value, &entry.Description,
		&entry.IsActive, &entry.UpdatedAt); err != nil {
		return nil, err
	}
	entry.ConfigValue = json.RawMessage(value)
	return &entry, nil
}
