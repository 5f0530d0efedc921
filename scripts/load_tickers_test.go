package main

import (
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gobapps/gob-api/internal/types"
)

func TestBuildRows(t *testing.T) {
	var records []TickerRecord
	input := `["aapl", {"ticker":"RY.TO","source":"watchlist","priority":3}, "AAPL", "bad ticker", {"ticker":"TD","source":"nope"}]`
	require.NoError(t, json.Unmarshal([]byte(input), &records))
	require.Len(t, records, 5)

	now := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	rows, skipped := buildRows(records, types.TickerSourceTeam, now, zap.NewNop())

	require.Len(t, rows, 2)
	assert.Equal(t, 3, skipped)
	assert.Equal(t, "AAPL", rows[0].Ticker)
	assert.Equal(t, types.TickerSourceTeam, rows[0].Source)
	assert.True(t, rows[0].IsActive)
	assert.Equal(t, "RY.TO", rows[1].Ticker)
	assert.Equal(t, types.TickerSourceWatchlist, rows[1].Source)
	assert.Equal(t, 3, rows[1].Priority)
	assert.Equal(t, now, rows[1].UpdatedAt)
}
