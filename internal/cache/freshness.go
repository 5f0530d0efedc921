// Package cache holds the freshness rules shared by the read-through cache
// endpoints. Nothing here touches storage; callers pass rows and a clock value.
package cache

import (
	"strings"
	"time"

	"github.com/gobapps/gob-api/internal/types"
)

const (
	// MaxBatchTickers is the hard ceiling for one market-data batch request.
	MaxBatchTickers = 100
	// MaxCacheAge is how long a daily cache entry stays fresh.
	MaxCacheAge = 2 * time.Hour
)

type BatchStats struct {
	Total   int `json:"total"`
	Fresh   int `json:"fresh"`
	Stale   int `json:"stale"`
	Missing int `json:"missing"`
}

// BatchResult is the freshness partition of a ticker batch. Data carries every
// stored row, fresh or stale.
type BatchResult struct {
	Data           []types.TickerMarketCacheRow `json:"data"`
	Stats          BatchStats                   `json:"stats"`
	MissingTickers []string                     `json:"missingTickers"`
	StaleTickers   []string                     `json:"staleTickers"`
}

// IsFresh reports whether a ticker row may still be served as current.
func IsFresh(row types.TickerMarketCacheRow, now time.Time) bool {
	return now.Before(row.ExpiresAt)
}

// PartitionTickers splits the requested tickers into fresh, stale and missing
// using the rows the store returned. Rows for tickers that were not requested
// are ignored. Output slices follow request order.
func PartitionTickers(requested []string, rows []types.TickerMarketCacheRow, now time.Time) BatchResult {
	byTicker := make(map[string]types.TickerMarketCacheRow, len(rows))
	for _, row := range rows {
		byTicker[strings.ToUpper(row.Ticker)] = row
	}

	result := BatchResult{
		Data:           make([]types.TickerMarketCacheRow, 0, len(rows)),
		MissingTickers: []string{},
		StaleTickers:   []string{},
	}
	result.Stats.Total = len(requested)

	for _, ticker := range requested {
		row, ok := byTicker[ticker]
		if !ok {
			result.Stats.Missing++
			result.MissingTickers = append(result.MissingTickers, ticker)
			continue
		}
		result.Data = append(result.Data, row)
		if IsFresh(row, now) {
			result.Stats.Fresh++
		} else {
			result.Stats.Stale++
			result.StaleTickers = append(result.StaleTickers, ticker)
		}
	}
	return result
}

// DailyFreshness describes the age of a daily cache entry.
type DailyFreshness struct {
	AgeHours float64
	Expired  bool
}

// EvaluateDaily computes the age of an entry against MaxCacheAge. Stale entries
// are still returned to callers, flagged as expired.
func EvaluateDaily(entry types.DailyCacheEntry, now time.Time) DailyFreshness {
	age := now.Sub(entry.UpdatedAt)
	return DailyFreshness{
		AgeHours: age.Hours(),
		Expired:  age >= MaxCacheAge,
	}
}

// NormalizeTickers parses a comma-separated ticker list: trimmed, uppercased,
// blanks dropped, first occurrence kept.
func NormalizeTickers(csv string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, raw := range strings.Split(csv, ",") {
		ticker := strings.ToUpper(strings.TrimSpace(raw))
		if ticker == "" || seen[ticker] {
			continue
		}
		seen[ticker] = true
		out = append(out, ticker)
	}
	return out
}
