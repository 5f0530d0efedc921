package types

import (
	"time"

	json "github.com/goccy/go-json"
)

// ====== CACHE ROWS ======

// TickerMarketCacheRow is one row of ticker_market_cache. The writer sets
// ExpiresAt; readers never change it.
type TickerMarketCacheRow struct {
	Ticker        string    `json:"ticker"`
	CurrentPrice  *float64  `json:"current_price"`
	ChangePercent *float64  `json:"change_percent"`
	ChangeAmount  *float64  `json:"change_amount"`
	Volume        *float64  `json:"volume"`
	MarketCap     *float64  `json:"market_cap"`
	PERatio       *float64  `json:"pe_ratio"`
	PCFRatio      *float64  `json:"pcf_ratio"`
	PBVRatio      *float64  `json:"pbv_ratio"`
	DividendYield *float64  `json:"dividend_yield"`
	UpdatedAt     time.Time `json:"updated_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// DailyCacheEntry is one row of daily_market_cache keyed by (Date, CacheType).
type DailyCacheEntry struct {
	Date      string          `json:"date"`
	CacheType string          `json:"cache_type"`
	Data      json.RawMessage `json:"data"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ====== CONFIG ======

type AppConfigEntry struct {
	ConfigKey      string          `json:"config_key"`
	ConfigCategory string          `json:"config_category"`
	ConfigValue    json.RawMessage `json:"config_value"`
	Description    string          `json:"description,omitempty"`
	IsActive       bool            `json:"is_active"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ====== TICKER REGISTRY ======

type TickerSource string

const (
	TickerSourceTeam      TickerSource = "team"
	TickerSourceWatchlist TickerSource = "watchlist"
	TickerSourceBoth      TickerSource = "both"
	TickerSourceManual    TickerSource = "manual"
)

func (s TickerSource) Valid() bool {
	switch s {
	case TickerSourceTeam, TickerSourceWatchlist, TickerSourceBoth, TickerSourceManual:
		return true
	default:
		return false
	}
}

type TickerRegistryRow struct {
	Ticker      string       `json:"ticker"`
	Source      TickerSource `json:"source"`
	IsActive    bool         `json:"is_active"`
	CompanyName string       `json:"company_name,omitempty"`
	Exchange    string       `json:"exchange,omitempty"`
	Country     string       `json:"country,omitempty"`
	Priority    int          `json:"priority"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// ====== BRIEFINGS ======

type BriefingArchive struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	JSON       json.RawMessage `json:"json"`
	HTML       string          `json:"html"`
	Recipients []string        `json:"recipients"`
	SentAt     time.Time       `json:"sent_at"`
}
