package tickers

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/gobapps/gob-api/internal/types"
)

var (
	ErrNotFound      = errors.New("ticker not found")
	ErrInvalidTicker = errors.New("invalid ticker format")
)

// tickerPattern admits exchange suffixes such as RY.TO and share classes such as BRK-B.
var tickerPattern = regexp.MustCompile(`^[A-Z0-9]{1,6}([.\-][A-Z0-9]{1,4})?$`)

// NormalizeTicker uppercases and validates a symbol.
func NormalizeTicker(raw string) (string, error) {
	t := strings.ToUpper(strings.TrimSpace(raw))
	if !tickerPattern.MatchString(t) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTicker, raw)
	}
	return t, nil
}

type TeamRequest struct {
	Ticker      string `json:"ticker" binding:"required"`
	Priority    *int   `json:"priority"`
	CompanyName string `json:"company_name"`
}

type RegistryRequest struct {
	Ticker      string             `json:"ticker" binding:"required"`
	Source      types.TickerSource `json:"source" binding:"required"`
	IsActive    *bool              `json:"is_active"`
	CompanyName string             `json:"company_name"`
	Exchange    string             `json:"exchange"`
	Country     string             `json:"country"`
	Priority    int                `json:"priority"`
}

type TeamResponse struct {
	Success   bool                      `json:"success"`
	Team      []types.TickerRegistryRow `json:"team"`
	Watchlist []types.TickerRegistryRow `json:"watchlist"`
	Count     int                       `json:"count"`
}
