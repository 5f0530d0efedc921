package companydata

import (
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/gobapps/gob-api/internal/fmp"
)

// MaxBatchSymbols caps one fan-out request.
const MaxBatchSymbols = 10

var (
	ErrSymbolRequired = errors.New("symbol parameter is required")
	ErrNoSymbols      = errors.New("symbols parameter is required (comma-separated)")
	ErrTooManySymbols = fmt.Errorf("maximum %d symbols per request", MaxBatchSymbols)
)

// parseSymbols trims and uppercases a comma list and drops empty entries.
// Repeated symbols are kept so each input position gets its own result.
func parseSymbols(csv string) []string {
	var symbols []string
	for _, part := range strings.Split(csv, ",") {
		if s := strings.ToUpper(strings.TrimSpace(part)); s != "" {
			symbols = append(symbols, s)
		}
	}
	return symbols
}

type CompanyInfo struct {
	Symbol      string   `json:"symbol"`
	Name        string   `json:"name"`
	Sector      string   `json:"sector"`
	Industry    string   `json:"industry"`
	MarketCap   string   `json:"marketCap"`
	Logo        string   `json:"logo"`
	Country     string   `json:"country"`
	Exchange    string   `json:"exchange"`
	Currency    string   `json:"currency"`
	Beta        *float64 `json:"beta"`
	Description string   `json:"description,omitempty"`
	Website     string   `json:"website,omitempty"`
}

type CompanyData struct {
	Success      bool                     `json:"success"`
	Info         CompanyInfo              `json:"info"`
	Quote        *fmp.Quote               `json:"quote"`
	CurrentPrice *float64                 `json:"currentPrice"`
	Data         []map[string]interface{} `json:"data"`
}

// BatchItem is the outcome for one symbol; Data holds the single-symbol
// response body verbatim.
type BatchItem struct {
	Symbol  string          `json:"symbol"`
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Status  int             `json:"status,omitempty"`
}

type BatchStats struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Errors  int `json:"errors"`
}

type BatchResponse struct {
	Success bool        `json:"success"`
	Results []BatchItem `json:"results"`
	Stats   BatchStats  `json:"stats"`
}

// formatMarketCap renders a market cap as 2.95T, 812.40B, 15.00M or a plain number.
func formatMarketCap(v *float64) string {
	if v == nil || *v == 0 {
		return "N/A"
	}
	n := *v
	switch {
	case n >= 1e12:
		return fmt.Sprintf("%.2fT", n/1e12)
	case n >= 1e9:
		return fmt.Sprintf("%.2fB", n/1e9)
	case n >= 1e6:
		return fmt.Sprintf("%.2fM", n/1e6)
	}
	return fmt.Sprintf("%.0f", n)
}
