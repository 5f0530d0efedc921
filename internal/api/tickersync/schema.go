package tickersync

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobapps/gob-api/internal/api/tickers"
	"github.com/gobapps/gob-api/internal/cache"
)

var (
	ErrNoTickers = errors.New("no tickers to sync")
	ErrQueueFull = errors.New("sync queue is full, try again later")
)

// MaxSyncTickers bounds one explicit sync request.
const MaxSyncTickers = 1000

type SyncRequest struct {
	Tickers []string `json:"tickers"`
}

type SyncResponse struct {
	Success bool     `json:"success"`
	JobID   string   `json:"jobId"`
	Tickers []string `json:"tickers"`
	Message string   `json:"message"`
}

// normalize applies the cache key rules to an explicit ticker list and
// rejects anything that is not a plain symbol.
func (r SyncRequest) normalize() ([]string, error) {
	symbols := cache.NormalizeTickers(strings.Join(r.Tickers, ","))
	if len(symbols) > MaxSyncTickers {
		return nil, fmt.Errorf("too many tickers: %d (max %d)", len(symbols), MaxSyncTickers)
	}
	for _, symbol := range symbols {
		if _, err := tickers.NormalizeTicker(symbol); err != nil {
			return nil, err
		}
	}
	return symbols, nil
}
