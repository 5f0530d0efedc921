package marketdata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gobapps/gob-api/internal/cache"
	"github.com/gobapps/gob-api/internal/metrics"
	"github.com/gobapps/gob-api/internal/types"
	"github.com/gobapps/gob-api/internal/utils"
)

var (
	ErrNoTickers      = errors.New("tickers parameter is required")
	ErrTooManyTickers = fmt.Errorf("maximum %d tickers per request", cache.MaxBatchTickers)
)

type TickerReader interface {
	GetTickerRows(ctx context.Context, tickers []string) ([]types.TickerMarketCacheRow, error)
}

type Service struct {
	store TickerReader
	now   func() time.Time
}

func NewService(store TickerReader) *Service {
	return &Service{store: store, now: time.Now}
}

// Batch reads the cached rows for tickers and partitions them by freshness.
// Tickers must already be normalized.
func (s *Service) Batch(ctx context.Context, tickers []string) (*cache.BatchResult, error) {
	if len(tickers) == 0 {
		return nil, ErrNoTickers
	}
	if len(tickers) > cache.MaxBatchTickers {
		return nil, ErrTooManyTickers
	}

	rows, err := s.store.GetTickerRows(ctx, tickers)
	if err != nil {
		return nil, err
	}

	result := cache.PartitionTickers(tickers, rows, s.now())
	metrics.RecordPartition("ticker", result.Stats.Fresh, result.Stats.Stale, result.Stats.Missing)
	utils.Zlog.Debug("Market data batch served",
		zap.Int("requested", result.Stats.Total),
		zap.Int("fresh", result.Stats.Fresh),
		zap.Int("stale", result.Stats.Stale),
		zap.Int("missing", result.Stats.Missing))
	return &result, nil
}
