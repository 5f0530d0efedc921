package dailycache

import (
	"context"
	"time"

	json "github.com/goccy/go-json"

	"github.com/gobapps/gob-api/internal/cache"
	"github.com/gobapps/gob-api/internal/metrics"
	"github.com/gobapps/gob-api/internal/types"
)

type Store interface {
	GetDailyCache(ctx context.Context, cacheType, date string) (*types.DailyCacheEntry, error)
	UpsertDailyCache(ctx context.Context, entry types.DailyCacheEntry) error
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Lookup returns the entry for (cacheType, date). Stale entries are returned
// with Expired set.
func (s *Service) Lookup(ctx context.Context, cacheType, date string) (*LookupResponse, error) {
	entry, err := s.store.GetDailyCache(ctx, cacheType, date)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		metrics.RecordPartition("daily", 0, 0, 1)
		return &LookupResponse{Success: true, Cached: false, Data: json.RawMessage("null")}, nil
	}

	fresh := cache.EvaluateDaily(*entry, s.now())
	if fresh.Expired {
		metrics.RecordPartition("daily", 0, 1, 0)
	} else {
		metrics.RecordPartition("daily", 1, 0, 0)
	}
	updatedAt := entry.UpdatedAt
	return &LookupResponse{
		Success:   true,
		Cached:    true,
		Data:      entry.Data,
		AgeHours:  &fresh.AgeHours,
		Expired:   &fresh.Expired,
		UpdatedAt: &updatedAt,
	}, nil
}

func (s *Service) Save(ctx context.Context, cacheType, date string, data json.RawMessage) error {
	return s.store.UpsertDailyCache(ctx, types.DailyCacheEntry{
		Date:      date,
		CacheType: cacheType,
		Data:      data,
		UpdatedAt: s.now().UTC(),
	})
}
