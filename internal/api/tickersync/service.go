package tickersync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gobapps/gob-api/internal/metrics"
	"github.com/gobapps/gob-api/internal/types"
	"github.com/gobapps/gob-api/internal/utils"
)

type TickerLister interface {
	ListTickers(ctx context.Context, activeOnly bool) ([]types.TickerRegistryRow, error)
}

type Service struct {
	registry TickerLister
	workers  *WorkerPool
}

func NewService(registry TickerLister, workers *WorkerPool) *Service {
	return &Service{registry: registry, workers: workers}
}

// TriggerSync enqueues a refresh and returns the job id.
func (s *Service) TriggerSync(ctx context.Context, tickers []string) (string, error) {
	job, err := s.Enqueue(ctx, tickers)
	if err != nil {
		return "", err
	}
	return job.JobID, nil
}

// Enqueue queues a refresh of tickers, or of every active registry ticker
// when tickers is empty.
func (s *Service) Enqueue(ctx context.Context, tickers []string) (*SyncJob, error) {
	if len(tickers) == 0 {
		rows, err := s.registry.ListTickers(ctx, true)
		if err != nil {
			return nil, fmt.Errorf("failed to list active tickers: %w", err)
		}
		for _, row := range rows {
			tickers = append(tickers, row.Ticker)
		}
	}
	if len(tickers) == 0 {
		return nil, ErrNoTickers
	}

	jobID := uuid.New().String()
	utils.Zlog.Info("Enqueueing sync job",
		zap.String("jobId", jobID),
		zap.Int("tickers", len(tickers)))

	job := SyncJob{
		JobID:     jobID,
		Tickers:   tickers,
		CreatedAt: time.Now().UTC(),
	}
	if ok := s.workers.Enqueue(job); !ok {
		metrics.SyncJobsTotal.WithLabelValues("rejected").Inc()
		return nil, ErrQueueFull
	}
	return &job, nil
}
