package tickersync

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gobapps/gob-api/internal/fmp"
	"github.com/gobapps/gob-api/internal/metrics"
	"github.com/gobapps/gob-api/internal/types"
	"github.com/gobapps/gob-api/internal/utils"
)

// QuoteBatchSize is the number of symbols sent in one FMP quote call.
const QuoteBatchSize = 50

const maxSyncRetries = 3

type SyncJob struct {
	JobID      string
	Tickers    []string
	CreatedAt  time.Time
	RetryCount int
}

// QuoteSource is the subset of the FMP client used by the workers.
type QuoteSource interface {
	Quotes(ctx context.Context, symbols []string) ([]fmp.Quote, error)
	RatiosTTM(ctx context.Context, symbol string) (*fmp.RatiosTTM, error)
}

type CacheWriter interface {
	UpsertTickerRows(ctx context.Context, rows []types.TickerMarketCacheRow) (int, error)
}

type WorkerPool struct {
	jobs       chan SyncJob
	quit       chan struct{}
	started    bool
	wg         sync.WaitGroup
	numWorkers int
	source     QuoteSource
	store      CacheWriter
	ttl        time.Duration
	jobTimeout time.Duration
	now        func() time.Time
	done       func(job SyncJob, result JobResult)
}

// JobResult summarises one processed attempt of a job.
type JobResult struct {
	Written int
	Missing []string
	Failed  []string
	Err     error
}

func NewWorkerPool(numWorkers int, queueCapacity int, source QuoteSource, store CacheWriter, ttl time.Duration) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if queueCapacity <= 0 {
		queueCapacity = 100
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &WorkerPool{
		jobs:       make(chan SyncJob, queueCapacity),
		quit:       make(chan struct{}),
		numWorkers: numWorkers,
		source:     source,
		store:      store,
		ttl:        ttl,
		jobTimeout: 5 * time.Minute,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (wp *WorkerPool) Start() {
	if wp.started {
		return
	}
	wp.started = true
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go func(workerID int) {
			defer wp.wg.Done()
			utils.Zlog.Info("Sync worker started", zap.Int("workerId", workerID))
			for {
				select {
				case <-wp.quit:
					utils.Zlog.Info("Sync worker stopping", zap.Int("workerId", workerID))
					return
				case job := <-wp.jobs:
					wp.processJob(workerID, job)
				}
			}
		}(i + 1)
	}
}

func (wp *WorkerPool) Stop(ctx context.Context) {
	if !wp.started {
		return
	}
	close(wp.quit)
	done := make(chan struct{})
	go func() {
		wp.wg.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		utils.Zlog.Warn("Timeout waiting for sync workers to stop")
	case <-done:
		utils.Zlog.Info("All sync workers stopped")
	}
}

// Enqueue never blocks; it reports false when the pool is stopped or full.
func (wp *WorkerPool) Enqueue(job SyncJob) bool {
	select {
	case <-wp.quit:
		return false
	default:
	}
	select {
	case wp.jobs <- job:
		return true
	default:
		return false
	}
}

func (wp *WorkerPool) processJob(workerID int, job SyncJob) {
	start := time.Now()
	utils.Zlog.Info("Processing sync job",
		zap.Int("workerId", workerID),
		zap.String("jobId", job.JobID),
		zap.Int("tickers", len(job.Tickers)),
		zap.Int("retryCount", job.RetryCount))

	ctx, cancel := context.WithTimeout(context.Background(), wp.jobTimeout)
	defer cancel()

	result := wp.sync(ctx, job)
	if wp.done != nil {
		wp.done(job, result)
	}

	switch {
	case result.Err != nil:
		utils.Zlog.Error("Sync job failed to persist rows",
			zap.String("jobId", job.JobID),
			zap.Error(result.Err))
		wp.requeueFailed(workerID, job, job.Tickers)
	case len(result.Failed) > 0:
		utils.Zlog.Warn("Sync job partially completed",
			zap.String("jobId", job.JobID),
			zap.Int("written", result.Written),
			zap.Int("failed", len(result.Failed)))
		metrics.SyncJobsTotal.WithLabelValues("partial").Inc()
		wp.requeueFailed(workerID, job, result.Failed)
	default:
		metrics.SyncJobsTotal.WithLabelValues("success").Inc()
	}

	utils.Zlog.Info("Sync job finished",
		zap.Int("workerId", workerID),
		zap.String("jobId", job.JobID),
		zap.Int("written", result.Written),
		zap.Int("missing", len(result.Missing)),
		zap.Duration("duration", time.Since(start)))
}

// sync refreshes every ticker of the job. Quotes are fetched per batch;
// a failed batch marks its tickers as failed without stopping the others.
// Tickers FMP does not know are reported as missing and never retried.
func (wp *WorkerPool) sync(ctx context.Context, job SyncJob) JobResult {
	var result JobResult
	var rows []types.TickerMarketCacheRow

	for start := 0; start < len(job.Tickers); start += QuoteBatchSize {
		end := start + QuoteBatchSize
		if end > len(job.Tickers) {
			end = len(job.Tickers)
		}
		batch := job.Tickers[start:end]

		quotes, err := wp.source.Quotes(ctx, batch)
		if err != nil && !errors.Is(err, fmp.ErrNotFound) {
			utils.Zlog.Error("Failed to fetch quote batch",
				zap.String("jobId", job.JobID),
				zap.Int("batchSize", len(batch)),
				zap.Error(err))
			result.Failed = append(result.Failed, batch...)
			continue
		}

		bySymbol := make(map[string]fmp.Quote, len(quotes))
		for _, q := range quotes {
			bySymbol[q.Symbol] = q
		}
		for _, ticker := range batch {
			q, ok := bySymbol[ticker]
			if !ok {
				result.Missing = append(result.Missing, ticker)
				continue
			}
			rows = append(rows, wp.buildRow(ctx, q))
		}
	}

	if len(rows) == 0 {
		return result
	}
	written, err := wp.store.UpsertTickerRows(ctx, rows)
	result.Written = written
	result.Err = err
	return result
}

// buildRow merges a quote with TTM ratios. Ratio failures leave the ratio
// columns empty.
func (wp *WorkerPool) buildRow(ctx context.Context, q fmp.Quote) types.TickerMarketCacheRow {
	now := wp.now()
	row := types.TickerMarketCacheRow{
		Ticker:        q.Symbol,
		CurrentPrice:  q.Price,
		ChangePercent: q.ChangesPercentage,
		ChangeAmount:  q.Change,
		Volume:        q.Volume,
		MarketCap:     q.MarketCap,
		PERatio:       q.PE,
		UpdatedAt:     now,
		ExpiresAt:     now.Add(wp.ttl),
	}

	ratios, err := wp.source.RatiosTTM(ctx, q.Symbol)
	if err != nil {
		utils.Zlog.Debug("No TTM ratios for ticker", zap.String("ticker", q.Symbol), zap.Error(err))
		return row
	}
	row.PCFRatio = ratios.PriceToCashFlow
	row.PBVRatio = ratios.PriceToBook
	row.DividendYield = ratios.Yield()
	if row.PERatio == nil {
		row.PERatio = ratios.PERatio
	}
	return row
}

func (wp *WorkerPool) requeueFailed(workerID int, originalJob SyncJob, failed []string) {
	if originalJob.RetryCount >= maxSyncRetries {
		utils.Zlog.Error("Sync job exceeded max retries, dropping tickers",
			zap.Int("workerId", workerID),
			zap.String("jobId", originalJob.JobID),
			zap.Int("tickers", len(failed)),
			zap.Int("retryCount", originalJob.RetryCount))
		metrics.SyncJobsTotal.WithLabelValues("failed").Inc()
		return
	}

	retryJob := SyncJob{
		JobID:      originalJob.JobID,
		Tickers:    failed,
		CreatedAt:  time.Now().UTC(),
		RetryCount: originalJob.RetryCount + 1,
	}
	if ok := wp.Enqueue(retryJob); !ok {
		utils.Zlog.Error("Failed to requeue sync job (queue full)",
			zap.Int("workerId", workerID),
			zap.String("jobId", retryJob.JobID),
			zap.Int("tickers", len(failed)))
		metrics.SyncJobsTotal.WithLabelValues("dropped").Inc()
		return
	}
	utils.Zlog.Info("Requeued failed tickers for retry",
		zap.Int("workerId", workerID),
		zap.String("jobId", retryJob.JobID),
		zap.Int("tickers", len(failed)),
		zap.Int("retryCount", retryJob.RetryCount))
}
