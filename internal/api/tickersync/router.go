package tickersync

import (
	"github.com/gin-gonic/gin"

	"github.com/gobapps/gob-api/internal/config"
)

// RegisterRoutes starts the sync worker pool and mounts POST /fmp-batch-sync.
// The returned service doubles as the scheduler's sync trigger and the pool
// must be stopped by the caller.
func RegisterRoutes(router *gin.RouterGroup, registry TickerLister, source QuoteSource, store CacheWriter, cfg *config.Config) (*Service, *WorkerPool) {
	queueCapacity := cfg.BatchSize * cfg.WorkerCount
	if queueCapacity <= 0 {
		queueCapacity = 100
	}

	workers := NewWorkerPool(cfg.WorkerCount, queueCapacity, source, store, cfg.TickerCacheTTL)
	workers.Start()

	service := NewService(registry, workers)
	controller := NewController(service)
	router.POST("/fmp-batch-sync", controller.Sync)
	return service, workers
}
