// Package metrics declares the Prometheus collectors exposed on /metrics.
package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CacheLookupsTotal counts tickers served by the batch endpoint per freshness partition.
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gob_cache_lookups_total",
			Help: "Tickers returned by cache reads, by freshness partition",
		},
		[]string{"cache", "partition"},
	)

	FanoutResultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gob_fanout_results_total",
			Help: "Per-symbol outcomes of batch fan-out requests",
		},
		[]string{"outcome"},
	)

	BriefingRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gob_briefing_runs_total",
			Help: "Briefing pipeline runs by type and outcome",
		},
		[]string{"type", "outcome"},
	)

	SMSIntentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gob_sms_intents_total",
			Help: "Detected SMS intents",
		},
		[]string{"intent"},
	)

	SyncJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gob_sync_jobs_total",
			Help: "Ticker cache sync jobs by outcome",
		},
		[]string{"outcome"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gob_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status class",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)
)

// RecordPartition adds one batch result to CacheLookupsTotal.
func RecordPartition(cache string, fresh, stale, missing int) {
	CacheLookupsTotal.WithLabelValues(cache, "fresh").Add(float64(fresh))
	CacheLookupsTotal.WithLabelValues(cache, "stale").Add(float64(stale))
	CacheLookupsTotal.WithLabelValues(cache, "missing").Add(float64(missing))
}

// Middleware observes request latency under the matched route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestDuration.
			WithLabelValues(route, c.Request.Method, statusClass(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
