// internal/common/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)

// Query pipeline metrics.
var (
	QueryRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_requests_total",
			Help: "Resolved utterances by target collection and execution mode",
		},
		[]string{"collection", "mode"},
	)

	QuerySynthesis = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_synthesis_total",
			Help: "Filters produced per synthesis path (llm or fallback)",
		},
		[]string{"path"},
	)

	QueryFilterRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_filter_rejected_total",
			Help: "Filters discarded by the validator",
		},
		[]string{"collection"},
	)

	QueryStoreDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "query_store_duration_seconds",
			Help:    "Document store round-trip duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "operation"},
	)

	QueryLLMRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_llm_requests_total",
			Help: "Completion requests by outcome",
		},
		[]string{"status"},
	)

	QueryCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_cache_lookups_total",
			Help: "Completion cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)
)

// ObserveStore records one store call started at start.
func ObserveStore(backend, operation string, start time.Time) {
	QueryStoreDuration.WithLabelValues(backend, operation).Observe(time.Since(start).Seconds())
}
