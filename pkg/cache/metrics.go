package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks responses served straight from the store.
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gatecache_hits_total",
			Help: "Total number of responses served from cache",
		},
	)

	// CacheMisses tracks lookups that found no usable entry.
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gatecache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	// DecodeFailures tracks stored entries that could not be decoded
	// (unknown format version or corrupt payload).
	DecodeFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gatecache_decode_failures_total",
			Help: "Total number of stored entries that failed to decode",
		},
	)

	// storeErrors tracks store operation failures by operation and reason.
	storeErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatecache_store_errors_total",
			Help: "Total number of store operation errors",
		},
		[]string{"operation", "reason"},
	)

	// storeOpDuration tracks store operation latency by operation.
	storeOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gatecache_store_op_duration_seconds",
			Help:    "Store operation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		},
		[]string{"operation"},
	)
)
