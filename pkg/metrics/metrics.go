// Package metrics provides the centralized Prometheus metrics reference
// for the cache. All metrics are defined in their respective packages
// (cache, middleware) to maintain modularity and avoid circular
// dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the cache.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - gatecache_hits_total (Counter): Responses served from the store
//   - gatecache_misses_total (Counter): Cache misses
//   - gatecache_decode_failures_total (Counter): Stored entries that failed to decode
//   - gatecache_store_errors_total{operation, reason} (Counter): Store operation
//     failures by operation (get, set, delete) and reason (timeout,
//     pool_exhausted, transport)
//   - gatecache_store_op_duration_seconds{operation} (Histogram): Store latency
//
// Middleware Metrics (pkg/middleware):
//   - gatecache_requests_total{outcome} (Counter): Requests by outcome
//     (hit, miss, bypass, cancelled, panic)
//   - gatecache_bypass_total{cause} (Counter): Cache bypasses by cause
//     (method, derivation)
//   - gatecache_coalesced_requests_total (Counter): Waiters served by a
//     shared in-flight computation
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(gatecache_hits_total[5m])) /
//   (sum(rate(gatecache_hits_total[5m])) + sum(rate(gatecache_misses_total[5m])))
//
//   # Store Error Rate by Reason
//   sum(rate(gatecache_store_errors_total[5m])) by (reason)
//
//   # Pool Exhaustion
//   rate(gatecache_store_errors_total{reason="pool_exhausted"}[5m])
//
//   # P95 Store Latency
//   histogram_quantile(0.95, rate(gatecache_store_op_duration_seconds_bucket[5m]))
//
//   # Stampede Savings
//   rate(gatecache_coalesced_requests_total[5m])
