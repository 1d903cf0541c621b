package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// requestsTotal tracks requests through the middleware by outcome
	// (hit, miss, bypass, cancelled, panic).
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatecache_requests_total",
			Help: "Total requests through the cache middleware by outcome",
		},
		[]string{"outcome"},
	)

	// bypassTotal tracks requests that skipped caching entirely, by cause.
	bypassTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatecache_bypass_total",
			Help: "Total requests that bypassed the cache by cause",
		},
		[]string{"cause"},
	)

	// coalescedTotal tracks waiters that shared another request's
	// in-flight computation instead of invoking the handler themselves.
	coalescedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gatecache_coalesced_requests_total",
			Help: "Total requests served from a shared in-flight computation",
		},
	)
)
