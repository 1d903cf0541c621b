// Package middleware implements the response-caching HTTP middleware.
//
// The middleware sits between the gateway's router and its handlers. For
// each request it derives a deterministic key, looks the key up in the
// backing store, and on a hit replays the stored response without invoking
// the handler. On a miss the handler runs once per key per process: a
// single-flight group coalesces concurrent identical misses so N waiting
// callers share one downstream computation and one store write.
//
// Caching is strictly best-effort. Key derivation failures, pool
// exhaustion, store transport errors, and unreadable entries all degrade
// to forwarding the request without cache; only the downstream handler's
// own response ever reaches the caller. A handler panic is recovered
// inside the shared flight and re-raised on each waiting request's own
// goroutine, exactly as if the middleware were not present.
//
// # Usage
//
//	store := cache.NewStore(redisClient, 250*time.Millisecond)
//	keys := cache.NewKeyBuilder(cache.KeyConfig{
//		Namespace:       "gatecache",
//		HeaderAllowlist: []string{"Accept"},
//	})
//
//	mw, err := middleware.New(middleware.Config{
//		Store: store,
//		Keys:  keys,
//		TTL:   5 * time.Minute,
//	})
//	if err != nil {
//		return err
//	}
//
//	http.Handle("/api/", mw.Handler(apiHandler))
//
// Cached responses carry X-Cache: HIT, an Age header, and a Cache-Control
// max-age derived from the remaining freshness window.
//
// # Metrics
//
//   - gatecache_requests_total{outcome} - hit, miss, bypass, cancelled, panic
//   - gatecache_bypass_total{cause} - method, derivation
//   - gatecache_coalesced_requests_total - waiters served by a shared flight
package middleware
