// Package cache provides the building blocks of the response cache:
// deterministic key derivation, the stored entry model with its versioned
// codec, and the Redis store client.
//
// # Keys
//
// A KeyBuilder turns an HTTP request into a fixed-length fingerprint.
// Only the method, cleaned path, sorted query string, allowlisted headers,
// and (for body-bearing methods) a body digest participate:
//
//	keys := cache.NewKeyBuilder(cache.KeyConfig{
//		Namespace:       "gatecache",
//		HeaderAllowlist: []string{"Accept", "Accept-Encoding"},
//	})
//
//	key, err := keys.FromRequest(req)
//	if err != nil {
//		// not cacheable - forward without caching
//	}
//
// Headers outside the allowlist never influence the key; letting arbitrary
// headers leak in would collapse the hit rate.
//
// # Entries
//
// An Entry captures status code, headers in replay order, and the exact
// body bytes, plus the freshness window. Encode prepends a one-byte format
// version so the representation can evolve; Decode refuses unknown
// versions instead of misreading them.
//
//	data, err := cache.Encode(entry)
//	entry, err := cache.Decode(data)
//
// # Store
//
// Store issues GET/SET/DEL against Redis through the client's bounded
// connection pool, with a per-operation timeout. A missing key is
// ErrCacheMiss; every other failure is a *StoreError with a reason code
// (timeout, pool_exhausted, transport):
//
//	store := cache.NewStore(redisClient, 250*time.Millisecond)
//
//	data, err := store.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// compute and store
//	}
//
// # Metrics
//
// The package exports Prometheus metrics:
//
//   - gatecache_hits_total - responses served from cache
//   - gatecache_misses_total - cache misses
//   - gatecache_decode_failures_total - unreadable stored entries
//   - gatecache_store_errors_total{operation,reason} - store failures
//   - gatecache_store_op_duration_seconds{operation} - store latency
package cache
