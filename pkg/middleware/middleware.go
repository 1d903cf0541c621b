package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/gatecache/gatecache/pkg/cache"
)

// DefaultTTL is the freshness window applied when none is configured.
const DefaultTTL = 5 * time.Minute

// Config holds the middleware configuration.
type Config struct {
	// Store is the Redis store client. Required.
	Store *cache.Store

	// Keys derives cache keys from requests. Required.
	Keys *cache.KeyBuilder

	// TTL is the freshness window for stored responses.
	// Zero selects DefaultTTL.
	TTL time.Duration

	// Policy decides which methods and statuses qualify for caching.
	// The zero value selects DefaultPolicy.
	Policy Policy
}

// Middleware caches downstream handler responses in the backing store.
//
// Per request it derives a key, attempts a lookup, and on a hit replays
// the stored response. On a miss it forwards to the downstream handler
// through a per-key single-flight group, so concurrent identical misses
// trigger exactly one downstream invocation per process. Every failure on
// the caching path degrades to forwarding without cache; caching is never
// a source of request failure.
type Middleware struct {
	store   *cache.Store
	keys    *cache.KeyBuilder
	ttl     time.Duration
	policy  Policy
	flights singleflight.Group
	logger  zerolog.Logger
}

// New creates a cache middleware.
func New(cfg Config) (*Middleware, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.Keys == nil {
		return nil, fmt.Errorf("key builder is required")
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	policy := cfg.Policy
	if policy.methods == nil {
		policy = DefaultPolicy()
	}

	return &Middleware{
		store:  cfg.Store,
		keys:   cfg.Keys,
		ttl:    ttl,
		policy: policy,
		logger: log.With().Str("component", "cache-middleware").Logger(),
	}, nil
}

// Handler wraps a downstream handler with response caching.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.policy.MethodCacheable(r.Method) {
			bypassTotal.WithLabelValues("method").Inc()
			requestsTotal.WithLabelValues("bypass").Inc()
			next.ServeHTTP(w, r)
			return
		}

		key, err := m.keys.FromRequest(r)
		if err != nil {
			// Underivable key means "not cacheable", never "failed".
			m.logger.Debug().Err(err).Str("path", r.URL.Path).Msg("Key derivation failed, bypassing cache")
			bypassTotal.WithLabelValues("derivation").Inc()
			requestsTotal.WithLabelValues("bypass").Inc()
			next.ServeHTTP(w, r)
			return
		}

		if entry, ok := m.lookup(r.Context(), key); ok {
			requestsTotal.WithLabelValues("hit").Inc()
			m.logger.Debug().
				Str("path", r.URL.Path).
				Dur("remaining_ttl", entry.RemainingTTL()).
				Msg("Cache hit")
			m.writeEntry(w, entry, "HIT", true)
			return
		}

		m.forward(w, r, next, key)
	})
}

// lookup fetches and decodes the stored entry for key.
// Any failure (store error, unreadable entry, expiry) reads as a miss.
func (m *Middleware) lookup(ctx context.Context, key cache.Key) (*cache.Entry, bool) {
	data, err := m.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			cache.CacheMisses.Inc()
			return nil, false
		}
		// Store trouble degrades to a miss; the request must not fail.
		m.logger.Warn().Err(err).Msg("Cache lookup error, treating as miss")
		cache.CacheMisses.Inc()
		return nil, false
	}

	entry, err := cache.Decode(data)
	if err != nil {
		// Unknown format version or corrupt payload: evict so the slot
		// gets rewritten in the current format.
		m.logger.Warn().Err(err).Msg("Stored entry unreadable, evicting")
		cache.DecodeFailures.Inc()
		cache.CacheMisses.Inc()
		if derr := m.store.Delete(ctx, key); derr != nil {
			m.logger.Debug().Err(derr).Msg("Evicting unreadable entry failed")
		}
		return nil, false
	}

	if entry.IsExpired() {
		cache.CacheMisses.Inc()
		if derr := m.store.Delete(ctx, key); derr != nil {
			m.logger.Debug().Err(derr).Msg("Evicting expired entry failed")
		}
		return nil, false
	}

	cache.CacheHits.Inc()
	return entry, true
}

// handlerPanic carries a recovered downstream panic out of the flight
// goroutine as an error, so it can be re-raised on each caller's own
// goroutine where net/http's per-request recovery applies.
type handlerPanic struct {
	value interface{}
}

func (p *handlerPanic) Error() string {
	return fmt.Sprintf("downstream handler panicked: %v", p.value)
}

// forward invokes the downstream handler through the per-key single-flight
// group and replays the shared result. Only the first caller for a key
// actually runs the handler; concurrent peers wait for its outcome.
func (m *Middleware) forward(w http.ResponseWriter, r *http.Request, next http.Handler, key cache.Key) {
	ch := m.flights.DoChan(key.String(), func() (val interface{}, err error) {
		// A panic must not escape here: singleflight would re-raise it on
		// an unrecoverable goroutine and kill the process. ReverseProxy
		// alone panics with http.ErrAbortHandler on upstream body errors.
		defer func() {
			if rec := recover(); rec != nil {
				err = &handlerPanic{value: rec}
			}
		}()

		rec := newResponseRecorder()
		next.ServeHTTP(rec, r)

		entry := rec.entry(m.ttl)
		if m.policy.ResponseCacheable(r.Method, entry.StatusCode) {
			m.storeEntry(r.Context(), key, entry)
		}
		return entry, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			requestsTotal.WithLabelValues("panic").Inc()
			var hp *handlerPanic
			if errors.As(res.Err, &hp) {
				// Re-raise on this request's goroutine; the server's
				// per-request recovery handles it as if the middleware
				// were absent. Each waiter fails independently.
				panic(hp.value)
			}
			panic(res.Err)
		}
		entry := res.Val.(*cache.Entry)
		if res.Shared {
			coalescedTotal.Inc()
		}
		requestsTotal.WithLabelValues("miss").Inc()
		cacheable := m.policy.ResponseCacheable(r.Method, entry.StatusCode)
		m.writeEntry(w, entry, "MISS", cacheable)
	case <-r.Context().Done():
		// The waiter stops waiting; the shared computation keeps running
		// for its remaining peers.
		requestsTotal.WithLabelValues("cancelled").Inc()
	}
}

// storeEntry encodes and writes an entry. The write context is detached
// from client cancellation so an impatient client cannot abort a write
// shared with coalesced peers. Failures are logged and swallowed.
func (m *Middleware) storeEntry(ctx context.Context, key cache.Key, entry *cache.Entry) {
	data, err := cache.Encode(entry)
	if err != nil {
		m.logger.Warn().Err(err).Msg("Encoding response for cache failed")
		return
	}

	writeCtx := context.WithoutCancel(ctx)
	if err := m.store.Set(writeCtx, key, data, m.ttl); err != nil {
		m.logger.Warn().Err(err).Msg("Caching response failed")
		return
	}

	m.logger.Debug().
		Dur("ttl", m.ttl).
		Int("bytes", len(data)).
		Msg("Cached response")
}

// writeEntry replays a cache entry to the client.
func (m *Middleware) writeEntry(w http.ResponseWriter, entry *cache.Entry, source string, cacheable bool) {
	entry.WriteHeadersTo(w.Header())
	if cacheable {
		w.Header().Set("Cache-Control", fmt.Sprintf("max-age=%d", int(entry.RemainingTTL().Seconds())))
		w.Header().Set("Age", strconv.Itoa(int(time.Since(entry.StoredAt).Seconds())))
	}
	w.Header().Set("X-Cache", source)
	w.WriteHeader(entry.StatusCode)
	if len(entry.Body) > 0 {
		if _, err := w.Write(entry.Body); err != nil {
			m.logger.Debug().Err(err).Msg("Writing response body failed")
		}
	}
}

// Invalidate removes the cached response for the request's key.
// This is the explicit invalidation path for collaborators.
func (m *Middleware) Invalidate(ctx context.Context, r *http.Request) error {
	key, err := m.keys.FromRequest(r)
	if err != nil {
		return err
	}
	return m.store.Delete(ctx, key)
}
