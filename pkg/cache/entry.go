package cache

import (
	"net/http"
	"sort"
	"time"
)

// HeaderPair is a single response header. Entries keep headers as an
// ordered slice rather than a map so the stored response replays with the
// exact header sequence it was captured with.
type HeaderPair struct {
	Name  string `json:"n"`
	Value string `json:"v"`
}

// Entry is a cached HTTP response.
type Entry struct {
	// StatusCode is the HTTP status code of the cached response.
	StatusCode int `json:"status_code"`

	// Headers are the response headers in replay order.
	Headers []HeaderPair `json:"headers"`

	// Body is the exact response body. Binary-safe.
	Body []byte `json:"body"`

	// StoredAt is when the response was captured.
	StoredAt time.Time `json:"stored_at"`

	// TTL is how long the entry stays fresh after StoredAt.
	TTL time.Duration `json:"ttl"`
}

// IsExpired returns true if the entry has outlived its TTL.
// The backing store also expires entries natively; this check covers
// clock skew and stores without reliable expiry.
func (e *Entry) IsExpired() bool {
	return time.Now().After(e.StoredAt.Add(e.TTL))
}

// RemainingTTL returns the time until the entry goes stale.
// Returns 0 if already stale.
func (e *Entry) RemainingTTL() time.Duration {
	remaining := time.Until(e.StoredAt.Add(e.TTL))
	if remaining < 0 {
		return 0
	}
	return remaining
}

// HeadersFromHTTP flattens an http.Header map into ordered pairs.
// Names are sorted for determinism; values keep their original order
// within each name.
func HeadersFromHTTP(h http.Header) []HeaderPair {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]HeaderPair, 0, len(h))
	for _, name := range names {
		for _, value := range h[name] {
			pairs = append(pairs, HeaderPair{Name: name, Value: value})
		}
	}
	return pairs
}

// WriteHeadersTo replays the entry's headers onto an http.Header in order.
func (e *Entry) WriteHeadersTo(h http.Header) {
	for _, pair := range e.Headers {
		h.Add(pair.Name, pair.Value)
	}
}
