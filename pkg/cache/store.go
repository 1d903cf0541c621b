package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss indicates the requested key was not found in the store.
// A miss is a normal outcome, distinct from a transport failure.
var ErrCacheMiss = errors.New("cache miss")

// StoreReason classifies a store failure.
type StoreReason string

const (
	// ReasonTimeout means the per-operation deadline elapsed.
	ReasonTimeout StoreReason = "timeout"

	// ReasonPoolExhausted means no pooled connection became available
	// within the pool's acquire timeout.
	ReasonPoolExhausted StoreReason = "pool_exhausted"

	// ReasonTransport covers connection resets, protocol errors, and
	// every other transport-level fault.
	ReasonTransport StoreReason = "transport"
)

// StoreError is the single error type surfaced for store failures.
// Callers never see transport-specific detail beyond the reason code.
type StoreError struct {
	Op     string
	Reason StoreReason
	Err    error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s failed (%s): %v", e.Op, e.Reason, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// DefaultOpTimeout bounds each store operation when no timeout is configured.
const DefaultOpTimeout = 250 * time.Millisecond

// Store issues GET/SET/DEL operations against the backing Redis store over
// the client's bounded connection pool. Each operation leases a pooled
// connection for its duration only and carries its own timeout.
type Store struct {
	rdb       *redis.Client
	opTimeout time.Duration
}

// NewStore creates a store client. opTimeout bounds every individual
// operation; zero selects DefaultOpTimeout.
func NewStore(rdb *redis.Client, opTimeout time.Duration) *Store {
	if rdb == nil {
		panic("redis client cannot be nil")
	}
	if opTimeout <= 0 {
		opTimeout = DefaultOpTimeout
	}
	return &Store{
		rdb:       rdb,
		opTimeout: opTimeout,
	}
}

// Get retrieves the raw value stored under key.
// Returns ErrCacheMiss if the key does not exist.
func (s *Store) Get(ctx context.Context, key Key) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	start := time.Now()
	data, err := s.rdb.Get(ctx, key.String()).Bytes()
	storeOpDuration.WithLabelValues("get").Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		storeErrors.WithLabelValues("get", string(classify(err))).Inc()
		return nil, &StoreError{Op: "get", Reason: classify(err), Err: err}
	}
	return data, nil
}

// Set stores data under key with the given TTL. The store expires the
// entry natively once the TTL elapses. Write failures are reported but
// callers treat them as non-fatal: caching is best-effort.
func (s *Store) Set(ctx context.Context, key Key, data []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	start := time.Now()
	err := s.rdb.Set(ctx, key.String(), data, ttl).Err()
	storeOpDuration.WithLabelValues("set").Observe(time.Since(start).Seconds())

	if err != nil {
		storeErrors.WithLabelValues("set", string(classify(err))).Inc()
		return &StoreError{Op: "set", Reason: classify(err), Err: err}
	}
	return nil
}

// Delete removes the entry stored under key. Used for explicit
// invalidation and for evicting unreadable entries.
func (s *Store) Delete(ctx context.Context, key Key) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	start := time.Now()
	err := s.rdb.Del(ctx, key.String()).Err()
	storeOpDuration.WithLabelValues("delete").Observe(time.Since(start).Seconds())

	if err != nil {
		storeErrors.WithLabelValues("delete", string(classify(err))).Inc()
		return &StoreError{Op: "delete", Reason: classify(err), Err: err}
	}
	return nil
}

// classify maps a raw go-redis error onto a store reason code.
func classify(err error) StoreReason {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case strings.Contains(err.Error(), "connection pool timeout"):
		// go-redis does not export its pool timeout error type.
		return ReasonPoolExhausted
	default:
		return ReasonTransport
	}
}
