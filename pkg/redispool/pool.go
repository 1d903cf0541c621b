// Package redispool constructs the bounded Redis connection pool used by
// the cache. Pool capacity is the primary backpressure mechanism against
// store overload: at most PoolSize store operations run concurrently, and
// an acquire that cannot be served within PoolTimeout fails instead of
// hanging.
package redispool

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds the connection pool configuration.
type Config struct {
	// Addr is the Redis address (host:port).
	Addr string

	// Password is the Redis password (empty for none).
	Password string

	// DB is the Redis database number.
	DB int

	// PoolSize caps the number of live connections and therefore the
	// number of concurrent store operations.
	PoolSize int

	// MinIdleConns keeps this many connections warm.
	MinIdleConns int

	// PoolTimeout bounds how long an operation waits for a free
	// connection before failing with a pool timeout.
	PoolTimeout time.Duration

	// DialTimeout bounds establishing a new connection.
	DialTimeout time.Duration

	// ReadTimeout and WriteTimeout bound individual socket operations.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// ConnMaxIdleTime closes connections idle longer than this.
	ConnMaxIdleTime time.Duration
}

// DefaultConfig returns a safe default pool configuration for addr.
func DefaultConfig(addr string) Config {
	return Config{
		Addr:            addr,
		PoolSize:        10,
		MinIdleConns:    2,
		PoolTimeout:     1 * time.Second,
		DialTimeout:     2 * time.Second,
		ReadTimeout:     500 * time.Millisecond,
		WriteTimeout:    500 * time.Millisecond,
		ConnMaxIdleTime: 5 * time.Minute,
	}
}

// New creates a Redis client backed by a bounded connection pool and
// verifies connectivity with a bounded ping.
//
// The pool hands each command an exclusive connection for the command's
// duration and takes it back on completion; connections that observed a
// transport failure are discarded rather than reused.
func New(cfg Config) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	if cfg.PoolSize <= 0 {
		return nil, fmt.Errorf("pool size must be positive (got %d)", cfg.PoolSize)
	}

	client := redis.NewClient(&redis.Options{
		Addr:            cfg.Addr,
		Password:        cfg.Password,
		DB:              cfg.DB,
		PoolSize:        cfg.PoolSize,
		MinIdleConns:    cfg.MinIdleConns,
		PoolTimeout:     cfg.PoolTimeout,
		DialTimeout:     cfg.DialTimeout,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr, err)
	}

	return client, nil
}
