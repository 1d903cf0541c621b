package main

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/gatecache/gatecache/pkg/cache"
	"github.com/gatecache/gatecache/pkg/logging"
	"github.com/gatecache/gatecache/pkg/middleware"
	"github.com/gatecache/gatecache/pkg/redispool"
)

func main() {
	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(getEnv("LOG_LEVEL", "info")),
		Pretty: getEnv("LOG_PRETTY", "") == "true",
		Output: os.Stderr,
	})

	redisURL := getEnv("REDIS_URL", "localhost:6379")
	port := getEnv("PORT", "8080")
	upstreamURL := getEnv("UPSTREAM_URL", "")
	if upstreamURL == "" {
		logger.Fatal().Msg("UPSTREAM_URL is required")
	}

	upstream, err := url.Parse(upstreamURL)
	if err != nil {
		logger.Fatal().Err(err).Str("upstream", upstreamURL).Msg("Invalid upstream URL")
	}

	// Redis connection pool
	poolCfg := redispool.DefaultConfig(redisURL)
	poolCfg.PoolSize = getEnvInt("REDIS_POOL_SIZE", poolCfg.PoolSize)
	poolCfg.PoolTimeout = getEnvDuration("REDIS_POOL_TIMEOUT", poolCfg.PoolTimeout)
	poolCfg.Password = getEnv("REDIS_PASSWORD", "")

	redisClient, err := redispool.New(poolCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()
	logger.Info().Str("addr", redisURL).Int("pool_size", poolCfg.PoolSize).Msg("Connected to Redis")

	// Cache middleware
	keys := cache.NewKeyBuilder(cache.KeyConfig{
		Namespace:       getEnv("CACHE_NAMESPACE", "gatecache"),
		HeaderAllowlist: splitList(getEnv("CACHE_HEADERS", "")),
	})
	store := cache.NewStore(redisClient, getEnvDuration("CACHE_OP_TIMEOUT", cache.DefaultOpTimeout))

	mw, err := middleware.New(middleware.Config{
		Store: store,
		Keys:  keys,
		TTL:   getEnvDuration("CACHE_TTL", middleware.DefaultTTL),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create cache middleware")
	}

	proxy := httputil.NewSingleHostReverseProxy(upstream)
	cached := mw.Handler(proxy)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", purgeOrServe(mw, cached, logger))

	addr := ":" + port
	logger.Info().Str("addr", addr).Str("upstream", upstream.String()).Msg("Starting cache proxy")

	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// purgeOrServe routes PURGE requests to explicit cache invalidation and
// everything else through the cached proxy. The purged key is the one a
// GET for the same path and query would use.
func purgeOrServe(mw *middleware.Middleware, next http.Handler, logger zerolog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "PURGE" {
			next.ServeHTTP(w, r)
			return
		}

		target := r.Clone(r.Context())
		target.Method = http.MethodGet
		target.Body = http.NoBody

		if err := mw.Invalidate(r.Context(), target); err != nil {
			logger.Warn().Err(err).Str("path", r.URL.Path).Msg("Invalidation failed")
			http.Error(w, "invalidation failed", http.StatusBadGateway)
			return
		}

		logger.Info().Str("path", r.URL.Path).Msg("Cache entry invalidated")
		w.WriteHeader(http.StatusNoContent)
	})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
