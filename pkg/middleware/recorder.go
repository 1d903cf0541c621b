package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gatecache/gatecache/pkg/cache"
)

// responseRecorder captures a downstream handler's response in memory so
// it can be both stored and replayed. It implements http.ResponseWriter.
type responseRecorder struct {
	header      http.Header
	body        bytes.Buffer
	status      int
	wroteHeader bool
}

func newResponseRecorder() *responseRecorder {
	return &responseRecorder{
		header: make(http.Header),
		status: http.StatusOK,
	}
}

func (r *responseRecorder) Header() http.Header {
	return r.header
}

func (r *responseRecorder) WriteHeader(status int) {
	if r.wroteHeader {
		return
	}
	r.status = status
	r.wroteHeader = true
}

func (r *responseRecorder) Write(p []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	return r.body.Write(p)
}

// entry converts the recorded response into a cache entry.
func (r *responseRecorder) entry(ttl time.Duration) *cache.Entry {
	return &cache.Entry{
		StatusCode: r.status,
		Headers:    cache.HeadersFromHTTP(r.header),
		Body:       bytes.Clone(r.body.Bytes()),
		StoredAt:   time.Now(),
		TTL:        ttl,
	}
}
