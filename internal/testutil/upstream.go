// Package testutil provides testing utilities for the cache middleware.
package testutil

import (
	"net/http"
	"sync"
	"time"
)

// UpstreamResponse defines the behavior of the mock upstream for a path.
type UpstreamResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockUpstream is a configurable downstream handler for testing.
// It counts invocations so tests can assert how often the expensive
// computation actually ran.
type MockUpstream struct {
	mu        sync.RWMutex
	responses map[string]UpstreamResponse

	// Tracking
	requestCount int
	lastRequest  *http.Request
}

// NewMockUpstream creates a mock upstream handler.
func NewMockUpstream() *MockUpstream {
	return &MockUpstream{
		responses: make(map[string]UpstreamResponse),
	}
}

// ServeHTTP implements http.Handler.
func (m *MockUpstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.requestCount++
	m.lastRequest = r
	resp, ok := m.responses[r.URL.Path]
	m.mu.Unlock()

	if !ok {
		resp = UpstreamResponse{
			StatusCode: http.StatusOK,
			Body:       "ok",
			Headers:    map[string]string{"Content-Type": "text/plain"},
		}
	}

	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}

	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

// SetResponse configures the response for a path.
func (m *MockUpstream) SetResponse(path string, resp UpstreamResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[path] = resp
}

// RequestCount returns the number of times the upstream was invoked.
func (m *MockUpstream) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// LastRequest returns the most recent request seen by the upstream.
func (m *MockUpstream) LastRequest() *http.Request {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastRequest
}

// Reset clears all tracking state.
func (m *MockUpstream) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.lastRequest = nil
}
