package middleware

import (
	"net/http"
	"strings"
)

// Policy decides which requests and responses qualify for caching.
// Which methods and status codes qualify is deployment configuration,
// not something this package guesses at; the defaults are deliberately
// conservative.
type Policy struct {
	methods  map[string]struct{}
	statuses map[int]struct{}
}

// NewPolicy builds a policy from method and status allowlists.
// Empty slices fall back to the defaults (GET; 200).
func NewPolicy(methods []string, statuses []int) Policy {
	if len(methods) == 0 {
		methods = []string{http.MethodGet}
	}
	if len(statuses) == 0 {
		statuses = []int{http.StatusOK}
	}

	p := Policy{
		methods:  make(map[string]struct{}, len(methods)),
		statuses: make(map[int]struct{}, len(statuses)),
	}
	for _, m := range methods {
		p.methods[strings.ToUpper(strings.TrimSpace(m))] = struct{}{}
	}
	for _, s := range statuses {
		p.statuses[s] = struct{}{}
	}
	return p
}

// DefaultPolicy caches successful GET responses only.
func DefaultPolicy() Policy {
	return NewPolicy(nil, nil)
}

// MethodCacheable reports whether requests with this method participate in
// caching at all. Non-cacheable methods bypass lookup, stampede control,
// and storage.
func (p Policy) MethodCacheable(method string) bool {
	_, ok := p.methods[strings.ToUpper(method)]
	return ok
}

// ResponseCacheable reports whether a captured response may be stored.
func (p Policy) ResponseCacheable(method string, status int) bool {
	if !p.MethodCacheable(method) {
		return false
	}
	_, ok := p.statuses[status]
	return ok
}
