package middleware

import (
	"net/http"
	"testing"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()

	if !p.MethodCacheable("GET") {
		t.Error("GET should be cacheable by default")
	}
	if !p.MethodCacheable("get") {
		t.Error("method matching should be case-insensitive")
	}
	for _, method := range []string{"POST", "PUT", "DELETE", "PATCH"} {
		if p.MethodCacheable(method) {
			t.Errorf("%s should not be cacheable by default", method)
		}
	}

	if !p.ResponseCacheable("GET", http.StatusOK) {
		t.Error("GET 200 should be storable by default")
	}
	for _, status := range []int{201, 301, 404, 500} {
		if p.ResponseCacheable("GET", status) {
			t.Errorf("GET %d should not be storable by default", status)
		}
	}
}

func TestNewPolicy_Custom(t *testing.T) {
	p := NewPolicy([]string{"GET", "post"}, []int{200, 203})

	if !p.MethodCacheable("POST") {
		t.Error("configured POST should be cacheable")
	}
	if !p.ResponseCacheable("POST", 203) {
		t.Error("configured POST 203 should be storable")
	}
	if p.ResponseCacheable("POST", 500) {
		t.Error("unconfigured status should not be storable")
	}
	if p.ResponseCacheable("DELETE", 200) {
		t.Error("unconfigured method should not be storable")
	}
}
