package cache

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/textproto"
	"path"
	"sort"
	"strings"
)

// keyVersion is baked into every derived key so the key scheme can be
// migrated without old and new processes colliding on the same slots.
const keyVersion = "v1"

// ErrKeyDerivation indicates the cache key could not be computed for a
// request. Callers must treat the request as not cacheable, never as failed.
var ErrKeyDerivation = errors.New("cache key derivation failed")

// Key is the deterministic fingerprint of a cacheable request.
// It is a fixed-length SHA-256 digest rendered as a namespaced Redis key.
type Key string

// String returns the Redis key string.
func (k Key) String() string {
	return string(k)
}

// KeyConfig holds the immutable configuration for key derivation.
type KeyConfig struct {
	// Namespace prefixes every key (e.g. "gatecache").
	Namespace string

	// HeaderAllowlist lists the request headers that participate in the key.
	// Headers not listed here never influence the fingerprint.
	HeaderAllowlist []string
}

// DefaultKeyConfig returns a key configuration with no cache-relevant headers.
func DefaultKeyConfig() KeyConfig {
	return KeyConfig{
		Namespace: "gatecache",
	}
}

// KeyBuilder derives cache keys from HTTP requests.
// A builder is immutable after construction and safe for concurrent use.
type KeyBuilder struct {
	namespace string
	headers   []string
}

// NewKeyBuilder creates a KeyBuilder from the given configuration.
// The header allowlist is canonicalized and sorted once, at construction.
func NewKeyBuilder(cfg KeyConfig) *KeyBuilder {
	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "gatecache"
	}

	headers := make([]string, 0, len(cfg.HeaderAllowlist))
	for _, name := range cfg.HeaderAllowlist {
		name = textproto.CanonicalMIMEHeaderKey(strings.TrimSpace(name))
		if name != "" {
			headers = append(headers, name)
		}
	}
	sort.Strings(headers)

	return &KeyBuilder{
		namespace: namespace,
		headers:   headers,
	}
}

// FromRequest derives the cache key for a request.
//
// The fingerprint covers the method, the cleaned path, the sorted query
// string, the allowlisted headers, and a digest of the body for body-bearing
// methods. Two requests that agree on all of these yield the same key.
//
// The request body is fully read and restored so the downstream handler
// still sees it. A body read failure returns ErrKeyDerivation.
func (b *KeyBuilder) FromRequest(r *http.Request) (Key, error) {
	if r == nil || r.URL == nil {
		return "", fmt.Errorf("%w: nil request", ErrKeyDerivation)
	}

	var sum strings.Builder
	sum.WriteString(strings.ToUpper(r.Method))
	sum.WriteByte('\n')
	sum.WriteString(normalizePath(r.URL.Path))
	sum.WriteByte('\n')

	// url.Values.Encode sorts by parameter name, so query ordering
	// never influences the key.
	sum.WriteString(r.URL.Query().Encode())
	sum.WriteByte('\n')

	// One line per header value: a single value containing a comma must
	// not collide with the same bytes split across two values.
	for _, name := range b.headers {
		for _, value := range r.Header.Values(name) {
			sum.WriteString(name)
			sum.WriteByte('=')
			sum.WriteString(value)
			sum.WriteByte('\n')
		}
	}

	if bodyAffectsResponse(r.Method) && r.Body != nil && r.Body != http.NoBody {
		digest, err := digestBody(r)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrKeyDerivation, err)
		}
		sum.WriteString("body=")
		sum.WriteString(digest)
		sum.WriteByte('\n')
	}

	hash := sha256.Sum256([]byte(sum.String()))
	return Key(fmt.Sprintf("%s:%s:%x", b.namespace, keyVersion, hash)), nil
}

// normalizePath cleans the request path so that trivially different
// spellings of the same resource share a key.
func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	return path.Clean(p)
}

// bodyAffectsResponse reports whether the request body participates in the
// fingerprint for the given method.
func bodyAffectsResponse(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	default:
		return false
	}
}

// digestBody reads the request body, restores it for the handler, and
// returns a hex SHA-256 digest. The digest bounds the key size regardless
// of payload size.
func digestBody(r *http.Request) (string, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", fmt.Errorf("read request body: %w", err)
	}
	r.Body.Close()

	// Restore body for the downstream handler.
	r.Body = io.NopCloser(bytes.NewReader(body))

	hash := sha256.Sum256(body)
	return fmt.Sprintf("%x", hash), nil
}
