// Package cache stores supplier search results between runs.
//
// Supplier APIs are slow and rate limited, and a batch import often looks
// the same part up more than once. Three backends implement [Cache]:
// [FileCache] for the CLI, [RedisCache] for a shared server deployment and
// [NullCache] when caching is disabled.
package cache

import (
	"context"
	"strings"
	"time"
)

// DefaultTTL is how long supplier search results stay valid.
const DefaultTTL = 24 * time.Hour

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is a miss,
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// SearchKey is the key for a supplier search.
	SearchKey(supplier, term string) string
}

// DefaultKeyer builds unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// SearchKey hashes the supplier and the normalized search term, so
// " c25804" and "C25804" share an entry.
func (DefaultKeyer) SearchKey(supplier, term string) string {
	return "search:" + digest(strings.ToLower(supplier), strings.ToUpper(strings.TrimSpace(term)))
}

// ScopedKeyer prefixes every key, so several deployments can share one
// Redis database.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner uses
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// SearchKey returns the prefixed search key.
func (k *ScopedKeyer) SearchKey(supplier, term string) string {
	return k.prefix + k.inner.SearchKey(supplier, term)
}
