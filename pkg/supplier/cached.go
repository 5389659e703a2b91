package supplier

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/partimport/pkg/cache"
	"github.com/matzehuels/partimport/pkg/observability"
	"github.com/matzehuels/partimport/pkg/part"
)

const cacheKeyType = "search"

// Cached wraps a supplier with a result cache. Cache failures are logged
// and fall through to the supplier.
type Cached struct {
	inner  Supplier
	cache  cache.Cache
	keyer  cache.Keyer
	ttl    time.Duration
	logger *log.Logger
}

// NewCached wraps inner. A nil keyer uses [cache.DefaultKeyer], a zero ttl
// uses [cache.DefaultTTL] and a nil logger uses log.Default().
func NewCached(inner Supplier, c cache.Cache, keyer cache.Keyer, ttl time.Duration, logger *log.Logger) *Cached {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if ttl == 0 {
		ttl = cache.DefaultTTL
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Cached{inner: inner, cache: c, keyer: keyer, ttl: ttl, logger: logger}
}

// ID returns the wrapped supplier's ID.
func (s *Cached) ID() ID { return s.inner.ID() }

// Search returns cached results for term or searches and caches them.
func (s *Cached) Search(ctx context.Context, term string) ([]*part.Raw, error) {
	key := s.keyer.SearchKey(string(s.inner.ID()), term)
	hooks := observability.Cache()

	data, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("cache read failed", "supplier", s.inner.ID(), "err", err)
	}
	if hit {
		var parts []*part.Raw
		if err := json.Unmarshal(data, &parts); err == nil {
			hooks.OnCacheHit(ctx, cacheKeyType)
			s.logger.Debug("cache hit", "supplier", s.inner.ID(), "term", term)
			return parts, nil
		}
		_ = s.cache.Delete(ctx, key)
	}
	hooks.OnCacheMiss(ctx, cacheKeyType)

	parts, err := s.inner.Search(ctx, term)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(parts); err == nil {
		if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
			s.logger.Warn("cache write failed", "supplier", s.inner.ID(), "err", err)
		} else {
			hooks.OnCacheSet(ctx, cacheKeyType, len(data))
		}
	}
	return parts, nil
}
