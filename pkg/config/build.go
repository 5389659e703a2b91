package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/partimport/pkg/cache"
	perrors "github.com/matzehuels/partimport/pkg/errors"
	"github.com/matzehuels/partimport/pkg/sink"
	"github.com/matzehuels/partimport/pkg/supplier"
)

// CacheDir returns the cache directory ($XDG_CACHE_HOME/partimport or
// ~/.cache/partimport).
func CacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// Open creates the configured cache backend.
func (c CacheConfig) Open(ctx context.Context) (cache.Cache, error) {
	switch c.Backend {
	case CacheNone:
		return cache.NewNullCache(), nil
	case CacheRedis:
		return cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
			Prefix:   c.Redis.Prefix,
		})
	default:
		dir, err := c.Directory()
		if err != nil {
			return nil, err
		}
		return cache.NewFileCache(dir)
	}
}

// Directory returns the file cache directory: Dir, or "search" below
// [CacheDir].
func (c CacheConfig) Directory() (string, error) {
	if c.Dir != "" {
		return c.Dir, nil
	}
	base, err := CacheDir()
	if err != nil {
		return "", perrors.Wrap(perrors.ErrCodeConfig, err, "locate cache directory")
	}
	return filepath.Join(base, "search"), nil
}

// Open creates the configured sink, instrumented for metrics.
func (s SinkConfig) Open(ctx context.Context, logger *log.Logger) (sink.Sink, error) {
	switch s.Kind {
	case SinkDryRun:
		return sink.Instrument(SinkDryRun, sink.NewDryRun(logger)), nil
	case SinkMongo:
		m, err := sink.NewMongo(ctx, sink.MongoOptions{
			URI:        s.Mongo.URI,
			Database:   s.Mongo.Database,
			Collection: s.Mongo.Collection,
		})
		if err != nil {
			return nil, err
		}
		return sink.Instrument(SinkMongo, m), nil
	default:
		j, err := sink.OpenJSONL(s.Path)
		if err != nil {
			return nil, err
		}
		return sink.Instrument(SinkJSONL, j), nil
	}
}

// Registry loads the configured suppliers, each behind c.
func (cfg *Config) Registry(c cache.Cache, logger *log.Logger) (*supplier.Registry, error) {
	reg := supplier.NewRegistry()
	for _, sc := range cfg.Suppliers {
		id, err := supplier.ParseID(sc.ID)
		if err != nil {
			return nil, err
		}
		fs, err := supplier.NewFileSupplier(id, sc.File)
		if err != nil {
			return nil, err
		}
		logger.Debug("supplier loaded", "supplier", id, "parts", fs.Len())
		reg.Add(supplier.NewCached(fs, c, nil, cfg.Cache.TTLDuration(), logger))
	}
	return reg, nil
}
