package config

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/partimport/pkg/cache"
	perrors "github.com/matzehuels/partimport/pkg/errors"
	"github.com/matzehuels/partimport/pkg/pipeline"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, cfg.File)
	assert.Equal(t, Default().Paths, cfg.Paths)
	assert.Equal(t, pipeline.DefaultWorkers, cfg.Import.Workers)
	assert.Equal(t, CacheFile, cfg.Cache.Backend)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTLDuration())
	assert.Equal(t, 500*time.Millisecond, cfg.Server.DebounceDuration())
	assert.Equal(t, SinkJSONL, cfg.Sink.Kind)
}

func TestLoadFromConfigDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	writeFile(t, filepath.Join(home, AppName, FileName), `
[import]
workers = 3
`)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Import.Workers)
	assert.Equal(t, filepath.Join(home, AppName, FileName), cfg.File)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	writeFile(t, path, `
[paths]
categories = "taxonomy/categories.yaml"
parameters = "/etc/partimport/parameters.yaml"

[cache]
backend = "redis"
ttl = "1h"

[cache.redis]
addr = "redis:6379"
db = 2

[sink]
kind = "mongo"

[sink.mongo]
uri = "mongodb+srv://cluster.example.com"

[[suppliers]]
id = "LCSC"
file = "exports/lcsc.json"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "taxonomy", "categories.yaml"), cfg.Paths.Categories)
	assert.Equal(t, "/etc/partimport/parameters.yaml", cfg.Paths.Parameters)
	assert.Equal(t, CacheRedis, cfg.Cache.Backend)
	assert.Equal(t, time.Hour, cfg.Cache.TTLDuration())
	assert.Equal(t, "redis:6379", cfg.Cache.Redis.Addr)
	assert.Equal(t, 2, cfg.Cache.Redis.DB)
	assert.Equal(t, "partimport:", cfg.Cache.Redis.Prefix, "unset keys keep their defaults")
	assert.Equal(t, SinkMongo, cfg.Sink.Kind)
	assert.Equal(t, "partimport", cfg.Sink.Mongo.Database)
	require.Len(t, cfg.Suppliers, 1)
	assert.Equal(t, filepath.Join(dir, "exports", "lcsc.json"), cfg.Suppliers[0].File)

	sources := cfg.Paths.Sources()
	assert.Equal(t, cfg.Paths.Categories, sources.Categories)
	assert.Empty(t, sources.Hooks)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.True(t, perrors.IsConfig(err))
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("PARTIMPORT_IMPORT_WORKERS", "16")
	t.Setenv("PARTIMPORT_SINK_KIND", "dryrun")
	t.Setenv("PARTIMPORT_CACHE_REDIS_ADDR", "cache:6380")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Import.Workers)
	assert.Equal(t, SinkDryRun, cfg.Sink.Kind)
	assert.Equal(t, "cache:6380", cfg.Cache.Redis.Addr)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing categories", func(c *Config) { c.Paths.Categories = "" }, "paths.categories"},
		{"zero workers", func(c *Config) { c.Import.Workers = 0 }, "import.workers"},
		{"too many workers", func(c *Config) { c.Import.Workers = pipeline.MaxWorkers + 1 }, "import.workers"},
		{"unknown backend", func(c *Config) { c.Cache.Backend = "memcached" }, "cache.backend"},
		{"bad ttl", func(c *Config) { c.Cache.TTL = "a day" }, "cache.ttl"},
		{"zero debounce", func(c *Config) { c.Server.Debounce = "0s" }, "server.debounce"},
		{"jsonl without path", func(c *Config) { c.Sink.Path = "" }, "sink.path"},
		{"unknown sink", func(c *Config) { c.Sink.Kind = "csv" }, "sink.kind"},
		{"bad mongo uri", func(c *Config) {
			c.Sink.Kind = SinkMongo
			c.Sink.Mongo.URI = "http://localhost:27017"
		}, "sink.mongo.uri"},
		{"unknown supplier", func(c *Config) {
			c.Suppliers = []SupplierConfig{{ID: "farnell", File: "f.json"}}
		}, "farnell"},
		{"duplicate supplier", func(c *Config) {
			c.Suppliers = []SupplierConfig{{ID: "lcsc", File: "a.json"}, {ID: "LCSC", File: "b.json"}}
		}, "configured twice"},
		{"supplier without file", func(c *Config) {
			c.Suppliers = []SupplierConfig{{ID: "tme"}}
		}, "file is required"},
	}

	require.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.True(t, perrors.IsConfig(err))
		})
	}
}

func TestWriteRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Import.Workers = 5
	cfg.Server.Watch = true
	cfg.Suppliers = []SupplierConfig{{ID: "mouser", File: "mouser.json"}}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, cfg))
	assert.True(t, strings.HasPrefix(buf.String(), "# partimport configuration."))
	assert.Contains(t, buf.String(), "[sink.mongo]")

	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	writeFile(t, path, buf.String())

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Import.Workers)
	assert.True(t, got.Server.Watch)
	assert.Equal(t, filepath.Join(dir, "categories.yaml"), got.Paths.Categories)
	require.Len(t, got.Suppliers, 1)
	assert.Equal(t, "mouser", got.Suppliers[0].ID)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)
	require.NoError(t, WriteFile(path, Default(), false))

	err := WriteFile(path, Default(), false)
	assert.True(t, perrors.Is(err, perrors.ErrCodeInvalidInput))
	assert.NoError(t, WriteFile(path, Default(), true))
}

func TestCacheOpen(t *testing.T) {
	ctx := context.Background()

	c, err := CacheConfig{Backend: CacheNone}.Open(ctx)
	require.NoError(t, err)
	assert.IsType(t, cache.NullCache{}, c)

	dir := filepath.Join(t.TempDir(), "search")
	c, err = CacheConfig{Backend: CacheFile, Dir: dir}.Open(ctx)
	require.NoError(t, err)
	fc, ok := c.(*cache.FileCache)
	require.True(t, ok)
	assert.Equal(t, dir, fc.Dir())

	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	c, err = CacheConfig{Backend: CacheFile}.Open(ctx)
	require.NoError(t, err)
	base, err := CacheDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "search"), c.(*cache.FileCache).Dir())
}

func TestSinkOpen(t *testing.T) {
	ctx := context.Background()
	logger := log.New(&bytes.Buffer{})

	path := filepath.Join(t.TempDir(), "parts.jsonl")
	s, err := SinkConfig{Kind: SinkJSONL, Path: path}.Open(ctx, logger)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.FileExists(t, path)

	s, err = SinkConfig{Kind: SinkDryRun}.Open(ctx, logger)
	require.NoError(t, err)
	assert.NoError(t, s.Close())
}

func TestRegistry(t *testing.T) {
	dir := t.TempDir()
	export := filepath.Join(dir, "lcsc.json")
	writeFile(t, export, `[{"sku": "C1525", "mpn": "CL05B104KO5NNNC"}]`)

	cfg := Default()
	cfg.Suppliers = []SupplierConfig{{ID: "lcsc", File: export}}
	reg, err := cfg.Registry(cache.NewNullCache(), log.New(&bytes.Buffer{}))
	require.NoError(t, err)

	raw, err := reg.FindAny(context.Background(), "C1525")
	require.NoError(t, err)
	assert.Equal(t, "lcsc", raw.Supplier)

	cfg.Suppliers[0].File = filepath.Join(dir, "missing.json")
	_, err = cfg.Registry(cache.NewNullCache(), log.New(&bytes.Buffer{}))
	assert.True(t, perrors.Is(err, perrors.ErrCodeFileNotFound))
}

func TestWatcherReloadsEngine(t *testing.T) {
	dir := t.TempDir()
	src := pipeline.Sources{
		Categories: filepath.Join(dir, "categories.yaml"),
		Parameters: filepath.Join(dir, "parameters.yaml"),
	}
	writeFile(t, src.Categories, "Capacitors:\n  _parameters: [Capacitance]\n")
	writeFile(t, src.Parameters, "Capacitance:\n  _unit: F\n")
	writeFile(t, filepath.Join(dir, "unrelated.txt"), "x")

	snap, err := pipeline.Load(src)
	require.NoError(t, err)
	logger := log.New(io.Discard)
	engine := pipeline.NewEngine(snap, logger)

	var reloads atomic.Int32
	w, err := NewWatcher(src.Files(), 100*time.Millisecond, logger, func(ctx context.Context) error {
		reloads.Add(1)
		return engine.Reload(ctx, src)
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})

	writeFile(t, filepath.Join(dir, "unrelated.txt"), "y")
	writeFile(t, src.Categories, "Capacitors:\n  _parameters: [Capacitance]\n")
	writeFile(t, src.Categories, "Capacitors:\n  _parameters: [Capacitance]\nResistors:\n")
	require.Eventually(t, func() bool {
		return engine.Snapshot().Tree.Len() == 2
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, int32(1), reloads.Load(), "writes within the debounce window coalesce")

	// A broken file keeps the current snapshot.
	writeFile(t, src.Parameters, "Capacitance: [unclosed\n")
	require.Eventually(t, func() bool {
		return reloads.Load() == 2
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, 2, engine.Snapshot().Tree.Len())
}
