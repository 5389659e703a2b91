// Package config loads the partimport application configuration.
//
// The configuration file is TOML (partimport.toml). It names the taxonomy,
// parameter and hook files and configures the cache, the sink, the
// suppliers and the HTTP server. Every key can be overridden from the
// environment with a PARTIMPORT_ prefix, dots becoming underscores:
//
//	PARTIMPORT_IMPORT_WORKERS=16
//	PARTIMPORT_SINK_MONGO_URI=mongodb://inventory:27017
//
// Relative file paths are resolved against the directory of the
// configuration file.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/spf13/viper"

	perrors "github.com/matzehuels/partimport/pkg/errors"
	"github.com/matzehuels/partimport/pkg/pipeline"
	"github.com/matzehuels/partimport/pkg/supplier"
)

const (
	// AppName is used for the configuration and cache directories.
	AppName = "partimport"
	// FileName is the configuration file looked up by [Load].
	FileName = "partimport.toml"
	// EnvPrefix prefixes environment overrides.
	EnvPrefix = "PARTIMPORT"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Sink kinds.
const (
	SinkJSONL  = "jsonl"
	SinkDryRun = "dryrun"
	SinkMongo  = "mongo"
)

// Config is the application configuration.
type Config struct {
	Paths     PathsConfig      `mapstructure:"paths" toml:"paths"`
	Import    ImportConfig     `mapstructure:"import" toml:"import"`
	Cache     CacheConfig      `mapstructure:"cache" toml:"cache"`
	Server    ServerConfig     `mapstructure:"server" toml:"server"`
	Sink      SinkConfig       `mapstructure:"sink" toml:"sink"`
	Suppliers []SupplierConfig `mapstructure:"suppliers" toml:"suppliers,omitempty"`

	// File is the configuration file that was read, if any.
	File string `mapstructure:"-" toml:"-"`
}

// PathsConfig names the taxonomy files.
type PathsConfig struct {
	Categories string `mapstructure:"categories" toml:"categories"`
	Parameters string `mapstructure:"parameters" toml:"parameters"`
	Hooks      string `mapstructure:"hooks" toml:"hooks,omitempty"`
}

// Sources converts the paths for [pipeline.Load].
func (p PathsConfig) Sources() pipeline.Sources {
	return pipeline.Sources{Categories: p.Categories, Parameters: p.Parameters, Hooks: p.Hooks}
}

// ImportConfig tunes batch imports.
type ImportConfig struct {
	Workers     int  `mapstructure:"workers" toml:"workers"`
	Suggestions int  `mapstructure:"suggestions" toml:"suggestions"`
	Interactive bool `mapstructure:"interactive" toml:"interactive"`
}

// CacheConfig selects the supplier search cache.
type CacheConfig struct {
	Backend string      `mapstructure:"backend" toml:"backend"`
	Dir     string      `mapstructure:"dir" toml:"dir,omitempty"`
	TTL     string      `mapstructure:"ttl" toml:"ttl"`
	Redis   RedisConfig `mapstructure:"redis" toml:"redis"`
}

// TTLDuration returns the parsed TTL. Validate has already rejected
// malformed values.
func (c CacheConfig) TTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.TTL)
	return d
}

// RedisConfig configures the Redis cache backend.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" toml:"addr"`
	Password string `mapstructure:"password" toml:"password,omitempty"`
	DB       int    `mapstructure:"db" toml:"db"`
	Prefix   string `mapstructure:"prefix" toml:"prefix"`
}

// ServerConfig configures "partimport serve".
type ServerConfig struct {
	Addr string `mapstructure:"addr" toml:"addr"`
	// Watch reloads the taxonomy when its files change.
	Watch    bool   `mapstructure:"watch" toml:"watch"`
	Debounce string `mapstructure:"debounce" toml:"debounce"`
}

// DebounceDuration returns the parsed debounce interval.
func (s ServerConfig) DebounceDuration() time.Duration {
	d, _ := time.ParseDuration(s.Debounce)
	return d
}

// SinkConfig selects where imported parts go.
type SinkConfig struct {
	Kind  string      `mapstructure:"kind" toml:"kind"`
	Path  string      `mapstructure:"path" toml:"path,omitempty"`
	Mongo MongoConfig `mapstructure:"mongo" toml:"mongo"`
}

// MongoConfig configures the MongoDB sink.
type MongoConfig struct {
	URI        string `mapstructure:"uri" toml:"uri"`
	Database   string `mapstructure:"database" toml:"database"`
	Collection string `mapstructure:"collection" toml:"collection"`
}

// SupplierConfig registers a supplier served from a JSON export.
type SupplierConfig struct {
	ID   string `mapstructure:"id" toml:"id"`
	File string `mapstructure:"file" toml:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Categories: "categories.yaml",
			Parameters: "parameters.yaml",
		},
		Import: ImportConfig{
			Workers:     pipeline.DefaultWorkers,
			Suggestions: pipeline.DefaultSuggestions,
		},
		Cache: CacheConfig{
			Backend: CacheFile,
			TTL:     "24h",
			Redis:   RedisConfig{Addr: "localhost:6379", Prefix: AppName + ":"},
		},
		Server: ServerConfig{Addr: ":8080", Debounce: "500ms"},
		Sink: SinkConfig{
			Kind:  SinkJSONL,
			Path:  "parts.jsonl",
			Mongo: MongoConfig{URI: "mongodb://localhost:27017", Database: AppName, Collection: "parts"},
		},
	}
}

// Dir returns the configuration directory ($XDG_CONFIG_HOME/partimport or
// ~/.config/partimport).
func Dir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName), nil
}

// Load reads the configuration. A non-empty path must exist. Otherwise
// partimport.toml is looked up in the working directory, then in [Dir];
// a missing file leaves the defaults in place.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")
	setDefaults(v, Default())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName[:len(FileName)-len(filepath.Ext(FileName))])
		v.AddConfigPath(".")
		if dir, err := Dir(); err == nil {
			v.AddConfigPath(dir)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, perrors.Wrap(perrors.ErrCodeConfig, err, "read configuration")
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeConfig, err, "decode configuration")
	}
	cfg.File = v.ConfigFileUsed()
	cfg.resolvePaths()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolvePaths makes relative file paths relative to the config file.
func (c *Config) resolvePaths() {
	if c.File == "" {
		return
	}
	base := filepath.Dir(c.File)
	for _, p := range []*string{&c.Paths.Categories, &c.Paths.Parameters, &c.Paths.Hooks, &c.Cache.Dir, &c.Sink.Path} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
	for i := range c.Suppliers {
		if f := c.Suppliers[i].File; f != "" && !filepath.IsAbs(f) {
			c.Suppliers[i].File = filepath.Join(base, f)
		}
	}
}

// Validate checks values that decoding cannot.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return perrors.New(perrors.ErrCodeConfig, format, args...)
	}

	if c.Paths.Categories == "" || c.Paths.Parameters == "" {
		return invalid("paths.categories and paths.parameters are required")
	}
	if c.Import.Workers < 1 || c.Import.Workers > pipeline.MaxWorkers {
		return invalid("import.workers must be between 1 and %d, got %d", pipeline.MaxWorkers, c.Import.Workers)
	}
	if !slices.Contains([]string{CacheFile, CacheRedis, CacheNone}, c.Cache.Backend) {
		return invalid("cache.backend must be file, redis or none, got %q", c.Cache.Backend)
	}
	if d, err := time.ParseDuration(c.Cache.TTL); err != nil || d < 0 {
		return invalid("cache.ttl: invalid duration %q", c.Cache.TTL)
	}
	if d, err := time.ParseDuration(c.Server.Debounce); err != nil || d <= 0 {
		return invalid("server.debounce: invalid duration %q", c.Server.Debounce)
	}
	switch c.Sink.Kind {
	case SinkJSONL:
		if c.Sink.Path == "" {
			return invalid("sink.path is required for the jsonl sink")
		}
	case SinkMongo:
		if err := perrors.ValidateURL(c.Sink.Mongo.URI, "mongodb", "mongodb+srv"); err != nil {
			return perrors.Wrap(perrors.ErrCodeConfig, err, "sink.mongo.uri")
		}
	case SinkDryRun:
	default:
		return invalid("sink.kind must be jsonl, dryrun or mongo, got %q", c.Sink.Kind)
	}

	seen := make(map[supplier.ID]bool)
	for i, s := range c.Suppliers {
		id, err := supplier.ParseID(s.ID)
		if err != nil {
			return perrors.Wrap(perrors.ErrCodeConfig, err, "suppliers[%d]", i)
		}
		if seen[id] {
			return invalid("suppliers[%d]: %s configured twice", i, id)
		}
		seen[id] = true
		if s.File == "" {
			return invalid("suppliers[%d]: file is required", i)
		}
	}
	return nil
}
