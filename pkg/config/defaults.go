package config

import (
	"strings"

	"github.com/spf13/viper"
)

var envKeyReplacer = strings.NewReplacer(".", "_")

// setDefaults registers every key, so that AutomaticEnv overrides reach
// Unmarshal even for keys missing from the file.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("paths.categories", d.Paths.Categories)
	v.SetDefault("paths.parameters", d.Paths.Parameters)
	v.SetDefault("paths.hooks", d.Paths.Hooks)

	v.SetDefault("import.workers", d.Import.Workers)
	v.SetDefault("import.suggestions", d.Import.Suggestions)
	v.SetDefault("import.interactive", d.Import.Interactive)

	v.SetDefault("cache.backend", d.Cache.Backend)
	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.redis.addr", d.Cache.Redis.Addr)
	v.SetDefault("cache.redis.password", d.Cache.Redis.Password)
	v.SetDefault("cache.redis.db", d.Cache.Redis.DB)
	v.SetDefault("cache.redis.prefix", d.Cache.Redis.Prefix)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.watch", d.Server.Watch)
	v.SetDefault("server.debounce", d.Server.Debounce)

	v.SetDefault("sink.kind", d.Sink.Kind)
	v.SetDefault("sink.path", d.Sink.Path)
	v.SetDefault("sink.mongo.uri", d.Sink.Mongo.URI)
	v.SetDefault("sink.mongo.database", d.Sink.Mongo.Database)
	v.SetDefault("sink.mongo.collection", d.Sink.Mongo.Collection)
}
