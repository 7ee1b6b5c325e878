// Package cachestore caches small string values (usually JSON) under a
// name/key pair with a fixed TTL. Implementations exist for in-process memory
// and redis.
package cachestore

import (
	"context"
	"log/slog"
	"time"
)

type CacheStore interface {
	Get(ctx context.Context, name, key string) (string, error)
	Set(ctx context.Context, name, key string, val string) error
	Purge(ctx context.Context, name, key string) error
}

// New returns a redis store when redisURL is set, otherwise an in-memory one.
// A redis store that cannot connect falls back to memory.
func New(redisURL string, capacity int, ttl time.Duration) CacheStore {
	if redisURL != "" {
		rs, err := NewRedisCacheStore(redisURL, ttl)
		if err == nil {
			slog.Info("cache store ready", "backend", "redis")
			return rs
		}
		slog.Warn("redis cache unavailable, using memory", "error", err)
	}
	slog.Info("cache store ready", "backend", "memory")
	return NewMemCacheStore(capacity, ttl)
}

// cacheKey namespaces entries so a shared redis can host other services.
func cacheKey(name, key string) string {
	return "community/" + name + "/" + key
}
