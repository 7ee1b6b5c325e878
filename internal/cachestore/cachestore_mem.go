package cachestore

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultMemCapacity replaces a non-positive capacity; expirable treats zero
// as unbounded.
const DefaultMemCapacity = 1024

// MemCacheStore keeps entries in a process-local LRU. Each instance of the
// server has its own copy, so site scale may differ briefly between them.
type MemCacheStore struct {
	Data *expirable.LRU[string, string]
}

var _ CacheStore = MemCacheStore{}

func NewMemCacheStore(capacity int, ttl time.Duration) MemCacheStore {
	if capacity <= 0 {
		capacity = DefaultMemCapacity
	}
	return MemCacheStore{
		Data: expirable.NewLRU[string, string](capacity, nil, ttl),
	}
}

func (s MemCacheStore) Get(ctx context.Context, name, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	v, _ := s.Data.Get(cacheKey(name, key))
	return v, nil
}

func (s MemCacheStore) Set(ctx context.Context, name, key string, val string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.Data.Add(cacheKey(name, key), val)
	return nil
}

func (s MemCacheStore) Purge(ctx context.Context, name, key string) error {
	s.Data.Remove(cacheKey(name, key))
	return nil
}

func (s MemCacheStore) Len() int {
	return s.Data.Len()
}
