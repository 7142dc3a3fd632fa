package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultMemoryEntries bounds the in-process cache.
const DefaultMemoryEntries = 256

// MemoryCache is a per-process page cache used when Valkey is not
// configured. Entries expire after the TTL.
type MemoryCache struct {
	lru *expirable.LRU[string, []byte]
}

// NewMemoryCache creates an LRU cache holding at most size pages.
func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	if size <= 0 {
		size = DefaultMemoryEntries
	}
	if ttl == 0 {
		ttl = DefaultPageTTL
	}
	return &MemoryCache{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

// Get retrieves a cached page.
func (mc *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	val, ok := mc.lru.Get(key)
	if !ok {
		cacheMissesTotal.WithLabelValues("memory").Inc()
		return nil, false
	}
	cacheHitsTotal.WithLabelValues("memory").Inc()
	return val, true
}

// Set stores a page.
func (mc *MemoryCache) Set(_ context.Context, key string, body []byte) {
	mc.lru.Add(key, body)
}

// InvalidateAll drops every cached page.
func (mc *MemoryCache) InvalidateAll(_ context.Context) {
	n := mc.lru.Len()
	mc.lru.Purge()
	slog.Debug("page cache cleared", "backend", "memory", "deleted", n)
}

// Len returns the number of cached pages.
func (mc *MemoryCache) Len() int {
	return mc.lru.Len()
}
