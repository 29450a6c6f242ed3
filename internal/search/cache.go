package search

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Cache keeps normalized results between identical searches.
type Cache interface {
	Get(ctx context.Context, key string) ([]Product, bool)
	Set(ctx context.Context, key string, products []Product, ttl time.Duration)
}

// NopCache never stores anything.
type NopCache struct{}

func (NopCache) Get(context.Context, string) ([]Product, bool)            { return nil, false }
func (NopCache) Set(context.Context, string, []Product, time.Duration) {}

// DefaultMemoryEntries bounds MemoryCache.
const DefaultMemoryEntries = 1000

// MemoryCache is an in-process TTL cache. Expired entries are swept on
// write; when the cache is still full the entry closest to expiry goes.
type MemoryCache struct {
	mu         sync.RWMutex
	entries    map[string]*cacheEntry
	maxEntries int
	now        func() time.Time
}

type cacheEntry struct {
	products  []Product
	expiresAt time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]*cacheEntry), maxEntries: DefaultMemoryEntries, now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]Product, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !c.now().Before(entry.expiresAt) {
		c.Invalidate(key)
		return nil, false
	}
	return append([]Product(nil), entry.products...), true
}

func (c *MemoryCache) Set(_ context.Context, key string, products []Product, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.maxEntries {
		c.evictLocked()
	}
	c.entries[key] = &cacheEntry{
		products:  append([]Product(nil), products...),
		expiresAt: c.now().Add(ttl),
	}
	c.mu.Unlock()
}

func (c *MemoryCache) evictLocked() {
	now := c.now()
	var oldest string
	var oldestAt time.Time
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
			continue
		}
		if oldest == "" || e.expiresAt.Before(oldestAt) {
			oldest, oldestAt = k, e.expiresAt
		}
	}
	if len(c.entries) >= c.maxEntries && oldest != "" {
		delete(c.entries, oldest)
	}
}

// Len reports how many entries are held, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Invalidate drops one key.
func (c *MemoryCache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// RedisCache stores results as JSON in Redis. A nil client disables it.
// Redis errors are logged and treated as misses.
type RedisCache struct {
	rdb *redis.Client
	log logrus.FieldLogger
}

func NewRedisCache(rdb *redis.Client, log logrus.FieldLogger) *RedisCache {
	return &RedisCache{rdb: rdb, log: log}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]Product, bool) {
	if c.rdb == nil {
		return nil, false
	}
	val, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.WithError(err).WithField("key", key).Warn("redis get failed")
		}
		return nil, false
	}
	var products []Product
	if err := json.Unmarshal(val, &products); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("redis entry is not valid json")
		return nil, false
	}
	return products, true
}

func (c *RedisCache) Set(ctx context.Context, key string, products []Product, ttl time.Duration) {
	if c.rdb == nil || ttl <= 0 {
		return
	}
	b, err := json.Marshal(products)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, b, ttl).Err(); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("redis set failed")
	}
}
