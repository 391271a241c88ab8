package cache

import (
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRUCache implements an LRU cache with TTL support
type LRUCache struct {
	cache    *lru.Cache[CacheKey, *CacheEntry]
	config   *CacheConfig
	stats    *CacheStats
	mu       sync.Mutex
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewLRUCache creates a new LRU cache
func NewLRUCache(config *CacheConfig) (*LRUCache, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}

	cache, err := lru.New[CacheKey, *CacheEntry](config.MaxSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}

	c := &LRUCache{
		cache:    cache,
		config:   config,
		stats:    &CacheStats{MaxSize: config.MaxSize},
		stopChan: make(chan struct{}),
	}

	go c.cleanup()

	return c, nil
}

// Get retrieves a value from the cache
func (c *LRUCache) Get(key CacheKey) (*CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.cache.Peek(key)
	if !exists {
		c.stats.Misses++
		return nil, false
	}

	if entry.IsExpired() {
		c.removeExpired(key)
		c.stats.Misses++
		return nil, false
	}

	c.cache.Get(key)
	entry.Touch()
	c.stats.Hits++
	return entry, true
}

// Set stores a completion in the cache
func (c *LRUCache) Set(key CacheKey, completion string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ttl <= 0 {
		ttl = c.config.DefaultTTL
	}

	now := time.Now()
	evicted := c.cache.Add(key, &CacheEntry{
		Completion:   completion,
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
		LastAccessed: now,
	})
	if evicted {
		c.stats.Evictions++
	}
	c.stats.Size = c.cache.Len()
}

// removeExpired drops an expired key; callers hold c.mu
func (c *LRUCache) removeExpired(key CacheKey) {
	c.cache.Remove(key)
	c.stats.Expirations++
	c.stats.Size = c.cache.Len()
}

// Delete removes a value from the cache
func (c *LRUCache) Delete(key CacheKey) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Remove(key)
	c.stats.Size = c.cache.Len()
}

// Clear removes all values from the cache
func (c *LRUCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Purge()
	c.stats.Size = 0
}

// Stats returns cache statistics
func (c *LRUCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := *c.stats
	stats.Size = c.cache.Len()
	stats.CalculateHitRate()
	return stats
}

// Close stops the cleanup goroutine
func (c *LRUCache) Close() {
	c.stopOnce.Do(func() { close(c.stopChan) })
}

// cleanup periodically removes expired entries
func (c *LRUCache) cleanup() {
	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanupExpired()
		case <-c.stopChan:
			return
		}
	}
}

// cleanupExpired removes expired entries
func (c *LRUCache) cleanupExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range c.cache.Keys() {
		if entry, exists := c.cache.Peek(key); exists && entry.IsExpired() {
			c.removeExpired(key)
		}
	}
}

// Len returns the number of items in the cache
func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cache.Len()
}
