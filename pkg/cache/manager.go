package cache

import (
	"context"
	"fmt"
)

// CacheManager combines the completion cache with in-flight deduplication
type CacheManager struct {
	cache        *LRUCache
	deduplicator *Deduplicator
	config       *CacheConfig
}

// NewCacheManager creates a new cache manager
func NewCacheManager(config *CacheConfig) (*CacheManager, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}
	cache, err := NewLRUCache(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	return &CacheManager{
		cache:        cache,
		deduplicator: NewDeduplicator(),
		config:       config,
	}, nil
}

// ExecuteWithCache returns the cached completion for req, or runs fn once
// across concurrent callers and caches its result. hit reports whether the
// value came from the cache. Errors are never cached.
func (cm *CacheManager) ExecuteWithCache(
	ctx context.Context,
	req CacheRequest,
	fn func() (string, error),
) (completion string, hit bool, err error) {
	key, err := GenerateKey(req)
	if err != nil {
		return "", false, fmt.Errorf("failed to generate cache key: %w", err)
	}

	if entry, ok := cm.cache.Get(key); ok {
		return entry.Completion, true, nil
	}

	ttl := req.TTL
	if ttl <= 0 {
		ttl = cm.config.DefaultTTL
	}

	completion, err = cm.deduplicator.Execute(ctx, key, func() (string, error) {
		out, err := fn()
		if err != nil {
			return "", err
		}
		cm.cache.Set(key, out, ttl)
		return out, nil
	})
	return completion, false, err
}

// Clear removes all cached completions and resets statistics
func (cm *CacheManager) Clear() {
	cm.cache.Clear()
	cm.deduplicator.Reset()
}

// Stats returns cache and deduplication statistics
func (cm *CacheManager) Stats() map[string]interface{} {
	cacheStats := cm.cache.Stats()
	dedup := cm.deduplicator.Stats()

	return map[string]interface{}{
		"cache": map[string]interface{}{
			"hits":        cacheStats.Hits,
			"misses":      cacheStats.Misses,
			"size":        cacheStats.Size,
			"max_size":    cacheStats.MaxSize,
			"hit_rate":    cacheStats.HitRate,
			"evictions":   cacheStats.Evictions,
			"expirations": cacheStats.Expirations,
		},
		"deduplication": map[string]interface{}{
			"total_requests":     dedup.Requests,
			"total_deduplicated": dedup.Deduplicated,
			"dedup_rate":         cm.deduplicator.DedupRate(),
		},
		"config": map[string]interface{}{
			"max_size":         cm.config.MaxSize,
			"default_ttl":      cm.config.DefaultTTL.String(),
			"cleanup_interval": cm.config.CleanupInterval.String(),
		},
	}
}

// Len returns the number of cached completions
func (cm *CacheManager) Len() int {
	return cm.cache.Len()
}

// Close stops background cleanup
func (cm *CacheManager) Close() {
	cm.cache.Close()
}
