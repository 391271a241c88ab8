package cache

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Deduplicator collapses concurrent identical completions into one call
type Deduplicator struct {
	group singleflight.Group
	mu    sync.Mutex
	stats DedupStats
}

// DedupStats represents deduplication statistics
type DedupStats struct {
	Requests     int64 `json:"requests"`
	Deduplicated int64 `json:"deduplicated"`
}

// NewDeduplicator creates a new deduplicator
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{}
}

// Execute runs fn once per key among concurrent callers. A caller whose
// context ends stops waiting; the shared call keeps running for the others.
func (d *Deduplicator) Execute(ctx context.Context, key CacheKey, fn func() (string, error)) (string, error) {
	ch := d.group.DoChan(string(key), func() (interface{}, error) {
		return fn()
	})

	select {
	case <-ctx.Done():
		d.record(false)
		return "", ctx.Err()
	case res := <-ch:
		d.record(res.Shared)
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (d *Deduplicator) record(shared bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stats.Requests++
	if shared {
		d.stats.Deduplicated++
	}
}

// Stats returns a copy of the deduplication statistics
func (d *Deduplicator) Stats() DedupStats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// DedupRate is the share of requests served by another caller's flight
func (d *Deduplicator) DedupRate() float64 {
	s := d.Stats()
	if s.Requests == 0 {
		return 0.0
	}
	return float64(s.Deduplicated) / float64(s.Requests)
}

// Reset resets all statistics
func (d *Deduplicator) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stats = DedupStats{}
}
