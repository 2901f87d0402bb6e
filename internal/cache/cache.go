// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package cache

import (
	"cmp"
	"slices"
	"sync"
	"sync/atomic"
)

// Cache is a generic thread-safe cache with a soft limit.
// When the cache exceeds softLimit, the oldest entries are dropped until a
// quarter of the limit is free again.
type Cache[K comparable, V any] struct {
	mu        sync.Mutex
	entries   map[K]*cacheEntry[V]
	softLimit int
	tick      int64 // monotonic access counter

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type cacheEntry[V any] struct {
	value V
	atime int64
}

// New creates a cache with the given soft limit. 0 means unlimited.
func New[K comparable, V any](softLimit int) *Cache[K, V] {
	return &Cache[K, V]{
		entries:   make(map[K]*cacheEntry[V]),
		softLimit: max(softLimit, 0),
	}
}

// GetOrLoad returns the cached value for key, or calls load and caches
// its result. Errors from load are returned and not cached.
//
// load runs with the cache locked, so concurrent callers never load the
// same key twice. It must not call back into c.
func (c *Cache[K, V]) GetOrLoad(key K, load func() (V, error)) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		c.hits.Add(1)
		c.tick++
		e.atime = c.tick
		return e.value, nil
	}
	c.misses.Add(1)

	v, err := load()
	if err != nil {
		var zero V
		return zero, err
	}
	c.store(key, v)
	return v, nil
}

// Purge removes every entry. Counters are kept.
func (c *Cache[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.entries)
	c.tick = 0
}

// Len returns the number of entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	return newStats(c.Len(), c.softLimit, c.hits.Load(), c.misses.Load(), c.evictions.Load())
}

// store inserts under c.mu.
func (c *Cache[K, V]) store(key K, value V) {
	c.tick++
	c.entries[key] = &cacheEntry[V]{value: value, atime: c.tick}
	if c.softLimit > 0 && len(c.entries) > c.softLimit {
		c.evictOldest()
	}
}

// evictOldest drops entries until 3/4 of the soft limit remains.
// Caller must hold c.mu.
func (c *Cache[K, V]) evictOldest() {
	target := max(c.softLimit*3/4, 1)
	n := len(c.entries) - target
	if n <= 0 {
		return
	}

	type aged struct {
		key   K
		atime int64
	}
	all := make([]aged, 0, len(c.entries))
	for k, e := range c.entries {
		all = append(all, aged{k, e.atime})
	}
	slices.SortFunc(all, func(a, b aged) int { return cmp.Compare(a.atime, b.atime) })
	for _, e := range all[:n] {
		delete(c.entries, e.key)
	}
	c.evictions.Add(uint64(n)) //nolint:gosec // n > 0
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int

	// Capacity is the soft limit, or the total capacity for Sharded.
	Capacity int

	Hits      uint64
	Misses    uint64
	Evictions uint64

	// HitRate is hits / (hits + misses), 0 before any lookup.
	HitRate float64
}

func newStats(n, capacity int, hits, misses, evictions uint64) Stats {
	s := Stats{
		Len:       n,
		Capacity:  capacity,
		Hits:      hits,
		Misses:    misses,
		Evictions: evictions,
	}
	if total := hits + misses; total > 0 {
		s.HitRate = float64(hits) / float64(total)
	}
	return s
}
