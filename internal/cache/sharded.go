// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package cache

import (
	"encoding/binary"
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/golang-lru/simplelru"
)

const (
	// ShardCount is the number of shards. Must be a power of 2.
	ShardCount = 16

	// DefaultCapacity is the default maximum entries per shard.
	DefaultCapacity = 256

	shardMask = ShardCount - 1
)

// Hasher computes the hash used for shard selection.
type Hasher[K any] func(K) uint64

// Uint64Hasher computes the FNV-1a hash of the key's little-endian bytes,
// so packed keys whose low bits repeat still spread across shards.
func Uint64Hasher(u uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], u)
	h := fnv.New64a()
	_, _ = h.Write(buf[:])
	return h.Sum64()
}

// Sharded is a thread-safe LRU cache split into ShardCount independently
// locked shards.
type Sharded[K comparable, V any] struct {
	shards   [ShardCount]*shard
	hasher   Hasher[K]
	capacity int // per shard

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type shard struct {
	mu  sync.Mutex
	lru *simplelru.LRU
}

// NewSharded creates a sharded cache holding up to capacity entries per
// shard. If capacity <= 0, DefaultCapacity is used.
func NewSharded[K comparable, V any](capacity int, hasher Hasher[K]) *Sharded[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &Sharded[K, V]{hasher: hasher, capacity: capacity}
	for i := range c.shards {
		l, err := simplelru.NewLRU(capacity, nil)
		if err != nil {
			// NewLRU only fails for non-positive sizes.
			panic(err)
		}
		c.shards[i] = &shard{lru: l}
	}
	return c
}

func (c *Sharded[K, V]) shardFor(key K) *shard {
	return c.shards[c.hasher(key)&shardMask]
}

// GetOrCreate returns the cached value for key or creates and caches it.
// create runs with the shard locked and must not call back into c.
func (c *Sharded[K, V]) GetOrCreate(key K, create func() V) V {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.lru.Get(key); ok {
		c.hits.Add(1)
		return v.(V)
	}
	c.misses.Add(1)

	v := create()
	if s.lru.Add(key, v) {
		c.evictions.Add(1)
	}
	return v
}

// Len returns the number of entries across all shards.
func (c *Sharded[K, V]) Len() int {
	n := 0
	for _, s := range c.shards {
		s.mu.Lock()
		n += s.lru.Len()
		s.mu.Unlock()
	}
	return n
}

// Stats returns cache statistics. Capacity is the total across shards.
func (c *Sharded[K, V]) Stats() Stats {
	return newStats(c.Len(), c.capacity*ShardCount, c.hits.Load(), c.misses.Load(), c.evictions.Load())
}
