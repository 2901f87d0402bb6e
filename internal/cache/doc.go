// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package cache provides the generic caches used by the shaper.
//
// # Cache[K, V]
//
// A mutex-guarded map with a soft limit. When the limit is exceeded the
// least recently used quarter of the entries is dropped. The shaper keeps
// per-size font metrics in one and purges it whenever a font is
// registered.
//
//	memo := cache.New[int, Metrics](64)
//	m, err := memo.GetOrLoad(size, func() (Metrics, error) { ... })
//
// # Sharded[K, V]
//
// A sharded LRU for high-concurrency lookups, one
// github.com/hashicorp/golang-lru simplelru list per shard. The shaper
// caches glyph outlines in one, since many runs share the same glyphs.
//
//	outlines := cache.NewSharded[uint64, Outline](256, cache.Uint64Hasher)
//	o := outlines.GetOrCreate(key, func() Outline { ... })
//
// Both types are safe for concurrent use and must not be copied after
// creation.
package cache
