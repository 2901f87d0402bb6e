// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package runatlas caches rasterized text runs in a single fixed-size
// texture atlas.
//
// # Overview
//
// A run is a piece of text at a given point size, rendered once into an
// 8-bit coverage [Bitmap]. The [Atlas] packs runs into one shared surface
// and remembers where each one lives, so later draws of the same
// (text, size) pair reuse the stored pixels.
//
// The atlas does not draw anything itself. Callers follow a write-back
// protocol:
//
//	entry := atlas.Lookup(key)
//	if entry.State == runatlas.Missing {
//	    bmp, err := shape(key.Text, key.Size)
//	    ...
//	    rect, err := atlas.InsertNew(key, bmp) // entry is now Pending
//	}
//	...
//	for _, up := range atlas.FlushPending() { // entries become Committed
//	    upload(up.Rect, up.Bitmap)
//	}
//
// [Atlas.Flush] does the last step through a [SurfaceWriter] and commits
// only what was written. The surface package provides CPU and GPU writers.
//
// # Packing
//
// Space is managed by a row/item partition graph. Each entry reserves its
// bitmap plus a transparent border on every side. Inserts are first fit:
// rows top to bottom, items left to right. Removing an entry coalesces the
// freed space with free neighbors immediately, and empty rows merge with
// empty rows next to them, so space released by many small runs becomes
// available to larger ones.
//
// The atlas never evicts on its own. When [Atlas.InsertNew] reports
// [ErrOutOfSpace] the caller decides what to [Atlas.Remove]; the textrender
// package implements a recency-based policy on top of this.
//
// # Concurrency
//
// [Atlas] is not safe for concurrent use. [SyncAtlas] wraps one behind a
// mutex.
//
// # Logging
//
// The package is silent by default. [SetLogger] enables debug output for
// row splits, row merges and out-of-space conditions.
package runatlas
