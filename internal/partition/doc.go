// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package partition implements the row/item partition graph behind the
// run atlas.
//
// The surface is cut into horizontal rows that tile it top to bottom. Each
// row is cut into items that tile it left to right. An item is either Free
// or occupied (Pending or Committed). Rows and items live in arenas and
// refer to each other by slot index, so splitting and merging only rewrites
// indices. Callers hold a [Handle], which carries a generation counter: once
// an item is evicted, or its slot is merged away and recycled, old handles
// to it stop resolving.
//
// # Invariants
//
// After every exported operation:
//
//   - I1: rows tile the surface vertically with no gaps or overlaps
//   - I2: the items of each row tile the row horizontally
//   - I3: no two Free items are adjacent within a row
//
// Eviction coalesces eagerly: freed items merge with Free neighbors, and a
// row that becomes empty merges with empty neighbor rows. [Graph.Check]
// verifies all of the above and is meant for tests and debug builds.
// Breaking an invariant from inside the package panics with an
// [*InvariantError].
//
// # Placement policy
//
// Insert is first fit: rows are scanned top to bottom and items left to
// right. An empty row taller than the request (rounded up to the row
// alignment) plus the slack is split so the request gets a tight row and
// the remainder stays available for other heights.
package partition
