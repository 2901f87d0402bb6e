// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package partition

import "log/slog"

// Evict frees the item behind h and drops its payload, then coalesces the
// freed space with Free neighbors. If the row ends up empty it is merged
// with empty rows above and below.
//
// Evicting a Free item or using a stale handle panics with *InvariantError.
func (g *Graph[T]) Evict(h Handle) {
	i, ok := g.lookup(h)
	if !ok {
		violate("evict of stale handle")
	}
	it := &g.items[i]
	if it.state == Free {
		violate("evict of Free item")
	}

	g.usedArea -= it.rect.Dx() * it.rect.Dy()
	var zero T
	it.value = zero
	it.state = Free
	g.retire(i)
	g.freeCount++

	// Free items span the full row height.
	r := it.row
	it.rect.Min.Y = g.rows[r].rect.Min.Y
	it.rect.Max.Y = g.rows[r].rect.Max.Y

	i = g.mergeItems(it.left, i)
	i = g.mergeItems(i, g.items[i].right)
	if g.freeNeighbor(i) {
		violate("adjacent Free items after coalescing")
	}

	if !g.rowEmpty(r) {
		return
	}
	r = g.mergeRows(g.rows[r].prev, r)
	g.mergeRows(r, g.rows[r].next)
}

// mergeItems folds item b into its left neighbor a when both are Free and
// returns the surviving index. Otherwise it returns whichever of a or b is
// Free, preferring b.
func (g *Graph[T]) mergeItems(a, b int32) int32 {
	if a == nilIndex {
		return b
	}
	if b == nilIndex {
		return a
	}
	if g.items[a].state != Free || g.items[b].state != Free {
		if g.items[b].state == Free {
			return b
		}
		return a
	}
	if g.items[a].right != b || g.items[b].left != a {
		violate("merge of non-adjacent items")
	}

	g.items[a].rect.Max.X = g.items[b].rect.Max.X
	right := g.items[b].right
	g.items[a].right = right
	if right != nilIndex {
		g.items[right].left = a
	}
	g.rows[g.items[a].row].count--
	g.releaseItem(b)
	return a
}

// freeNeighbor reports whether item i has a Free item on either side.
func (g *Graph[T]) freeNeighbor(i int32) bool {
	for _, n := range [2]int32{g.items[i].left, g.items[i].right} {
		if n != nilIndex && g.items[n].state == Free {
			return true
		}
	}
	return false
}

// mergeRows folds row b into the row a above it when both are empty and
// returns the surviving row. Otherwise it returns b.
func (g *Graph[T]) mergeRows(a, b int32) int32 {
	if a == nilIndex {
		return b
	}
	if b == nilIndex {
		return a
	}
	if !g.rowEmpty(a) || !g.rowEmpty(b) {
		if g.rowEmpty(b) {
			return b
		}
		return a
	}
	if g.rows[a].next != b || g.rows[b].prev != a {
		violate("merge of non-adjacent rows")
	}

	g.rows[a].rect.Max.Y = g.rows[b].rect.Max.Y
	g.items[g.rows[a].first].rect = g.rows[a].rect

	next := g.rows[b].next
	g.rows[a].next = next
	if next != nilIndex {
		g.rows[next].prev = a
	}

	g.releaseItem(g.rows[b].first)
	g.releaseRow(b)

	Logger().Debug("partition: rows merged", slog.Any("bounds", g.rows[a].rect))
	return a
}
