// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package partition

import (
	"image"
	"log/slog"
)

// Insert reserves a w x h rectangle and stores value on the new item, which
// starts out Pending. It returns the handle and the reserved rectangle.
//
// Rows are scanned top to bottom and the first Free item that fits is used.
// Returns ErrInvalidSize for non-positive dimensions and ErrNoSpace when no
// item can hold the request.
func (g *Graph[T]) Insert(w, h int, value T) (Handle, image.Rectangle, error) {
	if w <= 0 || h <= 0 {
		return Handle{}, image.Rectangle{}, ErrInvalidSize
	}
	if w > g.bounds.Dx() || h > g.bounds.Dy() {
		return Handle{}, image.Rectangle{}, ErrNoSpace
	}

	for r := g.head; r != nilIndex; r = g.rows[r].next {
		if g.rowEmpty(r) && g.rows[r].rect.Dy() > alignUp(h, g.align)+g.slack {
			g.splitRow(r, alignUp(h, g.align))
		}
		if g.rows[r].rect.Dy() < h {
			continue
		}
		for i := g.rows[r].first; i != nilIndex; i = g.items[i].right {
			it := &g.items[i]
			if it.state != Free || it.rect.Dx() < w {
				continue
			}
			i = g.place(i, w, h)
			g.items[i].value = value
			return g.handle(i), g.items[i].rect, nil
		}
	}
	return Handle{}, image.Rectangle{}, ErrNoSpace
}

// splitRow cuts an empty row so the top part is height tall. The row keeps
// its slot and a new empty row takes the remainder below it.
func (g *Graph[T]) splitRow(r int32, height int) {
	top := g.rows[r].rect
	bottom := top
	top.Max.Y = top.Min.Y + height
	bottom.Min.Y = top.Max.Y

	nr := g.allocRow(bottom)
	ni := g.allocItem(bottom, nr)
	g.rows[nr].first = ni
	g.rows[nr].count = 1

	g.rows[r].rect = top
	g.items[g.rows[r].first].rect = top

	next := g.rows[r].next
	g.rows[nr].prev = r
	g.rows[nr].next = next
	g.rows[r].next = nr
	if next != nilIndex {
		g.rows[next].prev = nr
	}

	Logger().Debug("partition: row split",
		slog.Any("top", top),
		slog.Any("bottom", bottom))
}

// place turns the Free item i into a Pending w-wide item and returns the
// index of the occupied item. A wider Free item is split: the new item
// takes the left w columns and i keeps the remainder.
func (g *Graph[T]) place(i int32, w, h int) int32 {
	it := &g.items[i]
	r := it.row
	rowRect := g.rows[r].rect
	content := image.Rect(it.rect.Min.X, rowRect.Min.Y, it.rect.Min.X+w, rowRect.Min.Y+h)

	if it.rect.Dx() == w {
		g.retire(i)
		it.state = Pending
		it.rect = content
		g.freeCount--
		g.usedArea += w * h
		return i
	}

	ni := g.allocItem(content, r)
	g.items[ni].state = Pending
	g.freeCount--

	// Allocation may grow the arena; re-read the slot.
	it = &g.items[i]
	it.rect.Min.X += w

	left := it.left
	g.items[ni].left = left
	g.items[ni].right = i
	it.left = ni
	if left != nilIndex {
		g.items[left].right = ni
	} else {
		g.rows[r].first = ni
	}
	g.rows[r].count++
	g.usedArea += w * h
	return ni
}
