// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package partition

import "fmt"

// Check verifies the graph invariants: rows tile the surface top to bottom,
// items tile each row left to right, no two Free items are adjacent, and
// all neighbor links are symmetric. It returns an *InvariantError
// describing the first violation found, or nil.
//
// Check walks the whole graph and is meant for tests and debugging.
func (g *Graph[T]) Check() error {
	if g.bounds.Empty() {
		if g.head != nilIndex || g.liveRows != 0 {
			return checkErr("empty surface has rows")
		}
		return nil
	}

	y := g.bounds.Min.Y
	rows, items, free, used := 0, 0, 0, 0
	prev := nilIndex
	for r := g.head; r != nilIndex; r = g.rows[r].next {
		rw := &g.rows[r]
		if !rw.live {
			return checkErr("row %d is linked but not live", r)
		}
		if rw.prev != prev {
			return checkErr("row %d prev link is %d, want %d", r, rw.prev, prev)
		}
		if rw.rect.Min.Y != y {
			return checkErr("row %d starts at y=%d, want %d", r, rw.rect.Min.Y, y)
		}
		if rw.rect.Empty() {
			return checkErr("row %d is empty: %v", r, rw.rect)
		}
		if rw.rect.Min.X != g.bounds.Min.X || rw.rect.Max.X != g.bounds.Max.X {
			return checkErr("row %d does not span the surface width: %v", r, rw.rect)
		}
		n, f, u, err := g.checkRow(r)
		if err != nil {
			return err
		}
		items += n
		free += f
		used += u
		rows++
		y = rw.rect.Max.Y
		prev = r
		if rows > len(g.rows) {
			return checkErr("row list has a cycle")
		}
	}
	if y != g.bounds.Max.Y {
		return checkErr("rows end at y=%d, want %d", y, g.bounds.Max.Y)
	}
	if rows != g.liveRows || items != g.liveItems || free != g.freeCount || used != g.usedArea {
		return checkErr("stats drifted: rows %d/%d items %d/%d free %d/%d used %d/%d",
			rows, g.liveRows, items, g.liveItems, free, g.freeCount, used, g.usedArea)
	}
	return nil
}

func (g *Graph[T]) checkRow(r int32) (items, free, used int, err error) {
	rw := &g.rows[r]
	x := rw.rect.Min.X
	left := nilIndex
	prevFree := false
	for i := rw.first; i != nilIndex; i = g.items[i].right {
		it := &g.items[i]
		switch {
		case !it.live:
			return 0, 0, 0, checkErr("item %d in row %d is not live", i, r)
		case it.row != r:
			return 0, 0, 0, checkErr("item %d points at row %d, want %d", i, it.row, r)
		case it.left != left:
			return 0, 0, 0, checkErr("item %d left link is %d, want %d", i, it.left, left)
		case it.rect.Min.X != x:
			return 0, 0, 0, checkErr("item %d starts at x=%d, want %d", i, it.rect.Min.X, x)
		case it.rect.Empty():
			return 0, 0, 0, checkErr("item %d is empty: %v", i, it.rect)
		case it.rect.Min.Y != rw.rect.Min.Y || it.rect.Max.Y > rw.rect.Max.Y:
			return 0, 0, 0, checkErr("item %d %v leaves row %v", i, it.rect, rw.rect)
		}
		if it.state == Free {
			if prevFree {
				return 0, 0, 0, checkErr("adjacent Free items %d and %d", left, i)
			}
			if it.rect.Max.Y != rw.rect.Max.Y {
				return 0, 0, 0, checkErr("Free item %d does not span row height", i)
			}
			free++
		} else {
			used += it.rect.Dx() * it.rect.Dy()
		}
		prevFree = it.state == Free
		x = it.rect.Max.X
		left = i
		items++
		if items > len(g.items) {
			return 0, 0, 0, checkErr("item list in row %d has a cycle", r)
		}
	}
	if x != rw.rect.Max.X {
		return 0, 0, 0, checkErr("items in row %d end at x=%d, want %d", r, x, rw.rect.Max.X)
	}
	if items != rw.count {
		return 0, 0, 0, checkErr("row %d counts %d items, found %d", r, rw.count, items)
	}
	return items, free, used, nil
}

func checkErr(format string, args ...any) error {
	return &InvariantError{Reason: fmt.Sprintf(format, args...)}
}
