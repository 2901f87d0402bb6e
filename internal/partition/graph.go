// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package partition

import (
	"image"
	"iter"
)

// Default placement settings.
const (
	// DefaultRowAlign is the quantum new row heights are rounded up to.
	DefaultRowAlign = 4

	// DefaultRowSlack is how much taller than the aligned request an empty
	// row must be before it is split.
	DefaultRowSlack = 2
)

// nilIndex marks a missing neighbor.
const nilIndex int32 = -1

// State is the occupancy state of an item.
type State uint8

const (
	// Free items hold no content and carry no value.
	Free State = iota

	// Pending items have reserved space whose pixels are not written yet.
	Pending

	// Committed items have been written to the backing surface.
	Committed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Free:
		return "Free"
	case Pending:
		return "Pending"
	case Committed:
		return "Committed"
	default:
		return "Unknown"
	}
}

// Handle refers to one occupancy of an item slot. It stops resolving once
// the item is evicted or its slot is merged away. The zero Handle is invalid.
type Handle struct {
	index int32
	gen   uint32
}

// IsValid reports whether h was issued by a Graph.
// A valid handle may still be stale; use Graph.Item to resolve it.
func (h Handle) IsValid() bool {
	return h.gen != 0
}

// item is an arena slot for a rectangle inside a row.
type item[T any] struct {
	rect  image.Rectangle
	state State
	row   int32
	left  int32
	right int32
	value T
	gen   uint32
	live  bool
}

// row is an arena slot for a horizontal strip of the surface.
type row struct {
	rect  image.Rectangle
	first int32
	prev  int32
	next  int32
	count int
	gen   uint32
	live  bool
}

// ItemInfo is a read-only view of an item.
type ItemInfo struct {
	Handle Handle
	Bounds image.Rectangle
	State  State
}

// RowInfo is a read-only view of a row and its items, left to right.
type RowInfo struct {
	Bounds image.Rectangle
	Items  []ItemInfo
}

// Stats describes the current shape of a graph.
type Stats struct {
	Rows      int
	Items     int
	FreeItems int
	UsedArea  int
}

// Option configures a Graph.
type Option func(*options)

type options struct {
	rowAlign int
	rowSlack int
}

// WithRowAlign sets the quantum new row heights are rounded up to.
// Values below 1 are treated as 1.
func WithRowAlign(n int) Option {
	return func(o *options) {
		o.rowAlign = max(n, 1)
	}
}

// WithRowSlack sets how much extra height an empty row may keep before
// an insert splits it. Negative values are treated as 0.
func WithRowSlack(n int) Option {
	return func(o *options) {
		o.rowSlack = max(n, 0)
	}
}

// Graph partitions a fixed-size surface into rows and items.
// T is the payload stored on occupied items.
//
// Graph is not safe for concurrent use.
type Graph[T any] struct {
	bounds image.Rectangle
	align  int
	slack  int

	rows  []row
	items []item[T]

	// recycled arena slots
	freeRows  []int32
	freeItems []int32

	head int32

	liveRows  int
	liveItems int
	freeCount int
	usedArea  int
}

// New creates a graph over a width x height surface holding one empty row.
// Non-positive dimensions produce a graph where every Insert fails.
func New[T any](width, height int, opts ...Option) *Graph[T] {
	o := options{rowAlign: DefaultRowAlign, rowSlack: DefaultRowSlack}
	for _, opt := range opts {
		opt(&o)
	}
	g := &Graph[T]{
		bounds: image.Rect(0, 0, max(width, 0), max(height, 0)),
		align:  o.rowAlign,
		slack:  o.rowSlack,
		rows:   make([]row, 0, 16),
		items:  make([]item[T], 0, 64),
	}
	g.Reset()
	return g
}

// Reset drops all content and restores a single empty row.
// Every previously issued handle becomes stale.
func (g *Graph[T]) Reset() {
	for i := range g.items {
		g.items[i] = item[T]{gen: g.items[i].gen + 1}
	}
	for i := range g.rows {
		g.rows[i] = row{gen: g.rows[i].gen + 1}
	}
	g.freeItems = g.freeItems[:0]
	g.freeRows = g.freeRows[:0]
	for i := len(g.items) - 1; i >= 0; i-- {
		g.freeItems = append(g.freeItems, int32(i)) //nolint:gosec // arena size fits int32
	}
	for i := len(g.rows) - 1; i >= 0; i-- {
		g.freeRows = append(g.freeRows, int32(i)) //nolint:gosec // arena size fits int32
	}
	g.liveRows, g.liveItems, g.freeCount, g.usedArea = 0, 0, 0, 0
	g.head = nilIndex

	if g.bounds.Empty() {
		return
	}
	r := g.allocRow(g.bounds)
	g.head = r
	it := g.allocItem(g.bounds, r)
	g.rows[r].first = it
	g.rows[r].count = 1
}

// Bounds returns the surface rectangle.
func (g *Graph[T]) Bounds() image.Rectangle {
	return g.bounds
}

// Stats returns counts describing the current partition.
func (g *Graph[T]) Stats() Stats {
	return Stats{
		Rows:      g.liveRows,
		Items:     g.liveItems,
		FreeItems: g.freeCount,
		UsedArea:  g.usedArea,
	}
}

// Item resolves h. It reports false for invalid or stale handles.
func (g *Graph[T]) Item(h Handle) (ItemInfo, bool) {
	i, ok := g.lookup(h)
	if !ok {
		return ItemInfo{}, false
	}
	it := &g.items[i]
	return ItemInfo{Handle: h, Bounds: it.rect, State: it.state}, true
}

// Value returns a pointer to the payload of an occupied item.
// The pointer is valid until the next Insert, Evict or Reset.
func (g *Graph[T]) Value(h Handle) (*T, bool) {
	i, ok := g.lookup(h)
	if !ok || g.items[i].state == Free {
		return nil, false
	}
	return &g.items[i].value, true
}

// Commit moves a Pending item to Committed.
// Committing anything but a live Pending item panics.
func (g *Graph[T]) Commit(h Handle) {
	i, ok := g.lookup(h)
	if !ok {
		violate("commit of stale handle")
	}
	if g.items[i].state != Pending {
		violate("commit of " + g.items[i].state.String() + " item")
	}
	g.items[i].state = Committed
}

// Rows yields every row top to bottom with its items left to right.
func (g *Graph[T]) Rows() iter.Seq[RowInfo] {
	return func(yield func(RowInfo) bool) {
		for r := g.head; r != nilIndex; r = g.rows[r].next {
			info := RowInfo{
				Bounds: g.rows[r].rect,
				Items:  make([]ItemInfo, 0, g.rows[r].count),
			}
			for i := g.rows[r].first; i != nilIndex; i = g.items[i].right {
				it := &g.items[i]
				info.Items = append(info.Items, ItemInfo{
					Handle: g.handle(i),
					Bounds: it.rect,
					State:  it.state,
				})
			}
			if !yield(info) {
				return
			}
		}
	}
}

// Occupied yields the handles of all non-Free items in placement order:
// rows top to bottom, items left to right.
func (g *Graph[T]) Occupied() iter.Seq2[Handle, State] {
	return func(yield func(Handle, State) bool) {
		for r := g.head; r != nilIndex; r = g.rows[r].next {
			for i := g.rows[r].first; i != nilIndex; i = g.items[i].right {
				if g.items[i].state == Free {
					continue
				}
				if !yield(g.handle(i), g.items[i].state) {
					return
				}
			}
		}
	}
}

// retire invalidates outstanding handles to item i.
func (g *Graph[T]) retire(i int32) {
	g.items[i].gen++
	if g.items[i].gen == 0 {
		g.items[i].gen = 1
	}
}

func (g *Graph[T]) handle(i int32) Handle {
	return Handle{index: i, gen: g.items[i].gen}
}

func (g *Graph[T]) lookup(h Handle) (int32, bool) {
	if !h.IsValid() || h.index < 0 || int(h.index) >= len(g.items) {
		return nilIndex, false
	}
	it := &g.items[h.index]
	if !it.live || it.gen != h.gen {
		return nilIndex, false
	}
	return h.index, true
}

// rowEmpty reports whether a row holds exactly one Free item.
func (g *Graph[T]) rowEmpty(r int32) bool {
	rw := &g.rows[r]
	return rw.count == 1 && g.items[rw.first].state == Free
}

// allocItem takes a slot from the pool or grows the arena.
// The new item is Free and unlinked.
func (g *Graph[T]) allocItem(rect image.Rectangle, r int32) int32 {
	var i int32
	if n := len(g.freeItems); n > 0 {
		i = g.freeItems[n-1]
		g.freeItems = g.freeItems[:n-1]
	} else {
		g.items = append(g.items, item[T]{})
		i = int32(len(g.items) - 1) //nolint:gosec // arena size fits int32
	}
	gen := g.items[i].gen
	if gen == 0 {
		gen = 1
	}
	g.items[i] = item[T]{
		rect:  rect,
		state: Free,
		row:   r,
		left:  nilIndex,
		right: nilIndex,
		gen:   gen,
		live:  true,
	}
	g.liveItems++
	g.freeCount++
	return i
}

// releaseItem returns a Free, unlinked slot to the pool.
func (g *Graph[T]) releaseItem(i int32) {
	it := &g.items[i]
	if it.state != Free {
		violate("release of occupied item")
	}
	*it = item[T]{gen: it.gen + 1}
	g.freeItems = append(g.freeItems, i)
	g.liveItems--
	g.freeCount--
}

func (g *Graph[T]) allocRow(rect image.Rectangle) int32 {
	var r int32
	if n := len(g.freeRows); n > 0 {
		r = g.freeRows[n-1]
		g.freeRows = g.freeRows[:n-1]
	} else {
		g.rows = append(g.rows, row{})
		r = int32(len(g.rows) - 1) //nolint:gosec // arena size fits int32
	}
	gen := g.rows[r].gen
	if gen == 0 {
		gen = 1
	}
	g.rows[r] = row{
		rect:  rect,
		first: nilIndex,
		prev:  nilIndex,
		next:  nilIndex,
		gen:   gen,
		live:  true,
	}
	g.liveRows++
	return r
}

func (g *Graph[T]) releaseRow(r int32) {
	g.rows[r] = row{gen: g.rows[r].gen + 1}
	g.freeRows = append(g.freeRows, r)
	g.liveRows--
}

func alignUp(v, quantum int) int {
	if quantum <= 1 {
		return v
	}
	return (v + quantum - 1) / quantum * quantum
}
