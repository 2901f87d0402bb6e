// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package runatlas

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/gogpu/runatlas/internal/partition"
)

// EntryState is the cache state of a key.
type EntryState uint8

const (
	// Missing means the key is not cached.
	Missing EntryState = iota

	// Pending means space is reserved but the pixels are not on the
	// surface yet. The entry is drawable after the next flush.
	Pending

	// Committed means the pixels have been written to the surface.
	Committed
)

// String returns the state name.
func (s EntryState) String() string {
	switch s {
	case Missing:
		return "Missing"
	case Pending:
		return "Pending"
	case Committed:
		return "Committed"
	default:
		return "Unknown"
	}
}

// Entry describes where a key lives in the atlas.
type Entry struct {
	State EntryState

	// Rect is where the bitmap pixels are, exactly the bitmap size.
	Rect image.Rectangle

	// Slot is the reserved region, Rect grown by the border.
	Slot image.Rectangle
}

// slot is the payload stored on occupied partition items.
type slot struct {
	key Key

	// bitmap is held only while the entry is pending.
	bitmap Bitmap
}

// Atlas caches rasterized runs in one fixed-size surface.
//
// Atlas is not safe for concurrent use; see SyncAtlas.
type Atlas struct {
	config Config
	graph  *partition.Graph[slot]

	committed map[Key]partition.Handle
	pending   map[Key]partition.Handle

	stats counters
}

// New creates an atlas of the given size with default settings modified
// by opts.
func New(width, height int, opts ...Option) (*Atlas, error) {
	cfg := DefaultConfig()
	cfg.Width = width
	cfg.Height = height
	for _, opt := range opts {
		opt(&cfg)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates an atlas from a validated configuration.
func NewWithConfig(cfg Config) (*Atlas, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Atlas{
		config: cfg,
		graph: partition.New[slot](cfg.Width, cfg.Height,
			partition.WithRowAlign(cfg.RowAlign),
			partition.WithRowSlack(cfg.RowSlack)),
		committed: make(map[Key]partition.Handle),
		pending:   make(map[Key]partition.Handle),
	}, nil
}

// Config returns the atlas configuration.
func (a *Atlas) Config() Config {
	return a.config
}

// Bounds returns the surface rectangle.
func (a *Atlas) Bounds() image.Rectangle {
	return a.graph.Bounds()
}

// Lookup reports the state and location of key.
func (a *Atlas) Lookup(key Key) Entry {
	e := a.Peek(key)
	if e.State == Missing {
		a.stats.misses.Add(1)
	} else {
		a.stats.hits.Add(1)
	}
	return e
}

// Peek is Lookup without touching the hit and miss counters.
func (a *Atlas) Peek(key Key) Entry {
	if h, ok := a.committed[key]; ok {
		return a.entry(Committed, h)
	}
	if h, ok := a.pending[key]; ok {
		return a.entry(Pending, h)
	}
	return Entry{}
}

// Contains reports whether key is pending or committed without touching
// the hit and miss counters.
func (a *Atlas) Contains(key Key) bool {
	_, c := a.committed[key]
	_, p := a.pending[key]
	return c || p
}

func (a *Atlas) entry(state EntryState, h partition.Handle) Entry {
	info, ok := a.graph.Item(h)
	if !ok {
		panic(&InvariantError{Reason: "cached key has a stale handle"})
	}
	return Entry{
		State: state,
		Rect:  info.Bounds.Inset(a.config.Border),
		Slot:  info.Bounds,
	}
}

// InsertNew reserves space for bmp under key and records it as pending.
// It returns the rectangle the bitmap will occupy once flushed.
//
// The atlas keeps bmp until it is flushed; callers must not modify its
// pixels in the meantime.
//
// Returns ErrInvalidBitmap for a malformed bitmap, ErrKeyExists if key is
// already cached, and an *OutOfSpaceError (matching ErrOutOfSpace) when no
// free region is large enough. A failed insert leaves the atlas unchanged.
func (a *Atlas) InsertNew(key Key, bmp Bitmap) (image.Rectangle, error) {
	if err := bmp.Validate(); err != nil {
		return image.Rectangle{}, err
	}
	if a.Contains(key) {
		return image.Rectangle{}, fmt.Errorf("%w: %v", ErrKeyExists, key)
	}

	b := a.config.Border
	w, h := bmp.Width+2*b, bmp.Height+2*b
	handle, reserved, err := a.graph.Insert(w, h, slot{key: key, bitmap: bmp})
	if err != nil {
		if !errors.Is(err, partition.ErrNoSpace) {
			return image.Rectangle{}, fmt.Errorf("runatlas: insert %v: %w", key, err)
		}
		a.stats.outOfSpace.Add(1)
		Logger().Debug("runatlas: out of space",
			slog.String("key", key.String()),
			slog.Int("width", w),
			slog.Int("height", h),
			slog.Int("entries", a.Len()))
		return image.Rectangle{}, &OutOfSpaceError{
			Width:       w,
			Height:      h,
			AtlasWidth:  a.config.Width,
			AtlasHeight: a.config.Height,
		}
	}

	a.pending[key] = handle
	a.stats.inserts.Add(1)
	return reserved.Inset(b), nil
}

// Remove evicts key and coalesces the freed space with its neighbors.
// A pending entry's bitmap is dropped without being written.
// Returns ErrNotFound if key is not cached.
func (a *Atlas) Remove(key Key) error {
	if h, ok := a.pending[key]; ok {
		delete(a.pending, key)
		a.graph.Evict(h)
		a.stats.removes.Add(1)
		return nil
	}
	if h, ok := a.committed[key]; ok {
		delete(a.committed, key)
		a.graph.Evict(h)
		a.stats.removes.Add(1)
		return nil
	}
	return fmt.Errorf("%w: %v", ErrNotFound, key)
}

// Clear drops every entry, pending or committed, and resets the surface
// to a single free region. The surface pixels are left as they are.
func (a *Atlas) Clear() {
	a.graph.Reset()
	clear(a.committed)
	clear(a.pending)
}

// Len returns the number of cached keys, pending and committed.
func (a *Atlas) Len() int {
	return len(a.committed) + len(a.pending)
}

// PendingLen returns the number of entries waiting to be flushed.
func (a *Atlas) PendingLen() int {
	return len(a.pending)
}

// Keys returns every cached key in placement order: top to bottom, left
// to right.
func (a *Atlas) Keys() []Key {
	keys := make([]Key, 0, a.Len())
	for h := range a.graph.Occupied() {
		if v, ok := a.graph.Value(h); ok {
			keys = append(keys, v.key)
		}
	}
	return keys
}

// Utilization returns the fraction of the surface covered by reserved
// slots, in [0, 1].
func (a *Atlas) Utilization() float64 {
	area := a.config.Width * a.config.Height
	if area == 0 {
		return 0
	}
	return float64(a.graph.Stats().UsedArea) / float64(area)
}

// Validate checks the partition invariants and that the key tables agree
// with the partition. It is intended for tests and debugging.
func (a *Atlas) Validate() error {
	if err := a.graph.Check(); err != nil {
		return err
	}
	if err := a.validateTable(a.pending, partition.Pending); err != nil {
		return err
	}
	if err := a.validateTable(a.committed, partition.Committed); err != nil {
		return err
	}
	occupied := 0
	for range a.graph.Occupied() {
		occupied++
	}
	if occupied != a.Len() {
		return &InvariantError{
			Reason: fmt.Sprintf("%d occupied items for %d cached keys", occupied, a.Len()),
		}
	}
	return nil
}

func (a *Atlas) validateTable(table map[Key]partition.Handle, want partition.State) error {
	for key, h := range table {
		info, ok := a.graph.Item(h)
		if !ok {
			return &InvariantError{Reason: fmt.Sprintf("%v has a stale handle", key)}
		}
		if info.State != want {
			return &InvariantError{
				Reason: fmt.Sprintf("%v is %v in the partition, want %v", key, info.State, want),
			}
		}
		if v, _ := a.graph.Value(h); v.key != key {
			return &InvariantError{
				Reason: fmt.Sprintf("%v maps to an item holding %v", key, v.key),
			}
		}
	}
	return nil
}
