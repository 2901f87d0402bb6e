// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package textrender

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	lru "github.com/hashicorp/golang-lru"

	"github.com/gogpu/runatlas"
	"github.com/gogpu/runatlas/internal/parallel"
)

// ShapeFunc rasterizes text at size into a coverage bitmap.
// (*shaper.Shaper).Shape satisfies it.
type ShapeFunc func(text string, size int) (runatlas.Bitmap, error)

// Stats are renderer counters since creation or the last ResetStats.
type Stats struct {
	// Frames is the number of completed Render calls.
	Frames uint64

	// Draws counts Draw calls that produced a quad.
	Draws uint64

	// Hits counts draws served from the atlas without shaping.
	Hits uint64

	// Shaped counts strings shaped and inserted.
	Shaped uint64

	// Evictions counts keys removed from the atlas by the renderer.
	Evictions uint64

	// Retries counts inserts retried after an eviction.
	Retries uint64
}

type drawCmd struct {
	key runatlas.Key
	dst image.Point
}

// Renderer caches drawn strings in an atlas and emits quads per frame.
type Renderer struct {
	config Config
	atlas  *runatlas.Atlas
	shape  ShapeFunc
	writer runatlas.SurfaceWriter

	// recent maps runatlas.Key to the last frame (uint64) it was drawn in,
	// least recently drawn first.
	recent *lru.Cache

	// pool shapes Prefetch batches; started on first use.
	pool   *parallel.Pool
	closed bool

	frame uint64
	draws []drawCmd
	stats Stats
}

// Run is a string at a pixel size, as passed to Draw.
type Run struct {
	Text string
	Size int
}

// New creates a renderer over atlas. Bitmaps are produced by shape and
// written through w when a frame is rendered.
func New(atlas *runatlas.Atlas, shape ShapeFunc, w runatlas.SurfaceWriter, opts ...Option) (*Renderer, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return NewWithConfig(atlas, shape, w, cfg)
}

// NewWithConfig creates a renderer with an explicit configuration.
func NewWithConfig(atlas *runatlas.Atlas, shape ShapeFunc, w runatlas.SurfaceWriter, cfg Config) (*Renderer, error) {
	switch {
	case atlas == nil:
		return nil, ErrNilAtlas
	case shape == nil:
		return nil, ErrNilShaper
	case w == nil:
		return nil, runatlas.ErrNilWriter
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Renderer{
		config: cfg,
		atlas:  atlas,
		shape:  shape,
		writer: w,
		frame:  1,
	}
	recent, err := lru.NewWithEvict(cfg.MaxKeys, r.onEvicted)
	if err != nil {
		return nil, fmt.Errorf("textrender: recency list: %w", err)
	}
	r.recent = recent
	return r, nil
}

// onEvicted runs whenever a key leaves the recency list.
func (r *Renderer) onEvicted(k, _ any) {
	key, ok := k.(runatlas.Key)
	if !ok {
		return
	}
	if err := r.atlas.Remove(key); err == nil {
		r.stats.Evictions++
	}
}

// Atlas returns the underlying atlas.
func (r *Renderer) Atlas() *runatlas.Atlas {
	return r.atlas
}

// Frame returns the number of the frame being recorded, starting at 1.
func (r *Renderer) Frame() uint64 {
	return r.frame
}

// Draw queues text at size with its top-left corner at (x, y). On an atlas
// miss the text is shaped and inserted, evicting stale keys if the atlas is
// full. The error from shaping or from a failed insert is returned and no
// quad is queued.
func (r *Renderer) Draw(text string, size, x, y int) error {
	key := runatlas.Key{Text: text, Size: size}

	if r.atlas.Lookup(key).State == runatlas.Missing {
		bmp, err := r.shape(text, size)
		if err != nil {
			return fmt.Errorf("textrender: shape %v: %w", key, err)
		}
		if err := r.insert(key, bmp); err != nil {
			return err
		}
		r.stats.Shaped++
	} else {
		r.stats.Hits++
	}

	r.recent.Add(key, r.frame)
	r.draws = append(r.draws, drawCmd{key: key, dst: image.Pt(x, y)})
	return nil
}

// insert places bmp, evicting the least recently drawn stale keys one at a
// time while the atlas reports it is out of space.
func (r *Renderer) insert(key runatlas.Key, bmp runatlas.Bitmap) error {
	evicted := 0
	defer func() {
		if evicted > 0 {
			runatlas.Logger().Debug("textrender: evicted stale runs",
				slog.String("key", key.String()),
				slog.Int("count", evicted))
		}
	}()

	for {
		_, err := r.atlas.InsertNew(key, bmp)
		if !errors.Is(err, runatlas.ErrOutOfSpace) {
			return err
		}
		if !r.evictOldest() {
			return err
		}
		evicted++
		r.stats.Retries++
	}
}

// evictOldest removes the least recently drawn key unless it was drawn in
// the current frame. Every draw refreshes recency, so once the oldest key
// is current no stale key remains.
func (r *Renderer) evictOldest() bool {
	k, v, ok := r.recent.GetOldest()
	if !ok {
		return false
	}
	if frame, _ := v.(uint64); frame == r.frame {
		return false
	}
	r.recent.Remove(k)
	return true
}

// Prefetch shapes the runs missing from the atlas concurrently and inserts
// them in the order given, so that drawing them later in the frame hits.
// Runs already in the atlas and repeated runs are skipped. Prefetched keys
// count as drawn in the current frame. Every run is attempted; the errors
// of those that failed are joined.
func (r *Renderer) Prefetch(runs []Run) error {
	var missing []runatlas.Key
	seen := make(map[runatlas.Key]struct{}, len(runs))
	for _, run := range runs {
		key := runatlas.Key{Text: run.Text, Size: run.Size}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if r.atlas.Contains(key) {
			r.recent.Add(key, r.frame)
			continue
		}
		missing = append(missing, key)
	}
	if len(missing) == 0 {
		return nil
	}

	if r.closed {
		return ErrClosed
	}
	if r.pool == nil {
		r.pool = parallel.NewPool(r.config.Workers)
	}
	type shaped struct {
		bmp runatlas.Bitmap
		err error
	}
	results, ok := parallel.Map(r.pool, missing, func(key runatlas.Key) shaped {
		bmp, err := r.shape(key.Text, key.Size)
		return shaped{bmp: bmp, err: err}
	})
	if !ok {
		return ErrClosed
	}

	var errs []error
	for i, key := range missing {
		if err := results[i].err; err != nil {
			errs = append(errs, fmt.Errorf("textrender: shape %v: %w", key, err))
			continue
		}
		if err := r.insert(key, results[i].bmp); err != nil {
			errs = append(errs, err)
			continue
		}
		r.stats.Shaped++
		r.recent.Add(key, r.frame)
	}
	runatlas.Logger().Debug("textrender: prefetched runs",
		slog.Int("requested", len(runs)),
		slog.Int("shaped", len(missing)-len(errs)),
		slog.Int("failed", len(errs)))
	return errors.Join(errs...)
}

// Render writes the frame's new bitmaps to the surface and returns one quad
// per successful Draw, in draw order. It then starts the next frame.
//
// If the surface write fails the frame is kept; the entries already written
// stay committed and Render can be called again.
func (r *Renderer) Render() ([]Quad, error) {
	if _, err := r.atlas.Flush(r.writer); err != nil {
		return nil, fmt.Errorf("textrender: frame %d: %w", r.frame, err)
	}

	bounds := r.atlas.Bounds()
	quads := make([]Quad, 0, len(r.draws))
	for _, d := range r.draws {
		// Resolve the rectangle now: a key evicted and inserted again later
		// in the frame has moved, and its old slot may hold another run.
		e := r.atlas.Peek(d.key)
		if e.State == runatlas.Missing {
			runatlas.Logger().Warn("textrender: run evicted before render",
				slog.String("key", d.key.String()))
			continue
		}
		quads = append(quads, newQuad(d.key, e.Rect, d.dst, bounds))
	}
	r.stats.Draws += uint64(len(quads))

	r.expire()
	r.draws = r.draws[:0]
	r.frame++
	r.stats.Frames++
	return quads, nil
}

// expire removes keys idle for FrameLifetime frames or more.
func (r *Renderer) expire() {
	if r.config.FrameLifetime == 0 {
		return
	}
	limit := uint64(r.config.FrameLifetime) //nolint:gosec // validated >= 0
	for _, k := range r.recent.Keys() {
		v, ok := r.recent.Peek(k)
		if !ok {
			continue
		}
		if frame, _ := v.(uint64); r.frame-frame >= limit {
			r.recent.Remove(k)
		}
	}
}

// Reset empties the atlas, the recency list and the current frame.
func (r *Renderer) Reset() {
	r.atlas.Clear()
	r.recent.Purge()
	r.draws = r.draws[:0]
}

// Close stops the shaping goroutines started by Prefetch. The renderer
// keeps working for Draw and Render; Prefetch returns ErrClosed.
func (r *Renderer) Close() {
	r.closed = true
	if r.pool != nil {
		r.pool.Close()
	}
}

// Stats returns the renderer counters.
func (r *Renderer) Stats() Stats {
	return r.stats
}

// ResetStats zeroes the renderer counters.
func (r *Renderer) ResetStats() {
	r.stats = Stats{}
}

// Tracked returns the number of keys in the recency list.
func (r *Renderer) Tracked() int {
	return r.recent.Len()
}
