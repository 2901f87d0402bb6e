// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package runatlas

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/gogpu/runatlas/internal/partition"
)

// SurfaceWriter writes bitmaps into the backing surface of an atlas.
// r always has the same size as b.
type SurfaceWriter interface {
	WriteRegion(r image.Rectangle, b Bitmap) error
}

// RegionClearer is implemented by writers that can zero a region.
// Flush clears each slot before writing into it, so pixels left behind by
// removed entries do not show through the border.
type RegionClearer interface {
	ClearRegion(r image.Rectangle) error
}

// Upload is one pending entry handed out by FlushPending.
type Upload struct {
	Key Key

	// Rect is the destination of Bitmap on the surface.
	Rect image.Rectangle

	// Slot is Rect grown by the border. Callers that recycle surfaces
	// should zero it before writing Rect.
	Slot image.Rectangle

	Bitmap Bitmap
}

// FlushPending commits every pending entry and returns them in placement
// order, top to bottom and left to right. The atlas releases the bitmaps;
// the caller must write each one to the surface at Rect.
//
// Calling FlushPending again without new inserts returns nil.
func (a *Atlas) FlushPending() []Upload {
	uploads, handles := a.pendingUploads()
	for i, h := range handles {
		a.commit(uploads[i].Key, h)
	}
	if len(uploads) > 0 {
		a.stats.flushed.Add(uint64(len(uploads)))
		Logger().Debug("runatlas: flushed pending entries", slog.Int("count", len(uploads)))
	}
	return uploads
}

// Flush writes every pending entry through w in placement order and
// commits each one after its write succeeds. It returns the number of
// entries committed.
//
// On a write error Flush stops: entries already written stay committed and
// the rest stay pending, so a later Flush resumes where this one failed.
func (a *Atlas) Flush(w SurfaceWriter) (int, error) {
	if w == nil {
		return 0, ErrNilWriter
	}
	clearer, _ := w.(RegionClearer)

	uploads, handles := a.pendingUploads()
	for i, up := range uploads {
		if clearer != nil && a.config.Border > 0 {
			if err := clearer.ClearRegion(up.Slot); err != nil {
				return i, a.writeFailed(up, err)
			}
		}
		if err := w.WriteRegion(up.Rect, up.Bitmap); err != nil {
			return i, a.writeFailed(up, err)
		}
		a.commit(up.Key, handles[i])
		a.stats.flushed.Add(1)
	}
	return len(uploads), nil
}

func (a *Atlas) writeFailed(up Upload, err error) error {
	Logger().Warn("runatlas: surface write failed",
		slog.String("key", up.Key.String()),
		slog.Any("rect", up.Rect),
		slog.String("err", err.Error()))
	return fmt.Errorf("runatlas: write %v at %v: %w", up.Key, up.Rect, err)
}

// pendingUploads collects pending entries in placement order.
func (a *Atlas) pendingUploads() ([]Upload, []partition.Handle) {
	if len(a.pending) == 0 {
		return nil, nil
	}
	uploads := make([]Upload, 0, len(a.pending))
	handles := make([]partition.Handle, 0, len(a.pending))
	for h, state := range a.graph.Occupied() {
		if state != partition.Pending {
			continue
		}
		info, _ := a.graph.Item(h)
		v, _ := a.graph.Value(h)
		uploads = append(uploads, Upload{
			Key:    v.key,
			Rect:   info.Bounds.Inset(a.config.Border),
			Slot:   info.Bounds,
			Bitmap: v.bitmap,
		})
		handles = append(handles, h)
	}
	return uploads, handles
}

// commit moves key from the pending to the committed table and drops the
// bitmap reference.
func (a *Atlas) commit(key Key, h partition.Handle) {
	a.graph.Commit(h)
	if v, ok := a.graph.Value(h); ok {
		v.bitmap = Bitmap{}
	}
	delete(a.pending, key)
	a.committed[key] = h
}
