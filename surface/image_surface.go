// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/runatlas"
)

// ImageSurface is a CPU surface backed by an *image.Alpha.
//
// It tracks the union of regions written since the last ResetDirty, so a
// caller mirroring the surface to the GPU can upload only what changed.
//
// Example:
//
//	s := surface.NewImageSurface(1024, 1024)
//	defer s.Close()
//
//	if _, err := atlas.Flush(s); err != nil {
//	    return err
//	}
//	_ = s.SavePNG("atlas.png")
type ImageSurface struct {
	img    *image.Alpha
	dirty  image.Rectangle
	writes int
	closed bool
}

// NewImageSurface creates a zeroed surface. Non-positive dimensions are
// clamped to 1.
func NewImageSurface(width, height int) *ImageSurface {
	return &ImageSurface{
		img: image.NewAlpha(image.Rect(0, 0, max(width, 1), max(height, 1))),
	}
}

// NewImageSurfaceFromImage creates a surface that writes directly into img.
// img must have its bounds at the origin.
func NewImageSurfaceFromImage(img *image.Alpha) *ImageSurface {
	return &ImageSurface{img: img}
}

// Width returns the surface width.
func (s *ImageSurface) Width() int {
	return s.img.Rect.Dx()
}

// Height returns the surface height.
func (s *ImageSurface) Height() int {
	return s.img.Rect.Dy()
}

// WriteRegion copies b into r. r must lie inside the surface and have the
// same size as b.
func (s *ImageSurface) WriteRegion(r image.Rectangle, b runatlas.Bitmap) error {
	if s.closed {
		return ErrClosed
	}
	if err := checkRegion(s.img.Rect, r, b); err != nil {
		return err
	}
	for y := range b.Height {
		off := s.img.PixOffset(r.Min.X, r.Min.Y+y)
		copy(s.img.Pix[off:off+b.Width], b.Row(y))
	}
	s.dirty = s.dirty.Union(r)
	s.writes++
	return nil
}

// ClearRegion zeroes r.
func (s *ImageSurface) ClearRegion(r image.Rectangle) error {
	if s.closed {
		return ErrClosed
	}
	if err := checkClear(s.img.Rect, r); err != nil {
		return err
	}
	if r.Empty() {
		return nil
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		off := s.img.PixOffset(r.Min.X, y)
		clear(s.img.Pix[off : off+r.Dx()])
	}
	s.dirty = s.dirty.Union(r)
	return nil
}

// Image returns the backing image. Later writes are visible through it.
func (s *ImageSurface) Image() *image.Alpha {
	return s.img
}

// Snapshot returns a copy of the surface contents.
func (s *ImageSurface) Snapshot() *image.Alpha {
	out := image.NewAlpha(s.img.Rect)
	copy(out.Pix, s.img.Pix)
	return out
}

// Bitmap returns the pixels of r as a bitmap sharing the surface memory.
func (s *ImageSurface) Bitmap(r image.Rectangle) runatlas.Bitmap {
	sub, ok := s.img.SubImage(r.Intersect(s.img.Rect)).(*image.Alpha)
	if !ok {
		return runatlas.Bitmap{}
	}
	return runatlas.BitmapFromAlpha(sub)
}

// Dirty returns the union of regions touched since the last ResetDirty.
func (s *ImageSurface) Dirty() image.Rectangle {
	return s.dirty
}

// ResetDirty forgets the dirty region.
func (s *ImageSurface) ResetDirty() {
	s.dirty = image.Rectangle{}
}

// Writes returns the number of successful WriteRegion calls.
func (s *ImageSurface) Writes() int {
	return s.writes
}

// Upload pushes the whole surface to a GPU texture and resets the dirty
// region. texture must implement gpucontext.TextureUpdater and be an 8-bit
// single-channel texture of the same size.
func (s *ImageSurface) Upload(texture any) error {
	if s.closed {
		return ErrClosed
	}
	u, ok := texture.(gpucontext.TextureUpdater)
	if !ok {
		return ErrNotUpdatable
	}
	if err := u.UpdateData(s.img.Pix); err != nil {
		return fmt.Errorf("surface: texture update: %w", err)
	}
	s.ResetDirty()
	return nil
}

// SavePNG writes the surface to a grayscale PNG file.
func (s *ImageSurface) SavePNG(path string) error {
	f, err := os.Create(path) //nolint:gosec // path is caller-provided
	if err != nil {
		return err
	}
	if err := png.Encode(f, s.img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Close marks the surface closed. Further writes fail with ErrClosed.
func (s *ImageSurface) Close() error {
	s.closed = true
	return nil
}

// Compile-time interface check.
var _ Surface = (*ImageSurface)(nil)
