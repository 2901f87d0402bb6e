// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/runatlas"
)

// Surface is the backing store of an atlas.
type Surface interface {
	runatlas.SurfaceWriter
	runatlas.RegionClearer

	// Width returns the surface width in pixels.
	Width() int

	// Height returns the surface height in pixels.
	Height() int

	// Close releases the surface. Close is idempotent.
	Close() error
}

// Options configures surface creation.
type Options struct {
	// Width and Height are the surface size in pixels.
	Width, Height int

	// Label names GPU resources. Optional.
	Label string

	// Provider supplies the GPU device for texture backends. It must expose
	// HalDevice() any and HalQueue() any. Ignored by CPU backends.
	Provider any
}

// Errors.
var (
	// ErrClosed is returned by operations on a closed surface.
	ErrClosed = errors.New("surface: closed")

	// ErrInvalidSize is returned for non-positive surface dimensions.
	ErrInvalidSize = errors.New("surface: invalid size")

	// ErrNotUpdatable is returned by ImageSurface.Upload when the target
	// does not implement gpucontext.TextureUpdater.
	ErrNotUpdatable = errors.New("surface: texture does not accept updates")
)

// RegionError reports a write that does not fit the surface or whose
// bitmap does not match the destination rectangle.
type RegionError struct {
	Region image.Rectangle
	Bounds image.Rectangle
	Bitmap image.Point
}

func (e *RegionError) Error() string {
	if !e.Region.In(e.Bounds) {
		return fmt.Sprintf("surface: region %v outside %v", e.Region, e.Bounds)
	}
	return fmt.Sprintf("surface: bitmap %dx%d does not match region %v",
		e.Bitmap.X, e.Bitmap.Y, e.Region)
}

// checkRegion validates a write of b into r on a surface with bounds.
func checkRegion(bounds, r image.Rectangle, b runatlas.Bitmap) error {
	if r.Empty() || !r.In(bounds) || b.Width != r.Dx() || b.Height != r.Dy() {
		return &RegionError{Region: r, Bounds: bounds, Bitmap: image.Pt(b.Width, b.Height)}
	}
	return b.Validate()
}

// checkClear validates a clear of r.
func checkClear(bounds, r image.Rectangle) error {
	if !r.In(bounds) {
		return &RegionError{Region: r, Bounds: bounds, Bitmap: image.Pt(r.Dx(), r.Dy())}
	}
	return nil
}
