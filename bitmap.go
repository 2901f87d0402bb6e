// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package runatlas

import (
	"fmt"
	"image"
)

// Bitmap is an 8-bit coverage image, one byte per pixel, row-major.
// Pixel (x, y) is Pix[y*Stride+x].
type Bitmap struct {
	Width  int
	Height int
	Stride int
	Pix    []byte
}

// NewBitmap allocates a zeroed width x height bitmap.
func NewBitmap(width, height int) Bitmap {
	return Bitmap{
		Width:  width,
		Height: height,
		Stride: width,
		Pix:    make([]byte, width*height),
	}
}

// BitmapFromAlpha wraps the pixels of img without copying.
// Sub-images are supported; the bitmap starts at img.Rect.Min.
func BitmapFromAlpha(img *image.Alpha) Bitmap {
	r := img.Rect
	if r.Empty() {
		return Bitmap{}
	}
	return Bitmap{
		Width:  r.Dx(),
		Height: r.Dy(),
		Stride: img.Stride,
		Pix:    img.Pix[img.PixOffset(r.Min.X, r.Min.Y):],
	}
}

// Alpha returns an *image.Alpha sharing the bitmap's pixels, with bounds
// at the origin.
func (b Bitmap) Alpha() *image.Alpha {
	return &image.Alpha{
		Pix:    b.Pix,
		Stride: b.Stride,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// Bounds returns the bitmap rectangle at the origin.
func (b Bitmap) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Width, b.Height)
}

// Empty reports whether the bitmap has no pixels.
func (b Bitmap) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// AlphaAt returns the coverage at (x, y), or 0 outside the bitmap.
func (b Bitmap) AlphaAt(x, y int) uint8 {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return 0
	}
	return b.Pix[y*b.Stride+x]
}

// Row returns the pixels of row y.
func (b Bitmap) Row(y int) []byte {
	off := y * b.Stride
	return b.Pix[off : off+b.Width]
}

// Pad returns a copy of b surrounded by n zero pixels on every side.
func (b Bitmap) Pad(n int) Bitmap {
	out := NewBitmap(b.Width+2*n, b.Height+2*n)
	for y := range b.Height {
		copy(out.Pix[(y+n)*out.Stride+n:], b.Row(y))
	}
	return out
}

// Validate checks that the dimensions are positive and Pix is large enough.
// The returned error wraps ErrInvalidBitmap.
func (b Bitmap) Validate() error {
	if b.Empty() {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidBitmap, b.Width, b.Height)
	}
	if b.Stride < b.Width {
		return fmt.Errorf("%w: stride %d < width %d", ErrInvalidBitmap, b.Stride, b.Width)
	}
	if need := (b.Height-1)*b.Stride + b.Width; len(b.Pix) < need {
		return fmt.Errorf("%w: %d bytes of pixel data, need %d", ErrInvalidBitmap, len(b.Pix), need)
	}
	return nil
}
