// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package runatlas

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestBitmapFromAlpha_SubImage(t *testing.T) {
	img := image.NewAlpha(image.Rect(0, 0, 10, 10))
	img.Pix[img.PixOffset(3, 4)] = 200

	sub := img.SubImage(image.Rect(3, 4, 8, 9)).(*image.Alpha)
	b := BitmapFromAlpha(sub)
	if b.Width != 5 || b.Height != 5 || b.Stride != 10 {
		t.Fatalf("bitmap = %dx%d stride %d", b.Width, b.Height, b.Stride)
	}
	if got := b.AlphaAt(0, 0); got != 200 {
		t.Errorf("AlphaAt(0,0) = %d, want 200", got)
	}
	if err := b.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestBitmapFromAlpha_Empty(t *testing.T) {
	b := BitmapFromAlpha(image.NewAlpha(image.Rectangle{}))
	if !b.Empty() {
		t.Errorf("bitmap = %+v, want empty", b)
	}
}

func TestBitmap_AlphaSharesPixels(t *testing.T) {
	b := NewBitmap(4, 3)
	img := b.Alpha()
	img.SetAlpha(2, 1, color.Alpha{A: 99})
	if b.AlphaAt(2, 1) != 99 {
		t.Error("Alpha() does not share pixels with the bitmap")
	}
	if img.Bounds() != b.Bounds() {
		t.Errorf("bounds = %v, want %v", img.Bounds(), b.Bounds())
	}
}

func TestBitmap_AlphaAtOutside(t *testing.T) {
	b := filledBitmap(2, 2, 7)
	for _, p := range []image.Point{{-1, 0}, {0, -1}, {2, 0}, {0, 2}} {
		if got := b.AlphaAt(p.X, p.Y); got != 0 {
			t.Errorf("AlphaAt(%v) = %d, want 0", p, got)
		}
	}
}

func TestBitmap_Pad(t *testing.T) {
	b := filledBitmap(3, 2, 9)
	p := b.Pad(1)
	if p.Width != 5 || p.Height != 4 {
		t.Fatalf("padded size = %dx%d, want 5x4", p.Width, p.Height)
	}
	for y := range p.Height {
		for x := range p.Width {
			inside := x >= 1 && x <= 3 && y >= 1 && y <= 2
			want := uint8(0)
			if inside {
				want = 9
			}
			if got := p.AlphaAt(x, y); got != want {
				t.Errorf("AlphaAt(%d,%d) = %d, want %d", x, y, got, want)
			}
		}
	}
}

func TestBitmap_Validate(t *testing.T) {
	if err := NewBitmap(5, 5).Validate(); err != nil {
		t.Errorf("valid bitmap: %v", err)
	}
	// The last row may stop short of the stride.
	b := Bitmap{Width: 2, Height: 2, Stride: 4, Pix: make([]byte, 6)}
	if err := b.Validate(); err != nil {
		t.Errorf("short last row: %v", err)
	}
	b.Pix = b.Pix[:5]
	if err := b.Validate(); !errors.Is(err, ErrInvalidBitmap) {
		t.Errorf("truncated: err = %v, want ErrInvalidBitmap", err)
	}
}
