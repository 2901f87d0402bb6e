// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package surface

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/runatlas"
)

// ErrNoDevice is returned when a texture surface is requested without a
// usable GPU device.
var ErrNoDevice = errors.New("surface: provider does not expose a HAL device")

// TextureSurface is an R8Unorm texture on a wgpu HAL device. Regions are
// written with queue.WriteTexture; nothing is staged on the CPU.
type TextureSurface struct {
	device hal.Device
	queue  hal.Queue
	tex    hal.Texture
	view   hal.TextureView

	width, height int
	label         string

	// zeros backs ClearRegion; grown on demand.
	zeros []byte

	closed bool
}

// NewTextureSurface creates a width x height R8Unorm texture on device.
func NewTextureSurface(device hal.Device, queue hal.Queue, width, height int, label string) (*TextureSurface, error) {
	if device == nil || queue == nil {
		return nil, ErrNoDevice
	}
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidSize
	}
	if label == "" {
		label = "runatlas"
	}

	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1}, //nolint:gosec // validated positive
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatR8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("surface: create atlas texture: %w", err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: label + "_view",
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("surface: create atlas texture view: %w", err)
	}

	runatlas.Logger().Debug("surface: texture created",
		slog.String("label", label),
		slog.Int("width", width),
		slog.Int("height", height))

	return &TextureSurface{
		device: device,
		queue:  queue,
		tex:    tex,
		view:   view,
		width:  width,
		height: height,
		label:  label,
	}, nil
}

// NewTextureSurfaceFromProvider creates a texture surface on the device of
// provider, which must expose HalDevice() any and HalQueue() any returning
// hal.Device and hal.Queue.
func NewTextureSurfaceFromProvider(provider any, width, height int, label string) (*TextureSurface, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoDevice
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoDevice)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoDevice)
	}
	return NewTextureSurface(device, queue, width, height, label)
}

// Width returns the texture width.
func (s *TextureSurface) Width() int { return s.width }

// Height returns the texture height.
func (s *TextureSurface) Height() int { return s.height }

// Texture returns the underlying texture.
func (s *TextureSurface) Texture() hal.Texture { return s.tex }

// View returns a view of the texture for binding in shaders.
func (s *TextureSurface) View() hal.TextureView { return s.view }

func (s *TextureSurface) bounds() image.Rectangle {
	return image.Rect(0, 0, s.width, s.height)
}

// WriteRegion uploads b into r.
func (s *TextureSurface) WriteRegion(r image.Rectangle, b runatlas.Bitmap) error {
	if s.closed {
		return ErrClosed
	}
	if err := checkRegion(s.bounds(), r, b); err != nil {
		return err
	}
	n := (b.Height-1)*b.Stride + b.Width
	s.write(r, b.Pix[:n], b.Stride)
	return nil
}

// ClearRegion zeroes r.
func (s *TextureSurface) ClearRegion(r image.Rectangle) error {
	if s.closed {
		return ErrClosed
	}
	if err := checkClear(s.bounds(), r); err != nil {
		return err
	}
	if r.Empty() {
		return nil
	}
	n := r.Dx() * r.Dy()
	if len(s.zeros) < n {
		s.zeros = make([]byte, n)
	}
	s.write(r, s.zeros[:n], r.Dx())
	return nil
}

func (s *TextureSurface) write(r image.Rectangle, data []byte, stride int) {
	//nolint:gosec // r is inside the texture, all values fit uint32
	s.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  s.tex,
			MipLevel: 0,
			Origin:   hal.Origin3D{X: uint32(r.Min.X), Y: uint32(r.Min.Y)},
		},
		data,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(stride),
			RowsPerImage: uint32(r.Dy()),
		},
		&hal.Extent3D{Width: uint32(r.Dx()), Height: uint32(r.Dy()), DepthOrArrayLayers: 1},
	)
}

// Close destroys the texture and its view. Close is idempotent.
func (s *TextureSurface) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.view != nil {
		s.device.DestroyTextureView(s.view)
		s.view = nil
	}
	if s.tex != nil {
		s.device.DestroyTexture(s.tex)
		s.tex = nil
	}
	return nil
}

// Compile-time interface check.
var _ Surface = (*TextureSurface)(nil)

func init() {
	Register(Backend{
		Name:     "texture",
		Priority: 100,
		Open: func(opts Options) (Surface, error) {
			return NewTextureSurfaceFromProvider(opts.Provider, opts.Width, opts.Height, opts.Label)
		},
	})
}
