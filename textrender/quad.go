// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package textrender

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/runatlas"
)

// Quad is one textured rectangle: the atlas region Src drawn at Dst.
type Quad struct {
	Key runatlas.Key

	// Src is the run's rectangle on the atlas surface.
	Src image.Rectangle

	// Dst is the top-left destination corner in viewport pixels.
	Dst image.Point

	// UV holds normalized atlas coordinates: u0, v0, u1, v1.
	UV [4]float32
}

func newQuad(key runatlas.Key, src image.Rectangle, dst image.Point, atlas image.Rectangle) Quad {
	w, h := float32(atlas.Dx()), float32(atlas.Dy())
	return Quad{
		Key: key,
		Src: src,
		Dst: dst,
		UV: [4]float32{
			float32(src.Min.X) / w,
			float32(src.Min.Y) / h,
			float32(src.Max.X) / w,
			float32(src.Max.Y) / h,
		},
	}
}

// DstRect returns the destination rectangle.
func (q Quad) DstRect() image.Rectangle {
	return image.Rectangle{Min: q.Dst, Max: q.Dst.Add(q.Src.Size())}
}

// FloatsPerVertex is the vertex layout of Vertices: x, y, u, v.
const FloatsPerVertex = 4

// VerticesPerQuad is the number of vertices Vertices emits per quad: two
// triangles, no index buffer.
const VerticesPerQuad = 6

// Vertices converts quads into a triangle list in clip space for a
// viewport of width x height pixels with y pointing down.
func Vertices(quads []Quad, width, height int) []float32 {
	proj := mgl32.Ortho2D(0, float32(width), float32(height), 0)
	out := make([]float32, 0, len(quads)*VerticesPerQuad*FloatsPerVertex)

	for _, q := range quads {
		r := q.DstRect()
		x0, y0 := float32(r.Min.X), float32(r.Min.Y)
		x1, y1 := float32(r.Max.X), float32(r.Max.Y)
		u0, v0, u1, v1 := q.UV[0], q.UV[1], q.UV[2], q.UV[3]

		corners := [VerticesPerQuad][4]float32{
			{x0, y0, u0, v0},
			{x1, y0, u1, v0},
			{x0, y1, u0, v1},
			{x1, y0, u1, v0},
			{x1, y1, u1, v1},
			{x0, y1, u0, v1},
		}
		for _, c := range corners {
			p := proj.Mul4x1(mgl32.Vec4{c[0], c[1], 0, 1})
			out = append(out, p.X(), p.Y(), c[2], c[3])
		}
	}
	return out
}

// Compose draws quads onto dst in software, using the atlas coverage as a
// mask over a solid color. It is meant for previews and tests.
func Compose(dst draw.Image, atlas *image.Alpha, quads []Quad, c color.Color) {
	src := image.NewUniform(c)
	for _, q := range quads {
		draw.DrawMask(dst, q.DstRect(), src, image.Point{}, atlas, q.Src.Min, draw.Over)
	}
}
