// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shaper

import (
	"image"

	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/gogpu/runatlas"
)

// placedGlyph is a glyph positioned relative to the pen origin on the
// baseline, y pointing down.
type placedGlyph struct {
	x, y    fixed.Int26_6
	outline []sfnt.Segment
}

// layoutResult is a shaped line before rasterization.
type layoutResult struct {
	glyphs []placedGlyph

	// advance is the final pen position.
	advance fixed.Int26_6

	// minX and maxX bound the glyph outlines horizontally.
	minX, maxX fixed.Int26_6
}

// width returns the bitmap width: the union of the advance box and the ink
// box, at least one pixel.
func (l layoutResult) width() int {
	lo := min(l.minX, 0).Floor()
	hi := max(l.maxX, l.advance).Ceil()
	return max(hi-lo, 1)
}

// originX is the pixel offset that moves the leftmost ink to x >= 0.
func (l layoutResult) originX() float32 {
	return float32(-min(l.minX, 0).Floor())
}

// layout shapes every run of text and positions the glyphs left to right.
// Runs are laid out in logical order; glyphs inside an RTL run come back
// from the shaper already in visual order.
func (s *Shaper) layout(fonts []*fontEntry, byScript map[language.Script]int, text string, size int) layoutResult {
	runes := []rune(text)
	hb := s.hbPool.Get().(*shaping.HarfbuzzShaper)
	defer s.hbPool.Put(hb)

	var (
		l   layoutResult
		pen fixed.Int26_6
		buf sfnt.Buffer
	)
	l.minX = 0
	for _, r := range splitRuns(fonts, byScript, runes) {
		entry := fonts[r.font]
		out := hb.Shape(shaping.Input{
			Text:      runes,
			RunStart:  r.start,
			RunEnd:    r.end,
			Direction: r.dir,
			Face:      font.NewFace(entry.shaping),
			Size:      fixed.I(size),
			Script:    r.script,
			Language:  s.lang,
		})
		for _, g := range out.Glyphs {
			gid := sfnt.GlyphIndex(g.GlyphID)
			segs := s.outline(entry, &buf, r.font, gid, size)
			pg := placedGlyph{
				x:       pen + g.XOffset,
				y:       -g.YOffset,
				outline: segs,
			}
			if lo, hi, ok := outlineSpan(segs); ok {
				l.minX = min(l.minX, pg.x+lo)
				l.maxX = max(l.maxX, pg.x+hi)
			}
			l.glyphs = append(l.glyphs, pg)
			pen += g.Advance
		}
	}
	l.advance = pen
	return l
}

// outline returns the cached outline of gid at size. Glyphs that fail to
// load render as nothing.
func (s *Shaper) outline(entry *fontEntry, buf *sfnt.Buffer, fontIdx int, gid sfnt.GlyphIndex, size int) []sfnt.Segment {
	key := uint64(fontIdx)<<48 | uint64(gid)<<32 | uint64(uint32(size))
	return s.outlines.GetOrCreate(key, func() []sfnt.Segment {
		segs, err := entry.outline.LoadGlyph(buf, gid, fixed.I(size), nil)
		if err != nil {
			return nil
		}
		// LoadGlyph returns a view into buf.
		out := make([]sfnt.Segment, len(segs))
		copy(out, segs)
		return out
	})
}

// outlineSpan returns the horizontal extent of segs.
func outlineSpan(segs []sfnt.Segment) (lo, hi fixed.Int26_6, ok bool) {
	for _, seg := range segs {
		n := 1
		switch seg.Op {
		case sfnt.SegmentOpQuadTo:
			n = 2
		case sfnt.SegmentOpCubeTo:
			n = 3
		}
		for _, p := range seg.Args[:n] {
			if !ok {
				lo, hi, ok = p.X, p.X, true
				continue
			}
			lo = min(lo, p.X)
			hi = max(hi, p.X)
		}
	}
	return lo, hi, ok
}

// rasterize fills the glyph outlines into an 8-bit coverage bitmap whose
// baseline sits Ascent pixels below the top edge.
func (s *Shaper) rasterize(l layoutResult, m Metrics) runatlas.Bitmap {
	w, h := l.width(), max(m.Height(), 1)
	dst := image.NewAlpha(image.Rect(0, 0, w, h))

	z := vector.NewRasterizer(w, h)
	ox, oy := l.originX(), float32(m.Ascent)
	drawn := false
	for _, g := range l.glyphs {
		if len(g.outline) == 0 {
			continue
		}
		gx, gy := ox+fixedToFloat(g.x), oy+fixedToFloat(g.y)
		pt := func(p fixed.Point26_6) (float32, float32) {
			return gx + fixedToFloat(p.X), gy + fixedToFloat(p.Y)
		}
		for _, seg := range g.outline {
			switch seg.Op {
			case sfnt.SegmentOpMoveTo:
				z.ClosePath()
				x, y := pt(seg.Args[0])
				z.MoveTo(x, y)
			case sfnt.SegmentOpLineTo:
				x, y := pt(seg.Args[0])
				z.LineTo(x, y)
			case sfnt.SegmentOpQuadTo:
				x1, y1 := pt(seg.Args[0])
				x2, y2 := pt(seg.Args[1])
				z.QuadTo(x1, y1, x2, y2)
			case sfnt.SegmentOpCubeTo:
				x1, y1 := pt(seg.Args[0])
				x2, y2 := pt(seg.Args[1])
				x3, y3 := pt(seg.Args[2])
				z.CubeTo(x1, y1, x2, y2, x3, y3)
			}
		}
		z.ClosePath()
		drawn = true
	}
	if drawn {
		z.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})
	}
	return runatlas.BitmapFromAlpha(dst)
}

func fixedToFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64
}
