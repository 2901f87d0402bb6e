// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package shaper turns a string and a point size into an 8-bit coverage
// bitmap ready for a runatlas.Atlas.
//
// Fonts are registered as raw TrueType/OpenType data. The first font is the
// fallback; later fonts can claim Unicode scripts:
//
//	s := shaper.New()
//	_ = s.RegisterFont(goregular.TTF)
//	_ = s.RegisterFont(notoArabic, language.Arabic)
//	bmp, err := s.Shape("Hello مرحبا", 24)
//
// Text is split into runs where the font or direction changes. Each run is
// shaped with the go-text HarfBuzz port and the runs are laid out left to
// right in logical order; mixed-direction text is not reordered. Glyph
// outlines come from golang.org/x/image/font/sfnt and are filled with
// golang.org/x/image/vector.
//
// Every bitmap shaped at a given size has the same height: the largest
// ascent plus the largest descent among registered fonts. Those metrics are
// memoized per size and the memo is cleared whenever a font is registered.
//
// Bitmaps carry no padding. The atlas reserves its own border.
//
// A Shaper is safe for concurrent use.
package shaper
