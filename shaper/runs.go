// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shaper

import (
	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/language"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/text/unicode/bidi"
)

// run is a maximal span of runes sharing a font, script and direction.
// start and end are rune indices into the full text.
type run struct {
	start, end int
	font       int
	script     language.Script
	dir        di.Direction
}

// splitRuns segments runes by font, script and direction.
//
// Common and Inherited runes (spaces, punctuation, combining marks) take
// the script of the preceding rune, or of the first concrete rune when
// they lead the text. Neutral bidi classes take the preceding direction.
func splitRuns(fonts []*fontEntry, byScript map[language.Script]int, runes []rune) []run {
	scripts := resolveScripts(runes)
	dirs := resolveDirections(runes)

	var buf sfnt.Buffer
	runs := make([]run, 0, 2)
	for i, r := range runes {
		cur := run{
			start:  i,
			end:    i + 1,
			font:   pickFont(fonts, byScript, &buf, r, scripts[i]),
			script: scripts[i],
			dir:    dirs[i],
		}
		if n := len(runs); n > 0 {
			last := &runs[n-1]
			if last.font == cur.font && last.script == cur.script && last.dir == cur.dir {
				last.end = cur.end
				continue
			}
		}
		runs = append(runs, cur)
	}
	return runs
}

// pickFont returns the font mapped to script, falling back to the first
// registered font that has a glyph for r, then to font 0.
func pickFont(fonts []*fontEntry, byScript map[language.Script]int, buf *sfnt.Buffer, r rune, script language.Script) int {
	if idx, ok := byScript[script]; ok && hasGlyph(fonts[idx], buf, r) {
		return idx
	}
	for i, f := range fonts {
		if hasGlyph(f, buf, r) {
			return i
		}
	}
	return 0
}

func hasGlyph(f *fontEntry, buf *sfnt.Buffer, r rune) bool {
	gi, err := f.outline.GlyphIndex(buf, r)
	return err == nil && gi != 0
}

func resolveScripts(runes []rune) []language.Script {
	scripts := make([]language.Script, len(runes))
	last := language.Script(0)
	for i, r := range runes {
		sc := language.LookupScript(r)
		if sc == language.Common || sc == language.Inherited || sc == language.Unknown {
			scripts[i] = last
			continue
		}
		scripts[i] = sc
		last = sc
	}

	// Leading neutral runes adopt the first concrete script.
	first := language.Latin
	for _, sc := range scripts {
		if sc != 0 {
			first = sc
			break
		}
	}
	for i := range scripts {
		if scripts[i] != 0 {
			break
		}
		scripts[i] = first
	}
	return scripts
}

func resolveDirections(runes []rune) []di.Direction {
	dirs := make([]di.Direction, len(runes))
	cur := di.DirectionLTR
	for i, r := range runes {
		props, _ := bidi.LookupRune(r)
		switch props.Class() {
		case bidi.R, bidi.AL:
			cur = di.DirectionRTL
		case bidi.L:
			cur = di.DirectionLTR
		}
		dirs[i] = cur
	}
	return dirs
}
