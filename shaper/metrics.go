// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shaper

import (
	"fmt"

	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// Metrics are the vertical metrics shared by every run at one size, in
// whole pixels.
type Metrics struct {
	// Ascent is the largest distance above the baseline among all fonts.
	Ascent int

	// Descent is the largest distance below the baseline, positive.
	Descent int
}

// Height returns Ascent + Descent.
func (m Metrics) Height() int {
	return m.Ascent + m.Descent
}

// metricsKey ties memoized metrics to the font set they were computed from,
// so a load racing with RegisterFont stores under a generation no one asks
// for again.
type metricsKey struct {
	gen  uint64
	size int
}

// Metrics returns the memoized metrics for size, computing them on first
// use from every registered font.
func (s *Shaper) Metrics(size int) (Metrics, error) {
	if size <= 0 {
		return Metrics{}, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	s.mu.RLock()
	fonts, gen := s.fonts, s.gen
	s.mu.RUnlock()
	if len(fonts) == 0 {
		return Metrics{}, ErrNoFonts
	}

	return s.metrics.GetOrLoad(metricsKey{gen: gen, size: size}, func() (Metrics, error) {
		return computeMetrics(fonts, size)
	})
}

func computeMetrics(fonts []*fontEntry, size int) (Metrics, error) {
	var (
		buf sfnt.Buffer
		m   Metrics
	)
	for _, f := range fonts {
		fm, err := f.outline.Metrics(&buf, fixed.I(size), font.HintingNone)
		if err != nil {
			return Metrics{}, fmt.Errorf("shaper: metrics for %q at %d: %w", f.name, size, err)
		}
		m.Ascent = max(m.Ascent, fm.Ascent.Ceil())
		m.Descent = max(m.Descent, fm.Descent.Ceil())
	}
	return m, nil
}
