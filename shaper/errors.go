// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shaper

import "errors"

// Sentinel errors for shaper package.
var (
	// ErrNoFonts is returned when shaping before any font is registered.
	ErrNoFonts = errors.New("shaper: no fonts registered")

	// ErrEmptyText is returned for empty strings.
	ErrEmptyText = errors.New("shaper: empty text")

	// ErrInvalidSize is returned for non-positive point sizes.
	ErrInvalidSize = errors.New("shaper: size must be positive")

	// ErrInvalidFont is wrapped around font parsing failures.
	ErrInvalidFont = errors.New("shaper: invalid font data")
)
