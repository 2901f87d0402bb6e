// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package runatlas

import "github.com/gogpu/runatlas/internal/partition"

// MaxDimension is the largest supported atlas width or height.
const MaxDimension = 16384

// Config holds atlas configuration.
type Config struct {
	// Width and Height are the surface size in pixels.
	// Default: 1024x1024
	Width, Height int

	// Border is the transparent margin reserved around every bitmap, so
	// bilinear sampling never picks up a neighbor.
	// Default: 1
	Border int

	// RowAlign is the quantum new row heights are rounded up to.
	// Default: 4
	RowAlign int

	// RowSlack is how much taller than the aligned request an empty row
	// may be before an insert splits it.
	// Default: 2
	RowSlack int
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		Width:    1024,
		Height:   1024,
		Border:   1,
		RowAlign: partition.DefaultRowAlign,
		RowSlack: partition.DefaultRowSlack,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Width < 1 {
		return &ConfigError{Field: "Width", Reason: "must be positive"}
	}
	if c.Width > MaxDimension {
		return &ConfigError{Field: "Width", Reason: "must be at most 16384"}
	}
	if c.Height < 1 {
		return &ConfigError{Field: "Height", Reason: "must be positive"}
	}
	if c.Height > MaxDimension {
		return &ConfigError{Field: "Height", Reason: "must be at most 16384"}
	}
	if c.Border < 0 {
		return &ConfigError{Field: "Border", Reason: "must be non-negative"}
	}
	if 2*c.Border >= min(c.Width, c.Height) {
		return &ConfigError{Field: "Border", Reason: "must leave room for content"}
	}
	if c.RowAlign < 1 {
		return &ConfigError{Field: "RowAlign", Reason: "must be at least 1"}
	}
	if c.RowSlack < 0 {
		return &ConfigError{Field: "RowSlack", Reason: "must be non-negative"}
	}
	return nil
}

// Option configures an Atlas created with New.
//
// Example:
//
//	a, err := runatlas.New(512, 512, runatlas.WithBorder(2))
type Option func(*Config)

// WithBorder sets the margin reserved around every bitmap.
func WithBorder(px int) Option {
	return func(c *Config) {
		c.Border = px
	}
}

// WithRowAlign sets the quantum new row heights are rounded up to.
func WithRowAlign(n int) Option {
	return func(c *Config) {
		c.RowAlign = n
	}
}

// WithRowSlack sets how much extra height an empty row keeps before an
// insert splits it.
func WithRowSlack(n int) Option {
	return func(c *Config) {
		c.RowSlack = n
	}
}
