// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package textrender

import "errors"

// Sentinel errors for textrender package.
var (
	// ErrNilAtlas is returned by New without an atlas.
	ErrNilAtlas = errors.New("textrender: nil atlas")

	// ErrNilShaper is returned by New without a shape function.
	ErrNilShaper = errors.New("textrender: nil shape function")

	// ErrNilDevice is returned by NewQuadShaderModule without a device.
	ErrNilDevice = errors.New("textrender: nil device")

	// ErrClosed is returned by Prefetch after Close.
	ErrClosed = errors.New("textrender: renderer closed")
)

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "textrender: invalid config." + e.Field + ": " + e.Reason
}
