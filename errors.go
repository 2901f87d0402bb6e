// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package runatlas

import (
	"errors"
	"fmt"

	"github.com/gogpu/runatlas/internal/partition"
)

// Sentinel errors for runatlas package.
var (
	// ErrOutOfSpace is returned when no free region can hold a bitmap.
	// InsertNew returns it as an *OutOfSpaceError.
	ErrOutOfSpace = errors.New("runatlas: out of space")

	// ErrNotFound is returned by Remove for keys that are not cached.
	ErrNotFound = errors.New("runatlas: key not found")

	// ErrKeyExists is returned by InsertNew when the key is already pending
	// or committed.
	ErrKeyExists = errors.New("runatlas: key already cached")

	// ErrInvalidBitmap is returned for empty or inconsistent bitmaps.
	ErrInvalidBitmap = errors.New("runatlas: invalid bitmap")

	// ErrNilWriter is returned by Flush when no surface writer is given.
	ErrNilWriter = errors.New("runatlas: nil surface writer")
)

// OutOfSpaceError reports a failed reservation.
// Width and Height include the border.
type OutOfSpaceError struct {
	Width, Height           int
	AtlasWidth, AtlasHeight int
}

func (e *OutOfSpaceError) Error() string {
	return fmt.Sprintf("runatlas: out of space for %dx%d in %dx%d atlas",
		e.Width, e.Height, e.AtlasWidth, e.AtlasHeight)
}

// Is reports whether target is ErrOutOfSpace.
func (e *OutOfSpaceError) Is(target error) bool {
	return target == ErrOutOfSpace
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "runatlas: invalid config." + e.Field + ": " + e.Reason
}

// InvariantError reports an inconsistent atlas. Validate returns it, and
// operations that find the partition corrupted panic with it.
type InvariantError = partition.InvariantError
