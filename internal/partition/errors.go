// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package partition

import "errors"

// Sentinel errors for partition package.
var (
	// ErrNoSpace is returned when no Free item can hold the request.
	ErrNoSpace = errors.New("partition: no space left")

	// ErrInvalidSize is returned for non-positive request dimensions.
	ErrInvalidSize = errors.New("partition: width and height must be positive")
)

// InvariantError reports a broken graph invariant.
// Check returns it; internal consistency failures panic with it.
type InvariantError struct {
	Reason string
}

func (e *InvariantError) Error() string {
	return "partition: invariant violated: " + e.Reason
}

// violate panics with an InvariantError.
func violate(reason string) {
	panic(&InvariantError{Reason: reason})
}
