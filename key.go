// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package runatlas

import "strconv"

// Key identifies a cached run: the UTF-8 text and the point size it was
// rasterized at.
type Key struct {
	Text string
	Size int
}

// String returns a debug representation such as "Hello@24".
func (k Key) String() string {
	return strconv.Quote(k.Text) + "@" + strconv.Itoa(k.Size)
}
