// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package surface provides backing stores for a runatlas.Atlas.
//
// A Surface is an 8-bit coverage image that receives the uploads produced
// by Atlas.Flush. Two implementations ship with the package:
//
//   - ImageSurface: CPU memory (*image.Alpha), useful for tests, PNG dumps
//     and software compositing
//   - TextureSurface: an R8Unorm texture on a wgpu HAL device (excluded by
//     the nogpu build tag)
//
// Both implement runatlas.RegionClearer, so a slot recycled after eviction
// is zeroed before the new run is written and no stale coverage survives in
// the atlas border.
//
// # Registry
//
// Backends register under a name and a priority. Open tries the available
// ones from the highest priority down and returns the first surface that
// opens, so without a GPU provider in Options the texture backend fails
// and the image backend is used:
//
//	s, name, err := surface.Open(surface.Options{Width: 1024, Height: 1024})
//	s, err := surface.OpenByName("texture", surface.Options{Width: 1024, Height: 1024, Provider: p})
//
// Surfaces are not safe for concurrent use. Serialize access the same way
// the atlas itself is serialized, for example through runatlas.SyncAtlas.
package surface
