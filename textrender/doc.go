// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package textrender drives a runatlas.Atlas once per frame.
//
// A Renderer looks up each drawn string in the atlas, shapes it on a miss,
// and at the end of the frame flushes the new bitmaps to the surface and
// returns one textured quad per draw:
//
//	r, _ := textrender.New(atlas, shaper.Shape, surf)
//	for frame := range frames {
//	    for _, label := range frame.Labels {
//	        _ = r.Draw(label.Text, label.Size, label.X, label.Y)
//	    }
//	    quads, err := r.Render()
//	    verts := textrender.Vertices(quads, viewportW, viewportH)
//	    // upload verts, bind the atlas texture, draw len(verts)/4 vertices
//	}
//
// # Eviction
//
// The atlas never evicts on its own. The renderer keeps every cached key in
// a recency list (github.com/hashicorp/golang-lru). When an insert runs out
// of space it removes the least recently drawn keys, oldest first, skipping
// any drawn in the current frame, and retries. Keys that fall off the end
// of the recency list and keys idle for longer than FrameLifetime frames
// are removed as well.
//
// # Prefetch
//
// When a frame's strings are known up front, Prefetch shapes the missing
// ones on a pool of goroutines and inserts them in the order given, so the
// Draw calls that follow are all hits. Call Close to stop the pool.
//
// # GPU drawing
//
// Vertices emits x, y, u, v per vertex in clip space. The WGSL program in
// QuadShaderSource consumes that layout (VertexLayout) with bind group 0
// holding a color uniform, the atlas texture and a filtering sampler
// (BindGroupLayoutEntries). NewQuadShaderModule compiles it to SPIR-V.
//
// A Renderer is not safe for concurrent use.
package textrender
