// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package textrender

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

//go:embed shaders/quad.wgsl
var quadShaderSource string

// vertexStride is the byte size of one Vertices vertex.
const vertexStride = FloatsPerVertex * 4

// QuadShaderSource returns the WGSL source of the quad shader. Its vertex
// input matches Vertices and its bind group matches BindGroupLayoutEntries.
func QuadShaderSource() string {
	return quadShaderSource
}

// CompileQuadShader compiles the quad shader to SPIR-V words.
func CompileQuadShader() ([]uint32, error) {
	spirv, err := naga.Compile(quadShaderSource)
	if err != nil {
		return nil, fmt.Errorf("textrender: compile quad shader: %w", err)
	}
	if len(spirv)%4 != 0 {
		return nil, fmt.Errorf("textrender: compile quad shader: %d bytes is not whole words", len(spirv))
	}

	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirv)/4)
	for i := range words {
		words[i] = uint32(spirv[i*4]) |
			uint32(spirv[i*4+1])<<8 |
			uint32(spirv[i*4+2])<<16 |
			uint32(spirv[i*4+3])<<24
	}
	return words, nil
}

// NewQuadShaderModule compiles the quad shader and creates a module on
// device. The caller destroys it with device.DestroyShaderModule.
func NewQuadShaderModule(device hal.Device, label string) (hal.ShaderModule, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	words, err := CompileQuadShader()
	if err != nil {
		return nil, err
	}
	mod, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{SPIRV: words},
	})
	if err != nil {
		return nil, fmt.Errorf("textrender: create quad shader module: %w", err)
	}
	return mod, nil
}

// VertexLayout describes the Vertices output for a render pipeline:
//
//	location 0: position in clip space (vec2<f32>)
//	location 1: atlas coordinate (vec2<f32>)
func VertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: vertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
			},
		},
	}
}

// BindGroupLayoutEntries describes bind group 0 of the quad shader:
//
//	binding 0: color uniform (vec4<f32>)
//	binding 1: atlas texture
//	binding 2: filtering sampler
func BindGroupLayoutEntries() []gputypes.BindGroupLayoutEntry {
	return []gputypes.BindGroupLayoutEntry{
		{
			Binding:    0,
			Visibility: gputypes.ShaderStageFragment,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
		},
		{
			Binding:    1,
			Visibility: gputypes.ShaderStageFragment,
			Texture: &gputypes.TextureBindingLayout{
				SampleType:    gputypes.TextureSampleTypeFloat,
				ViewDimension: gputypes.TextureViewDimension2D,
			},
		},
		{
			Binding:    2,
			Visibility: gputypes.ShaderStageFragment,
			Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
		},
	}
}
