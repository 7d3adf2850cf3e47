// Package gpu is the thin seam between the renderer and the WebGPU device. The renderer talks to
// the Context, Queue, Encoder and RenderPass interfaces declared here so that every resource it
// allocates and every command it records can be observed without a physical adapter.
package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// Releaser releases GPU handles. Implementations accept any wgpu handle type and ignore nil values.
type Releaser interface {
	// Release releases every non-nil handle in objects.
	//
	// Parameters:
	//   - objects: wgpu handles (*wgpu.Buffer, *wgpu.BindGroup, *wgpu.Texture, ...)
	Release(objects ...any)
}

// Context is the set of device operations the renderer needs in order to allocate resources.
type Context interface {
	Releaser

	// CreateBindGroupLayout creates a bind group layout from the descriptor.
	//
	// Parameters:
	//   - desc: the layout descriptor
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the created layout
	//   - error: an error if creation fails
	CreateBindGroupLayout(desc *wgpu.BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error)

	// CreateBufferInit creates a buffer sized to desc.Contents and initialized with it.
	//
	// Parameters:
	//   - desc: the buffer descriptor including the initial contents
	//
	// Returns:
	//   - *wgpu.Buffer: the created buffer
	//   - error: an error if creation fails
	CreateBufferInit(desc *wgpu.BufferInitDescriptor) (*wgpu.Buffer, error)

	// CreateBindGroup creates a bind group from the descriptor.
	//
	// Parameters:
	//   - desc: the bind group descriptor
	//
	// Returns:
	//   - *wgpu.BindGroup: the created bind group
	//   - error: an error if creation fails
	CreateBindGroup(desc *wgpu.BindGroupDescriptor) (*wgpu.BindGroup, error)

	// CreateShaderModule compiles a shader module.
	//
	// Parameters:
	//   - desc: the shader module descriptor
	//
	// Returns:
	//   - *wgpu.ShaderModule: the compiled module
	//   - error: an error if compilation fails
	CreateShaderModule(desc *wgpu.ShaderModuleDescriptor) (*wgpu.ShaderModule, error)

	// CreateTexture creates a texture together with its default view.
	//
	// Parameters:
	//   - desc: the texture descriptor
	//
	// Returns:
	//   - *wgpu.Texture: the created texture
	//   - *wgpu.TextureView: the default view of the texture
	//   - error: an error if either creation fails; nothing is leaked on failure
	CreateTexture(desc *wgpu.TextureDescriptor) (*wgpu.Texture, *wgpu.TextureView, error)

	// CreatePipelineLayout creates a pipeline layout from the descriptor.
	//
	// Parameters:
	//   - desc: the pipeline layout descriptor
	//
	// Returns:
	//   - *wgpu.PipelineLayout: the created layout
	//   - error: an error if creation fails
	CreatePipelineLayout(desc *wgpu.PipelineLayoutDescriptor) (*wgpu.PipelineLayout, error)

	// CreateRenderPipeline creates a render pipeline from the descriptor.
	//
	// Parameters:
	//   - desc: the render pipeline descriptor
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the created pipeline
	//   - error: an error if creation fails
	CreateRenderPipeline(desc *wgpu.RenderPipelineDescriptor) (*wgpu.RenderPipeline, error)

	// Queue returns the queue used for buffer writes and submission.
	//
	// Returns:
	//   - Queue: the device queue
	Queue() Queue
}

// Queue is the subset of the device queue used for uniform updates.
type Queue interface {
	// WriteBuffer schedules a write of data into buffer at offset.
	WriteBuffer(buffer *wgpu.Buffer, offset uint64, data []byte) error
}

// Encoder records render passes for a single frame.
type Encoder interface {
	// BeginRenderPass opens a render pass described by desc.
	//
	// Parameters:
	//   - desc: the render pass descriptor
	//
	// Returns:
	//   - RenderPass: the open pass; End must be called before the encoder is finished
	BeginRenderPass(desc *wgpu.RenderPassDescriptor) RenderPass
}

// RenderPass is the set of commands the forward pass records.
type RenderPass interface {
	SetPipeline(pipeline *wgpu.RenderPipeline)
	SetBindGroup(groupIndex uint32, group *wgpu.BindGroup, dynamicOffsets []uint32)
	SetVertexBuffer(slot uint32, buffer *wgpu.Buffer, offset, size uint64)
	SetIndexBuffer(buffer *wgpu.Buffer, format wgpu.IndexFormat, offset, size uint64)
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)
	End()
}

// SurfaceConfig describes the output surface a forward pass renders to.
type SurfaceConfig struct {
	Width  uint32
	Height uint32
	Format wgpu.TextureFormat
}

// Valid reports whether the configuration describes a drawable surface.
//
// Returns:
//   - bool: true when both dimensions are non-zero
func (c SurfaceConfig) Valid() bool {
	return c.Width > 0 && c.Height > 0
}

// Aspect returns the width/height ratio of the surface.
//
// Returns:
//   - float32: the aspect ratio, or 1 for an invalid configuration
func (c SurfaceConfig) Aspect() float32 {
	if !c.Valid() {
		return 1
	}
	return float32(c.Width) / float32(c.Height)
}

// Target is a color attachment for one frame together with the configuration it was acquired under.
type Target struct {
	View   *wgpu.TextureView
	Width  uint32
	Height uint32
	Format wgpu.TextureFormat
}

// Config returns the surface configuration the target matches.
//
// Returns:
//   - SurfaceConfig: the target's dimensions and format
func (t Target) Config() SurfaceConfig {
	return SurfaceConfig{Width: t.Width, Height: t.Height, Format: t.Format}
}
