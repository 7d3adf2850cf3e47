package pipeline

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-forward/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// Key identifies a render pipeline variant. Pipelines differing only in output format are
// distinct entries in a Cache.
type Key struct {
	// Label names the pipeline family, e.g. "Forward".
	Label string
	// Format is the color target format the pipeline writes.
	Format wgpu.TextureFormat
}

// Descriptor holds everything needed to build a render pipeline besides the fixed-function
// settings configured through PipelineBuilderOption.
type Descriptor struct {
	Label              string
	VertexSource       string
	VertexEntryPoint   string
	FragmentSource     string
	FragmentEntryPoint string
	// BindGroupLayouts are ordered by group index.
	BindGroupLayouts []*wgpu.BindGroupLayout
	VertexLayouts    []wgpu.VertexBufferLayout
	ColorFormat      wgpu.TextureFormat
	// DepthFormat is the depth attachment format; TextureFormatUndefined disables the depth-stencil state.
	DepthFormat wgpu.TextureFormat
}

// Pipeline is a compiled render pipeline together with the shader modules and pipeline layout
// it was built from. All are released together.
type Pipeline struct {
	key      Key
	releaser gpu.Releaser

	vertexModule   *wgpu.ShaderModule
	fragmentModule *wgpu.ShaderModule
	layout         *wgpu.PipelineLayout
	renderPipeline *wgpu.RenderPipeline

	// fixed-function state, set by PipelineBuilderOption
	depthTestEnabled  bool
	depthWriteEnabled bool
	cullMode          wgpu.CullMode
	topology          wgpu.PrimitiveTopology
	frontFace         wgpu.FrontFace
	writeMask         wgpu.ColorWriteMask
}

// NewPipeline compiles both shader stages, creates the pipeline layout and builds the render
// pipeline. Defaults: triangle list, CCW front face, no culling, depth test and write enabled
// with compare Less, full color write mask, single sample.
//
// Parameters:
//   - ctx: the GPU context
//   - desc: shader sources, layouts and formats
//   - opts: fixed-function overrides
//
// Returns:
//   - *Pipeline: the built pipeline
//   - error: an error if any stage fails; everything created before the failure is released
func NewPipeline(ctx gpu.Context, desc Descriptor, opts ...PipelineBuilderOption) (_ *Pipeline, err error) {
	if desc.VertexSource == "" || desc.FragmentSource == "" {
		return nil, errors.New("vertex and fragment shader sources must be set to create a render pipeline")
	}

	p := &Pipeline{
		key:               Key{Label: desc.Label, Format: desc.ColorFormat},
		releaser:          ctx,
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		cullMode:          wgpu.CullModeNone,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
	}
	for _, opt := range opts {
		opt(p)
	}

	defer func() {
		if err != nil {
			p.Release()
		}
	}()

	p.vertexModule, err = ctx.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: desc.Label + " Vertex Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: desc.VertexSource,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s vertex shader: %w", desc.Label, err)
	}

	p.fragmentModule, err = ctx.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: desc.Label + " Fragment Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: desc.FragmentSource,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s fragment shader: %w", desc.Label, err)
	}

	p.layout, err = ctx.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            desc.Label + " Pipeline Layout",
		BindGroupLayouts: desc.BindGroupLayouts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s pipeline layout: %w", desc.Label, err)
	}

	var depthStencil *wgpu.DepthStencilState
	if desc.DepthFormat != wgpu.TextureFormatUndefined {
		depthCompare := wgpu.CompareFunctionLess
		if !p.depthTestEnabled {
			depthCompare = wgpu.CompareFunctionAlways
		}
		depthStencil = &wgpu.DepthStencilState{
			Format:            desc.DepthFormat,
			DepthWriteEnabled: p.depthWriteEnabled,
			DepthCompare:      depthCompare,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		}
	}

	p.renderPipeline, err = ctx.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  desc.Label + " Render Pipeline",
		Layout: p.layout,
		Vertex: wgpu.VertexState{
			Module:     p.vertexModule,
			EntryPoint: desc.VertexEntryPoint,
			Buffers:    desc.VertexLayouts,
		},
		Fragment: &wgpu.FragmentState{
			Module:     p.fragmentModule,
			EntryPoint: desc.FragmentEntryPoint,
			Targets: []wgpu.ColorTargetState{
				{
					Format:    desc.ColorFormat,
					WriteMask: p.writeMask,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.topology,
			FrontFace: p.frontFace,
			CullMode:  p.cullMode,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: depthStencil,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s render pipeline: %w", desc.Label, err)
	}

	return p, nil
}

// Key returns the cache key of this pipeline.
func (p *Pipeline) Key() Key {
	return p.key
}

// RenderPipeline returns the compiled pipeline, or nil once released.
func (p *Pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

// Layout returns the pipeline layout, or nil once released.
func (p *Pipeline) Layout() *wgpu.PipelineLayout {
	return p.layout
}

// Release releases the pipeline, its layout and both shader modules. Calling it again is a no-op.
func (p *Pipeline) Release() {
	if p.releaser == nil {
		return
	}
	p.releaser.Release(p.renderPipeline, p.layout, p.fragmentModule, p.vertexModule)
	p.renderPipeline = nil
	p.layout = nil
	p.fragmentModule = nil
	p.vertexModule = nil
	p.releaser = nil
}
