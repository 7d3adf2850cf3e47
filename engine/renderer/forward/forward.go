// Package forward implements the single-pass forward renderer: one render pass that clears the
// color and depth targets and draws every mesh of a snapshot with its transform and material.
package forward

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-forward/engine/gpu"
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer/mesh"
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer/snapshot"
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer/uniform"
	"github.com/cogentcore/webgpu/wgpu"
)

//go:embed shaders/forward_vert.wgsl
var vertexShaderBody string

//go:embed shaders/forward_frag.wgsl
var fragmentShaderBody string

// Bind group indices of the forward pipeline layout.
const (
	CameraGroup    = 0
	TransformGroup = 1
	MaterialGroup  = 2
)

const (
	// DepthFormat is the format of the depth target owned by a ForwardPass.
	DepthFormat = wgpu.TextureFormatDepth32Float
	// EntryPoint is the entry point of both forward shader stages.
	EntryPoint = "main"
	// PipelineLabel labels the forward pipeline and is the Label of its cache key.
	PipelineLabel = "Forward"
)

var (
	// ErrStaleForwardPass is returned by Execute when the target no longer matches the
	// configuration the pass was built for. Rebuild the pass after a resize.
	ErrStaleForwardPass = errors.New("forward: pass was built for a different surface configuration")
	// ErrInvalidSurface is returned by New for a surface with a zero dimension.
	ErrInvalidSurface = errors.New("forward: surface width and height must be non-zero")
)

// ClearColor is the color the target is cleared to at the start of the pass.
var ClearColor = wgpu.Color{R: 0, G: 0, B: 0, A: 1}

// DepthClearValue is the value the depth target is cleared to at the start of the pass.
const DepthClearValue = 1.0

// VertexShaderSource returns the complete WGSL source of the vertex stage.
func VertexShaderSource() string {
	return uniform.CameraUniformSource + uniform.TransformUniformSource + vertexShaderBody
}

// FragmentShaderSource returns the complete WGSL source of the fragment stage.
func FragmentShaderSource() string {
	return uniform.MaterialUniformSource + fragmentShaderBody
}

// ForwardPass owns the depth target for one surface configuration and references the render
// pipeline for that configuration's format. It is valid only for the configuration it was built with.
type ForwardPass struct {
	releaser gpu.Releaser
	config   gpu.SurfaceConfig

	pipeline     *pipeline.Pipeline
	ownsPipeline bool

	depthTexture *wgpu.Texture
	depthView    *wgpu.TextureView
}

// Option configures New.
type Option func(*options)

type options struct {
	cache *pipeline.Cache
}

// WithPipelineCache makes New fetch the pipeline from cache, building it on a miss.
// The cache then owns the pipeline and the pass does not release it.
//
// Parameters:
//   - cache: the pipeline cache
//
// Returns:
//   - Option: the option
func WithPipelineCache(cache *pipeline.Cache) Option {
	return func(o *options) {
		o.cache = cache
	}
}

// PipelineOptions returns the fixed-function state of the forward pipeline: indexed triangle
// lists wound counter-clockwise with no culling, a Less depth test that writes depth, and all
// color channels written.
func PipelineOptions() []pipeline.PipelineBuilderOption {
	return []pipeline.PipelineBuilderOption{
		pipeline.WithTopology(wgpu.PrimitiveTopologyTriangleList),
		pipeline.WithFrontFace(wgpu.FrontFaceCCW),
		pipeline.WithCullMode(wgpu.CullModeNone),
		pipeline.WithDepthTestEnabled(true),
		pipeline.WithDepthWriteEnabled(true),
		pipeline.WithWriteMask(wgpu.ColorWriteMaskAll),
	}
}

// New builds a forward pass for config: a depth target sized to the surface and the pipeline
// (shader stages, pipeline layout ordered camera, transform, material).
//
// Parameters:
//   - ctx: the GPU context
//   - config: the output surface configuration
//   - cameraLayout: bind group layout of group CameraGroup
//   - transformLayout: bind group layout of group TransformGroup
//   - materialLayout: bind group layout of group MaterialGroup
//   - opts: options
//
// Returns:
//   - *ForwardPass: the pass
//   - error: ErrInvalidSurface, or an allocation error; nothing created here is leaked on failure
func New(
	ctx gpu.Context,
	config gpu.SurfaceConfig,
	cameraLayout, transformLayout, materialLayout *wgpu.BindGroupLayout,
	opts ...Option,
) (_ *ForwardPass, err error) {
	if !config.Valid() {
		return nil, fmt.Errorf("%dx%d: %w", config.Width, config.Height, ErrInvalidSurface)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	f := &ForwardPass{releaser: ctx, config: config}
	defer func() {
		if err != nil {
			f.Release()
		}
	}()

	// Allocated before the cache is touched: a miss may evict and release the pipeline of the
	// pass this one replaces.
	f.depthTexture, f.depthView, err = ctx.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Forward Depth Texture",
		Size: wgpu.Extent3D{
			Width:              config.Width,
			Height:             config.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        DepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create forward depth texture: %w", err)
	}

	build := func() (*pipeline.Pipeline, error) {
		return pipeline.NewPipeline(ctx, pipeline.Descriptor{
			Label:              PipelineLabel,
			VertexSource:       VertexShaderSource(),
			VertexEntryPoint:   EntryPoint,
			FragmentSource:     FragmentShaderSource(),
			FragmentEntryPoint: EntryPoint,
			BindGroupLayouts:   []*wgpu.BindGroupLayout{cameraLayout, transformLayout, materialLayout},
			VertexLayouts:      []wgpu.VertexBufferLayout{mesh.VertexBufferLayout()},
			ColorFormat:        config.Format,
			DepthFormat:        DepthFormat,
		}, PipelineOptions()...)
	}

	if o.cache != nil {
		f.pipeline, err = o.cache.GetOrCreate(pipeline.Key{Label: PipelineLabel, Format: config.Format}, build)
	} else {
		f.pipeline, err = build()
		f.ownsPipeline = f.pipeline != nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build forward pipeline: %w", err)
	}

	return f, nil
}

// Config returns the surface configuration the pass was built for.
func (f *ForwardPass) Config() gpu.SurfaceConfig {
	return f.config
}

// Pipeline returns the pipeline the pass draws with.
func (f *ForwardPass) Pipeline() *pipeline.Pipeline {
	return f.pipeline
}

// DepthView returns the view of the owned depth target.
func (f *ForwardPass) DepthView() *wgpu.TextureView {
	return f.depthView
}

// Execute records one render pass drawing snap into target. The camera bind group is bound
// once at CameraGroup; for every object its transform is bound at TransformGroup, and for every
// mesh its material is bound at MaterialGroup before an indexed draw of the whole mesh.
//
// Parameters:
//   - encoder: the frame's command encoder
//   - target: the color target; must match Config()
//   - camera: the camera bind group
//   - snap: the snapshot to draw
//
// Returns:
//   - error: ErrStaleForwardPass, also when the pass's pipeline was evicted from its cache, or a
//     snapshot validation error; nothing is recorded on error
func (f *ForwardPass) Execute(encoder gpu.Encoder, target gpu.Target, camera *wgpu.BindGroup, snap *snapshot.Snapshot) error {
	if f.pipeline == nil || f.pipeline.RenderPipeline() == nil || f.depthView == nil {
		return ErrStaleForwardPass
	}
	if target.Config() != f.config {
		return fmt.Errorf("target %dx%d format %v, pass %dx%d format %v: %w",
			target.Width, target.Height, target.Format,
			f.config.Width, f.config.Height, f.config.Format,
			ErrStaleForwardPass)
	}
	if err := snap.Validate(); err != nil {
		return err
	}

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       target.View,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: ClearColor,
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            f.depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: DepthClearValue,
		},
	})

	pass.SetPipeline(f.pipeline.RenderPipeline())
	pass.SetBindGroup(CameraGroup, camera, nil)

	for _, obj := range snap.Objects {
		pass.SetBindGroup(TransformGroup, obj.Transform.BindGroup(), nil)
		for i, m := range obj.Meshes {
			pass.SetBindGroup(MaterialGroup, obj.Materials[i].BindGroup(), nil)
			pass.SetVertexBuffer(0, m.VertexBuffer, 0, wgpu.WholeSize)
			pass.SetIndexBuffer(m.IndexBuffer, mesh.IndexFormat, 0, wgpu.WholeSize)
			pass.DrawIndexed(m.IndexCount, 1, 0, 0, 0)
		}
	}

	pass.End()
	return nil
}

// Release releases the depth target and, unless it belongs to a pipeline cache, the pipeline.
// Calling it again is a no-op.
func (f *ForwardPass) Release() {
	if f.releaser == nil {
		return
	}
	f.releaser.Release(f.depthView, f.depthTexture)
	f.depthView = nil
	f.depthTexture = nil
	if f.ownsPipeline && f.pipeline != nil {
		f.pipeline.Release()
	}
	f.pipeline = nil
	f.releaser = nil
}
