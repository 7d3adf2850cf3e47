package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-forward/engine/gpu/gputest"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDescriptor(format wgpu.TextureFormat) Descriptor {
	return Descriptor{
		Label:              "Test",
		VertexSource:       "@vertex fn main() {}",
		VertexEntryPoint:   "main",
		FragmentSource:     "@fragment fn main() {}",
		FragmentEntryPoint: "main",
		ColorFormat:        format,
		DepthFormat:        wgpu.TextureFormatDepth32Float,
	}
}

func TestNewPipelineDefaults(t *testing.T) {
	ctx := gputest.NewContext()

	p, err := NewPipeline(ctx, testDescriptor(wgpu.TextureFormatBGRA8Unorm))
	require.NoError(t, err)
	assert.Equal(t, Key{Label: "Test", Format: wgpu.TextureFormatBGRA8Unorm}, p.Key())

	cr, ok := ctx.CreationOf(p.RenderPipeline())
	require.True(t, ok)
	desc := cr.Desc.(wgpu.RenderPipelineDescriptor)

	assert.Same(t, p.Layout(), desc.Layout)
	assert.Equal(t, "main", desc.Vertex.EntryPoint)
	require.NotNil(t, desc.Fragment)
	assert.Equal(t, "main", desc.Fragment.EntryPoint)
	require.Len(t, desc.Fragment.Targets, 1)
	assert.Equal(t, wgpu.TextureFormatBGRA8Unorm, desc.Fragment.Targets[0].Format)
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, desc.Primitive.Topology)
	assert.Equal(t, wgpu.FrontFaceCCW, desc.Primitive.FrontFace)
	assert.Equal(t, wgpu.CullModeNone, desc.Primitive.CullMode)
	assert.Equal(t, uint32(1), desc.Multisample.Count)

	require.NotNil(t, desc.DepthStencil)
	assert.Equal(t, wgpu.TextureFormatDepth32Float, desc.DepthStencil.Format)
	assert.True(t, desc.DepthStencil.DepthWriteEnabled)
	assert.Equal(t, wgpu.CompareFunctionLess, desc.DepthStencil.DepthCompare)

	p.Release()
	p.Release()
	assert.Zero(t, ctx.Live())
}

func TestNewPipelineOptions(t *testing.T) {
	ctx := gputest.NewContext()

	p, err := NewPipeline(ctx, testDescriptor(wgpu.TextureFormatRGBA8Unorm),
		WithDepthTestEnabled(false),
		WithDepthWriteEnabled(false),
		WithCullMode(wgpu.CullModeBack),
		WithFrontFace(wgpu.FrontFaceCW),
		WithTopology(wgpu.PrimitiveTopologyLineList),
		WithWriteMask(wgpu.ColorWriteMaskRed|wgpu.ColorWriteMaskAlpha),
	)
	require.NoError(t, err)

	cr, _ := ctx.CreationOf(p.RenderPipeline())
	desc := cr.Desc.(wgpu.RenderPipelineDescriptor)
	assert.Equal(t, wgpu.CompareFunctionAlways, desc.DepthStencil.DepthCompare)
	assert.False(t, desc.DepthStencil.DepthWriteEnabled)
	assert.Equal(t, wgpu.CullModeBack, desc.Primitive.CullMode)
	assert.Equal(t, wgpu.FrontFaceCW, desc.Primitive.FrontFace)
	assert.Equal(t, wgpu.PrimitiveTopologyLineList, desc.Primitive.Topology)
	assert.Equal(t, wgpu.ColorWriteMaskRed|wgpu.ColorWriteMaskAlpha, desc.Fragment.Targets[0].WriteMask)
}

func TestNewPipelineFailureReleasesEverything(t *testing.T) {
	for _, op := range []string{
		gputest.OpCreateShaderModule,
		gputest.OpCreatePipelineLayout,
		gputest.OpCreateRenderPipeline,
	} {
		t.Run(op, func(t *testing.T) {
			ctx := gputest.NewContext()
			ctx.FailOn(op, 1)

			p, err := NewPipeline(ctx, testDescriptor(wgpu.TextureFormatBGRA8Unorm))
			assert.ErrorIs(t, err, gputest.ErrInjected)
			assert.Nil(t, p)
			assert.Zero(t, ctx.Live())
		})
	}
}

func TestNewPipelineRequiresSources(t *testing.T) {
	_, err := NewPipeline(gputest.NewContext(), Descriptor{Label: "Empty"})
	assert.Error(t, err)
}

func TestCacheReusesAndEvicts(t *testing.T) {
	ctx := gputest.NewContext()
	cache, err := NewCache(1)
	require.NoError(t, err)

	builds := 0
	build := func(format wgpu.TextureFormat) func() (*Pipeline, error) {
		return func() (*Pipeline, error) {
			builds++
			return NewPipeline(ctx, testDescriptor(format))
		}
	}

	bgra := Key{Label: "Test", Format: wgpu.TextureFormatBGRA8Unorm}
	first, err := cache.GetOrCreate(bgra, build(bgra.Format))
	require.NoError(t, err)
	again, err := cache.GetOrCreate(bgra, build(bgra.Format))
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Equal(t, 1, builds)

	firstPipeline := first.RenderPipeline()
	rgba := Key{Label: "Test", Format: wgpu.TextureFormatRGBA8Unorm}
	second, err := cache.GetOrCreate(rgba, build(rgba.Format))
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, 2, builds)
	assert.Equal(t, 1, ctx.Released(firstPipeline))
	assert.False(t, cache.Contains(bgra))
	assert.Equal(t, 1, cache.Len())

	cache.Purge()
	assert.Zero(t, cache.Len())
	assert.Zero(t, ctx.Live())
}

func TestCacheCreateError(t *testing.T) {
	ctx := gputest.NewContext()
	cache, err := NewCache(0)
	require.NoError(t, err)

	ctx.FailOn(gputest.OpCreateRenderPipeline, 1)
	key := Key{Label: "Test", Format: wgpu.TextureFormatBGRA8Unorm}
	_, err = cache.GetOrCreate(key, func() (*Pipeline, error) {
		return NewPipeline(ctx, testDescriptor(key.Format))
	})
	assert.ErrorIs(t, err, gputest.ErrInjected)
	assert.Zero(t, cache.Len())
}
