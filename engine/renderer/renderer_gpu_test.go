package renderer

import (
	"os"
	"testing"

	"github.com/Carmen-Shannon/oxy-forward/common"
	"github.com/Carmen-Shannon/oxy-forward/engine/gpu"
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer/mesh"
	"github.com/Carmen-Shannon/oxy-forward/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/require"
)

// newHeadlessContext returns a real device, skipping the test unless OXY_GPU_TESTS=1.
func newHeadlessContext(t *testing.T) *gpu.WGPUContext {
	t.Helper()
	if os.Getenv("OXY_GPU_TESTS") != "1" {
		t.Skip("set OXY_GPU_TESTS=1 to run tests against a GPU adapter")
	}
	ctx, err := gpu.NewContext(nil)
	require.NoError(t, err)
	t.Cleanup(ctx.Close)
	return ctx
}

func offscreenTarget(t *testing.T, ctx *gpu.WGPUContext, cfg gpu.SurfaceConfig) gpu.Target {
	t.Helper()
	tex, view, err := ctx.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Offscreen Color",
		Size:          wgpu.Extent3D{Width: cfg.Width, Height: cfg.Height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        cfg.Format,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	require.NoError(t, err)
	t.Cleanup(func() { ctx.Release(view, tex) })
	return gpu.Target{View: view, Width: cfg.Width, Height: cfg.Height, Format: cfg.Format}
}

func renderFrame(t *testing.T, ctx *gpu.WGPUContext, r *Renderer, target gpu.Target, snap *Snapshot) {
	t.Helper()
	frame, err := ctx.BeginOffscreenFrame(target)
	require.NoError(t, err)
	require.NoError(t, r.Render(frame.Encoder, frame.Target, snap))
	require.NoError(t, ctx.EndFrame(frame))
}

func TestRenderOnDevice(t *testing.T) {
	ctx := newHeadlessContext(t)

	r, err := New(ctx, config800)
	require.NoError(t, err)
	defer r.Release()

	s := scene.NewScene(
		scene.WithLookAt(common.Vec3{0, 2, -5}, common.Vec3{}, common.Vec3{0, 1, 0}),
		scene.WithObjects(
			scene.NewObject(mesh.Cube()).WithMaterials(&scene.Material{Albedo: common.Color{1, 0, 0, 1}}),
			scene.NewObject(mesh.Triangle(), mesh.Quad()).WithTransform(common.Vec3{2, 0, 0}, common.Vec3{}, common.Vec3{1, 1, 1}),
		),
	)
	snap, err := r.CreateScene(s)
	require.NoError(t, err)
	defer snap.Release()

	renderFrame(t, ctx, r, offscreenTarget(t, ctx, config800), snap)

	require.NoError(t, r.Resize(config400))
	renderFrame(t, ctx, r, offscreenTarget(t, ctx, config400), snap)
}
