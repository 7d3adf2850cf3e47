package engine

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/Carmen-Shannon/oxy-forward/engine/gpu"
	"github.com/Carmen-Shannon/oxy-forward/engine/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer"
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer/mesh"
	"github.com/Carmen-Shannon/oxy-forward/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const format = wgpu.TextureFormatBGRA8Unorm

type fakeFrames struct {
	ctx      *gputest.Context
	config   gpu.SurfaceConfig
	encoders []*gputest.Encoder
	ended    int

	beginErr     error
	configureErr error
}

func (f *fakeFrames) BeginFrame() (*gpu.Frame, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	enc := f.ctx.NewEncoder()
	f.encoders = append(f.encoders, enc)
	return &gpu.Frame{
		Encoder: enc,
		Target:  gpu.Target{View: &wgpu.TextureView{}, Width: f.config.Width, Height: f.config.Height, Format: f.config.Format},
	}, nil
}

func (f *fakeFrames) EndFrame(*gpu.Frame) error {
	f.ended++
	return nil
}

func (f *fakeFrames) ConfigureSurface(width, height int) (gpu.SurfaceConfig, error) {
	if f.configureErr != nil {
		return gpu.SurfaceConfig{}, f.configureErr
	}
	f.config = gpu.SurfaceConfig{Width: uint32(width), Height: uint32(height), Format: format}
	return f.config, nil
}

type fakeLoop struct {
	onResize func(width, height int)
	onUpdate func()
	script   func(l *fakeLoop)
}

func (l *fakeLoop) SetResizeCallback(callback func(width, height int)) { l.onResize = callback }
func (l *fakeLoop) SetUpdateCallback(callback func())                  { l.onUpdate = callback }
func (l *fakeLoop) ProcessMessages()                                   { l.script(l) }

func newEngine(t *testing.T, options ...EngineBuilderOption) (*Engine, *fakeFrames, *gputest.Context) {
	t.Helper()
	ctx := gputest.NewContext()
	frames := &fakeFrames{ctx: ctx, config: gpu.SurfaceConfig{Width: 800, Height: 600, Format: format}}
	r, err := renderer.New(ctx, frames.config, renderer.WithWorkers(1))
	require.NoError(t, err)
	t.Cleanup(r.Release)
	return NewEngine(frames, r, options...), frames, ctx
}

func TestFrameWithoutSceneClears(t *testing.T) {
	e, frames, _ := newEngine(t)

	require.NoError(t, e.Frame())
	require.Len(t, frames.encoders, 1)
	require.Len(t, frames.encoders[0].Passes(), 1)
	assert.Empty(t, frames.encoders[0].Passes()[0].Draws())
	assert.Equal(t, 1, frames.ended)
}

func TestSetSceneReplacesSnapshot(t *testing.T) {
	e, frames, ctx := newEngine(t)

	require.NoError(t, e.SetScene(scene.NewScene(scene.WithObjects(scene.NewObject(mesh.Cube(), mesh.Quad())))))
	first := e.Snapshot()
	vertexBuffer := first.Objects[0].Meshes[0].VertexBuffer
	require.NoError(t, e.Frame())
	assert.Len(t, frames.encoders[0].Passes()[0].Draws(), 2)

	bad := scene.NewScene(scene.WithObjects(scene.NewObject(mesh.Mesh{})))
	assert.ErrorIs(t, e.SetScene(bad), mesh.ErrEmptyMesh)
	assert.Same(t, first, e.Snapshot())
	assert.False(t, first.Released())

	require.NoError(t, e.SetScene(scene.NewScene(scene.WithObjects(scene.NewObject(mesh.Triangle())))))
	assert.True(t, first.Released())
	assert.Equal(t, 1, ctx.Released(vertexBuffer))

	e.Release()
	assert.True(t, e.Snapshot().Released())
}

func TestResizeRebuildsAndPauses(t *testing.T) {
	e, frames, _ := newEngine(t)

	require.NoError(t, e.Resize(400, 300))
	assert.Equal(t, frames.config, e.Renderer().Config())
	require.NoError(t, e.Frame())
	assert.Len(t, frames.encoders, 1)

	require.NoError(t, e.Resize(0, 300))
	assert.True(t, e.Paused())
	require.NoError(t, e.Frame())
	assert.Len(t, frames.encoders, 1)

	require.NoError(t, e.Resize(640, 480))
	assert.False(t, e.Paused())
	require.NoError(t, e.Frame())
	assert.Len(t, frames.encoders, 2)

	frames.configureErr = errors.New("surface lost")
	assert.ErrorIs(t, e.Resize(800, 600), frames.configureErr)
	assert.Equal(t, uint32(640), e.Renderer().Config().Width)
}

func TestFrameErrors(t *testing.T) {
	e, frames, _ := newEngine(t)

	frames.beginErr = errors.New("timeout")
	assert.ErrorIs(t, e.Frame(), frames.beginErr)
	assert.Zero(t, frames.ended)
	frames.beginErr = nil

	// a target that no longer matches the renderer still ends the frame
	frames.config.Width = 1024
	assert.ErrorIs(t, e.Frame(), renderer.ErrStaleForwardPass)
	assert.Equal(t, 1, frames.ended)
}

func TestRunDrivesCallbacks(t *testing.T) {
	var logs bytes.Buffer
	e, frames, _ := newEngine(t, WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	var frameTimes []float32
	e.SetRenderCallback(func(dt float32) { frameTimes = append(frameTimes, dt) })

	loop := &fakeLoop{script: func(l *fakeLoop) {
		l.onUpdate()
		l.onResize(400, 300)
		l.onUpdate()
		frames.beginErr = errors.New("device lost")
		l.onUpdate()
	}}
	e.Run(loop)

	assert.Len(t, frames.encoders, 2)
	assert.Equal(t, uint32(400), e.Renderer().Config().Width)
	require.Len(t, frameTimes, 2)
	assert.Zero(t, frameTimes[0])
	assert.GreaterOrEqual(t, frameTimes[1], float32(0))
	assert.Contains(t, logs.String(), "frame failed")
	assert.Contains(t, logs.String(), "device lost")
}

func TestWithRenderFrameLimit(t *testing.T) {
	e, _, _ := newEngine(t, WithRenderFrameLimit(50))
	assert.Equal(t, int64(20_000_000), e.renderFrameLimit.Nanoseconds())

	e, _, _ = newEngine(t, WithRenderFrameLimit(0))
	assert.Zero(t, e.renderFrameLimit)
}
