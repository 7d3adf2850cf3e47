// Package engine drives the frame loop of a windowed forward renderer: it keeps the surface and
// the renderer in step with the window size, owns the current scene snapshot, and renders one
// frame per window message loop iteration.
package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/oxy-forward/engine/gpu"
	"github.com/Carmen-Shannon/oxy-forward/engine/profiler"
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer"
	"github.com/Carmen-Shannon/oxy-forward/engine/scene"
)

// FrameSource acquires and presents frames and reconfigures the surface they come from.
// *gpu.WGPUContext implements it.
type FrameSource interface {
	// BeginFrame acquires the next frame.
	BeginFrame() (*gpu.Frame, error)
	// EndFrame submits and presents frame.
	EndFrame(frame *gpu.Frame) error
	// ConfigureSurface resizes the surface.
	ConfigureSurface(width, height int) (gpu.SurfaceConfig, error)
}

var _ FrameSource = &gpu.WGPUContext{}

// MessageLoop is the part of a window the engine drives. window.Window implements it.
type MessageLoop interface {
	SetResizeCallback(callback func(width, height int))
	SetUpdateCallback(callback func())
	ProcessMessages()
}

// Engine renders the current snapshot once per frame. It is not safe for concurrent use and must
// run on the goroutine that owns the GPU context and the window.
type Engine struct {
	frames   FrameSource
	renderer *renderer.Renderer
	logger   *slog.Logger

	snapshot *renderer.Snapshot
	// paused is set while the surface has a zero dimension, e.g. when the window is minimized.
	paused bool

	profiler         *profiler.Profiler
	profilingEnabled bool

	renderCallback   func(deltaTime float32)
	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
	lastFrame        time.Time
}

// NewEngine creates an engine presenting r's output through frames. Until SetScene is called
// every frame clears the target.
//
// Parameters:
//   - frames: the frame source, normally the renderer's *gpu.WGPUContext
//   - r: the renderer
//   - options: functional options
//
// Returns:
//   - *Engine: the engine
func NewEngine(frames FrameSource, r *renderer.Renderer, options ...EngineBuilderOption) *Engine {
	e := &Engine{
		frames:   frames,
		renderer: r,
		logger:   slog.Default(),
		snapshot: &renderer.Snapshot{},
	}
	for _, opt := range options {
		opt(e)
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger))
	}
	return e
}

// SetScene uploads s and makes it the scene drawn by subsequent frames. The previous snapshot is
// released only after the upload succeeds.
//
// Parameters:
//   - s: the scene
//
// Returns:
//   - error: the CreateScene error; the previous scene stays current on failure
func (e *Engine) SetScene(s *scene.Scene) error {
	snap, err := e.renderer.CreateScene(s)
	if err != nil {
		return fmt.Errorf("failed to upload scene: %w", err)
	}
	e.snapshot.Release()
	e.snapshot = snap
	return nil
}

// Snapshot returns the snapshot drawn by each frame.
func (e *Engine) Snapshot() *renderer.Snapshot {
	return e.snapshot
}

// Renderer returns the engine's renderer.
func (e *Engine) Renderer() *renderer.Renderer {
	return e.renderer
}

// Paused reports whether frames are skipped because the surface has a zero dimension.
func (e *Engine) Paused() bool {
	return e.paused
}

// EnableProfiler enables performance profiling output to the log.
func (e *Engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *Engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetRenderCallback registers the function called after each rendered frame.
//
// Parameters:
//   - callback: function receiving the time since the previous frame in seconds
func (e *Engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

// Resize reconfigures the surface and rebuilds the renderer's forward pass for the new size.
// A zero width or height pauses rendering until the next non-empty resize.
//
// Parameters:
//   - width: framebuffer width in pixels
//   - height: framebuffer height in pixels
//
// Returns:
//   - error: a surface or renderer error
func (e *Engine) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		e.paused = true
		e.logger.Debug("rendering paused", slog.Int("width", width), slog.Int("height", height))
		return nil
	}

	config, err := e.frames.ConfigureSurface(width, height)
	if err != nil {
		return fmt.Errorf("failed to configure surface: %w", err)
	}
	if err := e.renderer.Resize(config); err != nil {
		return err
	}
	e.paused = false
	return nil
}

// Frame acquires a frame, renders the current snapshot into it and presents it.
//
// Returns:
//   - error: an acquisition, render or submission error; nil while paused
func (e *Engine) Frame() error {
	if e.paused {
		return nil
	}

	now := time.Now()
	var dt float32
	if !e.lastFrame.IsZero() {
		dt = float32(now.Sub(e.lastFrame).Seconds())
	}
	e.lastFrame = now

	frame, err := e.frames.BeginFrame()
	if err != nil {
		return fmt.Errorf("failed to begin frame: %w", err)
	}
	renderErr := e.renderer.Render(frame.Encoder, frame.Target, e.snapshot)
	// the frame is ended even when nothing was recorded so the surface texture is returned
	if err := e.frames.EndFrame(frame); err != nil {
		return fmt.Errorf("failed to end frame: %w", err)
	}
	if renderErr != nil {
		return renderErr
	}

	if e.renderCallback != nil {
		e.renderCallback(dt)
	}
	if e.profilingEnabled {
		e.profiler.Tick()
	}

	if e.renderFrameLimit > 0 {
		if remaining := e.renderFrameLimit - time.Since(now); remaining > 0 {
			time.Sleep(remaining)
		}
	}
	return nil
}

// Run wires the window's resize and update callbacks to Resize and Frame and runs the window
// message loop. It blocks until the window is closed. Errors are logged and do not stop the loop.
//
// Parameters:
//   - w: the window presenting the frame source's surface
func (e *Engine) Run(w MessageLoop) {
	w.SetResizeCallback(func(width, height int) {
		if err := e.Resize(width, height); err != nil {
			e.logger.Error("resize failed", slog.Any("error", err))
		}
	})
	w.SetUpdateCallback(func() {
		if err := e.Frame(); err != nil {
			e.logger.Error("frame failed", slog.Any("error", err))
		}
	})
	w.ProcessMessages()
}

// Release releases the current snapshot. The renderer and frame source are owned by the caller.
func (e *Engine) Release() {
	e.snapshot.Release()
}
