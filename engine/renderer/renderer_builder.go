package renderer

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-forward/common"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via New.
type RendererBuilderOption func(*Renderer)

// WithLogger sets the logger the renderer reports lifecycle events to.
//
// Parameters:
//   - logger: the logger; nil keeps slog.Default()
//
// Returns:
//   - RendererBuilderOption: a function that applies the logger option to a renderer
func WithLogger(logger *slog.Logger) RendererBuilderOption {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithResizeProjection makes Resize recompute the projection matrix for the new aspect ratio.
// By default the projection computed at New is kept.
//
// Parameters:
//   - enabled: whether Resize updates the projection
//
// Returns:
//   - RendererBuilderOption: a function that applies the option to a renderer
func WithResizeProjection(enabled bool) RendererBuilderOption {
	return func(r *Renderer) {
		r.resizeProjection = enabled
	}
}

// WithDefaultAlbedo sets the albedo used for meshes without a material.
//
// Parameters:
//   - albedo: the fallback RGBA color
//
// Returns:
//   - RendererBuilderOption: a function that applies the option to a renderer
func WithDefaultAlbedo(albedo common.Color) RendererBuilderOption {
	return func(r *Renderer) {
		r.defaultAlbedo = albedo
	}
}

// WithWorkers sets the number of goroutines CreateScene encodes meshes on. Defaults to
// runtime.NumCPU(); 1 encodes on the calling goroutine.
//
// Parameters:
//   - n: the number of workers (minimum 1)
//
// Returns:
//   - RendererBuilderOption: a function that applies the option to a renderer
func WithWorkers(n int) RendererBuilderOption {
	return func(r *Renderer) {
		if n < 1 {
			n = 1
		}
		r.workers = n
	}
}

// WithPipelineCacheSize sets how many render pipelines, one per surface format, are kept alive
// across resizes.
//
// Parameters:
//   - size: the cache capacity (minimum 1)
//
// Returns:
//   - RendererBuilderOption: a function that applies the option to a renderer
func WithPipelineCacheSize(size int) RendererBuilderOption {
	return func(r *Renderer) {
		if size < 1 {
			size = 1
		}
		r.pipelineCacheSize = size
	}
}
