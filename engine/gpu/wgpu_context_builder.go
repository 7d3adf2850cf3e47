package gpu

import (
	"log/slog"

	"github.com/cogentcore/webgpu/wgpu"
)

// PresentMode controls how frames are delivered to the display.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// ContextBuilderOption is a functional option applied to a WGPUContext during construction via NewContext.
type ContextBuilderOption func(*WGPUContext)

// WithPresentMode sets the surface present mode used by ConfigureSurface.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - ContextBuilderOption: a function that applies the present mode option to a context
func WithPresentMode(mode PresentMode) ContextBuilderOption {
	return func(c *WGPUContext) {
		switch mode {
		case PresentModeUncapped:
			c.presentMode = wgpu.PresentModeImmediate
		default:
			c.presentMode = wgpu.PresentModeFifo
		}
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - ContextBuilderOption: a function that applies the force software renderer option to a context
func WithForceSoftwareRenderer(force bool) ContextBuilderOption {
	return func(c *WGPUContext) {
		c.forceFallbackAdapter = force
	}
}

// WithLogger sets the structured logger used by the context. Defaults to slog.Default().
//
// Parameters:
//   - logger: the logger to use; nil keeps the default
//
// Returns:
//   - ContextBuilderOption: a function that applies the logger option to a context
func WithLogger(logger *slog.Logger) ContextBuilderOption {
	return func(c *WGPUContext) {
		if logger != nil {
			c.logger = logger
		}
	}
}
