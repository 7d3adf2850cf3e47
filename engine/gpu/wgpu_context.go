package gpu

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// ErrNoSurface is returned by surface operations on a headless context.
var ErrNoSurface = errors.New("gpu: context has no surface")

// ErrFrameInFlight is returned by BeginFrame while a previously acquired frame has not been ended.
var ErrFrameInFlight = errors.New("gpu: previous frame surface not yet presented")

// WGPUContext is the Context backed by a real wgpu-native device.
// It optionally owns a presentable surface created from a window's surface descriptor.
type WGPUContext struct {
	mu     *sync.Mutex
	logger *slog.Logger

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	surfaceConfig        SurfaceConfig
	presentMode          wgpu.PresentMode
	forceFallbackAdapter bool

	frameInFlight bool
}

var _ Context = &WGPUContext{}

func init() {
	SetLogLevelFromEnv()
}

// SetLogLevelFromEnv applies the WGPU_LOG_LEVEL environment variable (OFF, ERROR, WARN, INFO,
// DEBUG or TRACE) to the wgpu-native logger. Unknown or empty values leave the level untouched.
func SetLogLevelFromEnv() {
	switch strings.ToUpper(os.Getenv("WGPU_LOG_LEVEL")) {
	case "OFF":
		wgpu.SetLogLevel(wgpu.LogLevelOff)
	case "ERROR":
		wgpu.SetLogLevel(wgpu.LogLevelError)
	case "WARN":
		wgpu.SetLogLevel(wgpu.LogLevelWarn)
	case "INFO":
		wgpu.SetLogLevel(wgpu.LogLevelInfo)
	case "DEBUG":
		wgpu.SetLogLevel(wgpu.LogLevelDebug)
	case "TRACE":
		wgpu.SetLogLevel(wgpu.LogLevelTrace)
	}
}

// NewContext creates a wgpu instance, adapter, device and queue. When surfaceDescriptor is non-nil
// a surface is created from it and the adapter is required to be compatible with that surface;
// when it is nil the context is headless and can only render to offscreen targets.
//
// The calling goroutine is locked to its OS thread, since surface presentation must happen on
// the thread that owns the window.
//
// Parameters:
//   - surfaceDescriptor: the platform surface descriptor, or nil for a headless context
//   - options: functional options applied before the adapter is requested
//
// Returns:
//   - *WGPUContext: the created context
//   - error: an error if the adapter or device could not be acquired
func NewContext(surfaceDescriptor *wgpu.SurfaceDescriptor, options ...ContextBuilderOption) (ctx *WGPUContext, err error) {
	runtime.LockOSThread()

	c := &WGPUContext{
		mu:          &sync.Mutex{},
		logger:      slog.Default(),
		presentMode: wgpu.PresentModeFifo,
	}
	for _, opt := range options {
		opt(c)
	}

	defer func() {
		if err != nil {
			c.Close()
			ctx = nil
		}
	}()

	c.instance = wgpu.CreateInstance(nil)
	if surfaceDescriptor != nil {
		c.surface = c.instance.CreateSurface(surfaceDescriptor)
	}

	c.adapter, err = c.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: c.forceFallbackAdapter,
		CompatibleSurface:    c.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}

	c.device, err = c.adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to request device: %w", err)
	}
	c.queue = c.device.GetQueue()

	c.logger.Info("gpu context created",
		slog.Bool("headless", c.surface == nil),
		slog.Bool("fallback_adapter", c.forceFallbackAdapter),
	)

	return c, nil
}

// ConfigureSurface (re)configures the presentable surface for the given framebuffer size.
// The first format reported by the surface capabilities is used.
//
// Parameters:
//   - width: surface width in pixels
//   - height: surface height in pixels
//
// Returns:
//   - SurfaceConfig: the configuration now in effect
//   - error: ErrNoSurface on a headless context
func (c *WGPUContext) ConfigureSurface(width, height int) (SurfaceConfig, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.surface == nil {
		return SurfaceConfig{}, ErrNoSurface
	}

	capabilities := c.surface.GetCapabilities(c.adapter)
	if len(capabilities.Formats) == 0 {
		return SurfaceConfig{}, errors.New("gpu: surface reports no supported formats")
	}
	format := capabilities.Formats[0]
	if len(capabilities.AlphaModes) == 0 {
		return SurfaceConfig{}, errors.New("gpu: surface reports no supported alpha modes")
	}

	c.surface.Configure(c.adapter, c.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      format,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: c.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	c.surfaceConfig = SurfaceConfig{Width: uint32(width), Height: uint32(height), Format: format}
	c.logger.Debug("surface configured",
		slog.Int("width", width),
		slog.Int("height", height),
		slog.Any("format", format),
	)
	return c.surfaceConfig, nil
}

// SurfaceConfig returns the configuration of the last ConfigureSurface call.
//
// Returns:
//   - SurfaceConfig: the current surface configuration, zero if never configured
func (c *WGPUContext) SurfaceConfig() SurfaceConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.surfaceConfig
}

// Frame is a single in-flight frame: a command encoder and the color target it renders to.
type Frame struct {
	// Encoder records the frame's render passes.
	Encoder Encoder
	// Target is the color attachment for the frame.
	Target Target

	encoder *wgpu.CommandEncoder
	texture *wgpu.Texture
	present bool
}

// BeginFrame acquires the next surface texture and opens a command encoder for it.
//
// Returns:
//   - *Frame: the acquired frame, to be passed to EndFrame
//   - error: ErrNoSurface, ErrFrameInFlight, or an acquisition error
func (c *WGPUContext) BeginFrame() (*Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.surface == nil {
		return nil, ErrNoSurface
	}
	if c.frameInFlight {
		return nil, ErrFrameInFlight
	}

	surfaceTexture, err := c.surface.GetCurrentTexture()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire surface texture: %w", err)
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return nil, fmt.Errorf("failed to create surface view: %w", err)
	}

	encoder, err := c.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return nil, fmt.Errorf("failed to create command encoder: %w", err)
	}

	c.frameInFlight = true
	return &Frame{
		Encoder: &wgpuEncoder{encoder: encoder},
		Target: Target{
			View:   view,
			Width:  c.surfaceConfig.Width,
			Height: c.surfaceConfig.Height,
			Format: c.surfaceConfig.Format,
		},
		encoder: encoder,
		texture: surfaceTexture,
		present: true,
	}, nil
}

// BeginOffscreenFrame opens a command encoder that renders into a caller-owned target.
// The target view is not released by EndFrame.
//
// Parameters:
//   - target: the offscreen color target
//
// Returns:
//   - *Frame: the frame, to be passed to EndFrame
//   - error: an error if the command encoder could not be created
func (c *WGPUContext) BeginOffscreenFrame(target Target) (*Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	encoder, err := c.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create command encoder: %w", err)
	}
	return &Frame{
		Encoder: &wgpuEncoder{encoder: encoder},
		Target:  target,
		encoder: encoder,
	}, nil
}

// EndFrame finishes the frame's encoder, submits it to the queue and presents the surface
// texture if the frame was acquired from the surface.
//
// Parameters:
//   - frame: the frame returned by BeginFrame or BeginOffscreenFrame
//
// Returns:
//   - error: an error if the encoder could not be finished
func (c *WGPUContext) EndFrame(frame *Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	defer func() {
		frame.encoder.Release()
		if frame.present {
			frame.Target.View.Release()
			frame.texture.Release()
			c.frameInFlight = false
		}
	}()

	commandBuffer, err := frame.encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("failed to finish command encoder: %w", err)
	}
	c.queue.Submit(commandBuffer)
	commandBuffer.Release()

	if frame.present {
		c.surface.Present()
	}
	return nil
}

func (c *WGPUContext) CreateBindGroupLayout(desc *wgpu.BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error) {
	return c.device.CreateBindGroupLayout(desc)
}

func (c *WGPUContext) CreateBufferInit(desc *wgpu.BufferInitDescriptor) (*wgpu.Buffer, error) {
	return c.device.CreateBufferInit(desc)
}

func (c *WGPUContext) CreateBindGroup(desc *wgpu.BindGroupDescriptor) (*wgpu.BindGroup, error) {
	return c.device.CreateBindGroup(desc)
}

func (c *WGPUContext) CreateShaderModule(desc *wgpu.ShaderModuleDescriptor) (*wgpu.ShaderModule, error) {
	return c.device.CreateShaderModule(desc)
}

func (c *WGPUContext) CreateTexture(desc *wgpu.TextureDescriptor) (*wgpu.Texture, *wgpu.TextureView, error) {
	tex, err := c.device.CreateTexture(desc)
	if err != nil {
		return nil, nil, err
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, nil, err
	}
	return tex, view, nil
}

func (c *WGPUContext) CreatePipelineLayout(desc *wgpu.PipelineLayoutDescriptor) (*wgpu.PipelineLayout, error) {
	return c.device.CreatePipelineLayout(desc)
}

func (c *WGPUContext) CreateRenderPipeline(desc *wgpu.RenderPipelineDescriptor) (*wgpu.RenderPipeline, error) {
	return c.device.CreateRenderPipeline(desc)
}

func (c *WGPUContext) Queue() Queue {
	return c.queue
}

func (c *WGPUContext) Release(objects ...any) {
	for _, o := range objects {
		switch h := o.(type) {
		case *wgpu.Buffer:
			if h != nil {
				h.Release()
			}
		case *wgpu.BindGroup:
			if h != nil {
				h.Release()
			}
		case *wgpu.BindGroupLayout:
			if h != nil {
				h.Release()
			}
		case *wgpu.TextureView:
			if h != nil {
				h.Release()
			}
		case *wgpu.Texture:
			if h != nil {
				h.Release()
			}
		case *wgpu.ShaderModule:
			if h != nil {
				h.Release()
			}
		case *wgpu.PipelineLayout:
			if h != nil {
				h.Release()
			}
		case *wgpu.RenderPipeline:
			if h != nil {
				h.Release()
			}
		case nil:
		default:
			c.logger.Warn("release of unsupported handle type", slog.String("type", fmt.Sprintf("%T", o)))
		}
	}
}

// Close releases the queue, device, adapter, surface and instance. The context must not be used afterwards.
func (c *WGPUContext) Close() {
	if c.queue != nil {
		c.queue.Release()
		c.queue = nil
	}
	if c.device != nil {
		c.device.Release()
		c.device = nil
	}
	if c.adapter != nil {
		c.adapter.Release()
		c.adapter = nil
	}
	if c.surface != nil {
		c.surface.Release()
		c.surface = nil
	}
	if c.instance != nil {
		c.instance.Release()
		c.instance = nil
	}
}

// wgpuEncoder adapts *wgpu.CommandEncoder to the Encoder interface.
type wgpuEncoder struct {
	encoder *wgpu.CommandEncoder
}

func (e *wgpuEncoder) BeginRenderPass(desc *wgpu.RenderPassDescriptor) RenderPass {
	return &wgpuRenderPass{pass: e.encoder.BeginRenderPass(desc)}
}

// wgpuRenderPass adapts *wgpu.RenderPassEncoder to the RenderPass interface.
type wgpuRenderPass struct {
	pass *wgpu.RenderPassEncoder
}

func (p *wgpuRenderPass) SetPipeline(pipeline *wgpu.RenderPipeline) {
	p.pass.SetPipeline(pipeline)
}

func (p *wgpuRenderPass) SetBindGroup(groupIndex uint32, group *wgpu.BindGroup, dynamicOffsets []uint32) {
	p.pass.SetBindGroup(groupIndex, group, dynamicOffsets)
}

func (p *wgpuRenderPass) SetVertexBuffer(slot uint32, buffer *wgpu.Buffer, offset, size uint64) {
	p.pass.SetVertexBuffer(slot, buffer, offset, size)
}

func (p *wgpuRenderPass) SetIndexBuffer(buffer *wgpu.Buffer, format wgpu.IndexFormat, offset, size uint64) {
	p.pass.SetIndexBuffer(buffer, format, offset, size)
}

func (p *wgpuRenderPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	p.pass.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}

func (p *wgpuRenderPass) End() {
	p.pass.End()
	p.pass.Release()
}
