package uniform

import (
	_ "embed"
	"math"

	"github.com/Carmen-Shannon/oxy-forward/common"
	"github.com/Carmen-Shannon/oxy-forward/engine/gpu"
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
)

// CameraUniformSource is the canonical WGSL definition of the CameraUniform struct.
// Matches Camera layout exactly (128 bytes).
//
//go:embed assets/camera_uniform.wgsl
var CameraUniformSource string

const (
	// CameraSize is the byte size of the camera uniform.
	CameraSize = 128
	// CameraViewOffset is the byte offset of the view matrix inside the camera uniform.
	CameraViewOffset = 0
	// CameraProjOffset is the byte offset of the projection matrix inside the camera uniform.
	CameraProjOffset = 64

	// CameraFovY is the vertical field of view of the default projection, in radians.
	CameraFovY = math.Pi / 4
	// CameraNear is the near plane distance of the default projection.
	CameraNear = 0.1
	// CameraFar is the far plane distance of the default projection.
	CameraFar = 100.0
)

// Camera is the GPU-aligned camera uniform: a view matrix followed by a projection matrix.
// Size: 128 bytes.
type Camera struct {
	View common.Mat4 // offset  0: world-to-view matrix (mat4x4<f32>)
	Proj common.Mat4 // offset 64: view-to-clip matrix (mat4x4<f32>)
}

// NewCamera returns a camera with an identity view and the default left-handed perspective
// projection (45 degree vertical field of view, near 0.1, far 100) for the given aspect ratio.
//
// Parameters:
//   - aspect: viewport aspect ratio (width/height)
//
// Returns:
//   - Camera: the camera uniform
func NewCamera(aspect float32) Camera {
	c := Camera{View: common.Identity4()}
	c.SetAspect(aspect)
	return c
}

// SetAspect recomputes the projection for a new aspect ratio.
//
// Parameters:
//   - aspect: viewport aspect ratio (width/height)
func (c *Camera) SetAspect(aspect float32) {
	common.PerspectiveLH(c.Proj[:], CameraFovY, aspect, CameraNear, CameraFar)
}

// Size returns the size of the camera uniform in bytes.
//
// Returns:
//   - uint64: the size in bytes (128)
func (c *Camera) Size() uint64 {
	return CameraSize
}

// Marshal serializes the camera into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the 128-byte serialized uniform
func (c *Camera) Marshal() []byte {
	buf := make([]byte, CameraSize)
	common.PutFloat32s(buf[CameraViewOffset:], c.View[:])
	common.PutFloat32s(buf[CameraProjOffset:], c.Proj[:])
	return buf
}

// ViewWrite returns the partial write that replaces only the view matrix of a camera bind group.
// The camera itself is not modified; assign View once the write has been applied.
//
// Parameters:
//   - provider: the camera bind group provider
//   - view: the new view matrix
//
// Returns:
//   - bind_group_provider.BufferWrite: the write covering bytes [0, 64)
func (c *Camera) ViewWrite(provider *bind_group_provider.BindGroupProvider, view common.Mat4) bind_group_provider.BufferWrite {
	return bind_group_provider.BufferWrite{Provider: provider, Binding: Binding, Offset: CameraViewOffset, Data: view.Bytes()}
}

// ProjWrite returns the partial write that replaces only the projection matrix of a camera bind group.
//
// Parameters:
//   - provider: the camera bind group provider
//
// Returns:
//   - bind_group_provider.BufferWrite: the write covering bytes [64, 128)
func (c *Camera) ProjWrite(provider *bind_group_provider.BindGroupProvider) bind_group_provider.BufferWrite {
	return bind_group_provider.BufferWrite{Provider: provider, Binding: Binding, Offset: CameraProjOffset, Data: c.Proj.Bytes()}
}

// LayoutDescriptor describes the camera bind group layout. The result is identical across calls.
//
// Returns:
//   - wgpu.BindGroupLayoutDescriptor: one vertex-visible uniform buffer at binding 0
func (c *Camera) LayoutDescriptor() wgpu.BindGroupLayoutDescriptor {
	return layoutDescriptor("Camera", CameraSize, wgpu.ShaderStageVertex)
}

// Layout creates the camera bind group layout.
//
// Parameters:
//   - ctx: the GPU context
//
// Returns:
//   - *wgpu.BindGroupLayout: the created layout
//   - error: an error if creation fails
func (c *Camera) Layout(ctx gpu.Context) (*wgpu.BindGroupLayout, error) {
	return createLayout(ctx, c.LayoutDescriptor())
}

// CreateBuffer allocates a uniform buffer initialized with the camera contents.
//
// Parameters:
//   - ctx: the GPU context
//
// Returns:
//   - *wgpu.Buffer: a 128-byte Uniform|CopyDst buffer
//   - error: an error if creation fails
func (c *Camera) CreateBuffer(ctx gpu.Context) (*wgpu.Buffer, error) {
	return createBuffer(ctx, "Camera", c.Marshal())
}

// CreateBindGroup allocates a buffer holding the camera contents and binds it under layout.
//
// Parameters:
//   - ctx: the GPU context
//   - layout: a layout created by Layout
//
// Returns:
//   - *bind_group_provider.BindGroupProvider: the owned buffer and bind group
//   - error: an error if creation fails
func (c *Camera) CreateBindGroup(ctx gpu.Context, layout *wgpu.BindGroupLayout) (*bind_group_provider.BindGroupProvider, error) {
	return createBindGroup(ctx, "Camera", layout, c.Marshal())
}
