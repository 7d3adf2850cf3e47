package uniform

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-forward/common"
	"github.com/Carmen-Shannon/oxy-forward/engine/gpu"
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
)

// TransformUniformSource is the canonical WGSL definition of the TransformUniform struct.
// Matches Transform layout exactly (64 bytes).
//
//go:embed assets/transform_uniform.wgsl
var TransformUniformSource string

// TransformSize is the byte size of the transform uniform.
const TransformSize = 64

// Transform is the GPU-aligned per-object model matrix.
// Size: 64 bytes.
type Transform struct {
	Model common.Mat4 // offset 0: object-to-world matrix (mat4x4<f32>)
}

// Size returns the size of the transform uniform in bytes.
func (t *Transform) Size() uint64 {
	return TransformSize
}

// Marshal serializes the transform into a byte buffer suitable for GPU upload.
func (t *Transform) Marshal() []byte {
	return t.Model.Bytes()
}

// LayoutDescriptor describes the transform bind group layout: one vertex-visible uniform buffer at binding 0.
func (t *Transform) LayoutDescriptor() wgpu.BindGroupLayoutDescriptor {
	return layoutDescriptor("Transform", TransformSize, wgpu.ShaderStageVertex)
}

// Layout creates the transform bind group layout.
func (t *Transform) Layout(ctx gpu.Context) (*wgpu.BindGroupLayout, error) {
	return createLayout(ctx, t.LayoutDescriptor())
}

// CreateBuffer allocates a uniform buffer initialized with the model matrix.
func (t *Transform) CreateBuffer(ctx gpu.Context) (*wgpu.Buffer, error) {
	return createBuffer(ctx, "Transform", t.Marshal())
}

// CreateBindGroup allocates a buffer holding the model matrix and binds it under layout.
func (t *Transform) CreateBindGroup(ctx gpu.Context, layout *wgpu.BindGroupLayout) (*bind_group_provider.BindGroupProvider, error) {
	return createBindGroup(ctx, "Transform", layout, t.Marshal())
}
