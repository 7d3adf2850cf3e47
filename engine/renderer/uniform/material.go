package uniform

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-forward/common"
	"github.com/Carmen-Shannon/oxy-forward/engine/gpu"
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
)

// MaterialUniformSource is the canonical WGSL definition of the MaterialUniform struct.
// Matches Material layout exactly (16 bytes).
//
//go:embed assets/material_uniform.wgsl
var MaterialUniformSource string

// MaterialSize is the byte size of the material uniform.
const MaterialSize = 16

// DefaultAlbedo is the color used for meshes without a material.
var DefaultAlbedo = common.Color{0.8, 0.8, 0.8, 1}

// Material is the GPU-aligned per-mesh flat color.
// Size: 16 bytes (one vec4<f32>).
type Material struct {
	Albedo common.Color // offset 0: RGBA surface color
}

// Size returns the size of the material uniform in bytes.
func (m *Material) Size() uint64 {
	return MaterialSize
}

// Marshal serializes the material into a byte buffer suitable for GPU upload.
func (m *Material) Marshal() []byte {
	return m.Albedo.Bytes()
}

// LayoutDescriptor describes the material bind group layout: one fragment-visible uniform buffer at binding 0.
func (m *Material) LayoutDescriptor() wgpu.BindGroupLayoutDescriptor {
	return layoutDescriptor("Material", MaterialSize, wgpu.ShaderStageFragment)
}

// Layout creates the material bind group layout.
func (m *Material) Layout(ctx gpu.Context) (*wgpu.BindGroupLayout, error) {
	return createLayout(ctx, m.LayoutDescriptor())
}

// CreateBuffer allocates a uniform buffer initialized with the albedo.
func (m *Material) CreateBuffer(ctx gpu.Context) (*wgpu.Buffer, error) {
	return createBuffer(ctx, "Material", m.Marshal())
}

// CreateBindGroup allocates a buffer holding the albedo and binds it under layout.
func (m *Material) CreateBindGroup(ctx gpu.Context, layout *wgpu.BindGroupLayout) (*bind_group_provider.BindGroupProvider, error) {
	return createBindGroup(ctx, "Material", layout, m.Marshal())
}
