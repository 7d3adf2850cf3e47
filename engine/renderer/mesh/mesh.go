// Package mesh converts CPU-side indexed triangle meshes into GPU vertex and index buffers.
package mesh

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-forward/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrEmptyMesh is returned when a mesh without vertices or indices is uploaded.
var ErrEmptyMesh = errors.New("mesh: mesh has no vertices or no indices")

// IndexFormat is the index format of every mesh uploaded by this package.
const IndexFormat = wgpu.IndexFormatUint32

// VertexSize is the byte stride of one Vertex.
const VertexSize = 24

// Vertex is a single mesh vertex. Matches the forward shader's vertex input:
// position at location 0, normal at location 1.
type Vertex struct {
	Position [3]float32 // offset  0: object-space position (vec3<f32>)
	Normal   [3]float32 // offset 12: object-space normal (vec3<f32>)
}

// VertexBufferLayout describes Vertex for pipeline creation.
//
// Returns:
//   - wgpu.VertexBufferLayout: the per-vertex layout with stride VertexSize
func VertexBufferLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: VertexSize,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{
				Format:         wgpu.VertexFormatFloat32x3,
				Offset:         0,
				ShaderLocation: 0,
			},
			{
				Format:         wgpu.VertexFormatFloat32x3,
				Offset:         12,
				ShaderLocation: 1,
			},
		},
	}
}

// Mesh is an indexed triangle list.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

// Encoded is a mesh serialized into GPU-ready little-endian bytes.
type Encoded struct {
	Vertices   []byte
	Indices    []byte
	IndexCount uint32
}

// Encode validates the mesh and serializes its vertex and index data.
//
// Returns:
//   - Encoded: the serialized mesh
//   - error: ErrEmptyMesh if the mesh has no vertices or no indices, or an error naming an out-of-range index
func (m Mesh) Encode() (Encoded, error) {
	if len(m.Vertices) == 0 || len(m.Indices) == 0 {
		return Encoded{}, ErrEmptyMesh
	}

	vertices := make([]byte, len(m.Vertices)*VertexSize)
	for i, v := range m.Vertices {
		off := i * VertexSize
		for j := range 3 {
			binary.LittleEndian.PutUint32(vertices[off+j*4:], math.Float32bits(v.Position[j]))
			binary.LittleEndian.PutUint32(vertices[off+12+j*4:], math.Float32bits(v.Normal[j]))
		}
	}

	indices := make([]byte, len(m.Indices)*4)
	for i, idx := range m.Indices {
		if int(idx) >= len(m.Vertices) {
			return Encoded{}, fmt.Errorf("mesh: index %d at position %d out of range for %d vertices", idx, i, len(m.Vertices))
		}
		binary.LittleEndian.PutUint32(indices[i*4:], idx)
	}

	return Encoded{Vertices: vertices, Indices: indices, IndexCount: uint32(len(m.Indices))}, nil
}

// CreateBuffers encodes the mesh and uploads it.
//
// Parameters:
//   - ctx: the GPU context
//   - label: debug label prefix for the buffers
//
// Returns:
//   - *Buffers: the uploaded buffers
//   - error: an encoding or allocation error
func (m Mesh) CreateBuffers(ctx gpu.Context, label string) (*Buffers, error) {
	enc, err := m.Encode()
	if err != nil {
		return nil, err
	}
	return enc.CreateBuffers(ctx, label)
}

// CreateBuffers uploads the encoded data into a Vertex|CopyDst buffer and an Index|CopyDst
// buffer, each sized exactly to its data.
//
// Parameters:
//   - ctx: the GPU context
//   - label: debug label prefix for the buffers
//
// Returns:
//   - *Buffers: the uploaded buffers
//   - error: an allocation error; nothing is leaked on failure
func (e Encoded) CreateBuffers(ctx gpu.Context, label string) (*Buffers, error) {
	if len(e.Vertices) == 0 || len(e.Indices) == 0 {
		return nil, ErrEmptyMesh
	}

	vbuf, err := ctx.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label + " Vertex Buffer",
		Contents: e.Vertices,
		Usage:    wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s vertex buffer: %w", label, err)
	}

	ibuf, err := ctx.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label + " Index Buffer",
		Contents: e.Indices,
		Usage:    wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		ctx.Release(vbuf)
		return nil, fmt.Errorf("failed to create %s index buffer: %w", label, err)
	}

	return &Buffers{
		VertexBuffer: vbuf,
		IndexBuffer:  ibuf,
		IndexCount:   e.IndexCount,
		releaser:     ctx,
	}, nil
}

// Buffers holds the GPU buffers of one uploaded mesh.
type Buffers struct {
	VertexBuffer *wgpu.Buffer
	IndexBuffer  *wgpu.Buffer
	IndexCount   uint32

	releaser gpu.Releaser
}

// Release releases both buffers. Calling it again is a no-op.
func (b *Buffers) Release() {
	if b.releaser == nil {
		return
	}
	b.releaser.Release(b.VertexBuffer, b.IndexBuffer)
	b.VertexBuffer = nil
	b.IndexBuffer = nil
	b.releaser = nil
}
