package mesh

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-forward/engine/gpu/gputest"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	m := Triangle()
	enc, err := m.Encode()
	require.NoError(t, err)

	assert.Len(t, enc.Vertices, 3*VertexSize)
	assert.Len(t, enc.Indices, 3*4)
	assert.Equal(t, uint32(3), enc.IndexCount)

	// second vertex, position.x
	assert.Equal(t, float32(0.5), math.Float32frombits(binary.LittleEndian.Uint32(enc.Vertices[VertexSize:])))
	// first vertex, normal.z
	assert.Equal(t, float32(-1), math.Float32frombits(binary.LittleEndian.Uint32(enc.Vertices[20:])))
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(enc.Indices[8:]))
}

func TestEncodeRejectsInvalidMeshes(t *testing.T) {
	_, err := Mesh{}.Encode()
	assert.ErrorIs(t, err, ErrEmptyMesh)

	_, err = Mesh{Vertices: Triangle().Vertices}.Encode()
	assert.ErrorIs(t, err, ErrEmptyMesh)

	_, err = Mesh{Vertices: Triangle().Vertices, Indices: []uint32{0, 1, 3}}.Encode()
	assert.Error(t, err)
}

func TestCreateBuffers(t *testing.T) {
	ctx := gputest.NewContext()
	m := Cube()

	b, err := m.CreateBuffers(ctx, "cube")
	require.NoError(t, err)
	assert.Equal(t, uint32(36), b.IndexCount)

	vcr, ok := ctx.CreationOf(b.VertexBuffer)
	require.True(t, ok)
	vdesc := vcr.Desc.(wgpu.BufferInitDescriptor)
	assert.Equal(t, wgpu.BufferUsageVertex|wgpu.BufferUsageCopyDst, vdesc.Usage)
	assert.Len(t, vdesc.Contents, 24*VertexSize)

	icr, ok := ctx.CreationOf(b.IndexBuffer)
	require.True(t, ok)
	idesc := icr.Desc.(wgpu.BufferInitDescriptor)
	assert.Equal(t, wgpu.BufferUsageIndex|wgpu.BufferUsageCopyDst, idesc.Usage)
	assert.Len(t, idesc.Contents, 36*4)

	b.Release()
	b.Release()
	assert.Zero(t, ctx.Live())
}

func TestCreateBuffersIndexFailureReleasesVertexBuffer(t *testing.T) {
	ctx := gputest.NewContext()
	ctx.FailOn(gputest.OpCreateBufferInit, 2)

	b, err := Quad().CreateBuffers(ctx, "quad")
	assert.ErrorIs(t, err, gputest.ErrInjected)
	assert.Nil(t, b)
	assert.Zero(t, ctx.Live())
}

func TestVertexBufferLayout(t *testing.T) {
	l := VertexBufferLayout()
	assert.Equal(t, uint64(VertexSize), l.ArrayStride)
	require.Len(t, l.Attributes, 2)
	assert.Equal(t, uint32(0), l.Attributes[0].ShaderLocation)
	assert.Equal(t, uint32(1), l.Attributes[1].ShaderLocation)
	assert.Equal(t, uint64(12), l.Attributes[1].Offset)
}

func TestPrimitives(t *testing.T) {
	for _, name := range []string{"triangle", "quad", "cube"} {
		m, ok := ByName(name)
		require.True(t, ok, name)
		_, err := m.Encode()
		assert.NoError(t, err, name)
	}
	_, ok := ByName("teapot")
	assert.False(t, ok)
}
