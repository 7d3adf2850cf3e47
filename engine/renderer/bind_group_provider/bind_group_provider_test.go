package bind_group_provider

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-forward/engine/gpu/gputest"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProvider(t *testing.T, ctx *gputest.Context) (*BindGroupProvider, *wgpu.Buffer, *wgpu.BindGroup) {
	t.Helper()
	buf, err := ctx.CreateBufferInit(&wgpu.BufferInitDescriptor{Label: "buf", Contents: make([]byte, 16)})
	require.NoError(t, err)
	bg, err := ctx.CreateBindGroup(&wgpu.BindGroupDescriptor{Label: "bg"})
	require.NoError(t, err)
	return NewBindGroupProvider("test", ctx, WithBindGroup(bg), WithBuffer(0, buf)), buf, bg
}

func TestReleaseIsIdempotent(t *testing.T) {
	ctx := gputest.NewContext()
	p, buf, bg := newProvider(t, ctx)

	assert.Equal(t, "test", p.Label())
	assert.Same(t, bg, p.BindGroup())
	assert.Same(t, buf, p.Buffer(0))
	assert.Nil(t, p.Buffer(1))

	p.Release()
	p.Release()

	assert.Equal(t, 1, ctx.Released(buf))
	assert.Equal(t, 1, ctx.Released(bg))
	assert.Nil(t, p.BindGroup())
	assert.Empty(t, p.Buffers())
	assert.Zero(t, ctx.Live())
}

func TestBufferWriteApply(t *testing.T) {
	ctx := gputest.NewContext()
	p, buf, _ := newProvider(t, ctx)

	err := BufferWrite{Provider: p, Binding: 0, Offset: 4, Data: []byte{1, 2, 3, 4}}.Apply(ctx.Queue())
	require.NoError(t, err)

	writes := ctx.FakeQueue().Writes()
	require.Len(t, writes, 1)
	assert.Same(t, buf, writes[0].Buffer)
	assert.Equal(t, uint64(4), writes[0].Offset)
	assert.Equal(t, []byte{1, 2, 3, 4}, writes[0].Data)
}

func TestBufferWriteMissingBinding(t *testing.T) {
	ctx := gputest.NewContext()
	p, _, _ := newProvider(t, ctx)

	err := BufferWrite{Provider: p, Binding: 3, Data: []byte{1}}.Apply(ctx.Queue())
	assert.Error(t, err)
	assert.Empty(t, ctx.FakeQueue().Writes())
}

func TestBufferWriteQueueError(t *testing.T) {
	ctx := gputest.NewContext()
	p, _, _ := newProvider(t, ctx)
	ctx.FakeQueue().FailWrites(gputest.ErrInjected)

	err := BufferWrite{Provider: p, Binding: 0, Data: []byte{1}}.Apply(ctx.Queue())
	assert.ErrorIs(t, err, gputest.ErrInjected)
}
