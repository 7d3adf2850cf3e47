// Package gputest provides a recording implementation of the gpu interfaces for tests that run
// without a GPU adapter. Handles it returns are distinct placeholder values and must never be
// passed to real wgpu calls.
package gputest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-forward/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrInjected is returned by a Context operation armed with FailOn.
var ErrInjected = errors.New("gputest: injected failure")

// Operation names recorded by Context and RenderPass.
const (
	OpCreateBindGroupLayout = "CreateBindGroupLayout"
	OpCreateBufferInit      = "CreateBufferInit"
	OpCreateBindGroup       = "CreateBindGroup"
	OpCreateShaderModule    = "CreateShaderModule"
	OpCreateTexture         = "CreateTexture"
	OpCreatePipelineLayout  = "CreatePipelineLayout"
	OpCreateRenderPipeline  = "CreateRenderPipeline"

	OpSetPipeline     = "SetPipeline"
	OpSetBindGroup    = "SetBindGroup"
	OpSetVertexBuffer = "SetVertexBuffer"
	OpSetIndexBuffer  = "SetIndexBuffer"
	OpDrawIndexed     = "DrawIndexed"
	OpEnd             = "End"
)

// Creation is a single recorded allocation.
type Creation struct {
	Op     string
	Label  string
	Handle any
	// Desc is a copy of the descriptor passed to the operation.
	Desc any
}

// Context is a recording gpu.Context.
type Context struct {
	mu sync.Mutex

	creations []Creation
	released  map[any]int
	live      map[any]struct{}
	counts    map[string]int
	failOn    map[string]int
	seq       int

	queue *Queue
}

var _ gpu.Context = &Context{}

// NewContext creates an empty recording context.
//
// Returns:
//   - *Context: the context
func NewContext() *Context {
	c := &Context{
		released: make(map[any]int),
		live:     make(map[any]struct{}),
		counts:   make(map[string]int),
		failOn:   make(map[string]int),
	}
	c.queue = &Queue{ctx: c}
	return c
}

// FailOn arms the nth (1-based, counted from now) call of op to fail with ErrInjected.
//
// Parameters:
//   - op: the operation name, one of the Op* constants
//   - n: which upcoming call fails
func (c *Context) FailOn(op string, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failOn[op] = c.counts[op] + n
}

func (c *Context) nextSeq() int {
	c.seq++
	return c.seq
}

func (c *Context) record(op, label string, handle, desc any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.counts[op]++
	if n, ok := c.failOn[op]; ok && n == c.counts[op] {
		delete(c.failOn, op)
		return fmt.Errorf("%s %q: %w", op, label, ErrInjected)
	}
	c.creations = append(c.creations, Creation{Op: op, Label: label, Handle: handle, Desc: desc})
	c.live[handle] = struct{}{}
	return nil
}

func (c *Context) CreateBindGroupLayout(desc *wgpu.BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error) {
	h := &wgpu.BindGroupLayout{}
	d := *desc
	d.Entries = append([]wgpu.BindGroupLayoutEntry(nil), desc.Entries...)
	if err := c.record(OpCreateBindGroupLayout, desc.Label, h, d); err != nil {
		return nil, err
	}
	return h, nil
}

func (c *Context) CreateBufferInit(desc *wgpu.BufferInitDescriptor) (*wgpu.Buffer, error) {
	h := &wgpu.Buffer{}
	d := *desc
	d.Contents = append([]byte(nil), desc.Contents...)
	if err := c.record(OpCreateBufferInit, desc.Label, h, d); err != nil {
		return nil, err
	}
	return h, nil
}

func (c *Context) CreateBindGroup(desc *wgpu.BindGroupDescriptor) (*wgpu.BindGroup, error) {
	h := &wgpu.BindGroup{}
	d := *desc
	d.Entries = append([]wgpu.BindGroupEntry(nil), desc.Entries...)
	if err := c.record(OpCreateBindGroup, desc.Label, h, d); err != nil {
		return nil, err
	}
	return h, nil
}

func (c *Context) CreateShaderModule(desc *wgpu.ShaderModuleDescriptor) (*wgpu.ShaderModule, error) {
	h := &wgpu.ShaderModule{}
	if err := c.record(OpCreateShaderModule, desc.Label, h, *desc); err != nil {
		return nil, err
	}
	return h, nil
}

func (c *Context) CreateTexture(desc *wgpu.TextureDescriptor) (*wgpu.Texture, *wgpu.TextureView, error) {
	tex := &wgpu.Texture{}
	view := &wgpu.TextureView{}
	if err := c.record(OpCreateTexture, desc.Label, tex, *desc); err != nil {
		return nil, nil, err
	}
	c.mu.Lock()
	c.live[view] = struct{}{}
	c.mu.Unlock()
	return tex, view, nil
}

func (c *Context) CreatePipelineLayout(desc *wgpu.PipelineLayoutDescriptor) (*wgpu.PipelineLayout, error) {
	h := &wgpu.PipelineLayout{}
	d := *desc
	d.BindGroupLayouts = append([]*wgpu.BindGroupLayout(nil), desc.BindGroupLayouts...)
	if err := c.record(OpCreatePipelineLayout, desc.Label, h, d); err != nil {
		return nil, err
	}
	return h, nil
}

func (c *Context) CreateRenderPipeline(desc *wgpu.RenderPipelineDescriptor) (*wgpu.RenderPipeline, error) {
	h := &wgpu.RenderPipeline{}
	if err := c.record(OpCreateRenderPipeline, desc.Label, h, *desc); err != nil {
		return nil, err
	}
	return h, nil
}

func (c *Context) Queue() gpu.Queue {
	return c.queue
}

// FakeQueue returns the recording queue.
//
// Returns:
//   - *Queue: the queue shared by this context
func (c *Context) FakeQueue() *Queue {
	return c.queue
}

func (c *Context) Release(objects ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, o := range objects {
		if o == nil || isNilHandle(o) {
			continue
		}
		c.released[o]++
		delete(c.live, o)
	}
}

func isNilHandle(o any) bool {
	switch h := o.(type) {
	case *wgpu.Buffer:
		return h == nil
	case *wgpu.BindGroup:
		return h == nil
	case *wgpu.BindGroupLayout:
		return h == nil
	case *wgpu.Texture:
		return h == nil
	case *wgpu.TextureView:
		return h == nil
	case *wgpu.ShaderModule:
		return h == nil
	case *wgpu.PipelineLayout:
		return h == nil
	case *wgpu.RenderPipeline:
		return h == nil
	}
	return false
}

// Creations returns every successful allocation in order.
//
// Returns:
//   - []Creation: a copy of the recorded allocations
func (c *Context) Creations() []Creation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Creation(nil), c.creations...)
}

// CreationsOf returns the successful allocations of a single operation in order.
//
// Parameters:
//   - op: the operation name
//
// Returns:
//   - []Creation: the matching allocations
func (c *Context) CreationsOf(op string) []Creation {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Creation
	for _, cr := range c.creations {
		if cr.Op == op {
			out = append(out, cr)
		}
	}
	return out
}

// CreationOf returns the recorded allocation that produced handle.
//
// Parameters:
//   - handle: a handle returned by this context
//
// Returns:
//   - Creation: the allocation record
//   - bool: false if the handle was not created by this context
func (c *Context) CreationOf(handle any) (Creation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, cr := range c.creations {
		if cr.Handle == handle {
			return cr, true
		}
	}
	return Creation{}, false
}

// Count returns how many successful allocations of op were recorded.
//
// Parameters:
//   - op: the operation name
//
// Returns:
//   - int: the number of allocations
func (c *Context) Count(op string) int {
	return len(c.CreationsOf(op))
}

// Released reports how many times handle was released.
//
// Parameters:
//   - handle: a handle returned by this context
//
// Returns:
//   - int: the release count
func (c *Context) Released(handle any) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.released[handle]
}

// Live returns the number of handles created and not yet released.
//
// Returns:
//   - int: the live handle count
func (c *Context) Live() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.live)
}

// NewEncoder creates a recording encoder sharing this context's event sequence.
//
// Returns:
//   - *Encoder: the encoder
func (c *Context) NewEncoder() *Encoder {
	return &Encoder{ctx: c}
}

// Write is a single recorded queue write.
type Write struct {
	Seq    int
	Buffer *wgpu.Buffer
	Offset uint64
	Data   []byte
}

// Queue is a recording gpu.Queue.
type Queue struct {
	ctx    *Context
	writes []Write
	err    error
}

var _ gpu.Queue = &Queue{}

func (q *Queue) WriteBuffer(buffer *wgpu.Buffer, offset uint64, data []byte) error {
	q.ctx.mu.Lock()
	defer q.ctx.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.writes = append(q.writes, Write{
		Seq:    q.ctx.nextSeq(),
		Buffer: buffer,
		Offset: offset,
		Data:   append([]byte(nil), data...),
	})
	return nil
}

// FailWrites makes every subsequent WriteBuffer call return err. A nil err clears the failure.
//
// Parameters:
//   - err: the error to return
func (q *Queue) FailWrites(err error) {
	q.ctx.mu.Lock()
	defer q.ctx.mu.Unlock()
	q.err = err
}

// Writes returns the recorded writes in order.
//
// Returns:
//   - []Write: a copy of the recorded writes
func (q *Queue) Writes() []Write {
	q.ctx.mu.Lock()
	defer q.ctx.mu.Unlock()
	return append([]Write(nil), q.writes...)
}

// Command is a single recorded render pass command. Fields irrelevant to Op are zero.
type Command struct {
	Op            string
	Pipeline      *wgpu.RenderPipeline
	Group         uint32
	BindGroup     *wgpu.BindGroup
	Slot          uint32
	Buffer        *wgpu.Buffer
	Offset        uint64
	Size          uint64
	IndexFormat   wgpu.IndexFormat
	IndexCount    uint32
	InstanceCount uint32
	FirstIndex    uint32
	BaseVertex    int32
	FirstInstance uint32
}

// Encoder is a recording gpu.Encoder.
type Encoder struct {
	ctx    *Context
	passes []*RenderPass
}

var _ gpu.Encoder = &Encoder{}

func (e *Encoder) BeginRenderPass(desc *wgpu.RenderPassDescriptor) gpu.RenderPass {
	e.ctx.mu.Lock()
	seq := e.ctx.nextSeq()
	e.ctx.mu.Unlock()

	d := *desc
	d.ColorAttachments = append([]wgpu.RenderPassColorAttachment(nil), desc.ColorAttachments...)
	if desc.DepthStencilAttachment != nil {
		ds := *desc.DepthStencilAttachment
		d.DepthStencilAttachment = &ds
	}
	p := &RenderPass{Seq: seq, Desc: d}
	e.passes = append(e.passes, p)
	return p
}

// Passes returns the render passes opened on this encoder in order.
//
// Returns:
//   - []*RenderPass: the recorded passes
func (e *Encoder) Passes() []*RenderPass {
	return e.passes
}

// RenderPass is a recording gpu.RenderPass.
type RenderPass struct {
	// Seq orders the pass against queue writes of the same context.
	Seq int
	// Desc is a copy of the descriptor the pass was opened with.
	Desc     wgpu.RenderPassDescriptor
	Commands []Command
	Ended    bool
}

var _ gpu.RenderPass = &RenderPass{}

func (p *RenderPass) SetPipeline(pipeline *wgpu.RenderPipeline) {
	p.Commands = append(p.Commands, Command{Op: OpSetPipeline, Pipeline: pipeline})
}

func (p *RenderPass) SetBindGroup(groupIndex uint32, group *wgpu.BindGroup, dynamicOffsets []uint32) {
	p.Commands = append(p.Commands, Command{Op: OpSetBindGroup, Group: groupIndex, BindGroup: group})
}

func (p *RenderPass) SetVertexBuffer(slot uint32, buffer *wgpu.Buffer, offset, size uint64) {
	p.Commands = append(p.Commands, Command{Op: OpSetVertexBuffer, Slot: slot, Buffer: buffer, Offset: offset, Size: size})
}

func (p *RenderPass) SetIndexBuffer(buffer *wgpu.Buffer, format wgpu.IndexFormat, offset, size uint64) {
	p.Commands = append(p.Commands, Command{Op: OpSetIndexBuffer, Buffer: buffer, IndexFormat: format, Offset: offset, Size: size})
}

func (p *RenderPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	p.Commands = append(p.Commands, Command{
		Op:            OpDrawIndexed,
		IndexCount:    indexCount,
		InstanceCount: instanceCount,
		FirstIndex:    firstIndex,
		BaseVertex:    baseVertex,
		FirstInstance: firstInstance,
	})
}

func (p *RenderPass) End() {
	p.Commands = append(p.Commands, Command{Op: OpEnd})
	p.Ended = true
}

// Ops returns the operation names of the recorded commands in order.
//
// Returns:
//   - []string: the command operations
func (p *RenderPass) Ops() []string {
	ops := make([]string, len(p.Commands))
	for i, cmd := range p.Commands {
		ops[i] = cmd.Op
	}
	return ops
}

// Draws returns only the DrawIndexed commands in order.
//
// Returns:
//   - []Command: the draw commands
func (p *RenderPass) Draws() []Command {
	var out []Command
	for _, cmd := range p.Commands {
		if cmd.Op == OpDrawIndexed {
			out = append(out, cmd)
		}
	}
	return out
}
