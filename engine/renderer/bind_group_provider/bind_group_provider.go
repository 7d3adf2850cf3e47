package bind_group_provider

import (
	"github.com/Carmen-Shannon/oxy-forward/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// BindGroupProvider owns a GPU bind group together with the buffers it binds.
// Uniform descriptors hand one out per bound buffer; the owner releases both through Release.
//
// Usage pattern:
//  1. A uniform descriptor allocates its buffer and creates a bind group under a shared layout
//  2. The descriptor wraps both in a BindGroupProvider
//  3. Draw code binds BindGroup(); update code writes through Buffer(binding)
//  4. The owner calls Release once the provider is no longer referenced by recorded commands
type BindGroupProvider struct {
	// label is a debug label added for convenience.
	label string
	// releaser releases the GPU handles below; usually the gpu.Context that created them.
	releaser gpu.Releaser

	// bindGroup is the GPU bind group created for this provider.
	bindGroup *wgpu.BindGroup
	// buffers holds the GPU buffers bound by bindGroup, keyed by binding index.
	buffers map[int]*wgpu.Buffer
}

// NewBindGroupProvider creates a new BindGroupProvider with the provided options.
//
// Parameters:
//   - label: debug label for the provider
//   - releaser: releases the owned handles on Release
//   - options: a variadic list of options to configure the provider
//
// Returns:
//   - *BindGroupProvider: a new instance configured with the provided options
func NewBindGroupProvider(label string, releaser gpu.Releaser, options ...BindGroupProviderOption) *BindGroupProvider {
	p := &BindGroupProvider{
		label:    label,
		releaser: releaser,
		buffers:  make(map[int]*wgpu.Buffer),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Label returns the debug label for this provider.
func (p *BindGroupProvider) Label() string {
	return p.label
}

// BindGroup returns the bind group, or nil once released.
func (p *BindGroupProvider) BindGroup() *wgpu.BindGroup {
	return p.bindGroup
}

// Buffer returns the buffer bound at binding, or nil if none is.
func (p *BindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	return p.buffers[binding]
}

// Buffers returns all buffers owned by this provider, keyed by binding index.
func (p *BindGroupProvider) Buffers() map[int]*wgpu.Buffer {
	return p.buffers
}

// Release releases the bind group and every owned buffer. Calling it again is a no-op.
func (p *BindGroupProvider) Release() {
	if p.releaser == nil {
		return
	}
	if p.bindGroup != nil {
		p.releaser.Release(p.bindGroup)
		p.bindGroup = nil
	}
	for i, buf := range p.buffers {
		if buf != nil {
			p.releaser.Release(buf)
		}
		delete(p.buffers, i)
	}
}
