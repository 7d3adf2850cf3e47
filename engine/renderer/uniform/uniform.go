// Package uniform defines the GPU uniform layouts the forward pass binds: the camera, the
// per-object transform and the per-mesh material. Each knows its byte layout, its bind group
// layout, and how to allocate a buffer and bind group for its current contents.
package uniform

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-forward/engine/gpu"
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
)

// Binding is the binding index of the uniform buffer inside every uniform bind group.
const Binding = 0

// layoutDescriptor describes a bind group layout with a single uniform buffer at Binding.
func layoutDescriptor(label string, size uint64, visibility wgpu.ShaderStage) wgpu.BindGroupLayoutDescriptor {
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    Binding,
		Visibility: visibility,
	}
	entry.Buffer.Type = wgpu.BufferBindingTypeUniform
	entry.Buffer.MinBindingSize = size

	return wgpu.BindGroupLayoutDescriptor{
		Label:   label + " Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{entry},
	}
}

func createLayout(ctx gpu.Context, desc wgpu.BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error) {
	layout, err := ctx.CreateBindGroupLayout(&desc)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", desc.Label, err)
	}
	return layout, nil
}

func createBuffer(ctx gpu.Context, label string, contents []byte) (*wgpu.Buffer, error) {
	buf, err := ctx.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label + " Uniform Buffer",
		Contents: contents,
		Usage:    wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s uniform buffer: %w", label, err)
	}
	return buf, nil
}

// createBindGroup allocates a buffer holding contents and binds it at Binding under layout.
// On failure nothing allocated here is left alive.
func createBindGroup(ctx gpu.Context, label string, layout *wgpu.BindGroupLayout, contents []byte) (*bind_group_provider.BindGroupProvider, error) {
	buf, err := createBuffer(ctx, label, contents)
	if err != nil {
		return nil, err
	}

	bg, err := ctx.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  label + " Bind Group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{
				Binding: Binding,
				Buffer:  buf,
				Offset:  0,
				Size:    wgpu.WholeSize,
			},
		},
	})
	if err != nil {
		ctx.Release(buf)
		return nil, fmt.Errorf("failed to create %s bind group: %w", label, err)
	}

	return bind_group_provider.NewBindGroupProvider(label, ctx,
		bind_group_provider.WithBindGroup(bg),
		bind_group_provider.WithBuffer(Binding, buf),
	), nil
}
