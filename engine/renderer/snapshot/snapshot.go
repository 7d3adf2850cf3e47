// Package snapshot holds the GPU-ready copy of a scene: every buffer and bind group a forward
// pass needs to draw it. A Snapshot owns its resources and is released as a unit.
package snapshot

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-forward/common"
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer/mesh"
)

var (
	// ErrNilSnapshot is returned when a nil snapshot is drawn.
	ErrNilSnapshot = errors.New("snapshot: nil snapshot")
	// ErrReleasedSnapshot is returned when a released snapshot is drawn.
	ErrReleasedSnapshot = errors.New("snapshot: snapshot has been released")
	// ErrMaterialCountMismatch is returned when an object's material count differs from its mesh count.
	ErrMaterialCountMismatch = errors.New("snapshot: material count does not match mesh count")
)

// Object is the GPU-side copy of one scene object. Materials[i] is bound for Meshes[i].
type Object struct {
	Meshes    []*mesh.Buffers
	Materials []*bind_group_provider.BindGroupProvider
	Transform *bind_group_provider.BindGroupProvider
}

// Release releases every resource owned by the object.
func (o *Object) Release() {
	for _, m := range o.Meshes {
		if m != nil {
			m.Release()
		}
	}
	for _, m := range o.Materials {
		if m != nil {
			m.Release()
		}
	}
	if o.Transform != nil {
		o.Transform.Release()
	}
}

// Snapshot is an immutable GPU-resource-backed copy of a scene, drawn in Objects order.
type Snapshot struct {
	Objects []Object
	// View is the world-to-view matrix written into the camera uniform when the snapshot is rendered.
	View common.Mat4

	released bool
}

// Validate checks that s can be drawn.
//
// Returns:
//   - error: ErrNilSnapshot, ErrReleasedSnapshot, or ErrMaterialCountMismatch naming the object
func (s *Snapshot) Validate() error {
	if s == nil {
		return ErrNilSnapshot
	}
	if s.released {
		return ErrReleasedSnapshot
	}
	for i, obj := range s.Objects {
		if len(obj.Materials) != len(obj.Meshes) {
			return fmt.Errorf("object %d has %d materials for %d meshes: %w", i, len(obj.Materials), len(obj.Meshes), ErrMaterialCountMismatch)
		}
		if obj.Transform == nil {
			return fmt.Errorf("object %d has no transform", i)
		}
	}
	return nil
}

// MeshCount returns the total number of meshes, and therefore draw calls, in the snapshot.
func (s *Snapshot) MeshCount() int {
	n := 0
	for _, obj := range s.Objects {
		n += len(obj.Meshes)
	}
	return n
}

// Released reports whether Release has been called.
func (s *Snapshot) Released() bool {
	return s.released
}

// Release releases every resource owned by the snapshot. Calling it again is a no-op.
// The snapshot must not be referenced by commands that have not yet been submitted.
func (s *Snapshot) Release() {
	if s.released {
		return
	}
	for i := range s.Objects {
		s.Objects[i].Release()
	}
	s.released = true
}
