// Package scene holds the CPU-side description of what to draw: objects made of meshes, their
// materials and model transforms, and the view matrix. A Scene is plain data; the renderer turns
// it into GPU resources with CreateScene.
package scene

import (
	"github.com/Carmen-Shannon/oxy-forward/common"
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer/mesh"
)

// Material is the surface description of one mesh.
type Material struct {
	Albedo common.Color
}

// Object is a group of meshes sharing one model transform. Materials[i], when present and
// non-nil, is the material of Meshes[i]; missing entries fall back to the renderer's default albedo.
type Object struct {
	Meshes    []mesh.Mesh
	Materials []*Material
	Transform common.Mat4
}

// NewObject returns an object with an identity transform.
//
// Parameters:
//   - meshes: the object's meshes
//
// Returns:
//   - Object: the object
func NewObject(meshes ...mesh.Mesh) Object {
	return Object{Meshes: meshes, Transform: common.Identity4()}
}

// WithMaterials returns a copy of o with the given per-mesh materials.
func (o Object) WithMaterials(materials ...*Material) Object {
	o.Materials = materials
	return o
}

// WithTransform returns a copy of o positioned by the given position, Euler rotation in radians, and scale.
func (o Object) WithTransform(pos, rot, scale common.Vec3) Object {
	common.BuildModelMatrix(o.Transform[:], pos, rot, scale)
	return o
}

// Scene is an ordered list of objects seen through one view matrix. Objects are drawn in order.
type Scene struct {
	Objects []Object
	View    common.Mat4
}

// NewScene creates a scene with an identity view.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - *Scene: the scene
func NewScene(options ...SceneBuilderOption) *Scene {
	s := &Scene{View: common.Identity4()}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Add appends obj to the scene.
//
// Returns:
//   - int: the object's index, which is also its draw order
func (s *Scene) Add(obj Object) int {
	s.Objects = append(s.Objects, obj)
	return len(s.Objects) - 1
}

// MeshCount returns the total number of meshes across all objects.
func (s *Scene) MeshCount() int {
	n := 0
	for _, obj := range s.Objects {
		n += len(obj.Meshes)
	}
	return n
}
