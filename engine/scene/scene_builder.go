package scene

import (
	"github.com/Carmen-Shannon/oxy-forward/common"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *Scene)

// WithObjects adds initial objects to the scene, in draw order.
//
// Parameters:
//   - objects: the objects to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithObjects(objects ...Object) SceneBuilderOption {
	return func(s *Scene) {
		s.Objects = append(s.Objects, objects...)
	}
}

// WithView sets the world-to-view matrix.
//
// Parameters:
//   - view: the view matrix
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithView(view common.Mat4) SceneBuilderOption {
	return func(s *Scene) {
		s.View = view
	}
}

// WithLookAt sets the view matrix to a left-handed look-at from eye towards target.
//
// Parameters:
//   - eye: the camera position
//   - target: the point looked at
//   - up: the world up direction
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLookAt(eye, target, up common.Vec3) SceneBuilderOption {
	return func(s *Scene) {
		common.LookAtLH(s.View[:], eye, target, up)
	}
}
