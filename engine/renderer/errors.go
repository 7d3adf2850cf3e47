package renderer

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-forward/engine/renderer/forward"
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer/snapshot"
)

var (
	// ErrInvalidSurface is returned for a surface configuration with a zero dimension.
	ErrInvalidSurface = forward.ErrInvalidSurface
	// ErrStaleForwardPass is returned by Render when the target does not match the configuration
	// of the current forward pass, typically because Resize was not called.
	ErrStaleForwardPass = forward.ErrStaleForwardPass
	// ErrNilSnapshot is returned by Render for a nil snapshot.
	ErrNilSnapshot = snapshot.ErrNilSnapshot
	// ErrReleasedSnapshot is returned by Render for a snapshot that has been released.
	ErrReleasedSnapshot = snapshot.ErrReleasedSnapshot
	// ErrMaterialCountMismatch is returned when an object has more materials than meshes.
	ErrMaterialCountMismatch = snapshot.ErrMaterialCountMismatch
	// ErrNilScene is returned by CreateScene for a nil scene.
	ErrNilScene = errors.New("renderer: nil scene")
	// ErrReleased is returned by every operation on a released renderer.
	ErrReleased = errors.New("renderer: renderer has been released")
)
