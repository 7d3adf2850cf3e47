package common

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMul4Identity(t *testing.T) {
	a := Mat4{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	id := Identity4()

	var out Mat4
	Mul4(out[:], id[:], a[:])
	assert.Equal(t, a, out)

	Mul4(out[:], a[:], id[:])
	assert.Equal(t, a, out)
}

func TestPerspectiveLHDepthRange(t *testing.T) {
	var proj Mat4
	PerspectiveLH(proj[:], math.Pi/4, 800.0/600.0, 0.1, 100)

	near, w := TransformPoint(proj, Vec3{0, 0, 0.1})
	assert.InDelta(t, 0.1, w, 1e-6)
	assert.InDelta(t, 0.0, near[2], 1e-5)

	far, _ := TransformPoint(proj, Vec3{0, 0, 100})
	assert.InDelta(t, 1.0, far[2], 1e-5)

	mid, _ := TransformPoint(proj, Vec3{0, 0, 10})
	assert.Greater(t, mid[2], float32(0))
	assert.Less(t, mid[2], float32(1))
}

func TestPerspectiveLHAspect(t *testing.T) {
	var wide, square Mat4
	PerspectiveLH(wide[:], math.Pi/4, 2, 0.1, 100)
	PerspectiveLH(square[:], math.Pi/4, 1, 0.1, 100)

	assert.InDelta(t, square[0]/2, wide[0], 1e-6)
	assert.Equal(t, square[5], wide[5])
}

func TestLookAtLH(t *testing.T) {
	var view Mat4
	LookAtLH(view[:], Vec3{0, 0, -5}, Vec3{0, 0, 0}, Vec3{0, 1, 0})

	p, w := TransformPoint(view, Vec3{0, 0, 0})
	assert.Equal(t, float32(1), w)
	assert.InDelta(t, 0, p[0], 1e-6)
	assert.InDelta(t, 0, p[1], 1e-6)
	assert.InDelta(t, 5, p[2], 1e-6)

	right, _ := TransformPoint(view, Vec3{1, 0, 0})
	assert.InDelta(t, 1, right[0], 1e-6)
}

func TestBuildModelMatrixTranslation(t *testing.T) {
	var m Mat4
	BuildModelMatrix(m[:], Vec3{1, 2, 3}, Vec3{}, Vec3{1, 1, 1})

	p, _ := TransformPoint(m, Vec3{0, 0, 0})
	assert.Equal(t, Vec3{1, 2, 3}, p)
}

func TestBuildModelMatrixScaleAndRotation(t *testing.T) {
	var m Mat4
	BuildModelMatrix(m[:], Vec3{}, Vec3{0, math.Pi / 2, 0}, Vec3{2, 2, 2})

	// Yaw of 90 degrees turns +X into -Z.
	p, _ := TransformPoint(m, Vec3{1, 0, 0})
	assert.InDelta(t, 0, p[0], 1e-5)
	assert.InDelta(t, 0, p[1], 1e-5)
	assert.InDelta(t, -2, p[2], 1e-5)
}

func TestMat4Bytes(t *testing.T) {
	m := Identity4()
	b := m.Bytes()
	require.Len(t, b, 64)
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(b[0:])))
	assert.Equal(t, float32(0), math.Float32frombits(binary.LittleEndian.Uint32(b[4:])))
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(b[60:])))
}

func TestColorBytes(t *testing.T) {
	c := Color{0.25, 0.5, 0.75, 1}
	b := c.Bytes()
	require.Len(t, b, 16)
	for i, want := range c {
		assert.Equal(t, want, math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:])))
	}
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, 3, Coalesce(0, 0, 3, 4))
	assert.Equal(t, "", Coalesce[string]())
	assert.Equal(t, "a", Coalesce("", "a"))
}
