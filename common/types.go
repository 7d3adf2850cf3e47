// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"encoding/binary"
	"math"
)

// Mat4 is a 4x4 float32 matrix stored in column-major order, matching the WGSL mat4x4<f32> layout.
type Mat4 [16]float32

// Color is an RGBA color with float32 components in the [0, 1] range.
type Color [4]float32

// Vec3 is a three-component float32 vector.
type Vec3 [3]float32

// Identity4 returns a new identity matrix.
//
// Returns:
//   - Mat4: the identity matrix
func Identity4() Mat4 {
	var m Mat4
	Identity(m[:])
	return m
}

// PutFloat32s writes each value of src into dst as little-endian IEEE-754 float32s.
// dst must be at least 4*len(src) bytes long.
//
// Parameters:
//   - dst: destination byte slice
//   - src: source values
func PutFloat32s(dst []byte, src []float32) {
	for i, v := range src {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
}

// Bytes returns the little-endian byte representation of the matrix (64 bytes).
//
// Returns:
//   - []byte: the serialized matrix
func (m Mat4) Bytes() []byte {
	buf := make([]byte, 64)
	PutFloat32s(buf, m[:])
	return buf
}

// Bytes returns the little-endian byte representation of the color (16 bytes).
//
// Returns:
//   - []byte: the serialized color
func (c Color) Bytes() []byte {
	buf := make([]byte, 16)
	PutFloat32s(buf, c[:])
	return buf
}
