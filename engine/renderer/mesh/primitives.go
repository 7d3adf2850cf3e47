package mesh

// Triangle returns a single counter-clockwise triangle in the XY plane facing -Z.
func Triangle() Mesh {
	n := [3]float32{0, 0, -1}
	return Mesh{
		Vertices: []Vertex{
			{Position: [3]float32{0, 0.5, 0}, Normal: n},
			{Position: [3]float32{0.5, -0.5, 0}, Normal: n},
			{Position: [3]float32{-0.5, -0.5, 0}, Normal: n},
		},
		Indices: []uint32{0, 1, 2},
	}
}

// Quad returns a unit square in the XY plane facing -Z, made of two triangles.
func Quad() Mesh {
	n := [3]float32{0, 0, -1}
	return Mesh{
		Vertices: []Vertex{
			{Position: [3]float32{-0.5, -0.5, 0}, Normal: n},
			{Position: [3]float32{-0.5, 0.5, 0}, Normal: n},
			{Position: [3]float32{0.5, 0.5, 0}, Normal: n},
			{Position: [3]float32{0.5, -0.5, 0}, Normal: n},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}

// Cube returns a unit cube centered at the origin with per-face normals (24 vertices, 36 indices).
func Cube() Mesh {
	faces := []struct {
		normal  [3]float32
		corners [4][3]float32
	}{
		{[3]float32{0, 0, -1}, [4][3]float32{{-0.5, -0.5, -0.5}, {-0.5, 0.5, -0.5}, {0.5, 0.5, -0.5}, {0.5, -0.5, -0.5}}},
		{[3]float32{0, 0, 1}, [4][3]float32{{0.5, -0.5, 0.5}, {0.5, 0.5, 0.5}, {-0.5, 0.5, 0.5}, {-0.5, -0.5, 0.5}}},
		{[3]float32{-1, 0, 0}, [4][3]float32{{-0.5, -0.5, 0.5}, {-0.5, 0.5, 0.5}, {-0.5, 0.5, -0.5}, {-0.5, -0.5, -0.5}}},
		{[3]float32{1, 0, 0}, [4][3]float32{{0.5, -0.5, -0.5}, {0.5, 0.5, -0.5}, {0.5, 0.5, 0.5}, {0.5, -0.5, 0.5}}},
		{[3]float32{0, 1, 0}, [4][3]float32{{-0.5, 0.5, -0.5}, {-0.5, 0.5, 0.5}, {0.5, 0.5, 0.5}, {0.5, 0.5, -0.5}}},
		{[3]float32{0, -1, 0}, [4][3]float32{{-0.5, -0.5, 0.5}, {-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {0.5, -0.5, 0.5}}},
	}

	m := Mesh{
		Vertices: make([]Vertex, 0, 24),
		Indices:  make([]uint32, 0, 36),
	}
	for _, f := range faces {
		base := uint32(len(m.Vertices))
		for _, c := range f.corners {
			m.Vertices = append(m.Vertices, Vertex{Position: c, Normal: f.normal})
		}
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return m
}

// ByName returns the primitive mesh with the given name: "triangle", "quad" or "cube".
//
// Parameters:
//   - name: the primitive name
//
// Returns:
//   - Mesh: the primitive
//   - bool: false if the name is unknown
func ByName(name string) (Mesh, bool) {
	switch name {
	case "triangle":
		return Triangle(), true
	case "quad":
		return Quad(), true
	case "cube":
		return Cube(), true
	}
	return Mesh{}, false
}
