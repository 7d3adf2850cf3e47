package scene

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-forward/common"
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSceneDefaults(t *testing.T) {
	s := NewScene()
	assert.Equal(t, common.Identity4(), s.View)
	assert.Empty(t, s.Objects)
	assert.Equal(t, 0, s.MeshCount())
}

func TestSceneAddKeepsOrder(t *testing.T) {
	s := NewScene(WithObjects(NewObject(mesh.Cube())))
	idx := s.Add(NewObject(mesh.Triangle(), mesh.Quad()))

	assert.Equal(t, 1, idx)
	require.Len(t, s.Objects, 2)
	assert.Len(t, s.Objects[0].Meshes, 1)
	assert.Len(t, s.Objects[1].Meshes, 2)
	assert.Equal(t, 3, s.MeshCount())
}

func TestObjectWithTransform(t *testing.T) {
	obj := NewObject(mesh.Cube()).WithTransform(common.Vec3{1, 2, 3}, common.Vec3{}, common.Vec3{1, 1, 1})
	p, w := common.TransformPoint(obj.Transform, common.Vec3{})
	assert.Equal(t, common.Vec3{1, 2, 3}, p)
	assert.Equal(t, float32(1), w)
}

const sampleDescription = `
window:
  width: 1024
camera:
  eye: [0, 0, -5]
  target: [0, 0, 0]
objects:
  - meshes: [cube, quad]
    materials: [[1, 0, 0, 1]]
    position: [2, 0, 0]
  - meshes: [triangle]
    materials: [~]
`

func TestParseAndBuild(t *testing.T) {
	d, err := Parse([]byte(sampleDescription))
	require.NoError(t, err)

	assert.Equal(t, 1024, d.Window.Width)
	assert.Equal(t, 600, d.Window.Height)
	assert.Equal(t, "Forward", d.Window.Title)

	s, err := d.Build()
	require.NoError(t, err)
	require.Len(t, s.Objects, 2)

	first := s.Objects[0]
	require.Len(t, first.Meshes, 2)
	assert.Len(t, first.Meshes[0].Indices, 36)
	assert.Len(t, first.Meshes[1].Indices, 6)
	require.Len(t, first.Materials, 1)
	assert.Equal(t, common.Color{1, 0, 0, 1}, first.Materials[0].Albedo)
	p, _ := common.TransformPoint(first.Transform, common.Vec3{})
	assert.Equal(t, common.Vec3{2, 0, 0}, p)

	second := s.Objects[1]
	require.Len(t, second.Materials, 1)
	assert.Nil(t, second.Materials[0])
	assert.Equal(t, common.Identity4(), second.Transform)

	// the origin sits 5 units in front of the camera
	v, _ := common.TransformPoint(s.View, common.Vec3{})
	assert.InDelta(t, 5, v[2], 1e-5)
}

func TestParseRejectsInvalidDescriptions(t *testing.T) {
	cases := map[string]string{
		"unknown mesh":    "objects: [{meshes: [teapot]}]",
		"no meshes":       "objects: [{meshes: []}]",
		"extra materials": "objects: [{meshes: [cube], materials: [[1,0,0,1], [0,1,0,1]]}]",
		"short color":     "objects: [{meshes: [cube], materials: [[1,0,0]]}]",
		"short position":  "objects: [{meshes: [cube], position: [1, 2]}]",
		"bad eye":         "camera: {eye: [1]}",
		"negative window": "window: {width: -1}",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.ErrorIs(t, err, ErrInvalidDescription)
		})
	}
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("objects: [unterminated"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleDescription), 0o644))

	d, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, d.Objects, 2)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
