package scene

import (
	"errors"
	"fmt"
	"os"

	"github.com/Carmen-Shannon/oxy-forward/common"
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer/mesh"
	"gopkg.in/yaml.v3"
)

// ErrInvalidDescription is wrapped by every validation error returned by Parse and Build.
var ErrInvalidDescription = errors.New("scene: invalid description")

// Description is the YAML form of a scene together with the window it is meant to be shown in.
//
//	window: {width: 800, height: 600, title: Forward}
//	camera: {eye: [0, 2, -5], target: [0, 0, 0]}
//	objects:
//	  - meshes: [cube]
//	    materials: [[1, 0, 0, 1]]
//	    position: [0, 0, 0]
//	    rotation: [0, 0.5, 0]
type Description struct {
	Window  WindowDescription   `yaml:"window"`
	Camera  CameraDescription   `yaml:"camera"`
	Objects []ObjectDescription `yaml:"objects"`
}

// WindowDescription is the requested window size and title.
type WindowDescription struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

// CameraDescription places the viewer. Up defaults to +Y.
type CameraDescription struct {
	Eye    []float32 `yaml:"eye"`
	Target []float32 `yaml:"target"`
	Up     []float32 `yaml:"up"`
}

// ObjectDescription is one object: meshes named by primitive, optional per-mesh RGBA materials
// (a null entry uses the default), and a transform. Rotation is Euler angles in radians.
type ObjectDescription struct {
	Meshes    []string    `yaml:"meshes"`
	Materials [][]float32 `yaml:"materials"`
	Position  []float32   `yaml:"position"`
	Rotation  []float32   `yaml:"rotation"`
	Scale     []float32   `yaml:"scale"`
}

// Parse decodes a YAML scene description and validates it.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - *Description: the description with window defaults applied
//   - error: a decode error or a validation error wrapping ErrInvalidDescription
func Parse(data []byte) (*Description, error) {
	d := &Description{}
	if err := yaml.Unmarshal(data, d); err != nil {
		return nil, fmt.Errorf("failed to decode scene description: %w", err)
	}
	d.Window.Width = common.Coalesce(d.Window.Width, 800)
	d.Window.Height = common.Coalesce(d.Window.Height, 600)
	d.Window.Title = common.Coalesce(d.Window.Title, "Forward")

	if err := d.validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// LoadFile reads and parses the scene description at path.
//
// Parameters:
//   - path: the YAML file
//
// Returns:
//   - *Description: the parsed description
//   - error: a read, decode or validation error
func LoadFile(path string) (*Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene description: %w", err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

func (d *Description) validate() error {
	if d.Window.Width < 0 || d.Window.Height < 0 {
		return fmt.Errorf("window size %dx%d: %w", d.Window.Width, d.Window.Height, ErrInvalidDescription)
	}
	for name, v := range map[string][]float32{"eye": d.Camera.Eye, "target": d.Camera.Target, "up": d.Camera.Up} {
		if _, err := vec3(v, common.Vec3{}); err != nil {
			return fmt.Errorf("camera %s: %w", name, err)
		}
	}
	for i, obj := range d.Objects {
		if len(obj.Meshes) == 0 {
			return fmt.Errorf("object %d has no meshes: %w", i, ErrInvalidDescription)
		}
		for _, name := range obj.Meshes {
			if _, ok := mesh.ByName(name); !ok {
				return fmt.Errorf("object %d: unknown mesh %q: %w", i, name, ErrInvalidDescription)
			}
		}
		if len(obj.Materials) > len(obj.Meshes) {
			return fmt.Errorf("object %d has %d materials for %d meshes: %w", i, len(obj.Materials), len(obj.Meshes), ErrInvalidDescription)
		}
		for j, c := range obj.Materials {
			if c != nil && len(c) != 4 {
				return fmt.Errorf("object %d material %d: want 4 components, got %d: %w", i, j, len(c), ErrInvalidDescription)
			}
		}
		for name, v := range map[string][]float32{"position": obj.Position, "rotation": obj.Rotation, "scale": obj.Scale} {
			if _, err := vec3(v, common.Vec3{}); err != nil {
				return fmt.Errorf("object %d %s: %w", i, name, err)
			}
		}
	}
	return nil
}

// Build creates the scene the description describes.
//
// Returns:
//   - *Scene: the scene, objects in document order
//   - error: a validation error wrapping ErrInvalidDescription
func (d *Description) Build() (*Scene, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}

	eye, _ := vec3(d.Camera.Eye, common.Vec3{0, 0, -5})
	target, _ := vec3(d.Camera.Target, common.Vec3{})
	up, _ := vec3(d.Camera.Up, common.Vec3{0, 1, 0})
	s := NewScene(WithLookAt(eye, target, up))

	for _, od := range d.Objects {
		meshes := make([]mesh.Mesh, len(od.Meshes))
		for j, name := range od.Meshes {
			meshes[j], _ = mesh.ByName(name)
		}

		var materials []*Material
		for _, c := range od.Materials {
			if c == nil {
				materials = append(materials, nil)
				continue
			}
			materials = append(materials, &Material{Albedo: common.Color{c[0], c[1], c[2], c[3]}})
		}

		pos, _ := vec3(od.Position, common.Vec3{})
		rot, _ := vec3(od.Rotation, common.Vec3{})
		scale, _ := vec3(od.Scale, common.Vec3{1, 1, 1})
		s.Add(NewObject(meshes...).WithMaterials(materials...).WithTransform(pos, rot, scale))
	}
	return s, nil
}

// vec3 converts an optional three-component list, returning def when v is empty.
func vec3(v []float32, def common.Vec3) (common.Vec3, error) {
	switch len(v) {
	case 0:
		return def, nil
	case 3:
		return common.Vec3{v[0], v[1], v[2]}, nil
	}
	return def, fmt.Errorf("want 3 components, got %d: %w", len(v), ErrInvalidDescription)
}
