package scene

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"suntrace/core"
	"suntrace/geometry"
	"suntrace/mesh"
	remath "suntrace/math"
)

// Config is the YAML-deserialised description of a scene: a mesh table
// (by file path), attribute and gradient tables, a list of instances
// placing a named mesh with a named attribute, a camera, and render
// settings. LoadConfig turns this into a linked Scene.
type Config struct {
	Gradients map[string]ConfigGradient `yaml:"gradients"`
	Attributes map[string]ConfigAttribute `yaml:"attributes"`
	Meshes     map[string]string         `yaml:"meshes"` // name -> OBJ/glTF file path
	SkyGradient string                   `yaml:"sky_gradient"`
	Instances  []ConfigInstance          `yaml:"instances"`
	Camera     ConfigCamera              `yaml:"camera"`
	Params     ConfigParams              `yaml:"params"`
}

type ConfigGradient struct {
	Stops []ConfigStop `yaml:"stops"`
}

type ConfigStop struct {
	T     float64    `yaml:"t"`
	Color [4]float32 `yaml:"color"` // r, g, b, a
}

type ConfigAttribute struct {
	Kind           string  `yaml:"kind"` // opaque | mirror | transparent | refractive | luminous
	Gradient       string  `yaml:"gradient"`
	Abs            float64 `yaml:"abs"`
	NIn            float64 `yaml:"n_in"`
	NOut           float64 `yaml:"n_out"`
	BrightnessMult float64 `yaml:"brightness_mult"`
}

type ConfigInstance struct {
	Mesh      string     `yaml:"mesh"`
	Attribute string     `yaml:"attribute"`
	Position  [3]float32 `yaml:"position"`
	Rotation  [3]float32 `yaml:"rotation"` // euler degrees, XYZ
	Scale     [3]float32 `yaml:"scale"`
}

type ConfigCamera struct {
	Eye         [3]float64 `yaml:"eye"`
	Target      [3]float64 `yaml:"target"`
	Projection  string     `yaml:"projection"` // perspective | orthographic
	FOVDegrees  float64    `yaml:"fov_degrees"`
	Width       int        `yaml:"width"`
	Height      int        `yaml:"height"`
	SuperSample int        `yaml:"super_sample"`
	DOFSamples  int        `yaml:"dof_samples"`
	DOFAngleDeg float64    `yaml:"dof_angle_degrees"`
}

type ConfigParams struct {
	BumpDist                float64 `yaml:"bump_dist"`
	MinWeight               float64 `yaml:"min_weight"`
	LoopLimit               int     `yaml:"loop_limit"`
	MaxDistance             float64 `yaml:"max_distance"`
	BlockSize               int     `yaml:"block_size"`
	Seed                    int64   `yaml:"seed"`
	Ambient                 float64 `yaml:"ambient"`
	Diffuse                 float64 `yaml:"diffuse"`
	Specular                float64 `yaml:"specular"`
	SpecPow                 float64 `yaml:"spec_pow"`
	OcclusionFallOff        float64 `yaml:"occlusion_fall_off"`
	OcclusionDist           float64 `yaml:"occlusion_dist"`
	SoftShadowSamples       int     `yaml:"soft_shadow_samples"`
	SunRadiusDegrees        float64 `yaml:"sun_radius_degrees"`
	AmbientOcclusionSamples int     `yaml:"ambient_occlusion_samples"`
	AmbientOcclusionPower   float64 `yaml:"ambient_occlusion_power"`
	AmbientWeight           float64    `yaml:"ambient_weight"`
	SolarWeight             float64    `yaml:"solar_weight"`
	SunPos                  [3]float64 `yaml:"sun_pos"`
}

// LoadConfig reads a YAML scene description from path, loads every
// referenced mesh file (OBJ or glTF, by extension), and returns a linked
// Scene ready to render.
func LoadConfig(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene: read config %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("scene: parse config %q: %w", path, err)
	}

	gradients := make(map[string]*Gradient, len(cfg.Gradients))
	for name, g := range cfg.Gradients {
		stops := make([]Stop, len(g.Stops))
		for i, s := range g.Stops {
			stops[i] = Stop{T: s.T, Color: core.Color{R: s.Color[0], G: s.Color[1], B: s.Color[2], A: s.Color[3]}}
		}
		gradients[name] = NewGradient(stops)
	}

	attributes := make(map[string]*Attribute, len(cfg.Attributes))
	for name, a := range cfg.Attributes {
		attr, err := buildAttribute(a)
		if err != nil {
			return nil, fmt.Errorf("scene: attribute %q: %w", name, err)
		}
		attributes[name] = attr
	}

	meshes := make(map[string]*mesh.Mesh, len(cfg.Meshes))
	for name, meshPath := range cfg.Meshes {
		m, err := loadMeshFile(meshPath)
		if err != nil {
			return nil, fmt.Errorf("scene: mesh %q: %w", name, err)
		}
		meshes[name] = m
	}

	instances := make([]Instance, len(cfg.Instances))
	for i, ci := range cfg.Instances {
		m, ok := meshes[ci.Mesh]
		if !ok {
			return nil, fmt.Errorf("scene: instance %d references unknown mesh %q", i, ci.Mesh)
		}
		instances[i] = Instance{
			Mesh:      m,
			Transform: configTransform(ci),
			Attribute: ci.Attribute,
		}
	}

	cam := configCamera(cfg.Camera)
	params := configParams(cfg.Params)

	s := New(gradients, attributes, meshes, cfg.SkyGradient, instances, params, cam)
	if err := s.Link(); err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	return s, nil
}

func buildAttribute(a ConfigAttribute) (*Attribute, error) {
	switch a.Kind {
	case "opaque":
		attr := NewOpaque(a.Gradient)
		return &attr, nil
	case "mirror":
		attr := NewMirror(a.Gradient, a.Abs)
		return &attr, nil
	case "transparent":
		attr := NewTransparent(a.Gradient, a.Abs)
		return &attr, nil
	case "refractive":
		attr := NewRefractive(a.Gradient, a.Abs, a.NIn, a.NOut)
		return &attr, nil
	case "luminous":
		attr := NewLuminous(a.Gradient, a.BrightnessMult)
		return &attr, nil
	default:
		return nil, fmt.Errorf("unknown attribute kind %q", a.Kind)
	}
}

func loadMeshFile(path string) (*mesh.Mesh, error) {
	switch ext := fileExt(path); ext {
	case ".obj":
		return mesh.LoadOBJ(path)
	case ".gltf", ".glb":
		meshes, err := mesh.LoadGLTF(path)
		if err != nil {
			return nil, err
		}
		return meshes[0], nil
	default:
		return nil, fmt.Errorf("unsupported mesh file extension %q", ext)
	}
}

func fileExt(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			return path[i:]
		}
		if path[i] == '/' {
			break
		}
	}
	return ""
}

func configTransform(ci ConfigInstance) core.Transform {
	t := core.NewTransform()
	t.Position = remath.Vec3{X: ci.Position[0], Y: ci.Position[1], Z: ci.Position[2]}
	if ci.Scale != ([3]float32{}) {
		t.Scale = remath.Vec3{X: ci.Scale[0], Y: ci.Scale[1], Z: ci.Scale[2]}
	}
	deg2rad := float32(math.Pi / 180)
	t.Rotation = remath.QuaternionFromEuler(remath.Vec3{
		X: ci.Rotation[0] * deg2rad,
		Y: ci.Rotation[1] * deg2rad,
		Z: ci.Rotation[2] * deg2rad,
	})
	return t
}

func configCamera(c ConfigCamera) *Camera {
	proj := Perspective
	if c.Projection == "orthographic" {
		proj = Orthographic
	}
	eye := geometry.Vec3{X: c.Eye[0], Y: c.Eye[1], Z: c.Eye[2]}
	target := geometry.Vec3{X: c.Target[0], Y: c.Target[1], Z: c.Target[2]}
	fov := c.FOVDegrees * math.Pi / 180

	cam := NewCamera(eye, target, proj, fov, c.Width, c.Height)
	if c.SuperSample > 1 {
		cam.SuperSample = c.SuperSample
	} else {
		cam.SuperSample = 1
	}
	if c.DOFSamples > 0 {
		cam.DOF = &DepthOfField{Angle: c.DOFAngleDeg * math.Pi / 180, Samples: c.DOFSamples}
	}
	return cam
}

func configParams(c ConfigParams) Params {
	p := DefaultParams()
	if c.BumpDist > 0 {
		p.BumpDist = c.BumpDist
	}
	if c.MinWeight > 0 {
		p.MinWeight = c.MinWeight
	}
	if c.LoopLimit > 0 {
		p.LoopLimit = c.LoopLimit
	}
	if c.MaxDistance > 0 {
		p.MaxDistance = c.MaxDistance
	}
	if c.BlockSize > 0 {
		p.BlockSize = c.BlockSize
	}
	if c.Seed != 0 {
		p.Seed = c.Seed
	}
	if c.Ambient > 0 || c.Diffuse > 0 || c.Specular > 0 {
		p.Ambient, p.Diffuse, p.Specular = c.Ambient, c.Diffuse, c.Specular
	}
	if c.SpecPow > 0 {
		p.SpecPow = c.SpecPow
	}
	if c.OcclusionFallOff > 0 {
		p.OcclusionFallOff = c.OcclusionFallOff
	}
	if c.OcclusionDist > 0 {
		p.OcclusionDist = c.OcclusionDist
	}
	if c.SoftShadowSamples > 0 {
		p.SoftShadowSamples = c.SoftShadowSamples
	}
	p.SunRadius = c.SunRadiusDegrees * math.Pi / 180
	if c.AmbientOcclusionSamples > 0 {
		p.AmbientOcclusionSamples = c.AmbientOcclusionSamples
	}
	if c.AmbientOcclusionPower > 0 {
		p.AmbientOcclusionPower = c.AmbientOcclusionPower
	}
	if c.AmbientWeight > 0 || c.SolarWeight > 0 {
		p.AmbientWeight, p.SolarWeight = c.AmbientWeight, c.SolarWeight
	}
	if c.SunPos != ([3]float64{}) {
		p.SunPos = geometry.Vec3{X: c.SunPos[0], Y: c.SunPos[1], Z: c.SunPos[2]}
	}
	return p
}
