package scene

import (
	"fmt"

	"suntrace/geometry"
	"suntrace/mesh"
)

// Params holds the shader/tracer settings a Scene carries alongside its
// geometry: the constants referenced throughout the tracer's recursive
// walk and the illumination package's lighting and shadow model.
type Params struct {
	BumpDist    float64
	MinWeight   float64
	LoopLimit   int
	MaxDistance float64
	BlockSize   int

	// Seed seeds the render workers' local RNGs, re-seeded at every block as
	// Seed plus the block's first pixel index, so a render with a fixed
	// block size reproduces bit-identical soft-shadow and ambient-occlusion
	// sampling across runs.
	Seed int64

	Ambient, Diffuse, Specular float64
	SpecPow                    float64

	OcclusionFallOff float64
	OcclusionDist    float64

	SoftShadowSamples int
	SunRadius         float64

	AmbientOcclusionSamples int
	AmbientOcclusionPower   float64

	AmbientWeight float64
	SolarWeight   float64

	// SunPos is the world-space position the Phong direct-light term and
	// the soft-shadow probe both aim toward.
	SunPos geometry.Vec3
}

// DefaultParams returns reasonable defaults for every Params field, the
// same role the original source's settings file plays for a caller that
// hasn't overridden a given constant.
func DefaultParams() Params {
	return Params{
		BumpDist:                1e-6,
		MinWeight:               1e-3,
		LoopLimit:               64,
		MaxDistance:             1e4,
		BlockSize:               64,
		Seed:                    1,
		Ambient:                 0.1,
		Diffuse:                 0.7,
		Specular:                0.3,
		SpecPow:                 32,
		OcclusionFallOff:        0.1,
		OcclusionDist:           1e3,
		SoftShadowSamples:       1,
		SunRadius:               0,
		AmbientOcclusionSamples: 1,
		AmbientOcclusionPower:   1,
		AmbientWeight:           0.5,
		SolarWeight:             0.5,
		SunPos:                  geometry.Vec3{X: 0, Y: 0, Z: 1e4},
	}
}

// Scene is a linked, immutable view over owning tables of gradients,
// attributes and meshes: a set of mesh instances placed in world space,
// shader parameters, a camera, and (after Link) the flattened global BVH
// the tracer queries for nearest hits.
type Scene struct {
	Gradients      map[string]*Gradient
	Attributes     map[string]*Attribute
	Meshes         map[string]*mesh.Mesh
	SkyGradientKey string

	Instances []Instance
	Params    Params
	Camera    *Camera

	skyGradient *Gradient
	triangles   []worldTriangle
	bvh         *geometry.BVH
}

// New builds an (unlinked) Scene from owning tables and a set of mesh
// instances. Call Link before rendering to resolve gradient/attribute
// string keys and build the global BVH.
func New(gradients map[string]*Gradient, attributes map[string]*Attribute, meshes map[string]*mesh.Mesh, skyGradientKey string, instances []Instance, params Params, camera *Camera) *Scene {
	return &Scene{
		Gradients:      gradients,
		Attributes:     attributes,
		Meshes:         meshes,
		SkyGradientKey: skyGradientKey,
		Instances:      instances,
		Params:         params,
		Camera:         camera,
	}
}

// Link resolves every Attribute's gradient key against the gradient
// table, resolves the sky gradient, and flattens every instance's
// world-space triangles into one global BVH. Returns an error naming the
// first missing key it finds, per the "Missing key" error-handling row.
func (s *Scene) Link() error {
	for key, attr := range s.Attributes {
		grad, ok := s.Gradients[attr.GradientKey]
		if !ok {
			return fmt.Errorf("scene: attribute %q references unknown gradient %q", key, attr.GradientKey)
		}
		attr.Gradient = grad
	}

	sky, ok := s.Gradients[s.SkyGradientKey]
	if !ok {
		return fmt.Errorf("scene: sky gradient key %q not found", s.SkyGradientKey)
	}
	s.skyGradient = sky

	var triangles []worldTriangle
	for i := range s.Instances {
		inst := &s.Instances[i]
		if _, ok := s.Attributes[inst.Attribute]; !ok {
			return fmt.Errorf("scene: instance references unknown attribute %q", inst.Attribute)
		}
		triangles = append(triangles, inst.worldTriangles()...)
	}
	if len(triangles) == 0 {
		s.triangles = nil
		s.bvh = nil
		return nil
	}

	shapes := make([]geometry.Bounded, len(triangles))
	for i, t := range triangles {
		shapes[i] = t
	}
	s.triangles = triangles
	s.bvh = geometry.Build(shapes, 4, 24)
	return nil
}

// SkyGradient returns the resolved sky gradient. Link must have succeeded
// first.
func (s *Scene) SkyGradient() *Gradient { return s.skyGradient }

// Hit is the result of Scene.Intersect: the full geometric intersection
// record plus the Attribute the hit surface shades with.
type Hit struct {
	geometry.Intersection
	Attribute *Attribute
}

// Intersect queries the scene's global BVH for the nearest triangle the
// ray hits within [minDist, maxDist], returning its intersection record
// and resolved Attribute.
func (s *Scene) Intersect(ray geometry.Ray, minDist, maxDist float64) (Hit, bool) {
	if s.bvh == nil {
		return Hit{}, false
	}

	found := make(map[int]geometry.Intersection, 1)
	bestIdx, _, hit := s.bvh.QueryNearest(ray, func(idx int) (float64, bool) {
		isect, ok := s.triangles[idx].Intersect(ray)
		if !ok || isect.Distance < minDist || isect.Distance > maxDist {
			return 0, false
		}
		found[idx] = isect
		return isect.Distance, true
	})
	if !hit {
		return Hit{}, false
	}

	tri := s.triangles[bestIdx]
	attr := s.Attributes[tri.Attribute]
	return Hit{Intersection: found[bestIdx], Attribute: attr}, true
}

// Eye exposes the scene's camera eye position, used by the illumination
// package's specular term.
func (s *Scene) Eye() geometry.Vec3 {
	if s.Camera == nil {
		return geometry.Vec3Zero
	}
	return s.Camera.Eye
}
