package scene

import (
	"math"

	"suntrace/geometry"
)

// Projection selects how Camera.Ray maps a pixel to a world-space ray.
type Projection int

const (
	Perspective Projection = iota
	Orthographic
)

// Camera generates sampling rays for an image. It mirrors the source
// renderer's split into a focus (position, target, optional depth of
// field), a lens (field of view / projection kind), and a sensor
// (resolution, optional super-sample grid) — kept as one struct here since
// nothing else in this tracer needs those pieces addressed independently.
type Camera struct {
	Eye    geometry.Vec3
	Target geometry.Vec3

	Projection Projection
	FOV        float64 // horizontal field of view, radians (perspective); world-unit width (orthographic)
	Width      int
	Height     int

	// SuperSample is the per-axis sub-sample grid size k; k<=1 disables
	// super-sampling (one sample per pixel).
	SuperSample int

	// DOF, if non-nil, enables depth-of-field sampling.
	DOF *DepthOfField

	forward, right, up geometry.Vec3
}

// DepthOfField holds the parameters of a thin-lens depth-of-field model:
// the half-angle subtended by the circle of confusion at the focus
// distance, and the number of disk samples drawn per pixel.
type DepthOfField struct {
	Angle   float64
	Samples int
}

// NewCamera builds a Camera and precomputes its view frame. Panics if eye
// and target coincide, mirroring the source's debug assertion that they be
// distinct.
func NewCamera(eye, target geometry.Vec3, projection Projection, fov float64, width, height int) *Camera {
	if eye == target {
		panic("scene: camera eye and target must be distinct")
	}
	if fov <= 0 {
		panic("scene: camera field of view must be positive")
	}
	if width <= 0 || height <= 0 {
		panic("scene: camera resolution must be positive")
	}

	c := &Camera{
		Eye: eye, Target: target,
		Projection: projection, FOV: fov,
		Width: width, Height: height,
		SuperSample: 1,
	}
	c.buildFrame()
	return c
}

// worldUp is +z; buildFrame substitutes +y when forward is nearly parallel
// to it, to avoid a degenerate cross product.
var worldUp = geometry.Vec3{X: 0, Y: 0, Z: 1}
var worldUpFallback = geometry.Vec3{X: 0, Y: 1, Z: 0}

func (c *Camera) buildFrame() {
	forward := c.Target.Sub(c.Eye).Normalize()
	reference := worldUp
	if math.Abs(forward.Dot(worldUp)) > 1-1e-1 {
		reference = worldUpFallback
	}
	right := forward.Cross(reference).Normalize()
	up := right.Cross(forward).Normalize()
	c.forward, c.right, c.up = forward, right, up
}

// goldenAngle is the golden-ratio low-discrepancy angular step used for
// depth-of-field lens sampling. Package illumination steps its own
// soft-shadow/ambient-occlusion samples by the golden ratio instead.
const goldenAngle = math.Pi * (3 - 1.6180339887498949)

// goldenDiskPoint returns the n'th of N points of a golden-ratio
// low-discrepancy sample of the unit disk, as (rho, theta): rho = n/(N-1),
// theta = n*goldenAngle.
func goldenDiskPoint(n, total int) (rho, theta float64) {
	if total <= 1 {
		return 0, 0
	}
	rho = float64(n) / float64(total-1)
	theta = float64(n) * goldenAngle
	return rho, theta
}

// Ray builds a unit-direction ray for pixel (x, y), optionally offset
// within the pixel by a sub-sample index and jittered for depth of field,
// per the camera ray generation algorithm.
func (c *Camera) Ray(x, y, subSample, dofSample int) geometry.Ray {
	if x < 0 || x >= c.Width || y < 0 || y >= c.Height {
		panic("scene: pixel coordinates out of bounds")
	}

	eye := c.Eye
	forward := c.forward

	if c.DOF != nil {
		eye, forward = c.jitterForDOF(dofSample)
	}

	switch c.Projection {
	case Orthographic:
		return c.orthographicRay(eye, forward, x, y, subSample)
	default:
		return c.perspectiveRay(eye, forward, x, y, subSample)
	}
}

func (c *Camera) jitterForDOF(dofSample int) (eye, forward geometry.Vec3) {
	samples := c.DOF.Samples
	if samples <= 0 {
		samples = 1
	}
	targetDist := c.Target.Sub(c.Eye).Length()
	maxRadius := targetDist * math.Tan(c.DOF.Angle)

	rho, theta := goldenDiskPoint(dofSample, samples)

	offset := c.right.Mul(math.Sin(theta) * maxRadius * rho).
		Add(c.up.Mul(math.Cos(theta) * maxRadius * rho))
	eye = c.Eye.Add(offset)
	forward = c.Target.Sub(eye).Normalize()
	return eye, forward
}

func (c *Camera) pixelAngles(x, y, subSample int) (theta, phi float64) {
	width, height := float64(c.Width), float64(c.Height)
	delta := c.FOV / (width - 1)

	theta = float64(x)*delta - c.FOV/2
	phi = float64(y)*delta - (c.FOV/2)*(height/width)

	if c.SuperSample > 1 {
		k := c.SuperSample
		sx := float64(subSample%k) + 0.5
		sy := float64(subSample/k) + 0.5
		subDelta := delta / float64(k)
		theta += subDelta*sx - delta/2
		phi += subDelta*sy - delta/2
	}
	return theta, phi
}

func (c *Camera) perspectiveRay(eye, forward geometry.Vec3, x, y, subSample int) geometry.Ray {
	theta, phi := c.pixelAngles(x, y, subSample)

	// phi rotates about `right` (pitch), theta about `-up` (yaw); composed
	// directly here since camera sampling needs these two axes
	// independently rather than geometry.Ray.Rotate's pitch-then-roll
	// pairing, which sweeps a cone around a single original axis.
	dir := rotateAround(forward, c.right, phi)
	dir = rotateAround(dir, c.up.Negate(), theta)
	return geometry.NewRay(eye, dir)
}

func (c *Camera) orthographicRay(eye, forward geometry.Vec3, x, y, subSample int) geometry.Ray {
	width, height := float64(c.Width), float64(c.Height)
	field := c.FOV
	delta := field / (width - 1)

	dx := float64(x)*delta - field/2
	dy := float64(y)*delta - (field/2)*(height/width)

	if c.SuperSample > 1 {
		k := c.SuperSample
		sx := float64(subSample%k) + 0.5
		sy := float64(subSample/k) + 0.5
		subDelta := delta / float64(k)
		dx += subDelta*sx - delta/2
		dy += subDelta*sy - delta/2
	}

	origin := eye.Add(c.right.Mul(dx)).Add(c.up.Mul(dy))
	return geometry.NewRay(origin, forward)
}

// rotateAround rotates v by angle radians about axis (unit vector) using
// Rodrigues' formula.
func rotateAround(v, axis geometry.Vec3, angle float64) geometry.Vec3 {
	if angle == 0 {
		return v
	}
	cosA, sinA := math.Cos(angle), math.Sin(angle)
	return v.Mul(cosA).
		Add(axis.Cross(v).Mul(sinA)).
		Add(axis.Mul(axis.Dot(v) * (1 - cosA)))
}

// Forward, Right and Up expose the camera's cached view frame.
func (c *Camera) Forward() geometry.Vec3 { return c.forward }
func (c *Camera) Right() geometry.Vec3   { return c.right }
func (c *Camera) Up() geometry.Vec3      { return c.up }
