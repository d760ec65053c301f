package illumination

import (
	"math"

	"suntrace/geometry"
)

// Phong evaluates the tracer's local shading model at a hit point: ambient
// plus a Lambertian diffuse term plus a Blinn-less Phong specular term,
// weighted by the scene's ambient/diffuse/specular constants. pos is the
// world-space hit point, normal its (already interpolated) shading normal,
// incoming the direction the camera ray arrived from, sunDir the unit
// direction toward the sun.
func Phong(pos, normal, incoming, sunDir geometry.Vec3, eye geometry.Vec3, ambient, diffuse, specular, specPow float64) float64 {
	view := eye.Sub(pos).Normalize()
	reflected := geometry.Reflected(incoming, normal)

	a := 1.0
	d := math.Max(0, normal.Dot(sunDir))
	s := math.Pow(math.Max(0, view.Dot(reflected)), specPow)

	return ambient*a + diffuse*d + specular*s
}
