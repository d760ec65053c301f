package illumination

import (
	"math"
	"math/rand"

	"suntrace/geometry"
	"suntrace/scene"
)

// basis builds an orthonormal tangent/bitangent pair for normal, used to
// map a local disk or hemisphere sample onto a direction around it.
func basis(normal geometry.Vec3) (tangent, bitangent geometry.Vec3) {
	reference := geometry.Vec3UnitZ
	if math.Abs(normal.Dot(geometry.Vec3UnitZ)) > 1-1e-3 {
		reference = geometry.Vec3UnitY
	}
	tangent = reference.Cross(normal).Normalize()
	bitangent = normal.Cross(tangent).Normalize()
	return tangent, bitangent
}

// softShadow samples SoftShadowSamples rays from pos toward the sun, each
// jittered within a cone of half-angle SunRadius via a golden-ratio disk and
// rotated by one random offset drawn fresh per call (so repeated calls with
// the same sample count don't all land on the exact same directions), and
// averages the occlusion walk's visibility over the samples.
func softShadow(s *scene.Scene, rng *rand.Rand, pos geometry.Vec3, sunDir geometry.Vec3, sunDist float64) float64 {
	params := s.Params
	samples := params.SoftShadowSamples
	if samples <= 0 {
		samples = 1
	}
	tangent, bitangent := basis(sunDir)
	maxRadius := math.Tan(params.SunRadius)
	offset := rng.Float64() * 2 * math.Pi

	total := 0.0
	for n := 0; n < samples; n++ {
		rho, theta := DiskPoint(n, samples)
		theta += offset
		jittered := sunDir
		if maxRadius > 0 {
			d := tangent.Mul(math.Cos(theta) * rho * maxRadius).
				Add(bitangent.Mul(math.Sin(theta) * rho * maxRadius))
			jittered = sunDir.Add(d).Normalize()
		}
		ray := geometry.NewRay(pos, jittered)
		ray.Travel(params.BumpDist)
		total += Occlusion(s, ray, sunDist)
	}
	return total / float64(samples)
}

// ambientOcclusion samples AmbientOcclusionSamples rays from pos over the
// hemisphere about normal via a golden-ratio hemisphere sampler rotated by
// one random offset drawn fresh per call, and averages the occlusion walk's
// visibility (raised to AmbientOcclusionPower) over the samples.
func ambientOcclusion(s *scene.Scene, rng *rand.Rand, pos, normal geometry.Vec3) float64 {
	params := s.Params
	samples := params.AmbientOcclusionSamples
	if samples <= 0 {
		samples = 1
	}
	tangent, bitangent := basis(normal)
	offset := rng.Float64() * 2 * math.Pi

	total := 0.0
	for n := 0; n < samples; n++ {
		phi, theta := HemispherePoint(n, samples)
		theta += offset
		dir := tangent.Mul(math.Sin(phi) * math.Cos(theta)).
			Add(bitangent.Mul(math.Sin(phi) * math.Sin(theta))).
			Add(normal.Mul(math.Cos(phi)))
		ray := geometry.NewRay(pos, dir)
		ray.Travel(params.BumpDist)
		vis := Occlusion(s, ray, params.OcclusionDist)
		total += math.Pow(vis, params.AmbientOcclusionPower)
	}
	return total / float64(samples)
}

// Shadow combines soft-shadow (direct sun visibility) and ambient-occlusion
// terms, weighted by the scene's SolarWeight/AmbientWeight, into a single
// [0,1] visibility multiplier for the lighting term at pos. rng is the
// calling worker's local random source, used to rotate each sampling pass
// by a fresh per-call offset.
func Shadow(s *scene.Scene, rng *rand.Rand, pos, normal, sunDir geometry.Vec3, sunDist float64) float64 {
	direct := softShadow(s, rng, pos, sunDir, sunDist)
	ambient := ambientOcclusion(s, rng, pos, normal)
	params := s.Params
	return params.AmbientWeight*ambient + params.SolarWeight*direct
}
