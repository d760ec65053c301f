package illumination

import (
	"log"

	"suntrace/geometry"
	"suntrace/scene"
)

// Occlusion walks ray up to dist, accumulating a visibility factor: 1.0 is
// fully visible, 0.0 fully occluded. It steps through mirror and
// semi-transparent surfaces (multiplying visibility by their absorption
// complement), terminating on the first opaque or luminous hit, on a
// budget-exhaustion (loop_limit) or minimum-weight cutoff, or once the
// travelled distance exceeds dist. dist is decremented by each hit's
// distance as the walk proceeds, and the decremented remaining budget (not
// the hit's own distance) is what both the fall-off term and the
// post-hit ray travel use — matching the original occlusion walk exactly.
func Occlusion(s *scene.Scene, ray geometry.Ray, dist float64) float64 {
	params := s.Params
	vis := 1.0
	loops := 0

	for {
		hit, ok := s.Intersect(ray, params.BumpDist, dist)
		if !ok {
			return vis
		}

		if loops >= params.LoopLimit {
			log.Printf("illumination: occlusion walk terminated at loop_limit=%d", params.LoopLimit)
			return 0
		}
		loops++

		dist -= hit.Distance
		if dist < 0 {
			return vis
		}
		if vis < params.MinWeight {
			return 0
		}

		attr := hit.Attribute
		if attr == nil {
			return 0
		}

		switch attr.Kind {
		case scene.Opaque:
			return vis / (dist*params.OcclusionFallOff + 1)

		case scene.Mirror:
			ray.Travel(dist)
			vis *= 1 - attr.Abs
			ray.Dir = geometry.Reflected(ray.Dir, hit.GeomNormal)
			ray.Travel(params.BumpDist)

		case scene.Transparent:
			ray.Travel(dist + params.BumpDist)
			vis *= 1 - attr.Abs

		case scene.Refractive:
			ray.Travel(dist + params.BumpDist)
			vis *= 1 - attr.Abs

		case scene.Luminous:
			return (vis * attr.BrightnessMult) / (dist*params.OcclusionFallOff + 1)
		}
	}
}
