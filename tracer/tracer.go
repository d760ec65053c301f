// Package tracer implements the recursive, weighted ray walk at the heart
// of the renderer: it dispatches on a hit surface's attribute kind, mixes
// direct lighting with soft-shadow/ambient-occlusion visibility, and folds
// a sky contribution in once a ray leaves the scene or exhausts loop_limit
// while it still carries at least MinWeight.
package tracer

import (
	"log"
	"math/rand"

	"suntrace/core"
	"suntrace/geometry"
	"suntrace/illumination"
	"suntrace/scene"
)

// Tracer is a ray plus the scalar weight fraction of a pixel's energy it
// still carries, and the cumulative distance it has travelled. Rng is the
// owning worker's local random source, threaded down into every
// soft-shadow/ambient-occlusion sample this tracer's walk takes.
type Tracer struct {
	Ray           geometry.Ray
	Weight        float64
	DistTravelled float64
	Rng           *rand.Rand
}

// New starts a Tracer at full weight, carrying rng for its shadow sampling.
func New(ray geometry.Ray, rng *rand.Rand) Tracer {
	return Tracer{Ray: ray, Weight: 1, Rng: rng}
}

// travel advances the tracer's ray by dist and accumulates it into
// DistTravelled.
func (t *Tracer) travel(dist float64) {
	t.Ray.Travel(dist)
	t.DistTravelled += dist
}

// Contribution is one ray walk's result: the weighted colour it adds to a
// pixel, the light/shadow scalar accumulators, the distance of its first
// hit (0 on a sky miss), and the ray direction it finally exited along.
type Contribution struct {
	Color    core.Color
	Light    float64
	Shadow   float64
	Distance float64
	ExitDir  geometry.Vec3
}

func (c *Contribution) add(other Contribution) {
	c.Color.R += other.Color.R
	c.Color.G += other.Color.G
	c.Color.B += other.Color.B
	c.Color.A += other.Color.A
	c.Light += other.Light
	c.Shadow += other.Shadow
	c.ExitDir = other.ExitDir
}

// Trace walks ray through the scene from full weight, dispatching on every
// hit surface's attribute kind, and returns the accumulated pixel
// contribution. Distance is the ray's first-hit distance (0 on a sky
// miss), not the cumulative path length across any bounces. rng is the
// calling worker's local random source.
func Trace(s *scene.Scene, ray geometry.Ray, rng *rand.Rand) Contribution {
	loops := 0
	firstHit := -1.0
	result := walk(s, New(ray, rng), &loops, &firstHit)
	if firstHit >= 0 {
		result.Distance = firstHit
	}
	return result
}

// walk runs one tracer's interaction loop. loops is shared across the
// whole recursion tree (a refractive transmission spawns a sub-walk), so a
// scene with many nested dielectric surfaces still respects a single
// loop_limit budget. firstHit latches the distance (from the original
// camera ray's origin) of the very first surface the walk encounters,
// across any recursive transmission.
func walk(s *scene.Scene, t Tracer, loops *int, firstHit *float64) Contribution {
	params := s.Params
	var result Contribution

	for {
		hit, ok := s.Intersect(t.Ray, params.BumpDist, params.MaxDistance)
		if !ok {
			break
		}
		if *loops >= params.LoopLimit {
			log.Printf("tracer: terminating ray walk: loop_limit=%d reached", params.LoopLimit)
			break
		}
		*loops++
		if t.Weight < params.MinWeight {
			break
		}

		if *firstHit < 0 {
			*firstHit = t.DistTravelled + hit.Distance
		}
		t.travel(hit.Distance)
		attr := hit.Attribute

		switch attr.Kind {
		case scene.Opaque:
			result.add(interact(s, &t, hit, 1.0))
			return result

		case scene.Mirror:
			result.add(interact(s, &t, hit, attr.Abs))
			t.Ray.Dir = geometry.Reflected(t.Ray.Dir, hit.GeomNormal)
			t.travel(params.BumpDist)

		case scene.Transparent:
			result.add(interact(s, &t, hit, attr.Abs))
			t.travel(params.BumpDist)

		case scene.Refractive:
			result.add(interact(s, &t, hit, attr.Abs))

			nCurr, nNext := attr.NOut, attr.NIn
			if t.Ray.Dir.Dot(hit.GeomNormal) > 0 { // leaving the surface: travelling inside-to-outside
				nCurr, nNext = attr.NIn, attr.NOut
			}
			crossing := NewCrossing(t.Ray.Dir, hit.GeomNormal, nCurr, nNext)

			if crossing.HasTransmission {
				transmitted := t
				transmitted.Ray.Dir = crossing.TransDir
				transmitted.travel(params.BumpDist)
				transmitted.Weight *= crossing.TransProb
				result.add(walk(s, transmitted, loops, firstHit))
			}

			t.Weight *= crossing.RefProb
			t.Ray.Dir = crossing.RefDir
			t.travel(params.BumpDist)

		case scene.Luminous:
			result.add(interact(s, &t, hit, attr.BrightnessMult))
			t.Weight = 0
			return result
		}
	}

	if t.Weight >= params.MinWeight {
		result.add(skyContribution(s, t))
	}
	return result
}

// interact shades one surface collision: it mixes the Phong light term
// with the soft-shadow/ambient-occlusion visibility into a gradient
// sample, weights the result by absFrac·t.Weight, and decrements t.Weight
// by the same absorption fraction (the stricter rule applied uniformly
// across every attribute kind, including Luminous's brightness_mult).
func interact(s *scene.Scene, t *Tracer, hit scene.Hit, absFrac float64) Contribution {
	params := s.Params
	pos := t.Ray.Origin
	normal := hit.Normal

	light := illumination.Phong(pos, normal, t.Ray.Dir, params.SunPos.Sub(pos).Normalize(), s.Eye(),
		params.Ambient, params.Diffuse, params.Specular, params.SpecPow)
	sunDist := params.SunPos.Sub(pos).Length()
	shadow := illumination.Shadow(s, t.Rng, pos, normal, params.SunPos.Sub(pos).Normalize(), sunDist)

	base := hit.Attribute.Gradient.Sample(light)
	col := scene.Mix(core.ColorBlack, base, float32(shadow))

	weight := t.Weight * absFrac
	t.Weight *= 1 - absFrac

	return Contribution{
		Color:   core.Color{R: col.R * float32(weight), G: col.G * float32(weight), B: col.B * float32(weight), A: col.A * float32(weight)},
		Light:   light * weight,
		Shadow:  shadow * weight,
		ExitDir: t.Ray.Dir,
	}
}

// skyContribution adds the sky gradient's colour, sampled by the ray's
// exit direction's z-magnitude, weighted by the tracer's remaining weight.
func skyContribution(s *scene.Scene, t Tracer) Contribution {
	u := abs(t.Ray.Dir.Z)
	col := s.SkyGradient().Sample(u)
	weight := t.Weight
	return Contribution{
		Color:   core.Color{R: col.R * float32(weight), G: col.G * float32(weight), B: col.B * float32(weight), A: col.A * float32(weight)},
		Light:   weight,
		Shadow:  weight,
		ExitDir: t.Ray.Dir,
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
