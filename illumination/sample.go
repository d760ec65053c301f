// Package illumination implements the tracer's shading model: Phong
// lighting, and soft-shadow / ambient-occlusion visibility sampling via
// golden-ratio low-discrepancy point sets.
package illumination

import "math"

// goldenRatio is φ = (1+√5)/2, the irrational step used by both the disk
// and hemisphere low-discrepancy samplers below.
const goldenRatio = 1.6180339887498949

// DiskPoint returns the n'th of N points of a golden-ratio low-discrepancy
// sample of the unit disk: ρ(n) = n/(N−1), θ(n) = n·φ.
func DiskPoint(n, total int) (rho, theta float64) {
	if total <= 1 {
		return 0, 0
	}
	rho = float64(n) / float64(total-1)
	theta = float64(n) * goldenRatio
	return rho, theta
}

// HemispherePoint returns the n'th of N points of a golden-ratio
// low-discrepancy sample of the unit hemisphere about +z, mapped from a
// full-sphere low-discrepancy sequence restricted to one hemisphere by
// doubling N: d = n − (2N−1)/2, θ = (2π/φ)·(d mod φ),
// φ_polar = asin(2d/2N) + π/2. Doubling N forces d negative over
// n ∈ [0,N), which in turn forces φ_polar ∈ (0, π/2) — the upper
// hemisphere only, instead of the full sphere's (0, π).
func HemispherePoint(n, total int) (phi, theta float64) {
	sphereTotal := total * 2
	d := float64(n) - float64(sphereTotal-1)/2
	theta = (2 * math.Pi / goldenRatio) * math.Mod(d, goldenRatio)
	phi = math.Asin(clamp(2*d/float64(sphereTotal), -1, 1)) + math.Pi/2
	return phi, theta
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
