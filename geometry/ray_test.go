package geometry

import (
	"math"
	"testing"
)

func TestRayTravelMovesOriginByTTimesDirection(t *testing.T) {
	r := NewRay(Vec3{1, 2, 3}, Vec3{1, 0, 0})
	dir := r.Dir
	const step = 4.5

	r.Travel(step)

	want := Vec3{1, 2, 3}.Add(dir.Mul(step))
	if !vecApproxEqual(r.Origin, want, 1e-12) {
		t.Errorf("origin = %+v, want %+v", r.Origin, want)
	}
	if !vecApproxEqual(r.Dir, dir, 1e-12) {
		t.Errorf("direction changed: got %+v, want %+v", r.Dir, dir)
	}
}

func TestReflectPreservesAngleToNormal(t *testing.T) {
	r := NewRay(Vec3Zero, Vec3{1, -1, 0}.Normalize())
	normal := Vec3{0, 1, 0}

	r.Reflect(normal)

	want := Vec3{1, 1, 0}.Normalize()
	if !vecApproxEqual(r.Dir, want, 1e-9) {
		t.Errorf("reflected dir = %+v, want %+v", r.Dir, want)
	}
}

func TestRefractStraightThroughIsUnbent(t *testing.T) {
	r := NewRay(Vec3Zero, Vec3{0, 0, 1})
	ok := r.Refract(Vec3{0, 0, -1}, 1.0, 1.5)
	if !ok {
		t.Fatal("expected refraction, got total internal reflection")
	}
	if !vecApproxEqual(r.Dir, Vec3{0, 0, 1}, 1e-9) {
		t.Errorf("normal-incidence refraction bent the ray: %+v", r.Dir)
	}
}

func TestRefractFallsBackToReflectionOnTIR(t *testing.T) {
	// Shallow angle from inside a denser medium (n1 > n2) triggers TIR.
	r := NewRay(Vec3Zero, Vec3{1, -0.01, 0}.Normalize())
	ok := r.Refract(Vec3{0, 1, 0}, 1.5, 1.0)
	if ok {
		t.Fatal("expected total internal reflection")
	}
	if r.Dir.Dot(Vec3{0, 1, 0}) <= 0 {
		t.Errorf("expected reflected ray to point back into the denser medium, got %+v", r.Dir)
	}
}

func vecApproxEqual(a, b Vec3, tol float64) bool {
	return math.Abs(a.X-b.X) < tol && math.Abs(a.Y-b.Y) < tol && math.Abs(a.Z-b.Z) < tol
}
