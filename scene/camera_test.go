package scene

import (
	"math"
	"testing"

	"suntrace/geometry"
)

func TestCameraCentrePixelPointsAtTarget(t *testing.T) {
	eye := geometry.Vec3{X: 0, Y: 0, Z: 2}
	target := geometry.Vec3Zero
	cam := NewCamera(eye, target, Perspective, math.Pi/2, 101, 101)

	ray := cam.Ray(50, 50, 0, 0)
	want := target.Sub(eye).Normalize()

	if dot := ray.Dir.Dot(want); dot < 1-1e-9 {
		t.Errorf("centre ray dir = %+v, want parallel to %+v (dot=%v)", ray.Dir, want, dot)
	}
}

func TestCameraPanicsOnCoincidentEyeAndTarget(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for coincident eye/target")
		}
	}()
	NewCamera(geometry.Vec3Zero, geometry.Vec3Zero, Perspective, math.Pi/2, 10, 10)
}

func TestCameraPanicsOnNonPositiveResolution(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for non-positive resolution")
		}
	}()
	NewCamera(geometry.Vec3{X: 0, Y: 0, Z: 1}, geometry.Vec3Zero, Perspective, math.Pi/2, 0, 10)
}

func TestCameraSuperSampleOffsetsStayWithinPixel(t *testing.T) {
	cam := NewCamera(geometry.Vec3{X: 0, Y: 0, Z: 5}, geometry.Vec3Zero, Perspective, math.Pi/3, 50, 50)
	cam.SuperSample = 2

	base := cam.Ray(25, 25, 0, 0)
	for s := 1; s < 4; s++ {
		r := cam.Ray(25, 25, s, 0)
		// All sub-sample rays through the same pixel should point in
		// nearly the same direction as each other.
		if dot := base.Dir.Dot(r.Dir); dot < 0.99 {
			t.Errorf("sub-sample %d direction diverges too far from sub-sample 0 (dot=%v)", s, dot)
		}
	}
}

func TestGoldenDiskPointsStayInUnitDisk(t *testing.T) {
	const n = 64
	for i := 0; i < n; i++ {
		rho, _ := goldenDiskPoint(i, n)
		if rho < 0 || rho > 1+1e-9 {
			t.Errorf("sample %d: rho = %v, want within [0,1]", i, rho)
		}
	}
}
