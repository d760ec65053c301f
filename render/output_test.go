package render

import (
	"math"
	"testing"

	"suntrace/core"
	"suntrace/geometry"
)

func TestAddIsElementwise(t *testing.T) {
	a := New(2, 2)
	b := New(2, 2)
	a.addAt(0, 0, core.Color{R: 1}, 0.5, 0.25, 3, geometry.Vec3{X: 1}, 10)
	b.addAt(0, 0, core.Color{R: 2}, 0.5, 0.25, 3, geometry.Vec3{X: 1}, 10)

	a.Add(b)

	i := a.index(0, 0)
	if a.Color[i].R != 3 {
		t.Errorf("Color.R = %v, want 3", a.Color[i].R)
	}
	if a.Light[i] != 1 {
		t.Errorf("Light = %v, want 1", a.Light[i])
	}
	if a.Distance[i] != 6 {
		t.Errorf("Distance = %v, want 6", a.Distance[i])
	}
	if math.Abs(a.ExitDir[i].X-2) > 1e-9 {
		t.Errorf("ExitDir.X = %v, want 2", a.ExitDir[i].X)
	}
	if a.Time[i] != 20 {
		t.Errorf("Time = %v, want 20", a.Time[i])
	}
}

func TestAddPanicsOnDimensionMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic merging mismatched dimensions")
		}
	}()
	New(2, 2).Add(New(3, 3))
}

func TestAdditivityMatchesSinglePassAccumulation(t *testing.T) {
	whole := New(2, 1)
	whole.addAt(0, 0, core.Color{R: 1}, 1, 1, 1, geometry.Vec3{X: 1}, 5)
	whole.addAt(1, 0, core.Color{R: 2}, 2, 2, 2, geometry.Vec3{X: 2}, 6)

	partA := New(2, 1)
	partA.addAt(0, 0, core.Color{R: 1}, 1, 1, 1, geometry.Vec3{X: 1}, 5)
	partB := New(2, 1)
	partB.addAt(1, 0, core.Color{R: 2}, 2, 2, 2, geometry.Vec3{X: 2}, 6)
	partA.Add(partB)

	for i := range whole.Color {
		if whole.Color[i] != partA.Color[i] {
			t.Errorf("pixel %d: merged = %+v, want %+v", i, partA.Color[i], whole.Color[i])
		}
	}
}
