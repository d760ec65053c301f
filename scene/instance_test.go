package scene

import (
	"math"
	"testing"

	"suntrace/core"
	"suntrace/geometry"
	remath "suntrace/math"
)

func TestWorldTrianglesAppliesTranslation(t *testing.T) {
	m := triangleMesh()
	transform := core.NewTransform()
	transform.Position = remath.Vec3{X: 5, Y: 0, Z: 0}
	inst := Instance{Mesh: m, Transform: transform, Attribute: "opaque"}

	tris := inst.worldTriangles()
	if len(tris) != 1 {
		t.Fatalf("expected 1 triangle, got %d", len(tris))
	}
	want := geometry.Vec3{X: 5 - 1, Y: -1, Z: 0}
	got := tris[0].Vertices[0]
	if math.Abs(got.X-want.X) > 1e-5 || math.Abs(got.Y-want.Y) > 1e-5 || math.Abs(got.Z-want.Z) > 1e-5 {
		t.Errorf("transformed vertex = %+v, want %+v", got, want)
	}
}

func TestWorldTrianglesPreservesUnitNormals(t *testing.T) {
	m := triangleMesh()
	inst := Instance{Mesh: m, Transform: core.NewTransform(), Attribute: "opaque"}
	for _, tri := range inst.worldTriangles() {
		for _, n := range tri.Normals {
			length := n.Length()
			if math.Abs(length-1) > 1e-6 {
				t.Errorf("normal length = %v, want 1", length)
			}
		}
	}
}

func TestWorldTrianglesTagsAttributeKey(t *testing.T) {
	m := triangleMesh()
	inst := Instance{Mesh: m, Transform: core.NewTransform(), Attribute: "glass"}
	tris := inst.worldTriangles()
	if tris[0].Attribute != "glass" {
		t.Errorf("attribute = %q, want %q", tris[0].Attribute, "glass")
	}
}
