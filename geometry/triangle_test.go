package geometry

import "testing"

func flatTriangle(v0, v1, v2 Vec3) Triangle {
	n := v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()
	return Triangle{
		Vertices: [3]Vec3{v0, v1, v2},
		Normals:  [3]Vec3{n, n, n},
	}
}

func TestTriangleIntersectHitsCentre(t *testing.T) {
	tri := flatTriangle(Vec3{-1, -1, 0}, Vec3{1, -1, 0}, Vec3{0, 1, 0})
	ray := NewRay(Vec3{0, -0.33, -5}, Vec3{0, 0, 1})

	hit, ok := tri.Intersect(ray)
	if !ok {
		t.Fatal("expected a hit through the triangle's centroid")
	}
	if hit.Distance <= 0 {
		t.Errorf("distance = %v, want positive", hit.Distance)
	}
	if hit.GeomNormal.Z <= 0 {
		t.Errorf("geometric normal = %+v, want +z hemisphere", hit.GeomNormal)
	}
}

func TestTriangleIntersectMissesOutsideEdges(t *testing.T) {
	tri := flatTriangle(Vec3{-1, -1, 0}, Vec3{1, -1, 0}, Vec3{0, 1, 0})
	ray := NewRay(Vec3{5, 5, -5}, Vec3{0, 0, 1})

	if _, ok := tri.Intersect(ray); ok {
		t.Fatal("expected a miss for a ray outside all three edges")
	}
}

func TestTriangleIntersectAgreesWithBVHNearestQuery(t *testing.T) {
	tris := []Triangle{
		flatTriangle(Vec3{-3, -1, 0}, Vec3{-1, -1, 0}, Vec3{-2, 1, 0}),
		flatTriangle(Vec3{-1, -1, 1}, Vec3{1, -1, 1}, Vec3{0, 1, 1}),
		flatTriangle(Vec3{1, -1, 2}, Vec3{3, -1, 2}, Vec3{2, 1, 2}),
	}
	shapes := make([]Bounded, len(tris))
	for i, tri := range tris {
		shapes[i] = tri
	}
	bvh := Build(shapes, 2, 8)

	ray := NewRay(Vec3{-2, -0.33, -5}, Vec3{0.5, 0, 1}.Normalize())

	bestIdx, bestT, hit := bvh.QueryNearest(ray, func(idx int) (float64, bool) {
		if h, ok := tris[idx].Intersect(ray); ok {
			return h.Distance, true
		}
		return 0, false
	})

	wantIdx, wantT, wantHit := -1, 0.0, false
	for i, tri := range tris {
		if h, ok := tri.Intersect(ray); ok {
			if !wantHit || h.Distance < wantT {
				wantIdx, wantT, wantHit = i, h.Distance, true
			}
		}
	}

	if hit != wantHit {
		t.Fatalf("hit = %v, want %v", hit, wantHit)
	}
	if !hit {
		return
	}
	if bestIdx != wantIdx {
		t.Errorf("nearest index = %d, want %d", bestIdx, wantIdx)
	}
	if diff := bestT - wantT; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("nearest distance = %v, want %v", bestT, wantT)
	}
}
