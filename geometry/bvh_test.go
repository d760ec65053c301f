package geometry

import (
	"math"
	"testing"
)

type boxPrimitive struct {
	box AABB
}

func (p boxPrimitive) AABB() AABB { return p.box }

func gridBoxes(n int) []Bounded {
	shapes := make([]Bounded, n)
	for i := 0; i < n; i++ {
		x := float64(i)
		shapes[i] = boxPrimitive{AABB{
			Min: Vec3{x, 0, 0},
			Max: Vec3{x + 0.5, 1, 1},
		}}
	}
	return shapes
}

func TestBuildCoversEveryPrimitiveExactlyOnce(t *testing.T) {
	shapes := gridBoxes(37)
	bvh := Build(shapes, 4, 8)

	seen := make(map[int]int)
	for _, node := range bvh.Nodes {
		if node.Count == 0 {
			continue
		}
		for i := 0; i < node.Count; i++ {
			seen[bvh.Indices[node.FirstChild+i]]++
		}
	}

	if len(seen) != len(shapes) {
		t.Fatalf("expected %d distinct indices across leaves, got %d", len(shapes), len(seen))
	}
	for idx, count := range seen {
		if count != 1 {
			t.Errorf("primitive %d appears in %d leaves, want exactly 1", idx, count)
		}
	}
	if len(bvh.Nodes) > 2*len(shapes)-1 {
		t.Errorf("nodes_used %d exceeds 2N-1 = %d", len(bvh.Nodes), 2*len(shapes)-1)
	}
}

func TestBuildBoundsEncloseChildren(t *testing.T) {
	shapes := gridBoxes(20)
	bvh := Build(shapes, 4, 8)

	var check func(index int)
	check = func(index int) {
		node := bvh.Nodes[index]
		if node.Count != 0 {
			for i := 0; i < node.Count; i++ {
				prim := shapes[bvh.Indices[node.FirstChild+i]].AABB()
				if !encloses(node.Box, prim) {
					t.Errorf("leaf %d box does not enclose primitive box", index)
				}
			}
			return
		}
		lc := node.FirstChild
		left := bvh.Nodes[lc].Box
		right := bvh.Nodes[lc+1].Box
		if !encloses(node.Box, left) || !encloses(node.Box, right) {
			t.Errorf("node %d box does not enclose children", index)
		}
		check(lc)
		check(lc + 1)
	}
	check(0)
}

func encloses(outer, inner AABB) bool {
	const tol = 1e-9
	return outer.Min.X <= inner.Min.X+tol && outer.Min.Y <= inner.Min.Y+tol && outer.Min.Z <= inner.Min.Z+tol &&
		outer.Max.X >= inner.Max.X-tol && outer.Max.Y >= inner.Max.Y-tol && outer.Max.Z >= inner.Max.Z-tol
}

func TestQueryNearestMatchesExhaustiveScan(t *testing.T) {
	shapes := gridBoxes(25)
	boxes := make([]AABB, len(shapes))
	for i, s := range shapes {
		boxes[i] = s.AABB()
	}
	bvh := Build(shapes, 4, 8)

	ray := NewRay(Vec3{-5, 0.5, 0.5}, Vec3{1, 0, 0})

	gotIndex, gotT, gotHit := bvh.QueryNearest(ray, func(idx int) (float64, bool) {
		return boxes[idx].IntersectDistance(ray)
	})

	wantIndex, wantT, wantHit := -1, math.MaxFloat64, false
	for i, box := range boxes {
		if d, ok := box.IntersectDistance(ray); ok {
			if d < wantT {
				wantT, wantIndex, wantHit = d, i, true
			}
		}
	}

	if gotHit != wantHit {
		t.Fatalf("hit = %v, want %v", gotHit, wantHit)
	}
	if !gotHit {
		return
	}
	if math.Abs(gotT-wantT) > 1e-9 {
		t.Errorf("distance = %v, want %v", gotT, wantT)
	}
	if gotIndex != wantIndex {
		t.Errorf("index = %d, want %d", gotIndex, wantIndex)
	}
}

func TestQueryNearestBreaksTiesBySmallerIndex(t *testing.T) {
	shapes := []Bounded{
		boxPrimitive{AABB{Min: Vec3{0, 0, 0}, Max: Vec3{1, 1, 1}}},
		boxPrimitive{AABB{Min: Vec3{0, 0, 0}, Max: Vec3{1, 1, 1}}},
	}
	bvh := Build(shapes, 2, 8)
	ray := NewRay(Vec3{0.5, 0.5, -5}, Vec3{0, 0, 1})

	idx, _, hit := bvh.QueryNearest(ray, func(i int) (float64, bool) {
		return 5.0, true
	})
	if !hit {
		t.Fatal("expected a hit")
	}
	if idx != 0 {
		t.Errorf("tie-break winner = %d, want 0 (smaller index)", idx)
	}
}

func TestQueryAllSortedByEntryDistance(t *testing.T) {
	shapes := gridBoxes(10)
	boxes := make([]AABB, len(shapes))
	for i, s := range shapes {
		boxes[i] = s.AABB()
	}
	bvh := Build(shapes, 2, 8)

	ray := NewRay(Vec3{-5, 0.5, 0.5}, Vec3{1, 0, 0})
	hits := bvh.QueryAll(ray, boxes)

	if len(hits) == 0 {
		t.Fatal("expected at least one hit")
	}
	for i := 1; i < len(hits); i++ {
		if hits[i-1].Entry > hits[i].Entry {
			t.Fatalf("hits not sorted ascending at %d: %v then %v", i, hits[i-1].Entry, hits[i].Entry)
		}
	}
}

func TestBuildPanicsOnEmptyInput(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on empty primitive slice")
		}
	}()
	Build(nil, 4, 8)
}
