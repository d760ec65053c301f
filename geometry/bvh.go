package geometry

import (
	"math"
	"sort"
)

// Bounded is anything that can report its own world-space bounding box, so
// it can be fed into Build.
type Bounded interface {
	AABB() AABB
}

// BVHNode is one node of a flattened bounding volume hierarchy. Count == 0
// marks an interior node whose children are at indices FirstChild and
// FirstChild+1; Count > 0 marks a leaf whose primitives are
// Indices[FirstChild:FirstChild+Count] of the owning BVH.
type BVHNode struct {
	Box        AABB
	FirstChild int
	Count      int
}

// BVH is an owned primitive-index permutation plus a flat node array built
// over a caller-supplied slice of Bounded primitives.
type BVH struct {
	Nodes   []BVHNode
	Indices []int
	Depth   int
}

// Hit is a candidate primitive returned by QueryAll: the primitive index and
// the ray's entry distance into its bounding box.
type Hit struct {
	Index int
	Entry float64
}

// Build constructs a BVH over shapes. maxChildren bounds leaf size (must be
// >= 2); maxDepth bounds recursion depth (must be >= 1). Panics if shapes is
// empty, mirroring the debug-assertion the original carries as an
// unconditional precondition.
func Build(shapes []Bounded, maxChildren, maxDepth int) *BVH {
	if len(shapes) == 0 {
		panic("geometry: BVH must contain at least one primitive")
	}
	if maxChildren < 2 {
		panic("geometry: BVH max children must be at least two")
	}
	if maxDepth < 1 {
		panic("geometry: BVH max depth must be at least one")
	}

	n := len(shapes)
	b := &bvhBuilder{
		shapes:  shapes,
		indices: make([]int, n),
		nodes:   make([]BVHNode, 2*n-1),
	}
	for i := range b.indices {
		b.indices[i] = i
	}
	for i := range b.nodes {
		b.nodes[i].Box = EmptyAABB()
	}
	b.nodes[0].FirstChild = 0
	b.nodes[0].Count = n
	b.nodesUsed = 1

	b.updateBounds(0)
	depth := b.subdivide(0, maxChildren, maxDepth, 0)

	return &BVH{
		Nodes:   b.nodes[:b.nodesUsed],
		Indices: b.indices,
		Depth:   depth,
	}
}

type bvhBuilder struct {
	shapes    []Bounded
	indices   []int
	nodes     []BVHNode
	nodesUsed int
}

func (b *bvhBuilder) updateBounds(index int) {
	node := &b.nodes[index]
	box := node.Box
	for i := 0; i < node.Count; i++ {
		box = box.Union(b.shapes[b.indices[node.FirstChild+i]].AABB())
	}
	node.Box = box
}

func (b *bvhBuilder) subdivide(index, maxChildren, maxDepth, currentDepth int) int {
	node := &b.nodes[index]
	if node.Count <= maxChildren || currentDepth >= maxDepth {
		return currentDepth
	}

	extent := [3]float64{
		node.Box.Max.X - node.Box.Min.X,
		node.Box.Max.Y - node.Box.Min.Y,
		node.Box.Max.Z - node.Box.Min.Z,
	}
	axis := 0
	if extent[1] > extent[axis] {
		axis = 1
	}
	if extent[2] > extent[axis] {
		axis = 2
	}

	splitPos := node.Box.Min.Component(axis) + extent[axis]*0.5

	i := node.FirstChild
	j := i + node.Count - 1

	for i <= j {
		if b.shapes[b.indices[i]].AABB().Centre().Component(axis) < splitPos {
			i++
		} else {
			b.indices[i], b.indices[j] = b.indices[j], b.indices[i]
			if j == 0 {
				return currentDepth
			}
			j--
		}
	}

	leftCount := i - node.FirstChild
	if leftCount == 0 || leftCount == node.Count {
		return currentDepth
	}

	leftIndex := b.nodesUsed
	b.nodesUsed++
	rightIndex := b.nodesUsed
	b.nodesUsed++

	b.nodes[leftIndex].FirstChild = node.FirstChild
	b.nodes[leftIndex].Count = leftCount

	b.nodes[rightIndex].FirstChild = i
	b.nodes[rightIndex].Count = node.Count - leftCount

	// Re-fetch node: the slice backing array is unchanged but indexing via
	// the cached pointer after nodesUsed grows is still valid since nodes
	// was allocated to its final 2N-1 size up front.
	b.nodes[index].FirstChild = leftIndex
	b.nodes[index].Count = 0

	b.updateBounds(leftIndex)
	b.updateBounds(rightIndex)
	leftDepth := b.subdivide(leftIndex, maxChildren, maxDepth, currentDepth+1)
	rightDepth := b.subdivide(rightIndex, maxChildren, maxDepth, currentDepth+1)

	if rightDepth > leftDepth {
		return rightDepth
	}
	return leftDepth
}

// QueryAll returns every leaf primitive whose bounding box the ray hits,
// sorted by AABB entry distance ascending. boxes provides the per-primitive
// AABB used for the actual ray/box test; it may differ from the Bounded
// values used at build time (e.g. mesh-local vs world-space boxes).
func (bvh *BVH) QueryAll(ray Ray, boxes []AABB) []Hit {
	var hits []Hit
	bvh.queryAllNode(0, ray, boxes, &hits)
	sort.Slice(hits, func(i, j int) bool { return hits[i].Entry < hits[j].Entry })
	return hits
}

func (bvh *BVH) queryAllNode(nodeIndex int, ray Ray, boxes []AABB, hits *[]Hit) {
	node := &bvh.Nodes[nodeIndex]
	if _, ok := node.Box.IntersectDistance(ray); !ok {
		return
	}
	if node.Count == 0 {
		lc := node.FirstChild
		bvh.queryAllNode(lc, ray, boxes, hits)
		bvh.queryAllNode(lc+1, ray, boxes, hits)
		return
	}
	for i := 0; i < node.Count; i++ {
		idx := bvh.Indices[node.FirstChild+i]
		if dist, ok := boxes[idx].IntersectDistance(ray); ok {
			*hits = append(*hits, Hit{Index: idx, Entry: dist})
		}
	}
}

// QueryNearest descends the BVH pruning by AABB entry distance against a
// running best_t, calling test for every leaf primitive. test reports the
// primitive's own hit distance (if any); QueryNearest keeps the smallest
// positive distance, breaking exact ties in favour of the smaller primitive
// index. Returns (-1, false) on a total miss.
func (bvh *BVH) QueryNearest(ray Ray, test func(primitiveIndex int) (float64, bool)) (int, float64, bool) {
	bestIndex := -1
	bestT := math.MaxFloat64
	bvh.queryNearestNode(0, ray, test, &bestIndex, &bestT)
	if bestIndex < 0 {
		return -1, 0, false
	}
	return bestIndex, bestT, true
}

func (bvh *BVH) queryNearestNode(nodeIndex int, ray Ray, test func(int) (float64, bool), bestIndex *int, bestT *float64) {
	node := &bvh.Nodes[nodeIndex]
	entry, ok := node.Box.IntersectDistance(ray)
	if !ok || entry >= *bestT {
		return
	}

	if node.Count == 0 {
		lc := node.FirstChild
		leftEntry, leftOK := bvh.Nodes[lc].Box.IntersectDistance(ray)
		rightEntry, rightOK := bvh.Nodes[lc+1].Box.IntersectDistance(ray)

		first, second := lc, lc+1
		firstOK, secondOK := leftOK, rightOK
		firstEntry, secondEntry := leftEntry, rightEntry
		if rightOK && (!leftOK || rightEntry < leftEntry) {
			first, second = lc+1, lc
			firstOK, secondOK = rightOK, leftOK
			firstEntry, secondEntry = rightEntry, leftEntry
		}

		if firstOK && firstEntry < *bestT {
			bvh.queryNearestNode(first, ray, test, bestIndex, bestT)
		}
		if secondOK && secondEntry < *bestT {
			bvh.queryNearestNode(second, ray, test, bestIndex, bestT)
		}
		return
	}

	for i := 0; i < node.Count; i++ {
		idx := bvh.Indices[node.FirstChild+i]
		t, hit := test(idx)
		if !hit {
			continue
		}
		if t < *bestT || (t == *bestT && idx < *bestIndex) {
			*bestT = t
			*bestIndex = idx
		}
	}
}
