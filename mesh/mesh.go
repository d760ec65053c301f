// Package mesh owns the triangle data a scene instance places into the
// world: a vertex table, a normal table, a face table, and a BVH built over
// the faces' own triangles.
package mesh

import "suntrace/geometry"

const (
	maxChildren = 4
	maxDepth    = 8
)

// Face is a triangular face: three (vertex-index, normal-index) pairs.
type Face struct {
	VertexIndex [3]int
	NormalIndex [3]int
}

// Mesh owns a vertex table, a normal table, a face table, and a BVH over
// its own triangles in the mesh's local space.
type Mesh struct {
	Vertices []geometry.Vec3
	Normals  []geometry.Vec3
	Faces    []Face

	triangles []geometry.Triangle
	bvh       *geometry.BVH
}

// New builds a Mesh from vertex/normal/face tables and builds its BVH. It
// panics if faces is empty, matching Build's precondition on the BVH it
// owns.
func New(vertices, normals []geometry.Vec3, faces []Face) *Mesh {
	m := &Mesh{Vertices: vertices, Normals: normals, Faces: faces}
	m.triangles = make([]geometry.Triangle, len(faces))
	shapes := make([]geometry.Bounded, len(faces))
	for i, f := range faces {
		tri := geometry.Triangle{
			Vertices: [3]geometry.Vec3{
				vertices[f.VertexIndex[0]],
				vertices[f.VertexIndex[1]],
				vertices[f.VertexIndex[2]],
			},
			Normals: [3]geometry.Vec3{
				normals[f.NormalIndex[0]],
				normals[f.NormalIndex[1]],
				normals[f.NormalIndex[2]],
			},
		}
		m.triangles[i] = tri
		shapes[i] = tri
	}
	m.bvh = geometry.Build(shapes, maxChildren, maxDepth)
	return m
}

// BVH exposes the mesh's own BVH, mainly for tests and diagnostics.
func (m *Mesh) BVH() *geometry.BVH { return m.bvh }

// TriangleCount reports how many triangular faces the mesh owns.
func (m *Mesh) TriangleCount() int { return len(m.triangles) }

// Intersect queries the mesh's BVH for the nearest-hit candidate and
// returns the full intersection record for the winning triangle, or false
// if the ray misses every triangle.
func (m *Mesh) Intersect(ray geometry.Ray) (geometry.Intersection, bool) {
	found := make(map[int]geometry.Intersection, 1)
	bestIdx, _, hit := m.bvh.QueryNearest(ray, func(idx int) (float64, bool) {
		isect, ok := m.triangles[idx].Intersect(ray)
		if !ok {
			return 0, false
		}
		found[idx] = isect
		return isect.Distance, true
	})
	if !hit {
		return geometry.Intersection{}, false
	}
	return found[bestIdx], true
}

// AABB returns the bounding box of the mesh's root BVH node, i.e. the
// union of every triangle's bounding box, in mesh-local space.
func (m *Mesh) AABB() geometry.AABB {
	return m.bvh.Nodes[0].Box
}
