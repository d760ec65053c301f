package scene

import (
	"suntrace/core"
	"suntrace/geometry"
	"suntrace/mesh"
	remath "suntrace/math"
)

// Instance places one mesh into the scene via a transform, and names the
// attribute key its surface is shaded with. Instancing the same *mesh.Mesh
// under several transforms reuses its BVH build instead of repeating it.
type Instance struct {
	Mesh      *mesh.Mesh
	Transform core.Transform
	Attribute string
}

// worldTriangle is one instance's triangle transformed into world space,
// tagged with the attribute its surface shades with. The scene's global
// BVH is built over a flattened slice of these.
type worldTriangle struct {
	geometry.Triangle
	Attribute string
}

func (t worldTriangle) AABB() geometry.AABB { return t.Triangle.AABB() }

// worldTriangles transforms every triangle of inst.Mesh by inst.Transform's
// matrix, returning them tagged with the instance's attribute key. Normals
// are transformed by the matrix's upper 3x3 and renormalised, which keeps
// them correct under rotation and uniform scale; under non-uniform scale
// the shading normals are not corrected (see transformNormal).
func (inst *Instance) worldTriangles() []worldTriangle {
	m := inst.Transform.GetMatrix()
	out := make([]worldTriangle, inst.Mesh.TriangleCount())
	for i, face := range inst.Mesh.Faces {
		var verts [3]geometry.Vec3
		var norms [3]geometry.Vec3
		for c := 0; c < 3; c++ {
			verts[c] = transformPoint(m, inst.Mesh.Vertices[face.VertexIndex[c]])
			norms[c] = transformNormal(m, inst.Mesh.Normals[face.NormalIndex[c]]).Normalize()
		}
		out[i] = worldTriangle{
			Triangle:  geometry.Triangle{Vertices: verts, Normals: norms},
			Attribute: inst.Attribute,
		}
	}
	return out
}

// transformPoint applies m (row-vector convention, as built by
// core.Transform.GetMatrix) to a float64 point, going through the
// existing float32 Mat4/Vec3 helpers that the rest of the module's
// instance-placement math already uses.
func transformPoint(m remath.Mat4, p geometry.Vec3) geometry.Vec3 {
	v := remath.Vec3{X: float32(p.X), Y: float32(p.Y), Z: float32(p.Z)}
	r := m.MulVec3(v)
	return geometry.Vec3{X: float64(r.X), Y: float64(r.Y), Z: float64(r.Z)}
}

// transformNormal applies only m's upper 3x3 (no translation) to a
// direction, which is correct for uniform scale and rotation; non-uniform
// scale would need the inverse transpose, which this tracer's instance
// placement does not expose as a separate concern.
func transformNormal(m remath.Mat4, n geometry.Vec3) geometry.Vec3 {
	v := remath.Vec3{X: float32(n.X), Y: float32(n.Y), Z: float32(n.Z)}
	r := remath.Vec3{
		X: v.X*m[0][0] + v.Y*m[1][0] + v.Z*m[2][0],
		Y: v.X*m[0][1] + v.Y*m[1][1] + v.Z*m[2][1],
		Z: v.X*m[0][2] + v.Y*m[1][2] + v.Z*m[2][2],
	}
	return geometry.Vec3{X: float64(r.X), Y: float64(r.Y), Z: float64(r.Z)}
}
