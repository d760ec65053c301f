package mesh

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"suntrace/geometry"
)

// LoadGLTF opens a .glb or .gltf file and builds one Mesh per mesh
// primitive found in the document, reading positions, vertex normals and
// triangle indices only — materials, textures and the node hierarchy are a
// GPU-renderer concern this tracer has no use for.
func LoadGLTF(path string) ([]*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mesh: gltf open %q: %w", path, err)
	}

	var meshes []*Mesh
	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			m, err := loadPrimitive(doc, *prim)
			if err != nil {
				return nil, fmt.Errorf("mesh: %q mesh %d primitive %d: %w", path, mi, pi, err)
			}
			meshes = append(meshes, m)
		}
	}
	if len(meshes) == 0 {
		return nil, fmt.Errorf("mesh: %q contains no mesh primitives", path)
	}
	return meshes, nil
}

func loadPrimitive(doc *gltf.Document, prim gltf.Primitive) (*Mesh, error) {
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("primitive has no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	var rawNormals [][3]float32
	if idx, ok := prim.Attributes["NORMAL"]; ok {
		rawNormals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil)
		if err != nil {
			return nil, fmt.Errorf("normals: %w", err)
		}
	}

	if prim.Indices == nil {
		return nil, fmt.Errorf("primitive has no index buffer; only indexed triangle lists are supported")
	}
	rawIndices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
	if err != nil {
		return nil, fmt.Errorf("indices: %w", err)
	}
	if len(rawIndices)%3 != 0 {
		return nil, fmt.Errorf("index count %d is not a multiple of 3", len(rawIndices))
	}

	vertices := make([]geometry.Vec3, len(positions))
	for i, p := range positions {
		vertices[i] = geometry.Vec3{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}
	}

	normals := make([]geometry.Vec3, len(positions))
	if len(rawNormals) == len(positions) {
		for i, n := range rawNormals {
			normals[i] = geometry.Vec3{X: float64(n[0]), Y: float64(n[1]), Z: float64(n[2])}
		}
	} else {
		computeVertexNormals(vertices, rawIndices, normals)
	}

	faces := make([]Face, len(rawIndices)/3)
	for i := range faces {
		a, b, c := int(rawIndices[i*3]), int(rawIndices[i*3+1]), int(rawIndices[i*3+2])
		faces[i] = Face{
			VertexIndex: [3]int{a, b, c},
			NormalIndex: [3]int{a, b, c},
		}
	}

	return New(vertices, normals, faces), nil
}

// computeVertexNormals area-weights face normals into a per-vertex table
// when the glTF primitive carries no NORMAL attribute of its own.
func computeVertexNormals(vertices []geometry.Vec3, indices []uint32, out []geometry.Vec3) {
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		n := vertices[b].Sub(vertices[a]).Cross(vertices[c].Sub(vertices[a]))
		out[a] = out[a].Add(n)
		out[b] = out[b].Add(n)
		out[c] = out[c].Add(n)
	}
	for i := range out {
		out[i] = out[i].Normalize()
	}
}
