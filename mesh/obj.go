package mesh

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"suntrace/geometry"
)

// LoadOBJ parses the Wavefront OBJ subset this tracer accepts: "v x y z"
// vertex positions, "vn x y z" vertex normals, and triangular
// "f a/?/na b/?/nb c/?/nc" faces (the texcoord slot is ignored). Indices are
// 1-based in the file and converted to 0-based. Any other malformed line
// that looks like one of these directives is a fatal error.
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mesh: open %q: %w", path, err)
	}
	defer f.Close()

	var vertices, normals []geometry.Vec3
	var faces []Face

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "v":
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("mesh: %q line %d: %w", path, lineNo, err)
			}
			vertices = append(vertices, v)

		case "vn":
			n, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("mesh: %q line %d: %w", path, lineNo, err)
			}
			normals = append(normals, n)

		case "f":
			face, err := parseFace(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("mesh: %q line %d: %w", path, lineNo, err)
			}
			faces = append(faces, face)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("mesh: scan %q: %w", path, err)
	}

	if len(faces) == 0 {
		return nil, fmt.Errorf("mesh: %q contains no triangular faces", path)
	}
	if err := validateIndices(faces, len(vertices), len(normals)); err != nil {
		return nil, fmt.Errorf("mesh: %q: %w", path, err)
	}

	return New(vertices, normals, faces), nil
}

func parseVec3(tokens []string) (geometry.Vec3, error) {
	if len(tokens) < 3 {
		return geometry.Vec3{}, fmt.Errorf("expected 3 components, got %d", len(tokens))
	}
	x, err := strconv.ParseFloat(tokens[0], 64)
	if err != nil {
		return geometry.Vec3{}, fmt.Errorf("bad x component %q: %w", tokens[0], err)
	}
	y, err := strconv.ParseFloat(tokens[1], 64)
	if err != nil {
		return geometry.Vec3{}, fmt.Errorf("bad y component %q: %w", tokens[1], err)
	}
	z, err := strconv.ParseFloat(tokens[2], 64)
	if err != nil {
		return geometry.Vec3{}, fmt.Errorf("bad z component %q: %w", tokens[2], err)
	}
	return geometry.Vec3{X: x, Y: y, Z: z}, nil
}

// parseFace parses exactly three "v/?/vn" tokens into a Face. The texcoord
// slot, if present, is ignored; only triangular faces are supported.
func parseFace(tokens []string) (Face, error) {
	if len(tokens) != 3 {
		return Face{}, fmt.Errorf("only triangular faces are supported, got %d vertices", len(tokens))
	}
	var face Face
	for i, tok := range tokens {
		parts := strings.Split(tok, "/")
		if len(parts) != 3 {
			return Face{}, fmt.Errorf("face vertex %q must be of the form v/texcoord/vn", tok)
		}
		vIdx, err := strconv.Atoi(parts[0])
		if err != nil {
			return Face{}, fmt.Errorf("bad vertex index %q: %w", parts[0], err)
		}
		nIdx, err := strconv.Atoi(parts[2])
		if err != nil {
			return Face{}, fmt.Errorf("bad normal index %q: %w", parts[2], err)
		}
		face.VertexIndex[i] = vIdx - 1
		face.NormalIndex[i] = nIdx - 1
	}
	return face, nil
}

func validateIndices(faces []Face, numVertices, numNormals int) error {
	for _, f := range faces {
		for _, vi := range f.VertexIndex {
			if vi < 0 || vi >= numVertices {
				return fmt.Errorf("vertex index %d out of range [0,%d)", vi, numVertices)
			}
		}
		for _, ni := range f.NormalIndex {
			if ni < 0 || ni >= numNormals {
				return fmt.Errorf("normal index %d out of range [0,%d)", ni, numNormals)
			}
		}
	}
	return nil
}
