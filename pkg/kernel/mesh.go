package kernel

import (
	"errors"
	"fmt"
)

// ErrMalformedMesh is returned by Mesh.Check.
var ErrMalformedMesh = errors.New("kernel: malformed mesh")

// Mesh is one origin-centered fragment as a kernel emits it: flat xyz
// positions and normals, and fragment-local triangle indices starting at 0.
// The tessellator rebases the indices when it copies the fragment into a
// geometry group.
type Mesh struct {
	Vertices []float32
	Normals  []float32
	Indices  []uint32
}

func (m *Mesh) VertexCount() int   { return len(m.Vertices) / 3 }
func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }
func (m *Mesh) IsEmpty() bool      { return len(m.Vertices) == 0 }

func (m *Mesh) Vertex(i int) [3]float32 {
	return [3]float32{m.Vertices[3*i], m.Vertices[3*i+1], m.Vertices[3*i+2]}
}

func (m *Mesh) Normal(i int) [3]float32 {
	return [3]float32{m.Normals[3*i], m.Normals[3*i+1], m.Normals[3*i+2]}
}

// Check reports a fragment the tessellator cannot copy: ragged position or
// normal arrays, a partial triangle, or an index past the last vertex.
func (m *Mesh) Check() error {
	switch {
	case len(m.Vertices)%3 != 0:
		return fmt.Errorf("%w: %d position floats", ErrMalformedMesh, len(m.Vertices))
	case len(m.Normals) != len(m.Vertices):
		return fmt.Errorf("%w: %d normal floats for %d position floats", ErrMalformedMesh, len(m.Normals), len(m.Vertices))
	case len(m.Indices)%3 != 0:
		return fmt.Errorf("%w: %d indices is not whole triangles", ErrMalformedMesh, len(m.Indices))
	}
	n := uint32(m.VertexCount())
	for i, idx := range m.Indices {
		if idx >= n {
			return fmt.Errorf("%w: index %d at slot %d, %d vertices", ErrMalformedMesh, idx, i, n)
		}
	}
	return nil
}
