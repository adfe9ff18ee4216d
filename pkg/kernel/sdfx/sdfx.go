// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library. Surfaces are sampled with
// marching cubes, so fragments are heavier than the parametric kernel's
// but smooth at any scale.
package sdfx

import (
	"fmt"

	"github.com/chazu/molmesh/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// DefaultMeshCells controls marching cubes resolution along the longest
// bounding box axis of each fragment.
const DefaultMeshCells = 32

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells int
}

// New returns a new SdfxKernel sampling each fragment with the given
// number of marching cubes cells. cells <= 0 selects DefaultMeshCells.
func New(cells int) *SdfxKernel {
	if cells <= 0 {
		cells = DefaultMeshCells
	}
	return &SdfxKernel{cells: cells}
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

// Name returns "sdfx".
func (k *SdfxKernel) Name() string {
	return "sdfx"
}

// Cells returns the marching cubes resolution.
func (k *SdfxKernel) Cells() int {
	return k.cells
}

// Sphere creates a sphere centered on the origin. The segments parameter is
// ignored since SDF represents smooth surfaces.
func (k *SdfxKernel) Sphere(radius float64, _ int) kernel.Solid {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Sphere3D: %v", err))
	}
	return wrap(s)
}

// Cylinder creates a cylinder along Z centered on the origin.
// The segments parameter is ignored.
func (k *SdfxKernel) Cylinder(height, radius float64, _ int) kernel.Solid {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Cylinder3D: %v", err))
	}
	return wrap(s)
}

// Translate moves a solid by (x, y, z).
func (k *SdfxKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	m := sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// Orient rotates a solid so that its +Z axis points along (x, y, z).
// A zero direction leaves the solid unchanged.
func (k *SdfxKernel) Orient(s kernel.Solid, x, y, z float64) kernel.Solid {
	dir := v3.Vec{X: x, Y: y, Z: z}
	if dir.Length() == 0 {
		return s
	}
	m := sdf.RotateToVector(v3.Vec{Z: 1}, dir.Normalize())
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// ToMesh samples a solid with marching cubes. Corners the cubes emit at the
// same position are welded into one vertex whose normal is the average of
// the adjoining face normals, which keeps a fragment well inside a
// geometry group's vertex limit. Triangles that collapse after welding are
// dropped.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	triangles := render.ToTriangles(unwrap(s), render.NewMarchingCubesUniform(k.cells))

	m := &kernel.Mesh{Indices: make([]uint32, 0, len(triangles)*3)}
	welded := make(map[[3]float32]uint32, len(triangles)/2)
	var sums []v3.Vec
	for _, tri := range triangles {
		var ids [3]uint32
		for j := 0; j < 3; j++ {
			p := [3]float32{float32(tri[j].X), float32(tri[j].Y), float32(tri[j].Z)}
			id, ok := welded[p]
			if !ok {
				id = uint32(len(sums))
				welded[p] = id
				m.Vertices = append(m.Vertices, p[0], p[1], p[2])
				sums = append(sums, v3.Vec{})
			}
			ids[j] = id
		}
		if ids[0] == ids[1] || ids[1] == ids[2] || ids[2] == ids[0] {
			continue
		}
		n := tri.Normal()
		for _, id := range ids {
			sums[id] = sums[id].Add(n)
		}
		m.Indices = append(m.Indices, ids[0], ids[1], ids[2])
	}

	m.Normals = make([]float32, 0, len(m.Vertices))
	for _, n := range sums {
		if n.Length() == 0 {
			n = v3.Vec{Z: 1}
		}
		n = n.Normalize()
		m.Normals = append(m.Normals, float32(n.X), float32(n.Y), float32(n.Z))
	}
	return m, nil
}
