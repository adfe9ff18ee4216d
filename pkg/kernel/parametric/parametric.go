// Package parametric implements the kernel.Kernel interface with analytic
// UV spheres and capped cylinders. Meshes are exact for the requested
// segment count and much cheaper than sampling a distance field, which
// makes this the default backend for atom and bond fragments.
package parametric

import (
	"cogentcore.org/core/math32"

	"github.com/chazu/molmesh/pkg/kernel"
)

// Compile-time interface check.
var _ kernel.Kernel = (*ParametricKernel)(nil)

const (
	minSphereSegments   = 4
	minCylinderSegments = 3
)

// solid is an indexed triangle mesh held in float32 vectors.
type solid struct {
	verts   []math32.Vector3
	norms   []math32.Vector3
	indices []uint32
}

// BoundingBox returns the axis-aligned bounding box.
func (s *solid) BoundingBox() (min, max [3]float64) {
	bb := math32.Box3{}
	bb.SetEmpty()
	for _, v := range s.verts {
		bb.ExpandByPoint(v)
	}
	if bb.IsEmpty() {
		return min, max
	}
	min = [3]float64{float64(bb.Min.X), float64(bb.Min.Y), float64(bb.Min.Z)}
	max = [3]float64{float64(bb.Max.X), float64(bb.Max.Y), float64(bb.Max.Z)}
	return min, max
}

// mapped returns a copy of s with fv applied to every vertex and fn to
// every normal. Indices are shared; they are never mutated.
func (s *solid) mapped(fv, fn func(math32.Vector3) math32.Vector3) *solid {
	out := &solid{
		verts:   make([]math32.Vector3, len(s.verts)),
		norms:   make([]math32.Vector3, len(s.norms)),
		indices: s.indices,
	}
	for i, v := range s.verts {
		out.verts[i] = fv(v)
	}
	for i, n := range s.norms {
		out.norms[i] = fn(n)
	}
	return out
}

// ParametricKernel implements kernel.Kernel with generated UV meshes.
type ParametricKernel struct{}

// New returns a new ParametricKernel.
func New() *ParametricKernel {
	return &ParametricKernel{}
}

func unwrap(s kernel.Solid) *solid {
	return s.(*solid)
}

// Name returns "parametric".
func (k *ParametricKernel) Name() string {
	return "parametric"
}

// Sphere returns a UV sphere with segments sectors around Z and
// segments/2 rings from pole to pole.
func (k *ParametricKernel) Sphere(radius float64, segments int) kernel.Solid {
	sectors := max(segments, minSphereSegments)
	rings := max(sectors/2, 2)
	r := float32(radius)

	s := &solid{
		verts:   make([]math32.Vector3, 0, (rings+1)*(sectors+1)),
		norms:   make([]math32.Vector3, 0, (rings+1)*(sectors+1)),
		indices: make([]uint32, 0, rings*sectors*6),
	}
	for i := 0; i <= rings; i++ {
		theta := float32(i) / float32(rings) * math32.Pi
		st, ct := math32.Sin(theta), math32.Cos(theta)
		for j := 0; j <= sectors; j++ {
			phi := float32(j) / float32(sectors) * 2 * math32.Pi
			n := math32.Vec3(st*math32.Cos(phi), st*math32.Sin(phi), ct)
			s.norms = append(s.norms, n)
			s.verts = append(s.verts, n.MulScalar(r))
		}
	}
	stride := uint32(sectors + 1)
	for i := 0; i < rings; i++ {
		for j := 0; j < sectors; j++ {
			a := uint32(i)*stride + uint32(j)
			b := a + stride
			s.indices = append(s.indices, a, b, a+1, a+1, b, b+1)
		}
	}
	return s
}

// Cylinder returns a capped cylinder of the given height along Z, centered
// on the origin. The side and the caps have separate vertices so that cap
// normals stay flat.
func (k *ParametricKernel) Cylinder(height, radius float64, segments int) kernel.Solid {
	segs := max(segments, minCylinderSegments)
	r := float32(radius)
	h := float32(height) / 2

	s := &solid{}
	ring := func(j int) (float32, float32) {
		phi := float32(j) / float32(segs) * 2 * math32.Pi
		return math32.Cos(phi), math32.Sin(phi)
	}

	// side: bottom/top vertex pairs
	for j := 0; j <= segs; j++ {
		c, sn := ring(j)
		n := math32.Vec3(c, sn, 0)
		s.verts = append(s.verts, math32.Vec3(r*c, r*sn, -h), math32.Vec3(r*c, r*sn, h))
		s.norms = append(s.norms, n, n)
	}
	for j := 0; j < segs; j++ {
		b0 := uint32(2 * j)
		t0, b1, t1 := b0+1, b0+2, b0+3
		s.indices = append(s.indices, b0, b1, t0, t0, b1, t1)
	}

	// caps: center then ring, wound outward
	for _, z := range [2]float32{h, -h} {
		n := math32.Vec3(0, 0, math32.Sign(z))
		center := uint32(len(s.verts))
		s.verts = append(s.verts, math32.Vec3(0, 0, z))
		s.norms = append(s.norms, n)
		for j := 0; j <= segs; j++ {
			c, sn := ring(j)
			s.verts = append(s.verts, math32.Vec3(r*c, r*sn, z))
			s.norms = append(s.norms, n)
		}
		for j := uint32(0); j < uint32(segs); j++ {
			p, q := center+1+j, center+2+j
			if z > 0 {
				s.indices = append(s.indices, center, p, q)
			} else {
				s.indices = append(s.indices, center, q, p)
			}
		}
	}
	return s
}

// Translate moves a solid by (x, y, z).
func (k *ParametricKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	d := math32.Vec3(float32(x), float32(y), float32(z))
	keep := func(n math32.Vector3) math32.Vector3 { return n }
	return unwrap(s).mapped(func(v math32.Vector3) math32.Vector3 { return v.Add(d) }, keep)
}

// Orient rotates a solid so that its +Z axis points along (x, y, z).
// A zero direction leaves the solid unchanged.
func (k *ParametricKernel) Orient(s kernel.Solid, x, y, z float64) kernel.Solid {
	dir := math32.Vec3(float32(x), float32(y), float32(z))
	if dir.Length() == 0 {
		return s
	}
	var q math32.Quat
	q.SetFromUnitVectors(math32.Vec3(0, 0, 1), dir.Normal())
	rot := func(v math32.Vector3) math32.Vector3 { return v.MulQuat(q) }
	return unwrap(s).mapped(rot, rot)
}

// ToMesh flattens a solid into a kernel mesh.
func (k *ParametricKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	sl := unwrap(s)
	m := &kernel.Mesh{
		Vertices: make([]float32, 0, len(sl.verts)*3),
		Normals:  make([]float32, 0, len(sl.norms)*3),
		Indices:  append([]uint32(nil), sl.indices...),
	}
	for i, v := range sl.verts {
		n := sl.norms[i]
		m.Vertices = append(m.Vertices, v.X, v.Y, v.Z)
		m.Normals = append(m.Normals, n.X, n.Y, n.Z)
	}
	return m, nil
}
