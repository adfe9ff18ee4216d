package geometry

import "fmt"

// Geometry is the drawable data owned by a [Mesh]. It is either a [*Grouped]
// indexed mesh or a [*Flat] line drawing; the variant is fixed when the value
// is created.
type Geometry interface {
	isGeometry()
}

// Grouped is an indexed mesh split into groups of at most limit vertices.
type Grouped struct {
	groups []*Group
	limit  int
}

func (*Grouped) isGeometry() {}

// NewGrouped returns an empty grouped geometry using the full uint16 range
// per group.
func NewGrouped() *Grouped {
	return &Grouped{limit: MaxGroupVertices}
}

// NewGroupedLimit returns an empty grouped geometry whose groups hold at most
// limit vertices. Values outside (0, MaxGroupVertices] use MaxGroupVertices.
func NewGroupedLimit(limit int) *Grouped {
	if limit <= 0 || limit > MaxGroupVertices {
		limit = MaxGroupVertices
	}
	return &Grouped{limit: limit}
}

// Limit returns the per-group vertex bound.
func (g *Grouped) Limit() int {
	if g.limit == 0 {
		return MaxGroupVertices
	}
	return g.limit
}

// Groups returns the groups in order. The slice is owned by g.
func (g *Grouped) Groups() []*Group {
	return g.groups
}

// Len returns the number of groups.
func (g *Grouped) Len() int {
	return len(g.groups)
}

// Group returns the i-th group.
func (g *Grouped) Group(i int) *Group {
	return g.groups[i]
}

// AddGroup appends a new empty group and returns it.
func (g *Grouped) AddGroup() *Group {
	grp := NewGroup()
	g.groups = append(g.groups, grp)
	return grp
}

// GroupFor returns a staging group with room for n more vertices, opening a
// new group when the last one is finalized or would cross the limit. It
// also returns the index the first of those vertices will get.
//
// Asking for more vertices than a single group can hold is a programming
// error and panics.
func (g *Grouped) GroupFor(n int) (*Group, uint32) {
	if n > g.Limit() {
		panic(fmt.Sprintf("geometry: %d vertices exceed the group limit of %d", n, g.Limit()))
	}
	if len(g.groups) > 0 {
		last := g.groups[len(g.groups)-1]
		if !last.Finalized() && last.VertexCount()+n <= g.Limit() {
			return last, uint32(last.VertexCount())
		}
	}
	return g.AddGroup(), 0
}

// VertexCount returns the total number of vertices over all groups.
func (g *Grouped) VertexCount() int {
	n := 0
	for _, grp := range g.groups {
		n += grp.VertexCount()
	}
	return n
}

// FlatStaging holds the growable vertex and color containers of a line
// drawing. Consecutive vertex pairs form segments.
type FlatStaging struct {
	Vertices Staging[float32]
	Colors   Staging[float32]
}

// AppendVertex appends one vertex and its color.
func (s *FlatStaging) AppendVertex(pos, color [3]float32) {
	s.Vertices.Append(pos[0], pos[1], pos[2])
	s.Colors.Append(color[0], color[1], color[2])
}

// AppendSegment appends a line segment drawn in a single color.
func (s *FlatStaging) AppendSegment(from, to, color [3]float32) {
	s.AppendVertex(from, color)
	s.AppendVertex(to, color)
}

// FlatBuffers are the fixed buffers of a finalized flat geometry.
type FlatBuffers struct {
	Vertices *Buffer[float32]
	Colors   *Buffer[float32]
}

// Flat is an ungrouped line drawing (unit cells, bounding boxes).
type Flat struct {
	staging *FlatStaging
	buffers *FlatBuffers
}

func (*Flat) isGeometry() {}

// NewFlat returns an empty flat geometry in the staging state.
func NewFlat() *Flat {
	return &Flat{staging: &FlatStaging{}}
}

// Staging returns the growable containers, or nil once finalized.
func (f *Flat) Staging() *FlatStaging {
	return f.staging
}

// Buffers returns the fixed buffers, or nil while staging.
func (f *Flat) Buffers() *FlatBuffers {
	return f.buffers
}

// Finalized reports whether the geometry has been sealed.
func (f *Flat) Finalized() bool {
	return f.buffers != nil
}

// VertexCount returns the number of vertices in either state.
func (f *Flat) VertexCount() int {
	if f.staging != nil {
		return f.staging.Vertices.Len() / 3
	}
	return f.buffers.Vertices.Len() / 3
}

// Side selects which triangle faces of a mesh are drawn.
type Side int

const (
	FrontSide Side = iota // counter-clockwise faces only; the zero value
	BackSide
	DoubleSide // open surfaces such as ribbons
)

func (s Side) String() string {
	switch s {
	case FrontSide:
		return "front"
	case BackSide:
		return "back"
	case DoubleSide:
		return "double"
	}
	return fmt.Sprintf("Side(%d)", int(s))
}

// Mesh is a named drawable owning exactly one Geometry. A nil Geometry
// means the mesh produced no drawable data.
type Mesh struct {
	Name     string
	Geometry Geometry
	Side     Side
}

// NewMesh returns a mesh owning g.
func NewMesh(name string, g Geometry) *Mesh {
	return &Mesh{Name: name, Geometry: g}
}

// Grouped returns the mesh geometry as a grouped geometry, or nil.
func (m *Mesh) Grouped() *Grouped {
	g, _ := m.Geometry.(*Grouped)
	return g
}

// Flat returns the mesh geometry as a flat geometry, or nil.
func (m *Mesh) Flat() *Flat {
	f, _ := m.Geometry.(*Flat)
	return f
}

// IsEmpty reports whether the mesh carries no vertices.
func (m *Mesh) IsEmpty() bool {
	switch g := m.Geometry.(type) {
	case *Grouped:
		return g == nil || g.VertexCount() == 0
	case *Flat:
		return g == nil || g.VertexCount() == 0
	}
	return true
}
