package geometry

// MaxGroupVertices is the number of distinct vertices one group can address
// with uint16 indices.
const MaxGroupVertices = 1 << 16

// GroupStaging holds the growable per-group containers a mesh builder
// appends into. Positions, colors and normals take 3 values per vertex.
// Faces hold 3 indices per triangle or 6 per quad (see [GroupStaging.AppendQuad]);
// Lines hold 2 indices per segment.
type GroupStaging struct {
	Vertices Staging[float32]
	Colors   Staging[float32]
	Normals  Staging[float32]
	Faces    Staging[uint32]
	Lines    Staging[uint32]
}

// VertexCount returns the number of vertices appended so far.
func (s *GroupStaging) VertexCount() int {
	return s.Vertices.Len() / 3
}

// AppendVertex appends one vertex with its color and normal and returns its
// index within the group.
func (s *GroupStaging) AppendVertex(pos, color, normal [3]float32) uint32 {
	idx := uint32(s.VertexCount())
	s.Vertices.Append(pos[0], pos[1], pos[2])
	s.Colors.Append(color[0], color[1], color[2])
	s.Normals.Append(normal[0], normal[1], normal[2])
	return idx
}

// AppendTriangle appends one triangle face.
func (s *GroupStaging) AppendTriangle(a, b, c uint32) {
	s.Faces.Append(a, b, c)
}

// AppendQuad appends the quad a-b-c-d as two triangles sharing the b-d
// edge. The record is [a, b, d, b, c, d]: slots 0, 1, 4 and 2 are the four
// corners, slots 3 and 5 repeat b and d.
func (s *GroupStaging) AppendQuad(a, b, c, d uint32) {
	s.Faces.Append(a, b, d, b, c, d)
}

// AppendLine appends one line segment.
func (s *GroupStaging) AppendLine(a, b uint32) {
	s.Lines.Append(a, b)
}

// GroupBuffers are the fixed buffers of a finalized group. Channels whose
// staging container was empty are nil.
type GroupBuffers struct {
	Vertices *Buffer[float32]
	Colors   *Buffer[float32]
	Normals  *Buffer[float32]
	Faces    *Buffer[uint16]
	Lines    *Buffer[uint16]
}

// Group is an index-bounded partition of a mesh. It starts in the staging
// state and moves to the finalized state exactly once.
type Group struct {
	staging *GroupStaging
	buffers *GroupBuffers
}

// NewGroup returns an empty group in the staging state.
func NewGroup() *Group {
	return &Group{staging: &GroupStaging{}}
}

// Staging returns the group's growable containers, or nil once the group
// has been finalized.
func (g *Group) Staging() *GroupStaging {
	return g.staging
}

// Buffers returns the fixed buffers, or nil while the group is staging.
func (g *Group) Buffers() *GroupBuffers {
	return g.buffers
}

// Finalized reports whether the group has been sealed.
func (g *Group) Finalized() bool {
	return g.buffers != nil
}

// VertexCount returns the number of vertices in either state.
func (g *Group) VertexCount() int {
	if g.staging != nil {
		return g.staging.VertexCount()
	}
	return g.buffers.Vertices.Len() / 3
}

// finalize seals the staging containers and releases them. It returns the
// number of index values that did not fit in uint16.
func (g *Group) finalize() int {
	s := g.staging
	faces, faceOverflow := sealIndices(&s.Faces)
	lines, lineOverflow := sealIndices(&s.Lines)
	g.buffers = &GroupBuffers{
		Vertices: seal(&s.Vertices),
		Colors:   seal(&s.Colors),
		Normals:  seal(&s.Normals),
		Faces:    faces,
		Lines:    lines,
	}
	g.staging = nil
	return faceOverflow + lineOverflow
}
