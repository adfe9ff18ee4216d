package geometry

import "cogentcore.org/core/math32"

// AccumulateNormals adds the flat normal of every quad face onto the normal
// slots of its four corners, for each group of g still staging.
//
// Faces are read as 6-slot quad records (see [GroupStaging.AppendQuad]) with
// corners a=slot 0, b=slot 1, c=slot 4, d=slot 2. The face normal is the
// normalized cross product (c-b) x (a-b); a degenerate face contributes
// nothing. The summed normals are not normalized.
//
// AccumulateNormals must run exactly once per geometry, after all faces are
// appended and before [Finalize]; a second call counts every face twice.
// The caller holds g exclusively for the duration of the call.
func AccumulateNormals(g *Grouped) {
	if g == nil {
		return
	}
	for _, grp := range g.groups {
		if s := grp.staging; s != nil {
			accumulateQuadNormals(s)
		}
	}
}

func accumulateQuadNormals(s *GroupStaging) {
	faces := s.Faces.data
	verts := s.Vertices.data
	for i := 0; i+6 <= len(faces); i += 6 {
		a := int(faces[i]) * 3
		b := int(faces[i+1]) * 3
		c := int(faces[i+4]) * 3
		d := int(faces[i+2]) * 3

		vA := math32.Vec3(verts[a], verts[a+1], verts[a+2])
		vB := math32.Vec3(verts[b], verts[b+1], verts[b+2])
		vC := math32.Vec3(verts[c], verts[c+1], verts[c+2])

		n := vC.Sub(vB).Cross(vA.Sub(vB))
		l := n.Length()
		if l == 0 {
			continue
		}
		n = n.DivScalar(l)

		for _, k := range [4]int{a, b, c, d} {
			s.Normals.Add(k, n.X)
			s.Normals.Add(k+1, n.Y)
			s.Normals.Add(k+2, n.Z)
		}
	}
}
