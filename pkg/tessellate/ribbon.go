package tessellate

import (
	"errors"
	"fmt"
	"math"

	"cogentcore.org/core/math32"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/molmesh/pkg/geometry"
	"github.com/chazu/molmesh/pkg/logging"
	"github.com/chazu/molmesh/pkg/palette"
	"github.com/chazu/molmesh/pkg/scene"
)

// handleRibbon builds a chain mesh for one backbone trace, accumulates its
// quad normals once, and merges it into the cartoon.
func (b *builder) handleRibbon(n *scene.Node, ts *transformStack) error {
	rd, ok := n.Data.(scene.RibbonData)
	if !ok {
		return fmt.Errorf("ribbon node %s has unexpected data type %T", n.ID.Short(), n.Data)
	}
	if len(rd.Trace) < 2 {
		return fmt.Errorf("ribbon %s: trace has %d points, need at least 2", rd.Chain, len(rd.Trace))
	}
	width := rd.Width
	if width <= 0 {
		width = b.opts.RibbonWidth
	}
	sub := rd.Subdivide
	if sub <= 0 {
		sub = b.opts.RibbonSubdivide
	}
	color := palette.ChainColor(b.chains)
	if rd.Color != "" {
		c, err := b.color(rd.Color)
		if err != nil {
			return fmt.Errorf("ribbon %s: %w", rd.Chain, err)
		}
		color = c
	}

	pts := make([]v3.Vec, len(rd.Trace))
	for i, p := range rd.Trace {
		pts[i] = ts.apply(p)
	}
	pts = catmullRom(pts, sub)

	chain := geometry.NewMesh("chain "+rd.Chain, geometry.NewGroupedLimit(b.opts.MaxGroupVertices))
	if err := b.buildRibbon(chain.Grouped(), pts, width, color); err != nil {
		return fmt.Errorf("ribbon %s: %w", rd.Chain, err)
	}
	geometry.AccumulateNormals(chain.Grouped())
	joinSeams(chain.Grouped())
	normalizeNormals(chain.Grouped())

	cartoon := b.model.Cartoon.Grouped()
	err := geometry.MergeFirstGroup(cartoon, chain)
	if errors.Is(err, geometry.ErrDroppedGroups) {
		logging.Logger().Debug("tessellate: chain spans several groups", "chain", rd.Chain,
			"extra", chain.Grouped().Len())
		err = geometry.MergeAll(cartoon, chain)
	}
	if err != nil {
		return fmt.Errorf("ribbon %s: %w", rd.Chain, err)
	}
	b.chains++
	return nil
}

// buildRibbon appends the ribbon strip: two vertices per trace point and
// one quad per trace segment. Long strips are split across groups; each
// continuation repeats the last vertex pair of the previous group, so every
// group boundary of g is a seam (see joinSeams).
func (b *builder) buildRibbon(g *geometry.Grouped, pts []v3.Vec, width float64, color palette.Color) error {
	maxPts := g.Limit() / 2
	if maxPts < 2 {
		return fmt.Errorf("%w: ribbon needs 4 vertices, limit %d", ErrFragmentTooLarge, g.Limit())
	}
	sides := ribbonSides(pts)
	c := color.Array()
	half := width / 2

	for start := 0; ; {
		end := min(start+maxPts, len(pts))
		grp, base := g.GroupFor(2 * (end - start))
		st := grp.Staging()
		for i := start; i < end; i++ {
			off := sides[i].MulScalar(half)
			left := f32(pts[i].Sub(off))
			right := f32(pts[i].Add(off))
			st.AppendVertex(left, c, [3]float32{})
			st.AppendVertex(right, c, [3]float32{})
			b.expand(left)
			b.expand(right)
		}
		for i := uint32(0); i+1 < uint32(end-start); i++ {
			l0, r0 := base+2*i, base+2*i+1
			st.AppendQuad(l0, r0, r0+2, l0+2)
		}
		if end == len(pts) {
			return nil
		}
		start = end - 1
	}
}

// joinSeams sums the accumulated normals of each repeated seam pair across
// the two groups that hold it, so a split strip shades as if it were one.
// It must run between accumulation and normalization.
func joinSeams(g *geometry.Grouped) {
	groups := g.Groups()
	for k := 1; k < len(groups); k++ {
		prev, next := groups[k-1].Staging(), groups[k].Staging()
		if prev == nil || next == nil || prev.VertexCount() < 2 || next.VertexCount() < 2 {
			continue
		}
		tail := 3 * (prev.VertexCount() - 2)
		for i := 0; i < 6; i++ {
			sum := prev.Normals.At(tail+i) + next.Normals.At(i)
			prev.Normals.Set(tail+i, sum)
			next.Normals.Set(i, sum)
		}
	}
}

// normalizeNormals scales every accumulated normal of g to unit length.
// Zero normals are left as they are.
func normalizeNormals(g *geometry.Grouped) {
	for _, grp := range g.Groups() {
		st := grp.Staging()
		if st == nil {
			continue
		}
		for i := 0; i+3 <= st.Normals.Len(); i += 3 {
			n := math32.Vec3(st.Normals.At(i), st.Normals.At(i+1), st.Normals.At(i+2))
			l := n.Length()
			if l == 0 {
				continue
			}
			n = n.DivScalar(l)
			st.Normals.Set(i, n.X)
			st.Normals.Set(i+1, n.Y)
			st.Normals.Set(i+2, n.Z)
		}
	}
}

// catmullRom interpolates sub points per trace segment along a uniform
// Catmull-Rom spline through every trace point. sub <= 1 returns pts.
func catmullRom(pts []v3.Vec, sub int) []v3.Vec {
	if sub <= 1 || len(pts) < 2 {
		return pts
	}
	n := len(pts)
	out := make([]v3.Vec, 0, (n-1)*sub+1)
	for i := 0; i < n-1; i++ {
		p0 := pts[max(i-1, 0)]
		p1 := pts[i]
		p2 := pts[i+1]
		p3 := pts[min(i+2, n-1)]
		for k := 0; k < sub; k++ {
			t := float64(k) / float64(sub)
			t2, t3 := t*t, t*t*t
			q := p1.MulScalar(2).
				Add(p2.Sub(p0).MulScalar(t)).
				Add(p0.MulScalar(2).Sub(p1.MulScalar(5)).Add(p2.MulScalar(4)).Sub(p3).MulScalar(t2)).
				Add(p1.MulScalar(3).Sub(p0).Sub(p2.MulScalar(3)).Add(p3).MulScalar(t3))
			out = append(out, q.MulScalar(0.5))
		}
	}
	return append(out, pts[n-1])
}

// ribbonSides returns the unit side direction at each point, carried along
// the curve by parallel transport so the strip does not twist.
func ribbonSides(pts []v3.Vec) []v3.Vec {
	sides := make([]v3.Vec, len(pts))
	var prev v3.Vec
	for i := range pts {
		t := tangent(pts, i)
		s := prev.Sub(t.MulScalar(prev.Dot(t)))
		if s.Length() < 1e-9 {
			s = perpendicular(t)
		}
		s = s.Normalize()
		sides[i] = s
		prev = s
	}
	return sides
}

func tangent(pts []v3.Vec, i int) v3.Vec {
	lo, hi := max(i-1, 0), min(i+1, len(pts)-1)
	t := pts[hi].Sub(pts[lo])
	if t.Length() == 0 {
		return t
	}
	return t.Normalize()
}

// perpendicular returns a unit vector perpendicular to t, or +X when t is
// zero.
func perpendicular(t v3.Vec) v3.Vec {
	axis := v3.Vec{X: 1}
	if math.Abs(t.X) > 0.9 {
		axis = v3.Vec{Y: 1}
	}
	p := t.Cross(axis)
	if p.Length() == 0 {
		return v3.Vec{X: 1}
	}
	return p.Normalize()
}
