package tessellate

import (
	"fmt"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/molmesh/pkg/geometry"
	"github.com/chazu/molmesh/pkg/kernel"
	"github.com/chazu/molmesh/pkg/logging"
	"github.com/chazu/molmesh/pkg/palette"
	"github.com/chazu/molmesh/pkg/scene"
)

// drawnAtom is an atom instance as drawn: world center and resolved color.
type drawnAtom struct {
	center v3.Vec
	color  palette.Color
}

// atomStyle resolves an atom's radius and color. Explicit values win over
// the scene's element styles, which win over configured overrides, which
// win over the element table. Only table radii are scaled by AtomScale.
func (b *builder) atomStyle(ad scene.AtomData) (float64, palette.Color, error) {
	sym := strings.ToUpper(strings.TrimSpace(ad.Element))
	el, _ := palette.LookupElement(sym)
	radius := el.Radius * b.opts.AtomScale
	color := palette.FromHex(el.Color)

	var hex string
	styles := []scene.ElementStyle{b.opts.Elements[sym]}
	if st, ok := b.s.Element(sym); ok {
		styles = append(styles, st)
	}
	styles = append(styles, scene.ElementStyle{Color: ad.Color, Radius: ad.Radius})
	for _, st := range styles {
		if st.Radius > 0 {
			radius = st.Radius
		}
		if st.Color != "" {
			hex = st.Color
		}
	}
	if hex != "" {
		c, err := b.color(hex)
		if err != nil {
			return 0, palette.Color{}, err
		}
		color = c
	}
	return radius, color, nil
}

// sphere returns the origin-centered sphere fragment for a radius, asking
// the kernel only once per distinct radius.
func (b *builder) sphere(radius float64) (*kernel.Mesh, error) {
	if m, ok := b.spheres[radius]; ok {
		return m, nil
	}
	m, err := b.k.ToMesh(b.k.Sphere(radius, b.opts.SphereSegments))
	if err != nil {
		return nil, err
	}
	if err := m.Check(); err != nil {
		return nil, fmt.Errorf("%s sphere: %w", b.k.Name(), err)
	}
	b.spheres[radius] = m
	return m, nil
}

// handleAtom draws one atom instance.
func (b *builder) handleAtom(n *scene.Node, ts *transformStack) error {
	ad, ok := n.Data.(scene.AtomData)
	if !ok {
		return fmt.Errorf("atom node %s has unexpected data type %T", n.ID.Short(), n.Data)
	}
	radius, color, err := b.atomStyle(ad)
	if err != nil {
		return fmt.Errorf("atom %s: %w", n.DisplayName(), err)
	}
	frag, err := b.sphere(radius)
	if err != nil {
		return fmt.Errorf("atom %s: %w", n.DisplayName(), err)
	}
	center := ts.apply(ad.Position)
	if err := b.appendFragment(b.model.Atoms.Grouped(), frag, center, color); err != nil {
		return fmt.Errorf("atom %s: %w", n.DisplayName(), err)
	}
	if _, seen := b.atomAt[n.ID]; !seen {
		b.atomAt[n.ID] = drawnAtom{center: center, color: color}
	}
	return nil
}

// endpoint returns the drawn instance of a bonded atom. Atoms that were
// not drawn bond from their untransformed position.
func (b *builder) endpoint(id scene.NodeID) (drawnAtom, error) {
	if a, ok := b.atomAt[id]; ok {
		return a, nil
	}
	n := b.s.Get(id)
	if n == nil {
		return drawnAtom{}, fmt.Errorf("endpoint %s does not exist", id.Short())
	}
	ad, ok := n.Data.(scene.AtomData)
	if !ok {
		return drawnAtom{}, fmt.Errorf("endpoint %s is %s, not atom", id.Short(), n.Kind)
	}
	_, color, err := b.atomStyle(ad)
	if err != nil {
		return drawnAtom{}, err
	}
	return drawnAtom{center: vec(ad.Position), color: color}, nil
}

// handleBond draws a bond as two cylinders meeting at the midpoint, each
// in the color of the atom it touches.
func (b *builder) handleBond(n *scene.Node) error {
	bd, ok := n.Data.(scene.BondData)
	if !ok {
		return fmt.Errorf("bond node %s has unexpected data type %T", n.ID.Short(), n.Data)
	}
	ea, err := b.endpoint(bd.A)
	if err != nil {
		return err
	}
	eb, err := b.endpoint(bd.B)
	if err != nil {
		return err
	}

	dir := eb.center.Sub(ea.center)
	length := dir.Length()
	if length == 0 {
		logging.Logger().Warn("tessellate: skipping zero-length bond", "node", n.ID.Short())
		return nil
	}
	radius := bd.Radius
	if radius <= 0 {
		radius = b.opts.BondRadius
	}
	mid := ea.center.Add(eb.center).MulScalar(0.5)

	for _, end := range []drawnAtom{ea, eb} {
		c := end.center.Add(mid).MulScalar(0.5)
		s := b.k.Cylinder(length/2, radius, b.opts.CylinderSegments)
		s = b.k.Orient(s, dir.X, dir.Y, dir.Z)
		s = b.k.Translate(s, c.X, c.Y, c.Z)
		frag, err := b.k.ToMesh(s)
		if err == nil {
			err = frag.Check()
		}
		if err != nil {
			return fmt.Errorf("%s bond: %w", b.k.Name(), err)
		}
		if err := b.appendFragment(b.model.Bonds.Grouped(), frag, v3.Vec{}, end.color); err != nil {
			return err
		}
	}
	return nil
}

// appendFragment copies a kernel fragment, offset by off and painted in
// color, into the first group of g with room for all of its vertices.
// Fragment indices are rebased onto the group.
func (b *builder) appendFragment(g *geometry.Grouped, m *kernel.Mesh, off v3.Vec, color palette.Color) error {
	n := m.VertexCount()
	if n == 0 {
		return nil
	}
	if n > g.Limit() {
		return fmt.Errorf("%w: %d vertices, limit %d", ErrFragmentTooLarge, n, g.Limit())
	}
	grp, base := g.GroupFor(n)
	st := grp.Staging()
	c := color.Array()
	o := f32(off)
	for i := 0; i < n; i++ {
		p := m.Vertex(i)
		p = [3]float32{p[0] + o[0], p[1] + o[1], p[2] + o[2]}
		st.AppendVertex(p, c, m.Normal(i))
		b.expand(p)
	}
	for i := 0; i+3 <= len(m.Indices); i += 3 {
		st.AppendTriangle(base+m.Indices[i], base+m.Indices[i+1], base+m.Indices[i+2])
	}
	return nil
}
