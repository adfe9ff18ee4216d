package tessellate

import (
	"fmt"

	"github.com/chazu/molmesh/pkg/palette"
	"github.com/chazu/molmesh/pkg/scene"
)

// handleCell draws the 12 edges of a box into the flat line drawing.
// Corners are placed individually, so rotated placements stay exact.
func (b *builder) handleCell(n *scene.Node, ts *transformStack) error {
	cd, ok := n.Data.(scene.CellData)
	if !ok {
		return fmt.Errorf("cell node %s has unexpected data type %T", n.ID.Short(), n.Data)
	}
	color := palette.FromHex(b.opts.CellColor)
	if cd.Color != "" {
		c, err := b.color(cd.Color)
		if err != nil {
			return fmt.Errorf("cell %s: %w", n.ID.Short(), err)
		}
		color = c
	}

	// corner i takes max on X when bit 0 is set, Y for bit 1, Z for bit 2
	var corners [8][3]float32
	for i := range corners {
		p := cd.Min
		if i&1 != 0 {
			p.X = cd.Max.X
		}
		if i&2 != 0 {
			p.Y = cd.Max.Y
		}
		if i&4 != 0 {
			p.Z = cd.Max.Z
		}
		corners[i] = f32(ts.apply(p))
		b.expand(corners[i])
	}

	st := b.model.Cells.Flat().Staging()
	c := color.Array()
	for i := range corners {
		for _, bit := range [3]int{1, 2, 4} {
			if i&bit == 0 {
				st.AppendSegment(corners[i], corners[i|bit], c)
			}
		}
	}
	return nil
}
