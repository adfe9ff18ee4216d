package geometry

import (
	"slices"

	"github.com/chazu/molmesh/pkg/logging"
)

// Finalize converts every group of g that is still staging into fixed
// buffers and releases its staging containers. Groups already finalized are
// left alone, so calling Finalize again, or on a partly finalized geometry,
// is safe. A nil geometry is ignored.
//
// Index values that do not fit in uint16 wrap silently in the output; the
// mesh builder must keep groups within [MaxGroupVertices]. Such values are
// reported at warn level but never fail the call.
func Finalize(g Geometry) {
	switch g := g.(type) {
	case *Grouped:
		finalizeGrouped(g)
	case *Flat:
		finalizeFlat(g)
	}
}

func finalizeGrouped(g *Grouped) {
	if g == nil {
		return
	}
	log := logging.Logger()
	for i, grp := range g.groups {
		if grp.Finalized() {
			continue
		}
		if overflow := grp.finalize(); overflow > 0 {
			log.Warn("geometry: index values exceed uint16 range",
				"group", i, "count", overflow)
		}
		b := grp.buffers
		log.Debug("geometry: group finalized",
			"group", i,
			"vertices", b.Vertices.Len()/3,
			"faces", b.Faces.Len(),
			"lines", b.Lines.Len())
	}
}

func finalizeFlat(f *Flat) {
	if f == nil || f.Finalized() {
		return
	}
	s := f.staging
	f.buffers = &FlatBuffers{
		Vertices: &Buffer[float32]{data: slices.Clone(s.Vertices.data)},
		Colors:   &Buffer[float32]{data: slices.Clone(s.Colors.data)},
	}
	s.Vertices.data = nil
	s.Colors.data = nil
	f.staging = nil
	logging.Logger().Debug("geometry: flat finalized", "vertices", f.buffers.Vertices.Len()/3)
}
