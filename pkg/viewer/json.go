package viewer

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/chazu/molmesh/pkg/geometry"
	"github.com/chazu/molmesh/pkg/upload"
)

// GroupData is the JSON form of one finalized group. Channels that were
// never populated are omitted.
type GroupData struct {
	Vertices []float32 `json:"vertices"`
	Colors   []float32 `json:"colors,omitempty"`
	Normals  []float32 `json:"normals,omitempty"`
	Faces    []uint16  `json:"faces,omitempty"`
	Lines    []uint16  `json:"lines,omitempty"`
}

// MeshData is the JSON form of a finalized mesh. Kind is "grouped" or
// "flat"; a flat mesh has a single group holding vertices and colors. Side
// is "front", "back" or "double".
type MeshData struct {
	Name   string      `json:"name"`
	Kind   string      `json:"kind"`
	Side   string      `json:"side"`
	Groups []GroupData `json:"groups"`
}

// Document is the top-level json viewer output.
type Document struct {
	Meshes []MeshData `json:"meshes"`
}

// Export converts a finalized mesh. Empty groups are skipped.
func Export(m *geometry.Mesh) (MeshData, error) {
	out := MeshData{Name: m.Name, Side: m.Side.String(), Groups: []GroupData{}}
	switch g := m.Geometry.(type) {
	case *geometry.Grouped:
		out.Kind = "grouped"
		for i, grp := range g.Groups() {
			if !grp.Finalized() {
				return MeshData{}, fmt.Errorf("%w: %s group %d", upload.ErrNotFinalized, m.Name, i)
			}
			b := grp.Buffers()
			if b.Vertices.Len() == 0 {
				continue
			}
			out.Groups = append(out.Groups, GroupData{
				Vertices: b.Vertices.Values(),
				Colors:   b.Colors.Values(),
				Normals:  b.Normals.Values(),
				Faces:    b.Faces.Values(),
				Lines:    b.Lines.Values(),
			})
		}
	case *geometry.Flat:
		out.Kind = "flat"
		if !g.Finalized() {
			return MeshData{}, fmt.Errorf("%w: %s", upload.ErrNotFinalized, m.Name)
		}
		b := g.Buffers()
		if b.Vertices.Len() > 0 {
			out.Groups = append(out.Groups, GroupData{
				Vertices: b.Vertices.Values(),
				Colors:   b.Colors.Values(),
			})
		}
	}
	return out, nil
}

type jsonViewer struct {
	out    io.Writer
	indent bool
}

func newJSONViewer(opts Options) (Viewer, error) {
	if opts.Out == nil {
		return nil, ErrNoOutput
	}
	return &jsonViewer{out: opts.Out, indent: opts.Indent}, nil
}

func (v *jsonViewer) Name() string { return "json" }

// Show writes one Document holding every non-empty mesh.
func (v *jsonViewer) Show(meshes []*geometry.Mesh) error {
	doc := Document{Meshes: []MeshData{}}
	for _, m := range meshes {
		if m == nil || m.IsEmpty() {
			continue
		}
		md, err := Export(m)
		if err != nil {
			return fmt.Errorf("viewer: json: %w", err)
		}
		doc.Meshes = append(doc.Meshes, md)
	}
	enc := json.NewEncoder(v.out)
	if v.indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("viewer: json: %w", err)
	}
	return nil
}
