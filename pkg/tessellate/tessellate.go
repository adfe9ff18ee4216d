// Package tessellate walks a scene graph and builds the drawable meshes of
// a molecular model: atom spheres, half-colored bond cylinders, backbone
// ribbons (the cartoon) and unit-cell line drawings. Every mesh is packed
// into index-bounded geometry groups and finalized before it is returned.
package tessellate

import (
	"errors"
	"fmt"

	"cogentcore.org/core/math32"

	"github.com/chazu/molmesh/pkg/geometry"
	"github.com/chazu/molmesh/pkg/kernel"
	"github.com/chazu/molmesh/pkg/logging"
	"github.com/chazu/molmesh/pkg/palette"
	"github.com/chazu/molmesh/pkg/scene"
)

// ErrFragmentTooLarge is returned when a single kernel fragment has more
// vertices than one geometry group can address.
var ErrFragmentTooLarge = errors.New("tessellate: fragment exceeds group vertex limit")

// Options tune the mesh builder.
type Options struct {
	SphereSegments   int
	CylinderSegments int
	MaxGroupVertices int     // per-group vertex bound; <= 0 means geometry.MaxGroupVertices
	AtomScale        float64 // multiplies table van der Waals radii
	BondRadius       float64
	RibbonWidth      float64
	RibbonSubdivide  int
	CellColor        uint32

	// Elements overrides element styles, keyed by upper-case symbol.
	Elements map[string]scene.ElementStyle
}

// DefaultOptions returns the options used when no configuration is given.
func DefaultOptions() Options {
	return Options{
		SphereSegments:   24,
		CylinderSegments: 12,
		MaxGroupVertices: geometry.MaxGroupVertices,
		AtomScale:        0.3,
		BondRadius:       0.15,
		RibbonWidth:      1.5,
		RibbonSubdivide:  4,
		CellColor:        0xcccccc,
	}
}

// Model is the finalized output of Tessellate.
type Model struct {
	Atoms   *geometry.Mesh // grouped triangles
	Bonds   *geometry.Mesh // grouped triangles
	Cartoon *geometry.Mesh // grouped ribbon quads, one group per chain; double-sided
	Cells   *geometry.Mesh // flat line segments
	Bounds  math32.Box3    // empty when nothing was drawn
}

// Meshes returns the model meshes in draw order.
func (m *Model) Meshes() []*geometry.Mesh {
	return []*geometry.Mesh{m.Atoms, m.Bonds, m.Cartoon, m.Cells}
}

// builder carries the state of one Tessellate call.
type builder struct {
	s      *scene.Scene
	k      kernel.Kernel
	opts   Options
	colors palette.Cache
	model  *Model

	spheres map[float64]*kernel.Mesh   // unit-origin sphere fragments by radius
	atomAt  map[scene.NodeID]drawnAtom // first drawn instance of each atom
	bonds   []*scene.Node              // drawn after the walk
	chains  int
}

// Tessellate walks the scene from its roots and returns the finalized
// model. The scene is never mutated. Nodes reachable more than once are
// drawn once per path; bonds join the first drawn instance of each atom.
func Tessellate(s *scene.Scene, k kernel.Kernel, opts Options) (*Model, error) {
	if opts.MaxGroupVertices <= 0 || opts.MaxGroupVertices > geometry.MaxGroupVertices {
		opts.MaxGroupVertices = geometry.MaxGroupVertices
	}
	b := &builder{
		s:    s,
		k:    k,
		opts: opts,
		model: &Model{
			Atoms:   geometry.NewMesh("atoms", geometry.NewGroupedLimit(opts.MaxGroupVertices)),
			Bonds:   geometry.NewMesh("bonds", geometry.NewGroupedLimit(opts.MaxGroupVertices)),
			Cartoon: geometry.NewMesh("cartoon", geometry.NewGroupedLimit(opts.MaxGroupVertices)),
			Cells:   geometry.NewMesh("cells", geometry.NewFlat()),
		},
		spheres: make(map[float64]*kernel.Mesh),
		atomAt:  make(map[scene.NodeID]drawnAtom),
	}
	b.model.Cartoon.Side = geometry.DoubleSide
	b.model.Bounds.SetEmpty()

	if s != nil {
		ts := newTransformStack()
		for _, rootID := range s.Roots {
			root := s.Get(rootID)
			if root == nil {
				continue
			}
			if err := b.walkNode(root, ts); err != nil {
				return nil, fmt.Errorf("tessellate: error walking root %s: %w", rootID.Short(), err)
			}
		}
		for _, n := range b.bonds {
			if err := b.handleBond(n); err != nil {
				return nil, fmt.Errorf("tessellate: bond %s: %w", n.ID.Short(), err)
			}
		}
	}

	for _, m := range b.model.Meshes() {
		geometry.Finalize(m.Geometry)
	}
	logging.Logger().Debug("tessellate: model built",
		"atoms", b.model.Atoms.Grouped().VertexCount(),
		"bonds", b.model.Bonds.Grouped().VertexCount(),
		"cartoon", b.model.Cartoon.Grouped().VertexCount(),
		"chains", b.chains,
		"cell_vertices", b.model.Cells.Flat().VertexCount())
	return b.model, nil
}

// walkNode recursively traverses a node and its children.
func (b *builder) walkNode(n *scene.Node, ts *transformStack) error {
	switch n.Kind {
	case scene.NodeAtom:
		return b.handleAtom(n, ts)
	case scene.NodeBond:
		b.bonds = append(b.bonds, n)
		return nil
	case scene.NodeRibbon:
		return b.handleRibbon(n, ts)
	case scene.NodeCell:
		return b.handleCell(n, ts)
	case scene.NodeTransform:
		return b.handleTransform(n, ts)
	case scene.NodeGroup:
		return b.walkChildren(n, ts)
	default:
		return fmt.Errorf("unknown node kind: %v", n.Kind)
	}
}

func (b *builder) walkChildren(n *scene.Node, ts *transformStack) error {
	for _, child := range b.s.Children(n) {
		if err := b.walkNode(child, ts); err != nil {
			return err
		}
	}
	return nil
}

// handleTransform pushes the transform, recurses into children, then pops.
func (b *builder) handleTransform(n *scene.Node, ts *transformStack) error {
	td, ok := n.Data.(scene.TransformData)
	if !ok {
		return fmt.Errorf("transform node %s has unexpected data type %T", n.ID.Short(), n.Data)
	}
	ts.push(td)
	defer ts.pop()
	return b.walkChildren(n, ts)
}

// color resolves a hex string through the cache.
func (b *builder) color(hex string) (palette.Color, error) {
	return b.colors.Color(hex)
}

// expand grows the model bounds by a vertex position.
func (b *builder) expand(p [3]float32) {
	b.model.Bounds.ExpandByPoint(math32.Vec3(p[0], p[1], p[2]))
}
