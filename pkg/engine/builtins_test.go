package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/molmesh/pkg/scene"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(atom "O1" :element "O")`,
			expect: `(atom "O1" "__kw_element" "O")`,
		},
		{
			name:   "multiple keywords",
			input:  `(ribbon "A" :width 2 :subdivide 4)`,
			expect: `(ribbon "A" "__kw_width" 2 "__kw_subdivide" 4)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "escaped quote in string",
			input:  `"a \" :b" :c`,
			expect: `"a \" :b" "__kw_c"`,
		},
		{
			name:   "backtick string preserved",
			input:  "`raw :kw atom-ref`",
			expect: "`raw :kw atom-ref`",
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(atom-ref "CA1")`,
			expect: `(atom_ref "CA1")`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "negative number preserved",
			input:  `(vec3 -1.5 0 -2)`,
			expect: `(vec3 -1.5 0 -2)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:unit-cell`,
			expect: `"__kw_unit-cell"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// DSL tests
// ---------------------------------------------------------------------------

func evalOK(t *testing.T, source string) *scene.Scene {
	t.Helper()
	s, evalErrs, err := NewEngine().Evaluate(source)
	require.NoError(t, err)
	require.Empty(t, evalErrs)
	require.NotNil(t, s)
	return s
}

func evalFails(t *testing.T, source, want string) {
	t.Helper()
	s, evalErrs, err := NewEngine().Evaluate(source)
	require.NoError(t, err)
	assert.Nil(t, s)
	require.NotEmpty(t, evalErrs)
	assert.True(t, strings.Contains(evalErrs[0].Message, want),
		"message %q does not contain %q", evalErrs[0].Message, want)
}

const waterSource = `
; water, with a heavier oxygen
(element "O" :color "#ee2010" :radius 1.6)
(model "water"
  (atom "O1" :element "O" :at (vec3 0 0 0))
  (atom "H1" :element "H" :at (vec3 0.96 0 0) :radius 0.5)
  (atom "H2" :element "H" :at (vec3 -0.24 0.93 0) :color "#dddddd")
  (bond (atom-ref "O1") (atom-ref "H1"))
  (bond (atom-ref "O1") (atom-ref "H2") :radius 0.2))
`

func TestWaterModel(t *testing.T) {
	s := evalOK(t, waterSource)

	assert.Equal(t, 6, s.NodeCount())
	require.Len(t, s.Roots, 1)

	root := s.Get(s.Roots[0])
	require.NotNil(t, root)
	assert.Equal(t, scene.NodeGroup, root.Kind)
	assert.Equal(t, "water", root.Name)
	assert.Len(t, root.Children, 5)

	o := s.MustLookup("O1").Data.(scene.AtomData)
	assert.Equal(t, "O", o.Element)
	assert.Equal(t, scene.Vec3{}, o.Position)

	h1 := s.MustLookup("H1").Data.(scene.AtomData)
	assert.Equal(t, 0.5, h1.Radius)
	assert.Equal(t, scene.Vec3{X: 0.96}, h1.Position)

	h2 := s.MustLookup("H2").Data.(scene.AtomData)
	assert.Equal(t, "#dddddd", h2.Color)
	assert.Equal(t, -0.24, h2.Position.X)

	bonds := s.OfKind(scene.NodeBond)
	require.Len(t, bonds, 2)
	var radii []float64
	for _, b := range bonds {
		bd := b.Data.(scene.BondData)
		assert.Equal(t, s.MustLookup("O1").ID, bd.A)
		radii = append(radii, bd.Radius)
	}
	assert.ElementsMatch(t, []float64{0, 0.2}, radii)

	st, ok := s.Element("o")
	require.True(t, ok)
	assert.Equal(t, scene.ElementStyle{Color: "#ee2010", Radius: 1.6}, st)

	assert.Empty(t, scene.Validate(s))
}

func TestDeterministicIDs(t *testing.T) {
	a := evalOK(t, waterSource)
	b := evalOK(t, waterSource)

	assert.Equal(t, a.Roots, b.Roots)
	for id := range a.Nodes {
		assert.Contains(t, b.Nodes, id)
	}
}

func TestRibbonAndCell(t *testing.T) {
	s := evalOK(t, `
(model "chain"
  (ribbon "A" :trace (list (vec3 0 0 0) (vec3 3.8 0 0) (vec3 7.6 1 0))
          :width 2 :subdivide 3 :color "#3050f8")
  (unit-cell :min (vec3 0 0 0) :max (vec3 10 12 14)))
`)
	ribbons := s.OfKind(scene.NodeRibbon)
	require.Len(t, ribbons, 1)
	rd := ribbons[0].Data.(scene.RibbonData)
	assert.Equal(t, "A", rd.Chain)
	assert.Len(t, rd.Trace, 3)
	assert.Equal(t, scene.Vec3{X: 7.6, Y: 1}, rd.Trace[2])
	assert.Equal(t, 2.0, rd.Width)
	assert.Equal(t, 3, rd.Subdivide)
	assert.Equal(t, "#3050f8", rd.Color)

	cells := s.OfKind(scene.NodeCell)
	require.Len(t, cells, 1)
	cd := cells[0].Data.(scene.CellData)
	assert.Equal(t, scene.Vec3{X: 10, Y: 12, Z: 14}, cd.Max)
}

func TestPlace(t *testing.T) {
	s := evalOK(t, `
(model "m"
  (place (atom "C1" :element "C") :at (vec3 1 2 3) :rotate (vec3 0 90 0)))
`)
	places := s.OfKind(scene.NodeTransform)
	require.Len(t, places, 1)
	td := places[0].Data.(scene.TransformData)
	require.NotNil(t, td.Translation)
	require.NotNil(t, td.Rotation)
	assert.Equal(t, scene.Vec3{X: 1, Y: 2, Z: 3}, *td.Translation)
	assert.Equal(t, scene.Vec3{Y: 90}, *td.Rotation)
	assert.Equal(t, []scene.NodeID{s.MustLookup("C1").ID}, places[0].Children)
}

func TestLispFeaturesBuildScene(t *testing.T) {
	// Plain zygomys functions can generate atoms.
	s := evalOK(t, `
(defn carbon [name x] (atom name :element "C" :at (vec3 x 0 0)))
(model "pair" (carbon "C1" 0) (carbon "C2" 1.54)
  (bond (atom-ref "C1") (atom-ref "C2")))
`)
	assert.Len(t, s.OfKind(scene.NodeAtom), 2)
	assert.Equal(t, 1.54, s.MustLookup("C2").Data.(scene.AtomData).Position.X)
}

func TestDSLErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"atom without element", `(atom "X")`, ":element is required"},
		{"atom without name", `(atom :element "C")`, "atom requires a name"},
		{"duplicate name", `(atom "A" :element "C") (atom "A" :element "C")`, `name "A" already defined`},
		{"unknown atom ref", `(atom-ref "nope")`, `no atom named "nope"`},
		{"bond arity", `(atom "A" :element "C") (bond (atom-ref "A"))`, "bond requires two atom references"},
		{"bond to model", `(bond (model "m") (model "n"))`, "not an atom"},
		{"vec3 arity", `(vec3 1 2)`, "vec3 requires exactly 3 arguments"},
		{"vec3 type", `(vec3 1 "a" 2)`, "vec3: y"},
		{"cell without max", `(unit-cell :min (vec3 0 0 0))`, ":max is required"},
		{"trace entry", `(ribbon "A" :trace (list 1 2))`, "ribbon: trace point 0"},
		{"place without ref", `(place 3)`, "expected node reference"},
		{"model child", `(model "m" 42)`, "model: child 1"},
		{"radius type", `(atom "A" :element "C" :radius "big")`, "atom: radius"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evalFails(t, tt.source, tt.want)
		})
	}
}

func TestGroupIsNotARoot(t *testing.T) {
	s := evalOK(t, `
(model "complex"
  (place (group "ligand" (atom "C1" :element "C")) :at (vec3 0 0 5)))
`)
	require.Len(t, s.Roots, 1)
	assert.Equal(t, s.MustLookup("complex").ID, s.Roots[0])
	g := s.MustLookup("ligand")
	assert.Equal(t, scene.NodeGroup, g.Kind)
	assert.Equal(t, []scene.NodeID{s.MustLookup("C1").ID}, g.Children)
}
