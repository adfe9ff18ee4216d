package scene

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// buildWater creates a valid water molecule: three atoms and two bonds under
// a single model root.
func buildWater() *Scene {
	s := New()

	oID := NewNodeID("atom/O1")
	h1ID := NewNodeID("atom/H1")
	h2ID := NewNodeID("atom/H2")
	b1ID := NewNodeID("bond/O1-H1")
	b2ID := NewNodeID("bond/O1-H2")
	rootID := NewNodeID("model/water")

	s.AddNode(&Node{ID: oID, Kind: NodeAtom, Name: "O1",
		Data: AtomData{Element: "O", Position: Vec3{0, 0, 0}}})
	s.AddNode(&Node{ID: h1ID, Kind: NodeAtom, Name: "H1",
		Data: AtomData{Element: "H", Position: Vec3{0.96, 0, 0}}})
	s.AddNode(&Node{ID: h2ID, Kind: NodeAtom, Name: "H2",
		Data: AtomData{Element: "H", Position: Vec3{-0.24, 0.93, 0}}})
	s.AddNode(&Node{ID: b1ID, Kind: NodeBond, Data: BondData{A: oID, B: h1ID}})
	s.AddNode(&Node{ID: b2ID, Kind: NodeBond, Data: BondData{A: oID, B: h2ID}})
	s.AddNode(&Node{
		ID:       rootID,
		Kind:     NodeGroup,
		Name:     "water",
		Children: []NodeID{oID, h1ID, h2ID, b1ID, b2ID},
		Data:     GroupData{},
	})
	s.AddRoot(rootID)
	return s
}

func hasError(errs []ValidationError, substr string) bool {
	for _, e := range errs {
		if e.Severity == SeverityError && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func hasWarning(errs []ValidationError, substr string) bool {
	for _, e := range errs {
		if e.Severity == SeverityWarning && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestValidateValidScene(t *testing.T) {
	errs := Validate(buildWater())
	assert.Empty(t, errs)
}

func TestValidateEmptyScene(t *testing.T) {
	assert.Empty(t, Validate(New()))
}

func TestValidateCycle(t *testing.T) {
	s := New()
	a := NewNodeID("a")
	b := NewNodeID("b")
	s.AddNode(&Node{ID: a, Kind: NodeGroup, Children: []NodeID{b}, Data: GroupData{}})
	s.AddNode(&Node{ID: b, Kind: NodeGroup, Children: []NodeID{a}, Data: GroupData{}})
	s.AddRoot(a)

	assert.True(t, hasError(Validate(s), "cycle detected"))
}

func TestValidateDanglingChild(t *testing.T) {
	s := buildWater()
	root := s.Get(s.Roots[0])
	root.Children = append(root.Children, NewNodeID("ghost"))

	assert.True(t, hasError(Validate(s), "child reference"))
}

func TestValidateBonds(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Scene)
		want   string
	}{
		{
			name: "self bond",
			mutate: func(s *Scene) {
				o := s.Lookup("O1").ID
				s.AddNode(&Node{ID: NewNodeID("bond/self"), Kind: NodeBond, Name: "self",
					Data: BondData{A: o, B: o}})
				s.Get(s.Roots[0]).Children = append(s.Get(s.Roots[0]).Children, NewNodeID("bond/self"))
			},
			want: "self-bond",
		},
		{
			name: "missing endpoint",
			mutate: func(s *Scene) {
				s.AddNode(&Node{ID: NewNodeID("bond/x"), Kind: NodeBond,
					Data: BondData{A: s.Lookup("O1").ID, B: NewNodeID("ghost")}})
				s.AddRoot(NewNodeID("bond/x"))
			},
			want: "bond endpoint b reference",
		},
		{
			name: "endpoint not atom",
			mutate: func(s *Scene) {
				s.AddNode(&Node{ID: NewNodeID("bond/y"), Kind: NodeBond,
					Data: BondData{A: s.Lookup("O1").ID, B: s.Roots[0]}})
				s.AddRoot(NewNodeID("bond/y"))
			},
			want: "is group, not atom",
		},
		{
			name: "negative radius",
			mutate: func(s *Scene) {
				s.AddNode(&Node{ID: NewNodeID("bond/z"), Kind: NodeBond,
					Data: BondData{A: s.Lookup("O1").ID, B: s.Lookup("H1").ID, Radius: -1}})
				s.AddRoot(NewNodeID("bond/z"))
			},
			want: "bond radius",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := buildWater()
			tt.mutate(s)
			errs := Validate(s)
			assert.True(t, hasError(errs, tt.want), "findings: %v", errs)
		})
	}
}

func TestValidateShapes(t *testing.T) {
	tests := []struct {
		name string
		data NodeData
		kind NodeKind
		want string
	}{
		{"negative atom radius", AtomData{Element: "C", Radius: -0.1}, NodeAtom, "atom radius"},
		{"nan position", AtomData{Element: "C", Position: Vec3{math.NaN(), 0, 0}}, NodeAtom, "not finite"},
		{"short trace", RibbonData{Chain: "A", Trace: []Vec3{{}}}, NodeRibbon, "need at least 2"},
		{"negative width", RibbonData{Chain: "A", Trace: []Vec3{{}, {1, 0, 0}}, Width: -2}, NodeRibbon, "ribbon width"},
		{"inverted cell", CellData{Min: Vec3{1, 0, 0}, Max: Vec3{0, 1, 1}}, NodeCell, "cell min exceeds max"},
		{"bad color", CellData{Max: Vec3{1, 1, 1}, Color: "#12"}, NodeCell, "cell color"},
		{"bad atom color", AtomData{Element: "C", Color: "purple"}, NodeAtom, "atom color"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			id := NewNodeID(tt.name)
			s.AddNode(&Node{ID: id, Kind: tt.kind, Data: tt.data})
			s.AddRoot(id)
			errs := Validate(s)
			assert.True(t, hasError(errs, tt.want), "findings: %v", errs)
		})
	}
}

func TestValidateElementStyles(t *testing.T) {
	s := buildWater()
	s.SetElement("O", ElementStyle{Color: "nope", Radius: -1})

	errs := Validate(s)
	assert.True(t, hasError(errs, "element O radius"))
	assert.True(t, hasError(errs, "element O color"))
}

func TestValidateUnknownElementWarns(t *testing.T) {
	s := buildWater()
	id := NewNodeID("atom/X1")
	s.AddNode(&Node{ID: id, Kind: NodeAtom, Name: "X1", Data: AtomData{Element: "Xx"}})
	s.AddRoot(id)

	errs := Validate(s)
	assert.True(t, hasWarning(errs, `unknown element "Xx"`))

	// A scene-level style makes the element known.
	s.SetElement("Xx", ElementStyle{Color: "#ffffff"})
	assert.False(t, hasWarning(Validate(s), "unknown element"))
}

func TestValidateOrphanWarning(t *testing.T) {
	s := buildWater()
	s.AddNode(&Node{ID: NewNodeID("stray"), Kind: NodeAtom, Name: "stray", Data: AtomData{Element: "C"}})

	errs := Validate(s)
	assert.True(t, hasWarning(errs, `"stray" is not reachable`))
}

func TestValidateBondEndpointsReachable(t *testing.T) {
	// Atoms referenced only through a bond are not orphans.
	s := New()
	a := NewNodeID("atom/a")
	b := NewNodeID("atom/b")
	bond := NewNodeID("bond/ab")
	s.AddNode(&Node{ID: a, Kind: NodeAtom, Name: "a", Data: AtomData{Element: "C"}})
	s.AddNode(&Node{ID: b, Kind: NodeAtom, Name: "b", Data: AtomData{Element: "C", Position: Vec3{1.5, 0, 0}}})
	s.AddNode(&Node{ID: bond, Kind: NodeBond, Data: BondData{A: a, B: b}})
	s.AddRoot(bond)

	assert.Empty(t, Validate(s))
}

func TestValidateDuplicateNames(t *testing.T) {
	s := buildWater()
	s.Nodes[NewNodeID("dup")] = &Node{ID: NewNodeID("dup"), Kind: NodeAtom, Name: "O1", Data: AtomData{Element: "O"}}
	s.AddRoot(NewNodeID("dup"))

	assert.True(t, hasError(Validate(s), `duplicate name "O1"`))
}

func TestValidateAllSeparates(t *testing.T) {
	s := buildWater()
	s.AddNode(&Node{ID: NewNodeID("stray"), Kind: NodeAtom, Name: "stray", Data: AtomData{Element: "C"}})
	s.AddRoot(NewNodeID("ghost-root"))

	r := ValidateAll(s)
	assert.False(t, r.OK())
	assert.Len(t, r.Errors, 1)
	assert.Len(t, r.Warnings, 1)
}

func TestValidationErrorString(t *testing.T) {
	e := ValidationError{Message: "boom", Severity: SeverityError}
	assert.Equal(t, "[error] boom", e.Error())

	id := NewNodeID("n")
	w := ValidationError{NodeID: id, Message: "hm", Severity: SeverityWarning}
	assert.Equal(t, "[warning] node "+id.Short()+": hm", w.Error())
}
