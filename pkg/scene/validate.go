package scene

import (
	"fmt"
	"math"

	"github.com/chazu/molmesh/pkg/palette"
)

// ValidationSeverity indicates whether a validation finding blocks meshing
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks meshing
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID             // which node has the problem (zero if scene-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// ValidationResult bundles blocking errors and advisory warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// OK reports whether the result carries no blocking errors.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Validate runs the structural and geometric checks on the scene and
// returns every finding. It never mutates the scene.
func Validate(s *Scene) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateDAG(s)...)
	errs = append(errs, validateReferences(s)...)
	errs = append(errs, validateNames(s)...)
	errs = append(errs, validateRoots(s)...)
	errs = append(errs, validateBonds(s)...)
	errs = append(errs, validateShapes(s)...)
	errs = append(errs, validateColors(s)...)
	return errs
}

// ValidateAll runs Validate and separates errors from warnings.
func ValidateAll(s *Scene) ValidationResult {
	var result ValidationResult
	for _, e := range Validate(s) {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, e)
		} else {
			result.Errors = append(result.Errors, e)
		}
	}
	return result
}

// validateDAG checks for cycles using DFS with 3-color marking.
func validateDAG(s *Scene) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make(map[NodeID]int)
	var errs []ValidationError

	var visit func(id NodeID) bool
	visit = func(id NodeID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("cycle detected: node %s is part of a cycle", id.Short()),
				Severity: SeverityError,
			})
			return true
		}

		color[id] = gray
		node, ok := s.Nodes[id]
		if !ok {
			// Dangling; reported by validateReferences.
			color[id] = black
			return false
		}
		for _, childID := range node.Children {
			if visit(childID) {
				return true
			}
		}
		color[id] = black
		return false
	}

	for id := range s.Nodes {
		if color[id] == white && visit(id) {
			break
		}
	}
	return errs
}

// validateReferences checks that child and bond endpoint references exist.
func validateReferences(s *Scene) []ValidationError {
	var errs []ValidationError

	for _, node := range s.Nodes {
		for _, childID := range node.Children {
			if _, ok := s.Nodes[childID]; !ok {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("child reference %s does not exist", childID.Short()),
					Severity: SeverityError,
				})
			}
		}

		if bd, ok := node.Data.(BondData); ok {
			for _, end := range []struct {
				label string
				id    NodeID
			}{{"a", bd.A}, {"b", bd.B}} {
				if _, ok := s.Nodes[end.id]; !ok {
					errs = append(errs, ValidationError{
						NodeID:   node.ID,
						Message:  fmt.Sprintf("bond endpoint %s reference %s does not exist", end.label, end.id.Short()),
						Severity: SeverityError,
					})
				}
			}
		}
	}
	return errs
}

// validateNames checks that every NameIndex entry exists and that no two
// nodes share a name.
func validateNames(s *Scene) []ValidationError {
	var errs []ValidationError

	for name, id := range s.NameIndex {
		if _, ok := s.Nodes[id]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("name index entry %q references non-existent node %s", name, id.Short()),
				Severity: SeverityError,
			})
		}
	}

	byName := make(map[string]int)
	for _, node := range s.Nodes {
		if node.Name != "" {
			byName[node.Name]++
		}
	}
	for name, n := range byName {
		if n > 1 {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("duplicate name %q assigned to %d nodes", name, n),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateRoots checks root references and warns about nodes unreachable
// from any root. Atoms reached only through a bond count as reachable.
func validateRoots(s *Scene) []ValidationError {
	var errs []ValidationError

	for _, rid := range s.Roots {
		if _, ok := s.Nodes[rid]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("root reference %s does not exist", rid.Short()),
				Severity: SeverityError,
			})
		}
	}
	if len(s.Nodes) == 0 {
		return errs
	}

	reachable := make(map[NodeID]bool)
	var queue []NodeID
	mark := func(id NodeID) {
		if _, ok := s.Nodes[id]; ok && !reachable[id] {
			reachable[id] = true
			queue = append(queue, id)
		}
	}
	for _, rid := range s.Roots {
		mark(rid)
	}
	for len(queue) > 0 {
		node := s.Nodes[queue[0]]
		queue = queue[1:]
		for _, childID := range node.Children {
			mark(childID)
		}
		if bd, ok := node.Data.(BondData); ok {
			mark(bd.A)
			mark(bd.B)
		}
	}

	for id, node := range s.Nodes {
		if !reachable[id] {
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("node %q is not reachable from any root (orphan)", node.DisplayName()),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}

// validateBonds checks that bonds join two distinct atoms.
func validateBonds(s *Scene) []ValidationError {
	var errs []ValidationError

	for _, node := range s.Nodes {
		bd, ok := node.Data.(BondData)
		if !ok {
			continue
		}
		if bd.A == bd.B {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  "bond references the same atom for both endpoints (self-bond)",
				Severity: SeverityError,
			})
		}
		for _, id := range []NodeID{bd.A, bd.B} {
			if end, ok := s.Nodes[id]; ok && end.Kind != NodeAtom {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("bond endpoint %s is %s, not atom", id.Short(), end.Kind),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

func finite(v Vec3) bool {
	for _, c := range []float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// validateShapes checks radii, trace lengths and cell extents.
func validateShapes(s *Scene) []ValidationError {
	var errs []ValidationError
	fail := func(id NodeID, format string, args ...any) {
		errs = append(errs, ValidationError{NodeID: id, Message: fmt.Sprintf(format, args...), Severity: SeverityError})
	}

	for _, node := range s.Nodes {
		switch d := node.Data.(type) {
		case AtomData:
			if d.Radius < 0 {
				fail(node.ID, "atom radius is %.4f, must not be negative", d.Radius)
			}
			if !finite(d.Position) {
				fail(node.ID, "atom position is not finite")
			}
		case BondData:
			if d.Radius < 0 {
				fail(node.ID, "bond radius is %.4f, must not be negative", d.Radius)
			}
		case RibbonData:
			if len(d.Trace) < 2 {
				fail(node.ID, "ribbon trace has %d points, need at least 2", len(d.Trace))
			}
			if d.Width < 0 {
				fail(node.ID, "ribbon width is %.4f, must not be negative", d.Width)
			}
			if d.Subdivide < 0 {
				fail(node.ID, "ribbon subdivide is %d, must not be negative", d.Subdivide)
			}
		case CellData:
			if d.Min.X > d.Max.X || d.Min.Y > d.Max.Y || d.Min.Z > d.Max.Z {
				fail(node.ID, "cell min exceeds max on at least one axis")
			}
		}
	}

	for sym, st := range s.Elements {
		if st.Radius < 0 {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("element %s radius is %.4f, must not be negative", sym, st.Radius),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateColors checks that every color string parses. Unknown element
// symbols are reported as warnings; they draw in the default color.
func validateColors(s *Scene) []ValidationError {
	var errs []ValidationError
	check := func(id NodeID, what, c string) {
		if c == "" {
			return
		}
		if _, err := palette.ParseHex(c); err != nil {
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("%s color %q: %v", what, c, err),
				Severity: SeverityError,
			})
		}
	}

	for _, node := range s.Nodes {
		switch d := node.Data.(type) {
		case AtomData:
			check(node.ID, "atom", d.Color)
			if _, known := palette.LookupElement(d.Element); !known {
				if _, styled := s.Element(d.Element); !styled {
					errs = append(errs, ValidationError{
						NodeID:   node.ID,
						Message:  fmt.Sprintf("unknown element %q, using default style", d.Element),
						Severity: SeverityWarning,
					})
				}
			}
		case RibbonData:
			check(node.ID, "ribbon", d.Color)
		case CellData:
			check(node.ID, "cell", d.Color)
		}
	}
	for sym, st := range s.Elements {
		check(ZeroID, "element "+sym, st.Color)
	}
	return errs
}
