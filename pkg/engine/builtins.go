package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/molmesh/pkg/scene"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms scene script source before passing it to
// zygomys. It performs three transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal), so
//     keywords never collide with user variables.
//  2. Kebab-case to underscore: atom-ref -> atom_ref. zygomys reads a
//     hyphen between identifier characters as subtraction.
//  3. ; line comments -> // line comments.
//
// All transformations respect string literal boundaries.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		switch {
		case b[i] == '"':
			j := skipString(b, i, '"', true)
			result = append(result, b[i:j]...)
			i = j
			continue
		case b[i] == '`':
			j := skipString(b, i, '`', false)
			result = append(result, b[i:j]...)
			i = j
			continue
		case b[i] == ';':
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		case b[i] == ':' && i+1 < len(b):
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				result = append(result, '"')
				result = append(result, kwPrefix...)
				result = append(result, b[i+1:j]...)
				result = append(result, '"')
				i = j
				continue
			}
		case b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isLetter(b[i+1]):
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

// skipString returns the index just past the string literal starting at
// b[start]. An unterminated literal runs to the end of input.
func skipString(b []byte, start int, quote byte, escapes bool) int {
	i := start + 1
	for i < len(b) && b[i] != quote {
		if escapes && b[i] == '\\' && i+1 < len(b) {
			i += 2
			continue
		}
		i++
	}
	if i < len(b) {
		i++
	}
	return i
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpNodeRef wraps a scene.NodeID so it can be passed between builtins.
type sexpNodeRef struct {
	id   scene.NodeID
	kind scene.NodeKind
	name string // human-readable name for error messages
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	if n.name != "" {
		return fmt.Sprintf("(%s %q)", n.kind, n.name)
	}
	return fmt.Sprintf("(%s %s)", n.kind, n.id.Short())
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a scene.Vec3.
type sexpVec3 struct {
	vec scene.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// float returns keyword k as a number, or def when absent.
func (a kwArgs) float(form, k string, def float64) (float64, error) {
	v, ok := a.kw[k]
	if !ok {
		return def, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %s: %w", form, k, err)
	}
	return f, nil
}

// str returns keyword k as a string, or "" when absent.
func (a kwArgs) str(form, k string) (string, error) {
	v, ok := a.kw[k]
	if !ok {
		return "", nil
	}
	s, err := toString(v)
	if err != nil {
		return "", fmt.Errorf("%s: %s: %w", form, k, err)
	}
	return s, nil
}

// vec returns keyword k as a Vec3 and whether it was present.
func (a kwArgs) vec(form, k string) (scene.Vec3, bool, error) {
	v, ok := a.kw[k]
	if !ok {
		return scene.Vec3{}, false, nil
	}
	vec, err := toVec3(v)
	if err != nil {
		return scene.Vec3{}, false, fmt.Errorf("%s: %s: %w", form, k, err)
	}
	return vec, true, nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toNodeRef extracts a node reference.
func toNodeRef(s zygo.Sexp) (*sexpNodeRef, error) {
	if ref, ok := s.(*sexpNodeRef); ok {
		return ref, nil
	}
	return nil, fmt.Errorf("expected node reference, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (scene.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return scene.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// ---------------------------------------------------------------------------
// Scene builder
// ---------------------------------------------------------------------------

// builder accumulates one evaluation's scene. Anonymous nodes are numbered
// per evaluation, so the same source always yields the same IDs.
type builder struct {
	s    *scene.Scene
	anon map[string]int
}

func newBuilder() *builder {
	return &builder{s: scene.New(), anon: make(map[string]int)}
}

// anonID returns the next ID for an unnamed node of the given form.
func (b *builder) anonID(form string) scene.NodeID {
	b.anon[form]++
	return scene.NewNodeID(fmt.Sprintf("%s/#%d", form, b.anon[form]))
}

// add inserts a node and returns a reference to it.
func (b *builder) add(n *scene.Node) *sexpNodeRef {
	b.s.AddNode(n)
	return &sexpNodeRef{id: n.ID, kind: n.Kind, name: n.Name}
}

// named rejects a second node with the same name.
func (b *builder) named(form, name string) (scene.NodeID, error) {
	if name == "" {
		return scene.ZeroID, fmt.Errorf("%s: name must not be empty", form)
	}
	if b.s.Lookup(name) != nil {
		return scene.ZeroID, fmt.Errorf("%s: name %q already defined", form, name)
	}
	return scene.NewNodeID(form + "/" + name), nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the scene DSL builtins into a zygomys
// environment. The builtins populate b's scene during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, b *builder) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var c [3]float64
		for i, axis := range []string{"x", "y", "z"} {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %s: %w", axis, err)
			}
			c[i] = f
		}
		return &sexpVec3{vec: scene.Vec3{X: c[0], Y: c[1], Z: c[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (element "C" :color "#909090" :radius 0.7)
	// -----------------------------------------------------------------------
	env.AddFunction("element", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("element requires a symbol argument")
		}
		symbol, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("element: symbol: %w", err)
		}
		var st scene.ElementStyle
		if st.Color, err = pa.str("element", "color"); err != nil {
			return zygo.SexpNull, err
		}
		if st.Radius, err = pa.float("element", "radius", 0); err != nil {
			return zygo.SexpNull, err
		}
		b.s.SetElement(symbol, st)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (atom "CA1" :element "C" :at (vec3 0 0 0) :radius 0.5 :color "#ff0000")
	// -----------------------------------------------------------------------
	env.AddFunction("atom", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("atom requires a name argument")
		}
		atomName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("atom: name: %w", err)
		}
		id, err := b.named("atom", atomName)
		if err != nil {
			return zygo.SexpNull, err
		}

		var ad scene.AtomData
		if ad.Element, err = pa.str("atom", "element"); err != nil {
			return zygo.SexpNull, err
		}
		if ad.Element == "" {
			return zygo.SexpNull, fmt.Errorf("atom %q: :element is required", atomName)
		}
		if ad.Position, _, err = pa.vec("atom", "at"); err != nil {
			return zygo.SexpNull, err
		}
		if ad.Radius, err = pa.float("atom", "radius", 0); err != nil {
			return zygo.SexpNull, err
		}
		if ad.Color, err = pa.str("atom", "color"); err != nil {
			return zygo.SexpNull, err
		}

		return b.add(&scene.Node{ID: id, Kind: scene.NodeAtom, Name: atomName, Data: ad}), nil
	})

	// -----------------------------------------------------------------------
	// (atom-ref "CA1")
	// -----------------------------------------------------------------------
	env.AddFunction("atom_ref", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("atom-ref requires a name argument")
		}
		atomName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("atom-ref: name: %w", err)
		}
		n := b.s.Lookup(atomName)
		if n == nil || n.Kind != scene.NodeAtom {
			return zygo.SexpNull, fmt.Errorf("atom-ref: no atom named %q", atomName)
		}
		return &sexpNodeRef{id: n.ID, kind: n.Kind, name: n.Name}, nil
	})

	// -----------------------------------------------------------------------
	// (bond (atom-ref "a") (atom-ref "b") :radius 0.15)
	// -----------------------------------------------------------------------
	env.AddFunction("bond", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("bond requires two atom references, got %d", len(pa.positional))
		}
		var ends [2]*sexpNodeRef
		for i, p := range pa.positional {
			ref, err := toNodeRef(p)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("bond: endpoint %d: %w", i+1, err)
			}
			if ref.kind != scene.NodeAtom {
				return zygo.SexpNull, fmt.Errorf("bond: endpoint %d is a %s, not an atom", i+1, ref.kind)
			}
			ends[i] = ref
		}
		radius, err := pa.float("bond", "radius", 0)
		if err != nil {
			return zygo.SexpNull, err
		}
		bd := scene.BondData{A: ends[0].id, B: ends[1].id, Radius: radius}
		return b.add(&scene.Node{ID: b.anonID("bond"), Kind: scene.NodeBond, Data: bd}), nil
	})

	// -----------------------------------------------------------------------
	// (ribbon "A" :trace (list (vec3 ...) ...) :width 1.5 :color "#..." :subdivide 4)
	// -----------------------------------------------------------------------
	env.AddFunction("ribbon", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("ribbon requires a chain argument")
		}
		chain, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("ribbon: chain: %w", err)
		}
		rd := scene.RibbonData{Chain: chain}

		if v, ok := pa.kw["trace"]; ok {
			items, err := sexpListToSlice(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("ribbon: trace: %w", err)
			}
			for i, item := range items {
				p, err := toVec3(item)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("ribbon: trace point %d: %w", i, err)
				}
				rd.Trace = append(rd.Trace, p)
			}
		}
		if rd.Width, err = pa.float("ribbon", "width", 0); err != nil {
			return zygo.SexpNull, err
		}
		sub, err := pa.float("ribbon", "subdivide", 0)
		if err != nil {
			return zygo.SexpNull, err
		}
		rd.Subdivide = int(sub)
		if rd.Color, err = pa.str("ribbon", "color"); err != nil {
			return zygo.SexpNull, err
		}

		return b.add(&scene.Node{ID: b.anonID("ribbon/" + chain), Kind: scene.NodeRibbon, Data: rd}), nil
	})

	// -----------------------------------------------------------------------
	// (unit-cell :min (vec3 0 0 0) :max (vec3 10 10 10) :color "#ffffff")
	// -----------------------------------------------------------------------
	env.AddFunction("unit_cell", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var cd scene.CellData
		var ok bool
		var err error
		if cd.Min, ok, err = pa.vec("unit-cell", "min"); err != nil {
			return zygo.SexpNull, err
		} else if !ok {
			return zygo.SexpNull, fmt.Errorf("unit-cell: :min is required")
		}
		if cd.Max, ok, err = pa.vec("unit-cell", "max"); err != nil {
			return zygo.SexpNull, err
		} else if !ok {
			return zygo.SexpNull, fmt.Errorf("unit-cell: :max is required")
		}
		if cd.Color, err = pa.str("unit-cell", "color"); err != nil {
			return zygo.SexpNull, err
		}
		return b.add(&scene.Node{ID: b.anonID("unit-cell"), Kind: scene.NodeCell, Data: cd}), nil
	})

	// -----------------------------------------------------------------------
	// (place ref :at (vec3 0 0 19) :rotate (vec3 0 90 0))
	// -----------------------------------------------------------------------
	env.AddFunction("place", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("place requires a node reference as first argument")
		}
		child, err := toNodeRef(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}

		td := scene.TransformData{}
		if v, ok, err := pa.vec("place", "at"); err != nil {
			return zygo.SexpNull, err
		} else if ok {
			td.Translation = &v
		}
		if v, ok, err := pa.vec("place", "rotate"); err != nil {
			return zygo.SexpNull, err
		} else if ok {
			td.Rotation = &v
		}

		return b.add(&scene.Node{
			ID:       b.anonID("place"),
			Kind:     scene.NodeTransform,
			Children: []scene.NodeID{child.id},
			Data:     td,
		}), nil
	})

	// -----------------------------------------------------------------------
	// (model "name" (atom ...) (bond ...) (place ...) ...)
	// (group "name" ...) is the same without registering a root, for nesting.
	// -----------------------------------------------------------------------
	env.AddFunction("model", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return b.group("model", args, true)
	})
	env.AddFunction("group", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return b.group("group", args, false)
	})
}

// group builds a named group node from its child references. Null children
// come from forms without a node, such as (element ...).
func (b *builder) group(form string, args []zygo.Sexp, root bool) (zygo.Sexp, error) {
	if len(args) < 1 {
		return zygo.SexpNull, fmt.Errorf("%s requires a name argument", form)
	}
	groupName, err := toString(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("%s: name: %w", form, err)
	}
	id, err := b.named(form, groupName)
	if err != nil {
		return zygo.SexpNull, err
	}

	var children []scene.NodeID
	for i, arg := range args[1:] {
		if arg == zygo.SexpNull {
			continue
		}
		ref, err := toNodeRef(arg)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: child %d: %w", form, i+1, err)
		}
		children = append(children, ref.id)
	}

	ref := b.add(&scene.Node{
		ID:       id,
		Kind:     scene.NodeGroup,
		Name:     groupName,
		Children: children,
		Data:     scene.GroupData{},
	})
	if root {
		b.s.AddRoot(id)
	}
	return ref, nil
}
