package main

import (
	"strings"
	"testing"

	"github.com/chazu/molmesh/pkg/config"
	"github.com/chazu/molmesh/pkg/scene"
)

// ---------------------------------------------------------------------------
// 1. Empty editor: empty string -> 0 meshes, 0 errors, non-nil slices.
// ---------------------------------------------------------------------------

func TestE2EEmptySourceExtended(t *testing.T) {
	app := NewApp()
	result := app.Evaluate("")

	if len(result.Errors) != 0 {
		t.Errorf("expected 0 errors for empty source, got %d", len(result.Errors))
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected 0 warnings for empty source, got %d", len(result.Warnings))
	}
	// Ensure slices are non-nil (JSON should serialize as [] not null).
	if result.Meshes == nil {
		t.Error("Meshes should be non-nil empty slice, got nil")
	}
	if result.Errors == nil {
		t.Error("Errors should be non-nil empty slice, got nil")
	}
	if result.Warnings == nil {
		t.Error("Warnings should be non-nil empty slice, got nil")
	}
}

func TestE2ECommentsOnly(t *testing.T) {
	app := NewApp()
	result := app.Evaluate("; nothing here\n;; or here\n")
	if len(result.Errors) != 0 || len(result.Meshes) != 0 {
		t.Errorf("expected nothing, got %d errors and %d meshes", len(result.Errors), len(result.Meshes))
	}
}

// ---------------------------------------------------------------------------
// 2. Script errors carry messages and, where known, line numbers.
// ---------------------------------------------------------------------------

func TestE2ESyntaxErrorWithLineInfo(t *testing.T) {
	app := NewApp()

	// Valid code on line 1, broken code on line 2 so line info is meaningful.
	result := app.Evaluate("(+ 1 2)\n(model \"m\"")
	if len(result.Errors) == 0 {
		t.Fatal("expected at least one eval error for unmatched parens")
	}
	e := result.Errors[0]
	if e.Message == "" {
		t.Error("syntax error should have a non-empty message")
	}
	t.Logf("syntax error: line=%d, col=%d, message=%q", e.Line, e.Col, e.Message)
}

func TestE2EUnknownAtomReference(t *testing.T) {
	app := NewApp()
	result := app.Evaluate(`
(model "m"
  (atom "A" :element "C")
  (bond (atom-ref "A") (atom-ref "B")))`)

	if len(result.Errors) == 0 {
		t.Fatal("expected an error for an unknown atom reference")
	}
	if !strings.Contains(result.Errors[0].Message, `"B"`) {
		t.Errorf("error should name the missing atom, got %q", result.Errors[0].Message)
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes, got %d", len(result.Meshes))
	}
}

// ---------------------------------------------------------------------------
// 3. Validation: errors stop meshing, warnings do not.
// ---------------------------------------------------------------------------

func TestE2ENegativeRadiusIsValidationError(t *testing.T) {
	app := NewApp()
	result := app.Evaluate(`(model "m" (atom "A" :element "C" :radius -0.5))`)

	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 validation error, got %v", result.Errors)
	}
	if !strings.Contains(result.Errors[0].Message, "must not be negative") {
		t.Errorf("unexpected message %q", result.Errors[0].Message)
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes, got %d", len(result.Meshes))
	}
}

func TestE2EUnknownElementIsWarning(t *testing.T) {
	app := NewApp()
	result := app.Evaluate(`(model "m" (atom "A" :element "Qq"))`)

	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0].Message, "unknown element") {
		t.Errorf("expected an unknown element warning, got %v", result.Warnings)
	}
	if len(result.Meshes) != 1 {
		t.Errorf("the atom should still be drawn, got %d meshes", len(result.Meshes))
	}
}

func TestE2EBadColorIsValidationError(t *testing.T) {
	app := NewApp()
	result := app.Evaluate(`(model "m" (atom "A" :element "C" :color "#12"))`)
	if len(result.Errors) == 0 {
		t.Fatal("expected a color error")
	}
}

// ---------------------------------------------------------------------------
// 4. Rapid evaluation: the engine recovers between error and success states.
// ---------------------------------------------------------------------------

func TestE2ERapidEvaluationAlternating(t *testing.T) {
	// Calls are sequential: zygomys has global state that is not safe for
	// concurrent sandbox creation.
	app := NewApp()

	sources := []string{
		`(model "ok" (atom "A" :element "C"))`,
		`(model "broken"`,
		``,
		`(atom-ref "missing")`,
		`(model "also-ok" (atom "B" :element "N" :at (vec3 1 0 0)))`,
		`(+ 1 2)`,
		`; just a comment`,
		`(undefined-func 1 2 3)`,
		`(model "last" (unit-cell :min (vec3 0 0 0) :max (vec3 1 1 1)))`,
	}

	for i, source := range sources {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("iteration %d panicked on source %q: %v", i, source, r)
				}
			}()
			_ = app.Evaluate(source)
		}()
	}

	result := app.Evaluate(sources[0])
	if len(result.Errors) != 0 || len(result.Meshes) != 1 {
		t.Errorf("engine did not recover: %d errors, %d meshes", len(result.Errors), len(result.Meshes))
	}
}

// ---------------------------------------------------------------------------
// 5. Configuration flows into the kernel and mesh builder.
// ---------------------------------------------------------------------------

func TestE2EGroupLimitSplitsAtoms(t *testing.T) {
	cfg := config.Default()
	cfg.Kernel.SphereSegments = 8 // 45 vertices per sphere
	cfg.Mesh.MaxGroupVertices = 100
	app := NewAppWithConfig(cfg)

	result := app.Evaluate(`
(model "chain"
  (atom "C1" :element "C" :at (vec3 0 0 0))
  (atom "C2" :element "C" :at (vec3 1.5 0 0))
  (atom "C3" :element "C" :at (vec3 3 0 0))
  (atom "C4" :element "C" :at (vec3 4.5 0 0))
  (atom "C5" :element "C" :at (vec3 6 0 0)))`)
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	atoms := meshByName(result.Meshes, "atoms")
	if atoms == nil {
		t.Fatal("missing atoms mesh")
	}
	// Two spheres fit in 100 vertices: 2 + 2 + 1.
	if len(atoms.Groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(atoms.Groups))
	}
	for i, g := range atoms.Groups {
		if n := len(g.Vertices) / 3; n > 100 {
			t.Errorf("group %d holds %d vertices", i, n)
		}
	}
}

func TestE2EElementOverrideFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Elements = map[string]config.ElementConfig{"c": {Color: "#00ff00"}}
	app := NewAppWithConfig(cfg)

	result := app.Evaluate(`(model "m" (atom "A" :element "C"))`)
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	colors := result.Meshes[0].Groups[0].Colors
	if colors[0] != 0 || colors[1] != 1 || colors[2] != 0 {
		t.Errorf("expected green atom, got %v", colors[:3])
	}
}

func TestE2ESdfxKernel(t *testing.T) {
	cfg := config.Default()
	cfg.Kernel.Name = "sdfx"
	cfg.Kernel.MarchingCells = 8
	app := NewAppWithConfig(cfg)
	if app.Kernel().Name() != "sdfx" {
		t.Fatalf("kernel = %q", app.Kernel().Name())
	}

	result := app.Evaluate(`(model "m" (atom "A" :element "O"))`)
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Meshes) != 1 || len(result.Meshes[0].Groups[0].Faces) == 0 {
		t.Error("expected a marching cubes sphere")
	}
}

// ---------------------------------------------------------------------------
// 6. Scenes built outside the DSL go through the same validation.
// ---------------------------------------------------------------------------

func TestE2EEvaluateSceneValidates(t *testing.T) {
	s := scene.New()
	a := &scene.Node{ID: scene.NewNodeID("a"), Kind: scene.NodeAtom, Name: "a", Data: scene.AtomData{Element: "C"}}
	s.AddNode(a)
	s.AddNode(&scene.Node{ID: scene.NewNodeID("self"), Kind: scene.NodeBond, Data: scene.BondData{A: a.ID, B: a.ID}})
	s.AddRoot(a.ID)

	result := NewApp().EvaluateScene(s)
	if len(result.Errors) == 0 {
		t.Fatal("expected a self-bond error")
	}
	if !strings.Contains(result.Errors[0].Message, "self-bond") {
		t.Errorf("unexpected message %q", result.Errors[0].Message)
	}
}
