package main

import (
	"os"
	"testing"

	"github.com/chazu/molmesh/pkg/viewer"
)

func meshByName(meshes []viewer.MeshData, name string) *viewer.MeshData {
	for i := range meshes {
		if meshes[i].Name == name {
			return &meshes[i]
		}
	}
	return nil
}

func evalFile(t *testing.T, app *App, path string) EvalResult {
	t.Helper()
	source, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	result := app.Evaluate(string(source))
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}
	return result
}

// TestE2EWaterExample exercises the full pipeline: script -> engine -> scene
// -> validation -> tessellate -> finalized buffers.
func TestE2EWaterExample(t *testing.T) {
	result := evalFile(t, NewApp(), "examples/water.mol")

	if len(result.Meshes) != 2 {
		t.Fatalf("expected atoms and bonds meshes, got %d", len(result.Meshes))
	}
	atoms := meshByName(result.Meshes, "atoms")
	if atoms == nil {
		t.Fatal("missing atoms mesh")
	}
	if atoms.Kind != "grouped" || len(atoms.Groups) != 1 {
		t.Fatalf("atoms: kind %q with %d groups", atoms.Kind, len(atoms.Groups))
	}
	g := atoms.Groups[0]
	if len(g.Vertices) == 0 || len(g.Vertices) != len(g.Normals) || len(g.Vertices) != len(g.Colors) {
		t.Errorf("atoms: channel lengths %d/%d/%d", len(g.Vertices), len(g.Colors), len(g.Normals))
	}
	if len(g.Faces)%3 != 0 {
		t.Errorf("atoms: %d face indices is not a multiple of 3", len(g.Faces))
	}
	n := len(g.Vertices) / 3
	for _, idx := range g.Faces {
		if int(idx) >= n {
			t.Fatalf("atoms: index %d out of range %d", idx, n)
		}
	}

	bonds := meshByName(result.Meshes, "bonds")
	if bonds == nil || len(bonds.Groups) == 0 {
		t.Fatal("missing bonds mesh")
	}
	if result.Model == nil {
		t.Fatal("result has no model")
	}
	if result.Model.Bounds.IsEmpty() {
		t.Error("model bounds are empty")
	}
}

// TestE2EHelixExample covers ribbons, placed groups and unit cells.
func TestE2EHelixExample(t *testing.T) {
	result := evalFile(t, NewApp(), "examples/helix.mol")

	for _, name := range []string{"atoms", "bonds", "cartoon", "cells"} {
		if meshByName(result.Meshes, name) == nil {
			t.Errorf("missing %s mesh", name)
		}
	}
	cartoon := meshByName(result.Meshes, "cartoon")
	if cartoon != nil {
		if cartoon.Side != "double" {
			t.Errorf("cartoon side = %q, want double", cartoon.Side)
		}
		if len(cartoon.Groups) != 1 {
			t.Errorf("expected one cartoon group per chain, got %d", len(cartoon.Groups))
		} else if len(cartoon.Groups[0].Faces)%6 != 0 {
			t.Errorf("cartoon faces should be whole quads, got %d indices", len(cartoon.Groups[0].Faces))
		}
	}
	cells := meshByName(result.Meshes, "cells")
	if cells != nil {
		if cells.Kind != "flat" {
			t.Errorf("cells kind = %q", cells.Kind)
		}
		// 12 edges, 2 vertices each, 3 floats per vertex.
		if got := len(cells.Groups[0].Vertices); got != 72 {
			t.Errorf("cells: expected 72 floats, got %d", got)
		}
	}
}

// TestE2EEmptySource ensures the pipeline handles empty input gracefully.
func TestE2EEmptySource(t *testing.T) {
	app := NewApp()
	result := app.Evaluate("")

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors for empty source: %v", result.Errors)
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes for empty source, got %d", len(result.Meshes))
	}
}

// TestE2ESyntaxError ensures eval errors are reported, not fatal errors.
func TestE2ESyntaxError(t *testing.T) {
	app := NewApp()
	result := app.Evaluate(`(model "m"`)

	if len(result.Errors) == 0 {
		t.Fatal("expected eval errors for syntax error")
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes on error, got %d", len(result.Meshes))
	}
	if result.Model != nil {
		t.Error("expected no model on error")
	}
}

// TestE2ESingleAtom ensures a minimal source renders one atoms mesh.
func TestE2ESingleAtom(t *testing.T) {
	app := NewApp()
	result := app.Evaluate(`(model "m" (atom "C1" :element "C"))`)

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error: %s", e.Message)
		}
		t.FailNow()
	}
	if len(result.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(result.Meshes))
	}
	if result.Meshes[0].Name != "atoms" {
		t.Errorf("expected mesh 'atoms', got %q", result.Meshes[0].Name)
	}
}
