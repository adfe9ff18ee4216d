package main

import (
	"strings"

	"github.com/chazu/molmesh/pkg/config"
	"github.com/chazu/molmesh/pkg/engine"
	"github.com/chazu/molmesh/pkg/kernel"
	"github.com/chazu/molmesh/pkg/kernel/parametric"
	"github.com/chazu/molmesh/pkg/kernel/sdfx"
	"github.com/chazu/molmesh/pkg/logging"
	"github.com/chazu/molmesh/pkg/scene"
	"github.com/chazu/molmesh/pkg/tessellate"
	"github.com/chazu/molmesh/pkg/viewer"
)

// App runs the scene pipeline: script -> scene -> validation -> finalized
// meshes.
type App struct {
	cfg    config.Config
	engine *engine.Engine
	kernel kernel.Kernel
	opts   tessellate.Options
}

// EvalErrorData is a JSON-serializable evaluation or validation finding.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of one evaluation. Meshes hold the
// finalized per-group buffers.
type EvalResult struct {
	Meshes   []viewer.MeshData `json:"meshes"`
	Errors   []EvalErrorData   `json:"errors"`
	Warnings []EvalErrorData   `json:"warnings"`

	// Model is the finalized model behind Meshes, nil on error.
	Model *tessellate.Model `json:"-"`
}

func newResult() EvalResult {
	return EvalResult{
		Meshes:   []viewer.MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}
}

func (r *EvalResult) fail(msg string) EvalResult {
	r.Errors = append(r.Errors, EvalErrorData{Message: msg})
	r.Meshes = []viewer.MeshData{}
	r.Model = nil
	return *r
}

// NewApp creates an App with the default configuration.
func NewApp() *App {
	return NewAppWithConfig(config.Default())
}

// NewAppWithConfig creates an App from cfg. cfg is assumed valid.
func NewAppWithConfig(cfg config.Config) *App {
	return &App{
		cfg:    cfg,
		engine: engine.NewEngine(engine.WithTimeout(cfg.Engine.Timeout())),
		kernel: newKernel(cfg.Kernel),
		opts:   tessellateOptions(cfg),
	}
}

func newKernel(kc config.KernelConfig) kernel.Kernel {
	switch kc.Name {
	case "sdfx":
		return sdfx.New(kc.MarchingCells)
	default:
		return parametric.New()
	}
}

func tessellateOptions(cfg config.Config) tessellate.Options {
	opts := tessellate.DefaultOptions()
	opts.SphereSegments = cfg.Kernel.SphereSegments
	opts.CylinderSegments = cfg.Kernel.CylinderSegments
	opts.MaxGroupVertices = cfg.Mesh.MaxGroupVertices
	opts.AtomScale = cfg.Mesh.AtomScale
	opts.BondRadius = cfg.Mesh.BondRadius
	opts.RibbonWidth = cfg.Ribbon.Width
	opts.RibbonSubdivide = cfg.Ribbon.Subdivide
	if len(cfg.Elements) > 0 {
		opts.Elements = make(map[string]scene.ElementStyle, len(cfg.Elements))
		for sym, e := range cfg.Elements {
			opts.Elements[strings.ToUpper(sym)] = scene.ElementStyle{Color: e.Color, Radius: e.Radius}
		}
	}
	return opts
}

// Kernel returns the geometry kernel in use.
func (a *App) Kernel() kernel.Kernel {
	return a.kernel
}

// Evaluate takes scene script source and returns mesh data and errors.
func (a *App) Evaluate(source string) EvalResult {
	result := newResult()

	s, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, superseded).
		logging.Logger().Error("evaluate failed", "err", err)
		return result.fail(err.Error())
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}
	return a.build(s, result)
}

// EvaluateScene runs validation and meshing on an already built scene, such
// as one read from a structure file.
func (a *App) EvaluateScene(s *scene.Scene) EvalResult {
	return a.build(s, newResult())
}

func (a *App) build(s *scene.Scene, result EvalResult) EvalResult {
	log := logging.Logger()

	v := scene.ValidateAll(s)
	for _, w := range v.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Message: w.Error()})
	}
	if !v.OK() {
		for _, e := range v.Errors {
			result.Errors = append(result.Errors, EvalErrorData{Message: e.Error()})
		}
		return result
	}

	model, err := tessellate.Tessellate(s, a.kernel, a.opts)
	if err != nil {
		log.Error("tessellate failed", "err", err)
		return result.fail("tessellation failed: " + err.Error())
	}

	for _, m := range model.Meshes() {
		if m.IsEmpty() {
			continue
		}
		md, err := viewer.Export(m)
		if err != nil {
			return result.fail(err.Error())
		}
		result.Meshes = append(result.Meshes, md)
	}
	result.Model = model
	log.Info("scene evaluated",
		"nodes", s.NodeCount(),
		"meshes", len(result.Meshes),
		"warnings", len(result.Warnings))
	return result
}
