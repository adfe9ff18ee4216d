// Package config loads molmesh settings from a TOML file layered over
// built-in defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/chazu/molmesh/pkg/geometry"
	"github.com/chazu/molmesh/pkg/palette"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalid wraps every validation failure returned by Validate.
var ErrInvalid = errors.New("config: invalid")

// Config is the full set of molmesh settings.
type Config struct {
	Engine   EngineConfig             `toml:"engine"`
	Kernel   KernelConfig             `toml:"kernel"`
	Mesh     MeshConfig               `toml:"mesh"`
	Ribbon   RibbonConfig             `toml:"ribbon"`
	Viewer   ViewerConfig             `toml:"viewer"`
	Log      LogConfig                `toml:"log"`
	Elements map[string]ElementConfig `toml:"elements"`
}

// EngineConfig bounds script evaluation.
type EngineConfig struct {
	TimeoutMS int `toml:"timeout_ms"`
}

// Timeout returns TimeoutMS as a duration.
func (c EngineConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// KernelConfig selects and tunes the geometry kernel.
type KernelConfig struct {
	// Name is "parametric" or "sdfx".
	Name string `toml:"name"`
	// SphereSegments is the longitude count of parametric spheres.
	SphereSegments int `toml:"sphere_segments"`
	// CylinderSegments is the radial count of parametric cylinders.
	CylinderSegments int `toml:"cylinder_segments"`
	// MarchingCells is the marching cubes resolution of the sdfx kernel.
	MarchingCells int `toml:"marching_cells"`
}

// MeshConfig controls how fragments are packed into geometry groups.
type MeshConfig struct {
	MaxGroupVertices int     `toml:"max_group_vertices"`
	AtomScale        float64 `toml:"atom_scale"` // multiplies van der Waals radii
	BondRadius       float64 `toml:"bond_radius"`
}

// RibbonConfig holds backbone ribbon defaults.
type RibbonConfig struct {
	Width     float64 `toml:"width"`
	Subdivide int     `toml:"subdivide"`
}

// ViewerConfig is the viewer backend preference order.
type ViewerConfig struct {
	Order []string `toml:"order"`
}

// LogConfig sets the log level ("debug", "info", "warn", "error").
type LogConfig struct {
	Level string `toml:"level"`
}

// ElementConfig overrides the default style of one element.
type ElementConfig struct {
	Color  string  `toml:"color"`
	Radius float64 `toml:"radius"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Engine: EngineConfig{TimeoutMS: 5000},
		Kernel: KernelConfig{
			Name:             "parametric",
			SphereSegments:   24,
			CylinderSegments: 12,
			MarchingCells:    32,
		},
		Mesh: MeshConfig{
			MaxGroupVertices: geometry.MaxGroupVertices,
			AtomScale:        0.3,
			BondRadius:       0.15,
		},
		Ribbon: RibbonConfig{
			Width:     1.5,
			Subdivide: 4,
		},
		Viewer: ViewerConfig{
			Order: []string{"gpu", "json"},
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path and decodes it over the defaults. An empty path returns
// the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML data over the defaults and validates the result.
// Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and element overrides.
func (c Config) Validate() error {
	if c.Engine.TimeoutMS <= 0 {
		return fmt.Errorf("%w: engine.timeout_ms must be positive", ErrInvalid)
	}
	switch c.Kernel.Name {
	case "parametric", "sdfx":
	default:
		return fmt.Errorf("%w: unknown kernel %q", ErrInvalid, c.Kernel.Name)
	}
	if c.Kernel.SphereSegments < 4 {
		return fmt.Errorf("%w: kernel.sphere_segments must be at least 4", ErrInvalid)
	}
	if c.Kernel.CylinderSegments < 3 {
		return fmt.Errorf("%w: kernel.cylinder_segments must be at least 3", ErrInvalid)
	}
	if c.Kernel.MarchingCells < 4 {
		return fmt.Errorf("%w: kernel.marching_cells must be at least 4", ErrInvalid)
	}
	if c.Mesh.MaxGroupVertices <= 0 || c.Mesh.MaxGroupVertices > geometry.MaxGroupVertices {
		return fmt.Errorf("%w: mesh.max_group_vertices must be in 1..%d", ErrInvalid, geometry.MaxGroupVertices)
	}
	if c.Mesh.AtomScale <= 0 {
		return fmt.Errorf("%w: mesh.atom_scale must be positive", ErrInvalid)
	}
	if c.Mesh.BondRadius <= 0 {
		return fmt.Errorf("%w: mesh.bond_radius must be positive", ErrInvalid)
	}
	if c.Ribbon.Width <= 0 {
		return fmt.Errorf("%w: ribbon.width must be positive", ErrInvalid)
	}
	if c.Ribbon.Subdivide < 1 {
		return fmt.Errorf("%w: ribbon.subdivide must be at least 1", ErrInvalid)
	}
	if len(c.Viewer.Order) == 0 {
		return fmt.Errorf("%w: viewer.order is empty", ErrInvalid)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	for sym, e := range c.Elements {
		if e.Color != "" {
			if _, err := palette.ParseHex(e.Color); err != nil {
				return fmt.Errorf("%w: elements.%s: %v", ErrInvalid, sym, err)
			}
		}
		if e.Radius < 0 {
			return fmt.Errorf("%w: elements.%s: negative radius", ErrInvalid, sym)
		}
	}
	return nil
}

// SlogLevel converts the configured level name.
func (c LogConfig) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return l, nil
}
