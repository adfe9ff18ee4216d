package scene

// Vec3 is a position or direction in scene space (Å).
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// IsZero reports whether all components are zero.
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// ---------------------------------------------------------------------------
// Atoms and bonds
// ---------------------------------------------------------------------------

// AtomData is one atom drawn as a sphere. A zero Radius or empty Color
// falls back to the element style.
type AtomData struct {
	Element  string  `json:"element"`
	Position Vec3    `json:"position"`
	Radius   float64 `json:"radius,omitempty"`
	Color    string  `json:"color,omitempty"`
}

func (AtomData) nodeData() {}

// BondData is a bond between two atom nodes drawn as a cylinder split at
// its midpoint, each half in its atom's color. A zero Radius uses the
// configured default.
type BondData struct {
	A      NodeID  `json:"a"`
	B      NodeID  `json:"b"`
	Radius float64 `json:"radius,omitempty"`
}

func (BondData) nodeData() {}

// ---------------------------------------------------------------------------
// Backbone
// ---------------------------------------------------------------------------

// RibbonData is a flat ribbon following a backbone trace (typically the
// alpha carbons of one chain). Zero Width or Subdivide use configured
// defaults.
type RibbonData struct {
	Chain     string  `json:"chain"`
	Trace     []Vec3  `json:"trace"`
	Width     float64 `json:"width,omitempty"`
	Subdivide int     `json:"subdivide,omitempty"`
	Color     string  `json:"color,omitempty"`
}

func (RibbonData) nodeData() {}

// ---------------------------------------------------------------------------
// Cell
// ---------------------------------------------------------------------------

// CellData is an axis-aligned box drawn as 12 line segments.
type CellData struct {
	Min   Vec3   `json:"min"`
	Max   Vec3   `json:"max"`
	Color string `json:"color,omitempty"`
}

func (CellData) nodeData() {}

// ---------------------------------------------------------------------------
// Transform
// ---------------------------------------------------------------------------

// TransformData is a spatial transformation applied to its children:
// rotation first (Euler angles in degrees, X then Y then Z), then
// translation. Created by the (place ...) form.
type TransformData struct {
	Translation *Vec3 `json:"translation,omitempty"`
	Rotation    *Vec3 `json:"rotation,omitempty"`
}

func (TransformData) nodeData() {}

// ---------------------------------------------------------------------------
// Group
// ---------------------------------------------------------------------------

// GroupData is a logical grouping. Created by the (model ...) form.
type GroupData struct {
	Description string `json:"description,omitempty"`
}

func (GroupData) nodeData() {}

// ElementStyle overrides the drawing style of an element for one scene.
// Created by the (element ...) form.
type ElementStyle struct {
	Color  string  `json:"color,omitempty"`
	Radius float64 `json:"radius,omitempty"`
}
