// Package kernel defines the abstract geometry kernel that turns atom and
// bond primitives into triangle mesh fragments. Implementations
// (parametric, sdfx) live in subpackages; the tessellator only sees this
// interface, so backends can be swapped from configuration.
package kernel

// Solid is an opaque handle to a kernel solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Name identifies the backend in logs and configuration.
	Name() string

	// Primitives, centered on the origin. Cylinders run along +Z.
	Sphere(radius float64, segments int) Solid
	Cylinder(height, radius float64, segments int) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Orient(s Solid, x, y, z float64) Solid // rotate +Z onto direction (x, y, z)

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
