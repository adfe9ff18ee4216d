package tessellate

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/molmesh/pkg/scene"
)

// transformStack accumulates placement matrices during graph traversal.
// The top of the stack maps the current node's local space to world space.
type transformStack struct {
	mats []sdf.M44
}

func newTransformStack() *transformStack {
	return &transformStack{mats: []sdf.M44{sdf.Identity3d()}}
}

// push composes a placement: rotation about X, then Y, then Z (degrees),
// then translation, all applied before the enclosing placements.
func (ts *transformStack) push(td scene.TransformData) {
	local := sdf.Identity3d()
	if r := td.Rotation; r != nil {
		local = sdf.RotateZ(radians(r.Z)).Mul(sdf.RotateY(radians(r.Y))).Mul(sdf.RotateX(radians(r.X)))
	}
	if t := td.Translation; t != nil {
		local = sdf.Translate3d(v3.Vec{X: t.X, Y: t.Y, Z: t.Z}).Mul(local)
	}
	ts.mats = append(ts.mats, ts.top().Mul(local))
}

func (ts *transformStack) pop() {
	if len(ts.mats) > 1 {
		ts.mats = ts.mats[:len(ts.mats)-1]
	}
}

func (ts *transformStack) top() sdf.M44 {
	return ts.mats[len(ts.mats)-1]
}

// apply maps a local point to world space.
func (ts *transformStack) apply(p scene.Vec3) v3.Vec {
	return ts.top().MulPosition(vec(p))
}

func vec(p scene.Vec3) v3.Vec {
	return v3.Vec{X: p.X, Y: p.Y, Z: p.Z}
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func f32(v v3.Vec) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}
