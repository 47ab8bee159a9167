package registry

import (
	"github.com/arl/gogeo/f32/d3"
	"github.com/go-gl/mathgl/mgl32"
)

// Transform is the local/world 4x4 matrix pair of a Volume (spec §3:
// "Holds a 4x4 world/local transform pair, refreshed on move"). The
// teacher vendors no matrix type (gogeo only ships Vec3/Box3), so this
// reuses the linear-algebra library the rest of the retrieved pack
// already depends on for scene transforms (Gekko3D-gekko's
// mgl32.Mat4/Vec3 scene-graph fields) rather than hand-rolling one.
type Transform struct {
	localToWorld mgl32.Mat4
	worldToLocal mgl32.Mat4
}

// Identity returns the transform that maps local space onto itself.
func Identity() Transform {
	return Transform{localToWorld: mgl32.Ident4(), worldToLocal: mgl32.Ident4()}
}

// NewTransform builds a Transform from a local-to-world matrix, caching
// its inverse immediately (spec §4.2: "UpdateTransform refreshes the
// cached inverse transform").
func NewTransform(localToWorld mgl32.Mat4) Transform {
	return Transform{localToWorld: localToWorld, worldToLocal: localToWorld.Inv()}
}

func toMgl(v d3.Vec3) mgl32.Vec3 { return mgl32.Vec3{v[0], v[1], v[2]} }

func fromMgl(v mgl32.Vec3) d3.Vec3 { return d3.Vec3{v[0], v[1], v[2]} }

// ToWorld transforms a local-space point into world space.
func (t Transform) ToWorld(p d3.Vec3) d3.Vec3 {
	w := t.localToWorld.Mul4x1(toMgl(p).Vec4(1))
	return d3.Vec3{w[0], w[1], w[2]}
}

// ToLocal transforms a world-space point into local space.
func (t Transform) ToLocal(p d3.Vec3) d3.Vec3 {
	l := t.worldToLocal.Mul4x1(toMgl(p).Vec4(1))
	return d3.Vec3{l[0], l[1], l[2]}
}
