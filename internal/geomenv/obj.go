// Package geomenv adapts a static OBJ mesh into a bake.Environment,
// following the teacher's recast.MeshLoaderObj conventions for turning a
// gobj.OBJFile into flat vertex/triangle buffers.
package geomenv

import (
	"github.com/arl/gobj"
	"github.com/arl/gogeo/f32/d3"
	"github.com/arl/volnav/bake"
	"github.com/arl/volnav/internal/mathutil"
)

// StaticMesh is every triangle of a loaded OBJ file, treated as a single
// static collider for bake.Environment.OverlapSphere queries.
type StaticMesh struct {
	tris [][3]d3.Vec3
}

func toVec3(v gobj.Vertex) d3.Vec3 {
	return d3.Vec3{float32(v.X()), float32(v.Y()), float32(v.Z())}
}

// Load reads filename as Wavefront OBJ and fan-triangulates its polygons
// (mirroring MeshLoaderObj.Load's fan triangulation, minus the shared
// vertex/index buffers gobj's Polygon already resolves to coordinates).
func Load(filename string) (*StaticMesh, error) {
	obj, err := gobj.Load(filename)
	if err != nil {
		return nil, err
	}

	sm := &StaticMesh{}
	for _, p := range obj.Polys() {
		for i := 2; i < len(p); i++ {
			sm.tris = append(sm.tris, [3]d3.Vec3{toVec3(p[0]), toVec3(p[i-1]), toVec3(p[i])})
		}
	}
	return sm, nil
}

// staticTriangle is the sole bake.Collider this package produces: every
// triangle of a loaded mesh is static (spec §6 has no notion of dynamic
// baked geometry).
type staticTriangle struct{}

func (staticTriangle) IsStatic() bool { return true }

var staticCollider bake.Collider = staticTriangle{}

// OverlapSphere implements bake.Environment by testing the sphere
// against every triangle's nearest point (internal/mathutil). layerMask
// and ignoreTriggers are accepted for interface compliance: a static OBJ
// mesh carries no layer or trigger metadata, so every triangle is
// reported regardless.
func (sm *StaticMesh) OverlapSphere(center d3.Vec3, radius float32, layerMask bake.LayerMask, ignoreTriggers bool) []bake.Collider {
	var hits []bake.Collider
	rSq := radius * radius
	for _, t := range sm.tris {
		p := mathutil.NearestPointOnTriangle(center, t[0], t[1], t[2])
		if p.DistSqr(center) <= rSq {
			hits = append(hits, staticCollider)
		}
	}
	return hits
}

// Bounds returns the mesh's AABB, used to seed a bake.Config's
// BoundsMin/BoundsMax when none is configured explicitly.
func (sm *StaticMesh) Bounds() (min, max d3.Vec3) {
	box := mathutil.EmptyBox()
	for _, t := range sm.tris {
		box.Extend(t[0])
		box.Extend(t[1])
		box.Extend(t[2])
	}
	return box.Min, box.Max
}
