// Package mathutil implements the segment/triangle/plane/ray primitives
// shared by the baker, the nearest-point query and the pathfinder.
//
// It follows the style of the teacher's detour/common.go: free functions
// operating on d3.Vec3 slices, float32 throughout, tolerant epsilons for
// the predicates that feed bake-time and query-time decisions.
package mathutil

import (
	"github.com/arl/gogeo/f32/d3"
	"github.com/arl/math32"
)

// Eps is the uniform epsilon used for plane-parallelism, zero-velocity and
// near-collinearity predicates (spec §9 "Epsilon discipline").
const Eps = 1e-5

// PlaneEps is the looser epsilon used for bound-plane containment, which
// must tolerate the accumulated drift introduced by decimation.
const PlaneEps = 1e-4

// NearlyParallelCos is the dot-product threshold above which two normalized
// vectors are considered colinear enough to be deduplicated (spec §3,
// BoundPlane invariant: "at most one plane per unique normal direction
// within dot > 0.99999").
const NearlyParallelCos = 0.99999

// Box is an axis-aligned bounding box in either local or world space.
type Box struct {
	Min, Max d3.Vec3
}

// EmptyBox returns an inverted box suitable as the zero value of an
// expanding accumulation (every Extend call will grow it).
func EmptyBox() Box {
	const inf = math32.MaxFloat32
	return Box{
		Min: d3.Vec3{inf, inf, inf},
		Max: d3.Vec3{-inf, -inf, -inf},
	}
}

// Extend grows b so that it contains p.
func (b *Box) Extend(p d3.Vec3) {
	d3.Vec3Min(b.Min, p)
	d3.Vec3Max(b.Max, p)
}

// Contains reports whether p lies within b (inclusive).
func (b Box) Contains(p d3.Vec3) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] &&
		p[1] >= b.Min[1] && p[1] <= b.Max[1] &&
		p[2] >= b.Min[2] && p[2] <= b.Max[2]
}

// Overlaps reports whether b and o share any volume.
func (b Box) Overlaps(o Box) bool {
	if b.Min[0] > o.Max[0] || b.Max[0] < o.Min[0] {
		return false
	}
	if b.Min[1] > o.Max[1] || b.Max[1] < o.Min[1] {
		return false
	}
	if b.Min[2] > o.Max[2] || b.Max[2] < o.Min[2] {
		return false
	}
	return true
}

// IntersectsSphere reports whether the sphere of given center/radius
// touches b.
func (b Box) IntersectsSphere(center d3.Vec3, radius float32) bool {
	var d float32
	for i := 0; i < 3; i++ {
		v := center[i]
		if v < b.Min[i] {
			d += (b.Min[i] - v) * (b.Min[i] - v)
		} else if v > b.Max[i] {
			d += (v - b.Max[i]) * (v - b.Max[i])
		}
	}
	return d <= radius*radius
}

// Plane is an outward-pointing half-space: points p satisfying
// dot(p-OnPoint, Normal) <= eps are inside.
type Plane struct {
	Normal  d3.Vec3
	OnPoint d3.Vec3
}

// SignedDistance returns dot(p-OnPoint, Normal).
func (pl Plane) SignedDistance(p d3.Vec3) float32 {
	return p.Sub(pl.OnPoint).Dot(pl.Normal)
}

// Inside reports whether p is on the inward side of pl, within PlaneEps.
func (pl Plane) Inside(p d3.Vec3) bool {
	return pl.SignedDistance(p) <= PlaneEps
}

// NearestPointOnSegment returns the closest point to p on segment [a,b] and
// the interpolation parameter t in [0,1].
func NearestPointOnSegment(p, a, b d3.Vec3) (closest d3.Vec3, t float32) {
	ab := b.Sub(a)
	denom := ab.LenSqr()
	if denom < Eps {
		return d3.NewVec3From(a), 0
	}
	t = p.Sub(a).Dot(ab) / denom
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return a.SAdd(ab, t), t
}

// NearestPointOnTriangle returns the closest point to p on triangle abc.
//
// It uses the same guarded barycentric projection the spec requires for
// §4.3 step 2 and §4.5 link-nearest-point resolution: project p onto the
// triangle's plane, and if the barycentric coordinates place it outside
// any of the three "inside" half-planes (tolerance -1e-5), fall back to
// the nearest point among the three edges.
func NearestPointOnTriangle(p, a, b, c d3.Vec3) d3.Vec3 {
	ab := b.Sub(a)
	ac := c.Sub(a)
	ap := p.Sub(a)

	n := ab.Cross(ac)
	nLenSqr := n.LenSqr()
	if nLenSqr < Eps {
		// Degenerate triangle: fall back to nearest of its edges.
		return nearestOfEdges(p, a, b, c)
	}

	// Project p onto the triangle's plane.
	dist := ap.Dot(n) / nLenSqr
	pp := p.Sub(n.Scale(dist))

	// Barycentric coordinates of pp with respect to (a,b,c).
	v0 := ac
	v1 := ab
	v2 := pp.Sub(a)
	dot00 := v0.Dot(v0)
	dot01 := v0.Dot(v1)
	dot02 := v0.Dot(v2)
	dot11 := v1.Dot(v1)
	dot12 := v1.Dot(v2)

	denom := dot00*dot11 - dot01*dot01
	if math32.Abs(denom) < Eps {
		return nearestOfEdges(p, a, b, c)
	}
	invDenom := 1 / denom
	u := (dot11*dot02 - dot01*dot12) * invDenom // weight of ac
	v := (dot00*dot12 - dot01*dot02) * invDenom // weight of ab

	const tol = -1e-5
	if u >= tol && v >= tol && (u+v) <= 1-tol {
		return pp
	}
	return nearestOfEdges(p, a, b, c)
}

func nearestOfEdges(p, a, b, c d3.Vec3) d3.Vec3 {
	best, _ := NearestPointOnSegment(p, a, b)
	bestDist := p.DistSqr(best)

	if q, _ := NearestPointOnSegment(p, b, c); p.DistSqr(q) < bestDist {
		best, bestDist = q, p.DistSqr(q)
	}
	if q, _ := NearestPointOnSegment(p, c, a); p.DistSqr(q) < bestDist {
		best = q
	}
	return best
}

// RayTriangleIntersect implements the Möller–Trumbore segment/triangle
// test. It returns the hit parameter t (distance along dir, NOT
// normalized to [0,1] unless dir already spans the full segment) and
// whether a hit was found within [tMin,tMax].
func RayTriangleIntersect(orig, dir, a, b, c d3.Vec3, tMin, tMax float32) (t float32, hit bool) {
	edge1 := b.Sub(a)
	edge2 := c.Sub(a)
	pvec := dir.Cross(edge2)
	det := edge1.Dot(pvec)
	if math32.Abs(det) < Eps {
		return 0, false
	}
	invDet := 1 / det
	tvec := orig.Sub(a)
	u := tvec.Dot(pvec) * invDet
	if u < 0 || u > 1 {
		return 0, false
	}
	qvec := tvec.Cross(edge1)
	v := dir.Dot(qvec) * invDet
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t = edge2.Dot(qvec) * invDet
	if t < tMin || t > tMax {
		return 0, false
	}
	return t, true
}

// SegmentSameSideOfAxis is the cheap rejection test used before
// Möller–Trumbore in raycast (spec §4.4): true when the three triangle
// vertices all project to the same side of the segment's dominant axis,
// meaning the segment cannot possibly cross the triangle.
func SegmentSameSideOfAxis(segStart, segEnd, a, b, c d3.Vec3) bool {
	axis := 0
	dir := segEnd.Sub(segStart)
	if math32.Abs(dir[1]) > math32.Abs(dir[axis]) {
		axis = 1
	}
	if math32.Abs(dir[2]) > math32.Abs(dir[axis]) {
		axis = 2
	}
	lo := math32.Min(segStart[axis], segEnd[axis])
	hi := math32.Max(segStart[axis], segEnd[axis])
	return (a[axis] < lo && b[axis] < lo && c[axis] < lo) ||
		(a[axis] > hi && b[axis] > hi && c[axis] > hi)
}

// OutwardNormal computes a triangle's face normal, oriented to point away
// from centroid (spec §4.1 step 7: BoundPlane normals are flipped to face
// away from the region centroid).
func OutwardNormal(a, b, c, regionCentroid d3.Vec3) d3.Vec3 {
	n := b.Sub(a).Cross(c.Sub(a))
	if n.LenSqr() < Eps {
		return n
	}
	n.Normalize()
	triCentroid := a.Add(b).Add(c).Scale(1.0 / 3.0)
	if n.Dot(triCentroid.Sub(regionCentroid)) < 0 {
		return n.Scale(-1)
	}
	return n
}

// NearlyCollinear reports whether two normalized direction vectors are
// nearly parallel pointing opposite ways (dot < -0.99999). No code in
// this module calls it; the decimation pass does its own ear scoring.
func NearlyCollinear(dotProduct float32) bool {
	return dotProduct < -NearlyParallelCos
}
