// Package navquery implements the two read-only runtime queries that sit
// directly on top of the baked VolumeData and the volume registry: the
// nearest-point "sample position" query (C7, spec §4.3) and the blocking
// -triangle raycast (C8, spec §4.4).
//
// Both follow detour/query.go's and detour/polyquery.go's shape: plain
// functions over a loaded mesh, float32 throughout, guarded
// barycentric/edge fallbacks reused from internal/mathutil.
package navquery

import (
	"github.com/arl/gogeo/f32/d3"
	"github.com/arl/volnav/bake"
	"github.com/arl/volnav/internal/mathutil"
	"github.com/arl/volnav/registry"
)

// Hit is the result of a successful SamplePosition (spec §3 PathNode's
// start/end hits reuse this shape).
type Hit struct {
	Volume   *registry.Volume
	Region   *bake.Region
	OnEdge   bool
	Position d3.Vec3 // world space
}

// localAABB returns the union of every region's AABB, the volume's
// overall local-space bounding box (VolumeData itself stores no single
// top-level AABB; it is derived from its regions, same as bake/serialize
// derives each region's AABB from its vertices).
func localAABB(d *bake.VolumeData) mathutil.Box {
	box := mathutil.EmptyBox()
	for _, r := range d.Regions {
		box.Extend(r.AABBMin)
		box.Extend(r.AABBMax)
	}
	return box
}

// regionAABB returns a region's local AABB as a mathutil.Box.
func regionAABB(r *bake.Region) mathutil.Box {
	return mathutil.Box{Min: r.AABBMin, Max: r.AABBMax}
}

// insideRegion reports whether local point p satisfies every bound
// plane of r (spec §3 Region invariant): "for any point p inside the
// AABB, p lies in the region iff dot(p-vertex_on_plane, plane.normal) <=
// 0 for every bound plane".
func insideRegion(d *bake.VolumeData, r *bake.Region, p d3.Vec3) bool {
	for _, bp := range r.Bounds {
		onVertex := d.Vertices[bp.OnVertex]
		if p.Sub(onVertex).Dot(bp.Normal) > mathutil.PlaneEps {
			return false
		}
	}
	return true
}

// SamplePosition implements spec §4.3: the nearest point on any loaded
// volume within maxDistance of p (world space). Iteration across
// volumes returns the first volume-local success; there is no
// global-nearest-across-all-volumes pass (spec §4.3 final sentence).
func SamplePosition(reg *registry.Registry, p d3.Vec3, maxDistance float32) (Hit, bool) {
	for _, vol := range reg.All() {
		local := vol.Transform.ToLocal(p)
		vbox := localAABB(vol.Data)

		if vbox.Contains(local) {
			for _, r := range vol.Data.Regions {
				if !regionAABB(r).Contains(local) {
					continue
				}
				if insideRegion(vol.Data, r, local) {
					return Hit{Volume: vol, Region: r, OnEdge: false, Position: p}, true
				}
			}
		}

		if maxDistance <= 0 || !vbox.IntersectsSphere(local, maxDistance) {
			continue
		}

		searchBox := mathutil.Box{
			Min: d3.Vec3{local[0] - maxDistance, local[1] - maxDistance, local[2] - maxDistance},
			Max: d3.Vec3{local[0] + maxDistance, local[1] + maxDistance, local[2] + maxDistance},
		}

		var (
			found    bool
			best     d3.Vec3
			bestDist = maxDistance * maxDistance
			bestR    *bake.Region
		)
		for _, r := range vol.Data.Regions {
			if !regionAABB(r).Overlaps(searchBox) {
				continue
			}
			flat := r.TriangleIndices
			for i := 0; i+2 < len(flat); i += 3 {
				a := vol.Data.Vertices[flat[i]]
				b := vol.Data.Vertices[flat[i+1]]
				c := vol.Data.Vertices[flat[i+2]]
				cand := mathutil.NearestPointOnTriangle(local, a, b, c)
				if d := local.DistSqr(cand); d < bestDist {
					bestDist, best, bestR, found = d, cand, r, true
				}
			}
		}
		if found {
			return Hit{Volume: vol, Region: bestR, OnEdge: true, Position: vol.Transform.ToWorld(best)}, true
		}
	}
	return Hit{}, false
}
