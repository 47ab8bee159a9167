package pathfind

import (
	"github.com/arl/gogeo/f32/d3"
	"github.com/arl/volnav/bake"
	"github.com/arl/volnav/internal/mathutil"
)

// nearestPointOnInternalLink resolves the "point on link nearest to
// from" used both to price an internal-link expansion and as the
// resulting node's position (spec §4.5: "computed by taking min over
// (triangles, edges, vertices of L) of nearest-point projections with
// guarded bounds"). Triangles are checked before edges before bare
// vertices since a richer shared feature always contains its own
// edges/vertices as degenerate cases, so checking them separately only
// ever tightens the result.
func nearestPointOnInternalLink(data *bake.VolumeData, link bake.InternalLink, from d3.Vec3) d3.Vec3 {
	var (
		best     d3.Vec3
		bestDist = float32(-1)
		found    bool
	)
	consider := func(p d3.Vec3) {
		d := from.DistSqr(p)
		if !found || d < bestDist {
			best, bestDist, found = p, d, true
		}
	}

	for _, t := range link.Triangles {
		a, b, c := data.Vertices[t[0]], data.Vertices[t[1]], data.Vertices[t[2]]
		consider(mathutil.NearestPointOnTriangle(from, a, b, c))
	}
	for _, e := range link.Edges {
		a, b := data.Vertices[e[0]], data.Vertices[e[1]]
		p, _ := mathutil.NearestPointOnSegment(from, a, b)
		consider(p)
	}
	for _, v := range link.VertexIndices {
		consider(data.Vertices[v])
	}
	return best
}
