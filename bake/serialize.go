package bake

import (
	"sort"

	"github.com/arl/volnav/internal/mathutil"
)

// serialize implements spec §4.1 step 7: build the final immutable
// VolumeData from the triangulated, decimated mesh — per-region AABBs,
// deduplicated outward BoundPlanes, and InternalLink bookkeeping between
// every pair of regions that shares a vertex, an edge, or a whole
// triangle.
func serialize(ctx *Context, m *meshBuilder, regionCount int32) *VolumeData {
	ctx.StartTimer(TimerSerialize)
	defer ctx.StopTimer(TimerSerialize)

	regions := make([]*Region, regionCount)
	for i := range regions {
		regions[i] = &Region{ID: int32(i + 1)}
	}

	for id := int32(1); id <= regionCount; id++ {
		flat := m.triangles[id]
		region := regions[id-1]
		region.TriangleIndices = flat

		box := mathutil.EmptyBox()
		for i := 0; i+2 < len(flat); i += 3 {
			box.Extend(m.vertices[flat[i]])
			box.Extend(m.vertices[flat[i+1]])
			box.Extend(m.vertices[flat[i+2]])
		}
		region.AABBMin, region.AABBMax = box.Min, box.Max
		region.Bounds = boundPlanes(m, flat, box)
	}

	for id := int32(1); id <= regionCount; id++ {
		regions[id-1].Internal = internalLinksFor(m, id)
	}

	ctx.Progressf("serialize: %d regions, %d vertices", regionCount, len(m.vertices))
	return &VolumeData{
		Vertices:                m.vertices,
		Regions:                 regions,
		BlockingTriangleIndices: m.triangles[0],
	}
}

// boundPlanes returns the deduplicated outward-facing planes of a
// region's triangulated surface (spec §3 BoundPlane invariant: at most
// one plane per unique normal direction within NearlyParallelCos).
func boundPlanes(m *meshBuilder, flat []int32, box mathutil.Box) []BoundPlane {
	centroid := box.Min.Add(box.Max).Scale(0.5)

	var planes []BoundPlane
	for i := 0; i+2 < len(flat); i += 3 {
		ia, ib, ic := flat[i], flat[i+1], flat[i+2]
		a, b, c := m.vertices[ia], m.vertices[ib], m.vertices[ic]
		n := mathutil.OutwardNormal(a, b, c, centroid)
		if n.LenSqr() < mathutil.Eps {
			continue // degenerate triangle left over from decimation
		}

		dup := false
		for _, existing := range planes {
			if existing.Normal.Dot(n) > mathutil.NearlyParallelCos {
				dup = true
				break
			}
		}
		if !dup {
			planes = append(planes, BoundPlane{Normal: n, OnVertex: ia})
		}
	}
	return planes
}

// canonicalTriSet returns, for every triangle in flat, its vertex triple
// sorted ascending — used to detect two regions' surfaces sharing the
// literal same triangle at a boundary cube (spec §4.1 step 5: adjacent
// regions' in/out masks at a shared cube are bitwise complements of one
// another and triangulate to the same vertex set).
func canonicalTriSet(flat []int32) map[[3]int32]bool {
	set := make(map[[3]int32]bool, len(flat)/3)
	for i := 0; i+2 < len(flat); i += 3 {
		t := [3]int32{flat[i], flat[i+1], flat[i+2]}
		sort3(&t)
		set[t] = true
	}
	return set
}

func sort3(t *[3]int32) {
	if t[0] > t[1] {
		t[0], t[1] = t[1], t[0]
	}
	if t[1] > t[2] {
		t[1], t[2] = t[2], t[1]
	}
	if t[0] > t[1] {
		t[0], t[1] = t[1], t[0]
	}
}

func edgeSetOf(flat []int32) map[edgeKey2]bool {
	set := make(map[edgeKey2]bool)
	for i := 0; i+2 < len(flat); i += 3 {
		a, b, c := flat[i], flat[i+1], flat[i+2]
		set[canonicalEdge(a, b)] = true
		set[canonicalEdge(b, c)] = true
		set[canonicalEdge(c, a)] = true
	}
	return set
}

// internalLinksFor computes the InternalLink list for region id, sorted
// by ToRegion: one entry per other region whose surface shares at least
// one vertex with id's, classified by the richest contact found (a
// matching whole triangle, else a matching edge, else a bare vertex).
func internalLinksFor(m *meshBuilder, id int32) []InternalLink {
	neighbors := make(map[int32]bool)
	for v, labels := range m.vertexLabels {
		_ = v
		if !labels[id] {
			continue
		}
		for l := range labels {
			if l != id && l > 0 {
				neighbors[l] = true
			}
		}
	}
	if len(neighbors) == 0 {
		return nil
	}

	var others []int32
	for n := range neighbors {
		others = append(others, n)
	}
	sort.Slice(others, func(i, j int) bool { return others[i] < others[j] })

	mySet := canonicalTriSet(m.triangles[id])
	myEdges := edgeSetOf(m.triangles[id])

	var links []InternalLink
	for _, other := range others {
		otherSet := canonicalTriSet(m.triangles[other])
		otherEdges := edgeSetOf(m.triangles[other])

		link := InternalLink{ToRegion: other}
		coveredEdges := make(map[edgeKey2]bool)
		coveredVerts := make(map[int32]bool)

		for t := range mySet {
			if otherSet[t] {
				link.Triangles = append(link.Triangles, t)
				coveredVerts[t[0]], coveredVerts[t[1]], coveredVerts[t[2]] = true, true, true
				coveredEdges[canonicalEdge(t[0], t[1])] = true
				coveredEdges[canonicalEdge(t[1], t[2])] = true
				coveredEdges[canonicalEdge(t[2], t[0])] = true
			}
		}
		for e := range myEdges {
			if !otherEdges[e] || coveredEdges[e] {
				continue
			}
			link.Edges = append(link.Edges, [2]int32{e.a, e.b})
			coveredVerts[e.a], coveredVerts[e.b] = true, true
		}
		for v, labels := range m.vertexLabels {
			if labels[id] && labels[other] && !coveredVerts[v] {
				link.VertexIndices = append(link.VertexIndices, v)
			}
		}

		sort.Slice(link.Triangles, func(i, j int) bool { return lessTri(link.Triangles[i], link.Triangles[j]) })
		sort.Slice(link.Edges, func(i, j int) bool { return lessEdge(link.Edges[i], link.Edges[j]) })
		sort.Slice(link.VertexIndices, func(i, j int) bool { return link.VertexIndices[i] < link.VertexIndices[j] })

		links = append(links, link)
	}
	return links
}

func lessTri(a, b [3]int32) bool {
	for i := 0; i < 3; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func lessEdge(a, b [2]int32) bool {
	if a[0] != b[0] {
		return a[0] < b[0]
	}
	return a[1] < b[1]
}
