package bake

import (
	"sort"

	"github.com/arl/gogeo/f32/d3"
	"github.com/arl/volnav/internal/mathutil"
)

type edgeKey2 struct{ a, b int32 }

func canonicalEdge(a, b int32) edgeKey2 {
	if a > b {
		a, b = b, a
	}
	return edgeKey2{a, b}
}

// decimate implements spec §4.1 step 6: for every region's triangulated
// surface, repeatedly remove vertices whose incident sharp-edge count is
// 0 or 2 — replacing the vertex's triangle fan with an ear-clipped
// re-triangulation of the ring left behind — until no more vertices
// qualify. A vertex shared with another region's surface (tracked by
// meshBuilder.vertexLabels) is never a removal candidate, since removing
// it would desynchronize that other region's index list.
func decimate(ctx *Context, m *meshBuilder, cfg Config) {
	ctx.StartTimer(TimerDecimate)
	defer ctx.StopTimer(TimerDecimate)

	var labels []int32
	for l := range m.triangles {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })

	for _, label := range labels {
		if label == 0 {
			continue // the blocking surface keeps full resolution for raycast accuracy
		}
		tris := toTriList(m.triangles[label])
		tris = decimateRegion(ctx, m, tris, cfg)
		m.triangles[label] = fromTriList(tris)
	}

	ctx.Progressf("decimate: done")
}

func (m *meshBuilder) isShared(v int32) bool {
	return len(m.vertexLabels[v]) > 1
}

func decimateRegion(ctx *Context, m *meshBuilder, tris [][3]int32, cfg Config) [][3]int32 {
	for {
		vertTris := buildVertexTriangles(tris)
		sharpCount, sharpEdges := classifySharpEdges(m, tris, cfg.SharpEdgeCosThreshold)

		var vids []int32
		for v := range vertTris {
			vids = append(vids, v)
		}
		sort.Slice(vids, func(i, j int) bool { return vids[i] < vids[j] })

		removedOne := false
		for _, v := range vids {
			if m.isShared(v) {
				continue
			}
			sc := sharpCount[v]
			if sc != 0 && sc != 2 {
				continue
			}

			triIdxs := vertTris[v]
			ring, ok := fanRing(tris, triIdxs, v)
			if !ok {
				continue // non-manifold fan around v; leave it in place
			}

			sharpSpoke := make(map[int32]bool, len(ring))
			for _, r := range ring {
				if sharpEdges[canonicalEdge(v, r)] {
					sharpSpoke[r] = true
				}
			}

			newTris, ok := earClipRing(func(idx int32) d3.Vec3 { return m.vertices[idx] }, ring, sharpSpoke)
			if !ok {
				ctx.Warningf("decimate: ear-clip failed at vertex %d, skipping", v)
				continue
			}

			tris = replaceFan(tris, triIdxs, newTris)
			removedOne = true
			break // adjacency changed; rebuild and rescan
		}
		if !removedOne {
			return tris
		}
	}
}

func toTriList(flat []int32) [][3]int32 {
	out := make([][3]int32, 0, len(flat)/3)
	for i := 0; i+2 < len(flat); i += 3 {
		out = append(out, [3]int32{flat[i], flat[i+1], flat[i+2]})
	}
	return out
}

func fromTriList(tris [][3]int32) []int32 {
	out := make([]int32, 0, len(tris)*3)
	for _, t := range tris {
		out = append(out, t[0], t[1], t[2])
	}
	return out
}

func buildVertexTriangles(tris [][3]int32) map[int32][]int {
	m := make(map[int32][]int)
	for i, t := range tris {
		for _, v := range t {
			m[v] = append(m[v], i)
		}
	}
	return m
}

// classifySharpEdges computes, for every edge of tris, whether its two
// incident triangle normals disagree past cfg.SharpEdgeCosThreshold
// (spec §4.1 step 6). An edge shared by anything other than exactly two
// triangles (a region boundary or a non-manifold seam) is always
// considered sharp, so it is never silently collapsed.
func classifySharpEdges(m *meshBuilder, tris [][3]int32, threshold float32) (map[int32]int, map[edgeKey2]bool) {
	normals := make(map[edgeKey2][]d3.Vec3)
	for _, t := range tris {
		n := triNormal(m, t)
		edges := [3][2]int32{{t[0], t[1]}, {t[1], t[2]}, {t[2], t[0]}}
		for _, e := range edges {
			k := canonicalEdge(e[0], e[1])
			normals[k] = append(normals[k], n)
		}
	}

	sharp := make(map[edgeKey2]bool, len(normals))
	for k, ns := range normals {
		if len(ns) != 2 {
			sharp[k] = true
			continue
		}
		d := ns[0].Dot(ns[1])
		if d < 0 {
			d = -d
		}
		sharp[k] = d < threshold
	}

	count := make(map[int32]int)
	for k, isSharp := range sharp {
		if isSharp {
			count[k.a]++
			count[k.b]++
		}
	}
	return count, sharp
}

func triNormal(m *meshBuilder, t [3]int32) d3.Vec3 {
	a, b, c := m.vertices[t[0]], m.vertices[t[1]], m.vertices[t[2]]
	n := b.Sub(a).Cross(c.Sub(a))
	n.Normalize()
	return n
}

// fanRing walks the triangle fan incident to v and returns the ordered
// ring of its neighboring vertices, so that consecutive ring entries
// (ring[i], ring[i+1]) plus v formed one of the fan's triangles. Returns
// false if the fan isn't a single closed manifold loop around v, which
// can only happen for a vertex on an incomplete/non-manifold patch
// boundary — such a vertex is left in place rather than risk corrupting
// the mesh.
func fanRing(tris [][3]int32, triIdxs []int, v int32) ([]int32, bool) {
	next := make(map[int32]int32, len(triIdxs))
	for _, ti := range triIdxs {
		t := tris[ti]
		var x, y int32
		switch v {
		case t[0]:
			x, y = t[1], t[2]
		case t[1]:
			x, y = t[2], t[0]
		case t[2]:
			x, y = t[0], t[1]
		default:
			return nil, false
		}
		if _, dup := next[x]; dup {
			return nil, false
		}
		next[x] = y
	}

	var start int32 = -1
	for x := range next {
		start = x
		break
	}
	if start == -1 {
		return nil, false
	}

	ring := []int32{start}
	cur := start
	for i := 0; i < len(triIdxs)-1; i++ {
		nxt, ok := next[cur]
		if !ok {
			return nil, false
		}
		ring = append(ring, nxt)
		cur = nxt
	}
	if next[cur] != start {
		return nil, false // fan doesn't close back onto itself
	}
	return ring, true
}

// replaceFan drops the triangles at removeIdx from tris and appends add.
func replaceFan(tris [][3]int32, removeIdx []int, add [][3]int32) [][3]int32 {
	removeSet := make(map[int]bool, len(removeIdx))
	for _, i := range removeIdx {
		removeSet[i] = true
	}
	out := make([][3]int32, 0, len(tris)-len(removeIdx)+len(add))
	for i, t := range tris {
		if removeSet[i] {
			continue
		}
		out = append(out, t)
	}
	out = append(out, add...)
	return out
}

// earClipRing re-triangulates a closed ring of vertices left behind by a
// removed fan vertex, per spec §4.1 step 6's preference rules: avoid
// concave ears unless no convex ear exists, and among valid ears prefer
// near-collinear neighbors (maximize dot(edge1, edge2)); ears whose tip
// was one of the two sharp-spoke endpoints are deprioritized so a
// straight crease running through the removed vertex is more likely to
// survive as a direct edge in the result.
func earClipRing(positions func(int32) d3.Vec3, ring []int32, sharpSpoke map[int32]bool) ([][3]int32, bool) {
	if len(ring) < 3 {
		return nil, false
	}
	normal := polygonNormal(positions, ring)

	poly := append([]int32(nil), ring...)
	var tris [][3]int32
	for len(poly) > 3 {
		idx, ok := bestEar(positions, poly, normal, sharpSpoke)
		if !ok {
			return nil, false
		}
		n := len(poly)
		prev := poly[(idx-1+n)%n]
		cur := poly[idx]
		nxt := poly[(idx+1)%n]
		tris = append(tris, [3]int32{prev, cur, nxt})
		poly = append(poly[:idx], poly[idx+1:]...)
	}
	tris = append(tris, [3]int32{poly[0], poly[1], poly[2]})
	return tris, true
}

func polygonNormal(positions func(int32) d3.Vec3, ring []int32) d3.Vec3 {
	n := len(ring)
	normal := d3.NewVec3()
	for i := 0; i < n; i++ {
		cur := positions(ring[i])
		nxt := positions(ring[(i+1)%n])
		normal[0] += (cur[1] - nxt[1]) * (cur[2] + nxt[2])
		normal[1] += (cur[2] - nxt[2]) * (cur[0] + nxt[0])
		normal[2] += (cur[0] - nxt[0]) * (cur[1] + nxt[1])
	}
	if normal.LenSqr() < 1e-12 {
		return d3.Vec3{0, 0, 1}
	}
	normal.Normalize()
	return normal
}

func bestEar(positions func(int32) d3.Vec3, poly []int32, normal d3.Vec3, sharpSpoke map[int32]bool) (int, bool) {
	n := len(poly)
	bestIdx, bestScore, haveConvex := -1, float32(-2), false

	for i := 0; i < n; i++ {
		a := positions(poly[(i-1+n)%n])
		b := positions(poly[i])
		c := positions(poly[(i+1)%n])
		if !isEarConvex(a, b, c, normal) {
			continue
		}
		if !isValidEar(positions, poly, i) {
			continue
		}
		haveConvex = true
		score := earScore(a, b, c, poly[i], sharpSpoke)
		if score > bestScore {
			bestScore, bestIdx = score, i
		}
	}
	if haveConvex {
		return bestIdx, bestIdx >= 0
	}

	// No strictly convex ear exists: accept any valid (possibly concave)
	// ear rather than fail outright.
	for i := 0; i < n; i++ {
		if isValidEar(positions, poly, i) {
			return i, true
		}
	}
	return -1, false
}

func isEarConvex(a, b, c, normal d3.Vec3) bool {
	cross := b.Sub(a).Cross(c.Sub(b))
	return cross.Dot(normal) > mathutil.Eps
}

func isValidEar(positions func(int32) d3.Vec3, poly []int32, i int) bool {
	n := len(poly)
	a := positions(poly[(i-1+n)%n])
	b := positions(poly[i])
	c := positions(poly[(i+1)%n])
	for j := 0; j < n; j++ {
		if j == i || j == (i-1+n)%n || j == (i+1)%n {
			continue
		}
		p := positions(poly[j])
		np := mathutil.NearestPointOnTriangle(p, a, b, c)
		if np.Sub(p).LenSqr() < mathutil.Eps*mathutil.Eps {
			return false
		}
	}
	return true
}

func earScore(a, b, c d3.Vec3, tip int32, sharpSpoke map[int32]bool) float32 {
	e1 := b.Sub(a)
	e1.Normalize()
	e2 := c.Sub(b)
	e2.Normalize()
	score := e1.Dot(e2)
	if sharpSpoke[tip] {
		score -= 10
	}
	return score
}
