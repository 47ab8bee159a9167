// Package mctables provides the Marching-Cubes derived lookup tables used
// by the baker's convexification (step 3) and triangulation (step 5)
// passes: the 256-entry triangulation table, the per-axis concavity and
// adjacency tables, and the across-center edge-midpoint pairing.
//
// The classic Marching Cubes triangulation table (Lorensen & Cline,
// popularized by Paul Bourke's "Polygonising a scalar field") is commonly
// carried as a hand-transcribed 256x16 literal. That table encodes a
// continuous scalar field crossing each of the 12 cube edges at an
// interpolated point; this bake pipeline instead classifies each of the 8
// corners as a hard in/out label (region membership) with no
// interpolation, and by the time triangulation runs (step 5) every region
// has already been convexified (steps 3-4), so the surface separating any
// one 2x2x2 cube's in/out corners is always a single simple polygon, never
// multiple disjoint pieces. Given that, TriTable here is generated once at
// package init by a direct geometric derivation rather than transcribed:
// for each of the 256 masks, find the cube edges whose endpoints disagree
// (the "crossing" edges), and fan-triangulate their midpoints in angular
// order around the midpoints' centroid, in the plane whose normal runs
// from the outside corners' centroid to the inside corners' centroid.
// This produces the same shape of table (a cached [256][]Tri triangle
// list, each Tri three indices into the 12 edges) that a literal table
// would, while remaining correct by
// construction for every mask instead of only for the cases someone
// remembered to copy correctly. See DESIGN.md for the full rationale.
package mctables

import (
	"math"

	"github.com/arl/gogeo/f32/d3"
)

// CornerOffset returns the unit-cube offset of corner index c (0..7),
// where bit0 selects x, bit1 selects y, bit2 selects z.
func CornerOffset(c int) d3.Vec3 {
	return d3.Vec3{
		float32(c & 1),
		float32((c >> 1) & 1),
		float32((c >> 2) & 1),
	}
}

// Edge is a cube edge identified by its two corner indices.
type Edge struct {
	A, B int
}

// Edges enumerates the 12 edges of the unit cube: every pair of corners
// whose indices differ in exactly one bit.
var Edges = buildEdges()

func buildEdges() [12]Edge {
	var edges [12]Edge
	n := 0
	for a := 0; a < 8; a++ {
		for b := a + 1; b < 8; b++ {
			if popcount(a^b) == 1 {
				edges[n] = Edge{A: a, B: b}
				n++
			}
		}
	}
	if n != 12 {
		panic("mctables: expected exactly 12 cube edges")
	}
	return edges
}

func popcount(v int) int {
	n := 0
	for v != 0 {
		n += v & 1
		v >>= 1
	}
	return n
}

// AcrossCenterMidpoints maps an edge index to the index of the edge whose
// midpoint is its reflection through the cube center (0.5,0.5,0.5): the
// edge between the bit-complemented corners. Two triangle edges are
// "across-center" (spec §4.1 step 5) when their edge indices are this
// pair.
var AcrossCenterMidpoints = buildAcrossCenter()

func buildAcrossCenter() [12]int {
	var out [12]int
	for i, e := range Edges {
		ra, rb := e.A^7, e.B^7
		out[i] = edgeIndex(ra, rb)
	}
	return out
}

func edgeIndex(a, b int) int {
	if a > b {
		a, b = b, a
	}
	for i, e := range Edges {
		if e.A == a && e.B == b {
			return i
		}
	}
	panic("mctables: no such edge")
}

// Tri is a triangle expressed as three cube-edge indices (the crossing
// edge whose midpoint becomes the triangle's vertex at triangulation
// time).
type Tri [3]int

// TriTable holds, for every one of the 256 corner masks (bit i set means
// corner i belongs to "inside"), the triangle fan separating inside from
// outside corners.
var TriTable = buildTriTable()

func buildTriTable() [256][]Tri {
	var table [256][]Tri
	for mask := 0; mask < 256; mask++ {
		table[mask] = trianglesForMask(mask)
	}
	return table
}

func trianglesForMask(mask int) []Tri {
	var crossing []int
	for i, e := range Edges {
		ina := mask&(1<<e.A) != 0
		inb := mask&(1<<e.B) != 0
		if ina != inb {
			crossing = append(crossing, i)
		}
	}
	if len(crossing) < 3 {
		return nil
	}

	// Fit an approximate separating-plane normal: the vector from the
	// outside-corners centroid to the inside-corners centroid.
	var inC, outC d3.Vec3 = d3.NewVec3(), d3.NewVec3()
	nIn, nOut := 0, 0
	for c := 0; c < 8; c++ {
		off := CornerOffset(c)
		if mask&(1<<c) != 0 {
			inC = inC.Add(off)
			nIn++
		} else {
			outC = outC.Add(off)
			nOut++
		}
	}
	if nIn == 0 || nOut == 0 {
		return nil
	}
	inC = inC.Scale(1.0 / float32(nIn))
	outC = outC.Scale(1.0 / float32(nOut))
	normal := inC.Sub(outC)
	if normal.LenSqr() < 1e-8 {
		normal = d3.Vec3{0, 0, 1}
	}
	normal.Normalize()

	// mask and its bitwise complement (the mask the region on the other
	// side of this quad sees) swap inC and outC, so normal comes out
	// negated between the two. Pin it to a canonical sign — whichever of
	// normal/-normal has its largest-magnitude component positive — so
	// that mask and its complement always fit the exact same basis below.
	// Without this, the two sides of a shared quad can sort their
	// crossing-edge midpoints into different cyclic orders and fan out
	// along different diagonals, splitting the quad two different ways
	// (spec §4.1 step 5's across-center split exists precisely to rule
	// this mismatch out).
	normal = canonicalSign(normal)

	// Build an orthonormal basis (u, v) of the plane perpendicular to
	// normal, and sort the crossing-edge midpoints by angle within it.
	up := d3.Vec3{0, 1, 0}
	if absf(normal.Dot(up)) > 0.9 {
		up = d3.Vec3{1, 0, 0}
	}
	u := normal.Cross(up)
	u.Normalize()
	v := normal.Cross(u)

	centroid := d3.NewVec3()
	mids := make([]d3.Vec3, len(crossing))
	for i, ei := range crossing {
		e := Edges[ei]
		mids[i] = CornerOffset(e.A).Add(CornerOffset(e.B)).Scale(0.5)
		centroid = centroid.Add(mids[i])
	}
	centroid = centroid.Scale(1.0 / float32(len(mids)))

	angles := make([]float32, len(crossing))
	for i, m := range mids {
		d := m.Sub(centroid)
		angles[i] = atan2(d.Dot(v), d.Dot(u))
	}

	order := make([]int, len(crossing))
	for i := range order {
		order[i] = i
	}
	// simple insertion sort by angle: these slices never exceed 6 elements
	for i := 1; i < len(order); i++ {
		j := i
		for j > 0 && angles[order[j-1]] > angles[order[j]] {
			order[j-1], order[j] = order[j], order[j-1]
			angles[order[j-1]], angles[order[j]] = angles[order[j]], angles[order[j-1]]
			j--
		}
	}

	var tris []Tri
	for i := 1; i+1 < len(order); i++ {
		tris = append(tris, Tri{crossing[order[0]], crossing[order[i]], crossing[order[i+1]]})
	}
	return tris
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// canonicalSign picks one of v or -v by a rule that depends only on v's
// direction, not on which of a complementary mask pair produced it: flip
// v so that its largest-magnitude component is positive. Since negating
// v negates every component, this always agrees between v and -v.
func canonicalSign(v d3.Vec3) d3.Vec3 {
	axis := 0
	if absf(v[1]) > absf(v[axis]) {
		axis = 1
	}
	if absf(v[2]) > absf(v[axis]) {
		axis = 2
	}
	if v[axis] < 0 {
		return v.Scale(-1)
	}
	return v
}

// atan2 is a tiny float32 wrapper to avoid pulling math64 conversions
// throughout this file.
func atan2(y, x float32) float32 {
	return float32(math.Atan2(float64(y), float64(x)))
}

// CubesWithInternalCavities flags masks whose inside or outside corner
// set is split into more than one connected component under cube-edge
// adjacency — the condition spec §4.1 step 3 calls an "internal cavity":
// the crossing-edge surface alone cannot separate disconnected regions of
// same-label voxels, so the cube must be split rather than triangulated
// as-is.
var CubesWithInternalCavities = buildCavityTable()

func buildCavityTable() [256]bool {
	var out [256]bool
	for mask := 0; mask < 256; mask++ {
		out[mask] = componentCount(mask, true) > 1 || componentCount(mask, false) > 1
	}
	return out
}

func componentCount(mask int, selectInside bool) int {
	var parent [8]int
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}
	member := func(c int) bool {
		in := mask&(1<<c) != 0
		return in == selectInside
	}
	for _, e := range Edges {
		if member(e.A) && member(e.B) {
			union(e.A, e.B)
		}
	}
	roots := map[int]bool{}
	any := false
	for c := 0; c < 8; c++ {
		if member(c) {
			roots[find(c)] = true
			any = true
		}
	}
	if !any {
		return 0
	}
	return len(roots)
}

// CubeConcaveNeighbors[mask][axis] flags a "checkerboard" pattern on the
// positive-axis face of the cube (the two diagonals of that face disagree
// with each other): a face-ambiguous configuration that, left untreated,
// would let an adjacent cube along that axis triangulate a mismatching
// surface and produce a concavity straddling the two cubes (spec §4.1
// step 3, "Neighbor concavity").
var CubeConcaveNeighbors = buildConcaveNeighborTable()

// faceCorners lists, per axis, the four corners of the cube's positive
// face on that axis, in face-loop order so corners[0]/[2] and
// corners[1]/[3] are the two diagonals.
var faceCorners = [3][4]int{
	{1, 3, 7, 5}, // +x face: corners with bit0 set
	{2, 3, 7, 6}, // +y face: corners with bit1 set
	{4, 5, 7, 6}, // +z face: corners with bit2 set
}

func buildConcaveNeighborTable() [256][3]bool {
	var out [256][3]bool
	for mask := 0; mask < 256; mask++ {
		for axis := 0; axis < 3; axis++ {
			fc := faceCorners[axis]
			d0 := mask&(1<<fc[0]) != 0
			d1 := mask&(1<<fc[1]) != 0
			d2 := mask&(1<<fc[2]) != 0
			d3v := mask&(1<<fc[3]) != 0
			// checkerboard: one diagonal pair agrees with each other and
			// disagrees with the other diagonal pair.
			out[mask][axis] = (d0 == d2) && (d1 == d3v) && (d0 != d1)
		}
	}
	return out
}

// IsCubeBrokenOnAxis reports whether splitting the cube along the given
// axis (at its mid-plane) would separate it into two non-trivial halves
// under the current mask — i.e. all corners of each half share one in/out
// status and the two halves have different statuses. This backs the
// convexification split-axis candidate search (spec §4.1 step 3).
func IsCubeBrokenOnAxis(mask int, axis int) bool {
	loMixed, hiMixed := false, false
	var loFirst, hiFirst int = -1, -1
	for c := 0; c < 8; c++ {
		in := 0
		if mask&(1<<c) != 0 {
			in = 1
		}
		if (c>>uint(axis))&1 == 0 {
			if loFirst == -1 {
				loFirst = in
			} else if in != loFirst {
				loMixed = true
			}
		} else {
			if hiFirst == -1 {
				hiFirst = in
			} else if in != hiFirst {
				hiMixed = true
			}
		}
	}
	// Splitting on this axis is meaningful when each half, taken alone,
	// is internally uniform (a clean cut) but the two halves disagree --
	// that is exactly the "two non-trivial halves" case the spec asks
	// the split search to consider.
	return !loMixed && !hiMixed && loFirst != hiFirst
}
