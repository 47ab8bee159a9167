package bake

import (
	"sort"

	"github.com/arl/gogeo/f32/d3"
	"github.com/arl/volnav/internal/mctables"
	"github.com/arl/volnav/internal/voxelgrid"
)

// meshBuilder accumulates the shared vertex array and, per label (a
// region id, or 0 for the blocking surface), its flat stride-3 triangle
// index list. vertexLabels maps each vertex to the set of labels whose
// surfaces touch it, so serialize.go can build InternalLink.VertexIndices
// without re-walking every triangle.
type meshBuilder struct {
	grid *voxelgrid.Grid

	vertices []d3.Vec3
	vertexOf map[edgeVertexKey]int32

	triangles map[int32][]int32

	vertexLabels map[int32]map[int32]bool
}

// edgeVertexKey canonically identifies the vertex sitting on the shared
// face between two adjacent voxels, so every cube and every region that
// references the same cube edge resolves to the same vertex index (spec
// §4.1 step 5's shared-vertex requirement).
type edgeVertexKey struct {
	ax, ay, az, bx, by, bz int
}

func newMeshBuilder(grid *voxelgrid.Grid) *meshBuilder {
	return &meshBuilder{
		grid:         grid,
		vertexOf:     make(map[edgeVertexKey]int32),
		triangles:    make(map[int32][]int32),
		vertexLabels: make(map[int32]map[int32]bool),
	}
}

func canonicalEdgeKey(a, b [3]int) edgeVertexKey {
	if voxelLess(b, a) {
		a, b = b, a
	}
	return edgeVertexKey{a[0], a[1], a[2], b[0], b[1], b[2]}
}

func voxelLess(a, b [3]int) bool {
	if a[0] != b[0] {
		return a[0] < b[0]
	}
	if a[1] != b[1] {
		return a[1] < b[1]
	}
	return a[2] < b[2]
}

// vertexIndex returns the shared vertex sitting at the midpoint between
// voxels a and b's centers — i.e. on the face boundary separating them —
// allocating it on first reference.
func (m *meshBuilder) vertexIndex(a, b [3]int) int32 {
	key := canonicalEdgeKey(a, b)
	if idx, ok := m.vertexOf[key]; ok {
		return idx
	}
	pos := m.grid.VoxelCenter(a[0], a[1], a[2]).Add(m.grid.VoxelCenter(b[0], b[1], b[2])).Scale(0.5)
	idx := int32(len(m.vertices))
	m.vertices = append(m.vertices, pos)
	m.vertexOf[key] = idx
	return idx
}

func (m *meshBuilder) addTriangle(label int32, i0, i1, i2 int32) {
	m.triangles[label] = append(m.triangles[label], i0, i1, i2)
	m.markVertex(i0, label)
	m.markVertex(i1, label)
	m.markVertex(i2, label)
}

func (m *meshBuilder) markVertex(v, label int32) {
	set := m.vertexLabels[v]
	if set == nil {
		set = make(map[int32]bool)
		m.vertexLabels[v] = set
	}
	set[label] = true
}

// triangulate implements spec §4.1 step 5: for every 2x2x2 voxel cube
// touching a boundary, build the in/out mask for each label present at
// its corners (a region id, or 0 for blocked voxels) and emit the
// Marching-Cubes triangle fan for that mask from internal/mctables.
// Vertices sit on voxel-face midpoints and are shared across every cube
// and label that references them.
func triangulate(ctx *Context, grid *voxelgrid.Grid) *meshBuilder {
	ctx.StartTimer(TimerTriangulate)
	defer ctx.StopTimer(TimerTriangulate)

	m := newMeshBuilder(grid)

	for bz := -1; bz < grid.NZ; bz++ {
		for by := -1; by < grid.NY; by++ {
			for bx := -1; bx < grid.NX; bx++ {
				labels := cubeLabels(grid, bx, by, bz)
				if len(labels) < 2 {
					continue
				}
				for _, label := range labels {
					mask := cubeMask(grid, bx, by, bz, label)
					if mask == 0 || mask == 255 {
						continue
					}
					emitCubeTriangles(m, bx, by, bz, label, mask)
				}
			}
		}
	}

	ctx.Progressf("triangulate: %d vertices", len(m.vertices))
	return m
}

func cubeLabels(grid *voxelgrid.Grid, bx, by, bz int) []int32 {
	seen := make(map[int32]bool, 2)
	for c := 0; c < 8; c++ {
		dx, dy, dz := c&1, (c>>1)&1, (c>>2)&1
		v := grid.At(bx+dx, by+dy, bz+dz)
		if v < 0 {
			continue // an Open voxel should never survive past region allocation
		}
		seen[v] = true
	}
	labels := make([]int32, 0, len(seen))
	for l := range seen {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })
	return labels
}

func emitCubeTriangles(m *meshBuilder, bx, by, bz int, label int32, mask int) {
	for _, tri := range mctables.TriTable[mask] {
		i0 := edgeVertex(m, bx, by, bz, tri[0])
		i1 := edgeVertex(m, bx, by, bz, tri[1])
		i2 := edgeVertex(m, bx, by, bz, tri[2])
		m.addTriangle(label, i0, i1, i2)
	}
}

func edgeVertex(m *meshBuilder, bx, by, bz, edgeIdx int) int32 {
	e := mctables.Edges[edgeIdx]
	a := cubeCorner(bx, by, bz, e.A)
	b := cubeCorner(bx, by, bz, e.B)
	return m.vertexIndex(a, b)
}

func cubeCorner(bx, by, bz, c int) [3]int {
	return [3]int{bx + c&1, by + (c>>1)&1, bz + (c>>2)&1}
}
