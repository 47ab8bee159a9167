// Package voxelgrid implements the flat-indexed 3D integer array the
// baker labels voxels in (C2). It follows the SoA philosophy of spec §9
// ("Unsafe pointer sharing across parallel jobs"): a single flat buffer
// per grid rather than a slice-of-slices-of-slices, mirroring the teacher's
// own preference for flat arrays over nested collections (see
// recast/heightfield.go's span pools) and the greedy-mesher flat layout
// found in the voxel-meshing reference in the examples pack.
package voxelgrid

import "github.com/arl/gogeo/f32/d3"

// Label values reserved by the spec. Any value > 0 is a region id.
const (
	Blocked = 0
	Open    = -1
	Unset   = Open // alias: a freshly allocated open voxel carries no label yet
)

// Grid is a row-major flat array of int32 labels over an nx*ny*nz lattice.
type Grid struct {
	NX, NY, NZ int
	BoundsMin  d3.Vec3
	VoxelSize  float32

	labels []int32
}

// New allocates a grid covering extents (nx,ny,nz voxels) with every
// voxel initialized to Blocked.
func New(boundsMin d3.Vec3, voxelSize float32, nx, ny, nz int) *Grid {
	g := &Grid{
		NX: nx, NY: ny, NZ: nz,
		BoundsMin: d3.NewVec3From(boundsMin),
		VoxelSize: voxelSize,
		labels:    make([]int32, nx*ny*nz),
	}
	return g
}

// SizeFromExtents computes floor(extents/voxelSize) per axis, the grid
// sizing rule from spec §4.1.
func SizeFromExtents(extents d3.Vec3, voxelSize float32) (nx, ny, nz int) {
	nx = int(extents[0] / voxelSize)
	ny = int(extents[1] / voxelSize)
	nz = int(extents[2] / voxelSize)
	return
}

func (g *Grid) index(x, y, z int) int {
	return (z*g.NY+y)*g.NX + x
}

// InBounds reports whether (x,y,z) addresses a voxel of g.
func (g *Grid) InBounds(x, y, z int) bool {
	return x >= 0 && x < g.NX && y >= 0 && y < g.NY && z >= 0 && z < g.NZ
}

// At returns the label at (x,y,z). Out-of-bounds reads return Blocked,
// matching the baker's convention that the grid border behaves as solid.
func (g *Grid) At(x, y, z int) int32 {
	if !g.InBounds(x, y, z) {
		return Blocked
	}
	return g.labels[g.index(x, y, z)]
}

// Set assigns the label at (x,y,z).
func (g *Grid) Set(x, y, z int, label int32) {
	g.labels[g.index(x, y, z)] = label
}

// IsOneOf reports whether the voxel at (x,y,z) carries one of the given
// labels — the probe the baker uses in re-merging ("IsOneOf(r1,
// r2)") to treat a provisional union of two regions
// as a single label without actually relabeling voxels yet.
func (g *Grid) IsOneOf(x, y, z int, labels ...int32) bool {
	v := g.At(x, y, z)
	for _, l := range labels {
		if v == l {
			return true
		}
	}
	return false
}

// VoxelCenter returns the world/local-space center of voxel (x,y,z):
// boundsMin + (x+0.5, y+0.5, z+0.5)*voxelSize.
func (g *Grid) VoxelCenter(x, y, z int) d3.Vec3 {
	return d3.Vec3{
		g.BoundsMin[0] + (float32(x)+0.5)*g.VoxelSize,
		g.BoundsMin[1] + (float32(y)+0.5)*g.VoxelSize,
		g.BoundsMin[2] + (float32(z)+0.5)*g.VoxelSize,
	}
}

// Neighbors6 are the six axis-aligned neighbor offsets used by every
// flood-fill in the baker.
var Neighbors6 = [6][3]int{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

// FloodFill visits every voxel 6-connected to (sx,sy,sz) for which accept
// returns true, calling visit on each (including the start voxel, if
// accept(start) is true). It is the shared primitive behind initial
// region labeling (bake step 2), split-reachability (step 3) and start
// -location reclassification (step 1).
func (g *Grid) FloodFill(sx, sy, sz int, accept func(x, y, z int) bool, visit func(x, y, z int)) {
	if !g.InBounds(sx, sy, sz) || !accept(sx, sy, sz) {
		return
	}
	seen := make(map[[3]int]bool)
	queue := [][3]int{{sx, sy, sz}}
	seen[[3]int{sx, sy, sz}] = true
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		visit(c[0], c[1], c[2])
		for _, d := range Neighbors6 {
			nx, ny, nz := c[0]+d[0], c[1]+d[1], c[2]+d[2]
			if !g.InBounds(nx, ny, nz) {
				continue
			}
			key := [3]int{nx, ny, nz}
			if seen[key] {
				continue
			}
			if !accept(nx, ny, nz) {
				continue
			}
			seen[key] = true
			queue = append(queue, key)
		}
	}
}

// Each iterates every voxel of the grid in row-major (z outer, y, x inner)
// order, the order bake step 2 walks the grid to allocate region ids.
func (g *Grid) Each(f func(x, y, z int, label int32)) {
	for z := 0; z < g.NZ; z++ {
		for y := 0; y < g.NY; y++ {
			for x := 0; x < g.NX; x++ {
				f(x, y, z, g.labels[g.index(x, y, z)])
			}
		}
	}
}
