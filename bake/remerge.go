package bake

import (
	"sort"

	"github.com/arl/volnav/internal/mctables"
	"github.com/arl/volnav/internal/voxelgrid"
)

// remerge implements spec §4.1 step 4: repeatedly find adjacent regions
// whose union stays convex and merge them (each region merges at most
// once per round, mirroring the "merge-once-per-round" constraint used
// by greedy region-merging in navmesh bakers), until no more merges
// apply. It finishes by compacting surviving region ids to a dense
// 1..K range (0 stays reserved for blocked voxels) and relabeling the
// grid accordingly, returning the final region count K.
func remerge(ctx *Context, grid *voxelgrid.Grid, firstID, afterLastID int32) int32 {
	ctx.StartTimer(TimerRemerge)
	defer ctx.StopTimer(TimerRemerge)

	alive := make(map[int32]bool, afterLastID-firstID)
	for id := firstID; id < afterLastID; id++ {
		alive[id] = true
	}

	for {
		merged := false
		used := make(map[int32]bool)
		adj := regionAdjacency(grid, alive)

		var as []int32
		for a := range adj {
			as = append(as, a)
		}
		sort.Slice(as, func(i, j int) bool { return as[i] < as[j] })

		for _, a := range as {
			if used[a] {
				continue
			}
			neighbors := sortedKeys(adj[a])
			for _, b := range neighbors {
				if used[a] || used[b] || a == b || !alive[a] || !alive[b] {
					continue
				}
				if unionIsConvex(grid, a, b) {
					relabelRegion(grid, b, a)
					alive[b] = false
					used[a] = true
					used[b] = true
					merged = true
					break
				}
			}
		}
		if !merged {
			break
		}
	}

	var ids []int32
	for id, ok := range alive {
		if ok {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	remap := make(map[int32]int32, len(ids))
	for i, id := range ids {
		remap[id] = int32(i + 1)
	}
	grid.Each(func(x, y, z int, label int32) {
		if label <= 0 {
			return
		}
		if newID, ok := remap[label]; ok && newID != label {
			grid.Set(x, y, z, newID)
		}
	})

	ctx.Progressf("remerge: %d regions", len(ids))
	return int32(len(ids))
}

func sortedKeys(m map[int32]bool) []int32 {
	keys := make([]int32, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// regionAdjacency returns, for every alive region, the set of alive
// regions sharing a 6-connected voxel face with it.
func regionAdjacency(grid *voxelgrid.Grid, alive map[int32]bool) map[int32]map[int32]bool {
	adj := make(map[int32]map[int32]bool)
	link := func(a, b int32) {
		if adj[a] == nil {
			adj[a] = make(map[int32]bool)
		}
		adj[a][b] = true
	}

	grid.Each(func(x, y, z int, label int32) {
		if label <= 0 || !alive[label] {
			return
		}
		for _, off := range voxelgrid.Neighbors6 {
			nx, ny, nz := x+off[0], y+off[1], z+off[2]
			if !grid.InBounds(nx, ny, nz) {
				continue
			}
			other := grid.At(nx, ny, nz)
			if other <= 0 || other == label || !alive[other] {
				continue
			}
			link(label, other)
			link(other, label)
		}
	})
	return adj
}

// unionIsConvex reports whether treating a and b as a single region
// passes the same Marching-Cubes convexity test used by convexify: no
// 2x2x2 cube straddling the combined footprint yields an internal-cavity
// or neighbor-concavity case.
func unionIsConvex(grid *voxelgrid.Grid, a, b int32) bool {
	minX1, minY1, minZ1, maxX1, maxY1, maxZ1, any1 := regionVoxelBounds(grid, a)
	minX2, minY2, minZ2, maxX2, maxY2, maxZ2, any2 := regionVoxelBounds(grid, b)
	if !any1 || !any2 {
		return false
	}

	minX, minY, minZ := min3(minX1, minX2), min3(minY1, minY2), min3(minZ1, minZ2)
	maxX, maxY, maxZ := max3(maxX1, maxX2), max3(maxY1, maxY2), max3(maxZ1, maxZ2)

	for bz := minZ - 1; bz <= maxZ; bz++ {
		for by := minY - 1; by <= maxY; by++ {
			for bx := minX - 1; bx <= maxX; bx++ {
				mask := cubeMaskUnion(grid, bx, by, bz, a, b)
				if mask == 0 || mask == 255 {
					continue
				}
				if mctables.CubesWithInternalCavities[mask] {
					return false
				}
				for axis := 0; axis < 3; axis++ {
					if mctables.CubeConcaveNeighbors[mask][axis] {
						return false
					}
				}
			}
		}
	}
	return true
}

func cubeMaskUnion(grid *voxelgrid.Grid, bx, by, bz int, a, b int32) int {
	mask := 0
	for c := 0; c < 8; c++ {
		dx, dy, dz := c&1, (c>>1)&1, (c>>2)&1
		if grid.IsOneOf(bx+dx, by+dy, bz+dz, a, b) {
			mask |= 1 << uint(c)
		}
	}
	return mask
}

func relabelRegion(grid *voxelgrid.Grid, from, to int32) {
	grid.Each(func(x, y, z int, label int32) {
		if label == from {
			grid.Set(x, y, z, to)
		}
	})
}

func min3(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max3(a, b int) int {
	if a > b {
		return a
	}
	return b
}
