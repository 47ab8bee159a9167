package bake

import (
	"sync"

	"github.com/arl/volnav/internal/mctables"
	"github.com/arl/volnav/internal/voxelgrid"
)

// convexify implements spec §4.1 step 3: repeatedly find the first
// Marching-Cubes concavity in each region (an internal-cavity case or a
// neighbor-concavity face) and split the region at the scored candidate
// plane, until every region is convex. Independent regions are processed
// concurrently when useMultithreading is set, bounded by a thread-safe id
// allocator (spec §5).
func convexify(ctx *Context, grid *voxelgrid.Grid, alloc *regionIDAllocator, firstID, afterLastID int32, useMultithreading bool) {
	ctx.StartTimer(TimerConvexify)
	defer ctx.StopTimer(TimerConvexify)

	q := &regionQueue{}
	for id := firstID; id < afterLastID; id++ {
		q.push(id)
	}

	var wg sync.WaitGroup
	worker := func() {
		defer wg.Done()
		for {
			id, ok := q.pop()
			if !ok {
				return
			}
			// A region may spawn up to two child tasks (the remainder
			// and the new split-off id); re-enqueue both for further
			// checking, per spec §5 "each task may enqueue up to two
			// child tasks".
			newID, split := convexifyOnce(grid, id, alloc)
			if split {
				q.push(id)
				q.push(newID)
			}
			q.done()
		}
	}

	workers := 1
	if useMultithreading {
		workers = 8
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go worker()
	}
	wg.Wait()

	ctx.Progressf("convexify: done")
}

// regionQueue is an unbounded work queue of pending region ids, shared by
// the convexification worker pool. outstanding tracks ids either queued
// or currently being processed, so pop can distinguish "temporarily
// empty, more work is coming from another worker's split" from "done".
type regionQueue struct {
	mu          sync.Mutex
	cond        sync.Cond
	items       []int32
	outstanding int
}

func (q *regionQueue) init() {
	if q.cond.L == nil {
		q.cond.L = &q.mu
	}
}

func (q *regionQueue) push(id int32) {
	q.mu.Lock()
	q.init()
	q.items = append(q.items, id)
	q.outstanding++
	q.cond.Signal()
	q.mu.Unlock()
}

// done marks one previously popped item as fully processed (it did not
// reschedule itself, or its reschedule already happened via push).
func (q *regionQueue) done() {
	q.mu.Lock()
	q.outstanding--
	if q.outstanding == 0 {
		q.cond.Broadcast()
	}
	q.mu.Unlock()
}

func (q *regionQueue) pop() (int32, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.init()
	for len(q.items) == 0 {
		if q.outstanding == 0 {
			return 0, false
		}
		q.cond.Wait()
	}
	id := q.items[len(q.items)-1]
	q.items = q.items[:len(q.items)-1]
	return id, true
}

// convexifyOnce finds the first concavity in region id and splits it,
// returning the freshly allocated region id and true; if the region is
// already convex it returns (0, false).
func convexifyOnce(grid *voxelgrid.Grid, id int32, alloc *regionIDAllocator) (int32, bool) {
	minX, minY, minZ, maxX, maxY, maxZ, any := regionVoxelBounds(grid, id)
	if !any {
		return 0, false
	}

	for bz := minZ - 1; bz <= maxZ; bz++ {
		for by := minY - 1; by <= maxY; by++ {
			for bx := minX - 1; bx <= maxX; bx++ {
				mask := cubeMask(grid, bx, by, bz, id)
				if mask == 0 || mask == 255 {
					continue
				}

				if mctables.CubesWithInternalCavities[mask] {
					axis := pickSplitAxis(mask)
					return splitRegion(grid, id, axis, bx, by, bz, alloc), true
				}
				for axis := 0; axis < 3; axis++ {
					if mctables.CubeConcaveNeighbors[mask][axis] {
						return splitRegion(grid, id, axis, bx, by, bz, alloc), true
					}
				}
			}
		}
	}
	return 0, false
}

func cubeMask(grid *voxelgrid.Grid, bx, by, bz int, id int32) int {
	mask := 0
	for c := 0; c < 8; c++ {
		dx, dy, dz := c&1, (c>>1)&1, (c>>2)&1
		if grid.At(bx+dx, by+dy, bz+dz) == id {
			mask |= 1 << uint(c)
		}
	}
	return mask
}

// regionVoxelBounds returns the inclusive voxel-index bounding box of
// every voxel currently labeled id.
func regionVoxelBounds(grid *voxelgrid.Grid, id int32) (minX, minY, minZ, maxX, maxY, maxZ int, any bool) {
	minX, minY, minZ = grid.NX, grid.NY, grid.NZ
	maxX, maxY, maxZ = -1, -1, -1
	grid.Each(func(x, y, z int, label int32) {
		if label != id {
			return
		}
		any = true
		if x < minX {
			minX = x
		}
		if y < minY {
			minY = y
		}
		if z < minZ {
			minZ = z
		}
		if x > maxX {
			maxX = x
		}
		if y > maxY {
			maxY = y
		}
		if z > maxZ {
			maxZ = z
		}
	})
	return
}

// pickSplitAxis scores each axis along which the cube is broken into two
// non-trivial halves by the net count of convex cubes it would break
// minus concavities it would resolve (spec §4.1 step 3), approximated
// here by counting axis-crossing mismatched corner pairs: fewer
// mismatches means a cleaner, lower-disruption cut.
func pickSplitAxis(mask int) int {
	best, bestScore := -1, 1<<30
	for axis := 0; axis < 3; axis++ {
		if !mctables.IsCubeBrokenOnAxis(mask, axis) {
			continue
		}
		score := axisMismatchScore(mask, axis)
		if score < bestScore {
			bestScore = score
			best = axis
		}
	}
	if best == -1 {
		best = 0
	}
	return best
}

func axisMismatchScore(mask, axis int) int {
	mismatches := 0
	bit := 1 << uint(axis)
	for c := 0; c < 8; c++ {
		partner := c ^ bit
		if partner <= c {
			continue
		}
		a := mask&(1<<uint(c)) != 0
		b := mask&(1<<uint(partner)) != 0
		if a != b {
			mismatches++
		}
	}
	return mismatches
}

// splitRegion relabels the voxels of region id that lie on the "high"
// side of the split plane (axis coordinate >= bx/by/bz+1, i.e. strictly
// past the violating cube's base corner) AND are 6-neighbor reachable
// from within region id without crossing the plane, giving them a freshly
// allocated id. Everything else keeps the old id (spec §4.1 step 3: "The
// non-reachable remainder stays in the old region").
func splitRegion(grid *voxelgrid.Grid, id int32, axis, bx, by, bz int, alloc *regionIDAllocator) int32 {
	base := [3]int{bx, by, bz}
	splitCoord := base[axis] + 1

	seed, ok := findHighSideSeed(grid, id, axis, splitCoord, base)
	if !ok {
		return id // nothing on the high side actually belongs to id; no-op split
	}

	newID := alloc.alloc()
	accept := func(x, y, z int) bool {
		if grid.At(x, y, z) != id {
			return false
		}
		coord := [3]int{x, y, z}[axis]
		return coord >= splitCoord
	}
	grid.FloodFill(seed[0], seed[1], seed[2], accept, func(x, y, z int) {
		grid.Set(x, y, z, newID)
	})
	return newID
}

func findHighSideSeed(grid *voxelgrid.Grid, id int32, axis, splitCoord int, base [3]int) ([3]int, bool) {
	for c := 0; c < 8; c++ {
		off := [3]int{c & 1, (c >> 1) & 1, (c >> 2) & 1}
		p := [3]int{base[0] + off[0], base[1] + off[1], base[2] + off[2]}
		if p[axis] < splitCoord {
			continue
		}
		if grid.At(p[0], p[1], p[2]) == id {
			return p, true
		}
	}
	return [3]int{}, false
}
