package bake

import (
	"sync/atomic"

	"github.com/arl/volnav/internal/voxelgrid"
)

// regionIDAllocator hands out fresh region ids from a thread-safe
// counter, the primitive spec §4.1/§5 calls for ("a thread-safe counter
// assigns new ids") so that parallel convexification tasks can split
// regions without contending on a shared mutex.
type regionIDAllocator struct {
	next int32
}

func newRegionIDAllocator(start int32) *regionIDAllocator {
	return &regionIDAllocator{next: start}
}

func (a *regionIDAllocator) alloc() int32 {
	return atomic.AddInt32(&a.next, 1) - 1
}

// allocInitialRegions implements spec §4.1 step 2: walk the grid in
// row-major order, and whenever an open, unlabeled voxel is found,
// flood-fill a fresh region id into every voxel 6-connected to it.
// Region id 0 is reserved for blocking voxels/triangles; the first
// allocated region gets id 1.
func allocInitialRegions(ctx *Context, grid *voxelgrid.Grid) int32 {
	ctx.StartTimer(TimerInitialRegions)
	defer ctx.StopTimer(TimerInitialRegions)

	alloc := newRegionIDAllocator(1)
	stillOpen := func(x, y, z int) bool { return grid.At(x, y, z) == voxelgrid.Open }

	var count int32
	grid.Each(func(x, y, z int, label int32) {
		if grid.At(x, y, z) != voxelgrid.Open {
			return // may have been claimed by a flood-fill started earlier in this same walk
		}
		id := alloc.alloc()
		grid.FloodFill(x, y, z, stillOpen, func(fx, fy, fz int) {
			grid.Set(fx, fy, fz, id)
		})
		count++
	})

	ctx.Progressf("initial regions: %d", count)
	return alloc.next
}
