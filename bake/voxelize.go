package bake

import (
	"math"

	"github.com/arl/gogeo/f32/d3"
	"github.com/arl/volnav/internal/voxelgrid"
)

// voxelize implements spec §4.1 step 1: for every voxel, sample the
// physics environment at its center (or, with EnableMultiQuery, across an
// NxNxN lattice covering the voxel) and mark it Blocked if any sample
// overlaps a collider matching the layer/staticOnly filters.
func voxelize(ctx *Context, cfg Config, env Environment) *voxelgrid.Grid {
	ctx.StartTimer(TimerVoxelize)
	defer ctx.StopTimer(TimerVoxelize)

	nx, ny, nz := voxelgrid.SizeFromExtents(cfg.Extents(), cfg.VoxelSize)
	grid := voxelgrid.New(cfg.BoundsMin, cfg.VoxelSize, nx, ny, nz)

	n := 1
	if cfg.EnableMultiQuery && cfg.MaxAgentRadius > 0 {
		n = int(math.Ceil(float64(cfg.VoxelSize/cfg.MaxAgentRadius))) + 1
	}

	for z := 0; z < nz; z++ {
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				if voxelBlocked(grid, env, cfg, x, y, z, n) {
					grid.Set(x, y, z, voxelgrid.Blocked)
				} else {
					grid.Set(x, y, z, voxelgrid.Open)
				}
			}
		}
	}

	if cfg.UseStartLocations {
		reclassifyUnreachable(grid, cfg)
	}

	ctx.Progressf("voxelize: %dx%dx%d voxels", nx, ny, nz)
	return grid
}

func voxelBlocked(grid *voxelgrid.Grid, env Environment, cfg Config, x, y, z, n int) bool {
	center := grid.VoxelCenter(x, y, z)
	if n <= 1 {
		return overlapsBlocking(env, cfg, center)
	}

	half := cfg.VoxelSize / 2
	lo := center.Sub(d3.Vec3{half, half, half})
	step := cfg.VoxelSize / float32(n-1)
	for iz := 0; iz < n; iz++ {
		for iy := 0; iy < n; iy++ {
			for ix := 0; ix < n; ix++ {
				p := d3.Vec3{
					lo[0] + float32(ix)*step,
					lo[1] + float32(iy)*step,
					lo[2] + float32(iz)*step,
				}
				if overlapsBlocking(env, cfg, p) {
					return true
				}
			}
		}
	}
	return false
}

func overlapsBlocking(env Environment, cfg Config, p d3.Vec3) bool {
	hits := env.OverlapSphere(p, cfg.MaxAgentRadius, cfg.BlockingLayerMask, true)
	for _, h := range hits {
		if cfg.StaticOnly && !h.IsStatic() {
			continue
		}
		return true
	}
	return false
}

// reclassifyUnreachable implements the UseStartLocations rule: any open
// voxel not reached by a 6-neighbor BFS from any start location becomes
// Blocked.
func reclassifyUnreachable(grid *voxelgrid.Grid, cfg Config) {
	reached := make(map[[3]int]bool)
	isOpen := func(x, y, z int) bool { return grid.At(x, y, z) == voxelgrid.Open }

	for _, start := range cfg.StartLocations {
		sx, sy, sz := worldToVoxel(grid, start)
		grid.FloodFill(sx, sy, sz, isOpen, func(x, y, z int) {
			reached[[3]int{x, y, z}] = true
		})
	}

	grid.Each(func(x, y, z int, label int32) {
		if label == voxelgrid.Open && !reached[[3]int{x, y, z}] {
			grid.Set(x, y, z, voxelgrid.Blocked)
		}
	})
}

func worldToVoxel(grid *voxelgrid.Grid, p d3.Vec3) (x, y, z int) {
	rel := p.Sub(grid.BoundsMin)
	x = int(rel[0] / grid.VoxelSize)
	y = int(rel[1] / grid.VoxelSize)
	z = int(rel[2] / grid.VoxelSize)
	return
}
