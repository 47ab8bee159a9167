package bake

// Bake runs the full offline pipeline (spec §4.1 steps 1-7): voxelize the
// configured bounds against env, flood-fill initial regions, convexify
// and re-merge them, triangulate the result by Marching Cubes, decimate
// shared vertices, and serialize into an immutable VolumeData.
func Bake(ctx *Context, cfg Config, env Environment) *VolumeData {
	grid := voxelize(ctx, cfg, env)

	afterLastID := allocInitialRegions(ctx, grid)
	alloc := newRegionIDAllocator(afterLastID)

	convexify(ctx, grid, alloc, 1, afterLastID, cfg.UseMultithreading)
	regionCount := remerge(ctx, grid, 1, alloc.next)

	m := triangulate(ctx, grid)
	decimate(ctx, m, cfg)

	return serialize(ctx, m, regionCount)
}
