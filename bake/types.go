// Package bake implements the offline volume-baking pipeline (C5): it
// voxelizes a bounding box against a physics environment, flood-fills and
// convexifies open space into regions, re-merges adjacent convex regions
// greedily, triangulates their surfaces by Marching Cubes, decimates
// shared vertices by ear-clipping, and serializes the result into an
// immutable VolumeData (spec §3, §4.1).
package bake

import "github.com/arl/gogeo/f32/d3"

// VolumeID is the stable 64-bit identifier of a Volume (spec §3, §6).
type VolumeID uint64

// VolumeData is the immutable, serializable output of a bake (spec §3).
type VolumeData struct {
	// Vertices is the shared local-space vertex array referenced by every
	// region's triangle indices.
	Vertices []d3.Vec3

	// Regions is the ordered list of baked regions, indexed 0..K-1 after
	// id-compaction (spec §4.1 step 4).
	Regions []*Region

	// BlockingTriangleIndices lists, three at a time, the vertex indices
	// of impassable surfaces used by raycast (spec §4.4). These are the
	// triangles of label 0 (blocked voxels) during bake.
	BlockingTriangleIndices []int32

	// ExternalLinksAreLocalSpace reports whether every ExternalLink's
	// From/To positions are expressed in this volume's local space (true)
	// or world space (false).
	ExternalLinksAreLocalSpace bool
}

// Region is a convex polyhedral subset of a volume's open space (spec
// §3). Its id is unique within its owning VolumeData.
type Region struct {
	ID int32

	AABBMin, AABBMax d3.Vec3

	// TriangleIndices is a flat, stride-3 list of indices into
	// VolumeData.Vertices.
	TriangleIndices []int32

	Internal []InternalLink
	External []ExternalLink
	Bounds   []BoundPlane
}

// InternalLink connects two regions of the same volume (spec §3). At
// least one of VertexIndices, Edges or Triangles is non-empty.
type InternalLink struct {
	ToRegion int32

	VertexIndices []int32
	Edges         [][2]int32
	Triangles     [][3]int32
}

// ExternalLink connects a region to a region in a different volume (spec
// §3). Cost is the cached Euclidean distance between FromPosition and
// ToPosition.
type ExternalLink struct {
	ToVolume VolumeID
	ToRegion int32

	FromPosition d3.Vec3
	ToPosition   d3.Vec3
	Cost         float32
}

// BoundPlane is one outward-pointing face of a convex Region (spec §3).
// OnVertex is the index (into VolumeData.Vertices) of any vertex known to
// lie exactly on the plane.
type BoundPlane struct {
	Normal   d3.Vec3
	OnVertex int32
}
