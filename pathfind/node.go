// Package pathfind implements the A* pathfinder (C9, spec §4.5): a
// search graph whose nodes are region *transitions* rather than regions
// themselves, spanning multiple volumes via external links, with
// incremental (sliced) execution, path reconstruction and
// raycast-based simplification.
//
// It follows detour/node.go + detour/nodequeue.go's shape (an indexed
// min-heap frontier, a closed set, parent links for reconstruction) and
// crowd/pathqueue.go's shape for the asynchronous queue of in-flight
// searches, generalized past a single navmesh to the volume registry's
// multi-volume region graph.
package pathfind

import (
	"github.com/arl/gogeo/f32/d3"
	"github.com/arl/volnav/bake"
)

// NodeKey is the comparable identity of a search node: "entered region
// ToRegion of volume ToVolume via link LinkIndex coming from region
// FromRegion of volume FromVolume" (spec §4.5, GLOSSARY "Node
// (pathfinding)"). Equality and hashing use exactly this 6-tuple,
// excluding the node's position, matching spec §3's PathNode definition.
type NodeKey struct {
	FromVolume bake.VolumeID
	FromRegion int32
	ToVolume   bake.VolumeID
	ToRegion   int32
	IsExternal bool
	LinkIndex  int32
}

// NoVolume is the sentinel FromVolume of the synthetic start node (spec
// §4.5: "The initial node is synthetic with fromRegion=fromVolume=-1").
// VolumeID is unsigned, so -1 is represented as the all-ones pattern;
// DeriveVolumeID always clears the sign bit of real ids, so this value
// is never produced by a real volume.
const NoVolume bake.VolumeID = ^bake.VolumeID(0)

// NoRegion is the sentinel FromRegion of the synthetic start node.
const NoRegion int32 = -1

// node is the mutable per-key search record kept by the frontier/closed
// set: its cost-so-far, its reconstruction parent, and its world-space
// position (spec §4.5 "next node's position... computed by taking min
// over nearest-point projections").
type node struct {
	Key      NodeKey
	Position d3.Vec3
	G        float32
	Parent   NodeKey
	HasParent bool
}

// startKey returns the synthetic root node's key: the search begins
// "having arrived" at the start hit's region with no real predecessor.
func startKey(startVolume bake.VolumeID, startRegion int32) NodeKey {
	return NodeKey{
		FromVolume: NoVolume,
		FromRegion: NoRegion,
		ToVolume:   startVolume,
		ToRegion:   startRegion,
		IsExternal: false,
		LinkIndex:  -1,
	}
}

// isGoal reports whether n's "to" matches the end hit's volume/region
// (spec §4.5: "goal test is toRegion==endHit.region &&
// toVolume==endHit.volume").
func isGoal(k NodeKey, endVolume bake.VolumeID, endRegion int32) bool {
	return k.ToVolume == endVolume && k.ToRegion == endRegion
}
