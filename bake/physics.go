package bake

import "github.com/arl/gogeo/f32/d3"

// LayerMask is a bitmask of physics collision layers.
type LayerMask uint32

// Collider is the minimal surface the baker needs from a hit object (spec
// §6: "Collider.isStatic predicate").
type Collider interface {
	IsStatic() bool
}

// Environment is the external "physics environment" collaborator (spec
// §6, out of scope here but named as a contract): scene/world geometry
// that answers sphere-overlap queries. The baker never constructs static
// geometry itself; it only samples this interface.
type Environment interface {
	// OverlapSphere returns every collider overlapping the sphere of the
	// given center/radius whose layer is set in layerMask. ignoreTriggers
	// excludes trigger-only volumes from the result, matching the
	// contract's overlapSphere(center, radius, layerMask,
	// ignoreTriggers) signature.
	OverlapSphere(center d3.Vec3, radius float32, layerMask LayerMask, ignoreTriggers bool) []Collider
}
