// Package registry implements the process-wide volume registry (C6): a
// map from VolumeID to loaded VolumeData plus transform, a monotonic
// change-epoch the pathfinder uses to detect graph invalidation, and a
// pair of before/after notifications fired once per transactional batch
// of enter/leave/move operations (spec §4.2, §9 "Global state").
//
// It follows the shape of the registry/event packages of the pack
// repository lixenwraith-vi-fighter (/registry, /event): a small synchronized map
// with subscriber callbacks, generalized here to carry the navigation
// domain's VolumeData instead of factory functions.
package registry

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/arl/gogeo/f32/d3"
	"github.com/arl/volnav/bake"
	"github.com/arl/volnav/internal/mathutil"
)

// Volume is a loaded, positioned instance of a baked VolumeData (spec
// §3): "An oriented box in world space with a local-space AABB...
// Holds a 4x4 world/local transform pair, refreshed on move."
type Volume struct {
	ID        bake.VolumeID
	Data      *bake.VolumeData
	Transform Transform
	WorldAABB mathutil.Box

	// externalWorld caches the world-space positions of every
	// ExternalLink belonging to this volume's regions, keyed by
	// (regionID, link index within Region.External). Only populated
	// when Data.ExternalLinksAreLocalSpace; otherwise the link's stored
	// From/To positions are already world-space and used as-is.
	externalWorld map[externalLinkKey][2]d3.Vec3
}

type externalLinkKey struct {
	regionID int32
	linkIdx  int
}

// recompute rebuilds WorldAABB and, if the volume's external links are
// stored in local space, their cached world-space positions — the two
// derived quantities spec §4.2's UpdateTransform refreshes.
func (v *Volume) recompute() {
	box := mathutil.EmptyBox()
	corners := localAABBCorners(v.Data)
	for _, c := range corners {
		box.Extend(v.Transform.ToWorld(c))
	}
	v.WorldAABB = box

	if !v.Data.ExternalLinksAreLocalSpace {
		v.externalWorld = nil
		return
	}
	cache := make(map[externalLinkKey][2]d3.Vec3)
	for _, r := range v.Data.Regions {
		for i, link := range r.External {
			from := v.Transform.ToWorld(link.FromPosition)
			to := v.Transform.ToWorld(link.ToPosition)
			cache[externalLinkKey{r.ID, i}] = [2]d3.Vec3{from, to}
		}
	}
	v.externalWorld = cache
}

// ExternalLinkWorld returns the world-space From/To positions of the
// link-th ExternalLink of region, regardless of whether the underlying
// VolumeData stores them in local or world space.
func (v *Volume) ExternalLinkWorld(region *bake.Region, linkIdx int) (from, to d3.Vec3) {
	if !v.Data.ExternalLinksAreLocalSpace {
		l := region.External[linkIdx]
		return l.FromPosition, l.ToPosition
	}
	pair := v.externalWorld[externalLinkKey{region.ID, linkIdx}]
	return pair[0], pair[1]
}

func localAABBCorners(d *bake.VolumeData) []d3.Vec3 {
	if len(d.Regions) == 0 {
		return nil
	}
	box := mathutil.EmptyBox()
	for _, r := range d.Regions {
		box.Extend(r.AABBMin)
		box.Extend(r.AABBMax)
	}
	return []d3.Vec3{
		{box.Min[0], box.Min[1], box.Min[2]}, {box.Max[0], box.Min[1], box.Min[2]},
		{box.Min[0], box.Max[1], box.Min[2]}, {box.Max[0], box.Max[1], box.Min[2]},
		{box.Min[0], box.Min[1], box.Max[2]}, {box.Max[0], box.Min[1], box.Max[2]},
		{box.Min[0], box.Max[1], box.Max[2]}, {box.Max[0], box.Max[1], box.Max[2]},
	}
}

// Registry is the process-wide map of loaded volumes (spec §3
// "Lifecycle", §4.2, §9 "Global state"). The zero value is not usable;
// use New.
type Registry struct {
	mu      sync.RWMutex
	volumes map[bake.VolumeID]*Volume
	epoch   uint64

	changingSubs []func()
	changedSubs  []func()
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{volumes: make(map[bake.VolumeID]*Volume)}
}

// Epoch returns the current change-epoch: a monotonically increasing
// counter bumped once per transactional batch of mutations (spec §4.2,
// §9 "Change epoch"). Pathfinders snapshot this at search start and
// compare it on every search step to detect GraphInvalidation (spec §7).
func (r *Registry) Epoch() uint64 { return atomic.LoadUint64(&r.epoch) }

// OnChanging subscribes fn to fire once before every transactional
// batch of mutations begins applying.
func (r *Registry) OnChanging(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changingSubs = append(r.changingSubs, fn)
}

// OnChanged subscribes fn to fire once after every transactional batch
// of mutations has applied and the epoch has advanced.
func (r *Registry) OnChanged(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changedSubs = append(r.changedSubs, fn)
}

// Get returns the volume loaded under id, if any.
func (r *Registry) Get(id bake.VolumeID) (*Volume, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.volumes[id]
	return v, ok
}

// All returns a stable-ordered snapshot of every currently loaded
// volume. Safe to iterate concurrently with further mutation of the
// registry.
func (r *Registry) All() []*Volume {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Volume, 0, len(r.volumes))
	for _, v := range r.volumes {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Batch runs fn with exclusive access to the registry, firing
// OnChanging once before fn and OnChanged (plus an epoch bump) once
// after, regardless of how many Enter/Leave/UpdateTransform calls fn
// performs — spec §4.2's "notifications fired exactly once around each
// transactional batch of enter/leave/move operations".
func (r *Registry) Batch(fn func(*Txn)) {
	r.mu.Lock()
	changing, changed := r.changingSubs, r.changedSubs
	r.mu.Unlock()

	for _, f := range changing {
		f()
	}

	r.mu.Lock()
	fn(&Txn{r: r})
	r.epoch++
	r.mu.Unlock()

	for _, f := range changed {
		f()
	}
}

// Enter is a convenience one-operation Batch: loads data into the
// registry under id with the given transform.
func (r *Registry) Enter(id bake.VolumeID, data *bake.VolumeData, transform Transform) {
	r.Batch(func(t *Txn) { t.Enter(id, data, transform) })
}

// Leave is a convenience one-operation Batch: unloads id.
func (r *Registry) Leave(id bake.VolumeID) {
	r.Batch(func(t *Txn) { t.Leave(id) })
}

// UpdateTransform is a convenience one-operation Batch: moves volume id
// to a new transform, refreshing its cached inverse and world-space
// external-link positions (spec §4.2).
func (r *Registry) UpdateTransform(id bake.VolumeID, transform Transform) bool {
	ok := false
	r.Batch(func(t *Txn) { ok = t.UpdateTransform(id, transform) })
	return ok
}

// Txn is the mutation surface exposed inside a Batch callback. The
// caller must not retain a Txn past the callback's return.
type Txn struct{ r *Registry }

// Enter loads data into the registry under id (must hold r.mu already —
// only reachable from within Batch).
func (t *Txn) Enter(id bake.VolumeID, data *bake.VolumeData, transform Transform) {
	v := &Volume{ID: id, Data: data, Transform: transform}
	v.recompute()
	t.r.volumes[id] = v
}

// Leave removes id from the registry, if present.
func (t *Txn) Leave(id bake.VolumeID) {
	delete(t.r.volumes, id)
}

// UpdateTransform refreshes the transform of an already-loaded volume.
func (t *Txn) UpdateTransform(id bake.VolumeID, transform Transform) bool {
	v, ok := t.r.volumes[id]
	if !ok {
		return false
	}
	v.Transform = transform
	v.recompute()
	return true
}
