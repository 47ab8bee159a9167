package pathfind

import (
	"sync/atomic"

	"github.com/arl/gogeo/f32/d3"
	"github.com/arl/volnav/internal/heap"
	"github.com/arl/volnav/navquery"
	"github.com/arl/volnav/registry"
)

// Status mirrors detour/status.go's three-way operation status, narrowed
// to the three outcomes spec §4.5's updatePath distinguishes.
type Status int

const (
	Pending Status = iota
	Success
	Failure
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "pending"
	}
}

// search is the incrementally-steppable A* frontier expansion for one
// findPath request (spec §4.5): nodes are region transitions, expansion
// walks InternalLink/ExternalLink lists, and the frontier is a min-heap
// keyed by f=g+h with FIFO tie-break (internal/heap.Heap already
// provides both the decrease-key update and the insertion-order
// tie-break).
type search struct {
	reg *registry.Registry

	startHit, endHit navquery.Hit
	startPos, endPos d3.Vec3

	open   *heap.Heap[NodeKey, *node]
	closed map[NodeKey]*node

	// best tracks, for every key ever offered (open or closed), the
	// cheapest g seen so far — internal/heap.Heap has no "peek value by
	// key" primitive, only Peek(min)/Update, so the frontier's current
	// cost estimate is mirrored here for the decrease-key comparison in
	// relax.
	best map[NodeKey]*node

	goal   *node
	status Status
	epoch  uint64 // registry epoch observed at construction
	ops    int    // total expansions performed so far

	// forceAbort is set by the owning Finder when the registry fires
	// volumeDataChanging, so an in-flight worker-thread search
	// force-completes on its very next step (spec §4.5
	// "Graph-change invalidation", §7 GraphInvalidation) without
	// waiting for the epoch to actually change.
	forceAbort int32
}

func newSearch(reg *registry.Registry, startHit, endHit navquery.Hit, startPos, endPos d3.Vec3) *search {
	s := &search{
		reg:      reg,
		startHit: startHit, endHit: endHit,
		startPos: startPos, endPos: endPos,
		open:   heap.New[NodeKey, *node](),
		closed: make(map[NodeKey]*node),
		best:   make(map[NodeKey]*node),
		epoch:  reg.Epoch(),
	}
	root := startKey(startHit.Volume.ID, startHit.Region.ID)
	n := &node{Key: root, Position: startHit.Position, G: 0}
	s.open.Push(root, s.heuristic(n.Position), n)
	s.best[root] = n
	return s
}

func (s *search) heuristic(pos d3.Vec3) float32 {
	return pos.Dist(s.endHit.Position)
}

// invalidated reports whether the registry mutated since this search
// began (spec §4.5 "Graph-change invalidation", §7 GraphInvalidation).
func (s *search) invalidated() bool {
	return atomic.LoadInt32(&s.forceAbort) != 0 || s.reg.Epoch() != s.epoch
}

// step pops the best open node, closes it, and either declares victory
// or expands it. It is the unit of work opLimit counts in updatePath.
func (s *search) step() Status {
	if s.invalidated() {
		s.status = Failure
		return Failure
	}
	key, n, ok := s.open.Pop()
	if !ok {
		s.status = Failure
		return Failure
	}
	s.closed[key] = n
	s.ops++

	if isGoal(key, s.endHit.Volume.ID, s.endHit.Region.ID) {
		s.goal = n
		s.status = Success
		return Success
	}

	s.expand(key, n)
	s.status = Pending
	return Pending
}

// updatePath runs at most opLimit expansions (spec §4.5 incremental
// operation): Pending if the limit was reached first, Success on
// reaching the goal, Failure if the frontier empties.
func (s *search) updatePath(opLimit int) Status {
	for i := 0; i < opLimit; i++ {
		st := s.step()
		if st != Pending {
			return st
		}
	}
	return Pending
}

// expand pushes/updates the open set with every InternalLink and
// ExternalLink reachable from n (spec §4.5 "Expansion of a node n").
func (s *search) expand(key NodeKey, n *node) {
	vol, ok := s.reg.Get(key.ToVolume)
	if !ok {
		return
	}
	region := regionByID(vol.Data, key.ToRegion)
	if region == nil {
		return
	}

	for i, link := range region.Internal {
		if link.ToRegion == key.FromRegion && vol.ID == key.FromVolume {
			continue // no backtracking through the link we came from
		}
		nextPos := nearestPointOnInternalLink(vol.Data, link, n.Position)
		cost := n.Position.Dist(nextPos)
		nk := NodeKey{
			FromVolume: vol.ID, FromRegion: key.ToRegion,
			ToVolume: vol.ID, ToRegion: link.ToRegion,
			IsExternal: false, LinkIndex: int32(i),
		}
		s.relax(nk, n.G+cost, nextPos, key)
	}

	for i, link := range region.External {
		if link.ToVolume == key.FromVolume && link.ToRegion == key.FromRegion {
			continue
		}
		if _, loaded := s.reg.Get(link.ToVolume); !loaded {
			continue
		}
		from, _ := vol.ExternalLinkWorld(region, i)
		// Next position = L.fromPosition (spec §4.5, verbatim): the
		// jump-off point on this side of the link. Path reconstruction
		// later re-derives both endpoints from the link record itself,
		// so this choice only affects in-flight heuristic/cost math,
		// not the waypoints eventually returned.
		cost := n.Position.Dist(from) + link.Cost
		nk := NodeKey{
			FromVolume: vol.ID, FromRegion: key.ToRegion,
			ToVolume: link.ToVolume, ToRegion: link.ToRegion,
			IsExternal: true, LinkIndex: int32(i),
		}
		s.relax(nk, n.G+cost, from, key)
	}
}

// relax opens or decrease-keys nk, skipping it entirely if it is
// already closed (A*'s standard "closed nodes are never reopened",
// valid here because every edge cost is non-negative).
func (s *search) relax(nk NodeKey, g float32, pos d3.Vec3, parent NodeKey) {
	if _, done := s.closed[nk]; done {
		return
	}
	if cur, seen := s.best[nk]; seen && g >= cur.G {
		return
	}
	nn := &node{Key: nk, Position: pos, G: g, Parent: parent, HasParent: true}
	f := g + s.heuristic(pos)
	s.best[nk] = nn
	if s.open.Contains(nk) {
		s.open.Update(nk, f, nn)
	} else {
		s.open.Push(nk, f, nn)
	}
}
