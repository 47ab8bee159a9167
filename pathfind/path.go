package pathfind

import (
	"sync"

	"github.com/arl/gogeo/f32/d3"
	"github.com/arl/volnav/bake"
	"github.com/arl/volnav/navquery"
	"github.com/arl/volnav/registry"
)

// WaypointType classifies one Waypoint's role along a reconstructed path
// (spec §3 Path).
type WaypointType int

const (
	Outside WaypointType = iota
	InsideVolume
	EnterVolume
	ExitVolume
)

func (t WaypointType) String() string {
	switch t {
	case InsideVolume:
		return "inside"
	case EnterVolume:
		return "enter"
	case ExitVolume:
		return "exit"
	default:
		return "outside"
	}
}

// Waypoint is one point of a reconstructed Path (spec §3).
type Waypoint struct {
	Position d3.Vec3
	Type     WaypointType
	VolumeID bake.VolumeID
}

// Path is the pooled result object returned by the pathfinder (spec §3,
// §5 "Path result objects are pooled and must be explicitly released by
// consumers"). Callers must call Release when done with it.
type Path struct {
	Waypoints []Waypoint

	StartHit, EndHit navquery.Hit
	StartPos, EndPos d3.Vec3
}

var pathPool = sync.Pool{New: func() any { return &Path{} }}

func newPath() *Path {
	p := pathPool.Get().(*Path)
	p.Waypoints = p.Waypoints[:0]
	return p
}

// Release returns p to the pool (spec §6 "navPath.dispose()"). p must
// not be used again after this call.
func (p *Path) Release() {
	p.StartHit, p.EndHit = navquery.Hit{}, navquery.Hit{}
	pathPool.Put(p)
}

// buildChain walks the predecessor chain from the goal node back to the
// synthetic root, returning it in forward (root-to-goal) order.
func (s *search) buildChain() []*node {
	var reversed []*node
	cur := s.goal
	for {
		reversed = append(reversed, cur)
		if !cur.HasParent {
			break
		}
		parent, ok := s.closed[cur.Parent]
		if !ok {
			break
		}
		cur = parent
	}
	chain := make([]*node, len(reversed))
	for i, n := range reversed {
		chain[len(reversed)-1-i] = n
	}
	return chain
}

// reconstruct builds the final waypoint list from a successful search
// (spec §4.5 "Path reconstruction"): the predecessor chain from root to
// goal, with external-link transitions expanded into an Exit/Enter pair
// and the true click-through positions prepended/appended as Outside
// waypoints whenever the corresponding hit landed on a region edge
// rather than strictly inside it.
func (s *search) reconstruct() []Waypoint {
	chain := s.buildChain()
	if len(chain) == 0 {
		return nil
	}

	var wps []Waypoint
	if s.startHit.OnEdge {
		wps = append(wps, Waypoint{Position: s.startPos, Type: Outside})
	}
	wps = append(wps, Waypoint{Position: chain[0].Position, Type: EnterVolume, VolumeID: chain[0].Key.ToVolume})

	for _, n := range chain[1:] {
		if !n.Key.IsExternal {
			wps = append(wps, Waypoint{Position: n.Position, Type: InsideVolume, VolumeID: n.Key.ToVolume})
			continue
		}
		vol, ok := s.reg.Get(n.Key.FromVolume)
		if !ok {
			continue
		}
		region := regionByID(vol.Data, n.Key.FromRegion)
		if region == nil {
			continue
		}
		from, to := vol.ExternalLinkWorld(region, int(n.Key.LinkIndex))
		wps = append(wps, Waypoint{Position: from, Type: ExitVolume, VolumeID: n.Key.FromVolume})
		wps = append(wps, Waypoint{Position: to, Type: EnterVolume, VolumeID: n.Key.ToVolume})
	}

	if s.endHit.OnEdge {
		wps = append(wps, Waypoint{Position: s.endPos, Type: Outside})
	}
	return wps
}

// Simplify implements spec §4.5's simplification pass: a sliding "start"
// pointer finds the furthest later waypoint j such that both endpoints
// share the same containing volume and the straight segment between
// them clears every blocking triangle, deleting everything strictly
// between. Repeats until no further removal is possible.
func Simplify(reg *registry.Registry, p *Path) {
	for simplifyOnePass(reg, p) {
	}
}

func simplifyOnePass(reg *registry.Registry, p *Path) bool {
	wps := p.Waypoints
	if len(wps) < 3 {
		return false
	}
	changed := false
	out := wps[:1]
	i := 0
	for i < len(wps)-1 {
		j := furthestClearIndex(reg, wps, i)
		if j > i+1 {
			changed = true
		}
		out = append(out, wps[j])
		i = j
	}
	p.Waypoints = out
	return changed
}

// furthestClearIndex returns the largest j such that wps[i] and wps[j]
// are in the same volume and the raycast between them is clear,
// scanning outward from the end of the slice so ties resolve toward
// "skip as much as possible".
func furthestClearIndex(reg *registry.Registry, wps []Waypoint, i int) int {
	for j := len(wps) - 1; j > i+1; j-- {
		if wps[i].VolumeID != wps[j].VolumeID {
			continue
		}
		vol, ok := reg.Get(wps[i].VolumeID)
		if !ok {
			continue
		}
		if navquery.Raycast(vol, wps[i].Position, wps[j].Position) < 0 {
			return j
		}
	}
	return i + 1
}
