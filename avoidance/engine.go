package avoidance

import (
	"sort"
	"sync"

	"github.com/arl/gogeo/f32/d3"
)

// Step runs a solve only when mode matches the engine's configured
// scheduling point (spec §4.6 "Update/FixedUpdate/LateUpdate fire from
// the corresponding point in the host's frame loop"). Manual-mode
// engines ignore Step entirely; call UpdateAvoidance instead.
func (e *Engine) Step(mode Mode, dt float32) {
	if e.mode != mode || e.mode == Manual {
		return
	}
	e.run(dt)
}

// UpdateAvoidance runs a solve unconditionally; valid only for an
// engine configured with Manual scheduling (spec §4.6 "Manual mode:
// the host calls updateAvoidance(dt) itself").
func (e *Engine) UpdateAvoidance(dt float32) bool {
	if e.mode != Manual {
		return false
	}
	e.run(dt)
	return true
}

// run performs one full Tick: snapshot every obstacle/agent into the
// dense native buffer, then solve each agent's velocity in parallel,
// each against its own disjoint slice of the scratch plane buffer so
// no locking is required between agents (spec §5).
func (e *Engine) run(dt float32) {
	e.mu.Lock()
	e.ensureCapacity()
	e.native = e.native[:0]
	for _, o := range e.obstacles {
		e.native = append(e.native, nativeObstacle{
			position:      o.Position,
			inputVelocity: o.InputVelocity,
			radius:        o.Radius,
			maxSpeed:      o.MaxSpeed,
			tagMask:       o.TagMask,
		})
	}
	for _, a := range e.agents {
		e.native = append(e.native, nativeObstacle{
			position:      a.Position,
			inputVelocity: a.InputVelocity,
			radius:        a.Radius,
			maxSpeed:      a.MaxSpeed,
			weight:        a.AvoidanceWeight,
			padding:       a.Padding,
			tagMask:       a.TagMask,
			avoidedMask:   a.AvoidedTagMask,
			isAgent:       true,
			agentIdx:      a.id,
		})
	}
	native := e.native
	agents := e.agents
	timeHorizon := e.timeHorizon
	maxConsidered := e.maxObstaclesConsidered
	e.mu.Unlock()

	var wg sync.WaitGroup
	for i, a := range agents {
		if a.AvoidanceWeight <= 0 {
			// spec §4.6 step 2 only runs ORCA "for each active agent
			// with weight > 0" — a non-avoiding agent keeps its input
			// velocity untouched rather than being solved against
			// (and, via responsibility's alpha, potentially pushed
			// around by) its neighbors.
			a.AvoidanceVelocity = a.InputVelocity
			continue
		}
		// Full three-index slice: caps capacity at this agent's own
		// window so an append here can never spill into the next
		// agent's slice of the shared buffer.
		scratch := e.planes[i*maxConsidered : (i+1)*maxConsidered : (i+1)*maxConsidered]
		wg.Add(1)
		go func(a *AvoidanceAgent, scratch []Plane) {
			defer wg.Done()
			a.AvoidanceVelocity = solveAgent(a, native, scratch, timeHorizon, dt)
		}(a, scratch)
	}
	wg.Wait()
}

// candidate is one nearby obstacle/agent selected to contribute a
// half-space, paired with its squared distance for the nearest-first
// truncation to maxObstaclesConsidered (spec §4.6 step 1).
type candidate struct {
	obstacle nativeObstacle
	distSq   float32
}

// solveAgent builds a's ORCA half-spaces from the nearest qualifying
// candidates in native and runs the LP3/LP4 hierarchy against them
// (spec §4.6 steps 1-4).
func solveAgent(a *AvoidanceAgent, native []nativeObstacle, scratch []Plane, timeHorizon, dt float32) d3.Vec3 {
	cands := make([]candidate, 0, len(native))
	for _, o := range native {
		if o.isAgent && o.agentIdx == a.id {
			continue // never avoid self
		}
		if a.AvoidedTagMask&o.tagMask == 0 {
			continue
		}
		off := o.position.Sub(a.Position)
		reach := a.Radius + a.MaxSpeed*timeHorizon + o.radius + o.maxSpeed*timeHorizon + a.Padding
		if off.LenSqr() > reach*reach {
			continue
		}
		cands = append(cands, candidate{obstacle: o, distSq: off.LenSqr()})
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].distSq < cands[j].distSq })
	if len(cands) > len(scratch) {
		cands = cands[:len(scratch)]
	}

	planes := scratch[:0]
	selfNative := nativeObstacle{
		weight:      a.AvoidanceWeight,
		tagMask:     a.TagMask,
		avoidedMask: a.AvoidedTagMask,
	}
	for _, c := range cands {
		combinedR := a.Radius + c.obstacle.radius + a.Padding
		alpha := responsibility(selfNative.weight, c.obstacle, a.TagMask)
		planes = append(planes, buildPlane(a.Position, a.InputVelocity, c.obstacle, combinedR, timeHorizon, dt, alpha))
	}

	return solve(planes, a.MaxSpeed, a.InputVelocity)
}
