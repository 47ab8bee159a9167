package pathfind

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arl/gogeo/f32/d3"
	"github.com/arl/volnav/bake"
	"github.com/arl/volnav/navquery"
	"github.com/arl/volnav/registry"
)

// reqState is a request's lifecycle stage inside a Finder.
type reqState int

const (
	stateQueued reqState = iota
	stateRunning
	stateDone
)

// request is one in-flight findPath call (spec §3 "Paths are owned by
// the pathfinder"). Its result is only ever delivered once, through
// Finder.completions, mirroring crowd/pathqueue.go's single-result-slot
// PathQueueRef entries generalized to carry a real callback instead of
// a poll-for-ready status field.
type request struct {
	id int64
	s  *search
	cb func(*Path, Status)

	state        reqState
	detached     bool
	needsRequeue bool

	launchFrame int
	startTime   time.Time
	done        chan struct{} // closed when a worker-thread search finishes

	result Status
}

// Finder owns every active findPath request (spec §4.5, §5, §6). It
// supports the three execution modes spec §4.5 describes by exposing
// three distinct drive methods (RunToCompletion, Tick, StartWorker)
// rather than baking a single scheduling policy in — the caller (a game
// loop, a test, a CLI) picks the mode per request, exactly as the
// teacher leaves "end of frame vs crowd-driven vs async" to its own
// callers (crowd.Update vs a bare detour.NavMeshQuery.FindPath call).
type Finder struct {
	reg *registry.Registry
	ctx *bake.Context

	mu       sync.Mutex
	requests map[int64]*request
	fifo     []int64
	nextID   int64

	maxCompletionFrames int32
	frame               int

	completions chan *request
}

// NewFinder returns a Finder bound to reg, subscribing to its
// change-epoch notifications for graph-invalidation handling (spec §4.5
// "Graph-change invalidation"). ctx may be nil; when non-nil it receives
// the same diagnostics bake.Context accumulates during a build
// (SPEC_FULL.md §1: "a single sink observes the whole system").
func NewFinder(reg *registry.Registry, ctx *bake.Context) *Finder {
	f := &Finder{
		reg:         reg,
		ctx:         ctx,
		requests:    make(map[int64]*request),
		completions: make(chan *request, 256),
	}
	reg.OnChanging(f.onRegistryChanging)
	reg.OnChanged(f.onRegistryChanged)
	return f
}

// FindPath enqueues a new search (spec §6 "findPath(...) -> pathID").
// It returns -1 if a prerequisite fails — either endpoint did not
// resolve to a loaded volume (spec §7 PreconditionFailure).
func (f *Finder) FindPath(startHit, endHit navquery.Hit, startPos, endPos d3.Vec3, callback func(*Path, Status)) int64 {
	if startHit.Volume == nil || endHit.Volume == nil {
		if f.ctx != nil {
			f.ctx.Warningf("pathfind: findPath called with an unresolved hit")
		}
		return -1
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	req := &request{
		id: id,
		s:  newSearch(f.reg, startHit, endHit, startPos, endPos),
		cb: callback,
	}
	f.requests[id] = req
	f.fifo = append(f.fifo, id)
	return id
}

// CancelPath implements spec §6/§4.5 cancelPath: a queued entry is
// removed immediately; an already-running (worker-thread) search cannot
// be aborted, so its callback is merely detached, guaranteeing the
// caller is never invoked for it (spec §5 "Cancellation and timeouts").
func (f *Finder) CancelPath(id int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.requests[id]
	if !ok {
		return
	}
	switch req.state {
	case stateQueued:
		delete(f.requests, id)
		f.removeFIFOLocked(id)
	default:
		req.detached = true
	}
}

func (f *Finder) removeFIFOLocked(id int64) {
	for i, v := range f.fifo {
		if v == id {
			f.fifo = append(f.fifo[:i], f.fifo[i+1:]...)
			return
		}
	}
}

// RunToCompletion drives id synchronously to completion (spec §4.5
// "End-of-frame: run to completion synchronously").
func (f *Finder) RunToCompletion(id int64) Status {
	f.mu.Lock()
	req, ok := f.requests[id]
	if ok {
		req.state = stateRunning
	}
	f.mu.Unlock()
	if !ok {
		return Failure
	}

	st := req.s.updatePath(math.MaxInt32)
	f.finish(req, st)
	return st
}

// Tick drives every queued/running request's search forward by a
// shared budget of totalOps steps (spec §4.5 "Asynchronous cooperative:
// run a bounded number of ops per tick, shared fairly across concurrent
// in-flight searches (perPathOps = max(1, remainingOps/remainingPaths))").
// Completed searches are pushed onto Finder.completions; call
// PumpCallbacks afterwards (or let it interleave) to deliver them.
func (f *Finder) Tick(totalOps int) {
	f.mu.Lock()
	active := make([]*request, 0, len(f.fifo))
	for _, id := range f.fifo {
		if req := f.requests[id]; req != nil && req.state != stateDone {
			active = append(active, req)
		}
	}
	f.mu.Unlock()

	remainingOps := totalOps
	for i := 0; i < len(active) && remainingOps > 0; i++ {
		req := active[i]
		remainingPaths := len(active) - i
		perPathOps := remainingOps / remainingPaths
		if perPathOps < 1 {
			perPathOps = 1
		}

		f.mu.Lock()
		req.state = stateRunning
		f.mu.Unlock()

		before := req.s.ops
		st := req.s.updatePath(perPathOps)
		remainingOps -= req.s.ops - before

		if st != Pending {
			f.finish(req, st)
		}
	}
}

// StartWorker launches id on a dedicated goroutine, run to completion
// (spec §4.5 "Parallel worker: run to completion on a worker thread").
// Call PumpCallbacks periodically (once per frame) both to deliver
// results and to enforce maxCompletionFrames.
func (f *Finder) StartWorker(id int64) {
	f.mu.Lock()
	req, ok := f.requests[id]
	if ok {
		req.state = stateRunning
		req.done = make(chan struct{})
		req.startTime = time.Now()
		req.launchFrame = f.frame
	}
	f.mu.Unlock()
	if !ok {
		return
	}

	go func() {
		st := req.s.updatePath(math.MaxInt32)
		f.finish(req, st)
		close(req.done)
	}()
}

// SetMaxCompletionFrames bounds how many PumpCallbacks-frames a
// worker-thread search may run before the requester blocks on it (spec
// §4.5, §5, §7 WorkerOverrun). It is a PreconditionFailure (spec §7) to
// call this while any worker-thread search is currently running.
func (f *Finder) SetMaxCompletionFrames(n int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, req := range f.requests {
		if req.state == stateRunning && req.done != nil {
			if f.ctx != nil {
				f.ctx.Warningf("pathfind: maxCompletionFrames set while a worker search is running")
			}
			return fmt.Errorf("pathfind: cannot set maxCompletionFrames while workers are active")
		}
	}
	atomic.StoreInt32(&f.maxCompletionFrames, int32(n))
	return nil
}

// PumpCallbacks advances the frame counter by one, blocks on any
// worker-thread search that has exceeded maxCompletionFrames (logging
// the elapsed block duration per spec §7 WorkerOverrun), and then
// invokes every completed request's callback in FIFO order of
// completion (spec §5 "Ordering guarantees").
func (f *Finder) PumpCallbacks() {
	f.mu.Lock()
	f.frame++
	limit := atomic.LoadInt32(&f.maxCompletionFrames)
	var overrun []*request
	if limit > 0 {
		for _, id := range f.fifo {
			req := f.requests[id]
			if req != nil && req.state == stateRunning && req.done != nil && f.frame-req.launchFrame > int(limit) {
				overrun = append(overrun, req)
			}
		}
	}
	f.mu.Unlock()

	for _, req := range overrun {
		<-req.done
		if f.ctx != nil {
			f.ctx.Errorf("pathfind: worker search exceeded maxCompletionFrames, blocked %v", time.Since(req.startTime))
		}
	}

	for {
		select {
		case req := <-f.completions:
			f.deliver(req)
		default:
			return
		}
	}
}

// finish marks req done, builds its Path on success, and hands it off
// to Finder.completions for FIFO delivery — unless a graph invalidation
// pre-empted it, in which case the transient result is dropped and
// onRegistryChanged will restart the search from scratch.
func (f *Finder) finish(req *request, st Status) {
	f.mu.Lock()
	if req.needsRequeue {
		f.mu.Unlock()
		return
	}
	req.state = stateDone
	req.result = st
	f.removeFIFOLocked(req.id)
	delete(f.requests, req.id)
	f.mu.Unlock()

	f.completions <- req
}

func (f *Finder) deliver(req *request) {
	if req.detached {
		return
	}
	var path *Path
	if req.result == Success {
		path = newPath()
		path.StartHit, path.EndHit = req.s.startHit, req.s.endHit
		path.StartPos, path.EndPos = req.s.startPos, req.s.endPos
		path.Waypoints = req.s.reconstruct()
		Simplify(f.reg, path)
	}
	if req.cb != nil {
		req.cb(path, req.result)
	}
}

// onRegistryChanging fires before a registry mutation batch applies
// (spec §4.2, §4.5 "Graph-change invalidation"): every in-flight search
// is force-completed on its next step and flagged for a from-scratch
// requeue once the batch settles.
func (f *Finder) onRegistryChanging() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.fifo {
		req := f.requests[id]
		if req == nil || req.state == stateQueued {
			continue
		}
		atomic.StoreInt32(&req.s.forceAbort, 1)
		req.needsRequeue = true
	}
}

// onRegistryChanged fires once the mutation batch has applied and the
// epoch has advanced: every search flagged by onRegistryChanging is
// rebuilt from scratch and returned to the queued state, transparent to
// the caller's callback identity (spec §4.5, §7 GraphInvalidation).
func (f *Finder) onRegistryChanged() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.fifo {
		req := f.requests[id]
		if req == nil || !req.needsRequeue {
			continue
		}
		old := req.s
		req.s = newSearch(f.reg, old.startHit, old.endHit, old.startPos, old.endPos)
		req.needsRequeue = false
		req.state = stateQueued
		req.done = nil
	}
}
