package pathfind

import (
	"sync"
	"testing"
	"time"

	"github.com/arl/volnav/bake"
	"github.com/arl/volnav/navquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestFinder builds a Finder over a fresh two-region volume (per
// twoRegionVolume in astar_test.go) along with the start/end Hit pair
// findPath needs to cross the one internal link between them.
func newTestFinder() (f *Finder, startHit, endHit navquery.Hit) {
	reg, data := twoRegionVolume()
	vol, _ := reg.Get(bake.VolumeID(1))
	startHit = navquery.Hit{Volume: vol, Region: data.Regions[0], Position: data.Regions[0].AABBMin.Add(data.Regions[0].AABBMax).Scale(0.5)}
	endHit = navquery.Hit{Volume: vol, Region: data.Regions[1], Position: data.Regions[1].AABBMin.Add(data.Regions[1].AABBMax).Scale(0.5)}
	return NewFinder(reg, nil), startHit, endHit
}

// TestStartWorkerDeliversCallbackOnPump exercises spec §4.5's "parallel
// worker" drive mode: a search launched with StartWorker completes on its
// own goroutine, and its callback only fires once the caller calls
// PumpCallbacks.
func TestStartWorkerDeliversCallbackOnPump(t *testing.T) {
	f, startHit, endHit := newTestFinder()

	var mu sync.Mutex
	var gotStatus Status
	var gotPath *Path
	id := f.FindPath(startHit, endHit, startHit.Position, endHit.Position, func(p *Path, st Status) {
		mu.Lock()
		defer mu.Unlock()
		gotPath, gotStatus = p, st
	})
	require.GreaterOrEqual(t, id, int64(0))

	req, ok := f.requests[id]
	require.True(t, ok)

	f.StartWorker(id)

	select {
	case <-req.done:
	case <-time.After(time.Second):
		t.Fatal("worker search never finished")
	}

	mu.Lock()
	assert.Equal(t, Status(0), gotStatus, "callback must not fire before PumpCallbacks is called")
	mu.Unlock()

	f.PumpCallbacks()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, Success, gotStatus)
	require.NotNil(t, gotPath)
	assert.GreaterOrEqual(t, len(gotPath.Waypoints), 2)
}

// TestCancelQueuedPathNeverInvokesCallback exercises spec §8's
// "Cancellation" scenario: of 100 queued requests, canceling 50 before
// they ever run leaves exactly the other 50 to complete and invoke their
// callback.
func TestCancelQueuedPathNeverInvokesCallback(t *testing.T) {
	f, startHit, endHit := newTestFinder()

	var mu sync.Mutex
	delivered := 0
	ids := make([]int64, 100)
	for i := range ids {
		ids[i] = f.FindPath(startHit, endHit, startHit.Position, endHit.Position, func(p *Path, st Status) {
			mu.Lock()
			delivered++
			mu.Unlock()
		})
	}

	for i := 0; i < 50; i++ {
		f.CancelPath(ids[i])
	}

	for i := 50; i < 100; i++ {
		assert.Equal(t, Success, f.RunToCompletion(ids[i]))
	}
	f.PumpCallbacks()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 50, delivered, "only the 50 requests left uncanceled should ever invoke their callback")
}

// TestCancelRunningPathDetachesCallback exercises the other half of
// CancelPath's contract (spec §5 "Cancellation and timeouts"): a search
// already running cannot be aborted, but canceling it still guarantees
// its callback is never invoked once it eventually finishes. The request
// is driven into stateRunning by hand, rather than via StartWorker, so
// the finish race (the search completing before CancelPath observes it
// as running) can't make this test flaky.
func TestCancelRunningPathDetachesCallback(t *testing.T) {
	f, startHit, endHit := newTestFinder()

	called := false
	id := f.FindPath(startHit, endHit, startHit.Position, endHit.Position, func(p *Path, st Status) {
		called = true
	})

	f.mu.Lock()
	req, ok := f.requests[id]
	require.True(t, ok)
	req.state = stateRunning
	f.mu.Unlock()

	f.CancelPath(id)
	assert.True(t, req.detached, "canceling a running request must detach its callback rather than remove it")

	f.finish(req, Success)
	f.PumpCallbacks()

	assert.False(t, called, "a canceled running search must never invoke its callback")
}
