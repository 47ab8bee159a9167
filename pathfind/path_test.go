package pathfind

import (
	"testing"

	"github.com/arl/volnav/navquery"
	"github.com/stretchr/testify/assert"
)

func TestWaypointTypeString(t *testing.T) {
	assert.Equal(t, "outside", Outside.String())
	assert.Equal(t, "inside", InsideVolume.String())
	assert.Equal(t, "enter", EnterVolume.String())
	assert.Equal(t, "exit", ExitVolume.String())
}

func TestPathReleaseClearsHitsAndReusesFromPool(t *testing.T) {
	p := newPath()
	p.Waypoints = append(p.Waypoints, Waypoint{Type: InsideVolume})
	p.StartHit.OnEdge = true
	p.EndHit.OnEdge = true
	p.Release()
	assert.Equal(t, navquery.Hit{}, p.StartHit, "Release should clear StartHit")
	assert.Equal(t, navquery.Hit{}, p.EndHit, "Release should clear EndHit")

	p2 := newPath()
	assert.Empty(t, p2.Waypoints, "newPath should hand out a Path with no waypoints, pooled or fresh")
}
