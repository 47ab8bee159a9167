package pathfind

import (
	"math"
	"testing"

	"github.com/arl/gogeo/f32/d3"
	"github.com/arl/volnav/bake"
	"github.com/arl/volnav/navquery"
	"github.com/arl/volnav/registry"
	"github.com/stretchr/testify/assert"
)

// twoRegionVolume returns a registry with one volume split into two
// regions sharing a single-vertex internal link at the midplane x=2, so
// a search from one region to the other must cross exactly one edge.
func twoRegionVolume() (*registry.Registry, *bake.VolumeData) {
	linkVertex := int32(0)
	r1 := &bake.Region{
		ID:      1,
		AABBMin: d3.Vec3{0, 0, 0},
		AABBMax: d3.Vec3{2, 2, 2},
		Internal: []bake.InternalLink{
			{ToRegion: 2, VertexIndices: []int32{linkVertex}},
		},
	}
	r2 := &bake.Region{
		ID:      2,
		AABBMin: d3.Vec3{2, 0, 0},
		AABBMax: d3.Vec3{4, 2, 2},
		Internal: []bake.InternalLink{
			{ToRegion: 1, VertexIndices: []int32{linkVertex}},
		},
	}
	data := &bake.VolumeData{
		Vertices: []d3.Vec3{{2, 1, 1}},
		Regions:  []*bake.Region{r1, r2},
	}
	reg := registry.New()
	reg.Enter(bake.VolumeID(1), data, registry.Identity())
	return reg, data
}

func TestSearchFindsPathAcrossInternalLink(t *testing.T) {
	reg, data := twoRegionVolume()
	vol, _ := reg.Get(bake.VolumeID(1))

	startHit := navquery.Hit{Volume: vol, Region: data.Regions[0], Position: d3.Vec3{0.5, 1, 1}}
	endHit := navquery.Hit{Volume: vol, Region: data.Regions[1], Position: d3.Vec3{3.5, 1, 1}}

	s := newSearch(reg, startHit, endHit, startHit.Position, endHit.Position)
	status := s.updatePath(math.MaxInt32)
	assert.Equal(t, Success, status)

	wps := s.reconstruct()
	assert.GreaterOrEqual(t, len(wps), 2)
	assert.Equal(t, bake.VolumeID(1), wps[0].VolumeID)
}

func TestSearchFailsWhenGoalUnreachable(t *testing.T) {
	reg, data := twoRegionVolume()
	vol, _ := reg.Get(bake.VolumeID(1))
	data.Regions[0].Internal = nil // sever the only link

	startHit := navquery.Hit{Volume: vol, Region: data.Regions[0], Position: d3.Vec3{0.5, 1, 1}}
	endHit := navquery.Hit{Volume: vol, Region: data.Regions[1], Position: d3.Vec3{3.5, 1, 1}}

	s := newSearch(reg, startHit, endHit, startHit.Position, endHit.Position)
	status := s.updatePath(math.MaxInt32)
	assert.Equal(t, Failure, status)
}

func TestSearchInvalidatedByRegistryMutation(t *testing.T) {
	reg, data := twoRegionVolume()
	vol, _ := reg.Get(bake.VolumeID(1))

	startHit := navquery.Hit{Volume: vol, Region: data.Regions[0], Position: d3.Vec3{0.5, 1, 1}}
	endHit := navquery.Hit{Volume: vol, Region: data.Regions[1], Position: d3.Vec3{3.5, 1, 1}}

	s := newSearch(reg, startHit, endHit, startHit.Position, endHit.Position)
	reg.Enter(bake.VolumeID(2), data, registry.Identity()) // bumps the epoch
	status := s.updatePath(math.MaxInt32)
	assert.Equal(t, Failure, status)
}

func TestUpdatePathRespectsOpLimit(t *testing.T) {
	reg, data := twoRegionVolume()
	vol, _ := reg.Get(bake.VolumeID(1))

	startHit := navquery.Hit{Volume: vol, Region: data.Regions[0], Position: d3.Vec3{0.5, 1, 1}}
	endHit := navquery.Hit{Volume: vol, Region: data.Regions[1], Position: d3.Vec3{3.5, 1, 1}}

	s := newSearch(reg, startHit, endHit, startHit.Position, endHit.Position)
	assert.Equal(t, Pending, s.updatePath(0))
}
