package navquery

import (
	"testing"

	"github.com/arl/gogeo/f32/d3"
	"github.com/arl/volnav/bake"
	"github.com/arl/volnav/registry"
	"github.com/stretchr/testify/assert"
)

// cubeRegistry returns a registry with one volume, a single convex
// region covering the local cube [0,0,0]-[2,2,2] bounded by its six
// axis-aligned faces, with one triangle on the far (x=2) face so
// outside-the-region sampling has something to project onto.
func cubeRegistry() (*registry.Registry, bake.VolumeID) {
	verts := []d3.Vec3{
		{0, 0, 0}, {2, 0, 0}, {2, 2, 0}, {0, 2, 0}, // bottom face
		{2, 0, 2}, {2, 2, 2}, // two corners of the far face
	}
	region := &bake.Region{
		ID:      1,
		AABBMin: d3.Vec3{0, 0, 0},
		AABBMax: d3.Vec3{2, 2, 2},
		TriangleIndices: []int32{
			1, 4, 5, // triangle on the x=2 face
		},
		Bounds: []bake.BoundPlane{
			{Normal: d3.Vec3{-1, 0, 0}, OnVertex: 0},
			{Normal: d3.Vec3{1, 0, 0}, OnVertex: 1},
			{Normal: d3.Vec3{0, -1, 0}, OnVertex: 0},
			{Normal: d3.Vec3{0, 1, 0}, OnVertex: 3},
			{Normal: d3.Vec3{0, 0, -1}, OnVertex: 0},
			{Normal: d3.Vec3{0, 0, 1}, OnVertex: 4},
		},
	}
	data := &bake.VolumeData{Vertices: verts, Regions: []*bake.Region{region}}

	reg := registry.New()
	id := bake.VolumeID(1)
	reg.Enter(id, data, registry.Identity())
	return reg, id
}

func TestSamplePositionInside(t *testing.T) {
	reg, _ := cubeRegistry()
	hit, ok := SamplePosition(reg, d3.Vec3{1, 1, 1}, 0)
	assert.True(t, ok)
	assert.False(t, hit.OnEdge)
	assert.Equal(t, int32(1), hit.Region.ID)
}

func TestSamplePositionOutsideWithinMaxDistance(t *testing.T) {
	reg, _ := cubeRegistry()
	hit, ok := SamplePosition(reg, d3.Vec3{3, 1, 1}, 5)
	assert.True(t, ok)
	assert.True(t, hit.OnEdge)
}

func TestSamplePositionTooFar(t *testing.T) {
	reg, _ := cubeRegistry()
	_, ok := SamplePosition(reg, d3.Vec3{100, 100, 100}, 1)
	assert.False(t, ok)
}

func TestRaycastHitsBlockingTriangle(t *testing.T) {
	reg, id := cubeRegistry()
	vol, _ := reg.Get(id)
	vol.Data.BlockingTriangleIndices = []int32{1, 4, 5} // same triangle as the x=2 face

	hit := Raycast(vol, d3.Vec3{0, 1, 1}, d3.Vec3{4, 1, 1})
	assert.GreaterOrEqual(t, hit, float32(0), "segment crossing x=2 should report a hit")

	miss := Raycast(vol, d3.Vec3{0, 1, 1}, d3.Vec3{1, 1, 1})
	assert.Equal(t, float32(-1), miss, "segment stopping short of the triangle should miss")
}
