package geomenv

import (
	"testing"

	"github.com/arl/gogeo/f32/d3"
	"github.com/stretchr/testify/assert"
)

func TestOverlapSphereHitsNearbyTriangle(t *testing.T) {
	sm := &StaticMesh{tris: [][3]d3.Vec3{
		{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
	}}

	hits := sm.OverlapSphere(d3.Vec3{0.1, 0.1, 0.05}, 0.2, 0, false)
	assert.Len(t, hits, 1)

	hits = sm.OverlapSphere(d3.Vec3{10, 10, 10}, 0.2, 0, false)
	assert.Empty(t, hits)
}

func TestBoundsCoversAllTriangleVertices(t *testing.T) {
	sm := &StaticMesh{tris: [][3]d3.Vec3{
		{{-1, 0, 0}, {1, 0, 0}, {0, 2, 0}},
	}}
	min, max := sm.Bounds()
	assert.Equal(t, float32(-1), min[0])
	assert.Equal(t, float32(2), max[1])
}
