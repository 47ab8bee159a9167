package registry

import (
	"testing"

	"github.com/arl/gogeo/f32/d3"
	"github.com/arl/volnav/bake"
	"github.com/stretchr/testify/assert"
)

func cubeVolumeData() *bake.VolumeData {
	region := &bake.Region{
		ID:      1,
		AABBMin: d3.Vec3{0, 0, 0},
		AABBMax: d3.Vec3{2, 2, 2},
	}
	return &bake.VolumeData{
		Vertices: []d3.Vec3{{0, 0, 0}},
		Regions:  []*bake.Region{region},
	}
}

func TestRegistryEnterGetLeave(t *testing.T) {
	r := New()
	id := bake.VolumeID(1)

	_, ok := r.Get(id)
	assert.False(t, ok, "empty registry should not have id loaded")

	r.Enter(id, cubeVolumeData(), Identity())
	v, ok := r.Get(id)
	assert.True(t, ok)
	assert.Equal(t, id, v.ID)
	assert.Len(t, r.All(), 1)

	r.Leave(id)
	_, ok = r.Get(id)
	assert.False(t, ok, "id should be gone after Leave")
	assert.Len(t, r.All(), 0)
}

func TestRegistryEpochAndNotifications(t *testing.T) {
	r := New()
	var changing, changed int
	r.OnChanging(func() { changing++ })
	r.OnChanged(func() { changed++ })

	start := r.Epoch()
	r.Enter(bake.VolumeID(1), cubeVolumeData(), Identity())
	assert.Equal(t, start+1, r.Epoch(), "epoch should bump exactly once per Batch")
	assert.Equal(t, 1, changing)
	assert.Equal(t, 1, changed)

	r.Batch(func(t *Txn) {
		t.Enter(bake.VolumeID(2), cubeVolumeData(), Identity())
		t.Enter(bake.VolumeID(3), cubeVolumeData(), Identity())
	})
	assert.Equal(t, start+2, r.Epoch(), "one Batch call bumps the epoch exactly once regardless of op count")
	assert.Equal(t, 2, changing)
	assert.Equal(t, 2, changed)
	assert.Len(t, r.All(), 3)
}

func TestRegistryUpdateTransformUnknownID(t *testing.T) {
	r := New()
	ok := r.UpdateTransform(bake.VolumeID(42), Identity())
	assert.False(t, ok)
}
