package avoidance

import (
	"testing"

	"github.com/arl/gogeo/f32/d3"
	"github.com/stretchr/testify/assert"
)

func TestSolveNoConstraintsReturnsPreferredVelocity(t *testing.T) {
	v := solve(nil, 5, d3.Vec3{1, 0, 0})
	assert.InDelta(t, float32(1), v[0], 1e-4)
	assert.InDelta(t, float32(0), v[1], 1e-4)
}

func TestSolveClampsToMaxSpeed(t *testing.T) {
	v := solve(nil, 2, d3.Vec3{10, 0, 0})
	assert.InDelta(t, float32(2), v.Len(), 1e-3)
}

func TestSolveRespectsSinglePlane(t *testing.T) {
	// The half-space normal (1,0,0) through the origin forbids any
	// negative-x velocity (feasible iff dot(v-Point,Normal) >= 0); the
	// preferred velocity points straight into the forbidden region, so
	// the solved point must land on the boundary (v_x == 0).
	planes := []Plane{{Point: d3.NewVec3(), Normal: d3.Vec3{1, 0, 0}}}
	v := solve(planes, 5, d3.Vec3{-3, 0, 0})
	assert.GreaterOrEqual(t, v.Dot(planes[0].Normal), float32(-1e-3))
}

func TestLp4ResolvesSequentialViolatedPlanes(t *testing.T) {
	// planes[0] forbids v_x<1, planes[1] forbids v_y<2. Seeding lp4 with
	// a result that violates both (the origin) exercises the
	// projected-constraint construction against a non-parallel earlier
	// plane. The projected constraint is x >= 1, so maximizing y inside
	// the radius-5 sphere lands on (1, sqrt(24), 0).
	planes := []Plane{
		{Point: d3.Vec3{1, 0, 0}, Normal: d3.Vec3{1, 0, 0}},
		{Point: d3.Vec3{0, 2, 0}, Normal: d3.Vec3{0, 1, 0}},
	}
	v := lp4(planes, 0, 5, d3.NewVec3())
	assert.InDelta(t, float32(1), v[0], 1e-3)
	assert.InDelta(t, float32(4.8990), v[1], 1e-2)
	assert.InDelta(t, float32(0), v[2], 1e-3)
}

func TestLp1LineMissesSphere(t *testing.T) {
	_, ok := lp1(d3.Vec3{0, 1, 0}, d3.Vec3{10, 0, 0}, 1, d3.NewVec3(), false)
	assert.False(t, ok, "a line 10 units from the origin cannot intersect a radius-1 sphere")
}
