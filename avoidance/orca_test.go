package avoidance

import (
	"testing"

	"github.com/arl/gogeo/f32/d3"
	"github.com/stretchr/testify/assert"
)

func TestResponsibilitySplitsEvenlyWhenBothAvoid(t *testing.T) {
	other := nativeObstacle{weight: 1, avoidedMask: 1, tagMask: 1}
	alpha := responsibility(1, other, 1)
	assert.InDelta(t, float32(0.5), alpha, 1e-4)
}

func TestResponsibilityFullWhenOtherDoesNotAvoid(t *testing.T) {
	other := nativeObstacle{weight: 1, avoidedMask: 0, tagMask: 1}
	alpha := responsibility(1, other, 1)
	assert.Equal(t, float32(1), alpha)
}

func TestResponsibilityZeroWhenBothSidesCarryNoWeight(t *testing.T) {
	other := nativeObstacle{weight: 0, avoidedMask: 1, tagMask: 1}
	alpha := responsibility(0, other, 1)
	assert.Equal(t, float32(0), alpha, "neither side avoids, so self bears none of the responsibility")
}

func TestBuildPlaneSeparatedAgentsYieldsOutwardNormal(t *testing.T) {
	// Two agents 4 units apart along x, both stationary, combined radius
	// 1: well clear of collision within the time horizon, so the plane
	// should still forbid closing the gap (normal roughly -x, pointing
	// away from the other agent).
	other := nativeObstacle{position: d3.Vec3{4, 0, 0}, inputVelocity: d3.NewVec3(), radius: 0.5, maxSpeed: 1}
	pl := buildPlane(d3.NewVec3(), d3.NewVec3(), other, 1, 2, 0.1, 1)
	assert.Less(t, pl.Normal[0], float32(0), "normal should point away from the other agent, which sits at +x")
}

func TestBuildPlaneOverlappingAgentsPushesApart(t *testing.T) {
	other := nativeObstacle{position: d3.Vec3{0.1, 0, 0}, inputVelocity: d3.NewVec3(), radius: 0.5, maxSpeed: 1}
	pl := buildPlane(d3.NewVec3(), d3.NewVec3(), other, 1, 2, 0.1, 1)
	assert.Greater(t, pl.Point.Len(), float32(0), "an overlapping pair must be pushed apart harder than zero")
}
