package avoidance

import (
	"testing"

	"github.com/arl/gogeo/f32/d3"
	"github.com/stretchr/testify/assert"
)

func TestEngineTickDeflectsHeadOnAgents(t *testing.T) {
	e := NewEngine(Manual, 2, 8)

	a := &AvoidanceAgent{
		AvoidanceObstacle: AvoidanceObstacle{Position: d3.Vec3{-1.5, 0, 0}, InputVelocity: d3.Vec3{1, 0, 0}, Radius: 0.5, MaxSpeed: 1, TagMask: 1},
		AvoidanceWeight:   1,
		AvoidedTagMask:    1,
	}
	b := &AvoidanceAgent{
		AvoidanceObstacle: AvoidanceObstacle{Position: d3.Vec3{1.5, 0, 0}, InputVelocity: d3.Vec3{-1, 0, 0}, Radius: 0.5, MaxSpeed: 1, TagMask: 1},
		AvoidanceWeight:   1,
		AvoidedTagMask:    1,
	}
	e.AddAgent(a)
	e.AddAgent(b)

	ok := e.UpdateAvoidance(0.1)
	assert.True(t, ok)

	// Two agents closing head-on must not keep preferring the exact
	// same straight-line approach velocity: ORCA should deflect it.
	assert.NotEqual(t, a.InputVelocity, a.AvoidanceVelocity, "agent a's solved velocity should differ from its raw input")
	assert.LessOrEqual(t, a.AvoidanceVelocity.Len(), a.MaxSpeed+1e-3)
	assert.LessOrEqual(t, b.AvoidanceVelocity.Len(), b.MaxSpeed+1e-3)
}

func TestEngineLeavesZeroWeightAgentVelocityUntouched(t *testing.T) {
	e := NewEngine(Manual, 2, 8)

	// a has no avoidance responsibility; b avoids everything. Without the
	// weight>0 gate, responsibility's zero-total fallback would still
	// push a's velocity around even though it never opted into avoidance
	// (spec §4.6 step 2: only agents with weight > 0 are solved).
	a := &AvoidanceAgent{
		AvoidanceObstacle: AvoidanceObstacle{Position: d3.Vec3{-1.5, 0, 0}, InputVelocity: d3.Vec3{1, 0, 0}, Radius: 0.5, MaxSpeed: 1, TagMask: 1},
		AvoidanceWeight:   0,
		AvoidedTagMask:    1,
	}
	b := &AvoidanceAgent{
		AvoidanceObstacle: AvoidanceObstacle{Position: d3.Vec3{1.5, 0, 0}, InputVelocity: d3.Vec3{-1, 0, 0}, Radius: 0.5, MaxSpeed: 1, TagMask: 1},
		AvoidanceWeight:   1,
		AvoidedTagMask:    1,
	}
	e.AddAgent(a)
	e.AddAgent(b)

	e.UpdateAvoidance(0.1)

	assert.Equal(t, a.InputVelocity, a.AvoidanceVelocity, "a zero-weight agent's velocity must pass through unsolved")
	assert.NotEqual(t, b.InputVelocity, b.AvoidanceVelocity, "b still avoids a even though a doesn't reciprocate")
}

func TestEngineStepIgnoredOutsideConfiguredMode(t *testing.T) {
	e := NewEngine(FixedUpdate, 2, 8)
	a := &AvoidanceAgent{AvoidanceObstacle: AvoidanceObstacle{InputVelocity: d3.Vec3{1, 0, 0}, MaxSpeed: 1}}
	e.AddAgent(a)

	e.Step(Update, 0.1) // wrong mode: must be a no-op
	assert.Equal(t, d3.Vec3(nil), a.AvoidanceVelocity)

	e.Step(FixedUpdate, 0.1)
	assert.NotNil(t, a.AvoidanceVelocity)
}

func TestEngineManualModeRejectsStep(t *testing.T) {
	e := NewEngine(Manual, 2, 8)
	ok := e.UpdateAvoidance(0.1)
	assert.True(t, ok) // no agents, but Manual mode itself is accepted

	e2 := NewEngine(Update, 2, 8)
	assert.False(t, e2.UpdateAvoidance(0.1), "UpdateAvoidance should refuse a non-Manual engine")
}

func TestRemoveAgentRenumbersRemaining(t *testing.T) {
	e := NewEngine(Manual, 2, 8)
	a := &AvoidanceAgent{}
	b := &AvoidanceAgent{}
	c := &AvoidanceAgent{}
	e.AddAgent(a)
	e.AddAgent(b)
	e.AddAgent(c)
	assert.Equal(t, 0, a.id)
	assert.Equal(t, 1, b.id)
	assert.Equal(t, 2, c.id)

	e.RemoveAgent(a)
	assert.Equal(t, 0, b.id)
	assert.Equal(t, 1, c.id)
}
