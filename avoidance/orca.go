package avoidance

import (
	"github.com/arl/gogeo/f32/d3"
	"github.com/arl/math32"
	"github.com/arl/volnav/internal/mathutil"
)

// buildPlane constructs the ORCA half-space that keeps selfPos/selfVel
// clear of other over the next timeHorizon seconds (or, when the two
// already overlap, over the next dt seconds) — spec §4.6 step 2.
//
// rel is self's velocity relative to other (self minus other) and off
// is the candidate's position relative to self (other minus self): the
// velocity obstacle is the cone of rel values, apexed at the origin and
// opening along off, that bring the two within combinedR of each other
// before timeHorizon elapses. alpha is this agent's share of the
// avoidance responsibility, already resolved by the caller from both
// sides' AvoidanceWeight.
func buildPlane(selfPos, selfVel d3.Vec3, other nativeObstacle, combinedR, timeHorizon, dt, alpha float32) Plane {
	rel := selfVel.Sub(other.inputVelocity)
	off := other.position.Sub(selfPos)

	// Perturb away an exact velocity/position collinearity: the cone
	// construction below divides by the component of rel perpendicular
	// to off, which degenerates when the two are parallel.
	if off.LenSqr() > mathutil.Eps {
		cross := off.Cross(rel)
		if cross.LenSqr() <= mathutil.Eps {
			perp := arbitraryPerpendicular(off)
			rel = rel.Add(perp.Scale(0.01))
		}
	}

	combinedRSq := combinedR * combinedR

	var n, u d3.Vec3
	switch {
	case off.LenSqr() > combinedRSq:
		invTau := float32(0)
		if timeHorizon > mathutil.Eps {
			invTau = 1 / timeHorizon
		}
		w := rel.Sub(off.Scale(invTau))
		wLenSq := w.LenSqr()
		dotProduct := w.Dot(off)

		if dotProduct < 0 && dotProduct*dotProduct > combinedRSq*wLenSq {
			// Projection onto the cutoff circle at the near end of the cone.
			wLen := math32.Sqrt(wLenSq)
			n = d3.NewVec3From(w)
			n.Normalize()
			u = n.Scale(combinedR*invTau - wLen)
		} else {
			// Projection onto one side of the cone.
			a := off.LenSqr()
			b := off.Dot(rel)
			denom := off.LenSqr() - combinedRSq
			crossLenSq := off.Cross(rel).LenSqr()
			c := rel.LenSqr() - crossLenSq/denom
			disc := b*b - a*c
			if disc < 0 {
				disc = 0
			}
			t := (b + math32.Sqrt(disc)) / a
			ww := rel.Sub(off.Scale(t))
			wwLen := ww.Len()
			n = d3.NewVec3From(ww)
			n.Normalize()
			u = n.Scale(combinedR*t - wwLen)
		}
	default:
		// Already overlapping: push apart hard enough to separate
		// within a single simulation step, per spec §4.6.
		invDt := float32(0)
		if dt > mathutil.Eps {
			invDt = 1 / dt
		}
		w := rel.Sub(off.Scale(invDt))
		wLen := w.Len()
		n = d3.NewVec3From(w)
		n.Normalize()
		u = n.Scale(combinedR*invDt - wLen)
	}

	return Plane{
		Point:  selfVel.SAdd(u, alpha),
		Normal: n,
	}
}

// arbitraryPerpendicular returns some nonzero vector perpendicular to
// v, used only to nudge an exact-collinearity degeneracy.
func arbitraryPerpendicular(v d3.Vec3) d3.Vec3 {
	axis := d3.NewVec3XYZ(1, 0, 0)
	if math32.Abs(v.Dot(axis)) > 0.9*v.Len() {
		axis = d3.NewVec3XYZ(0, 1, 0)
	}
	p := v.Cross(axis)
	p.Normalize()
	return p
}

// responsibility resolves alpha for the pair (self, other): self's
// share of the avoidance work (spec §4.6 step 2 "alpha = weightA /
// (weightA+weightB), with weightB zeroed when other does not avoid
// self's tag").
func responsibility(selfWeight float32, other nativeObstacle, selfTag TagMask) float32 {
	otherWeight := other.weight
	if other.avoidedMask&selfTag == 0 {
		otherWeight = 0
	}
	total := selfWeight + otherWeight
	if total <= mathutil.Eps {
		// Both sides carry (effectively) zero weight: neither is
		// avoiding the other, so self bears none of the responsibility
		// rather than all of it. run already skips dispatching
		// zero-weight agents entirely; this only guards a self weight
		// that is positive but small enough to round into the total.
		return 0
	}
	return selfWeight / total
}
