package avoidance

import (
	"github.com/arl/gogeo/f32/d3"
	"github.com/arl/math32"
	"github.com/arl/volnav/internal/mathutil"
)

// Plane is one ORCA half-space constraint: points v satisfying
// dot(v-Point, Normal) >= 0 are feasible, i.e. Normal points away from
// the forbidden region (spec §4.6 step 2).
type Plane struct {
	Point  d3.Vec3
	Normal d3.Vec3
}

// lp1 solves the 1D optimization of a line clipped to the sphere of the
// given radius (spec §9/§4.6 "LP1 on the plane's internal disk"):
// farthest point along lineDir when directionOpt, else the point on the
// line nearest optVelocity, in both cases clamped to stay inside the
// sphere. Returns ok=false if the line misses the sphere entirely.
func lp1(lineDir, linePoint d3.Vec3, radius float32, optVelocity d3.Vec3, directionOpt bool) (d3.Vec3, bool) {
	dotProduct := linePoint.Dot(lineDir)
	discriminant := dotProduct*dotProduct + radius*radius - linePoint.LenSqr()
	if discriminant < 0 {
		return d3.NewVec3(), false
	}
	sqrtDiscriminant := math32.Sqrt(discriminant)
	tLeft := -dotProduct - sqrtDiscriminant
	tRight := -dotProduct + sqrtDiscriminant

	var t float32
	if directionOpt {
		if optVelocity.Dot(lineDir) > 0 {
			t = tRight
		} else {
			t = tLeft
		}
	} else {
		t = lineDir.Dot(optVelocity.Sub(linePoint))
		if t < tLeft {
			t = tLeft
		} else if t > tRight {
			t = tRight
		}
	}
	return linePoint.SAdd(lineDir, t), true
}

// lp2 solves the optimization restricted to the disk that is
// planes[planeIdx] intersected with the sphere of the given radius,
// subject to every earlier plane in planes[:planeIdx] — each treated as
// a line of intersection with planes[planeIdx] and resolved via lp1
// (spec §4.6 "LP2: project onto plane i, then respect previous planes
// as lines of intersection via LP1").
func lp2(planes []Plane, planeIdx int, radius float32, optVelocity d3.Vec3, directionOpt bool) (d3.Vec3, bool) {
	pl := planes[planeIdx]
	dotProduct := pl.Point.Dot(pl.Normal)
	discriminant := radius*radius - dotProduct*dotProduct
	if discriminant < 0 {
		return d3.NewVec3(), false
	}
	planeCenter := pl.Normal.Scale(dotProduct)

	var result d3.Vec3
	if directionOpt {
		proj := optVelocity.Sub(pl.Normal.Scale(optVelocity.Dot(pl.Normal)))
		projLenSq := proj.LenSqr()
		if projLenSq <= mathutil.Eps {
			result = d3.NewVec3From(planeCenter)
		} else {
			result = planeCenter.SAdd(proj, math32.Sqrt(discriminant/projLenSq))
		}
	} else {
		result = optVelocity.SAdd(pl.Normal, pl.Point.Sub(optVelocity).Dot(pl.Normal))
		if result.LenSqr() > radius*radius {
			diff := result.Sub(planeCenter)
			result = planeCenter.SAdd(diff, math32.Sqrt(discriminant/diff.LenSqr()))
		}
	}

	for i := 0; i < planeIdx; i++ {
		other := planes[i]
		if other.Normal.Dot(other.Point.Sub(result)) <= 0 {
			continue
		}
		cross := other.Normal.Cross(pl.Normal)
		if cross.LenSqr() <= mathutil.Eps {
			// other and planes[planeIdx] are (near) parallel: other
			// fully invalidates planes[planeIdx].
			return d3.NewVec3(), false
		}
		lineDir := d3.NewVec3From(cross)
		lineDir.Normalize()
		lineNormal := lineDir.Cross(pl.Normal)
		denom := lineNormal.Dot(other.Normal)
		if math32.Abs(denom) <= mathutil.Eps {
			return d3.NewVec3(), false
		}
		t := other.Point.Sub(pl.Point).Dot(other.Normal) / denom
		linePoint := pl.Point.SAdd(lineNormal, t)

		var ok bool
		result, ok = lp1(lineDir, linePoint, radius, optVelocity, directionOpt)
		if !ok {
			return d3.NewVec3(), false
		}
	}
	return result, true
}

// lp3 is the top-level incremental solve (spec §4.6 "LP3"): find the
// point inside the sphere of the given radius, closest to optVelocity
// (or farthest along optVelocity as a direction, when directionOpt),
// subject to every half-space in planes in order. On infeasibility it
// returns the partial result reached so far, the index of the first
// plane that could not be satisfied, and ok=false.
func lp3(planes []Plane, radius float32, optVelocity d3.Vec3, directionOpt bool) (result d3.Vec3, failedAt int, ok bool) {
	switch {
	case directionOpt:
		result = optVelocity.Scale(radius)
	case optVelocity.LenSqr() > radius*radius:
		n := d3.NewVec3From(optVelocity)
		n.Normalize()
		result = n.Scale(radius)
	default:
		result = d3.NewVec3From(optVelocity)
	}

	for i, pl := range planes {
		if pl.Normal.Dot(pl.Point.Sub(result)) <= 0 {
			continue
		}
		r, ok2 := lp2(planes, i, radius, optVelocity, directionOpt)
		if !ok2 {
			return result, i, false
		}
		result = r
	}
	return result, len(planes), true
}

// lp4 is the 4D fallback (spec §4.6 "LP4"), entered when lp3 reports
// infeasibility at plane beginIdx: for each later still-violated plane,
// it builds projected 2D constraints from every earlier plane (midpoint
// for parallel pairs, line of intersection otherwise) and re-solves lp3
// in direction-optimization mode maximizing that plane's normal. This
// cannot fail — the projected sub-problem is always satisfiable by
// construction — so it always returns a usable velocity.
func lp4(planes []Plane, beginIdx int, radius float32, result d3.Vec3) d3.Vec3 {
	var distance float32

	for i := beginIdx; i < len(planes); i++ {
		pl := planes[i]
		if pl.Normal.Dot(pl.Point.Sub(result)) <= distance {
			continue
		}

		var proj []Plane
		for j := 0; j < i; j++ {
			other := planes[j]
			var pp Plane

			cross := other.Normal.Cross(pl.Normal)
			if cross.LenSqr() <= mathutil.Eps {
				if pl.Normal.Dot(other.Normal) > 0 {
					continue // planes i,j point the same way: redundant
				}
				pp.Point = pl.Point.Add(other.Point).Scale(0.5)
			} else {
				lineNormal := cross.Cross(pl.Normal)
				denom := lineNormal.Dot(other.Normal)
				t := other.Point.Sub(pl.Point).Dot(other.Normal) / denom
				pp.Point = pl.Point.SAdd(lineNormal, t)
			}

			n := other.Normal.Sub(pl.Normal.Scale(other.Normal.Dot(pl.Normal)))
			n.Normalize()
			pp.Normal = n
			proj = append(proj, pp)
		}

		if r, _, ok := lp3(proj, radius, pl.Normal, true); ok {
			result = r
		}
		distance = pl.Normal.Dot(pl.Point.Sub(result))
		if distance < 0 {
			distance = 0
		}
	}
	return result
}

// solve runs the full LP3-then-LP4 hierarchy (spec §4.6 steps 3-4):
// the point within the sphere of radius maxSpeed closest to
// preferredVelocity subject to every plane, falling back to the 4D
// solver on infeasibility.
func solve(planes []Plane, maxSpeed float32, preferredVelocity d3.Vec3) d3.Vec3 {
	result, failedAt, ok := lp3(planes, maxSpeed, preferredVelocity, false)
	if ok {
		return result
	}
	return lp4(planes, failedAt, maxSpeed, result)
}
