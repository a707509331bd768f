// Package collision implements swept separating-axis tests between convex shapes.
//
// A query tests the face normals of both shapes plus one rejection axis
// perpendicular to the relative velocity. Each axis is a 1-D swept interval
// test; the combined result is either an ongoing overlap (negative time, the
// shallowest penetration) or a future contact within this tick (time in [0,1),
// the last axis to close).
package collision

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sweep/geom"
	"github.com/pthm-cable/sweep/shape"
)

// FlipPolicy controls when the resolved axis is oriented from B toward A.
type FlipPolicy uint8

const (
	// FlipAlways orients every result axis from B toward A.
	FlipAlways FlipPolicy = iota
	// FlipWhenOverlapping only orients overlap results; future-contact axes keep
	// the direction of the face normal they came from.
	FlipWhenOverlapping
)

func (p FlipPolicy) String() string {
	switch p {
	case FlipAlways:
		return "always"
	case FlipWhenOverlapping:
		return "overlapping"
	default:
		return fmt.Sprintf("FlipPolicy(%d)", uint8(p))
	}
}

// ParseFlipPolicy parses the names produced by FlipPolicy.String.
func ParseFlipPolicy(s string) (FlipPolicy, error) {
	switch s {
	case "", "always":
		return FlipAlways, nil
	case "overlapping":
		return FlipWhenOverlapping, nil
	default:
		return FlipAlways, fmt.Errorf("unknown axis flip policy %q", s)
	}
}

// Result describes a collision between A and B.
type Result struct {
	// Axis is the resolving unit axis. Under FlipAlways it points from B toward A.
	Axis r2.Vec
	// Time < 0: the shapes overlap and -Time is the penetration depth along Axis.
	// 0 <= Time < 1: the shapes first touch at this fraction of the tick.
	Time float64
	// Push points from B toward A. For overlaps it is the minimum translation that
	// separates A from B; for future contacts it is the relative displacement
	// along the axis that remains after the contact.
	Push r2.Vec
	// Component is the leading feature of B toward A.
	Component shape.Component
}

// Overlapping reports whether the shapes already intersect.
func (r Result) Overlapping() bool {
	return r.Time < 0
}

// Depth returns the penetration depth, or 0 for future contacts.
func (r Result) Depth() float64 {
	if r.Time < 0 {
		return -r.Time
	}
	return 0
}

// Solver runs swept SAT queries. The zero value uses FlipAlways.
type Solver struct {
	Flip FlipPolicy
}

// DefaultSolver returns a solver with FlipAlways.
func DefaultSolver() Solver {
	return Solver{Flip: FlipAlways}
}

// FindCollision runs DefaultSolver().FindCollision.
func FindCollision(a, b *shape.ConvexShape) (Result, bool) {
	return DefaultSolver().FindCollision(a, b)
}

// FindIntervalIntersection runs the 1-D swept test for a and b along axis,
// with relVel the velocity of a relative to b.
//
// It returns (true, t) with t < 0 when the intervals already overlap (t is the
// shallower of the two negative gaps), (true, t) with t in [0,1) when they
// first touch during the tick, and (false, -Inf) otherwise.
func FindIntervalIntersection(a, b *shape.ConvexShape, relVel, axis r2.Vec) (bool, float64) {
	min0, max0 := a.CalculateInterval(axis)
	min1, max1 := b.CalculateInterval(axis)

	d0 := geom.SnapZero(min0 - max1)
	d1 := geom.SnapZero(min1 - max0)

	if d0 < 0 && d1 < 0 {
		return true, math.Max(d0, d1)
	}

	v := r2.Dot(relVel, axis)
	if geom.ApproxZero(v) {
		return false, math.Inf(-1)
	}

	t0 := -d0 / v
	t1 := d1 / v
	if t0 > t1 {
		t0, t1 = t1, t0
	}
	if t0 <= 0 && t1 <= 0 {
		return false, math.Inf(-1)
	}

	t := t1
	if t0 >= 0 {
		t = t0
	}
	if t >= 1 {
		return false, math.Inf(-1)
	}
	return true, t
}

// FindCollision tests a against b over one tick of their velocities. Both
// shapes must have had UpdateWorldGeometry called since their last transform
// change. It returns false when the shapes neither overlap nor touch during
// the tick.
func (s Solver) FindCollision(a, b *shape.ConvexShape) (Result, bool) {
	relVel := r2.Sub(a.Velocity(), b.Velocity())

	// Shapes whose projections on the velocity normal are disjoint can never
	// meet along the sweep. Skipped when there is no relative motion.
	if !geom.VecApproxZero(relVel) {
		if normal, ok := geom.SafeUnit(geom.Perp(relVel)); ok {
			if hit, _ := FindIntervalIntersection(a, b, relVel, normal); !hit {
				return Result{}, false
			}
		}
	}

	var (
		maxPositiveTime = math.Inf(-1)
		maxPositiveAxis r2.Vec
		maxNegativeTime = math.Inf(-1)
		maxNegativeAxis r2.Vec
		tested          int
	)

	for _, axes := range [2][]r2.Vec{a.Axes(), b.Axes()} {
		for _, axis := range axes {
			if axis == (r2.Vec{}) {
				continue
			}
			tested++

			hit, t := FindIntervalIntersection(a, b, relVel, axis)
			if !hit {
				return Result{}, false
			}

			if t >= 0 {
				if t > maxPositiveTime {
					maxPositiveTime = t
					maxPositiveAxis = axis
				}
			} else if t > maxNegativeTime {
				maxNegativeTime = t
				maxNegativeAxis = axis
			}
		}
	}
	if tested == 0 {
		return Result{}, false
	}

	res := Result{Axis: maxNegativeAxis, Time: maxNegativeTime}
	if maxPositiveTime >= 0 {
		res.Axis = maxPositiveAxis
		res.Time = maxPositiveTime
	}

	toward := r2.Sub(a.Position(), b.Position())
	facing := r2.Dot(toward, res.Axis) >= 0

	// axisBA always points from B toward A and drives the push and feature.
	axisBA := res.Axis
	if !facing {
		axisBA = r2.Scale(-1, res.Axis)
	}
	if s.Flip == FlipAlways || res.Time < 0 {
		res.Axis = axisBA
	}

	if res.Time < 0 {
		res.Push = r2.Scale(-res.Time, axisBA)
	} else {
		closing := r2.Dot(relVel, axisBA)
		res.Push = r2.Scale(-closing*(1-res.Time), axisBA)
	}
	res.Component = b.CollisionComponent(axisBA)

	return res, true
}

// CollisionComponent classifies the leading feature of s along direction.
func (s Solver) CollisionComponent(sh *shape.ConvexShape, direction r2.Vec) shape.Component {
	return sh.CollisionComponent(direction)
}
