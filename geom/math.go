// Package geom holds the numeric helpers shared by the shape and collision packages.
//
// Vectors are gonum r2.Vec values. Every approximate comparison in the engine goes through
// ApproxEqual or ApproxZero so that exact-touching configurations classify the same way on
// every run.
package geom

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r2"
)

// Epsilon is the fixed tolerance used for gap snapping, closing-speed checks and
// vertex tie detection.
const Epsilon = 1e-4

// ApproxEqual reports whether a and b are equal within Epsilon, scaled by
// max(1, |a|, |b|) for large magnitudes.
func ApproxEqual(a, b float64) bool {
	return ApproxEqualTol(a, b, Epsilon)
}

// ApproxEqualTol is ApproxEqual with an explicit tolerance.
func ApproxEqualTol(a, b, tol float64) bool {
	return scalar.EqualWithinAbsOrRel(a, b, tol, tol)
}

// ApproxZero reports whether |f| < Epsilon.
func ApproxZero(f float64) bool {
	return math.Abs(f) < Epsilon
}

// SnapZero returns 0 when f is approximately zero and f otherwise.
func SnapZero(f float64) float64 {
	if ApproxZero(f) {
		return 0
	}
	return f
}

// VecApproxZero reports whether both components of v are approximately zero.
func VecApproxZero(v r2.Vec) bool {
	return ApproxZero(v.X) && ApproxZero(v.Y)
}

// VecApproxEqual compares two vectors component-wise with ApproxEqual.
func VecApproxEqual(a, b r2.Vec) bool {
	return ApproxEqual(a.X, b.X) && ApproxEqual(a.Y, b.Y)
}

// SafeUnit normalizes v. It returns false, and the zero vector, when v has
// approximately zero length.
func SafeUnit(v r2.Vec) (r2.Vec, bool) {
	if ApproxZero(r2.Norm(v)) {
		return r2.Vec{}, false
	}
	return r2.Unit(v), true
}

// Perp returns (v.Y, -v.X). For an edge of a counter-clockwise polygon (y-up)
// this is the outward direction.
func Perp(v r2.Vec) r2.Vec {
	return r2.Vec{X: v.Y, Y: -v.X}
}

// Transform applies scale, then rotation, then translation to p.
func Transform(p, translation r2.Vec, rotation float64, scale r2.Vec) r2.Vec {
	sin, cos := math.Sincos(rotation)

	sx := p.X * scale.X
	sy := p.Y * scale.Y

	return r2.Vec{
		X: sx*cos - sy*sin + translation.X,
		Y: sx*sin + sy*cos + translation.Y,
	}
}

// NormalizeAngle wraps an angle to [-Pi, Pi].
func NormalizeAngle(angle float64) float64 {
	for angle > math.Pi {
		angle -= 2 * math.Pi
	}
	for angle < -math.Pi {
		angle += 2 * math.Pi
	}
	return angle
}
