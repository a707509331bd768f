// Package components defines ECS components for the collision harness.
package components

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sweep/shape"
)

// Transform is an entity's world pose.
type Transform struct {
	Position r2.Vec
	Rotation float64 // radians
	Scale    r2.Vec
}

// Velocity is the displacement applied over one tick.
type Velocity struct {
	r2.Vec
}

// Spin is the rotation applied over one tick.
type Spin struct {
	Rate float64 // radians per tick
}

// Collider binds an entity to the convex shape the solver queries.
// Shape geometry is refreshed from Transform and Velocity every tick.
type Collider struct {
	Name  string
	Index int // registration order; pairs are queried with the lower index as A
	Shape *shape.ConvexShape
}
