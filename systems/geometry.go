// Package systems contains the ECS systems that drive the collision harness.
package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/sweep/components"
)

// GeometrySystem copies each entity's pose and velocity into its shape and
// refreshes the shape's world geometry. It must run after any transform
// change and before CollisionSystem.
type GeometrySystem struct {
	filter ecs.Filter3[components.Transform, components.Velocity, components.Collider]
}

// NewGeometrySystem creates a new geometry system.
func NewGeometrySystem(w *ecs.World) *GeometrySystem {
	return &GeometrySystem{
		filter: *ecs.NewFilter3[components.Transform, components.Velocity, components.Collider](w),
	}
}

// Update refreshes every collider.
func (s *GeometrySystem) Update() {
	query := s.filter.Query()
	for query.Next() {
		tf, vel, col := query.Get()
		col.Shape.SetTransform(tf.Position, tf.Rotation, tf.Scale)
		col.Shape.SetVelocity(vel.Vec)
		col.Shape.UpdateWorldGeometry()
	}
}
