package systems

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/sweep/components"
	"github.com/pthm-cable/sweep/geom"
)

// MotionSystem advances entity poses by one tick of velocity and spin.
// No collision response is applied; shapes pass through each other.
type MotionSystem struct {
	filter ecs.Filter3[components.Transform, components.Velocity, components.Spin]
}

// NewMotionSystem creates a new motion system.
func NewMotionSystem(w *ecs.World) *MotionSystem {
	return &MotionSystem{
		filter: *ecs.NewFilter3[components.Transform, components.Velocity, components.Spin](w),
	}
}

// Update runs the motion system.
func (s *MotionSystem) Update() {
	query := s.filter.Query()
	for query.Next() {
		tf, vel, spin := query.Get()
		tf.Position = r2.Add(tf.Position, vel.Vec)
		tf.Rotation = geom.NormalizeAngle(tf.Rotation + spin.Rate)
	}
}
