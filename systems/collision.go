package systems

import (
	"sort"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/sweep/collision"
	"github.com/pthm-cable/sweep/components"
	"github.com/pthm-cable/sweep/telemetry"
)

// CollisionSystem runs the swept solver over every unordered pair of colliders.
// Pairs are visited in registration order, with the earlier collider as A.
type CollisionSystem struct {
	filter ecs.Filter1[components.Collider]
	solver collision.Solver

	colliders []*components.Collider // reused across ticks
	contacts  []telemetry.ContactEvent
	pairs     int
}

// NewCollisionSystem creates a new collision system.
func NewCollisionSystem(w *ecs.World, solver collision.Solver) *CollisionSystem {
	return &CollisionSystem{
		filter: *ecs.NewFilter1[components.Collider](w),
		solver: solver,
	}
}

// Update queries all pairs and returns this tick's contacts. The returned
// slice is reused by the next call.
func (s *CollisionSystem) Update(tick int32) []telemetry.ContactEvent {
	s.colliders = s.colliders[:0]
	query := s.filter.Query()
	for query.Next() {
		s.colliders = append(s.colliders, query.Get())
	}
	sort.Slice(s.colliders, func(i, j int) bool {
		return s.colliders[i].Index < s.colliders[j].Index
	})

	s.contacts = s.contacts[:0]
	s.pairs = 0
	for i := 0; i < len(s.colliders); i++ {
		a := s.colliders[i]
		for j := i + 1; j < len(s.colliders); j++ {
			b := s.colliders[j]
			s.pairs++

			res, ok := s.solver.FindCollision(a.Shape, b.Shape)
			if !ok {
				continue
			}
			s.contacts = append(s.contacts, telemetry.ContactEvent{
				Tick:   tick,
				A:      a.Name,
				B:      b.Name,
				Result: res,
			})
		}
	}
	return s.contacts
}

// Pairs returns the number of pairs tested by the last Update.
func (s *CollisionSystem) Pairs() int {
	return s.pairs
}
