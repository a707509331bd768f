package shape

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sweep/geom"
)

// ComponentKind classifies the feature of a shape that leads along a direction.
type ComponentKind uint8

const (
	ComponentVertex ComponentKind = iota
	ComponentEdge
)

func (k ComponentKind) String() string {
	switch k {
	case ComponentVertex:
		return "vertex"
	case ComponentEdge:
		return "edge"
	default:
		return fmt.Sprintf("ComponentKind(%d)", uint8(k))
	}
}

// Component is a contact feature: a single vertex, or an edge given by its two
// end vertices in ascending index order.
type Component struct {
	Kind    ComponentKind
	Vertex1 int
	Vertex2 int // -1 for vertex contacts
}

// HasSecond reports whether Vertex2 is set.
func (c Component) HasSecond() bool {
	return c.Kind == ComponentEdge && c.Vertex2 >= 0
}

func (c Component) String() string {
	if c.HasSecond() {
		return fmt.Sprintf("edge(%d,%d)", c.Vertex1, c.Vertex2)
	}
	return fmt.Sprintf("vertex(%d)", c.Vertex1)
}

// CollisionComponent finds the world vertex with the largest projection on
// direction. Vertices are scanned in ascending index order; the first vertex
// that ties the running maximum (within geom.Epsilon) becomes the second end of
// an edge. A later vertex that beats the maximum restarts the scan state, so a
// tie between the first and last vertex (the wrap-around edge) is reported as
// (0, n-1).
func (s *ConvexShape) CollisionComponent(direction r2.Vec) Component {
	best := Component{Kind: ComponentVertex, Vertex1: -1, Vertex2: -1}
	bestDot := math.Inf(-1)

	for i, v := range s.world {
		d := r2.Dot(direction, v)
		switch {
		case best.Vertex1 >= 0 && geom.ApproxEqual(d, bestDot):
			if best.Kind == ComponentVertex {
				best.Kind = ComponentEdge
				best.Vertex2 = i
			}
		case d > bestDot:
			best = Component{Kind: ComponentVertex, Vertex1: i, Vertex2: -1}
			bestDot = d
		}
	}
	return best
}
