// Package shape holds the convex polygon geometry consumed by the collision solver.
package shape

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sweep/geom"
)

// Construction errors.
var (
	ErrTooFewVertices = errors.New("shape: polygon needs at least 3 vertices")
	ErrDegenerateEdge = errors.New("shape: consecutive vertices coincide")
	ErrNotConvex      = errors.New("shape: polygon is not convex")
	ErrClockwise      = errors.New("shape: vertices must wind counter-clockwise")
)

// ConvexShape is a convex polygon with a mutable world transform.
//
// World vertices and collision axes are caches. They are only refreshed by
// UpdateWorldGeometry; callers must invoke it after changing the transform and
// before any query. Querying stale geometry is a caller error and is not detected.
//
// A ConvexShape must not be mutated while another goroutine queries it.
type ConvexShape struct {
	local []r2.Vec

	position r2.Vec
	rotation float64
	scale    r2.Vec
	velocity r2.Vec

	world []r2.Vec
	axes  []r2.Vec
}

// New creates a shape from counter-clockwise (y-up) local vertices. The slice is copied.
func New(vertices []r2.Vec) (*ConvexShape, error) {
	if err := Validate(vertices); err != nil {
		return nil, err
	}

	local := make([]r2.Vec, len(vertices))
	copy(local, vertices)

	s := &ConvexShape{
		local: local,
		scale: r2.Vec{X: 1, Y: 1},
		world: make([]r2.Vec, len(vertices)),
		axes:  make([]r2.Vec, len(vertices)),
	}
	s.UpdateWorldGeometry()
	return s, nil
}

// MustNew is like New but panics on invalid input. Intended for fixed geometry in tests and tools.
func MustNew(vertices []r2.Vec) *ConvexShape {
	s, err := New(vertices)
	if err != nil {
		panic(err)
	}
	return s
}

// NewBox creates an axis-aligned box centered on the local origin.
func NewBox(width, height float64) (*ConvexShape, error) {
	return New(Box(width, height))
}

// Box returns the four corners of a width x height box centered on the origin,
// starting bottom-left and winding counter-clockwise.
func Box(width, height float64) []r2.Vec {
	hw, hh := width/2, height/2
	return []r2.Vec{
		{X: -hw, Y: -hh},
		{X: hw, Y: -hh},
		{X: hw, Y: hh},
		{X: -hw, Y: hh},
	}
}

// Regular returns the vertices of a regular polygon with the given number of sides,
// first vertex on the +X axis.
func Regular(sides int, radius float64) []r2.Vec {
	if sides < 0 {
		sides = 0
	}
	verts := make([]r2.Vec, sides)
	step := 2 * math.Pi / float64(sides)
	for i := range verts {
		sin, cos := math.Sincos(step * float64(i))
		verts[i] = r2.Vec{X: radius * cos, Y: radius * sin}
	}
	return verts
}

// Validate checks that vertices describe a convex, counter-clockwise polygon with
// no coincident neighbours. Collinear vertices are allowed.
func Validate(vertices []r2.Vec) error {
	n := len(vertices)
	if n < 3 {
		return fmt.Errorf("%w: got %d", ErrTooFewVertices, n)
	}

	var positive, negative int
	for i := 0; i < n; i++ {
		p0 := vertices[i]
		p1 := vertices[(i+1)%n]
		p2 := vertices[(i+2)%n]

		e1 := r2.Sub(p1, p0)
		if geom.VecApproxZero(e1) {
			return fmt.Errorf("%w: vertices %d and %d", ErrDegenerateEdge, i, (i+1)%n)
		}
		e2 := r2.Sub(p2, p1)

		cross := r2.Cross(e1, e2)
		switch {
		case cross > geom.Epsilon:
			positive++
		case cross < -geom.Epsilon:
			negative++
		}
	}

	switch {
	case positive == 0 && negative == 0:
		return fmt.Errorf("%w: all vertices collinear", ErrNotConvex)
	case positive > 0 && negative > 0:
		return ErrNotConvex
	case negative > 0:
		return ErrClockwise
	}
	return nil
}

// SetPosition sets the world-space origin of the local frame.
func (s *ConvexShape) SetPosition(p r2.Vec) { s.position = p }

// SetRotation sets the rotation in radians.
func (s *ConvexShape) SetRotation(radians float64) { s.rotation = radians }

// SetScale sets the non-uniform scale factor.
func (s *ConvexShape) SetScale(scale r2.Vec) { s.scale = scale }

// SetVelocity sets the displacement applied over one tick.
func (s *ConvexShape) SetVelocity(v r2.Vec) { s.velocity = v }

// SetTransform sets position, rotation and scale in one call.
func (s *ConvexShape) SetTransform(position r2.Vec, rotation float64, scale r2.Vec) {
	s.position = position
	s.rotation = rotation
	s.scale = scale
}

func (s *ConvexShape) Position() r2.Vec  { return s.position }
func (s *ConvexShape) Rotation() float64 { return s.rotation }
func (s *ConvexShape) Scale() r2.Vec     { return s.scale }
func (s *ConvexShape) Velocity() r2.Vec  { return s.velocity }

// VertexCount returns the number of vertices, which is also the number of collision axes.
func (s *ConvexShape) VertexCount() int { return len(s.local) }

// LocalVertices returns the construction-time vertices. The slice must not be modified.
func (s *ConvexShape) LocalVertices() []r2.Vec { return s.local }

// WorldVertices returns the vertices as of the last UpdateWorldGeometry.
// The slice is owned by the shape and is overwritten on the next update.
func (s *ConvexShape) WorldVertices() []r2.Vec { return s.world }

// Axes returns the outward unit normals as of the last UpdateWorldGeometry.
// Axis i is the normal of the edge from vertex i-1 to vertex i. An edge that
// collapses in world space (zero scale) has a zero axis.
func (s *ConvexShape) Axes() []r2.Vec { return s.axes }

// UpdateWorldGeometry recomputes world vertices (scale, rotate, translate) and
// the per-edge outward normals.
func (s *ConvexShape) UpdateWorldGeometry() {
	for i, p := range s.local {
		s.world[i] = geom.Transform(p, s.position, s.rotation, s.scale)
	}

	// A mirrored scale reverses winding, which would turn the normals inward.
	mirrored := s.scale.X*s.scale.Y < 0

	n := len(s.world)
	for i := range s.world {
		prev := s.world[(i+n-1)%n]
		edge := r2.Sub(s.world[i], prev)

		axis, ok := geom.SafeUnit(geom.Perp(edge))
		if ok && mirrored {
			axis = r2.Scale(-1, axis)
		}
		s.axes[i] = axis
	}
}

// CalculateInterval projects every world vertex onto axis and returns the
// smallest and largest projection.
func (s *ConvexShape) CalculateInterval(axis r2.Vec) (min, max float64) {
	min = math.Inf(1)
	max = math.Inf(-1)
	for _, v := range s.world {
		d := r2.Dot(axis, v)
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}
	return min, max
}

// Centroid returns the vertex average of the world vertices.
func (s *ConvexShape) Centroid() r2.Vec {
	var sum r2.Vec
	for _, v := range s.world {
		sum = r2.Add(sum, v)
	}
	return r2.Scale(1/float64(len(s.world)), sum)
}
