package main

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sweep/collision"
	"github.com/pthm-cable/sweep/shape"
)

// body is one randomly generated shape in a case.
type body struct {
	Sides    int
	Radius   float64
	Position r2.Vec
	Rotation float64
	Velocity r2.Vec
}

func randomBody(rng *rand.Rand) body {
	return body{
		Sides:    3 + rng.Intn(6),
		Radius:   5 + rng.Float64()*25,
		Position: r2.Vec{X: rng.Float64()*120 - 60, Y: rng.Float64()*120 - 60},
		Rotation: rng.Float64() * 2 * math.Pi,
		Velocity: r2.Vec{X: rng.Float64()*80 - 40, Y: rng.Float64()*80 - 40},
	}
}

// at builds the shape posed at fraction s of the tick.
func (b body) at(s float64) *shape.ConvexShape {
	sh := shape.MustNew(shape.Regular(b.Sides, b.Radius))
	sh.SetPosition(r2.Add(b.Position, r2.Scale(s, b.Velocity)))
	sh.SetRotation(b.Rotation)
	sh.SetVelocity(b.Velocity)
	sh.UpdateWorldGeometry()
	return sh
}

// separation is the static SAT distance: the largest gap between the
// projections over all face normals. Negative when the shapes overlap.
func separation(a, b *shape.ConvexShape) float64 {
	sep := math.Inf(-1)
	for _, axes := range [2][]r2.Vec{a.Axes(), b.Axes()} {
		for _, axis := range axes {
			if axis == (r2.Vec{}) {
				continue
			}
			min0, max0 := a.CalculateInterval(axis)
			min1, max1 := b.CalculateInterval(axis)
			sep = math.Max(sep, math.Max(min0-max1, min1-max0))
		}
	}
	return sep
}

// Outcome names a swept result class.
const (
	OutcomeMiss    = "miss"
	OutcomeOverlap = "overlap"
	OutcomeFuture  = "future"
)

// CaseRecord is one verified case, written to CSV when it mismatches.
type CaseRecord struct {
	Case      int     `csv:"case"`
	SidesA    int     `csv:"sides_a"`
	RadiusA   float64 `csv:"radius_a"`
	PosAX     float64 `csv:"pos_a_x"`
	PosAY     float64 `csv:"pos_a_y"`
	RotA      float64 `csv:"rot_a"`
	VelAX     float64 `csv:"vel_a_x"`
	VelAY     float64 `csv:"vel_a_y"`
	SidesB    int     `csv:"sides_b"`
	RadiusB   float64 `csv:"radius_b"`
	PosBX     float64 `csv:"pos_b_x"`
	PosBY     float64 `csv:"pos_b_y"`
	RotB      float64 `csv:"rot_b"`
	VelBX     float64 `csv:"vel_b_x"`
	VelBY     float64 `csv:"vel_b_y"`
	Outcome   string  `csv:"outcome"`
	Time      float64 `csv:"time"`
	SampleTOI float64 `csv:"sample_toi"` // first sub-step found overlapping, -1 if none
	Reason    string  `csv:"reason"`
}

func newRecord(id int, a, b body) CaseRecord {
	return CaseRecord{
		Case:    id,
		SidesA:  a.Sides,
		RadiusA: a.Radius,
		PosAX:   a.Position.X,
		PosAY:   a.Position.Y,
		RotA:    a.Rotation,
		VelAX:   a.Velocity.X,
		VelAY:   a.Velocity.Y,
		SidesB:  b.Sides,
		RadiusB: b.Radius,
		PosBX:   b.Position.X,
		PosBY:   b.Position.Y,
		RotB:    b.Rotation,
		VelBX:   b.Velocity.X,
		VelBY:   b.Velocity.Y,
	}
}

// checker compares the swept solver against sub-stepped static SAT.
type checker struct {
	solver    collision.Solver
	steps     int
	tolerance float64 // distance tolerance
}

// check runs one case. Reason is empty when the swept result agrees with
// the sampled reference.
func (c checker) check(id int, a, b body) CaseRecord {
	rec := newRecord(id, a, b)

	// Sample the relative motion; B's pose is fixed by moving A by the
	// relative velocity.
	rel := a
	rel.Velocity = r2.Sub(a.Velocity, b.Velocity)
	still := b
	still.Velocity = r2.Vec{}
	staticB := still.at(0)

	rec.SampleTOI = -1
	seps := make([]float64, c.steps)
	for k := range seps {
		s := float64(k) / float64(c.steps)
		seps[k] = separation(rel.at(s), staticB)
		if rec.SampleTOI < 0 && seps[k] < -c.tolerance {
			rec.SampleTOI = s
		}
	}

	res, hit := c.solver.FindCollision(a.at(0), b.at(0))
	switch {
	case !hit:
		rec.Outcome = OutcomeMiss
		rec.Time = math.NaN()
		if rec.SampleTOI >= 0 {
			rec.Reason = "swept miss but sampled overlap"
		}

	case res.Overlapping():
		rec.Outcome = OutcomeOverlap
		rec.Time = res.Time
		if seps[0] > c.tolerance {
			rec.Reason = "swept overlap but separated at start"
		} else if math.Abs(res.Depth()+seps[0]) > c.tolerance {
			rec.Reason = "penetration depth differs from static separation"
		}

	default:
		rec.Outcome = OutcomeFuture
		rec.Time = res.Time
		if math.Abs(separation(rel.at(res.Time), staticB)) > c.tolerance {
			rec.Reason = "shapes not touching at swept time"
			break
		}
		for k, sep := range seps {
			if float64(k)/float64(c.steps) >= res.Time {
				break
			}
			if sep < -c.tolerance {
				rec.Reason = "sampled overlap before swept time"
				break
			}
		}
	}
	return rec
}
