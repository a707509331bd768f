package collision

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sweep/shape"
)

// place creates a shape at pos with velocity vel and refreshes its geometry.
func place(verts []r2.Vec, pos, vel r2.Vec, rotation float64) *shape.ConvexShape {
	s := shape.MustNew(verts)
	s.SetTransform(pos, rotation, r2.Vec{X: 1, Y: 1})
	s.SetVelocity(vel)
	s.UpdateWorldGeometry()
	return s
}

func vecNear(a, b r2.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol
}

// ---------- FindIntervalIntersection ----------

func TestFindIntervalIntersection(t *testing.T) {
	up := r2.Vec{X: 0, Y: 1}

	tests := []struct {
		name     string
		posA     r2.Vec
		relVel   r2.Vec
		wantHit  bool
		wantTime float64
	}{
		{"overlapping shallow", r2.Vec{X: 0, Y: 45}, r2.Vec{}, true, -5},
		{"overlapping deep picks shallower gap", r2.Vec{X: 0, Y: 10}, r2.Vec{}, true, -40},
		{"separated stationary", r2.Vec{X: 0, Y: 80}, r2.Vec{}, false, math.Inf(-1)},
		{"separated closing", r2.Vec{X: 0, Y: 80}, r2.Vec{X: 0, Y: -50}, true, 0.6},
		{"separated receding", r2.Vec{X: 0, Y: 80}, r2.Vec{X: 0, Y: 50}, false, math.Inf(-1)},
		{"closing too slowly", r2.Vec{X: 0, Y: 80}, r2.Vec{X: 0, Y: -20}, false, math.Inf(-1)},
		{"reaches exactly at tick end", r2.Vec{X: 0, Y: 80}, r2.Vec{X: 0, Y: -30}, false, math.Inf(-1)},
		{"touching closing", r2.Vec{X: 0, Y: 50}, r2.Vec{X: 0, Y: -10}, true, 0},
		{"touching receding", r2.Vec{X: 0, Y: 50}, r2.Vec{X: 0, Y: 10}, false, math.Inf(-1)},
		{"near touch snapped", r2.Vec{X: 0, Y: 50.00005}, r2.Vec{X: 0, Y: -10}, true, 0},
		{"below closing upward", r2.Vec{X: 0, Y: -80}, r2.Vec{X: 0, Y: 50}, true, 0.6},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := place(shape.Box(50, 50), tc.posA, tc.relVel, 0)
			b := place(shape.Box(50, 50), r2.Vec{}, r2.Vec{}, 0)

			hit, got := FindIntervalIntersection(a, b, tc.relVel, up)
			if hit != tc.wantHit {
				t.Fatalf("hit = %v, want %v (time %f)", hit, tc.wantHit, got)
			}
			if math.IsInf(tc.wantTime, -1) {
				if !math.IsInf(got, -1) {
					t.Errorf("time = %f, want -Inf", got)
				}
				return
			}
			if math.Abs(got-tc.wantTime) > 1e-9 {
				t.Errorf("time = %f, want %f", got, tc.wantTime)
			}
		})
	}
}

// ---------- FindCollision ----------

func TestFindCollisionStationarySeparated(t *testing.T) {
	a := place(shape.Box(50, 50), r2.Vec{X: 100, Y: 0}, r2.Vec{}, 0)
	b := place(shape.Box(50, 50), r2.Vec{}, r2.Vec{}, 0)

	if res, ok := FindCollision(a, b); ok {
		t.Errorf("expected no collision, got %+v", res)
	}
}

func TestFindCollisionStationaryOverlapping(t *testing.T) {
	a := place(shape.Box(50, 50), r2.Vec{X: -40, Y: -10}, r2.Vec{}, 0)
	b := place(shape.Box(50, 50), r2.Vec{}, r2.Vec{}, 0)

	res, ok := FindCollision(a, b)
	if !ok {
		t.Fatal("expected overlap")
	}
	if !res.Overlapping() {
		t.Fatalf("expected negative time, got %f", res.Time)
	}
	if math.Abs(res.Time+10) > 1e-9 {
		t.Errorf("time = %f, want -10", res.Time)
	}
	if !vecNear(res.Axis, r2.Vec{X: -1, Y: 0}, 1e-9) {
		t.Errorf("axis = %v, want (-1,0)", res.Axis)
	}
	if !vecNear(res.Push, r2.Vec{X: -10, Y: 0}, 1e-9) {
		t.Errorf("push = %v, want (-10,0)", res.Push)
	}
	if res.Depth() != 10 {
		t.Errorf("depth = %f, want 10", res.Depth())
	}

	// Applying the push separates the shapes to exact touching.
	a.SetPosition(r2.Add(a.Position(), res.Push))
	a.UpdateWorldGeometry()
	if res, ok := FindCollision(a, b); ok {
		t.Errorf("expected separation after push, got %+v", res)
	}
}

func TestFindCollisionBoxApproachFromBelow(t *testing.T) {
	static := place(shape.Box(50, 50), r2.Vec{}, r2.Vec{}, 0)
	mover := place(shape.Box(50, 50), r2.Vec{X: 0, Y: 80}, r2.Vec{X: 0, Y: -50}, 0)

	res, ok := FindCollision(mover, static)
	if !ok {
		t.Fatal("expected future collision")
	}
	if res.Time <= 0 || res.Time >= 1 {
		t.Fatalf("time = %f, want in (0,1)", res.Time)
	}
	if math.Abs(res.Time-0.6) > 1e-9 {
		t.Errorf("time = %f, want 0.6", res.Time)
	}
	if !vecNear(res.Axis, r2.Vec{X: 0, Y: 1}, 1e-9) {
		t.Errorf("axis = %v, want (0,1)", res.Axis)
	}
	if !vecNear(res.Push, r2.Vec{X: 0, Y: 20}, 1e-9) {
		t.Errorf("push = %v, want (0,20)", res.Push)
	}
	want := shape.Component{Kind: shape.ComponentEdge, Vertex1: 2, Vertex2: 3}
	if res.Component != want {
		t.Errorf("component = %v, want %v", res.Component, want)
	}
}

func TestFindCollisionMissesWithinTick(t *testing.T) {
	static := place(shape.Box(50, 50), r2.Vec{}, r2.Vec{}, 0)

	tests := []struct {
		name string
		pos  r2.Vec
		vel  r2.Vec
	}{
		{"too far", r2.Vec{X: 0, Y: 200}, r2.Vec{X: 0, Y: -50}},
		{"moving away", r2.Vec{X: 0, Y: 80}, r2.Vec{X: 0, Y: 50}},
		{"passes beside", r2.Vec{X: 60, Y: 80}, r2.Vec{X: 0, Y: -200}},
		{"parallel slide", r2.Vec{X: 0, Y: 60}, r2.Vec{X: 100, Y: 0}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mover := place(shape.Box(50, 50), tc.pos, tc.vel, 0)
			if res, ok := FindCollision(mover, static); ok {
				t.Errorf("expected miss, got %+v", res)
			}
		})
	}
}

func TestFindCollisionVelocityNormalRejects(t *testing.T) {
	// Diagonal motion that would close every face-normal gap within the tick
	// but passes the corner.
	static := place(shape.Box(10, 10), r2.Vec{}, r2.Vec{}, 0)
	mover := place(shape.Box(10, 10), r2.Vec{X: -20, Y: 20}, r2.Vec{X: 60, Y: -12}, 0)

	// Face normals alone report a hit: the x gap closes at 1/6 and the y gap at 5/6.
	for _, axis := range static.Axes() {
		if hit, _ := FindIntervalIntersection(mover, static, mover.Velocity(), axis); !hit {
			t.Fatalf("face axis %v unexpectedly separates", axis)
		}
	}

	if res, ok := FindCollision(mover, static); ok {
		t.Errorf("expected rejection, got %+v", res)
	}
}

func TestFindCollisionSymmetry(t *testing.T) {
	cases := []struct {
		name           string
		vertsA, vertsB []r2.Vec
		posA, posB     r2.Vec
		velA, velB     r2.Vec
		rotA, rotB     float64
	}{
		{
			name:   "box approach",
			vertsA: shape.Box(50, 50), vertsB: shape.Box(50, 50),
			posA: r2.Vec{X: 0, Y: 80}, velA: r2.Vec{X: 0, Y: -50},
		},
		{
			name:   "both moving",
			vertsA: shape.Regular(5, 20), vertsB: shape.Box(30, 60),
			posA: r2.Vec{X: -60, Y: 5}, posB: r2.Vec{X: 10, Y: 0},
			velA: r2.Vec{X: 30, Y: 0}, velB: r2.Vec{X: -20, Y: 1},
			rotA: 0.3, rotB: -0.2,
		},
		{
			name:   "overlapping rotated",
			vertsA: shape.Regular(6, 15), vertsB: shape.Regular(3, 25),
			posA: r2.Vec{X: 12, Y: 7}, posB: r2.Vec{X: 0, Y: 0},
			rotA: 1.0, rotB: 0.25,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := place(tc.vertsA, tc.posA, tc.velA, tc.rotA)
			b := place(tc.vertsB, tc.posB, tc.velB, tc.rotB)

			ab, okAB := FindCollision(a, b)
			ba, okBA := FindCollision(b, a)
			if okAB != okBA {
				t.Fatalf("FindCollision(A,B) ok=%v but FindCollision(B,A) ok=%v", okAB, okBA)
			}
			if !okAB {
				t.Fatal("expected a collision in both orders")
			}
			if math.Abs(ab.Time-ba.Time) > 1e-9 {
				t.Errorf("time A,B = %f, time B,A = %f", ab.Time, ba.Time)
			}
			if !vecNear(ab.Axis, r2.Scale(-1, ba.Axis), 1e-9) {
				t.Errorf("axis A,B = %v, axis B,A = %v, want negated", ab.Axis, ba.Axis)
			}
		})
	}
}

func TestFindCollisionFlipPolicy(t *testing.T) {
	static := place(shape.Box(50, 50), r2.Vec{}, r2.Vec{}, 0)
	mover := place(shape.Box(50, 50), r2.Vec{X: 0, Y: 80}, r2.Vec{X: 0, Y: -50}, 0)

	always := Solver{Flip: FlipAlways}
	gated := Solver{Flip: FlipWhenOverlapping}

	resAlways, ok := always.FindCollision(mover, static)
	if !ok {
		t.Fatal("expected collision")
	}
	resGated, ok := gated.FindCollision(mover, static)
	if !ok {
		t.Fatal("expected collision")
	}

	// The first face normal to reach the contact time is the mover's bottom
	// normal, which faces away from the mover. Only FlipAlways reorients it.
	if !vecNear(resAlways.Axis, r2.Vec{X: 0, Y: 1}, 1e-9) {
		t.Errorf("FlipAlways axis = %v, want (0,1)", resAlways.Axis)
	}
	if !vecNear(resGated.Axis, r2.Vec{X: 0, Y: -1}, 1e-9) {
		t.Errorf("FlipWhenOverlapping axis = %v, want (0,-1)", resGated.Axis)
	}
	if resAlways.Time != resGated.Time {
		t.Errorf("policies disagree on time: %f vs %f", resAlways.Time, resGated.Time)
	}
	// Push and contact feature do not depend on the policy.
	if resAlways.Push != resGated.Push || resAlways.Component != resGated.Component {
		t.Errorf("push/component differ: %+v vs %+v", resAlways, resGated)
	}

	// Overlaps are oriented under both policies.
	overlapping := place(shape.Box(50, 50), r2.Vec{X: 0, Y: 45}, r2.Vec{}, 0)
	res, ok := gated.FindCollision(overlapping, static)
	if !ok || !res.Overlapping() {
		t.Fatalf("expected overlap, got %+v ok=%v", res, ok)
	}
	if !vecNear(res.Axis, r2.Vec{X: 0, Y: 1}, 1e-9) {
		t.Errorf("overlap axis = %v, want (0,1)", res.Axis)
	}
}

func TestFindCollisionZeroRelativeVelocity(t *testing.T) {
	// Same velocity: relative motion is zero, the velocity-normal axis is skipped
	// and the query behaves like a static overlap test.
	vel := r2.Vec{X: 25, Y: -5}
	a := place(shape.Box(20, 20), r2.Vec{X: 15, Y: 0}, vel, 0)
	b := place(shape.Box(20, 20), r2.Vec{}, vel, 0)

	res, ok := FindCollision(a, b)
	if !ok {
		t.Fatal("expected overlap")
	}
	if math.IsNaN(res.Axis.X) || math.IsNaN(res.Axis.Y) || math.IsNaN(res.Time) {
		t.Fatalf("NaN in result: %+v", res)
	}
	if math.Abs(res.Time+5) > 1e-9 {
		t.Errorf("time = %f, want -5", res.Time)
	}

	far := place(shape.Box(20, 20), r2.Vec{X: 50, Y: 0}, vel, 0)
	if _, ok := FindCollision(far, b); ok {
		t.Error("expected no collision for separated shapes moving together")
	}
}

func TestFindCollisionVertexContact(t *testing.T) {
	// A diamond falls onto a flat box: B's leading feature toward A is its top edge,
	// A's leading feature toward B is its bottom vertex.
	diamond := place(shape.Regular(4, 10), r2.Vec{X: 0, Y: 40}, r2.Vec{X: 0, Y: -40}, 0)
	floor := place(shape.Box(100, 20), r2.Vec{}, r2.Vec{}, 0)

	res, ok := FindCollision(diamond, floor)
	if !ok {
		t.Fatal("expected collision")
	}
	if math.Abs(res.Time-0.5) > 1e-9 {
		t.Errorf("time = %f, want 0.5", res.Time)
	}
	want := shape.Component{Kind: shape.ComponentEdge, Vertex1: 2, Vertex2: 3}
	if res.Component != want {
		t.Errorf("floor component = %v, want %v", res.Component, want)
	}

	tip := DefaultSolver().CollisionComponent(diamond, r2.Scale(-1, res.Axis))
	if tip.Kind != shape.ComponentVertex || tip.Vertex1 != 3 {
		t.Errorf("diamond component = %v, want vertex(3)", tip)
	}
}

// TestFindCollisionMinimumPenetration compares overlap results against a brute-force
// search over every face normal.
func TestFindCollisionMinimumPenetration(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	checked := 0
	for i := 0; i < 200; i++ {
		a := place(shape.Regular(3+rng.Intn(6), 10+rng.Float64()*10),
			r2.Vec{X: rng.Float64()*20 - 10, Y: rng.Float64()*20 - 10}, r2.Vec{}, rng.Float64()*2*math.Pi)
		b := place(shape.Regular(3+rng.Intn(6), 10+rng.Float64()*10),
			r2.Vec{X: rng.Float64()*20 - 10, Y: rng.Float64()*20 - 10}, r2.Vec{}, rng.Float64()*2*math.Pi)

		res, ok := FindCollision(a, b)
		if !ok {
			continue
		}
		if !res.Overlapping() {
			t.Fatalf("case %d: stationary shapes reported future contact %+v", i, res)
		}

		best := math.Inf(1)
		for _, axes := range [][]r2.Vec{a.Axes(), b.Axes()} {
			for _, axis := range axes {
				min0, max0 := a.CalculateInterval(axis)
				min1, max1 := b.CalculateInterval(axis)
				depth := math.Min(max1-min0, max0-min1)
				if depth < best {
					best = depth
				}
			}
		}
		if math.Abs(res.Depth()-best) > 1e-9 {
			t.Errorf("case %d: depth = %f, brute force = %f", i, res.Depth(), best)
		}

		toward := r2.Sub(a.Position(), b.Position())
		if r2.Dot(toward, res.Axis) < 0 {
			t.Errorf("case %d: axis %v does not point from B to A", i, res.Axis)
		}
		checked++
	}
	if checked == 0 {
		t.Fatal("no overlapping cases generated")
	}
}

func TestFlipPolicyParse(t *testing.T) {
	for _, p := range []FlipPolicy{FlipAlways, FlipWhenOverlapping} {
		got, err := ParseFlipPolicy(p.String())
		if err != nil || got != p {
			t.Errorf("ParseFlipPolicy(%q) = %v, %v", p.String(), got, err)
		}
	}
	if _, err := ParseFlipPolicy("sometimes"); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func BenchmarkFindCollision(b *testing.B) {
	s1 := place(shape.Regular(8, 20), r2.Vec{X: -30, Y: 4}, r2.Vec{X: 25, Y: 0}, 0.2)
	s2 := place(shape.Regular(6, 18), r2.Vec{}, r2.Vec{X: -5, Y: 0}, 0.7)
	solver := DefaultSolver()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		solver.FindCollision(s1, s2)
	}
}
