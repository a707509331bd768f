// Package telemetry provides contact tracking, windowed statistics and CSV output
// for the collision harness.
package telemetry

import (
	"github.com/pthm-cable/sweep/collision"
	"github.com/pthm-cable/sweep/shape"
)

// ContactState classifies a contact event.
type ContactState uint8

const (
	ContactOverlap ContactState = iota // shapes already intersect
	ContactFuture                      // shapes touch later this tick
)

func (s ContactState) String() string {
	if s == ContactOverlap {
		return "overlap"
	}
	return "future"
}

// ContactEvent is one solver hit for a pair during a tick.
type ContactEvent struct {
	Tick   int32
	A, B   string
	Result collision.Result
}

// State returns whether the pair overlaps or will touch.
func (e ContactEvent) State() ContactState {
	if e.Result.Overlapping() {
		return ContactOverlap
	}
	return ContactFuture
}

// ContactRecord is the CSV form of a ContactEvent.
type ContactRecord struct {
	Tick    int32   `csv:"tick"`
	A       string  `csv:"a"`
	B       string  `csv:"b"`
	State   string  `csv:"state"`
	Time    float64 `csv:"time"`
	AxisX   float64 `csv:"axis_x"`
	AxisY   float64 `csv:"axis_y"`
	PushX   float64 `csv:"push_x"`
	PushY   float64 `csv:"push_y"`
	Feature string  `csv:"feature"`
	Vertex1 int     `csv:"vertex1"`
	Vertex2 int     `csv:"vertex2"` // -1 for vertex contacts
}

// Record converts the event to its CSV row.
func (e ContactEvent) Record() ContactRecord {
	r := e.Result
	v2 := -1
	if r.Component.Kind == shape.ComponentEdge {
		v2 = r.Component.Vertex2
	}
	return ContactRecord{
		Tick:    e.Tick,
		A:       e.A,
		B:       e.B,
		State:   e.State().String(),
		Time:    r.Time,
		AxisX:   r.Axis.X,
		AxisY:   r.Axis.Y,
		PushX:   r.Push.X,
		PushY:   r.Push.Y,
		Feature: r.Component.Kind.String(),
		Vertex1: r.Component.Vertex1,
		Vertex2: v2,
	}
}
