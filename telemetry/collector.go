package telemetry

import "github.com/pthm-cable/sweep/shape"

// Collector accumulates contact events within tick windows and produces WindowStats.
type Collector struct {
	windowDurationTicks int32

	// Current window tracking
	windowStartTick int32

	// Counters for current window
	pairs          int
	overlaps       int
	futureContacts int
	vertexContacts int
	edgeContacts   int

	tois   []float64
	depths []float64
}

// NewCollector creates a new stats collector that flushes every windowTicks ticks.
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{
		windowDurationTicks: int32(windowTicks),
	}
}

// RecordPairs records n pair queries.
func (c *Collector) RecordPairs(n int) {
	c.pairs += n
}

// RecordContact records one solver hit.
func (c *Collector) RecordContact(ev ContactEvent) {
	r := ev.Result
	if r.Overlapping() {
		c.overlaps++
		c.depths = append(c.depths, r.Depth())
	} else {
		c.futureContacts++
		c.tois = append(c.tois, r.Time)
	}

	if r.Component.Kind == shape.ComponentEdge {
		c.edgeContacts++
	} else {
		c.vertexContacts++
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, shapes int) WindowStats {
	hits := c.overlaps + c.futureContacts

	var hitRate float64
	if c.pairs > 0 {
		hitRate = float64(hits) / float64(c.pairs)
	}
	misses := c.pairs - hits
	if misses < 0 {
		misses = 0
	}

	toi := Summarize(c.tois)
	depth := Summarize(c.depths)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		Shapes:          shapes,

		Pairs:          c.pairs,
		Misses:         misses,
		Overlaps:       c.overlaps,
		FutureContacts: c.futureContacts,
		VertexContacts: c.vertexContacts,
		EdgeContacts:   c.edgeContacts,
		HitRate:        hitRate,

		TOIMean: toi.Mean,
		TOIP10:  toi.P10,
		TOIP50:  toi.P50,
		TOIP90:  toi.P90,

		DepthMean: depth.Mean,
		DepthP50:  depth.P50,
		DepthP90:  depth.P90,
		DepthMax:  depth.Max,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.pairs = 0
	c.overlaps = 0
	c.futureContacts = 0
	c.vertexContacts = 0
	c.edgeContacts = 0
	c.tois = c.tois[:0]
	c.depths = c.depths[:0]

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}

// WindowStart returns the tick at which the current window began.
func (c *Collector) WindowStart() int32 {
	return c.windowStartTick
}
