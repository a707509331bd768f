package sim

import (
	"log/slog"
)

// recordContacts feeds this tick's contacts into the collector and output.
func (s *Sim) recordContacts() {
	s.collector.RecordPairs(s.collision.Pairs())
	for _, c := range s.contacts {
		s.collector.RecordContact(c)
		if s.logContacts {
			slog.Info("contact",
				"tick", c.Tick,
				"a", c.A,
				"b", c.B,
				"state", c.State().String(),
				"time", c.Result.Time,
				"axis_x", c.Result.Axis.X,
				"axis_y", c.Result.Axis.Y,
				"component", c.Result.Component.String(),
			)
		}
	}

	if err := s.outputManager.WriteContacts(s.contacts); err != nil {
		slog.Error("failed to write contacts", "error", err)
	}
}

// flushTelemetry checks if the stats window should be flushed.
func (s *Sim) flushTelemetry() {
	if !s.collector.ShouldFlush(s.tick) {
		return
	}
	s.flush()
}

func (s *Sim) flush() {
	stats := s.collector.Flush(s.tick, s.ShapeCount())
	perfStats := s.perfCollector.Stats()

	// Call stats callback if provided
	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	// Log stats if enabled (console output)
	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := s.outputManager.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := s.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}
