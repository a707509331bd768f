package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated contact statistics for a window of ticks.
type WindowStats struct {
	WindowStartTick int32 `csv:"-"`
	WindowEndTick   int32 `csv:"window_end"`

	Shapes int `csv:"shapes"`

	// Pair queries during window
	Pairs          int     `csv:"pairs"`
	Misses         int     `csv:"misses"`
	Overlaps       int     `csv:"overlaps"`
	FutureContacts int     `csv:"future_contacts"`
	VertexContacts int     `csv:"vertex_contacts"`
	EdgeContacts   int     `csv:"edge_contacts"`
	HitRate        float64 `csv:"hit_rate"`

	// Time of impact over future contacts
	TOIMean float64 `csv:"toi_mean"`
	TOIP10  float64 `csv:"toi_p10"`
	TOIP50  float64 `csv:"toi_p50"`
	TOIP90  float64 `csv:"toi_p90"`

	// Penetration depth over overlaps
	DepthMean float64 `csv:"depth_mean"`
	DepthP50  float64 `csv:"depth_p50"`
	DepthP90  float64 `csv:"depth_p90"`
	DepthMax  float64 `csv:"depth_max"`
}

// Distribution summarizes a sample.
type Distribution struct {
	Mean, P10, P50, P90, Max float64
}

// Summarize computes the mean, empirical quantiles and maximum of values.
// Returns the zero Distribution for an empty sample. values is not modified.
func Summarize(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return Distribution{
		Mean: stat.Mean(sorted, nil),
		P10:  stat.Quantile(0.10, stat.Empirical, sorted, nil),
		P50:  stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P90:  stat.Quantile(0.90, stat.Empirical, sorted, nil),
		Max:  floats.Max(sorted),
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Int("shapes", s.Shapes),
		slog.Int("pairs", s.Pairs),
		slog.Int("misses", s.Misses),
		slog.Int("overlaps", s.Overlaps),
		slog.Int("future_contacts", s.FutureContacts),
		slog.Int("vertex_contacts", s.VertexContacts),
		slog.Int("edge_contacts", s.EdgeContacts),
		slog.Float64("hit_rate", s.HitRate),
		slog.Float64("toi_mean", s.TOIMean),
		slog.Float64("toi_p10", s.TOIP10),
		slog.Float64("toi_p50", s.TOIP50),
		slog.Float64("toi_p90", s.TOIP90),
		slog.Float64("depth_mean", s.DepthMean),
		slog.Float64("depth_p50", s.DepthP50),
		slog.Float64("depth_p90", s.DepthP90),
		slog.Float64("depth_max", s.DepthMax),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"shapes", s.Shapes,
		"pairs", s.Pairs,
		"misses", s.Misses,
		"overlaps", s.Overlaps,
		"future_contacts", s.FutureContacts,
		"vertex_contacts", s.VertexContacts,
		"edge_contacts", s.EdgeContacts,
		"hit_rate", s.HitRate,
		"toi_mean", s.TOIMean,
		"toi_p50", s.TOIP50,
		"depth_mean", s.DepthMean,
		"depth_max", s.DepthMax,
	)
}
