// Package main cross-checks the swept solver against sub-stepped static
// separating-axis tests on randomly posed regular polygons.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/sweep/collision"
)

// Summary counts case outcomes.
type Summary struct {
	Cases      int
	Misses     int
	Overlaps   int
	Futures    int
	Mismatches []CaseRecord
}

// run generates and checks n cases.
func run(seed int64, n int, c checker) Summary {
	rng := rand.New(rand.NewSource(seed))
	var sum Summary
	for i := 0; i < n; i++ {
		a, b := randomBody(rng), randomBody(rng)
		rec := c.check(i, a, b)

		sum.Cases++
		switch rec.Outcome {
		case OutcomeMiss:
			sum.Misses++
		case OutcomeOverlap:
			sum.Overlaps++
		case OutcomeFuture:
			sum.Futures++
		}
		if rec.Reason != "" {
			sum.Mismatches = append(sum.Mismatches, rec)
		}
	}
	return sum
}

func writeMismatches(path string, records []CaseRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if err := gocsv.Marshal(records, f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func main() {
	seed := flag.Int64("seed", 1, "RNG seed")
	cases := flag.Int("cases", 10000, "Number of random shape pairs")
	steps := flag.Int("steps", 512, "Sub-steps per tick for the static reference")
	tolerance := flag.Float64("tolerance", 1e-3, "Distance tolerance")
	flip := flag.String("flip", "always", "Axis flip policy (always, overlapping)")
	output := flag.String("output", "verify.csv", "CSV file for mismatching cases (empty = none)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	policy, err := collision.ParseFlipPolicy(*flip)
	if err != nil {
		slog.Error("invalid flag", "error", err)
		os.Exit(1)
	}
	if *steps < 1 {
		slog.Error("invalid flag", "error", "steps must be positive")
		os.Exit(1)
	}

	sum := run(*seed, *cases, checker{
		solver:    collision.Solver{Flip: policy},
		steps:     *steps,
		tolerance: *tolerance,
	})

	slog.Info("verify complete",
		"seed", *seed,
		"cases", sum.Cases,
		"misses", sum.Misses,
		"overlaps", sum.Overlaps,
		"future", sum.Futures,
		"mismatches", len(sum.Mismatches),
	)

	if len(sum.Mismatches) == 0 {
		return
	}
	if *output != "" {
		if err := writeMismatches(*output, sum.Mismatches); err != nil {
			slog.Error("failed to write mismatches", "error", err)
		}
	}
	for _, m := range sum.Mismatches {
		slog.Warn("mismatch", "case", m.Case, "outcome", m.Outcome, "time", m.Time, "reason", m.Reason)
	}
	os.Exit(1)
}
