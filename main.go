package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/pthm-cable/sweep/config"
	"github.com/pthm-cable/sweep/sim"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	maxTicks := flag.Int("max-ticks", -1, "Stop after N ticks (0 = unlimited, -1 = use config)")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	logContacts := flag.Bool("log-contacts", false, "Log every contact via slog")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	ticks := cfg.Sim.MaxTicks
	if *maxTicks >= 0 {
		ticks = *maxTicks
	}

	s, err := sim.New(cfg, sim.Options{
		OutputDir:   *outputDir,
		LogStats:    *logStats,
		LogContacts: *logContacts,
	})
	if err != nil {
		slog.Error("failed to build scenario", "error", err)
		os.Exit(1)
	}

	slog.Info("starting headless run",
		"scenario", cfg.Scenario.Name,
		"shapes", s.ShapeCount(),
		"axis_flip", cfg.Derived.Flip.String(),
		"max_ticks", ticks,
		"output_dir", *outputDir,
	)

	for ticks == 0 || int(s.Tick()) < ticks {
		s.Step()
	}
	slog.Info("max ticks reached", "tick", s.Tick())

	if err := s.Close(); err != nil {
		os.Exit(1)
	}
}
