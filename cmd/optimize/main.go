// Package main runs phase-optimization passes over a seeded kernel buffer
// until the pass budget is spent or the residual trend flattens, writing
// per-pass telemetry to CSV.
package main

import (
	"flag"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/pthm-cable/phasor/config"
	"github.com/pthm-cable/phasor/field"
	"github.com/pthm-cable/phasor/kernel"
	"github.com/pthm-cable/phasor/placement"
	"github.com/pthm-cable/phasor/raster"
	"github.com/pthm-cable/phasor/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	passes := flag.Int("passes", 0, "Number of optimization passes (0 = use config)")
	seed := flag.Int64("seed", 0, "Kernel placement seed (0 = use config)")
	outputDir := flag.String("output", "", "Output directory for results")
	tolerance := flag.Float64("tolerance", 0, "Stop when the mean |residual| improvement per pass drops below this (0 = run all passes)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if *outputDir == "" {
		slog.Error("--output is required")
		os.Exit(1)
	}

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *passes > 0 {
		cfg.Optimize.Passes = *passes
	}
	if *seed != 0 {
		cfg.Kernels.Seed = *seed
	}
	if cfg.Derived.Modes.Output == field.OutputAverage {
		// An estimator-only session never writes back; force the refinement
		// path so passes have an effect.
		cfg.Derived.Modes.Output = field.OutputOptimize
	}

	if err := run(cfg, *outputDir, *tolerance); err != nil {
		slog.Error("optimization run failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, outputDir string, tolerance float64) error {
	grid := cfg.Grid()
	eval, err := field.NewEvaluator(grid, cfg.Derived.Modes, cfg.Derived.Params)
	if err != nil {
		return err
	}

	buf := kernel.NewBuffer(grid.Width, grid.Height, grid.SlotsPerCell)
	if err := placement.Fill(buf, grid, placement.Options{
		CountPerCell:       cfg.Kernels.CountPerCell,
		Seed:               cfg.Kernels.Seed,
		MinFrequency:       cfg.Params.MinFrequency,
		MaxFrequency:       cfg.Params.MaxFrequency,
		FrequencyBandwidth: cfg.Params.FrequencyBandwidth,
		GaussianFrequency:  cfg.Derived.Modes.Frequency == field.FrequencyGauss,
		AngleOffset:        cfg.Params.AngleOffset,
		AngleRange:         cfg.Params.AngleRange,
		AngleScale:         cfg.Params.AngleScale,
	}); err != nil {
		return err
	}

	out, err := telemetry.NewOutputManager(outputDir)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := out.WriteConfig(cfg); err != nil {
		return err
	}

	rast := raster.NewRasterizer()
	defer rast.Stop()
	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)

	slog.Info("starting optimization",
		"grid_width", grid.Width,
		"grid_height", grid.Height,
		"kernels", buf.Count(),
		"passes", cfg.Optimize.Passes,
		"output", cfg.Derived.Modes.Output.String(),
	)

	start := time.Now()
	prevAbsMean := math.Inf(1)
	for pass := 1; pass <= cfg.Optimize.Passes; pass++ {
		perf.StartPass()
		perf.StartPhase(telemetry.PhaseOptimize)
		residuals := rast.OptimizePass(eval, buf)

		perf.StartPhase(telemetry.PhaseStats)
		stats := telemetry.ComputePassStats(pass, residuals)
		perf.EndPass()

		stats.LogStats()
		if err := out.WritePass(stats); err != nil {
			return err
		}
		if err := out.WritePerf(perf.Stats(), pass); err != nil {
			return err
		}

		if tolerance > 0 && prevAbsMean-stats.AbsMean < tolerance {
			slog.Info("residual trend flattened", "pass", pass, "abs_mean", stats.AbsMean)
			break
		}
		prevAbsMean = stats.AbsMean
	}

	slog.Info("optimization finished", "elapsed", time.Since(start).Round(time.Millisecond).String())
	return nil
}
