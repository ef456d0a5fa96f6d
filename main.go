package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/pthm-cable/phasor/config"
	"github.com/pthm-cable/phasor/field"
	"github.com/pthm-cable/phasor/kernel"
	"github.com/pthm-cable/phasor/placement"
	"github.com/pthm-cable/phasor/raster"
	"github.com/pthm-cable/phasor/telemetry"
	"github.com/pthm-cable/phasor/viewer"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run optimization passes without graphics")
	passes := flag.Int("passes", 0, "Optimization passes in headless mode (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "Kernel placement seed (0 = use config)")

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

	if *seed != 0 {
		cfg.Kernels.Seed = *seed
	}
	if *passes > 0 {
		cfg.Optimize.Passes = *passes
	}

	if *headless {
		if err := runHeadless(cfg, *outputDir); err != nil {
			slog.Error("headless run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := viewer.Run(cfg); err != nil {
		slog.Error("viewer failed", "error", err)
		os.Exit(1)
	}
}

// runHeadless seeds a buffer and runs the configured optimization passes,
// logging residual trend and optionally writing CSV telemetry.
func runHeadless(cfg *config.Config, outputDir string) error {
	grid := cfg.Grid()
	eval, err := field.NewEvaluator(grid, cfg.Derived.Modes, cfg.Derived.Params)
	if err != nil {
		return err
	}

	buf := kernel.NewBuffer(grid.Width, grid.Height, grid.SlotsPerCell)
	opts := placement.Options{
		CountPerCell:       cfg.Kernels.CountPerCell,
		Seed:               cfg.Kernels.Seed,
		MinFrequency:       cfg.Params.MinFrequency,
		MaxFrequency:       cfg.Params.MaxFrequency,
		FrequencyBandwidth: cfg.Params.FrequencyBandwidth,
		GaussianFrequency:  cfg.Derived.Modes.Frequency == field.FrequencyGauss,
		AngleOffset:        cfg.Params.AngleOffset,
		AngleRange:         cfg.Params.AngleRange,
		AngleScale:         cfg.Params.AngleScale,
	}
	if err := placement.Fill(buf, grid, opts); err != nil {
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

	slog.Info("starting headless run",
		"grid_width", grid.Width,
		"grid_height", grid.Height,
		"kernels", buf.Count(),
		"passes", cfg.Optimize.Passes,
		"output", cfg.Derived.Modes.Output.String(),
	)

	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)
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
	}
	return nil
}
