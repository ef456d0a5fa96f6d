// Package telemetry collects residual and timing statistics for
// optimization runs and writes them as CSV.
package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// PassStats summarizes the residuals observed during one optimization pass.
type PassStats struct {
	Pass        int `csv:"pass"`
	KernelCount int `csv:"kernels"`

	ResidualMean float64 `csv:"residual_mean"`
	ResidualStd  float64 `csv:"residual_std"`
	AbsMean      float64 `csv:"abs_mean"`
	AbsMax       float64 `csv:"abs_max"`
	AbsP10       float64 `csv:"abs_p10"`
	AbsP50       float64 `csv:"abs_p50"`
	AbsP90       float64 `csv:"abs_p90"`
}

// ComputePassStats aggregates per-kernel residuals into a pass record.
func ComputePassStats(pass int, residuals []float32) PassStats {
	ps := PassStats{Pass: pass, KernelCount: len(residuals)}
	if len(residuals) == 0 {
		return ps
	}

	vals := make([]float64, len(residuals))
	abs := make([]float64, len(residuals))
	for i, r := range residuals {
		vals[i] = float64(r)
		a := float64(r)
		if a < 0 {
			a = -a
		}
		abs[i] = a
		if a > ps.AbsMax {
			ps.AbsMax = a
		}
	}

	ps.ResidualMean = stat.Mean(vals, nil)
	if len(vals) > 1 {
		ps.ResidualStd = stat.StdDev(vals, nil)
	}
	ps.AbsMean = stat.Mean(abs, nil)

	sort.Float64s(abs)
	ps.AbsP10 = stat.Quantile(0.10, stat.Empirical, abs, nil)
	ps.AbsP50 = stat.Quantile(0.50, stat.Empirical, abs, nil)
	ps.AbsP90 = stat.Quantile(0.90, stat.Empirical, abs, nil)
	return ps
}

// LogStats emits the pass record via slog.
func (ps PassStats) LogStats() {
	slog.Info("pass stats",
		"pass", ps.Pass,
		"kernels", ps.KernelCount,
		"residual_mean", ps.ResidualMean,
		"residual_std", ps.ResidualStd,
		"abs_mean", ps.AbsMean,
		"abs_max", ps.AbsMax,
		"abs_p50", ps.AbsP50,
	)
}
