package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for one evaluation pass.
const (
	PhasePlacement = "placement"
	PhaseRasterize = "rasterize"
	PhaseOptimize  = "optimize"
	PhaseStats     = "stats"
	PhaseUpload    = "upload"
)

// PerfSample holds timing data for a single pass.
type PerfSample struct {
	PassDuration time.Duration
	Phases       map[string]time.Duration
}

// PerfCollector tracks performance metrics over a rolling window.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	passStart     time.Time
	phaseStart    time.Time
	lastPhase     string
}

// NewPerfCollector creates a collector averaging over windowSize passes.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartPass begins timing a new pass.
func (p *PerfCollector) StartPass() {
	p.passStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase begins timing a specific phase, ending the previous one.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndPass finishes timing the current pass and records the sample.
func (p *PerfCollector) EndPass() {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	p.samples[p.writeIndex] = PerfSample{
		PassDuration: now.Sub(p.passStart),
		Phases:       p.currentPhases,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgPassDuration time.Duration
	MinPassDuration time.Duration
	MaxPassDuration time.Duration

	// Phase breakdown (average durations and percentages of pass time)
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	PassesPerSecond float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	if p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg: make(map[string]time.Duration),
			PhasePct: make(map[string]float64),
		}
	}

	var totalPass, minPass, maxPass time.Duration
	phaseSum := make(map[string]time.Duration)

	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		totalPass += s.PassDuration

		if i == 0 || s.PassDuration < minPass {
			minPass = s.PassDuration
		}
		if s.PassDuration > maxPass {
			maxPass = s.PassDuration
		}

		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	avgPass := totalPass / time.Duration(p.sampleCount)

	phaseAvg := make(map[string]time.Duration)
	phasePct := make(map[string]float64)
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avgPass > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avgPass) * 100
		}
	}

	var passesPerSec float64
	if avgPass > 0 {
		passesPerSec = float64(time.Second) / float64(avgPass)
	}

	return PerfStats{
		AvgPassDuration: avgPass,
		MinPassDuration: minPass,
		MaxPassDuration: maxPass,
		PhaseAvg:        phaseAvg,
		PhasePct:        phasePct,
		PassesPerSecond: passesPerSec,
	}
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_pass_us", s.AvgPassDuration.Microseconds(),
		"min_pass_us", s.MinPassDuration.Microseconds(),
		"max_pass_us", s.MaxPassDuration.Microseconds(),
		"passes_per_sec", int(s.PassesPerSecond),
	}
	for phase, avg := range s.PhaseAvg {
		attrs = append(attrs, "phase_"+phase+"_us", avg.Microseconds())
	}
	slog.Info("perf stats", attrs...)
}

// PerfStatsCSV is the flattened perf record written to perf.csv.
type PerfStatsCSV struct {
	Pass        int   `csv:"pass"`
	AvgPassUs   int64 `csv:"avg_pass_us"`
	MinPassUs   int64 `csv:"min_pass_us"`
	MaxPassUs   int64 `csv:"max_pass_us"`
	RasterizeUs int64 `csv:"rasterize_us"`
	OptimizeUs  int64 `csv:"optimize_us"`
	StatsUs     int64 `csv:"stats_us"`
	UploadUs    int64 `csv:"upload_us"`
}

// ToCSV flattens the stats for CSV output.
func (s PerfStats) ToCSV(pass int) PerfStatsCSV {
	return PerfStatsCSV{
		Pass:        pass,
		AvgPassUs:   s.AvgPassDuration.Microseconds(),
		MinPassUs:   s.MinPassDuration.Microseconds(),
		MaxPassUs:   s.MaxPassDuration.Microseconds(),
		RasterizeUs: s.PhaseAvg[PhaseRasterize].Microseconds(),
		OptimizeUs:  s.PhaseAvg[PhaseOptimize].Microseconds(),
		StatsUs:     s.PhaseAvg[PhaseStats].Microseconds(),
		UploadUs:    s.PhaseAvg[PhaseUpload].Microseconds(),
	}
}
