package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollectorBasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	pc.StartPass()
	pc.StartPhase(PhaseRasterize)
	time.Sleep(2 * time.Millisecond)
	pc.StartPhase(PhaseOptimize)
	time.Sleep(1 * time.Millisecond)
	pc.EndPass()

	stats := pc.Stats()
	if stats.AvgPassDuration < 3*time.Millisecond {
		t.Errorf("AvgPassDuration = %v, want >= 3ms", stats.AvgPassDuration)
	}
	if stats.PhaseAvg[PhaseRasterize] < 2*time.Millisecond {
		t.Errorf("rasterize avg = %v, want >= 2ms", stats.PhaseAvg[PhaseRasterize])
	}
	if stats.PhaseAvg[PhaseOptimize] < 1*time.Millisecond {
		t.Errorf("optimize avg = %v, want >= 1ms", stats.PhaseAvg[PhaseOptimize])
	}
	if stats.PassesPerSecond <= 0 {
		t.Errorf("PassesPerSecond = %v, want > 0", stats.PassesPerSecond)
	}
}

func TestPerfCollectorEmptyStats(t *testing.T) {
	pc := NewPerfCollector(5)

	stats := pc.Stats()
	if stats.AvgPassDuration != 0 || stats.PassesPerSecond != 0 {
		t.Errorf("empty collector stats = %+v", stats)
	}
	if stats.PhaseAvg == nil || stats.PhasePct == nil {
		t.Error("empty collector should still return initialized maps")
	}
}

func TestPerfCollectorRollingWindow(t *testing.T) {
	pc := NewPerfCollector(3)

	for i := 0; i < 5; i++ {
		pc.StartPass()
		pc.StartPhase(PhaseOptimize)
		pc.EndPass()
	}

	if pc.sampleCount != 3 {
		t.Errorf("sampleCount = %d, want window size 3", pc.sampleCount)
	}
}

func TestPerfCollectorPhasePercentages(t *testing.T) {
	pc := NewPerfCollector(4)

	pc.StartPass()
	pc.StartPhase(PhaseRasterize)
	time.Sleep(2 * time.Millisecond)
	pc.EndPass()

	stats := pc.Stats()
	pct := stats.PhasePct[PhaseRasterize]
	if pct <= 0 || pct > 100.5 {
		t.Errorf("rasterize pct = %v, want in (0, 100]", pct)
	}
}

func TestPerfStatsToCSV(t *testing.T) {
	pc := NewPerfCollector(4)

	pc.StartPass()
	pc.StartPhase(PhaseOptimize)
	time.Sleep(time.Millisecond)
	pc.EndPass()

	row := pc.Stats().ToCSV(12)
	if row.Pass != 12 {
		t.Errorf("Pass = %d, want 12", row.Pass)
	}
	if row.OptimizeUs < 1000 {
		t.Errorf("OptimizeUs = %d, want >= 1000", row.OptimizeUs)
	}
	if row.AvgPassUs < row.OptimizeUs {
		t.Errorf("AvgPassUs %d below its optimize phase %d", row.AvgPassUs, row.OptimizeUs)
	}
}
