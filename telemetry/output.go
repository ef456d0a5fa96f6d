package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/phasor/config"
)

// OutputManager handles structured run output with CSV logging.
type OutputManager struct {
	dir      string
	passFile *os.File
	perfFile *os.File

	passHeaderWritten bool
	perfHeaderWritten bool
}

// NewOutputManager creates an output manager and initializes the output
// directory. Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	f, err := os.Create(filepath.Join(dir, "passes.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating passes.csv: %w", err)
	}
	om.passFile = f

	f, err = os.Create(filepath.Join(dir, "perf.csv"))
	if err != nil {
		om.passFile.Close()
		return nil, fmt.Errorf("creating perf.csv: %w", err)
	}
	om.perfFile = f

	return om, nil
}

// WriteConfig saves the session configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WritePass writes a pass stats record to passes.csv.
func (om *OutputManager) WritePass(stats PassStats) error {
	if om == nil {
		return nil
	}

	records := []PassStats{stats}

	if !om.passHeaderWritten {
		if err := gocsv.Marshal(records, om.passFile); err != nil {
			return fmt.Errorf("writing pass stats: %w", err)
		}
		om.passHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.passFile); err != nil {
			return fmt.Errorf("writing pass stats: %w", err)
		}
	}
	return nil
}

// WritePerf writes a performance record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, pass int) error {
	if om == nil {
		return nil
	}

	records := []PerfStatsCSV{stats.ToCSV(pass)}

	if !om.perfHeaderWritten {
		if err := gocsv.Marshal(records, om.perfFile); err != nil {
			return fmt.Errorf("writing perf: %w", err)
		}
		om.perfHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.perfFile); err != nil {
			return fmt.Errorf("writing perf: %w", err)
		}
	}
	return nil
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	var firstErr error
	if err := om.passFile.Close(); err != nil {
		firstErr = err
	}
	if err := om.perfFile.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
