// Package field evaluates a phasor noise field from a populated kernel
// buffer: cell addressing, windowed per-kernel contributions, and the
// output stage that reduces them or refines kernel phases in place.
package field

import "fmt"

// DensityMode selects how per-kernel terms are combined during accumulation.
type DensityMode int

const (
	DensityNoise DensityMode = iota
	DensityComplex
	DensityState
)

// AmplitudeMode selects the per-kernel amplitude policy.
type AmplitudeMode int

const (
	AmplitudeStatic AmplitudeMode = iota
	AmplitudeGauss
	AmplitudeRAngle
	AmplitudeRadial
)

// FrequencyMode selects how kernel frequencies are weighted.
type FrequencyMode int

const (
	FrequencyStatic FrequencyMode = iota
	FrequencyGauss
)

// WindowMode selects the spatial envelope shape.
type WindowMode int

const (
	WindowAnisotropic WindowMode = iota
	WindowGauss
	WindowIsotropic
	WindowRamp
)

// CellMode selects how out-of-range cell coordinates are resolved.
type CellMode int

const (
	CellClamp CellMode = iota
	CellMod
)

// OutputMode selects the reduction applied to the accumulated contributions.
type OutputMode int

const (
	OutputOptimize OutputMode = iota
	OutputAverage
	OutputHybrid
)

// Modes is the full mode configuration for one evaluation session. The six
// axes compose orthogonally; every combination is valid.
type Modes struct {
	Density   DensityMode
	Amplitude AmplitudeMode
	Frequency FrequencyMode
	Window    WindowMode
	Cell      CellMode
	Output    OutputMode
}

// Validate rejects out-of-range mode values. Called once at session setup;
// evaluation itself never re-checks.
func (m Modes) Validate() error {
	if m.Density < DensityNoise || m.Density > DensityState {
		return fmt.Errorf("invalid density mode %d", m.Density)
	}
	if m.Amplitude < AmplitudeStatic || m.Amplitude > AmplitudeRadial {
		return fmt.Errorf("invalid amplitude mode %d", m.Amplitude)
	}
	if m.Frequency < FrequencyStatic || m.Frequency > FrequencyGauss {
		return fmt.Errorf("invalid frequency mode %d", m.Frequency)
	}
	if m.Window < WindowAnisotropic || m.Window > WindowRamp {
		return fmt.Errorf("invalid window mode %d", m.Window)
	}
	if m.Cell < CellClamp || m.Cell > CellMod {
		return fmt.Errorf("invalid cell mode %d", m.Cell)
	}
	if m.Output < OutputOptimize || m.Output > OutputHybrid {
		return fmt.Errorf("invalid output mode %d", m.Output)
	}
	return nil
}

var densityNames = map[string]DensityMode{
	"noise":   DensityNoise,
	"complex": DensityComplex,
	"state":   DensityState,
}

var amplitudeNames = map[string]AmplitudeMode{
	"static": AmplitudeStatic,
	"gauss":  AmplitudeGauss,
	"rangle": AmplitudeRAngle,
	"radial": AmplitudeRadial,
}

var frequencyNames = map[string]FrequencyMode{
	"static": FrequencyStatic,
	"gauss":  FrequencyGauss,
}

var windowNames = map[string]WindowMode{
	"anisotropic": WindowAnisotropic,
	"gauss":       WindowGauss,
	"isotropic":   WindowIsotropic,
	"ramp":        WindowRamp,
}

var cellNames = map[string]CellMode{
	"clamp": CellClamp,
	"mod":   CellMod,
}

var outputNames = map[string]OutputMode{
	"optimize": OutputOptimize,
	"average":  OutputAverage,
	"hybrid":   OutputHybrid,
}

// ParseModes builds a Modes value from the lowercase names used in config
// files and CLI flags.
func ParseModes(density, amplitude, frequency, window, cell, output string) (Modes, error) {
	var m Modes
	var ok bool
	if m.Density, ok = densityNames[density]; !ok {
		return m, fmt.Errorf("unknown density mode %q", density)
	}
	if m.Amplitude, ok = amplitudeNames[amplitude]; !ok {
		return m, fmt.Errorf("unknown amplitude mode %q", amplitude)
	}
	if m.Frequency, ok = frequencyNames[frequency]; !ok {
		return m, fmt.Errorf("unknown frequency mode %q", frequency)
	}
	if m.Window, ok = windowNames[window]; !ok {
		return m, fmt.Errorf("unknown window mode %q", window)
	}
	if m.Cell, ok = cellNames[cell]; !ok {
		return m, fmt.Errorf("unknown cell mode %q", cell)
	}
	if m.Output, ok = outputNames[output]; !ok {
		return m, fmt.Errorf("unknown output mode %q", output)
	}
	return m, nil
}

func (d DensityMode) String() string {
	switch d {
	case DensityNoise:
		return "noise"
	case DensityComplex:
		return "complex"
	case DensityState:
		return "state"
	}
	return "unknown"
}

func (a AmplitudeMode) String() string {
	switch a {
	case AmplitudeStatic:
		return "static"
	case AmplitudeGauss:
		return "gauss"
	case AmplitudeRAngle:
		return "rangle"
	case AmplitudeRadial:
		return "radial"
	}
	return "unknown"
}

func (f FrequencyMode) String() string {
	switch f {
	case FrequencyStatic:
		return "static"
	case FrequencyGauss:
		return "gauss"
	}
	return "unknown"
}

func (w WindowMode) String() string {
	switch w {
	case WindowAnisotropic:
		return "anisotropic"
	case WindowGauss:
		return "gauss"
	case WindowIsotropic:
		return "isotropic"
	case WindowRamp:
		return "ramp"
	}
	return "unknown"
}

func (c CellMode) String() string {
	switch c {
	case CellClamp:
		return "clamp"
	case CellMod:
		return "mod"
	}
	return "unknown"
}

func (o OutputMode) String() string {
	switch o {
	case OutputOptimize:
		return "optimize"
	case OutputAverage:
		return "average"
	case OutputHybrid:
		return "hybrid"
	}
	return "unknown"
}
