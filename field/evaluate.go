package field

import (
	"fmt"
	"math"

	"github.com/pthm-cable/phasor/kernel"
)

// Params holds the numeric session parameters that modulate the mode
// policies. Defaults live in config/defaults.yaml.
type Params struct {
	// NoiseBandwidth is the Gaussian window bandwidth, in inverse cell units.
	NoiseBandwidth float32
	// FilterBandwidth widens the effective kernel support for display
	// scaling when positive (see KernelWidth).
	FilterBandwidth float32
	// AmplitudeBandwidth drives the GAUSS and RADIAL amplitude falloffs.
	AmplitudeBandwidth float32
	// MinFrequency and MaxFrequency bound the kernel frequency band.
	MinFrequency, MaxFrequency float32
	// FrequencyBandwidth is the spectral profile width under FrequencyGauss.
	FrequencyBandwidth float32
	// MinIsotropy and MaxIsotropy shape the anisotropic window: their
	// midpoint sets the cross-carrier bandwidth ratio (1 = isotropic).
	MinIsotropy, MaxIsotropy float32
	// WindowRadius is the support radius of the flat and ramp windows.
	WindowRadius float32
	// LearningRate scales the per-kernel phase gradient step.
	LearningRate float32
	// HybridBlend scales the optimization step under OutputHybrid.
	HybridBlend float32
	// StateRate is the smoothing factor for state write-back under
	// DensityState optimization.
	StateRate float32
}

// Evaluator evaluates the kernel field for one session. It holds no mutable
// state of its own: every call is a pure function of (query point, buffer
// snapshot, configuration) except the buffer writes issued by
// OptimizeKernel under OPTIMIZE/HYBRID output.
type Evaluator struct {
	Grid   Grid
	Modes  Modes
	Params Params
}

// NewEvaluator validates the session configuration once; evaluation never
// re-checks it.
func NewEvaluator(g Grid, m Modes, p Params) (*Evaluator, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if g.Width < 1 || g.Height < 1 || g.SlotsPerCell < 1 {
		return nil, fmt.Errorf("invalid grid extent %dx%dx%d", g.Width, g.Height, g.SlotsPerCell)
	}
	if p.NoiseBandwidth <= 0 {
		return nil, fmt.Errorf("noise bandwidth must be positive, got %v", p.NoiseBandwidth)
	}
	if (m.Window == WindowIsotropic || m.Window == WindowRamp) && p.WindowRadius <= 0 {
		return nil, fmt.Errorf("window radius must be positive for %v windows", m.Window)
	}
	return &Evaluator{Grid: g, Modes: m, Params: p}, nil
}

// accum collects per-kernel terms. Accumulation is a plain sum, so the
// result is invariant to enumeration order up to float rounding.
type accum struct {
	sum    float32
	cosSum float32
	sinSum float32
	count  int
}

// Eval returns the field value at (x, y). Under AVERAGE and HYBRID output
// this is the normalized estimate; under OPTIMIZE it is the raw accumulated
// residual. Eval never writes to the buffer.
func (e *Evaluator) Eval(buf *kernel.Buffer, x, y float32) float32 {
	a := e.accumulate(buf, x, y)
	if e.Modes.Output == OutputOptimize {
		return a.sum
	}
	if e.Modes.Density == DensityComplex {
		mag := sqrtf(a.cosSum*a.cosSum + a.sinSum*a.sinSum)
		if mag < 1e-12 {
			return 0
		}
		return a.cosSum / mag
	}
	if a.count == 0 {
		return 0
	}
	return a.sum / float32(a.count)
}

// OptimizeKernel applies one phase gradient step to the kernel at the given
// slot and returns the residual observed at its position. The residual is
// the raw field sum r; with E = r^2/2 the step is
//
//	phase <- phase - step * r * dr/dphase
//
// where dr/dphase is the derivative of the kernel's own contribution at its
// own position. Under DensityState the state field is additionally moved
// toward |r| by Params.StateRate (state acts as a smoothed residual
// weight). Writes happen only under OPTIMIZE and HYBRID output; HYBRID
// scales the step by Params.HybridBlend.
//
// Callers must bound index to the buffer's slot range and ensure one task
// per kernel per pass; the evaluator does not serialize concurrent writes.
func (e *Evaluator) OptimizeKernel(buf *kernel.Buffer, index int) float32 {
	raw := buf.Raw()
	k := kernel.Decode(raw, index)
	if !k.Valid() {
		return 0
	}

	r := e.accumulate(buf, k.X, k.Y).sum

	step := e.Params.LearningRate
	switch e.Modes.Output {
	case OutputHybrid:
		step *= e.Params.HybridBlend
	case OutputAverage:
		return r // estimator-only sessions never write back
	}

	// Derivative of this kernel's own term at its own position: the window
	// peaks at 1 and the carrier argument reduces to the phase.
	a := e.amplitude(k, 0, 0, k.X, k.Y) * e.spectralWeight(k.Frequency)
	if e.Modes.Density == DensityState {
		a *= k.State
	}
	dr := -a * sinf(k.Phase)

	kernel.EncodePhase(raw, index, wrapAngle(k.Phase-step*r*dr))

	if e.Modes.Density == DensityState {
		s := k.State + e.Params.StateRate*(absf(r)-k.State)
		kernel.EncodeState(raw, index, s)
	}
	return r
}

// accumulate walks the 3x3 cell neighborhood of (x, y) and sums every
// valid kernel's contribution. Populated slots are contiguous within a
// cell, so a sentinel record ends that cell's slot range.
func (e *Evaluator) accumulate(buf *kernel.Buffer, x, y float32) accum {
	raw := buf.Raw()
	cx, cy := e.Grid.CellOf(x, y)

	var a accum
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			rx, ry, shiftX, shiftY := e.Grid.Resolve(cx+dc, cy+dr, e.Modes.Cell)
			start := buf.CellStart(rx, ry)
			for s := 0; s < e.Grid.SlotsPerCell; s++ {
				k := kernel.Decode(raw, start+s)
				if !k.Valid() {
					break
				}
				k.X += shiftX
				k.Y += shiftY
				e.contribute(k, x, y, &a)
			}
		}
	}
	return a
}

// contribute folds one kernel's windowed phasor term into the accumulator.
func (e *Evaluator) contribute(k kernel.Kernel, x, y float32, a *accum) {
	dx := x - k.X
	dy := y - k.Y

	w := e.window(k, dx, dy)
	if w == 0 {
		return
	}

	amp := e.amplitude(k, dx, dy, x, y) * e.spectralWeight(k.Frequency)

	// Carrier argument: radial distance by default, projected onto the
	// kernel's orientation when the window is anisotropic.
	var t float32
	if e.Modes.Window == WindowAnisotropic {
		t = dx*cosf(k.Angle) + dy*sinf(k.Angle)
	} else {
		t = sqrtf(dx*dx + dy*dy)
	}
	arg := 2*math.Pi*k.Frequency*t + k.Phase

	aw := amp * w
	if e.Modes.Density == DensityState {
		aw *= k.State
	}

	c := cosf(arg)
	a.sum += aw * c
	a.cosSum += aw * c
	a.sinSum += aw * sinf(arg)
	a.count++
}

// window evaluates the session's window shape. Gradients are computed but
// unused here; consumers needing them call the window functions directly.
func (e *Evaluator) window(k kernel.Kernel, dx, dy float32) float32 {
	switch e.Modes.Window {
	case WindowAnisotropic:
		iso := 0.5 * (e.Params.MinIsotropy + e.Params.MaxIsotropy)
		if iso < 0.05 {
			iso = 0.05
		}
		v, _, _ := Anisotropic(dx, dy, k.Angle, e.Params.NoiseBandwidth, e.Params.NoiseBandwidth/iso)
		return v
	case WindowIsotropic:
		v, _, _ := Flat(dx, dy, e.Params.WindowRadius)
		return v
	case WindowRamp:
		v, _, _ := Ramp(dx, dy, e.Params.WindowRadius)
		return v
	default:
		v, _, _ := Gaussian(dx, dy, e.Params.NoiseBandwidth)
		return v
	}
}

// amplitude evaluates the session's amplitude policy at one offset.
// (x, y) is the query point itself, used by the RADIAL policy.
func (e *Evaluator) amplitude(k kernel.Kernel, dx, dy, x, y float32) float32 {
	switch e.Modes.Amplitude {
	case AmplitudeGauss:
		b2 := e.Params.AmplitudeBandwidth * e.Params.AmplitudeBandwidth
		return expf(-math.Pi * b2 * (dx*dx + dy*dy))
	case AmplitudeRAngle:
		theta := atan2f(dy, dx)
		return 0.5 * (1 + cosf(theta-k.Angle))
	case AmplitudeRadial:
		// Radially symmetric envelope around the grid center, independent
		// of kernel orientation.
		ux := (x - float32(e.Grid.Width)/2) / float32(e.Grid.Width)
		uy := (y - float32(e.Grid.Height)/2) / float32(e.Grid.Height)
		b2 := e.Params.AmplitudeBandwidth * e.Params.AmplitudeBandwidth
		return expf(-math.Pi * b2 * (ux*ux + uy*uy))
	default:
		return 1
	}
}

// spectralWeight weights a kernel frequency against the session's spectral
// profile: flat under FrequencyStatic, Gaussian around the band center
// under FrequencyGauss.
func (e *Evaluator) spectralWeight(f float32) float32 {
	if e.Modes.Frequency != FrequencyGauss || e.Params.FrequencyBandwidth <= 0 {
		return 1
	}
	center := 0.5 * (e.Params.MinFrequency + e.Params.MaxFrequency)
	z := (f - center) / e.Params.FrequencyBandwidth
	return expf(-z * z)
}

// KernelWidth returns the display-space support width of one noise kernel,
// in screen pixels, for overlay scaling: the radius where the Gaussian
// window falls to 5%, converted from cell units.
func KernelWidth(widthPx, gridWidth int, noiseBandwidth, filterBandwidth float32) float32 {
	b := noiseBandwidth
	if filterBandwidth > 0 {
		b = noiseBandwidth * noiseBandwidth / sqrtf(noiseBandwidth*noiseBandwidth+filterBandwidth*filterBandwidth)
	}
	return sqrtf(-logf(0.05)/math.Pi) / b * float32(widthPx) / float32(gridWidth)
}

func logf(x float32) float32 { return float32(math.Log(float64(x))) }

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
