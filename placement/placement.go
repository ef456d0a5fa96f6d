// Package placement seeds kernel buffers before evaluation: the CPU
// counterpart of the original init pass. It populates every cell with a
// fixed number of kernels and leaves the remaining slots as sentinels, so
// the per-cell slot ranges stay contiguous for the evaluator.
package placement

import (
	"fmt"
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
	xrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/phasor/field"
	"github.com/pthm-cable/phasor/kernel"
)

// Options configure a placement pass.
type Options struct {
	// CountPerCell kernels are written to each cell; must not exceed the
	// buffer's per-cell slot capacity.
	CountPerCell int
	Seed         int64

	// Frequency band. Under GaussianFrequency, kernel frequencies are drawn
	// from a Normal centered mid-band with FrequencyBandwidth sigma and
	// clamped to the band; otherwise uniform over the band.
	MinFrequency       float64
	MaxFrequency       float64
	FrequencyBandwidth float64
	GaussianFrequency  bool

	// Orientation policy: AngleOffset plus either a coherent simplex-noise
	// field sampled at the kernel position (AngleScale > 0) or a uniform
	// draw, both spanning AngleRange.
	AngleOffset float64
	AngleRange  float64
	AngleScale  float64
}

// Fill populates buf cell by cell. Kernel state starts at 1, the neutral
// importance weight for stateful density sessions.
func Fill(buf *kernel.Buffer, grid field.Grid, opts Options) error {
	if opts.CountPerCell < 0 || opts.CountPerCell > buf.SlotsPerCell() {
		return fmt.Errorf("count per cell %d outside slot capacity %d",
			opts.CountPerCell, buf.SlotsPerCell())
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	angleField := opensimplex.New(opts.Seed)

	freqDist := distuv.Normal{
		Mu:    0.5 * (opts.MinFrequency + opts.MaxFrequency),
		Sigma: math.Max(opts.FrequencyBandwidth, 1e-6),
		Src:   xrand.NewSource(uint64(opts.Seed)),
	}

	buf.Reset()
	raw := buf.Raw()
	for cy := 0; cy < grid.Height; cy++ {
		for cx := 0; cx < grid.Width; cx++ {
			start := buf.CellStart(cx, cy)
			for s := 0; s < opts.CountPerCell; s++ {
				x := float32(cx) + rng.Float32()
				y := float32(cy) + rng.Float32()
				kernel.Encode(raw, start+s, kernel.Kernel{
					X:         x,
					Y:         y,
					Frequency: float32(sampleFrequency(opts, rng, freqDist)),
					Phase:     float32((rng.Float64()*2 - 1) * math.Pi),
					Angle:     float32(sampleAngle(opts, rng, angleField, x, y)),
					State:     1,
				})
			}
		}
	}
	return nil
}

func sampleFrequency(opts Options, rng *rand.Rand, dist distuv.Normal) float64 {
	if !opts.GaussianFrequency {
		return opts.MinFrequency + rng.Float64()*(opts.MaxFrequency-opts.MinFrequency)
	}
	f := dist.Rand()
	if f < opts.MinFrequency {
		f = opts.MinFrequency
	}
	if f > opts.MaxFrequency {
		f = opts.MaxFrequency
	}
	return f
}

func sampleAngle(opts Options, rng *rand.Rand, n opensimplex.Noise, x, y float32) float64 {
	if opts.AngleScale > 0 {
		// Eval2 is in [-1, 1]; spread it over the configured range.
		v := n.Eval2(float64(x)*opts.AngleScale, float64(y)*opts.AngleScale)
		return opts.AngleOffset + v*opts.AngleRange/2
	}
	return opts.AngleOffset + (rng.Float64()-0.5)*opts.AngleRange
}
