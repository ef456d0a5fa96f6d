package raster

import (
	"math"
	"testing"

	"github.com/pthm-cable/phasor/field"
	"github.com/pthm-cable/phasor/kernel"
	"github.com/pthm-cable/phasor/placement"
)

func testEvaluator(t *testing.T, g field.Grid) *field.Evaluator {
	t.Helper()
	e, err := field.NewEvaluator(g, field.Modes{
		Window: field.WindowGauss,
		Cell:   field.CellMod,
		Output: field.OutputAverage,
	}, field.Params{
		NoiseBandwidth:     1.692569,
		AmplitudeBandwidth: 1,
		MinFrequency:       2,
		MaxFrequency:       4,
		MinIsotropy:        0,
		MaxIsotropy:        1,
		WindowRadius:       0.75,
		LearningRate:       0.05,
		HybridBlend:        0.5,
		StateRate:          0.1,
	})
	if err != nil {
		t.Fatalf("NewEvaluator failed: %v", err)
	}
	return e
}

func fillBuffer(t *testing.T, g field.Grid) *kernel.Buffer {
	t.Helper()
	buf := kernel.NewBuffer(g.Width, g.Height, g.SlotsPerCell)
	err := placement.Fill(buf, g, placement.Options{
		CountPerCell: 3,
		Seed:         171,
		MinFrequency: 2,
		MaxFrequency: 4,
		AngleRange:   2 * math.Pi,
	})
	if err != nil {
		t.Fatalf("Fill failed: %v", err)
	}
	return buf
}

func TestRasterizeMatchesSerialEval(t *testing.T) {
	g := field.Grid{Width: 4, Height: 4, SlotsPerCell: 4}
	e := testEvaluator(t, g)
	buf := fillBuffer(t, g)

	r := NewRasterizer()
	defer r.Stop()

	// 32 rows forces the pool path.
	img := NewImage(32, 32)
	r.Rasterize(e, buf, img)

	sx := float32(g.Width) / float32(img.W)
	sy := float32(g.Height) / float32(img.H)
	for py := 0; py < img.H; py++ {
		for px := 0; px < img.W; px++ {
			want := e.Eval(buf, (float32(px)+0.5)*sx, (float32(py)+0.5)*sy)
			if got := img.Pix[py*img.W+px]; got != want {
				t.Fatalf("pixel (%d, %d) = %v, want %v", px, py, got, want)
			}
		}
	}
}

func TestRasterizeSmallImageInline(t *testing.T) {
	g := field.Grid{Width: 2, Height: 2, SlotsPerCell: 4}
	e := testEvaluator(t, g)
	buf := fillBuffer(t, g)

	r := NewRasterizer()
	defer r.Stop()

	img := NewImage(8, 8)
	r.Rasterize(e, buf, img)

	nonzero := 0
	for _, v := range img.Pix {
		if v != 0 {
			nonzero++
		}
	}
	if nonzero == 0 {
		t.Error("populated buffer rasterized to an all-zero image")
	}
}

func TestOptimizePassResidualPerKernel(t *testing.T) {
	g := field.Grid{Width: 5, Height: 5, SlotsPerCell: 4}
	e := testEvaluator(t, g)
	buf := fillBuffer(t, g)

	r := NewRasterizer()
	defer r.Stop()

	residuals := r.OptimizePass(e, buf)
	if len(residuals) != buf.Count() {
		t.Errorf("got %d residuals, want one per kernel (%d)", len(residuals), buf.Count())
	}
}

func TestOptimizePassSkipsEmptyBuffer(t *testing.T) {
	g := field.Grid{Width: 3, Height: 3, SlotsPerCell: 4}
	e := testEvaluator(t, g)
	buf := kernel.NewBuffer(g.Width, g.Height, g.SlotsPerCell)

	r := NewRasterizer()
	defer r.Stop()

	if got := r.OptimizePass(e, buf); len(got) != 0 {
		t.Errorf("empty buffer produced %d residuals", len(got))
	}
}

func TestStopIsIdempotent(t *testing.T) {
	r := NewRasterizer()
	r.Stop()
	r.Stop()

	g := field.Grid{Width: 4, Height: 4, SlotsPerCell: 4}
	e := testEvaluator(t, g)
	buf := fillBuffer(t, g)

	img := NewImage(32, 32)
	r.Rasterize(e, buf, img)
	r.Stop()
}
