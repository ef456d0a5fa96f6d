// Package viewer is the interactive phasor field preview: it rasterizes the
// kernel field into a texture, exposes the six mode axes as controls, and
// triggers optimization passes on demand.
package viewer

import (
	"fmt"
	"log/slog"
	"time"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/phasor/config"
	"github.com/pthm-cable/phasor/field"
	"github.com/pthm-cable/phasor/kernel"
	"github.com/pthm-cable/phasor/placement"
	"github.com/pthm-cable/phasor/raster"
	"github.com/pthm-cable/phasor/renderer"
	"github.com/pthm-cable/phasor/telemetry"
)

// Viewer holds the session state of the interactive preview.
type Viewer struct {
	cfg  *config.Config
	eval *field.Evaluator
	buf  *kernel.Buffer
	rast *raster.Rasterizer
	view *renderer.FieldView
	img  *raster.Image
	perf *telemetry.PerfCollector

	seed      int64
	pass      int
	needsEval bool
}

// Run opens the window and drives the preview loop until closed.
func Run(cfg *config.Config) error {
	screenW := int32(cfg.Viewer.ScreenWidth)
	screenH := int32(cfg.Viewer.ScreenHeight)
	previewSize := screenH - 20

	rl.InitWindow(screenW, screenH, "phasor field")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Viewer.TargetFPS))

	v := &Viewer{
		cfg:       cfg,
		rast:      raster.NewRasterizer(),
		view:      renderer.NewFieldView(),
		img:       raster.NewImage(int(previewSize), int(previewSize)),
		perf:      telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		seed:      cfg.Kernels.Seed,
		needsEval: true,
	}
	defer v.rast.Stop()
	defer v.view.Unload()

	if err := v.rebuild(); err != nil {
		return err
	}

	for !rl.WindowShouldClose() {
		if err := v.update(); err != nil {
			return err
		}
		v.draw(previewSize)
	}
	return nil
}

// rebuild recreates the evaluator and reseeds the kernel buffer from the
// current configuration.
func (v *Viewer) rebuild() error {
	grid := v.cfg.Grid()
	eval, err := field.NewEvaluator(grid, v.cfg.Derived.Modes, v.cfg.Derived.Params)
	if err != nil {
		return err
	}
	v.eval = eval
	v.buf = kernel.NewBuffer(grid.Width, grid.Height, grid.SlotsPerCell)
	v.pass = 0

	opts := placement.Options{
		CountPerCell:       v.cfg.Kernels.CountPerCell,
		Seed:               v.seed,
		MinFrequency:       v.cfg.Params.MinFrequency,
		MaxFrequency:       v.cfg.Params.MaxFrequency,
		FrequencyBandwidth: v.cfg.Params.FrequencyBandwidth,
		GaussianFrequency:  v.cfg.Derived.Modes.Frequency == field.FrequencyGauss,
		AngleOffset:        v.cfg.Params.AngleOffset,
		AngleRange:         v.cfg.Params.AngleRange,
		AngleScale:         v.cfg.Params.AngleScale,
	}
	if err := placement.Fill(v.buf, grid, opts); err != nil {
		return err
	}
	v.needsEval = true
	return nil
}

// update handles input and re-rasterizes when the session changed.
func (v *Viewer) update() error {
	if rl.IsKeyPressed(rl.KeySpace) {
		v.optimizePass()
	}
	if rl.IsKeyPressed(rl.KeyR) {
		v.seed++
		if err := v.rebuild(); err != nil {
			return err
		}
	}

	if v.needsEval {
		v.perf.StartPass()
		v.perf.StartPhase(telemetry.PhaseRasterize)
		v.rast.Rasterize(v.eval, v.buf, v.img)
		v.perf.StartPhase(telemetry.PhaseUpload)
		v.view.Update(v.img)
		v.perf.EndPass()
		v.needsEval = false
	}
	return nil
}

// optimizePass runs one phase-refinement pass over every kernel.
func (v *Viewer) optimizePass() {
	if v.cfg.Derived.Modes.Output == field.OutputAverage {
		slog.Info("output mode is average; pass skipped")
		return
	}
	v.pass++
	residuals := v.rast.OptimizePass(v.eval, v.buf)
	telemetry.ComputePassStats(v.pass, residuals).LogStats()
	v.needsEval = true
}

// draw renders the preview, kernel overlay, and control panel.
func (v *Viewer) draw(previewSize int32) {
	rl.BeginDrawing()
	rl.ClearBackground(rl.RayWhite)

	v.view.Draw(rl.Rectangle{X: 10, Y: 10, Width: float32(previewSize), Height: float32(previewSize)})
	rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)

	if v.cfg.Viewer.ShowKernels {
		v.drawKernels(previewSize)
	}

	v.drawPanel(previewSize)
	rl.EndDrawing()
}

// drawKernels overlays one marker per valid kernel, sized to the window
// support.
func (v *Viewer) drawKernels(previewSize int32) {
	grid := v.eval.Grid
	scaleX := float32(previewSize) / float32(grid.Width)
	scaleY := float32(previewSize) / float32(grid.Height)
	radius := field.KernelWidth(int(previewSize), grid.Width,
		v.eval.Params.NoiseBandwidth, v.eval.Params.FilterBandwidth)

	raw := v.buf.Raw()
	for i := 0; i < v.buf.Slots(); i++ {
		k := kernel.Decode(raw, i)
		if !k.Valid() {
			continue
		}
		px := 10 + k.X*scaleX
		py := 10 + k.Y*scaleY
		rl.DrawCircleLines(int32(px), int32(py), radius, rl.Color{R: 230, G: 120, B: 40, A: 160})
	}
}

// drawPanel renders the mode buttons and session stats.
func (v *Viewer) drawPanel(previewSize int32) {
	panelX := float32(previewSize) + 20
	panelY := float32(10)
	panelW := float32(v.cfg.Viewer.ScreenWidth) - panelX - 10

	rl.DrawText("Phasor Field", int32(panelX), int32(panelY), 20, rl.DarkGray)
	panelY += 35

	modes := &v.cfg.Derived.Modes
	changed := false

	cycle := func(label, value string) bool {
		rl.DrawText(label, int32(panelX), int32(panelY)+6, 14, rl.Gray)
		clicked := gui.Button(rl.Rectangle{X: panelX + 90, Y: panelY, Width: panelW - 90, Height: 26}, value)
		panelY += 32
		return clicked
	}

	if cycle("density", modes.Density.String()) {
		modes.Density = (modes.Density + 1) % 3
		changed = true
	}
	if cycle("amplitude", modes.Amplitude.String()) {
		modes.Amplitude = (modes.Amplitude + 1) % 4
		changed = true
	}
	if cycle("frequency", modes.Frequency.String()) {
		modes.Frequency = (modes.Frequency + 1) % 2
		changed = true
	}
	if cycle("window", modes.Window.String()) {
		modes.Window = (modes.Window + 1) % 4
		changed = true
	}
	if cycle("cell", modes.Cell.String()) {
		modes.Cell = (modes.Cell + 1) % 2
		changed = true
	}
	if cycle("output", modes.Output.String()) {
		modes.Output = (modes.Output + 1) % 3
		changed = true
	}

	panelY += 10
	if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Pass [Space]") {
		v.optimizePass()
	}
	if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reseed [R]") {
		v.seed++
		changed = true
	}
	panelY += 45

	if changed {
		if err := v.rebuild(); err != nil {
			// Mode cycling stays within the closed enum sets, so a rebuild
			// failure means inconsistent numeric params; surface it.
			slog.Error("rebuild failed", "error", err)
		}
	}

	stats := v.perf.Stats()
	rl.DrawText(fmt.Sprintf("grid %dx%d, %d kernels", v.eval.Grid.Width, v.eval.Grid.Height, v.buf.Count()),
		int32(panelX), int32(panelY), 14, rl.DarkGray)
	panelY += 20
	rl.DrawText(fmt.Sprintf("pass %d, rasterize %s", v.pass, stats.PhaseAvg[telemetry.PhaseRasterize].Round(time.Microsecond)),
		int32(panelX), int32(panelY), 14, rl.DarkGray)
}
