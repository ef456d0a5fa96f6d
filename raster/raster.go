// Package raster evaluates the kernel field over a pixel lattice and runs
// optimization passes, fanning work out across a persistent worker pool.
// Evaluation tasks are independent and read-only; optimization parallelizes
// over cells so each kernel slot is written by exactly one worker per pass.
package raster

import (
	"runtime"
	"sync"

	"github.com/pthm-cable/phasor/field"
	"github.com/pthm-cable/phasor/kernel"
)

// parallelThreshold is the minimum row (or cell) count to use the worker
// pool. Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 16

// Image is a scalar field sampled on a pixel lattice, row-major.
type Image struct {
	W, H int
	Pix  []float32
}

// NewImage allocates a zeroed w x h field image.
func NewImage(w, h int) *Image {
	return &Image{W: w, H: h, Pix: make([]float32, w*h)}
}

// task is the per-range work function run by workers.
type task func(start, end int)

// job is one contiguous row (rasterize) or cell (optimize) range.
type job struct {
	start, end int
	fn         task
}

// Rasterizer owns the persistent worker pool.
type Rasterizer struct {
	numWorkers int

	workChan chan job
	doneChan chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
	mu       sync.Mutex
}

// NewRasterizer creates a pool sized to GOMAXPROCS. Workers start lazily on
// the first parallel dispatch.
func NewRasterizer() *Rasterizer {
	return &Rasterizer{numWorkers: runtime.GOMAXPROCS(0)}
}

// Rasterize fills img with the field evaluated over the grid domain, one
// sample per pixel. Blocks until the image is complete.
func (r *Rasterizer) Rasterize(e *field.Evaluator, buf *kernel.Buffer, img *Image) {
	sx := float32(e.Grid.Width) / float32(img.W)
	sy := float32(e.Grid.Height) / float32(img.H)

	r.run(img.H, func(start, end int) {
		for py := start; py < end; py++ {
			base := py * img.W
			y := (float32(py) + 0.5) * sy
			for px := 0; px < img.W; px++ {
				img.Pix[base+px] = e.Eval(buf, (float32(px)+0.5)*sx, y)
			}
		}
	})
}

// OptimizePass applies one phase step to every kernel in the buffer and
// returns the residuals observed, in slot order. Cells are chunked across
// workers, so no two workers write the same slot.
func (r *Rasterizer) OptimizePass(e *field.Evaluator, buf *kernel.Buffer) []float32 {
	cells := buf.Cols() * buf.Rows()
	spc := buf.SlotsPerCell()
	raw := buf.Raw()

	perSlot := make([]float32, buf.Slots())
	r.run(cells, func(start, end int) {
		for c := start; c < end; c++ {
			base := c * spc
			for s := 0; s < spc; s++ {
				if !kernel.Decode(raw, base+s).Valid() {
					break
				}
				perSlot[base+s] = e.OptimizeKernel(buf, base+s)
			}
		}
	})

	residuals := make([]float32, 0, cells)
	for i := 0; i < buf.Slots(); i++ {
		if kernel.Decode(raw, i).Valid() {
			residuals = append(residuals, perSlot[i])
		}
	}
	return residuals
}

// run splits [0, n) into chunks and executes fn over them, in-line when n
// is small and via the pool otherwise.
func (r *Rasterizer) run(n int, fn task) {
	if n == 0 {
		return
	}
	if n < parallelThreshold || r.numWorkers < 2 {
		fn(0, n)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.startWorkers()

	chunk := (n + r.numWorkers - 1) / r.numWorkers
	sent := 0
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		r.workChan <- job{start: start, end: end, fn: fn}
		sent++
	}
	for i := 0; i < sent; i++ {
		<-r.doneChan
	}
}

// startWorkers launches persistent worker goroutines.
func (r *Rasterizer) startWorkers() {
	if r.running {
		return
	}

	r.workChan = make(chan job, r.numWorkers)
	r.doneChan = make(chan struct{}, r.numWorkers)
	r.stopChan = make(chan struct{})
	r.running = true

	for i := 0; i < r.numWorkers; i++ {
		r.wg.Add(1)
		go r.worker()
	}
}

// Stop signals all workers to exit and waits for them.
func (r *Rasterizer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return
	}

	close(r.stopChan)
	r.wg.Wait()
	close(r.workChan)
	close(r.doneChan)
	r.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (r *Rasterizer) worker() {
	defer r.wg.Done()

	for {
		select {
		case <-r.stopChan:
			return
		case j, ok := <-r.workChan:
			if !ok {
				return
			}
			j.fn(j.start, j.end)
			r.doneChan <- struct{}{}
		}
	}
}
