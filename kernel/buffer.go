package kernel

import "fmt"

// Buffer owns the flat kernel storage for a grid of cells. Records are laid
// out cell-major: cell (cx, cy) owns the contiguous slot range
// [CellStart(cx, cy), CellStart(cx, cy)+SlotsPerCell). Unpopulated slots
// hold the invalid sentinel.
//
// Load, Store and StorePhase bounds-check the slot index and are the safe
// boundary of the storage. The hot evaluation loop bypasses them via Raw
// and the trusted-index codec in kernel.go.
type Buffer struct {
	cols, rows   int
	slotsPerCell int
	raw          []float32
}

// NewBuffer allocates storage for cols*rows cells with slotsPerCell slots
// each, every slot initialized to the invalid sentinel.
func NewBuffer(cols, rows, slotsPerCell int) *Buffer {
	b := &Buffer{
		cols:         cols,
		rows:         rows,
		slotsPerCell: slotsPerCell,
		raw:          make([]float32, cols*rows*slotsPerCell*NFloats),
	}
	b.Reset()
	return b
}

// Reset overwrites every slot with the invalid sentinel.
func (b *Buffer) Reset() {
	for i := 0; i < b.Slots(); i++ {
		Encode(b.raw, i, Invalid())
	}
}

// Raw exposes the flat float32 storage for trusted-index access.
func (b *Buffer) Raw() []float32 {
	return b.raw
}

// Slots returns the total slot capacity.
func (b *Buffer) Slots() int {
	return b.cols * b.rows * b.slotsPerCell
}

// SlotsPerCell returns the slot capacity reserved per cell.
func (b *Buffer) SlotsPerCell() int {
	return b.slotsPerCell
}

// Cols returns the cell column count.
func (b *Buffer) Cols() int { return b.cols }

// Rows returns the cell row count.
func (b *Buffer) Rows() int { return b.rows }

// CellStart returns the first slot index of cell (cx, cy). The cell
// coordinate is trusted; resolve it through the grid's cell mode first.
func (b *Buffer) CellStart(cx, cy int) int {
	return (cy*b.cols + cx) * b.slotsPerCell
}

// Load reads the record at the given slot index with bounds checking.
func (b *Buffer) Load(index int) (Kernel, error) {
	if index < 0 || index >= b.Slots() {
		return Kernel{}, fmt.Errorf("kernel slot %d out of range [0, %d)", index, b.Slots())
	}
	return Decode(b.raw, index), nil
}

// Store writes a full record at the given slot index with bounds checking.
func (b *Buffer) Store(index int, k Kernel) error {
	if index < 0 || index >= b.Slots() {
		return fmt.Errorf("kernel slot %d out of range [0, %d)", index, b.Slots())
	}
	Encode(b.raw, index, k)
	return nil
}

// StorePhase writes only the phase field at the given slot index with
// bounds checking.
func (b *Buffer) StorePhase(index int, phase float32) error {
	if index < 0 || index >= b.Slots() {
		return fmt.Errorf("kernel slot %d out of range [0, %d)", index, b.Slots())
	}
	EncodePhase(b.raw, index, phase)
	return nil
}

// Count returns the number of valid records in the buffer.
func (b *Buffer) Count() int {
	n := 0
	for i := 0; i < b.Slots(); i++ {
		if Decode(b.raw, i).Valid() {
			n++
		}
	}
	return n
}
