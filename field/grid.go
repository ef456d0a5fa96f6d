package field

// Grid describes the cell partition of the domain. Cells are unit-sized in
// kernel coordinate space: a kernel at (x, y) belongs to cell
// (floor(x), floor(y)), and the addressable domain is [0, Width) x
// [0, Height). SlotsPerCell is the slot capacity the kernel buffer reserves
// per cell (the third extent component of the grid descriptor).
//
// The grid is not persisted anywhere; cell membership is recomputed from
// kernel position on demand.
type Grid struct {
	Width, Height int
	SlotsPerCell  int
}

// CellOf returns the cell owning the given point. Points outside the domain
// resolve to out-of-range cells; Resolve applies the boundary policy.
func (g Grid) CellOf(x, y float32) (cx, cy int) {
	cx = floorInt(x)
	cy = floorInt(y)
	return cx, cy
}

// Resolve maps a possibly out-of-range cell coordinate to a real cell under
// the given cell mode. shiftX/shiftY are the wrap vector to add to kernel
// positions read from the resolved cell so that they appear on the query
// point's side of the boundary; both are zero under CLAMP.
func (g Grid) Resolve(cx, cy int, mode CellMode) (rx, ry int, shiftX, shiftY float32) {
	if mode == CellClamp {
		return clampInt(cx, 0, g.Width-1), clampInt(cy, 0, g.Height-1), 0, 0
	}
	rx = modInt(cx, g.Width)
	ry = modInt(cy, g.Height)
	return rx, ry, float32(cx - rx), float32(cy - ry)
}

// floorInt is floor for the small coordinate range cells live in.
func floorInt(v float32) int {
	i := int(v)
	if v < 0 && float32(i) != v {
		i--
	}
	return i
}

// modInt reduces v modulo n into [0, n).
func modInt(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}
