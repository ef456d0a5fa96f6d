// Package kernel defines the packed oscillator record format and the flat
// buffer that stores one record per slot.
package kernel

// NFloats is the number of float32 slots one kernel record occupies.
const NFloats = 6

// Field offsets within a record. The order is part of the external buffer
// contract and must never change.
const (
	fieldX = iota
	fieldY
	fieldFrequency
	fieldPhase
	fieldAngle
	fieldState
)

// Sentinel position marking an empty slot. A record at this position with
// all other fields zero is skipped by every consumer.
const (
	SentinelX float32 = -10
	SentinelY float32 = -10
)

// Kernel is one localized oscillator contributing a windowed sinusoid to
// the field.
type Kernel struct {
	X, Y      float32 // position in grid cell units
	Frequency float32 // oscillation frequency magnitude
	Phase     float32 // phase offset, radians
	Angle     float32 // orientation, radians
	State     float32 // auxiliary scalar, meaning depends on density mode
}

// Invalid returns the sentinel record that marks an empty slot.
func Invalid() Kernel {
	return Kernel{X: SentinelX, Y: SentinelY}
}

// Valid reports whether k occupies a real slot.
func (k Kernel) Valid() bool {
	return k.X != SentinelX || k.Y != SentinelY
}

// Decode reads the record at the given slot index. The index is trusted:
// callers must bound it to the buffer's slot range before calling.
func Decode(raw []float32, index int) Kernel {
	base := index * NFloats
	return Kernel{
		X:         raw[base+fieldX],
		Y:         raw[base+fieldY],
		Frequency: raw[base+fieldFrequency],
		Phase:     raw[base+fieldPhase],
		Angle:     raw[base+fieldAngle],
		State:     raw[base+fieldState],
	}
}

// Encode writes a full record at the given slot index. The index is trusted.
func Encode(raw []float32, index int, k Kernel) {
	base := index * NFloats
	raw[base+fieldX] = k.X
	raw[base+fieldY] = k.Y
	raw[base+fieldFrequency] = k.Frequency
	raw[base+fieldPhase] = k.Phase
	raw[base+fieldAngle] = k.Angle
	raw[base+fieldState] = k.State
}

// EncodePhase writes only the phase field of the record at the given slot
// index, leaving every other field untouched. The index is trusted.
func EncodePhase(raw []float32, index int, phase float32) {
	raw[index*NFloats+fieldPhase] = phase
}

// EncodeState writes only the state field of the record at the given slot
// index. The index is trusted.
func EncodeState(raw []float32, index int, state float32) {
	raw[index*NFloats+fieldState] = state
}
