package field

import "math"

// float32 wrappers for the hot evaluation path. Exactness matters for the
// analytic gradients, so these call through to math rather than using
// polynomial approximations.

func expf(x float32) float32  { return float32(math.Exp(float64(x))) }
func cosf(x float32) float32  { return float32(math.Cos(float64(x))) }
func sinf(x float32) float32  { return float32(math.Sin(float64(x))) }
func sqrtf(x float32) float32 { return float32(math.Sqrt(float64(x))) }

func atan2f(y, x float32) float32 {
	return float32(math.Atan2(float64(y), float64(x)))
}

// wrapAngle wraps an angle to [-Pi, Pi].
func wrapAngle(a float32) float32 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// clampInt constrains v to the inclusive [lo, hi] range.
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
