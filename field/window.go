package field

import "math"

// Window envelopes. Every shape shares the (value, gradX, gradY) signature
// so the accumulator stays shape-agnostic. Gradients are analytic, not
// finite-differenced: downstream consumers (normal reconstruction, phase
// optimization) need exact first-order information.

// Gaussian returns exp(-pi*b^2*(dx^2+dy^2)) and its spatial gradient.
func Gaussian(dx, dy, bandwidth float32) (v, gx, gy float32) {
	b2 := bandwidth * bandwidth
	v = expf(-math.Pi * b2 * (dx*dx + dy*dy))
	s := -2 * math.Pi * b2 * v
	return v, s * dx, s * dy
}

// Anisotropic is a Gaussian with independent bandwidths along the kernel's
// oriented axes: the offset is rotated by -angle, per-axis bandwidths are
// applied, and the gradient is rotated back into world space.
func Anisotropic(dx, dy, angle, bu, bv float32) (v, gx, gy float32) {
	ca := cosf(angle)
	sa := sinf(angle)
	u := ca*dx + sa*dy
	w := -sa*dx + ca*dy

	bu2 := bu * bu
	bv2 := bv * bv
	v = expf(-math.Pi * (bu2*u*u + bv2*w*w))

	gu := -2 * math.Pi * bu2 * u * v
	gw := -2 * math.Pi * bv2 * w * v
	return v, ca*gu - sa*gw, sa*gu + ca*gw
}

// Flat is the isotropic indicator window: 1 inside the radius, 0 outside.
// The gradient is zero almost everywhere; the boundary is treated as zero.
func Flat(dx, dy, radius float32) (v, gx, gy float32) {
	if dx*dx+dy*dy <= radius*radius {
		return 1, 0, 0
	}
	return 0, 0, 0
}

// Ramp falls off linearly from 1 at the center to 0 at the cutoff radius.
// Inside the support the gradient is the constant radial slope -1/radius;
// outside (and exactly at the center, where the direction is undefined)
// it is zero.
func Ramp(dx, dy, radius float32) (v, gx, gy float32) {
	d := sqrtf(dx*dx + dy*dy)
	if d >= radius {
		return 0, 0, 0
	}
	if d == 0 {
		return 1, 0, 0
	}
	s := -1 / (radius * d)
	return 1 - d/radius, s * dx, s * dy
}
