// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package geom

// Lerp interpolates between a and b. t is not clamped, values outside
// [0,1] extrapolate.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// InverseLerp returns t such that Lerp(a, b, t) == v. It is unclamped.
// When a == b the result is undefined; 0 is returned and callers are
// expected to have rejected such spans beforehand (see SpanOK).
func InverseLerp(a, b, v float64) float64 {
	if a == b {
		return 0
	}
	return (v - a) / (b - a)
}

// Remap linearly maps v from [inMin, inMax] onto [outMin, outMax].
func Remap(v, inMin, inMax, outMin, outMax float64) float64 {
	return Lerp(outMin, outMax, InverseLerp(inMin, inMax, v))
}

// SpanEpsilon is the smallest axis span treated as non-degenerate.
const SpanEpsilon = 1e-6

// SpanOK reports whether [a, b] is wide enough to be inverted.
func SpanOK(a, b float64) bool {
	d := b - a
	if d < 0 {
		d = -d
	}
	return d > SpanEpsilon
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampInt limits v to [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
