// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package geom

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Canonical device axes. A device with identity orientation points along
// Forward with Up as its top.
var (
	Forward = r3.Vec{X: 0, Y: 0, Z: 1}
	Up      = r3.Vec{X: 0, Y: 1, Z: 0}
	Right   = r3.Vec{X: 1, Y: 0, Z: 0}
)

// Identity is the neutral rotation.
var Identity = quat.Number{Real: 1}

// Normalize scales q to unit length. A zero quaternion becomes Identity.
func Normalize(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n < 1e-12 || math.IsNaN(n) {
		return Identity
	}
	return quat.Scale(1/n, q)
}

// Inverse returns the inverse of a unit quaternion.
func Inverse(q quat.Number) quat.Number {
	return quat.Conj(q)
}

// Rotate applies unit quaternion q to v.
func Rotate(q quat.Number, v r3.Vec) r3.Vec {
	p := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	r := quat.Mul(quat.Mul(q, p), quat.Conj(q))
	return r3.Vec{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}

// ForwardOf returns the world direction a device with orientation q points at.
func ForwardOf(q quat.Number) r3.Vec {
	return Rotate(q, Forward)
}

// AxisAngle returns the rotation of rad radians about axis.
func AxisAngle(axis r3.Vec, rad float64) quat.Number {
	a := r3.Unit(axis)
	s, c := math.Sincos(rad / 2)
	return quat.Number{Real: c, Imag: a.X * s, Jmag: a.Y * s, Kmag: a.Z * s}
}

// Euler composes rotations about the local X, Y and Z axes, in degrees.
func Euler(xDeg, yDeg, zDeg float64) quat.Number {
	qx := AxisAngle(Right, Radians(xDeg))
	qy := AxisAngle(Up, Radians(yDeg))
	qz := AxisAngle(Forward, Radians(zDeg))
	return quat.Mul(quat.Mul(qy, qx), qz)
}

// LookRotation returns the rotation that turns Forward onto forward while
// keeping the device top as close to up as possible.
func LookRotation(forward, up r3.Vec) quat.Number {
	z := r3.Unit(forward)
	x := r3.Cross(up, z)
	if r3.Norm(x) < 1e-9 {
		// forward is parallel to up
		x = r3.Cross(Right, z)
		if r3.Norm(x) < 1e-9 {
			x = r3.Cross(Forward, z)
		}
	}
	x = r3.Unit(x)
	y := r3.Cross(z, x)
	return fromBasis(x, y, z)
}

// fromBasis converts the rotation matrix with columns x, y, z.
func fromBasis(x, y, z r3.Vec) quat.Number {
	m00, m01, m02 := x.X, y.X, z.X
	m10, m11, m12 := x.Y, y.Y, z.Y
	m20, m21, m22 := x.Z, y.Z, z.Z

	var q quat.Number
	switch tr := m00 + m11 + m22; {
	case tr > 0:
		s := math.Sqrt(tr+1) * 2
		q = quat.Number{Real: s / 4, Imag: (m21 - m12) / s, Jmag: (m02 - m20) / s, Kmag: (m10 - m01) / s}
	case m00 > m11 && m00 > m22:
		s := math.Sqrt(1+m00-m11-m22) * 2
		q = quat.Number{Real: (m21 - m12) / s, Imag: s / 4, Jmag: (m01 + m10) / s, Kmag: (m02 + m20) / s}
	case m11 > m22:
		s := math.Sqrt(1+m11-m00-m22) * 2
		q = quat.Number{Real: (m02 - m20) / s, Imag: (m01 + m10) / s, Jmag: s / 4, Kmag: (m12 + m21) / s}
	default:
		s := math.Sqrt(1+m22-m00-m11) * 2
		q = quat.Number{Real: (m10 - m01) / s, Imag: (m02 + m20) / s, Jmag: (m12 + m21) / s, Kmag: s / 4}
	}
	return Normalize(q)
}

// Dot is the 4D dot product of two quaternions.
func Dot(a, b quat.Number) float64 {
	return a.Real*b.Real + a.Imag*b.Imag + a.Jmag*b.Jmag + a.Kmag*b.Kmag
}

// Slerp interpolates along the shortest arc from a to b.
func Slerp(a, b quat.Number, t float64) quat.Number {
	d := Dot(a, b)
	if d < 0 {
		b = quat.Scale(-1, b)
		d = -d
	}
	if d > 0.9995 {
		return Normalize(quat.Add(a, quat.Scale(t, quat.Sub(b, a))))
	}
	theta := math.Acos(d)
	sin := math.Sin(theta)
	wa := math.Sin((1-t)*theta) / sin
	wb := math.Sin(t*theta) / sin
	return quat.Add(quat.Scale(wa, a), quat.Scale(wb, b))
}

// AngleBetween returns the angle between a and b in degrees.
func AngleBetween(a, b r3.Vec) float64 {
	na, nb := r3.Norm(a), r3.Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	c := Clamp(r3.Dot(a, b)/(na*nb), -1, 1)
	return Degrees(math.Acos(c))
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 { return deg * math.Pi / 180 }

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 { return rad * 180 / math.Pi }
