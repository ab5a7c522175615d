// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package geom

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrZeroNormal is returned when a plane normal has no length.
	ErrZeroNormal = errors.New("geom: plane normal has zero length")
	// ErrCollinear is returned when three plane points do not span a plane.
	ErrCollinear = errors.New("geom: plane points are collinear")
)

// Plane is an infinite plane given by a unit normal and one point on it.
// Planes are values and are replaced wholesale on recalibration.
type Plane struct {
	Normal r3.Vec `json:"normal"`
	Point  r3.Vec `json:"point"`
}

// Ray is a half line starting at Origin.
type Ray struct {
	Origin    r3.Vec
	Direction r3.Vec
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) r3.Vec {
	return r3.Add(r.Origin, r3.Scale(t, r.Direction))
}

// NewPlane builds a plane through point with the given normal.
func NewPlane(point, normal r3.Vec) (Plane, error) {
	if r3.Norm(normal) < 1e-12 {
		return Plane{}, ErrZeroNormal
	}
	return Plane{Normal: r3.Unit(normal), Point: point}, nil
}

// PlaneFromPoints builds the plane through p1, p2 and p3 with normal
// normalize((p2-p1) x (p3-p1)).
func PlaneFromPoints(p1, p2, p3 r3.Vec) (Plane, error) {
	n := r3.Cross(r3.Sub(p2, p1), r3.Sub(p3, p1))
	if r3.Norm(n) < 1e-12 {
		return Plane{}, ErrCollinear
	}
	return Plane{Normal: r3.Unit(n), Point: p1}, nil
}

// SignedDistance is positive on the side the normal points to.
func (p Plane) SignedDistance(v r3.Vec) float64 {
	return r3.Dot(p.Normal, r3.Sub(v, p.Point))
}

// Project returns the orthogonal projection of v onto the plane.
func (p Plane) Project(v r3.Vec) r3.Vec {
	return r3.Sub(v, r3.Scale(p.SignedDistance(v), p.Normal))
}

// Intersect returns the distance along ray at which it crosses the plane.
// Rays parallel to the plane or pointing away from it report false.
func (p Plane) Intersect(ray Ray) (float64, bool) {
	denom := r3.Dot(p.Normal, ray.Direction)
	if math.Abs(denom) < 1e-12 {
		return 0, false
	}
	t := r3.Dot(p.Normal, r3.Sub(p.Point, ray.Origin)) / denom
	if t < 0 {
		return 0, false
	}
	return t, true
}
