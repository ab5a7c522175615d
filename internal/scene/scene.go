// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package scene is a minimal virtual scene of textured rectangles that
// answers the painter's raycasts.
package scene

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/relabs-tech/digital_streetart/internal/geom"
	"github.com/relabs-tech/digital_streetart/internal/raster"
	"github.com/relabs-tech/digital_streetart/internal/spray"
)

// Quad is a rectangle spanned from Origin by the orthogonal edges U
// (texture u, rightwards) and V (texture v, upwards).
type Quad struct {
	Name   string
	Origin r3.Vec
	U, V   r3.Vec
	// Surface is nil for geometry that only blocks rays.
	Surface raster.Surface

	plane  geom.Plane
	uu, vv float64
}

// NewQuad validates the edges and precomputes the quad's plane.
func NewQuad(name string, origin, u, v r3.Vec, surface raster.Surface) (*Quad, error) {
	uu, vv := r3.Norm2(u), r3.Norm2(v)
	if uu == 0 || vv == 0 {
		return nil, errors.New("scene: quad edges must have length")
	}
	if math.Abs(r3.Dot(u, v)) > 1e-9*math.Sqrt(uu*vv) {
		return nil, errors.New("scene: quad edges must be orthogonal")
	}
	plane, err := geom.NewPlane(origin, r3.Cross(u, v))
	if err != nil {
		return nil, err
	}
	return &Quad{Name: name, Origin: origin, U: u, V: v, Surface: surface, plane: plane, uu: uu, vv: vv}, nil
}

// Plane returns the plane the quad lies in.
func (q *Quad) Plane() geom.Plane { return q.plane }

func (q *Quad) intersect(ray geom.Ray) (float64, spray.Hit, bool) {
	t, ok := q.plane.Intersect(ray)
	if !ok {
		return 0, spray.Hit{}, false
	}
	p := ray.At(t)
	local := r3.Sub(p, q.Origin)
	u := r3.Dot(local, q.U) / q.uu
	v := r3.Dot(local, q.V) / q.vv
	if u < 0 || u > 1 || v < 0 || v > 1 {
		return 0, spray.Hit{}, false
	}
	return t, spray.Hit{Point: p, U: u, V: v, Surface: q.Surface}, true
}

// Scene holds the quads. It is built before the loop starts and not
// modified afterwards.
type Scene struct {
	quads []*Quad
}

// New returns a scene of quads.
func New(quads ...*Quad) *Scene {
	return &Scene{quads: quads}
}

// Add appends a quad.
func (s *Scene) Add(q *Quad) { s.quads = append(s.quads, q) }

// Quads returns the quads in insertion order.
func (s *Scene) Quads() []*Quad { return s.quads }

// Raycast returns the nearest quad hit along ray.
func (s *Scene) Raycast(ray geom.Ray) (spray.Hit, bool) {
	if r3.Norm2(ray.Direction) == 0 {
		return spray.Hit{}, false
	}
	ray.Direction = r3.Unit(ray.Direction)

	best := math.Inf(1)
	var hit spray.Hit
	found := false
	for _, q := range s.quads {
		t, h, ok := q.intersect(ray)
		if ok && t < best {
			best, hit, found = t, h, true
		}
	}
	return hit, found
}

// Wall builds a paintable quad covering the rectangle between the
// bottom-left and top-right virtual anchors, pushed along +z by depth.
func Wall(bottomLeft, topRight r3.Vec, depth float64, surface raster.Surface) (*Quad, error) {
	origin := r3.Vec{X: bottomLeft.X, Y: bottomLeft.Y, Z: bottomLeft.Z + depth}
	u := r3.Vec{X: topRight.X - bottomLeft.X}
	v := r3.Vec{Y: topRight.Y - bottomLeft.Y}
	return NewQuad("wall", origin, u, v, surface)
}
