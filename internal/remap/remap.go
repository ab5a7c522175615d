// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package remap converts tracked physical positions into the virtual
// canvas frame using two calibrated reference corners.
package remap

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/relabs-tech/digital_streetart/internal/geom"
)

// ErrDegenerateSpan is returned when a reference frame has two corners
// sharing a coordinate on a mapped axis.
var ErrDegenerateSpan = errors.New("remap: reference corners share a coordinate")

// Axes selects how many axes are normalized.
type Axes int

const (
	// Planar remaps x and y and holds z at the bottom-left virtual anchor.
	Planar Axes = 2
	// Spatial remaps x, y and z independently.
	Spatial Axes = 3
)

// ReferenceFrame pairs the physical calibration corners with their
// virtual anchors.
type ReferenceFrame struct {
	BottomLeftPhysical r3.Vec `json:"bottom_left_physical"`
	TopRightPhysical   r3.Vec `json:"top_right_physical"`
	BottomLeftVirtual  r3.Vec `json:"bottom_left_virtual"`
	TopRightVirtual    r3.Vec `json:"top_right_virtual"`
}

// Validate checks that every mapped physical axis has a usable span.
func (f ReferenceFrame) Validate(axes Axes) error {
	return CheckSpan(f.BottomLeftPhysical, f.TopRightPhysical, axes)
}

// CheckSpan reports which mapped axis, if any, collapses between a and b.
func CheckSpan(a, b r3.Vec, axes Axes) error {
	if !geom.SpanOK(a.X, b.X) {
		return fmt.Errorf("%w: x (%.4f)", ErrDegenerateSpan, a.X)
	}
	if !geom.SpanOK(a.Y, b.Y) {
		return fmt.Errorf("%w: y (%.4f)", ErrDegenerateSpan, a.Y)
	}
	if axes == Spatial && !geom.SpanOK(a.Z, b.Z) {
		return fmt.Errorf("%w: z (%.4f)", ErrDegenerateSpan, a.Z)
	}
	return nil
}

// Remapper maps physical positions into virtual space. It only reads its
// frame; the calibration controller replaces the frame through SetFrame.
type Remapper struct {
	axes  Axes
	frame ReferenceFrame
}

// New returns a remapper over frame. The frame must pass Validate.
func New(frame ReferenceFrame, axes Axes) (*Remapper, error) {
	if axes != Planar && axes != Spatial {
		return nil, fmt.Errorf("remap: unsupported axis count %d", axes)
	}
	if err := frame.Validate(axes); err != nil {
		return nil, err
	}
	return &Remapper{axes: axes, frame: frame}, nil
}

// Axes returns the number of remapped axes.
func (r *Remapper) Axes() Axes { return r.axes }

// Frame returns the active reference frame.
func (r *Remapper) Frame() ReferenceFrame { return r.frame }

// SetFrame swaps in a new reference frame after validating it.
func (r *Remapper) SetFrame(frame ReferenceFrame) error {
	if err := frame.Validate(r.axes); err != nil {
		return err
	}
	r.frame = frame
	return nil
}

// SetPhysicalCorners replaces only the physical corners.
func (r *Remapper) SetPhysicalCorners(bottomLeft, topRight r3.Vec) error {
	f := r.frame
	f.BottomLeftPhysical = bottomLeft
	f.TopRightPhysical = topRight
	return r.SetFrame(f)
}

// Remap normalizes each axis against the physical corners and maps the
// result onto the virtual anchors. Positions outside the corners
// extrapolate.
func (r *Remapper) Remap(p r3.Vec) r3.Vec {
	f := r.frame
	out := r3.Vec{
		X: axis(f.BottomLeftPhysical.X, f.TopRightPhysical.X, f.BottomLeftVirtual.X, f.TopRightVirtual.X, p.X),
		Y: axis(f.BottomLeftPhysical.Y, f.TopRightPhysical.Y, f.BottomLeftVirtual.Y, f.TopRightVirtual.Y, p.Y),
		Z: f.BottomLeftVirtual.Z,
	}
	if r.axes == Spatial {
		out.Z = axis(f.BottomLeftPhysical.Z, f.TopRightPhysical.Z, f.BottomLeftVirtual.Z, f.TopRightVirtual.Z, p.Z)
	}
	return out
}

func axis(physLo, physHi, virtLo, virtHi, v float64) float64 {
	return geom.Lerp(virtLo, virtHi, geom.InverseLerp(physLo, physHi, v))
}
