// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package raster

import (
	"image/color"
	"math"
)

// FullCircle is the angular width of an unrestricted circle.
const FullCircle = 360.0

// DrawCircle paints a filled circle of the given radius centred on
// (cx, cy).
func DrawCircle(dst Surface, col color.RGBA, cx, cy, radius int) {
	DrawSector(dst, col, cx, cy, radius, 0, FullCircle, 0)
}

// DrawSector paints the part of the circle around (cx, cy) whose squared
// distance lies in (deadzone², radius²) and whose angle lies in
// [angleStart, angleStart+angularWidth]. The centre pixel has no angle:
// a zero deadzone paints it for every sector. Pixels outside the surface
// are skipped.
func DrawSector(dst Surface, col color.RGBA, cx, cy, radius int, angleStart, angularWidth float64, deadzone int) {
	if radius <= 0 {
		return
	}
	r2 := radius * radius
	dz2 := deadzone * deadzone
	full := angularWidth >= FullCircle

	x0, x1 := max(cx-radius, 0), min(cx+radius, dst.Width()-1)
	y0, y1 := max(cy-radius, 0), min(cy+radius, dst.Height()-1)

	for u := x0; u <= x1; u++ {
		for v := y0; v <= y1; v++ {
			dx, dy := u-cx, v-cy
			d2 := dx*dx + dy*dy
			if d2 >= r2 {
				continue
			}
			if deadzone > 0 && d2 <= dz2 {
				continue
			}
			if !full && d2 > 0 && !InSector(PixelAngle(dx, dy), angleStart, angularWidth) {
				continue
			}
			dst.Set(u, v, col)
		}
	}
}

// PixelAngle returns the angle in degrees, in [0, 360), of the offset
// (dx, dy) measured counter-clockwise from the +y reference direction.
// The zero offset has angle 0.
func PixelAngle(dx, dy int) float64 {
	return OffsetAngle(float64(dx), float64(dy))
}

// OffsetAngle is PixelAngle for continuous offsets.
func OffsetAngle(dx, dy float64) float64 {
	a := math.Atan2(-dx, dy) * 180 / math.Pi
	if a < 0 {
		a += 360
	}
	if a >= 360 {
		a -= 360
	}
	return a
}

// InSector reports whether angle lies in [start, start+width], wrapping
// past 360.
func InSector(angle, start, width float64) bool {
	if width >= FullCircle {
		return true
	}
	const eps = 1e-9
	if angle >= start-eps && angle <= start+width+eps {
		return true
	}
	return angle+360 >= start-eps && angle+360 <= start+width+eps
}
