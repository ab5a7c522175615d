// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package colorwheel renders the paint color picker: a ring of color
// wedges around a swatch of the current color. Which wedge is hovered is
// decided by the angle between the projected and the raycasted cursor.
package colorwheel

import (
	"errors"
	"image/color"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/relabs-tech/digital_streetart/internal/raster"
)

// HoverDeadzone is the cursor separation below which no wedge is hovered.
const HoverDeadzone = 0.5

// Wheel is the color picker state and its raster.
type Wheel struct {
	colors  []color.RGBA
	res     int
	canvas  *raster.Canvas
	current int
	hover   int // -1 when nothing is hovered
	visible bool
}

// New creates a wheel of colors on a res x res raster. The first color
// is selected.
func New(colors []color.RGBA, res int) (*Wheel, error) {
	if len(colors) == 0 {
		return nil, errors.New("colorwheel: at least one color is required")
	}
	c, err := raster.NewCanvas(res, res)
	if err != nil {
		return nil, err
	}
	return &Wheel{colors: colors, res: res, canvas: c, hover: -1}, nil
}

// Canvas returns the wheel raster.
func (w *Wheel) Canvas() *raster.Canvas { return w.canvas }

// Current returns the selected color.
func (w *Wheel) Current() color.RGBA { return w.colors[w.current] }

// Hovered returns the hovered color, if any.
func (w *Wheel) Hovered() (color.RGBA, bool) {
	if w.hover < 0 {
		return color.RGBA{}, false
	}
	return w.colors[w.hover], true
}

// Show toggles the wheel. Hiding clears the raster.
func (w *Wheel) Show(show bool) {
	w.visible = show
	w.hover = -1
	w.canvas.Clear()
	if show {
		w.render()
	}
	w.canvas.Commit()
}

// Visible reports whether the wheel is shown.
func (w *Wheel) Visible() bool { return w.visible }

// Hover updates the hovered wedge from the two cursors, using their x/y
// offset. It redraws only when the hovered wedge changes.
func (w *Wheel) Hover(projected, raycasted r3.Vec) {
	if !w.visible {
		return
	}
	idx := w.wedgeAt(projected.X-raycasted.X, projected.Y-raycasted.Y)
	if idx == w.hover {
		return
	}
	w.hover = idx
	w.canvas.Clear()
	w.render()
	w.canvas.Commit()
}

// Select commits the hovered color. It reports whether the selection
// changed.
func (w *Wheel) Select() bool {
	if w.hover < 0 || w.hover == w.current {
		return false
	}
	w.current = w.hover
	if w.visible {
		w.canvas.Clear()
		w.render()
		w.canvas.Commit()
	}
	return true
}

func (w *Wheel) wedgeAt(dx, dy float64) int {
	if math.Hypot(dx, dy) < HoverDeadzone {
		return -1
	}
	width := 360 / float64(len(w.colors))
	idx := int(raster.OffsetAngle(dx, dy) / width)
	return min(idx, len(w.colors)-1)
}

func (w *Wheel) render() {
	c := w.res / 2
	raster.DrawCircle(w.canvas, w.Current(), c, c, w.res/10)

	width := 360 / float64(len(w.colors))
	for i, col := range w.colors {
		radius := w.res/2 - w.res/20
		if i == w.hover {
			radius = w.res / 2
		}
		raster.DrawSector(w.canvas, col, c, c, radius, float64(i)*width+1, width-2, w.res/3)
	}
}
