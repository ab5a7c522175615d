// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package raster

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var red = color.RGBA{R: 255, A: 255}

func newTestCanvas(t *testing.T, w, h int) *Canvas {
	t.Helper()
	c, err := NewCanvas(w, h)
	require.NoError(t, err)
	return c
}

func painted(c *Canvas, x, y int) bool {
	return c.At(x, y) == red
}

func TestNewCanvasRejectsEmpty(t *testing.T) {
	_, err := NewCanvas(0, 10)
	assert.Error(t, err)
	_, err = NewCanvas(10, -1)
	assert.Error(t, err)
}

func TestDrawCircleExactCoverage(t *testing.T) {
	c := newTestCanvas(t, 40, 40)
	const cx, cy = 20, 20
	DrawCircle(c, red, cx, cy, 5)

	for x := 0; x < 40; x++ {
		for y := 0; y < 40; y++ {
			dx, dy := x-cx, y-cy
			want := dx*dx+dy*dy < 25
			assert.Equal(t, want, painted(c, x, y), "pixel (%d,%d)", x, y)
			if painted(c, x, y) {
				assert.True(t, x >= cx-5 && x <= cx+5 && y >= cy-5 && y <= cy+5)
			}
		}
	}
	assert.True(t, painted(c, cx, cy), "centre pixel is painted without a deadzone")
}

func TestDrawCircleClipsAtEdges(t *testing.T) {
	c := newTestCanvas(t, 8, 8)
	assert.NotPanics(t, func() {
		DrawCircle(c, red, 0, 0, 4)
		DrawCircle(c, red, 7, 7, 20)
		DrawCircle(c, red, -50, -50, 3)
	})
	assert.True(t, painted(c, 0, 0))
	assert.True(t, painted(c, 7, 7))
}

func TestDrawSectorQuadrant(t *testing.T) {
	c := newTestCanvas(t, 130, 130)
	const cx, cy = 65, 65
	DrawSector(c, red, cx, cy, 60, 0, 90, 0)

	cases := []struct {
		name   string
		dx, dy int
		angle  float64
		want   bool
	}{
		{"0deg", 0, 40, 0, true},
		{"45deg", -30, 30, 45, true},
		{"90deg", -40, 0, 90, true},
		{"91deg", -57, -1, 91, false},
		{"359deg", 1, 57, 359, false},
		{"180deg", 0, -40, 180, false},
		{"270deg", 40, 0, 270, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.angle, PixelAngle(tc.dx, tc.dy), 0.05)
			assert.Equal(t, tc.want, painted(c, cx+tc.dx, cy+tc.dy))
		})
	}
}

func TestDrawSectorCentreWithoutDeadzone(t *testing.T) {
	for _, start := range []float64{0, 90, 180, 270, 300} {
		c := newTestCanvas(t, 21, 21)
		DrawSector(c, red, 10, 10, 8, start, 45, 0)
		assert.True(t, painted(c, 10, 10), "sector starting at %v", start)
	}
	c := newTestCanvas(t, 21, 21)
	DrawSector(c, red, 10, 10, 8, 90, 45, 1)
	assert.False(t, painted(c, 10, 10), "deadzone hides the centre")
}

func TestDrawSectorDeadzone(t *testing.T) {
	c := newTestCanvas(t, 50, 50)
	DrawSector(c, red, 25, 25, 20, 0, FullCircle, 10)

	assert.False(t, painted(c, 25, 25), "centre")
	assert.False(t, painted(c, 25, 35), "on deadzone boundary")
	assert.True(t, painted(c, 25, 36))
	assert.True(t, painted(c, 25, 44))
	assert.False(t, painted(c, 25, 45), "on outer boundary")
}

func TestInSectorWraps(t *testing.T) {
	assert.True(t, InSector(350, 300, 90))
	assert.True(t, InSector(20, 300, 90))
	assert.False(t, InSector(40, 300, 90))
	assert.True(t, InSector(123, 0, FullCircle))
}

func TestCommitPublishesFlippedSnapshot(t *testing.T) {
	c := newTestCanvas(t, 4, 3)
	c.Set(1, 0, red)
	assert.Equal(t, uint64(0), c.Version())

	before := c.Snapshot()
	assert.Equal(t, uint8(0), before.RGBAAt(1, 2).A, "uncommitted writes are invisible")

	c.Commit()
	c.Commit()
	assert.Equal(t, uint64(1), c.Version(), "second commit had nothing to flush")

	snap := c.Snapshot()
	assert.Equal(t, red, snap.RGBAAt(1, 2), "bottom texture row is the last image row")

	c.Set(99, 99, red)
	c.Clear()
	c.Commit()
	assert.Equal(t, color.RGBA{}, c.Snapshot().RGBAAt(1, 2))
}
