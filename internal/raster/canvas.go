// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package raster

import (
	"fmt"
	"image"
	"image/color"
	"sync"
)

// Surface is a paintable pixel raster. Coordinates follow the texture
// convention: (0,0) is the bottom-left pixel and y grows upwards.
type Surface interface {
	Width() int
	Height() int
	At(x, y int) color.RGBA
	Set(x, y int, c color.RGBA)
	Commit()
}

// Canvas is a fixed-size Surface. Writes land in a back buffer owned by
// the single painting goroutine; Commit publishes them to the front
// buffer that Snapshot readers see.
type Canvas struct {
	w, h  int
	back  []color.RGBA
	dirty bool

	mu      sync.RWMutex
	front   *image.RGBA
	version uint64
}

// NewCanvas allocates a transparent canvas. It is never resized.
func NewCanvas(width, height int) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("raster: invalid canvas size %dx%d", width, height)
	}
	return &Canvas{
		w:     width,
		h:     height,
		back:  make([]color.RGBA, width*height),
		front: image.NewRGBA(image.Rect(0, 0, width, height)),
	}, nil
}

func (c *Canvas) Width() int  { return c.w }
func (c *Canvas) Height() int { return c.h }

func (c *Canvas) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < c.w && y < c.h
}

// At returns the pending (uncommitted) pixel value. Out of range reads
// return the zero color.
func (c *Canvas) At(x, y int) color.RGBA {
	if !c.inside(x, y) {
		return color.RGBA{}
	}
	return c.back[y*c.w+x]
}

// Set writes one pixel. Out of range writes are dropped.
func (c *Canvas) Set(x, y int, col color.RGBA) {
	if !c.inside(x, y) {
		return
	}
	c.back[y*c.w+x] = col
	c.dirty = true
}

// Fill sets every pixel to col.
func (c *Canvas) Fill(col color.RGBA) {
	for i := range c.back {
		c.back[i] = col
	}
	c.dirty = true
}

// Clear resets the canvas to transparent.
func (c *Canvas) Clear() {
	c.Fill(color.RGBA{})
}

// Commit flushes pending writes to the front buffer. It is a no-op when
// nothing changed since the last commit.
func (c *Canvas) Commit() {
	if !c.dirty {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for y := 0; y < c.h; y++ {
		// front buffer is in image orientation (y down)
		row := c.front.Pix[(c.h-1-y)*c.front.Stride:]
		for x := 0; x < c.w; x++ {
			p := c.back[y*c.w+x]
			i := x * 4
			row[i], row[i+1], row[i+2], row[i+3] = p.R, p.G, p.B, p.A
		}
	}
	c.version++
	c.dirty = false
}

// Version counts commits that changed the front buffer.
func (c *Canvas) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Snapshot returns a copy of the committed pixels in image orientation.
func (c *Canvas) Snapshot() *image.RGBA {
	c.mu.RLock()
	defer c.mu.RUnlock()
	img := image.NewRGBA(c.front.Rect)
	copy(img.Pix, c.front.Pix)
	return img
}
