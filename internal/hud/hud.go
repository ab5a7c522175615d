// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package hud renders the instructional prompt on top of exported canvas
// snapshots.
package hud

import (
	"image"
	"image/color"
	"strings"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	lineHeight = 13 // basicfont.Face7x13
	charWidth  = 7
	padding    = 2
)

var (
	bandColor = color.RGBA{A: 0xB0}
	textColor = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
)

// Overlay holds the current prompt. It satisfies calibration.PromptSink
// and is safe for use by the loop and HTTP handlers at once.
type Overlay struct {
	mu   sync.RWMutex
	text string
}

// New returns an empty overlay.
func New() *Overlay { return &Overlay{} }

// ShowPrompt replaces the prompt. An empty string clears it.
func (o *Overlay) ShowPrompt(text string) {
	o.mu.Lock()
	o.text = text
	o.mu.Unlock()
}

// Prompt returns the current prompt.
func (o *Overlay) Prompt() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.text
}

// Draw paints the prompt as a translucent band along the top edge of dst.
// Nothing is drawn when the prompt is empty.
func (o *Overlay) Draw(dst draw.Image) {
	text := o.Prompt()
	if text == "" {
		return
	}
	b := dst.Bounds()
	lines := wrap(text, (b.Dx()-2*padding)/charWidth)
	if len(lines) == 0 {
		return
	}

	band := image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+len(lines)*lineHeight+2*padding)
	draw.Draw(dst, band.Intersect(b), &image.Uniform{bandColor}, image.Point{}, draw.Over)

	drawer := &font.Drawer{
		Dst:  dst,
		Src:  &image.Uniform{textColor},
		Face: basicfont.Face7x13,
	}
	for i, line := range lines {
		drawer.Dot = fixed.P(b.Min.X+padding, b.Min.Y+padding+(i+1)*lineHeight-2)
		drawer.DrawString(line)
	}
}

// Compose upscales src by scale with nearest-neighbour sampling and draws
// the overlay on top. o may be nil.
func Compose(src image.Image, scale int, o *Overlay) *image.RGBA {
	if scale < 1 {
		scale = 1
	}
	sb := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, sb.Dx()*scale, sb.Dy()*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, sb, draw.Src, nil)
	if o != nil {
		o.Draw(dst)
	}
	return dst
}

// wrap splits text into lines of at most cols characters, breaking on
// spaces. Words longer than a line are cut.
func wrap(text string, cols int) []string {
	if cols < 1 {
		return nil
	}
	var lines []string
	var cur strings.Builder
	for _, word := range strings.Fields(text) {
		for len(word) > cols {
			if cur.Len() > 0 {
				lines = append(lines, cur.String())
				cur.Reset()
			}
			lines = append(lines, word[:cols])
			word = word[cols:]
		}
		switch {
		case cur.Len() == 0:
			cur.WriteString(word)
		case cur.Len()+1+len(word) <= cols:
			cur.WriteByte(' ')
			cur.WriteString(word)
		default:
			lines = append(lines, cur.String())
			cur.Reset()
			cur.WriteString(word)
		}
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}
