// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package pipeline wires the per-tick flow from a raw tracked pose to
// paint on the wall: remap, orientation correction, stabilization and
// spraying on the fixed tick; cursors, color picking and calibration on
// the frame tick. A Pipeline is not safe for concurrent use; the host
// loop owns it.
package pipeline

import (
	"fmt"
	"image/color"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/relabs-tech/digital_streetart/internal/calibration"
	"github.com/relabs-tech/digital_streetart/internal/colorwheel"
	"github.com/relabs-tech/digital_streetart/internal/geom"
	"github.com/relabs-tech/digital_streetart/internal/monitoring"
	"github.com/relabs-tech/digital_streetart/internal/orientation"
	"github.com/relabs-tech/digital_streetart/internal/raster"
	"github.com/relabs-tech/digital_streetart/internal/remap"
	"github.com/relabs-tech/digital_streetart/internal/scene"
	"github.com/relabs-tech/digital_streetart/internal/spray"
	"github.com/relabs-tech/digital_streetart/internal/stabilizer"
)

// Config collects the tuning of every stage.
type Config struct {
	Mode       calibration.Mode
	Axes       remap.Axes
	Frame      remap.ReferenceFrame
	Plane      geom.Plane // pre-authored target plane in tracking space
	Stabilizer stabilizer.Config
	Spray      spray.Config

	CanvasWidth, CanvasHeight int
	WallDepth                 float64
	Palette                   []color.RGBA
	WheelSize                 int
	Seed                      uint64
}

// Cursor is the pair of wall cursors of one frame, in virtual space.
type Cursor struct {
	// Projected is the device position dropped onto the target plane.
	Projected r3.Vec
	// Raycasted is where the aim line meets the target plane.
	Raycasted r3.Vec
	// Aiming is false when the device points away from the plane.
	Aiming bool
}

// Pipeline owns every stage of one spray rig.
type Pipeline struct {
	remap   *remap.Remapper
	calib   *calibration.Calibration
	ctrl    *calibration.Controller
	stab    *stabilizer.Stabilizer
	painter *spray.Painter
	scene   *scene.Scene
	canvas  *raster.Canvas
	wheel   *colorwheel.Wheel

	frame      uint64
	raw        orientation.Pose
	stabilized orientation.Pose
}

// New builds the pipeline and its scene: one paintable wall spanning the
// virtual anchors, WallDepth in front of them.
func New(cfg Config, prompts calibration.PromptSink) (*Pipeline, error) {
	r, err := remap.New(cfg.Frame, cfg.Axes)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	calib := calibration.NewCalibration(cfg.Plane)
	ctrl, err := calibration.NewController(cfg.Mode, r, calib, prompts)
	if err != nil {
		return nil, err
	}
	stab, err := stabilizer.New(cfg.Stabilizer)
	if err != nil {
		return nil, err
	}
	canvas, err := raster.NewCanvas(cfg.CanvasWidth, cfg.CanvasHeight)
	if err != nil {
		return nil, err
	}
	wall, err := scene.Wall(cfg.Frame.BottomLeftVirtual, cfg.Frame.TopRightVirtual, cfg.WallDepth, canvas)
	if err != nil {
		return nil, fmt.Errorf("pipeline: wall: %w", err)
	}
	sc := scene.New(wall)

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	painter, err := spray.New(cfg.Spray, sc, rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
	if err != nil {
		return nil, err
	}
	wheel, err := colorwheel.New(cfg.Palette, cfg.WheelSize)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		remap:      r,
		calib:      calib,
		ctrl:       ctrl,
		stab:       stab,
		painter:    painter,
		scene:      sc,
		canvas:     canvas,
		wheel:      wheel,
		stabilized: orientation.NeutralPose(),
		raw:        orientation.NeutralPose(),
	}, nil
}

// FixedTick runs one physics step with the raw tracked pose and the
// analog trigger value. It returns the stabilized virtual pose. Nothing
// is sprayed while a calibration is in progress or the color wheel is
// open.
func (p *Pipeline) FixedTick(raw orientation.Pose, trigger float64) (orientation.Pose, spray.Stats) {
	p.raw = raw

	pos := p.remap.Remap(raw.Position)
	rot := p.calib.Correct(raw.Orientation)
	pos, rot = p.stab.Update(pos, rot)
	p.stabilized = orientation.Pose{Position: pos, Orientation: rot}

	if p.ctrl.State() != calibration.Idle || p.wheel.Visible() {
		return p.stabilized, spray.Stats{}
	}
	return p.stabilized, p.painter.Tick(trigger, p.stabilized)
}

// FrameTick advances the frame counter and updates the cursors and the
// color wheel hover from the latest raw pose.
func (p *Pipeline) FrameTick() Cursor {
	p.frame++

	plane := p.calib.Plane
	aim := geom.Ray{Origin: p.raw.Position, Direction: p.raw.Forward()}
	c := Cursor{Projected: p.remap.Remap(plane.Project(p.raw.Position))}
	if t, ok := plane.Intersect(aim); ok {
		c.Raycasted = p.remap.Remap(aim.At(t))
		c.Aiming = true
		p.wheel.Hover(c.Projected, c.Raycasted)
	}
	return c
}

// Calibrate feeds one calibration trigger edge captured with the latest
// raw pose. Multiple edges within one frame count once. The stabilizer
// and the wall are left as they are.
func (p *Pipeline) Calibrate() (calibration.State, error) {
	cycles := p.calib.Cycles
	state, err := p.ctrl.Trigger(p.frame, p.raw)
	if err == nil && p.calib.Cycles != cycles {
		monitoring.Logf("pipeline: calibration %d applied", p.calib.Cycles)
	}
	return state, err
}

// CancelCalibration abandons the calibration in progress.
func (p *Pipeline) CancelCalibration() { p.ctrl.Reset() }

// CalibrationState returns the calibration step.
func (p *Pipeline) CalibrationState() calibration.State { return p.ctrl.State() }

// ShowColorWheel opens or closes the color picker.
func (p *Pipeline) ShowColorWheel(show bool) { p.wheel.Show(show) }

// SelectColor picks the hovered wheel color as the paint color.
func (p *Pipeline) SelectColor() bool {
	if !p.wheel.Select() {
		return false
	}
	p.painter.SetColor(p.wheel.Current())
	monitoring.Logf("pipeline: paint color %v", p.wheel.Current())
	return true
}

// PaintColor returns the color the painter sprays with.
func (p *Pipeline) PaintColor() color.RGBA { return p.painter.Color() }

// ClearCanvas wipes the wall.
func (p *Pipeline) ClearCanvas() {
	p.canvas.Clear()
	p.canvas.Commit()
}

// Canvas returns the wall raster.
func (p *Pipeline) Canvas() *raster.Canvas { return p.canvas }

// Wheel returns the color picker.
func (p *Pipeline) Wheel() *colorwheel.Wheel { return p.wheel }

// Remapper returns the active remapper.
func (p *Pipeline) Remapper() *remap.Remapper { return p.remap }

// Calibration returns the applied calibration.
func (p *Pipeline) Calibration() *calibration.Calibration { return p.calib }

// Stabilized returns the last stabilized virtual pose.
func (p *Pipeline) Stabilized() orientation.Pose { return p.stabilized }

// Frame returns the frame counter.
func (p *Pipeline) Frame() uint64 { return p.frame }
