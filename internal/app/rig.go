// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"image/color"
	"log"

	"github.com/relabs-tech/digital_streetart/internal/config"
	"github.com/relabs-tech/digital_streetart/internal/geom"
	"github.com/relabs-tech/digital_streetart/internal/hud"
	"github.com/relabs-tech/digital_streetart/internal/orientation"
	"github.com/relabs-tech/digital_streetart/internal/pipeline"
	"github.com/relabs-tech/digital_streetart/internal/spray"
)

// PipelineConfig translates the file configuration into pipeline tuning.
func PipelineConfig(cfg *config.Config) (pipeline.Config, error) {
	plane, err := geom.NewPlane(cfg.PlanePoint, cfg.PlaneNormal)
	if err != nil {
		return pipeline.Config{}, fmt.Errorf("PLANE_NORMAL: %w", err)
	}
	return pipeline.Config{
		Mode:         cfg.CalibrationMode,
		Axes:         cfg.RemapAxes,
		Frame:        cfg.ReferenceFrame(),
		Plane:        plane,
		Stabilizer:   cfg.StabilizerConfig(),
		Spray:        cfg.SprayConfig(),
		CanvasWidth:  cfg.CanvasWidth,
		CanvasHeight: cfg.CanvasHeight,
		WallDepth:    cfg.WallDepth,
		Palette:      cfg.Palette,
		WheelSize:    cfg.WheelSize,
		Seed:         cfg.SpraySeed,
	}, nil
}

// Rig runs the pipeline from latched input. FixedStep and FrameStep are
// called from the single loop goroutine.
type Rig struct {
	pipe    *pipeline.Pipeline
	latch   *InputLatch
	status  *StatusBoard
	overlay *hud.Overlay
	publish func(orientation.Pose)

	wheelOpen bool
}

// NewRig builds the pipeline with overlay as its prompt sink. publish
// receives every stabilized pose and may be nil.
func NewRig(cfg pipeline.Config, latch *InputLatch, status *StatusBoard, overlay *hud.Overlay, publish func(orientation.Pose)) (*Rig, error) {
	if overlay == nil {
		overlay = hud.New()
	}
	pipe, err := pipeline.New(cfg, overlay)
	if err != nil {
		return nil, err
	}
	r := &Rig{pipe: pipe, latch: latch, status: status, overlay: overlay, publish: publish}
	status.Update(func(s *Status) {
		s.Calibration = pipe.CalibrationState().String()
		s.Color = hexColor(pipe.PaintColor())
	})
	return r, nil
}

// Pipeline exposes the wrapped pipeline.
func (r *Rig) Pipeline() *pipeline.Pipeline { return r.pipe }

// FixedStep runs one fixed tick. It does nothing until a pose arrived.
func (r *Rig) FixedStep() spray.Stats {
	in := r.latch.Peek()
	if !in.HavePose {
		return spray.Stats{}
	}
	pose, stats := r.pipe.FixedTick(in.Pose, in.Trigger)
	if r.publish != nil {
		r.publish(pose)
	}
	r.status.Update(func(s *Status) {
		s.Pose = pose
		s.HavePose = true
		s.Spray = stats
	})
	return stats
}

// FrameStep runs one frame tick and applies the pending edges.
func (r *Rig) FrameStep() pipeline.Cursor {
	in := r.latch.Take()
	cursor := r.pipe.FrameTick()

	var lastErr string
	if in.Cancel {
		r.pipe.CancelCalibration()
		log.Println("rig: calibration cancelled")
	}
	if in.Calibrate > 0 {
		if _, err := r.pipe.Calibrate(); err != nil {
			lastErr = err.Error()
			log.Printf("rig: calibration: %v", err)
		}
	}
	if in.Clear {
		r.pipe.ClearCanvas()
		log.Println("rig: canvas cleared")
	}
	if in.Wheel != r.wheelOpen {
		if !in.Wheel {
			r.pipe.SelectColor()
		}
		r.pipe.ShowColorWheel(in.Wheel)
		r.wheelOpen = in.Wheel
	}

	r.status.Update(func(s *Status) {
		s.Frame = r.pipe.Frame()
		s.Calibration = r.pipe.CalibrationState().String()
		s.Calibrated = r.pipe.Calibration().Cycles
		s.Prompt = r.overlay.Prompt()
		if lastErr != "" || in.Calibrate > 0 || in.Cancel {
			s.LastError = lastErr
		}
		s.WheelOpen = r.wheelOpen
		s.Color = hexColor(r.pipe.PaintColor())
	})
	return cursor
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}
