// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package calibration runs the guided, trigger-driven calibration that
// derives the physical reference corners, the target plane and the
// forward correction of the tracked device.
package calibration

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/relabs-tech/digital_streetart/internal/geom"
	"github.com/relabs-tech/digital_streetart/internal/monitoring"
	"github.com/relabs-tech/digital_streetart/internal/orientation"
	"github.com/relabs-tech/digital_streetart/internal/remap"
)

// State is the step the controller waits in.
type State int

const (
	Idle State = iota
	AwaitingBottomLeft
	AwaitingTopRight
	// AwaitingBottomRight is only used in ThreePoint mode.
	AwaitingBottomRight
	// AwaitingUprightPose is only used in Plane mode.
	AwaitingUprightPose
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingBottomLeft:
		return "awaiting_bottom_left"
	case AwaitingTopRight:
		return "awaiting_top_right"
	case AwaitingBottomRight:
		return "awaiting_bottom_right"
	case AwaitingUprightPose:
		return "awaiting_upright_pose"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Mode selects the calibration sequence.
type Mode string

const (
	// Plane uses a pre-authored target plane and captures the forward
	// direction from an upright pose.
	Plane Mode = "plane"
	// ThreePoint reconstructs the plane from three captured corners and
	// derives the forward direction from its normal.
	ThreePoint Mode = "three_point"
)

// ErrDegenerateCapture is returned when a capture would make the mapping
// undefined. The controller stays on the same step and re-prompts.
var ErrDegenerateCapture = errors.New("calibration: degenerate capture")

// Prompts shown to the user on entering each step.
const (
	PromptBottomLeft  = "Calibrate lower-left corner: touch the lower-left corner and press the trigger"
	PromptTopRight    = "Calibrate upper-right corner: touch the upper-right corner and press the trigger"
	PromptBottomRight = "Calibrate lower-right corner: touch the lower-right corner and press the trigger"
	PromptUpright     = "Hold the device upright, point it at the wall and press the trigger to confirm"
)

// PromptSink displays instructional text. An empty string clears it.
type PromptSink interface {
	ShowPrompt(text string)
}

// PromptFunc adapts a function to PromptSink.
type PromptFunc func(string)

func (f PromptFunc) ShowPrompt(text string) { f(text) }

// Calibration is the output of a completed cycle besides the reference
// corners, which go straight into the remapper.
type Calibration struct {
	Plane geom.Plane
	// RotationOffset is left-multiplied onto raw orientations so that the
	// captured aim direction becomes geom.Forward.
	RotationOffset quat.Number
	Cycles         int
}

// NewCalibration returns the uncalibrated state around a pre-authored
// plane.
func NewCalibration(plane geom.Plane) *Calibration {
	return &Calibration{Plane: plane, RotationOffset: geom.Identity}
}

// Correct applies the rotation offset to a raw orientation.
func (c *Calibration) Correct(raw quat.Number) quat.Number {
	return geom.Normalize(quat.Mul(c.RotationOffset, raw))
}

// Controller is the calibration state machine. It is advanced by
// discrete trigger edges, never per frame, and owns nothing but its step
// and the captures of the cycle in progress.
type Controller struct {
	mode    Mode
	state   State
	prompts PromptSink
	remap   *remap.Remapper
	out     *Calibration

	bottomLeft, topRight orientation.Pose

	lastFrame uint64
	fired     bool
}

// NewController wires the controller to the remapper it recalibrates and
// the calibration it overwrites on completion.
func NewController(mode Mode, r *remap.Remapper, out *Calibration, prompts PromptSink) (*Controller, error) {
	if mode != Plane && mode != ThreePoint {
		return nil, fmt.Errorf("calibration: unknown mode %q", mode)
	}
	if r == nil || out == nil {
		return nil, errors.New("calibration: remapper and calibration are required")
	}
	if prompts == nil {
		prompts = PromptFunc(func(string) {})
	}
	return &Controller{mode: mode, remap: r, out: out, prompts: prompts}, nil
}

// State returns the current step.
func (c *Controller) State() State { return c.state }

// Mode returns the configured sequence.
func (c *Controller) Mode() Mode { return c.mode }

// Trigger advances one step using the device pose captured this frame.
// Further triggers within the same frame are ignored. On a degenerate
// capture the step is repeated and an error wrapping
// ErrDegenerateCapture is returned.
func (c *Controller) Trigger(frame uint64, pose orientation.Pose) (State, error) {
	if c.fired && frame == c.lastFrame {
		return c.state, nil
	}
	c.fired, c.lastFrame = true, frame

	switch c.state {
	case Idle:
		c.enter(AwaitingBottomLeft, PromptBottomLeft)

	case AwaitingBottomLeft:
		c.bottomLeft = pose
		c.enter(AwaitingTopRight, PromptTopRight)

	case AwaitingTopRight:
		if err := remap.CheckSpan(c.bottomLeft.Position, pose.Position, c.remap.Axes()); err != nil {
			return c.reject(err, PromptTopRight)
		}
		c.topRight = pose
		if c.mode == ThreePoint {
			c.enter(AwaitingBottomRight, PromptBottomRight)
		} else {
			c.enter(AwaitingUprightPose, PromptUpright)
		}

	case AwaitingBottomRight:
		plane, err := geom.PlaneFromPoints(c.bottomLeft.Position, c.topRight.Position, pose.Position)
		if err != nil {
			return c.reject(err, PromptBottomRight)
		}
		if err := c.commit(plane, wallOffset(plane, pose.Orientation)); err != nil {
			return c.reject(err, PromptBottomLeft)
		}

	case AwaitingUprightPose:
		offset := geom.Inverse(geom.LookRotation(pose.Forward(), geom.Up))
		if err := c.commit(c.out.Plane, offset); err != nil {
			return c.reject(err, PromptBottomLeft)
		}
	}
	return c.state, nil
}

// wallOffset returns the correction that makes the device, held as in
// orientation, aim into the wall. The wall normal faces the user, so the
// aim direction is the negated normal expressed in the device's local
// frame.
func wallOffset(plane geom.Plane, held quat.Number) quat.Number {
	local := geom.Rotate(geom.Inverse(held), r3.Scale(-1, plane.Normal))
	// aim along local in the device frame, then move back to world
	// space so the offset can be left-multiplied
	return quat.Mul(quat.Mul(held, geom.LookRotation(local, geom.Up)), geom.Inverse(held))
}

// Reset abandons the cycle in progress without committing any capture.
func (c *Controller) Reset() {
	if c.state == Idle {
		return
	}
	monitoring.Logf("calibration: cancelled in %s", c.state)
	c.state = Idle
	c.bottomLeft, c.topRight = orientation.Pose{}, orientation.Pose{}
	c.prompts.ShowPrompt("")
}

func (c *Controller) enter(s State, prompt string) {
	c.state = s
	c.prompts.ShowPrompt(prompt)
}

func (c *Controller) reject(cause error, prompt string) (State, error) {
	monitoring.Logf("calibration: rejected capture in %s: %v", c.state, cause)
	if c.state == AwaitingUprightPose || c.state == AwaitingBottomRight {
		if errors.Is(cause, remap.ErrDegenerateSpan) {
			// corners no longer valid, restart the cycle
			c.state = AwaitingBottomLeft
		}
	}
	c.prompts.ShowPrompt(prompt)
	return c.state, fmt.Errorf("%w: %w", ErrDegenerateCapture, cause)
}

func (c *Controller) commit(plane geom.Plane, offset quat.Number) error {
	if err := c.remap.SetPhysicalCorners(c.bottomLeft.Position, c.topRight.Position); err != nil {
		return err
	}
	c.out.Plane = plane
	c.out.RotationOffset = geom.Normalize(offset)
	c.out.Cycles++
	monitoring.Logf("calibration: complete (%s) bottom-left=%v top-right=%v normal=%v",
		c.mode, c.bottomLeft.Position, c.topRight.Position, plane.Normal)

	c.state = Idle
	c.bottomLeft, c.topRight = orientation.Pose{}, orientation.Pose{}
	c.prompts.ShowPrompt("")
	return nil
}
