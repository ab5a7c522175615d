// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"sync"

	"github.com/relabs-tech/digital_streetart/internal/orientation"
)

// TriggerMessage is the payload of the trigger topic. Value is the analog
// spray trigger in [0,1]; the booleans are button states, not edges.
type TriggerMessage struct {
	Value     float64 `json:"value"`
	Calibrate bool    `json:"calibrate,omitempty"`
	Wheel     bool    `json:"wheel,omitempty"`
}

// Input is what the loop consumes each tick.
type Input struct {
	Pose     orientation.Pose
	HavePose bool
	Trigger  float64

	// pending edges since the last Take
	Calibrate int
	Cancel    bool
	Clear     bool

	// Wheel is the held state of the color wheel button.
	Wheel bool
}

// InputLatch hands input from MQTT and websocket goroutines to the loop.
type InputLatch struct {
	mu            sync.Mutex
	in            Input
	calibrateHeld bool
}

// NewInputLatch returns a latch with the neutral pose.
func NewInputLatch() *InputLatch {
	return &InputLatch{in: Input{Pose: orientation.NeutralPose()}}
}

// SetPose stores the latest raw pose.
func (l *InputLatch) SetPose(p orientation.Pose) {
	l.mu.Lock()
	l.in.Pose = p
	l.in.HavePose = true
	l.mu.Unlock()
}

// SetTrigger stores the trigger state. A press of the calibrate button
// counts as one calibration edge; holding it does not repeat.
func (l *InputLatch) SetTrigger(m TriggerMessage) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.in.Trigger = m.Value
	l.in.Wheel = m.Wheel
	if m.Calibrate && !l.calibrateHeld {
		l.in.Calibrate++
	}
	l.calibrateHeld = m.Calibrate
}

// RequestCalibrate queues one calibration edge.
func (l *InputLatch) RequestCalibrate() {
	l.mu.Lock()
	l.in.Calibrate++
	l.mu.Unlock()
}

// RequestCancel asks the loop to abandon the calibration in progress.
func (l *InputLatch) RequestCancel() {
	l.mu.Lock()
	l.in.Cancel = true
	l.in.Calibrate = 0
	l.mu.Unlock()
}

// RequestClear asks the loop to wipe the wall.
func (l *InputLatch) RequestClear() {
	l.mu.Lock()
	l.in.Clear = true
	l.mu.Unlock()
}

// Take returns the current input and drains the pending edges. Pose and
// trigger stay latched until replaced.
func (l *InputLatch) Take() Input {
	l.mu.Lock()
	defer l.mu.Unlock()
	in := l.in
	l.in.Calibrate = 0
	l.in.Cancel = false
	l.in.Clear = false
	return in
}

// Peek returns the current input without draining it.
func (l *InputLatch) Peek() Input {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.in
}
