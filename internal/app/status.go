// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"sync"

	"github.com/relabs-tech/digital_streetart/internal/orientation"
	"github.com/relabs-tech/digital_streetart/internal/spray"
)

// Status is the rig state published by the loop for HTTP readers.
type Status struct {
	Frame       uint64           `json:"frame"`
	Pose        orientation.Pose `json:"pose"`
	HavePose    bool             `json:"have_pose"`
	Calibration string           `json:"calibration"`
	Calibrated  int              `json:"calibrations"`
	Prompt      string           `json:"prompt,omitempty"`
	LastError   string           `json:"last_error,omitempty"`
	WheelOpen   bool             `json:"wheel_open"`
	Color       string           `json:"color"`
	Spray       spray.Stats      `json:"spray"`
	Version     uint64           `json:"version"`
}

// StatusBoard holds the latest Status.
type StatusBoard struct {
	mu sync.RWMutex
	st Status
}

// Update applies f to the status under the lock and bumps its version.
func (b *StatusBoard) Update(f func(*Status)) {
	b.mu.Lock()
	f(&b.st)
	b.st.Version++
	b.mu.Unlock()
}

// Get returns a copy of the status.
func (b *StatusBoard) Get() Status {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.st
}
