// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package stabilizer smooths the noisy pose stream of the tracked device
// with fixed-size sample windows.
package stabilizer

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/relabs-tech/digital_streetart/internal/geom"
)

// ErrInvalidWindow is returned for window sizes below one.
var ErrInvalidWindow = errors.New("stabilizer: window size must be at least 1")

// Config holds the stabilizer tuning.
type Config struct {
	PositionWindow  int
	RotationWindow  int
	PositionFilter  PositionFilter
	RotationAverage RotationAverage
	// Q is the process noise: how far the true position moves between
	// samples. R is the measurement noise of a single raw sample.
	Q, R float64
}

// DefaultConfig returns the tuning used by the rig.
func DefaultConfig() Config {
	return Config{
		PositionWindow:  10,
		RotationWindow:  5,
		PositionFilter:  FilterMean,
		RotationAverage: AverageLinear,
		Q:               0.001,
		R:               0.1,
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.PositionWindow < 1 {
		return fmt.Errorf("%w: position window %d", ErrInvalidWindow, c.PositionWindow)
	}
	if c.RotationWindow < 1 {
		return fmt.Errorf("%w: rotation window %d", ErrInvalidWindow, c.RotationWindow)
	}
	switch c.PositionFilter {
	case FilterMean:
	case FilterKalman, FilterKalmanContinuous:
		if c.Q <= 0 || c.R <= 0 {
			return fmt.Errorf("stabilizer: filter noise Q and R must be positive, got Q=%g R=%g", c.Q, c.R)
		}
	default:
		return fmt.Errorf("stabilizer: unknown position filter %q", c.PositionFilter)
	}
	switch c.RotationAverage {
	case AverageLinear, AverageSlerp:
	default:
		return fmt.Errorf("stabilizer: unknown rotation average %q", c.RotationAverage)
	}
	return nil
}

// Stabilizer keeps the position and rotation windows of one device. It is
// not safe for concurrent use; the host loop calls Update once per fixed
// tick.
type Stabilizer struct {
	cfg Config
	pos *window[r3.Vec]
	rot *window[quat.Number]

	filter  kalman
	started bool

	fallbacks uint64
}

// New validates cfg and returns a stabilizer with neutral windows.
func New(cfg Config) (*Stabilizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Stabilizer{
		cfg:    cfg,
		pos:    newWindow(cfg.PositionWindow, r3.Vec{}),
		rot:    newWindow(cfg.RotationWindow, geom.Identity),
		filter: kalman{q: cfg.Q, r: cfg.R},
	}, nil
}

// Reset refills both windows with the neutral pose.
func (s *Stabilizer) Reset() {
	s.pos.fill(r3.Vec{})
	s.rot.fill(geom.Identity)
	s.started = false
}

// Update pushes one raw sample and returns the filtered pose.
func (s *Stabilizer) Update(position r3.Vec, orientation quat.Number) (r3.Vec, quat.Number) {
	s.pos.Push(position)
	s.rot.Push(orientation)
	return s.filterPosition(position), s.averageRotation()
}

func (s *Stabilizer) filterPosition(latest r3.Vec) r3.Vec {
	switch s.cfg.PositionFilter {
	case FilterKalman:
		return s.filter.filterWindow(s.pos)
	case FilterKalmanContinuous:
		if !s.started {
			s.filter.reset(latest)
			s.started = true
			return latest
		}
		return s.filter.step(latest)
	default:
		return meanPosition(s.pos)
	}
}

func (s *Stabilizer) averageRotation() quat.Number {
	if s.cfg.RotationAverage == AverageSlerp {
		return averageSlerp(s.rot)
	}
	q, ok := averageLinear(s.rot)
	if !ok {
		s.fallbacks++
	}
	return q
}

// Fallbacks counts ticks where the linear rotation blend degenerated and
// the raw sample was passed through.
func (s *Stabilizer) Fallbacks() uint64 { return s.fallbacks }
