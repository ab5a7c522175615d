// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/relabs-tech/digital_streetart/internal/geom"
)

// MockConfig shapes the synthetic device motion.
type MockConfig struct {
	// Center is where the device hovers, Amplitude the half extent of
	// the sweep on x and y, in meters.
	Center    r3.Vec
	Amplitude r3.Vec
	// Jitter is the standard deviation of the per-sample noise, in
	// meters (position) and degrees (orientation).
	PositionJitter float64
	AngleJitter    float64
	Seed           uint64
}

// DefaultMockConfig sweeps the area of the default wall calibration.
func DefaultMockConfig() MockConfig {
	return MockConfig{
		Center:         r3.Vec{X: -0.15, Y: 1.7, Z: -1.5},
		Amplitude:      r3.Vec{X: 0.4, Y: 0.25},
		PositionJitter: 0.004,
		AngleJitter:    0.4,
		Seed:           1,
	}
}

type mockSource struct {
	cfg   MockConfig
	start time.Time
	now   func() time.Time
	rng   *rand.Rand
}

// NewMockSource creates a mock pose source that generates a smooth
// figure-eight in front of the wall plus tracking noise.
func NewMockSource(cfg MockConfig) Source {
	return &mockSource{
		cfg:   cfg,
		start: time.Now(),
		now:   time.Now,
		rng:   rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x5eed)),
	}
}

func (m *mockSource) Next() (Pose, error) {
	elapsed := m.now().Sub(m.start).Seconds()

	pos := r3.Vec{
		X: m.cfg.Center.X + m.cfg.Amplitude.X*math.Sin(elapsed*0.5) + m.rng.NormFloat64()*m.cfg.PositionJitter,
		Y: m.cfg.Center.Y + m.cfg.Amplitude.Y*math.Sin(elapsed) + m.rng.NormFloat64()*m.cfg.PositionJitter,
		Z: m.cfg.Center.Z + m.rng.NormFloat64()*m.cfg.PositionJitter,
	}
	rot := geom.Euler(
		5*math.Sin(elapsed*0.7)+m.rng.NormFloat64()*m.cfg.AngleJitter,
		8*math.Cos(elapsed*0.3)+m.rng.NormFloat64()*m.cfg.AngleJitter,
		m.rng.NormFloat64()*m.cfg.AngleJitter,
	)
	return Pose{Position: pos, Orientation: rot}, nil
}
