// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package stabilizer

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/relabs-tech/digital_streetart/internal/geom"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func newStabilizer(t *testing.T, mutate func(*Config)) *Stabilizer {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := New(cfg)
	require.NoError(t, err)
	return s
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cases := map[string]func(*Config){
		"zero position window": func(c *Config) { c.PositionWindow = 0 },
		"negative rotation":    func(c *Config) { c.RotationWindow = -3 },
		"unknown filter":       func(c *Config) { c.PositionFilter = "median" },
		"unknown average":      func(c *Config) { c.RotationAverage = "nlerp" },
		"kalman without noise": func(c *Config) { c.PositionFilter = FilterKalman; c.R = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			_, err := New(cfg)
			assert.Error(t, err)
		})
	}

	cfg := DefaultConfig()
	cfg.PositionWindow = 0
	_, err := New(cfg)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestWindowEvictsOldest(t *testing.T) {
	w := newWindow(3, 0)
	for i := 1; i <= 5; i++ {
		w.Push(i)
	}
	assert.Equal(t, 3, w.Len())
	assert.Equal(t, []int{3, 4, 5}, []int{w.At(0), w.At(1), w.At(2)})
	assert.Equal(t, 5, w.Latest())
}

func TestPositionConvergesOnConstantInput(t *testing.T) {
	target := r3.Vec{X: 0.4, Y: 1.7, Z: -0.2}
	for _, filter := range []PositionFilter{FilterMean, FilterKalman} {
		t.Run(string(filter), func(t *testing.T) {
			s := newStabilizer(t, func(c *Config) { c.PositionFilter = filter })

			var got r3.Vec
			for i := 0; i < s.cfg.PositionWindow-1; i++ {
				got, _ = s.Update(target, geom.Identity)
				assert.Less(t, r3.Norm(got), r3.Norm(target)+1e-9, "still blending with the neutral prefill")
			}
			got, _ = s.Update(target, geom.Identity)
			if diff := cmp.Diff(target, got, approx); diff != "" {
				t.Errorf("full window (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPositionMeanIsContinuousWhileFilling(t *testing.T) {
	s := newStabilizer(t, func(c *Config) { c.PositionWindow = 4 })
	want := []float64{0.25, 0.5, 0.75, 1}
	for i, w := range want {
		got, _ := s.Update(r3.Vec{X: 1}, geom.Identity)
		assert.InDelta(t, w, got.X, 1e-12, "tick %d", i)
	}
}

func TestSingleSampleWindows(t *testing.T) {
	for _, filter := range []PositionFilter{FilterMean, FilterKalman, FilterKalmanContinuous} {
		t.Run(string(filter), func(t *testing.T) {
			s := newStabilizer(t, func(c *Config) {
				c.PositionWindow = 1
				c.RotationWindow = 1
				c.PositionFilter = filter
			})
			p := r3.Vec{X: 3, Y: -2, Z: 1}
			q := geom.AxisAngle(geom.Up, 0.7)
			gp, gq := s.Update(p, q)
			if diff := cmp.Diff(p, gp, approx); diff != "" {
				t.Errorf("position (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(q, gq, approx); diff != "" {
				t.Errorf("rotation (-want +got):\n%s", diff)
			}
		})
	}
}

func TestKalmanContinuousTracksStep(t *testing.T) {
	s := newStabilizer(t, func(c *Config) { c.PositionFilter = FilterKalmanContinuous })
	s.Update(r3.Vec{}, geom.Identity)
	step := r3.Vec{X: 1}
	var got r3.Vec
	for i := 0; i < 2000; i++ {
		got, _ = s.Update(step, geom.Identity)
	}
	assert.InDelta(t, 1.0, got.X, 1e-3)
	assert.False(t, math.IsNaN(got.X))
}

func TestKalmanWindowSmoothsNoise(t *testing.T) {
	s := newStabilizer(t, func(c *Config) { c.PositionFilter = FilterKalman })
	var got r3.Vec
	for i := 0; i < 10; i++ {
		x := 1.0
		if i%2 == 1 {
			x = -1.0
		}
		got, _ = s.Update(r3.Vec{X: x}, geom.Identity)
	}
	assert.Less(t, math.Abs(got.X), 0.5, "alternating noise is damped")
}

func TestRotationIdempotentUnderUniformInput(t *testing.T) {
	q := geom.Normalize(quat.Number{Real: 0.8, Imag: 0.1, Jmag: -0.5, Kmag: 0.2})
	for _, avg := range []RotationAverage{AverageLinear, AverageSlerp} {
		t.Run(string(avg), func(t *testing.T) {
			s := newStabilizer(t, func(c *Config) { c.RotationAverage = avg })
			var got quat.Number
			for i := 0; i < s.cfg.RotationWindow; i++ {
				_, got = s.Update(r3.Vec{}, q)
			}
			if diff := cmp.Diff(q, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
				t.Errorf("rotation (-want +got):\n%s", diff)
			}
			assert.InDelta(t, 1.0, quat.Abs(got), 1e-9)
		})
	}
}

func TestRotationFallbackOnAntipodalSamples(t *testing.T) {
	s := newStabilizer(t, func(c *Config) { c.RotationWindow = 2 })
	q := geom.AxisAngle(geom.Up, 0.3)
	_, first := s.Update(r3.Vec{}, q)
	assert.InDelta(t, 1.0, quat.Abs(first), 1e-9)
	assert.Zero(t, s.Fallbacks())

	nearOpposite := geom.Normalize(quat.Scale(-1, quat.Add(q, quat.Number{Imag: 1e-3})))
	_, got := s.Update(r3.Vec{}, nearOpposite)
	assert.Equal(t, nearOpposite, got, "raw sample passes through")
	assert.Equal(t, uint64(1), s.Fallbacks())
	for _, c := range []float64{got.Real, got.Imag, got.Jmag, got.Kmag} {
		assert.False(t, math.IsNaN(c))
	}
}

func TestSingleSampleWindowNeverFallsBack(t *testing.T) {
	s := newStabilizer(t, func(c *Config) { c.RotationWindow = 1 })
	rng := rand.New(rand.NewPCG(5, 5))
	for i := 0; i < 200; i++ {
		q := geom.Normalize(quat.Number{
			Real: rng.NormFloat64(),
			Imag: rng.NormFloat64(),
			Jmag: rng.NormFloat64(),
			Kmag: rng.NormFloat64(),
		})
		_, got := s.Update(r3.Vec{}, q)
		assert.InDelta(t, 1.0, quat.Abs(got), 1e-9)
	}
	assert.Zero(t, s.Fallbacks())
}

func TestResetRestoresNeutralWindows(t *testing.T) {
	s := newStabilizer(t, func(c *Config) { c.PositionWindow = 2 })
	s.Update(r3.Vec{X: 5}, geom.AxisAngle(geom.Up, 1))
	s.Reset()
	p, q := s.Update(r3.Vec{}, geom.Identity)
	assert.Equal(t, r3.Vec{}, p)
	if diff := cmp.Diff(geom.Identity, q, approx); diff != "" {
		t.Errorf("rotation (-want +got):\n%s", diff)
	}
}
