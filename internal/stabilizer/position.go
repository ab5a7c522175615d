// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package stabilizer

import "gonum.org/v1/gonum/spatial/r3"

// PositionFilter selects how the position window is reduced.
type PositionFilter string

const (
	// FilterMean is the plain moving average over the window. It lags
	// more than the Kalman variants but never overshoots.
	FilterMean PositionFilter = "mean"
	// FilterKalman re-runs a scalar Kalman filter over the whole window on
	// every tick, starting from its prior each time.
	FilterKalman PositionFilter = "kalman"
	// FilterKalmanContinuous keeps the filter state across ticks and only
	// folds in the newest sample.
	FilterKalmanContinuous PositionFilter = "kalman_continuous"
)

func meanPosition(w *window[r3.Vec]) r3.Vec {
	var sum r3.Vec
	for i := 0; i < w.Len(); i++ {
		sum = r3.Add(sum, w.At(i))
	}
	return r3.Scale(1/float64(w.Len()), sum)
}

// kalman is a per-axis constant-position filter sharing one covariance,
// since Q and R are the same on every axis.
type kalman struct {
	q, r float64
	x    r3.Vec
	p    float64
}

func (k *kalman) reset(x r3.Vec) {
	k.x = x
	k.p = k.r
}

func (k *kalman) step(z r3.Vec) r3.Vec {
	k.p += k.q
	gain := k.p / (k.p + k.r)
	k.x = r3.Add(k.x, r3.Scale(gain, r3.Sub(z, k.x)))
	k.p *= 1 - gain
	return k.x
}

// filterWindow seeds the filter with the oldest sample and runs it
// forward over the rest of the window.
func (k *kalman) filterWindow(w *window[r3.Vec]) r3.Vec {
	k.reset(w.At(0))
	for i := 1; i < w.Len(); i++ {
		k.step(w.At(i))
	}
	return k.x
}
