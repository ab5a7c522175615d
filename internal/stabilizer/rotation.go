// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package stabilizer

import (
	"math"

	"gonum.org/v1/gonum/num/quat"

	"github.com/relabs-tech/digital_streetart/internal/geom"
)

// RotationAverage selects how the rotation window is reduced.
type RotationAverage string

const (
	// AverageLinear sums the components and renormalizes.
	AverageLinear RotationAverage = "linear"
	// AverageSlerp folds the window with halfway slerps, oldest first.
	AverageSlerp RotationAverage = "slerp"
)

// unitNorm2 is the smallest squared norm a summed window may have. A
// single unit sample can land a few ulps below 1.
const unitNorm2 = 1 - 1e-9

// averageLinear blends the window component-wise. When the summed vector
// is shorter than one unit the samples cancel each other out (typically
// q and -q in the same window) and the newest raw sample is returned
// unchanged.
func averageLinear(w *window[quat.Number]) (quat.Number, bool) {
	var sum quat.Number
	for i := 0; i < w.Len(); i++ {
		sum = quat.Add(sum, w.At(i))
	}
	n2 := geom.Dot(sum, sum)
	if n2 < unitNorm2 || math.IsNaN(n2) {
		return w.Latest(), false
	}
	return quat.Scale(1/math.Sqrt(n2), sum), true
}

// averageSlerp halves towards each newer sample in turn so the newest
// sample carries half the weight.
func averageSlerp(w *window[quat.Number]) quat.Number {
	acc := w.At(0)
	for i := 1; i < w.Len(); i++ {
		acc = geom.Slerp(acc, w.At(i), 0.5)
	}
	return geom.Normalize(acc)
}
