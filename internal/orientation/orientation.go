// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"encoding/json"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/relabs-tech/digital_streetart/internal/geom"
)

// Pose is the canonical position + orientation of the tracked device.
// Positions are in meters.
type Pose struct {
	Position    r3.Vec
	Orientation quat.Number
}

// Source is anything that can provide poses over time: the mock source,
// the MQTT subscriber, a replay.
type Source interface {
	Next() (Pose, error)
}

// NeutralPose is the origin with identity orientation.
func NeutralPose() Pose {
	return Pose{Orientation: geom.Identity}
}

// Forward returns the direction the device points at.
func (p Pose) Forward() r3.Vec {
	return geom.ForwardOf(p.Orientation)
}

// wirePose is the JSON layout published on the pose topics.
type wirePose struct {
	Position struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
		Z float64 `json:"z"`
	} `json:"position"`
	Orientation struct {
		W float64 `json:"w"`
		X float64 `json:"x"`
		Y float64 `json:"y"`
		Z float64 `json:"z"`
	} `json:"orientation"`
}

func (p Pose) MarshalJSON() ([]byte, error) {
	var w wirePose
	w.Position.X, w.Position.Y, w.Position.Z = p.Position.X, p.Position.Y, p.Position.Z
	q := p.Orientation
	w.Orientation.W, w.Orientation.X, w.Orientation.Y, w.Orientation.Z = q.Real, q.Imag, q.Jmag, q.Kmag
	return json.Marshal(w)
}

// UnmarshalJSON accepts the wire layout. A missing or zero orientation
// decodes as identity; others are normalized.
func (p *Pose) UnmarshalJSON(b []byte) error {
	var w wirePose
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	p.Position = r3.Vec{X: w.Position.X, Y: w.Position.Y, Z: w.Position.Z}
	p.Orientation = geom.Normalize(quat.Number{
		Real: w.Orientation.W,
		Imag: w.Orientation.X,
		Jmag: w.Orientation.Y,
		Kmag: w.Orientation.Z,
	})
	return nil
}
