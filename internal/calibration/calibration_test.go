// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package calibration

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/relabs-tech/digital_streetart/internal/geom"
	"github.com/relabs-tech/digital_streetart/internal/monitoring"
	"github.com/relabs-tech/digital_streetart/internal/orientation"
	"github.com/relabs-tech/digital_streetart/internal/remap"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

type recorder struct{ prompts []string }

func (r *recorder) ShowPrompt(text string) { r.prompts = append(r.prompts, text) }

type fixture struct {
	ctrl    *Controller
	remap   *remap.Remapper
	cal     *Calibration
	prompts *recorder
}

func newFixture(t *testing.T, mode Mode) *fixture {
	t.Helper()
	monitoring.SetLogger(t.Logf)
	t.Cleanup(func() { monitoring.SetLogger(nil) })

	r, err := remap.New(remap.ReferenceFrame{
		BottomLeftPhysical: r3.Vec{X: -1, Y: -1},
		TopRightPhysical:   r3.Vec{X: 1, Y: 1},
		TopRightVirtual:    r3.Vec{X: 1, Y: 1},
	}, remap.Planar)
	require.NoError(t, err)

	plane, err := geom.NewPlane(r3.Vec{}, r3.Vec{Z: -1})
	require.NoError(t, err)
	cal := NewCalibration(plane)
	rec := &recorder{}
	ctrl, err := NewController(mode, r, cal, rec)
	require.NoError(t, err)
	return &fixture{ctrl: ctrl, remap: r, cal: cal, prompts: rec}
}

func at(x, y, z float64) orientation.Pose {
	return orientation.Pose{Position: r3.Vec{X: x, Y: y, Z: z}, Orientation: geom.Identity}
}

func TestPlaneCycle(t *testing.T) {
	f := newFixture(t, Plane)
	aim := r3.Unit(r3.Vec{X: 1, Z: 1})
	upright := orientation.Pose{Position: r3.Vec{X: 9, Y: 9, Z: 9}, Orientation: geom.LookRotation(aim, geom.Up)}

	steps := []struct {
		pose orientation.Pose
		want State
	}{
		{at(5, 5, 5), AwaitingBottomLeft},
		{at(-0.6, 1.4, 0), AwaitingTopRight},
		{at(0.3, 2.0, 0), AwaitingUprightPose},
		{upright, Idle},
	}
	for i, s := range steps {
		got, err := f.ctrl.Trigger(uint64(i+1), s.pose)
		require.NoError(t, err)
		assert.Equal(t, s.want, got, "step %d", i)
	}

	assert.Equal(t, []string{PromptBottomLeft, PromptTopRight, PromptUpright, ""}, f.prompts.prompts)
	assert.Equal(t, 1, f.cal.Cycles)

	frame := f.remap.Frame()
	assert.Equal(t, r3.Vec{X: -0.6, Y: 1.4}, frame.BottomLeftPhysical, "the announcement step captures nothing")
	assert.Equal(t, r3.Vec{X: 0.3, Y: 2.0}, frame.TopRightPhysical)

	corrected := f.cal.Correct(upright.Orientation)
	if diff := cmp.Diff(geom.Forward, geom.ForwardOf(corrected), approx); diff != "" {
		t.Errorf("corrected aim (-want +got):\n%s", diff)
	}
}

func TestTriggerDeduplicatedPerFrame(t *testing.T) {
	f := newFixture(t, Plane)
	for i := 0; i < 5; i++ {
		got, err := f.ctrl.Trigger(7, at(0, 0, 0))
		require.NoError(t, err)
		assert.Equal(t, AwaitingBottomLeft, got)
	}
	got, _ := f.ctrl.Trigger(8, at(0, 0, 0))
	assert.Equal(t, AwaitingTopRight, got)
}

func TestDegenerateTopRightIsRejected(t *testing.T) {
	f := newFixture(t, Plane)
	before := f.remap.Frame()
	f.ctrl.Trigger(1, at(0, 0, 0))
	f.ctrl.Trigger(2, at(0.5, 1, 0))

	got, err := f.ctrl.Trigger(3, at(0.5, 2, 0))
	assert.ErrorIs(t, err, ErrDegenerateCapture)
	assert.ErrorIs(t, err, remap.ErrDegenerateSpan)
	assert.Equal(t, AwaitingTopRight, got)
	assert.Equal(t, PromptTopRight, f.prompts.prompts[len(f.prompts.prompts)-1], "re-prompted")
	assert.Equal(t, before, f.remap.Frame())

	got, err = f.ctrl.Trigger(4, at(1, 2, 0))
	require.NoError(t, err)
	assert.Equal(t, AwaitingUprightPose, got)
}

func TestResetDiscardsPartialCaptures(t *testing.T) {
	f := newFixture(t, Plane)
	before := f.remap.Frame()
	f.ctrl.Trigger(1, at(0, 0, 0))
	f.ctrl.Trigger(2, at(-3, -3, 0))
	f.ctrl.Trigger(3, at(3, 3, 0))
	require.Equal(t, AwaitingUprightPose, f.ctrl.State())

	f.ctrl.Reset()
	assert.Equal(t, Idle, f.ctrl.State())
	assert.Equal(t, "", f.prompts.prompts[len(f.prompts.prompts)-1])
	assert.Equal(t, before, f.remap.Frame())
	assert.Equal(t, geom.Identity, f.cal.RotationOffset)
	assert.Zero(t, f.cal.Cycles)

	got, _ := f.ctrl.Trigger(4, at(0, 0, 0))
	assert.Equal(t, AwaitingBottomLeft, got, "a new cycle starts from the announcement")
}

func TestThreePointCycle(t *testing.T) {
	f := newFixture(t, ThreePoint)
	f.ctrl.Trigger(1, at(0, 0, 0))
	f.ctrl.Trigger(2, at(-0.6, 1.4, 0))
	got, err := f.ctrl.Trigger(3, at(0.3, 2.0, 0))
	require.NoError(t, err)
	require.Equal(t, AwaitingBottomRight, got)

	// a point on the bottom-left/top-right diagonal spans no plane
	got, err = f.ctrl.Trigger(4, at(-0.15, 1.7, 0))
	assert.ErrorIs(t, err, ErrDegenerateCapture)
	assert.Equal(t, AwaitingBottomRight, got)

	got, err = f.ctrl.Trigger(5, at(0.3, 1.4, 0))
	require.NoError(t, err)
	assert.Equal(t, Idle, got)

	if diff := cmp.Diff(r3.Vec{Z: -1}, f.cal.Plane.Normal, approx); diff != "" {
		t.Errorf("plane normal (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(geom.Forward, geom.ForwardOf(f.cal.Correct(geom.Identity)), approx); diff != "" {
		t.Errorf("offset (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{PromptBottomLeft, PromptTopRight, PromptBottomRight, PromptBottomRight, ""}, f.prompts.prompts)
}

func TestModesAgreeForTiltedHold(t *testing.T) {
	held := geom.Euler(10, 30, 5)
	hold := func(x, y, z float64) orientation.Pose {
		p := at(x, y, z)
		p.Orientation = held
		return p
	}
	sequences := map[Mode][]orientation.Pose{
		Plane:      {hold(0, 0, 0), hold(-0.6, 1.4, 0), hold(0.3, 2.0, 0), hold(0, 1.7, -1)},
		ThreePoint: {hold(0, 0, 0), hold(-0.6, 1.4, 0), hold(0.3, 2.0, 0), hold(0.3, 1.4, 0)},
	}
	for mode, poses := range sequences {
		t.Run(string(mode), func(t *testing.T) {
			f := newFixture(t, mode)
			for i, p := range poses {
				_, err := f.ctrl.Trigger(uint64(i+1), p)
				require.NoError(t, err)
			}
			require.Equal(t, Idle, f.ctrl.State())
			require.Equal(t, 1, f.cal.Cycles)

			if diff := cmp.Diff(geom.Forward, geom.ForwardOf(f.cal.Correct(held)), approx); diff != "" {
				t.Errorf("corrected aim (-want +got):\n%s", diff)
			}
		})
	}
}

func TestThreePointAimsIntoTiltedWall(t *testing.T) {
	f := newFixture(t, ThreePoint)
	held := geom.Euler(-20, 45, 0)
	wall := []r3.Vec{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 1}, {X: 1, Y: 0, Z: 1}}
	_, err := f.ctrl.Trigger(1, at(0, 0, 0))
	require.NoError(t, err)
	for i, c := range wall {
		pose := at(c.X, c.Y, c.Z)
		pose.Orientation = held
		_, err := f.ctrl.Trigger(uint64(i+2), pose)
		require.NoError(t, err)
	}
	require.Equal(t, Idle, f.ctrl.State())

	inward := r3.Scale(-1, f.cal.Plane.Normal)
	if diff := cmp.Diff(inward, geom.ForwardOf(f.cal.Correct(held)), approx); diff != "" {
		t.Errorf("corrected aim (-want +got):\n%s", diff)
	}
}

func TestNewControllerValidation(t *testing.T) {
	r, err := remap.New(remap.ReferenceFrame{TopRightPhysical: r3.Vec{X: 1, Y: 1}}, remap.Planar)
	require.NoError(t, err)
	_, err = NewController("five_point", r, NewCalibration(geom.Plane{}), nil)
	assert.Error(t, err)
	_, err = NewController(Plane, nil, NewCalibration(geom.Plane{}), nil)
	assert.Error(t, err)
	c, err := NewController(Plane, r, NewCalibration(geom.Plane{}), nil)
	require.NoError(t, err)
	assert.NotPanics(t, func() { c.Trigger(1, at(0, 0, 0)) })
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "awaiting_top_right", AwaitingTopRight.String())
	assert.Equal(t, "state(42)", State(42).String())
}
