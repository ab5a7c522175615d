// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package spray casts a randomized cone of rays from the stabilized device
// pose and splats paint where they hit a paintable surface.
package spray

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/relabs-tech/digital_streetart/internal/geom"
	"github.com/relabs-tech/digital_streetart/internal/orientation"
	"github.com/relabs-tech/digital_streetart/internal/raster"
)

// Hit is a raycast result. Surface is nil when the hit object carries no
// paintable raster.
type Hit struct {
	Point r3.Vec
	// U and V are texture coordinates in [0,1], V growing upwards.
	U, V    float64
	Surface raster.Surface
}

// Raycaster resolves rays against scene geometry.
type Raycaster interface {
	Raycast(ray geom.Ray) (Hit, bool)
}

// Config holds the spray tuning. Angles are in degrees, radii in pixels.
type Config struct {
	MaxSprayAngle    float64
	FadeOutAngle     float64
	MinSplashRadius  float64
	MaxSplashRadius  float64
	RaysPerTick      int
	TriggerThreshold float64
	Color            color.RGBA
}

// DefaultConfig returns the rig's spray tuning.
func DefaultConfig() Config {
	return Config{
		MaxSprayAngle:    2,
		FadeOutAngle:     1,
		MinSplashRadius:  1,
		MaxSplashRadius:  4,
		RaysPerTick:      5,
		TriggerThreshold: 0.95,
		Color:            color.RGBA{R: 255, A: 255},
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.RaysPerTick < 1:
		return fmt.Errorf("spray: rays per tick must be at least 1, got %d", c.RaysPerTick)
	case c.MaxSprayAngle < 0 || c.FadeOutAngle < 0:
		return fmt.Errorf("spray: angles must not be negative (max %g, fade %g)", c.MaxSprayAngle, c.FadeOutAngle)
	case c.MaxSprayAngle+c.FadeOutAngle <= 0:
		return errors.New("spray: cone has no opening angle")
	case c.MaxSprayAngle+c.FadeOutAngle >= 90:
		return fmt.Errorf("spray: cone angle %g must stay below 90 degrees", c.MaxSprayAngle+c.FadeOutAngle)
	case c.MinSplashRadius < 0 || c.MaxSplashRadius < c.MinSplashRadius:
		return fmt.Errorf("spray: splash radius range [%g, %g] is invalid", c.MinSplashRadius, c.MaxSplashRadius)
	case c.TriggerThreshold <= 0 || c.TriggerThreshold > 1:
		return fmt.Errorf("spray: trigger threshold %g outside (0,1]", c.TriggerThreshold)
	}
	return nil
}

// ReferenceMaxAngle is the widest cone angle a ray can be drawn with.
func (c Config) ReferenceMaxAngle() float64 {
	return c.MaxSprayAngle + c.FadeOutAngle
}

// SplashRadius maps an angle in [0, referenceMaxAngle] linearly onto
// [minRadius, maxRadius].
func SplashRadius(angle, referenceMaxAngle, minRadius, maxRadius float64) float64 {
	return geom.Remap(angle, 0, referenceMaxAngle, minRadius, maxRadius)
}

// Ray is one sampled spray ray.
type Ray struct {
	Origin       orientation.Pose
	Offset       quat.Number
	MaxConeAngle float64
}

// Direction is the world direction of the ray.
func (r Ray) Direction() r3.Vec {
	return geom.ForwardOf(quat.Mul(r.Origin.Orientation, r.Offset))
}

// Stats summarizes one tick.
type Stats struct {
	Active  bool `json:"active"`
	Rays    int  `json:"rays"`
	Splats  int  `json:"splats"`
	Commits int  `json:"commits"`
}

// Painter sprays onto the surfaces of a scene. It is driven from the
// fixed tick and is the only writer of the surfaces it paints.
type Painter struct {
	cfg   Config
	scene Raycaster
	rng   *rand.Rand
	color color.RGBA

	touched []raster.Surface
}

// New returns a painter. rng makes the spray pattern reproducible.
func New(cfg Config, scene Raycaster, rng *rand.Rand) (*Painter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if scene == nil {
		return nil, errors.New("spray: raycaster is required")
	}
	if rng == nil {
		return nil, errors.New("spray: random source is required")
	}
	return &Painter{cfg: cfg, scene: scene, rng: rng, color: cfg.Color}, nil
}

// SetColor changes the paint color for subsequent splats.
func (p *Painter) SetColor(c color.RGBA) { p.color = c }

// Color returns the current paint color.
func (p *Painter) Color() color.RGBA { return p.color }

// Tick sprays once if the trigger is fully pressed.
func (p *Painter) Tick(trigger float64, pose orientation.Pose) Stats {
	var st Stats
	if trigger <= p.cfg.TriggerThreshold {
		return st
	}
	forward := pose.Forward()
	aim, ok := p.scene.Raycast(geom.Ray{Origin: pose.Position, Direction: forward})
	if !ok || aim.Surface == nil {
		return st
	}
	st.Active = true

	p.touched = p.touched[:0]
	ref := p.cfg.ReferenceMaxAngle()
	for i := 0; i < p.cfg.RaysPerTick; i++ {
		ray := p.sample(pose)
		dir := ray.Direction()
		st.Rays++

		hit, ok := p.scene.Raycast(geom.Ray{Origin: pose.Position, Direction: dir})
		if !ok || hit.Surface == nil {
			continue
		}
		x, y := TexelOf(hit)
		// closer to the aim line means a bigger splat
		cone := geom.Clamp(geom.AngleBetween(forward, dir), 0, ref)
		r := SplashRadius(ref-cone, ref, p.cfg.MinSplashRadius, p.cfg.MaxSplashRadius)
		raster.DrawCircle(hit.Surface, p.color, x, y, int(math.Round(r)))
		st.Splats++
		p.touch(hit.Surface)
	}

	for _, s := range p.touched {
		s.Commit()
		st.Commits++
	}
	return st
}

// sample draws one ray: the cone half-angle is uniform in
// [max, max+fade] and each local axis is rotated by an independent
// uniform angle within it.
func (p *Painter) sample(pose orientation.Pose) Ray {
	maxAngle := p.cfg.MaxSprayAngle + p.rng.Float64()*p.cfg.FadeOutAngle
	u := func() float64 { return (p.rng.Float64()*2 - 1) * maxAngle }
	return Ray{
		Origin:       pose,
		Offset:       geom.Euler(u(), u(), u()),
		MaxConeAngle: maxAngle,
	}
}

func (p *Painter) touch(s raster.Surface) {
	for _, t := range p.touched {
		if t == s {
			return
		}
	}
	p.touched = append(p.touched, s)
}

// TexelOf converts the hit's texture coordinate into a pixel clamped to
// the surface bounds.
func TexelOf(h Hit) (int, int) {
	w, ht := h.Surface.Width(), h.Surface.Height()
	x := geom.ClampInt(int(math.Floor(h.U*float64(w))), 0, w-1)
	y := geom.ClampInt(int(math.Floor(h.V*float64(ht))), 0, ht-1)
	return x, y
}
