// Package object holds the steerable scene objects that interact with the cloth.
package object

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/tomz197/cloth/internal/cloth"
)

// Unit directions a controller can steer the ball in.
var (
	Forward = mgl64.Vec3{0, 0, -1}
	Back    = mgl64.Vec3{0, 0, 1}
	Right   = mgl64.Vec3{1, 0, 0}
	Left    = mgl64.Vec3{-1, 0, 0}
	Up      = mgl64.Vec3{0, 1, 0}
	Down    = mgl64.Vec3{0, -1, 0}
)

// Ball is the sphere collider plus the speed it is steered at.
type Ball struct {
	cloth.Sphere
	Speed float64 // World units per tick for a unit direction
}

// NewBall creates a ball at center.
func NewBall(center mgl64.Vec3, radius, speed float64) *Ball {
	return &Ball{
		Sphere: cloth.Sphere{Center: center, Radius: radius},
		Speed:  speed,
	}
}

// Move offsets the ball along dir scaled by Speed. dir is not normalized,
// so combined directions move faster, matching held-down key combos.
func (b *Ball) Move(dir mgl64.Vec3) {
	if dir == (mgl64.Vec3{}) {
		return
	}
	b.Center = b.Center.Add(dir.Mul(b.Speed))
}

// Sweeper steers the ball back and forth along an axis when nothing else
// controls it.
type Sweeper struct {
	Axis        mgl64.Vec3 // Unit direction of travel
	Amplitude   float64    // Distance each side of the start point
	PeriodTicks int        // Ticks for a full cycle

	tick int
}

// Next returns the direction, already scaled for a ball of the given
// speed, that keeps the ball on the sinusoidal path for one more tick.
func (s *Sweeper) Next(speed float64) mgl64.Vec3 {
	if s.PeriodTicks <= 0 || speed == 0 {
		return mgl64.Vec3{}
	}
	phase := func(t int) float64 {
		return s.Amplitude * math.Sin(2*math.Pi*float64(t)/float64(s.PeriodTicks))
	}
	delta := phase(s.tick+1) - phase(s.tick)
	s.tick++
	return s.Axis.Mul(delta / speed)
}
