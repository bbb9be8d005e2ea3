package cloth

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/tomz197/cloth/internal/physics"
)

// Particle is a unit point mass advanced with Verlet integration.
// Velocity is never stored; it is implied by Position - OldPosition.
type Particle struct {
	Position     mgl64.Vec3
	OldPosition  mgl64.Vec3 // Position accepted on the previous step
	Acceleration mgl64.Vec3 // Forces accumulated for the current step (mass = 1)
	Movable      bool       // Pinned particles never move
	Normal       mgl64.Vec3 // Accumulated shading normal, not normalized
}

// NewParticle creates a movable particle at rest at pos.
func NewParticle(pos mgl64.Vec3) Particle {
	return Particle{
		Position:    pos,
		OldPosition: pos,
		Movable:     true,
	}
}

// AddForce accumulates f into the particle's acceleration.
func (p *Particle) AddForce(f mgl64.Vec3) {
	p.Acceleration = p.Acceleration.Add(f)
}

// Integrate performs one Verlet step and clears the accumulated acceleration.
// damping models air resistance; dt2 plays the role of the squared timestep.
func (p *Particle) Integrate(damping, dt2 float64) {
	if !p.Movable {
		return
	}
	prev := p.Position
	velocity := p.Position.Sub(p.OldPosition).Mul(1 - damping)
	p.Position = p.Position.Add(velocity).Add(p.Acceleration.Mul(dt2))
	p.OldPosition = prev
	p.Acceleration = mgl64.Vec3{}
}

// ApplyOffset displaces a movable particle directly, bypassing forces.
func (p *Particle) ApplyOffset(o mgl64.Vec3) {
	if !p.Movable {
		return
	}
	p.Position = p.Position.Add(o)
}

// AccumulateNormal adds the unit direction of n to the shading normal.
func (p *Particle) AccumulateNormal(n mgl64.Vec3) {
	p.Normal = p.Normal.Add(physics.Normalize(n))
}
