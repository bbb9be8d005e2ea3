package cloth

import "github.com/tomz197/cloth/internal/physics"

// Constraint keeps two particles of a mesh at a fixed distance.
// A and B index into the owning mesh's particle slice; the constraint
// never holds pointers so particles can be shared by many constraints.
type Constraint struct {
	A, B         int
	RestDistance float64
}

// NewConstraint captures the current distance between particles a and b
// as the rest distance.
func NewConstraint(particles []Particle, a, b int) Constraint {
	return Constraint{
		A:            a,
		B:            b,
		RestDistance: physics.Distance(particles[a].Position, particles[b].Position),
	}
}

// Satisfy moves both endpoints half of the way towards the rest distance.
// Coincident endpoints have no defined direction and are left untouched.
func (c Constraint) Satisfy(particles []Particle) {
	p1 := &particles[c.A]
	p2 := &particles[c.B]

	delta := p2.Position.Sub(p1.Position)
	dist := delta.Len()
	if dist == 0 || !physics.IsFinite(dist) {
		return
	}

	correction := delta.Mul(1 - c.RestDistance/dist)
	p1.ApplyOffset(correction.Mul(0.5))
	p2.ApplyOffset(correction.Mul(-0.5))
}

// Stretch returns the relative length error (current - rest) / rest.
func (c Constraint) Stretch(particles []Particle) float64 {
	if c.RestDistance == 0 {
		return 0
	}
	dist := physics.Distance(particles[c.A].Position, particles[c.B].Position)
	return (dist - c.RestDistance) / c.RestDistance
}
