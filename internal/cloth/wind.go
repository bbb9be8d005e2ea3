package cloth

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/tomz197/cloth/internal/physics"
)

// WindForce returns the force wind exerts on a triangle with the given
// (unnormalized) normal. Faces edge-on to the wind receive nothing.
func WindForce(normal, wind mgl64.Vec3) mgl64.Vec3 {
	n := physics.Normalize(normal)
	return n.Mul(n.Dot(wind))
}

// AddWindToTriangle adds the same wind force to all three particles.
func AddWindToTriangle(a, b, c *Particle, wind mgl64.Vec3) {
	force := WindForce(TriangleNormal(a.Position, b.Position, c.Position), wind)
	a.AddForce(force)
	b.AddForce(force)
	c.AddForce(force)
}

// AddWind applies wind to both triangles of every quad. Triangles share
// particles, so this pass runs sequentially.
func (m *Mesh) AddWind(wind mgl64.Vec3) {
	m.forEachTriangle(func(a, b, c int) {
		AddWindToTriangle(&m.particles[a], &m.particles[b], &m.particles[c], wind)
	})
}
