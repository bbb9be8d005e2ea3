package cloth

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/tomz197/cloth/internal/physics"
)

// Sphere is a rigid spherical collider. It is moved externally between steps.
type Sphere struct {
	Center mgl64.Vec3
	Radius float64
}

// Resolve projects p onto the sphere surface when it lies inside or on it.
// It reports whether the particle was moved. A particle exactly at the
// center has no push direction and is skipped.
func (s Sphere) Resolve(p *Particle) bool {
	if !p.Movable {
		return false
	}
	v := p.Position.Sub(s.Center)
	l := v.Len()
	if l > s.Radius || l == 0 {
		return false
	}
	p.ApplyOffset(v.Mul((s.Radius - l) / l))
	return true
}

// Contains reports whether point lies strictly inside the sphere.
func (s Sphere) Contains(point mgl64.Vec3) bool {
	return physics.PointInSphere(point, s.Center, s.Radius)
}
