package cloth

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestIntegrateAppliesForceAndInertia(t *testing.T) {
	p := NewParticle(mgl64.Vec3{})
	p.AddForce(mgl64.Vec3{1, 0, 0})
	p.Integrate(0, 0.5)

	if p.Position != (mgl64.Vec3{0.5, 0, 0}) {
		t.Fatalf("position after first step = %v, want [0.5 0 0]", p.Position)
	}
	if p.OldPosition != (mgl64.Vec3{}) {
		t.Fatalf("old position = %v, want origin", p.OldPosition)
	}
	if p.Acceleration != (mgl64.Vec3{}) {
		t.Fatalf("acceleration not cleared: %v", p.Acceleration)
	}

	p.Integrate(0, 0.5)
	if p.Position != (mgl64.Vec3{1, 0, 0}) {
		t.Fatalf("expected inertia to carry particle to [1 0 0], got %v", p.Position)
	}
}

func TestIntegrateDampsVelocity(t *testing.T) {
	p := NewParticle(mgl64.Vec3{})
	p.OldPosition = mgl64.Vec3{-1, 0, 0}
	p.Integrate(0.1, 1)

	if math.Abs(p.Position[0]-0.9) > 1e-12 {
		t.Fatalf("damped position: got=%f want=%f", p.Position[0], 0.9)
	}
}

func TestAddForceAccumulates(t *testing.T) {
	p := NewParticle(mgl64.Vec3{})
	p.AddForce(mgl64.Vec3{0, -1, 0})
	p.AddForce(mgl64.Vec3{0, -1, 2})
	if p.Acceleration != (mgl64.Vec3{0, -2, 2}) {
		t.Fatalf("acceleration = %v, want [0 -2 2]", p.Acceleration)
	}
}

func TestImmovableParticleNeverMoves(t *testing.T) {
	start := mgl64.Vec3{0.1, 0.2, 0.3}
	p := NewParticle(start)
	p.Movable = false
	p.OldPosition = mgl64.Vec3{5, 5, 5}

	ball := Sphere{Center: start, Radius: 10}
	for i := 0; i < 50; i++ {
		p.AddForce(mgl64.Vec3{0, -9.8, 0})
		p.Integrate(0.01, 0.25)
		p.ApplyOffset(mgl64.Vec3{1, 1, 1})
		ball.Resolve(&p)
	}

	if p.Position != start {
		t.Fatalf("pinned particle moved: got=%v want=%v", p.Position, start)
	}
}

func TestAccumulateNormalIgnoresZero(t *testing.T) {
	p := NewParticle(mgl64.Vec3{})
	p.AccumulateNormal(mgl64.Vec3{})
	p.AccumulateNormal(mgl64.Vec3{0, 0, 4})
	if p.Normal != (mgl64.Vec3{0, 0, 1}) {
		t.Fatalf("normal = %v, want [0 0 1]", p.Normal)
	}
}
