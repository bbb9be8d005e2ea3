package cloth

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/tomz197/cloth/internal/physics"
)

func TestSatisfyReducesErrorAndKeepsMidpoint(t *testing.T) {
	ps := []Particle{
		NewParticle(mgl64.Vec3{0, 0, 0}),
		NewParticle(mgl64.Vec3{1, 0, 0}),
	}
	c := NewConstraint(ps, 0, 1)

	ps[1].Position = mgl64.Vec3{3, 1, 0}
	mid0 := ps[0].Position.Add(ps[1].Position).Mul(0.5)
	err0 := math.Abs(ps[1].Position.Sub(ps[0].Position).Len() - c.RestDistance)

	c.Satisfy(ps)

	mid1 := ps[0].Position.Add(ps[1].Position).Mul(0.5)
	err1 := math.Abs(ps[1].Position.Sub(ps[0].Position).Len() - c.RestDistance)
	if err1 >= err0 {
		t.Fatalf("distance error did not shrink: before=%f after=%f", err0, err1)
	}
	if !mid0.ApproxEqualThreshold(mid1, 1e-12) {
		t.Fatalf("midpoint moved: before=%v after=%v", mid0, mid1)
	}
}

func TestSatisfyIsIdempotentOnceConverged(t *testing.T) {
	ps := []Particle{
		NewParticle(mgl64.Vec3{0, 0, 0}),
		NewParticle(mgl64.Vec3{2, 0, 0}),
	}
	c := NewConstraint(ps, 0, 1)
	ps[1].Position = mgl64.Vec3{5, 0, 0}

	c.Satisfy(ps)
	a, b := ps[0].Position, ps[1].Position
	c.Satisfy(ps)

	if !ps[0].Position.ApproxEqualThreshold(a, 1e-12) || !ps[1].Position.ApproxEqualThreshold(b, 1e-12) {
		t.Fatalf("second satisfy moved a converged pair: %v %v -> %v %v", a, b, ps[0].Position, ps[1].Position)
	}
}

func TestRelaxationConvergesMonotonically(t *testing.T) {
	// Three particles hanging from a pin with both links stretched. Each
	// extra pass must not increase the total error.
	build := func() []Particle {
		ps := []Particle{
			NewParticle(mgl64.Vec3{0, 0, 0}),
			NewParticle(mgl64.Vec3{0, -1, 0}),
			NewParticle(mgl64.Vec3{0, -2, 0}),
		}
		ps[0].Movable = false
		return ps
	}
	ref := build()
	cs := []Constraint{NewConstraint(ref, 0, 1), NewConstraint(ref, 1, 2)}

	totalErr := func(ps []Particle) float64 {
		var sum float64
		for _, c := range cs {
			sum += math.Abs(ps[c.B].Position.Sub(ps[c.A].Position).Len() - c.RestDistance)
		}
		return sum
	}

	prev := math.Inf(1)
	for iters := 0; iters <= 100; iters++ {
		ps := build()
		ps[1].Position = mgl64.Vec3{0, -1.5, 0}
		ps[2].Position = mgl64.Vec3{0, -4, 0}
		for i := 0; i < iters; i++ {
			for _, c := range cs {
				c.Satisfy(ps)
			}
		}
		e := totalErr(ps)
		if e > prev+1e-12 {
			t.Fatalf("error grew with more iterations: iters=%d err=%f prev=%f", iters, e, prev)
		}
		prev = e
	}
	if prev > 1e-6 {
		t.Fatalf("expected convergence after 100 passes, residual=%g", prev)
	}
}

func TestSatisfyWithPinnedEndpoint(t *testing.T) {
	ps := []Particle{
		NewParticle(mgl64.Vec3{0, 0, 0}),
		NewParticle(mgl64.Vec3{1, 0, 0}),
	}
	c := NewConstraint(ps, 0, 1)
	ps[0].Movable = false
	ps[1].Position = mgl64.Vec3{2, 0, 0}

	c.Satisfy(ps)

	if ps[0].Position != (mgl64.Vec3{}) {
		t.Fatalf("pinned endpoint moved to %v", ps[0].Position)
	}
	if math.Abs(ps[1].Position[0]-1.5) > 1e-12 {
		t.Fatalf("free endpoint: got=%f want=%f", ps[1].Position[0], 1.5)
	}
}

func TestSatisfyCoincidentParticlesIsNoop(t *testing.T) {
	ps := []Particle{
		NewParticle(mgl64.Vec3{0, 0, 0}),
		NewParticle(mgl64.Vec3{1, 0, 0}),
	}
	c := NewConstraint(ps, 0, 1)
	ps[1].Position = ps[0].Position

	c.Satisfy(ps)

	for i, p := range ps {
		if !physics.FiniteVec(p.Position) {
			t.Fatalf("particle %d poisoned: %v", i, p.Position)
		}
		if p.Position != (mgl64.Vec3{}) {
			t.Fatalf("particle %d moved to %v", i, p.Position)
		}
	}
}

func TestStretch(t *testing.T) {
	ps := []Particle{
		NewParticle(mgl64.Vec3{0, 0, 0}),
		NewParticle(mgl64.Vec3{2, 0, 0}),
	}
	c := NewConstraint(ps, 0, 1)
	ps[1].Position = mgl64.Vec3{3, 0, 0}
	if got := c.Stretch(ps); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("stretch: got=%f want=%f", got, 0.5)
	}
	if got := (Constraint{A: 0, B: 1}).Stretch(ps); got != 0 {
		t.Fatalf("zero rest distance stretch = %f, want 0", got)
	}
}

func TestNewConstraintCapturesRestDistance(t *testing.T) {
	ps := []Particle{
		NewParticle(mgl64.Vec3{1, 1, 1}),
		NewParticle(mgl64.Vec3{4, 5, 1}),
	}
	c := NewConstraint(ps, 0, 1)
	if c.RestDistance != 5 {
		t.Fatalf("rest distance: got=%f want=%f", c.RestDistance, 5.0)
	}
	if got := c.Stretch(ps); got != 0 {
		t.Fatalf("stretch at rest = %f, want 0", got)
	}
}
