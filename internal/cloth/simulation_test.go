package cloth

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestHangingSheetStaysBounded(t *testing.T) {
	m, err := NewMesh(mgl64.Vec3{}, 3, 3, 4, 4)
	if err != nil {
		t.Fatalf("NewMesh: %v", err)
	}
	m.PinRow(0)

	sim := &Simulation{
		Mesh:    m,
		Ball:    Sphere{Center: mgl64.Vec3{0, 100, 0}, Radius: 1},
		Config:  DefaultStepConfig(),
		Gravity: mgl64.Vec3{0, -0.09, 0},
	}

	start := make([]float64, 4)
	for x := range start {
		start[x] = m.Particle(x, 3).Position[1]
	}
	top := m.Positions(nil)[:4]

	for step := 1; step <= 10; step++ {
		res := sim.Step()
		if res.Tick != step {
			t.Fatalf("tick = %d, want %d", res.Tick, step)
		}
		for x := range start {
			y := m.Particle(x, 3).Position[1]
			if y >= start[x]-0.01 {
				t.Fatalf("step %d: bottom particle %d not below rest: y=%f start=%f", step, x, y, start[x])
			}
		}
		st := m.Measure()
		if !st.Finite {
			t.Fatalf("step %d: mesh became non-finite", step)
		}
		if st.MaxStretch > 0.1 {
			t.Fatalf("step %d: max stretch %f exceeds tolerance", step, st.MaxStretch)
		}
	}

	for x := 0; x < 4; x++ {
		if m.Particle(x, 0).Position != top[x] {
			t.Fatalf("pinned particle %d moved to %v", x, m.Particle(x, 0).Position)
		}
	}
}

func TestSphereUnderFlatSheet(t *testing.T) {
	m, err := NewMesh(mgl64.Vec3{-4.5, 4.5, 0}, 10, 10, 10, 10)
	if err != nil {
		t.Fatalf("NewMesh: %v", err)
	}
	ball := Sphere{Center: mgl64.Vec3{0, 0, -0.5}, Radius: 1.5}
	sim := &Simulation{Mesh: m, Ball: ball, Config: DefaultStepConfig()}

	var inside []int
	for i, p := range m.Particles() {
		if ball.Contains(p.Position) {
			inside = append(inside, i)
		}
	}
	if len(inside) == 0 {
		t.Fatalf("test setup: no particle starts inside the ball")
	}

	res := sim.Step()
	if res.Collisions != len(inside) {
		t.Fatalf("collisions = %d, want %d", res.Collisions, len(inside))
	}
	for _, i := range inside {
		d := m.Particles()[i].Position.Sub(ball.Center).Len()
		if math.Abs(d-ball.Radius) > 1e-9 {
			t.Fatalf("particle %d: distance to center got=%f want=%f", i, d, ball.Radius)
		}
	}
}

func TestWindToggle(t *testing.T) {
	build := func(wind bool) *Simulation {
		m, err := NewMesh(mgl64.Vec3{}, 4, 4, 5, 5)
		if err != nil {
			t.Fatalf("NewMesh: %v", err)
		}
		return &Simulation{
			Mesh:        m,
			Ball:        Sphere{Center: mgl64.Vec3{0, 100, 0}, Radius: 1},
			Config:      DefaultStepConfig(),
			Wind:        mgl64.Vec3{0, 0, -0.5},
			WindEnabled: wind,
		}
	}
	calm := build(false)
	windy := build(true)
	calm.Run(3)
	windy.Run(3)

	p := calm.Mesh.Particle(2, 4)
	if p.Position[2] != 0 {
		t.Fatalf("calm sheet left its plane: z=%f", p.Position[2])
	}
	if q := windy.Mesh.Particle(2, 4); q.Position[2] >= 0 {
		t.Fatalf("wind should push the sheet towards -z, got z=%f", q.Position[2])
	}
}

func TestRunZeroSteps(t *testing.T) {
	m, _ := NewMesh(mgl64.Vec3{}, 1, 1, 2, 2)
	sim := &Simulation{Mesh: m, Config: DefaultStepConfig(), Tick: 7}
	if res := sim.Run(0); res.Tick != 7 {
		t.Fatalf("Run(0) tick = %d, want 7", res.Tick)
	}
}

func TestStepConfigValidate(t *testing.T) {
	if err := DefaultStepConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	bad := []StepConfig{
		{Damping: -0.1, TimeStep2: 0.25, Iterations: 1},
		{Damping: 1.5, TimeStep2: 0.25, Iterations: 1},
		{Damping: math.NaN(), TimeStep2: 0.25, Iterations: 1},
		{Damping: 0.01, TimeStep2: -1, Iterations: 1},
		{Damping: 0.01, TimeStep2: math.Inf(1), Iterations: 1},
		{Damping: 0.01, TimeStep2: 0.25, Iterations: -1},
		{Damping: 0.01, TimeStep2: 0.25, Iterations: 1, Workers: -2},
	}
	for _, cfg := range bad {
		if err := cfg.Validate(); err == nil {
			t.Errorf("expected %+v to be rejected", cfg)
		}
	}
}

func TestStepMatchesMeshUpdate(t *testing.T) {
	newSim := func() *Simulation {
		m, err := NewMesh(mgl64.Vec3{-2, 2, 0}, 4, 4, 6, 6)
		if err != nil {
			t.Fatalf("NewMesh: %v", err)
		}
		return &Simulation{
			Mesh:        m,
			Ball:        Sphere{Center: mgl64.Vec3{0, 0, 0.5}, Radius: 1},
			Config:      DefaultStepConfig(),
			Gravity:     mgl64.Vec3{0, -0.09, 0},
			Wind:        mgl64.Vec3{0, 0, -0.01},
			WindEnabled: true,
		}
	}

	stepped := newSim()
	manual := newSim()
	for i := 0; i < 5; i++ {
		stepped.Step()

		manual.Mesh.AddForce(manual.Gravity)
		manual.Mesh.AddWind(manual.Wind)
		manual.Mesh.Update(manual.Config)
		manual.Mesh.Collide(manual.Ball, manual.Config.Workers)
	}

	got := stepped.Mesh.Positions(nil)
	want := manual.Mesh.Positions(nil)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("particle %d: Step=%v Update=%v", i, got[i], want[i])
		}
	}
}
