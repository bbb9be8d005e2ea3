package cloth

import "github.com/go-gl/mathgl/mgl64"

// Simulation advances a mesh and its sphere collider by whole fixed steps.
// It is not safe for concurrent use.
type Simulation struct {
	Mesh        *Mesh
	Ball        Sphere
	Config      StepConfig
	Gravity     mgl64.Vec3
	Wind        mgl64.Vec3
	WindEnabled bool
	Tick        int
}

// StepResult describes one completed step.
type StepResult struct {
	Tick       int
	Collisions int // Particles pushed out of the ball
}

// Step runs forces, relaxation, integration and collision, in that order.
// Collision corrections are not re-relaxed until the next step.
func (s *Simulation) Step() StepResult {
	s.Mesh.AddForce(s.Gravity)
	if s.WindEnabled {
		s.Mesh.AddWind(s.Wind)
	}
	s.Mesh.Update(s.Config)
	hits := s.Mesh.Collide(s.Ball, s.Config.Workers)
	s.Tick++
	return StepResult{Tick: s.Tick, Collisions: hits}
}

// Run performs n steps and returns the result of the last one.
func (s *Simulation) Run(n int) StepResult {
	res := StepResult{Tick: s.Tick}
	for i := 0; i < n; i++ {
		res = s.Step()
	}
	return res
}
