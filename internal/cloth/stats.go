package cloth

import (
	"math"

	"github.com/tomz197/cloth/internal/physics"
)

// Stats summarizes the mesh shape for telemetry.
type Stats struct {
	MaxStretch  float64 // Largest |current - rest| / rest over all constraints
	MeanStretch float64 // Mean |current - rest| / rest
	LowestY     float64
	HighestY    float64
	Finite      bool // False once any position is NaN or infinite
}

// Measure computes Stats for the current particle positions.
func (m *Mesh) Measure() Stats {
	st := Stats{
		LowestY:  math.Inf(1),
		HighestY: math.Inf(-1),
		Finite:   true,
	}
	if len(m.particles) == 0 {
		st.LowestY, st.HighestY = 0, 0
	}

	for i := range m.particles {
		pos := m.particles[i].Position
		if !physics.FiniteVec(pos) {
			st.Finite = false
			continue
		}
		st.LowestY = math.Min(st.LowestY, pos[1])
		st.HighestY = math.Max(st.HighestY, pos[1])
	}

	var sum float64
	for _, c := range m.constraints {
		s := math.Abs(c.Stretch(m.particles))
		if !physics.IsFinite(s) {
			st.Finite = false
			continue
		}
		sum += s
		st.MaxStretch = math.Max(st.MaxStretch, s)
	}
	if len(m.constraints) > 0 {
		st.MeanStretch = sum / float64(len(m.constraints))
	}
	return st
}
