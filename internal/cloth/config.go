package cloth

import (
	"errors"
	"fmt"

	"github.com/tomz197/cloth/internal/physics"
)

// ErrInvalidConfig is returned when a StepConfig cannot drive a stable step.
var ErrInvalidConfig = errors.New("cloth: invalid step config")

// StepConfig holds the per-step tunables. It is passed to every step so
// runs with different settings stay independent and reproducible.
type StepConfig struct {
	Damping    float64 // Fraction of implicit velocity removed per step, in [0, 1]
	TimeStep2  float64 // Scale applied to accumulated acceleration
	Iterations int     // Constraint relaxation passes per step
	Workers    int     // Goroutines for per-particle passes; <= 1 runs inline
}

// DefaultStepConfig returns the settings the drivers use unless overridden.
func DefaultStepConfig() StepConfig {
	return StepConfig{
		Damping:    0.01,
		TimeStep2:  0.25,
		Iterations: 30,
		Workers:    1,
	}
}

// Validate checks the ranges that keep the integrator meaningful.
func (c StepConfig) Validate() error {
	switch {
	case !physics.IsFinite(c.Damping) || c.Damping < 0 || c.Damping > 1:
		return fmt.Errorf("%w: damping %v outside [0, 1]", ErrInvalidConfig, c.Damping)
	case !physics.IsFinite(c.TimeStep2) || c.TimeStep2 < 0:
		return fmt.Errorf("%w: timestep2 %v must be finite and >= 0", ErrInvalidConfig, c.TimeStep2)
	case c.Iterations < 0:
		return fmt.Errorf("%w: iterations %d must be >= 0", ErrInvalidConfig, c.Iterations)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers %d must be >= 0", ErrInvalidConfig, c.Workers)
	}
	return nil
}
