package pso

import (
	"fmt"
	"math"
)

// InertiaWeight scales a particle's previous velocity in the update rule.
const InertiaWeight = 0.5

// Config holds the construction-time parameters of a swarm run.
// Bounds are scalars broadcast across every dimension.
type Config struct {
	Dimension  int     `json:"dimension"`
	Lower      float64 `json:"lower"`
	Upper      float64 `json:"upper"`
	Particles  int     `json:"particles"`
	Iterations int     `json:"iterations"`
	C1         float64 `json:"c1"` // cognitive coefficient
	C2         float64 `json:"c2"` // social coefficient
	Seed       int64   `json:"seed"`
}

// DefaultConfig returns the reference configuration: a 2-D search over
// [-10, 10] with 10 particles for 100 iterations.
func DefaultConfig() Config {
	return Config{
		Dimension:  2,
		Lower:      -10,
		Upper:      10,
		Particles:  10,
		Iterations: 100,
		C1:         1,
		C2:         0.5,
		Seed:       42,
	}
}

// Validate checks that the configuration describes a runnable swarm.
func (c Config) Validate() error {
	if c.Dimension <= 0 {
		return &ValidationError{Field: "Dimension", Reason: "must be positive"}
	}
	if math.IsNaN(c.Lower) || math.IsInf(c.Lower, 0) {
		return &ValidationError{Field: "Lower", Reason: "must be finite"}
	}
	if math.IsNaN(c.Upper) || math.IsInf(c.Upper, 0) {
		return &ValidationError{Field: "Upper", Reason: "must be finite"}
	}
	if c.Lower >= c.Upper {
		return &ValidationError{
			Field:  "Lower",
			Reason: fmt.Sprintf("must be less than Upper (got %g >= %g)", c.Lower, c.Upper),
		}
	}
	if c.Particles <= 0 {
		return &ValidationError{Field: "Particles", Reason: "must be positive"}
	}
	if c.Iterations <= 0 {
		return &ValidationError{Field: "Iterations", Reason: "must be positive"}
	}
	if c.C1 < 0 || math.IsNaN(c.C1) || math.IsInf(c.C1, 0) {
		return &ValidationError{Field: "C1", Reason: "must be finite and non-negative"}
	}
	if c.C2 < 0 || math.IsNaN(c.C2) || math.IsInf(c.C2, 0) {
		return &ValidationError{Field: "C2", Reason: "must be finite and non-negative"}
	}
	return nil
}
