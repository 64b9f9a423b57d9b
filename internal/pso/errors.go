package pso

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyRun is returned when Run is called on a swarm that has
	// already been run.
	ErrAlreadyRun = errors.New("swarm has already been run")

	// ErrNonFiniteObjective is returned when the objective yields NaN or an
	// infinity. Use errors.Is to detect it through an *EvaluationError.
	ErrNonFiniteObjective = errors.New("objective returned a non-finite value")

	// ErrNilRand is returned when a nil random source is injected.
	ErrNilRand = errors.New("random source is nil")
)

// ValidationError reports an invalid configuration field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}

// EvaluationError identifies where a non-finite objective value was seen.
// Iteration is 1-indexed; 0 means particle construction.
type EvaluationError struct {
	Iteration int
	Particle  int
	Position  []float64
	Value     float64
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("iteration %d, particle %d: objective(%v) = %v: %v",
		e.Iteration, e.Particle+1, e.Position, e.Value, ErrNonFiniteObjective)
}

func (e *EvaluationError) Unwrap() error {
	return ErrNonFiniteObjective
}
