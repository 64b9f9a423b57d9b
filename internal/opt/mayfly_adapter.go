package opt

import (
	"fmt"
	"math/rand"

	"github.com/cwbudde/mayfly"
)

// MayflyAdapter wraps the external Mayfly library to conform to our Optimizer interface
type MayflyAdapter struct {
	maxIters int
	popSize  int
	seed     int64
}

// NewMayfly creates a new Mayfly optimizer adapter
func NewMayfly(maxIters, popSize int, seed int64) *MayflyAdapter {
	return &MayflyAdapter{
		maxIters: maxIters,
		popSize:  popSize,
		seed:     seed,
	}
}

func (m *MayflyAdapter) Name() string { return "mayfly" }

// Run executes the Mayfly optimization. The library takes scalar bounds, so
// the bounds of dimension 0 apply to every dimension.
func (m *MayflyAdapter) Run(eval func([]float64) float64, lower, upper []float64, dim int) ([]float64, float64, error) {
	if dim <= 0 || len(lower) == 0 || len(upper) == 0 {
		return nil, 0, fmt.Errorf("invalid problem: dim=%d, %d lower bounds, %d upper bounds", dim, len(lower), len(upper))
	}
	if m.popSize <= 0 {
		return nil, 0, fmt.Errorf("population size must be positive, got %d", m.popSize)
	}

	config := mayfly.NewDefaultConfig()
	config.ObjectiveFunc = eval
	config.ProblemSize = dim
	config.MaxIterations = m.maxIters
	// Mating pairs males[k] with females[k] for k < NC/2, so both
	// populations and the offspring count have to follow popSize.
	config.NPop = m.popSize
	config.NPopF = m.popSize
	config.NC = m.popSize - m.popSize%2
	config.LowerBound = lower[0]
	config.UpperBound = upper[0]
	config.Rand = rand.New(rand.NewSource(m.seed))

	result, err := mayfly.Optimize(config)
	if err != nil {
		return nil, 0, fmt.Errorf("mayfly optimization failed: %w", err)
	}

	return result.GlobalBest.Position, result.GlobalBest.Cost, nil
}
