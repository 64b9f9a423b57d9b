package opt

import (
	"fmt"

	"github.com/cwbudde/psoswarm/internal/pso"
)

// PSOAdapter runs the swarm optimizer behind the Optimizer interface.
type PSOAdapter struct {
	iters     int
	particles int
	c1, c2    float64
	seed      int64
}

// NewPSO creates a swarm optimizer adapter.
func NewPSO(iters, particles int, c1, c2 float64, seed int64) *PSOAdapter {
	return &PSOAdapter{
		iters:     iters,
		particles: particles,
		c1:        c1,
		c2:        c2,
		seed:      seed,
	}
}

func (p *PSOAdapter) Name() string { return "pso" }

// Run executes one swarm. Like the Mayfly adapter it uses the bounds of
// dimension 0 for every dimension.
func (p *PSOAdapter) Run(eval func([]float64) float64, lower, upper []float64, dim int) ([]float64, float64, error) {
	if dim <= 0 || len(lower) == 0 || len(upper) == 0 {
		return nil, 0, fmt.Errorf("invalid problem: dim=%d, %d lower bounds, %d upper bounds", dim, len(lower), len(upper))
	}

	cfg := pso.Config{
		Dimension:  dim,
		Lower:      lower[0],
		Upper:      upper[0],
		Particles:  p.particles,
		Iterations: p.iters,
		C1:         p.c1,
		C2:         p.c2,
		Seed:       p.seed,
	}

	swarm, err := pso.New(cfg, eval)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build swarm: %w", err)
	}

	res, err := swarm.Run()
	if err != nil {
		return nil, 0, fmt.Errorf("swarm run failed: %w", err)
	}
	return res.Position, res.Value, nil
}
