package opt

import (
	"math"
	"testing"

	"github.com/cwbudde/psoswarm/internal/objective"
)

func box(dim int, lo, hi float64) ([]float64, []float64) {
	lower := make([]float64, dim)
	upper := make([]float64, dim)
	for i := 0; i < dim; i++ {
		lower[i] = lo
		upper[i] = hi
	}
	return lower, upper
}

func TestOptimizersOnSphere(t *testing.T) {
	optimizers := []Optimizer{
		NewPSO(200, 30, 1.5, 1.5, 42),
		NewMayfly(100, 20, 42),
	}

	dim := 3
	lower, upper := box(dim, -10, 10)
	sphere := objective.Sphere{}

	for _, o := range optimizers {
		t.Run(o.Name(), func(t *testing.T) {
			best, cost, err := o.Run(sphere.Eval, lower, upper, dim)
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}

			if len(best) != dim {
				t.Fatalf("Expected %d parameters, got %d", dim, len(best))
			}

			if cost > 0.1 {
				t.Errorf("Expected cost near 0, got %f", cost)
			}

			for i, v := range best {
				if math.Abs(v) > 1.0 {
					t.Errorf("Parameter %d = %f, expected near 0", i, v)
				}
			}
		})
	}
}

func TestOptimizersDeterministic(t *testing.T) {
	dim := 2
	lower, upper := box(dim, -5, 5)
	sphere := objective.Sphere{}

	pairs := [][2]Optimizer{
		{NewPSO(50, 10, 1, 0.5, 123), NewPSO(50, 10, 1, 0.5, 123)},
		{NewMayfly(50, 20, 123), NewMayfly(50, 20, 123)},
	}

	for _, pair := range pairs {
		_, cost1, err := pair[0].Run(sphere.Eval, lower, upper, dim)
		if err != nil {
			t.Fatalf("%s run failed: %v", pair[0].Name(), err)
		}
		_, cost2, err := pair[1].Run(sphere.Eval, lower, upper, dim)
		if err != nil {
			t.Fatalf("%s run failed: %v", pair[1].Name(), err)
		}

		if cost1 != cost2 {
			t.Errorf("%s non-deterministic: cost1=%f, cost2=%f", pair[0].Name(), cost1, cost2)
		}
	}
}

func TestPSOAdapter_InvalidConfig(t *testing.T) {
	o := NewPSO(0, 10, 1, 0.5, 1)
	lower, upper := box(2, -1, 1)

	if _, _, err := o.Run(objective.Sphere{}.Eval, lower, upper, 2); err == nil {
		t.Error("Expected error for zero iterations")
	}
	if _, _, err := o.Run(objective.Sphere{}.Eval, nil, nil, 2); err == nil {
		t.Error("Expected error for missing bounds")
	}
}

func TestMayflyAdapter_SmallPopulations(t *testing.T) {
	lower, upper := box(2, -5, 5)
	sphere := objective.Sphere{}

	for _, pop := range []int{1, 2, 5, 8, 10, 19} {
		o := NewMayfly(20, pop, 1)
		best, cost, err := o.Run(sphere.Eval, lower, upper, 2)
		if err != nil {
			t.Fatalf("pop %d: Run failed: %v", pop, err)
		}
		if len(best) != 2 {
			t.Errorf("pop %d: Expected 2 parameters, got %d", pop, len(best))
		}
		if math.IsNaN(cost) || cost < 0 {
			t.Errorf("pop %d: Expected a finite non-negative cost, got %f", pop, cost)
		}
	}
}

func TestMayflyAdapter_InvalidPopulation(t *testing.T) {
	lower, upper := box(2, -5, 5)

	if _, _, err := NewMayfly(20, 0, 1).Run(objective.Sphere{}.Eval, lower, upper, 2); err == nil {
		t.Error("Expected error for zero population")
	}
}
