package opt

// Optimizer is a black-box minimiser over a box-bounded space.
type Optimizer interface {
	// Name identifies the algorithm in reports.
	Name() string

	// Run minimises eval over [lower, upper] in dim dimensions and returns
	// the best parameters found with their cost.
	Run(eval func([]float64) float64, lower, upper []float64, dim int) ([]float64, float64, error)
}
