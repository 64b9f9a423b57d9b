package report

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/psoswarm/internal/pso"
)

// Stats summarises the spread of a swarm at one iteration.
type Stats struct {
	Iteration int
	BestValue float64

	// Euclidean distances from each particle to the global best.
	MeanDistance float64
	MaxDistance  float64

	MeanSpeed float64

	// Per-dimension bounding box of the particle positions.
	Lower, Upper []float64
}

// Summarize computes Stats for rec.
func Summarize(rec pso.IterationRecord) Stats {
	st := Stats{
		Iteration: rec.Iteration,
		BestValue: rec.GlobalBest.Value,
	}
	n := len(rec.Particles)
	if n == 0 {
		return st
	}

	dists := make([]float64, n)
	speeds := make([]float64, n)
	for i, snap := range rec.Particles {
		if len(rec.GlobalBest.Position) == len(snap.Position) {
			dists[i] = floats.Distance(snap.Position, rec.GlobalBest.Position, 2)
		}
		speeds[i] = floats.Norm(snap.Velocity, 2)
	}
	st.MeanDistance = floats.Sum(dists) / float64(n)
	st.MaxDistance = floats.Max(dists)
	st.MeanSpeed = floats.Sum(speeds) / float64(n)

	dim := len(rec.Particles[0].Position)
	st.Lower = make([]float64, dim)
	st.Upper = make([]float64, dim)
	col := make([]float64, n)
	for d := 0; d < dim; d++ {
		for i, snap := range rec.Particles {
			col[i] = snap.Position[d]
		}
		st.Lower[d] = floats.Min(col)
		st.Upper[d] = floats.Max(col)
	}
	return st
}

// Improvement returns the drop in global best value between the first and
// last records, or 0 for fewer than two records.
func Improvement(logs []pso.IterationRecord) float64 {
	if len(logs) < 2 {
		return 0
	}
	first := logs[0].GlobalBest.Value
	last := logs[len(logs)-1].GlobalBest.Value
	if math.IsInf(first, 0) {
		return 0
	}
	return first - last
}
