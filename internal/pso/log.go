package pso

// ParticleSnapshot is the state of one particle entering an iteration's
// position update.
type ParticleSnapshot struct {
	Position     []float64 `json:"position"`
	Velocity     []float64 `json:"velocity"`
	PersonalBest []float64 `json:"pbest"`
}

// GlobalBest is the swarm's best point at the end of an evaluation phase.
type GlobalBest struct {
	Position []float64 `json:"position"`
	Value    float64   `json:"value"`
}

// IterationRecord is one entry of the iteration log. Iteration is
// 1-indexed. Particles are in swarm order.
type IterationRecord struct {
	Iteration  int                `json:"iteration"`
	Particles  []ParticleSnapshot `json:"particles"`
	GlobalBest GlobalBest         `json:"gbest"`
}

// Clone returns a deep copy of the record.
func (r IterationRecord) Clone() IterationRecord {
	out := IterationRecord{
		Iteration: r.Iteration,
		Particles: make([]ParticleSnapshot, len(r.Particles)),
		GlobalBest: GlobalBest{
			Position: copyVec(r.GlobalBest.Position),
			Value:    r.GlobalBest.Value,
		},
	}
	for i, s := range r.Particles {
		out.Particles[i] = ParticleSnapshot{
			Position:     copyVec(s.Position),
			Velocity:     copyVec(s.Velocity),
			PersonalBest: copyVec(s.PersonalBest),
		}
	}
	return out
}

// ParticleState is a copy of a particle's full state, including its
// personal best value.
type ParticleState struct {
	Position     []float64 `json:"position"`
	Velocity     []float64 `json:"velocity"`
	BestPosition []float64 `json:"bestPosition"`
	BestValue    float64   `json:"bestValue"`
}

// Result is the outcome of a run.
type Result struct {
	Position   []float64 `json:"position"`
	Value      float64   `json:"value"`
	Iterations int       `json:"iterations"`
}
