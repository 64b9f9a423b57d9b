package pso

import "math/rand"

// particle is a single search agent. It is owned by a Swarm and mutated in
// place every iteration.
type particle struct {
	position []float64
	velocity []float64

	bestPosition []float64
	bestValue    float64
}

// newParticle draws a uniform position in [lo, hi] and a uniform velocity
// in [-1, 1], then records the starting point as the personal best.
// All position components are drawn before any velocity component.
func newParticle(dim int, lo, hi float64, objective Objective, rng *rand.Rand) *particle {
	p := &particle{
		position: make([]float64, dim),
		velocity: make([]float64, dim),
	}
	for i := range p.position {
		p.position[i] = lo + rng.Float64()*(hi-lo)
	}
	for i := range p.velocity {
		p.velocity[i] = -1 + rng.Float64()*2
	}
	p.bestPosition = copyVec(p.position)
	p.bestValue = objective(p.position)
	return p
}

// observe updates the personal best if value strictly improves on it.
func (p *particle) observe(value float64) {
	if value < p.bestValue {
		p.bestValue = value
		p.bestPosition = copyVec(p.position)
	}
}

// move applies the velocity update towards the personal and global bests,
// advances the position and clamps it into [lo, hi]. Velocity is left as
// computed even when the position hits a bound.
func (p *particle) move(globalBest []float64, c1, c2, lo, hi float64, rng *rand.Rand) {
	dim := len(p.position)
	r1 := make([]float64, dim)
	for i := range r1 {
		r1[i] = rng.Float64()
	}
	r2 := make([]float64, dim)
	for i := range r2 {
		r2[i] = rng.Float64()
	}

	for i := range p.velocity {
		cognitive := c1 * r1[i] * (p.bestPosition[i] - p.position[i])
		social := c2 * r2[i] * (globalBest[i] - p.position[i])
		p.velocity[i] = InertiaWeight*p.velocity[i] + cognitive + social
		p.position[i] = clamp(p.position[i]+p.velocity[i], lo, hi)
	}
}

func (p *particle) snapshot() ParticleSnapshot {
	return ParticleSnapshot{
		Position:     copyVec(p.position),
		Velocity:     copyVec(p.velocity),
		PersonalBest: copyVec(p.bestPosition),
	}
}

func (p *particle) state() ParticleState {
	return ParticleState{
		Position:     copyVec(p.position),
		Velocity:     copyVec(p.velocity),
		BestPosition: copyVec(p.bestPosition),
		BestValue:    p.bestValue,
	}
}

func copyVec(v []float64) []float64 {
	if v == nil {
		return nil
	}
	return append([]float64(nil), v...)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
