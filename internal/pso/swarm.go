// Package pso implements a global-best particle swarm optimizer with a
// fixed inertia weight and a full per-iteration log.
package pso

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
)

// Objective maps a position to the scalar value being minimised.
// It must not retain or modify its argument.
type Objective func(position []float64) float64

// Swarm is a global-best particle swarm optimizer. A Swarm runs once; it is
// not safe for concurrent use.
type Swarm struct {
	cfg       Config
	objective Objective
	rng       *rand.Rand

	particles []*particle

	globalBestPosition []float64
	globalBestValue    float64

	logs     []IterationRecord
	observer func(IterationRecord)
	ran      bool
}

// New validates cfg and constructs a swarm whose particles are drawn from a
// random source seeded with cfg.Seed.
func New(cfg Config, objective Objective) (*Swarm, error) {
	return NewWithRand(cfg, objective, rand.New(rand.NewSource(cfg.Seed)))
}

// NewWithRand is like New but draws every random number from rng.
// cfg.Seed is ignored.
func NewWithRand(cfg Config, objective Objective, rng *rand.Rand) (*Swarm, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if objective == nil {
		return nil, fmt.Errorf("objective cannot be nil")
	}
	if rng == nil {
		return nil, ErrNilRand
	}

	s := &Swarm{
		cfg:             cfg,
		objective:       objective,
		rng:             rng,
		particles:       make([]*particle, cfg.Particles),
		globalBestValue: math.Inf(1),
		logs:            make([]IterationRecord, 0, cfg.Iterations),
	}
	for i := range s.particles {
		p := newParticle(cfg.Dimension, cfg.Lower, cfg.Upper, objective, rng)
		if !isFinite(p.bestValue) {
			return nil, &EvaluationError{Iteration: 0, Particle: i, Position: copyVec(p.position), Value: p.bestValue}
		}
		s.particles[i] = p
	}
	return s, nil
}

// OnIteration registers fn to be called synchronously after each iteration
// is appended to the log. fn receives its own copy of the record.
func (s *Swarm) OnIteration(fn func(IterationRecord)) {
	s.observer = fn
}

// Run executes exactly cfg.Iterations iterations and returns the best point
// found. It fails with ErrAlreadyRun on a second call and with an error
// wrapping ErrNonFiniteObjective if the objective yields NaN or an infinity;
// records of completed iterations stay available through Logs.
func (s *Swarm) Run() (Result, error) {
	if s.ran {
		return Result{}, ErrAlreadyRun
	}
	s.ran = true

	slog.Debug("Starting swarm",
		"dimension", s.cfg.Dimension,
		"particles", s.cfg.Particles,
		"iterations", s.cfg.Iterations,
		"c1", s.cfg.C1,
		"c2", s.cfg.C2,
	)

	for it := 0; it < s.cfg.Iterations; it++ {
		if err := s.evaluate(it); err != nil {
			return Result{}, err
		}

		rec := s.update(it)
		s.logs = append(s.logs, rec)

		slog.Debug("Iteration complete", "iteration", rec.Iteration, "gbest", rec.GlobalBest.Value)
		if s.observer != nil {
			s.observer(rec.Clone())
		}
	}

	return Result{
		Position:   copyVec(s.globalBestPosition),
		Value:      s.globalBestValue,
		Iterations: len(s.logs),
	}, nil
}

// evaluate scores every particle at its current position and updates the
// personal and global bests. Ties keep the earlier best.
func (s *Swarm) evaluate(it int) error {
	for i, p := range s.particles {
		value := s.objective(p.position)
		if !isFinite(value) {
			return &EvaluationError{Iteration: it + 1, Particle: i, Position: copyVec(p.position), Value: value}
		}

		p.observe(value)
		if value < s.globalBestValue {
			s.globalBestValue = value
			s.globalBestPosition = copyVec(p.position)
		}
	}
	return nil
}

// update moves every particle towards the global best fixed by the
// preceding evaluation phase and returns the iteration's log record.
func (s *Swarm) update(it int) IterationRecord {
	gbest := s.globalBestPosition

	rec := IterationRecord{
		Iteration: it + 1,
		Particles: make([]ParticleSnapshot, len(s.particles)),
		GlobalBest: GlobalBest{
			Position: copyVec(gbest),
			Value:    s.globalBestValue,
		},
	}
	for i, p := range s.particles {
		rec.Particles[i] = p.snapshot()
		p.move(gbest, s.cfg.C1, s.cfg.C2, s.cfg.Lower, s.cfg.Upper, s.rng)
	}
	return rec
}

// Logs returns the iteration log. The returned records are shared with the
// swarm and must not be modified.
func (s *Swarm) Logs() []IterationRecord {
	return s.logs
}

// GlobalBest returns a copy of the best position and its value. The
// position is nil before the first evaluation.
func (s *Swarm) GlobalBest() ([]float64, float64) {
	return copyVec(s.globalBestPosition), s.globalBestValue
}

// Particles returns copies of every particle's state in swarm order.
func (s *Swarm) Particles() []ParticleState {
	out := make([]ParticleState, len(s.particles))
	for i, p := range s.particles {
		out[i] = p.state()
	}
	return out
}

// Config returns the configuration the swarm was built with.
func (s *Swarm) Config() Config {
	return s.cfg
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
