package store

import (
	"fmt"
	"math"
	"time"

	"github.com/cwbudde/psoswarm/internal/pso"
)

// RunRecord is the persisted outcome of one swarm run. The full iteration
// log is kept separately in the run's trace.
type RunRecord struct {
	RunID    string     `json:"runId"`
	Function string     `json:"function"`
	Config   pso.Config `json:"config"`

	BestPosition []float64 `json:"bestPosition"`
	BestValue    float64   `json:"bestValue"`

	// Iterations is the number of completed iterations. It is below
	// Config.Iterations only for failed runs.
	Iterations int `json:"iterations"`

	Timestamp time.Time     `json:"timestamp"`
	Elapsed   time.Duration `json:"elapsed"`

	// Artifacts maps an artifact kind (frames, gif, xlsx, trace) to its path.
	Artifacts map[string]string `json:"artifacts,omitempty"`
}

// RunInfo is a summary of a stored run, used for listings.
type RunInfo struct {
	RunID      string    `json:"runId"`
	Function   string    `json:"function"`
	BestValue  float64   `json:"bestValue"`
	Iterations int       `json:"iterations"`
	Particles  int       `json:"particles"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewRunRecord creates a record for a finished run, stamped with the
// current time.
func NewRunRecord(runID, function string, cfg pso.Config, res pso.Result, elapsed time.Duration) *RunRecord {
	return &RunRecord{
		RunID:        runID,
		Function:     function,
		Config:       cfg,
		BestPosition: res.Position,
		BestValue:    res.Value,
		Iterations:   res.Iterations,
		Timestamp:    time.Now(),
		Elapsed:      elapsed,
	}
}

// ToInfo converts a full RunRecord to RunInfo.
func (r *RunRecord) ToInfo() RunInfo {
	return RunInfo{
		RunID:      r.RunID,
		Function:   r.Function,
		BestValue:  r.BestValue,
		Iterations: r.Iterations,
		Particles:  r.Config.Particles,
		Timestamp:  r.Timestamp,
	}
}

// Validate checks if the record has valid data.
func (r *RunRecord) Validate() error {
	if r.RunID == "" {
		return &ValidationError{Field: "RunID", Reason: "cannot be empty"}
	}
	if r.Function == "" {
		return &ValidationError{Field: "Function", Reason: "cannot be empty"}
	}
	if err := r.Config.Validate(); err != nil {
		return &ValidationError{Field: "Config", Reason: err.Error()}
	}
	if len(r.BestPosition) != r.Config.Dimension {
		return &ValidationError{
			Field:  "BestPosition",
			Reason: fmt.Sprintf("length mismatch: expected %d, got %d", r.Config.Dimension, len(r.BestPosition)),
		}
	}
	if math.IsNaN(r.BestValue) || math.IsInf(r.BestValue, 0) {
		return &ValidationError{Field: "BestValue", Reason: "must be finite"}
	}
	if r.Iterations < 0 || r.Iterations > r.Config.Iterations {
		return &ValidationError{
			Field:  "Iterations",
			Reason: fmt.Sprintf("must be in [0, %d]", r.Config.Iterations),
		}
	}
	if r.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	return nil
}

// ValidationError represents a run record validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}
