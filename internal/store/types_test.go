package store

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/cwbudde/psoswarm/internal/pso"
)

func TestRunRecord_JSONSerialization(t *testing.T) {
	original := createTestRecord("json-run")

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded RunRecord
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if decoded.RunID != original.RunID {
		t.Errorf("Expected RunID %s, got %s", original.RunID, decoded.RunID)
	}
	if decoded.Config.C1 != original.Config.C1 || decoded.Config.Seed != original.Config.Seed {
		t.Errorf("Config not preserved: %+v", decoded.Config)
	}
	if decoded.Iterations != original.Iterations {
		t.Errorf("Expected Iterations %d, got %d", original.Iterations, decoded.Iterations)
	}

	var raw map[string]json.RawMessage
	json.Unmarshal(data, &raw)
	for _, key := range []string{"runId", "function", "config", "bestPosition", "bestValue", "timestamp"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("Missing JSON key %q", key)
		}
	}
}

func TestRunRecord_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *RunRecord)
		field  string
	}{
		{"valid", func(r *RunRecord) {}, ""},
		{"empty run id", func(r *RunRecord) { r.RunID = "" }, "RunID"},
		{"empty function", func(r *RunRecord) { r.Function = "" }, "Function"},
		{"bad config", func(r *RunRecord) { r.Config.Particles = 0 }, "Config"},
		{"position length", func(r *RunRecord) { r.BestPosition = []float64{1} }, "BestPosition"},
		{"nan value", func(r *RunRecord) { r.BestValue = math.NaN() }, "BestValue"},
		{"inf value", func(r *RunRecord) { r.BestValue = math.Inf(1) }, "BestValue"},
		{"too many iterations", func(r *RunRecord) { r.Iterations = r.Config.Iterations + 1 }, "Iterations"},
		{"negative iterations", func(r *RunRecord) { r.Iterations = -1 }, "Iterations"},
		{"zero timestamp", func(r *RunRecord) { r.Timestamp = time.Time{} }, "Timestamp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := createTestRecord("validate-run")
			tt.mutate(r)

			err := r.Validate()
			if tt.field == "" {
				if err != nil {
					t.Errorf("Expected valid record, got %v", err)
				}
				return
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("Expected field %s, got %s", tt.field, verr.Field)
			}
		})
	}
}

func TestRunRecord_ToInfo(t *testing.T) {
	r := createTestRecord("info-run")
	info := r.ToInfo()

	if info.RunID != r.RunID {
		t.Errorf("Expected RunID %s, got %s", r.RunID, info.RunID)
	}
	if info.Function != "valley" {
		t.Errorf("Expected Function valley, got %s", info.Function)
	}
	if info.BestValue != r.BestValue {
		t.Errorf("Expected BestValue %f, got %f", r.BestValue, info.BestValue)
	}
	if info.Particles != r.Config.Particles {
		t.Errorf("Expected Particles %d, got %d", r.Config.Particles, info.Particles)
	}
	if !info.Timestamp.Equal(r.Timestamp) {
		t.Errorf("Expected Timestamp %v, got %v", r.Timestamp, info.Timestamp)
	}
}

func TestNewRunRecord(t *testing.T) {
	cfg := pso.DefaultConfig()
	res := pso.Result{Position: []float64{1, 2}, Value: 0.5, Iterations: cfg.Iterations}

	before := time.Now()
	r := NewRunRecord("new-run", "sphere", cfg, res, time.Second)

	if r.RunID != "new-run" || r.Function != "sphere" {
		t.Errorf("Unexpected identity: %s %s", r.RunID, r.Function)
	}
	if r.BestValue != 0.5 {
		t.Errorf("Expected BestValue 0.5, got %f", r.BestValue)
	}
	if r.Iterations != cfg.Iterations {
		t.Errorf("Expected Iterations %d, got %d", cfg.Iterations, r.Iterations)
	}
	if r.Timestamp.Before(before) {
		t.Error("Timestamp should be set to now")
	}
	if r.Elapsed != time.Second {
		t.Errorf("Expected Elapsed 1s, got %v", r.Elapsed)
	}
	if err := r.Validate(); err != nil {
		t.Errorf("Expected valid record, got %v", err)
	}
}
