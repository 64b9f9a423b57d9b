package server

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/cwbudde/psoswarm/internal/store"
)

func smallJobConfig() JobConfig {
	config := DefaultJobConfig()
	config.Iterations = 15
	config.Particles = 6
	return config
}

func TestRunJob_Success(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(smallJobConfig())

	if err := runJob(context.Background(), jm, nil, "", job.ID); err != nil {
		t.Fatalf("runJob should succeed: %v", err)
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateCompleted {
		t.Errorf("Job should be completed, got %s", updated.State)
	}
	if updated.Iterations != 15 {
		t.Errorf("Expected 15 iterations, got %d", updated.Iterations)
	}
	if len(updated.BestPosition) != 2 {
		t.Errorf("Expected 2-D best position, got %d values", len(updated.BestPosition))
	}
	if updated.EndTime == nil {
		t.Error("EndTime should be set")
	}

	logs, _ := jm.JobLogs(job.ID)
	if len(logs) != 15 {
		t.Fatalf("Expected 15 iteration records, got %d", len(logs))
	}
	if logs[14].GlobalBest.Value < updated.BestValue {
		t.Errorf("Last logged gbest %g should not beat the final best %g", logs[14].GlobalBest.Value, updated.BestValue)
	}
}

func TestRunJob_PersistsRunAndTrace(t *testing.T) {
	dataDir := t.TempDir()
	runStore, err := store.NewFSStore(dataDir)
	if err != nil {
		t.Fatal(err)
	}

	jm := NewJobManager()
	job := jm.CreateJob(smallJobConfig())

	if err := runJob(context.Background(), jm, runStore, dataDir, job.ID); err != nil {
		t.Fatalf("runJob failed: %v", err)
	}

	record, err := runStore.LoadRun(job.ID)
	if err != nil {
		t.Fatalf("LoadRun failed: %v", err)
	}
	if record.Function != "valley" {
		t.Errorf("Expected function valley, got %s", record.Function)
	}
	if err := record.Validate(); err != nil {
		t.Errorf("Persisted record should be valid: %v", err)
	}

	tracePath := record.Artifacts["trace"]
	if _, err := os.Stat(tracePath); err != nil {
		t.Fatalf("Trace artifact missing: %v", err)
	}

	logs, err := store.LoadTrace(dataDir, job.ID)
	if err != nil {
		t.Fatalf("LoadTrace failed: %v", err)
	}
	if len(logs) != 15 {
		t.Errorf("Expected 15 trace entries, got %d", len(logs))
	}
}

func TestRunJob_UnknownFunction(t *testing.T) {
	jm := NewJobManager()
	config := smallJobConfig()
	config.Function = "nope"
	job := jm.CreateJob(config)

	if err := runJob(context.Background(), jm, nil, "", job.ID); err == nil {
		t.Error("runJob should fail for unknown function")
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateFailed {
		t.Errorf("Job should be failed, got %s", updated.State)
	}
	if updated.Error == "" {
		t.Error("Error message should be set")
	}
}

func TestRunJob_DimensionMismatch(t *testing.T) {
	jm := NewJobManager()
	config := smallJobConfig()
	config.Function = "eggholder"
	config.Dimension = 3
	job := jm.CreateJob(config)

	if err := runJob(context.Background(), jm, nil, "", job.ID); err == nil {
		t.Error("runJob should fail for a 3-D eggholder")
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateFailed {
		t.Errorf("Job should be failed, got %s", updated.State)
	}
}

func TestRunJob_InvalidConfig(t *testing.T) {
	jm := NewJobManager()
	config := smallJobConfig()
	config.Lower, config.Upper = 5, -5
	job := jm.CreateJob(config)

	if err := runJob(context.Background(), jm, nil, "", job.ID); err == nil {
		t.Error("runJob should fail for inverted bounds")
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateFailed {
		t.Errorf("Job should be failed, got %s", updated.State)
	}
}

func TestRunJob_Cancellation(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(smallJobConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := runJob(ctx, jm, nil, "", job.ID)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateCancelled {
		t.Errorf("Job should be cancelled, got %s", updated.State)
	}
	if updated.Iterations != 0 {
		t.Errorf("Cancelled job should not have run, got %d iterations", updated.Iterations)
	}
}

func TestRunJob_NotFound(t *testing.T) {
	jm := NewJobManager()
	if err := runJob(context.Background(), jm, nil, "", "missing"); err == nil {
		t.Error("runJob should fail for unknown job")
	}
}
