package server

import (
	"testing"
	"time"

	"github.com/cwbudde/psoswarm/internal/pso"
)

func TestJobManager_CreateJob(t *testing.T) {
	jm := NewJobManager()

	config := DefaultJobConfig()
	config.Function = "sphere"
	config.Dimension = 5

	job := jm.CreateJob(config)

	if job.ID == "" {
		t.Error("Job ID should not be empty")
	}
	if job.State != StatePending {
		t.Errorf("Initial state should be pending, got %s", job.State)
	}
	if job.Config.Function != "sphere" || job.Config.Dimension != 5 {
		t.Errorf("Config not set correctly: %+v", job.Config)
	}
}

func TestJobManager_GetJob(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(DefaultJobConfig())

	retrieved, exists := jm.GetJob(job.ID)
	if !exists {
		t.Fatal("Job should exist")
	}
	if retrieved.ID != job.ID {
		t.Error("Retrieved wrong job")
	}

	// Snapshots are detached from the stored job
	retrieved.State = StateFailed
	again, _ := jm.GetJob(job.ID)
	if again.State != StatePending {
		t.Errorf("Mutating a snapshot should not change the job, got %s", again.State)
	}

	if _, exists := jm.GetJob("nonexistent"); exists {
		t.Error("Should not find nonexistent job")
	}
}

func TestJobManager_ListJobs(t *testing.T) {
	jm := NewJobManager()

	if len(jm.ListJobs()) != 0 {
		t.Error("Should start with no jobs")
	}

	first := jm.CreateJob(DefaultJobConfig())
	time.Sleep(time.Millisecond)
	jm.CreateJob(DefaultJobConfig())

	jobs := jm.ListJobs()
	if len(jobs) != 2 {
		t.Fatalf("Expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].ID != first.ID {
		t.Error("Expected jobs ordered by start time")
	}
}

func TestJobManager_UpdateJob(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(DefaultJobConfig())

	err := jm.UpdateJob(job.ID, func(j *Job) {
		j.State = StateRunning
		j.Iterations = 10
		j.BestValue = 123.45
	})
	if err != nil {
		t.Errorf("Update should succeed: %v", err)
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateRunning {
		t.Error("State should be updated")
	}
	if updated.Iterations != 10 {
		t.Error("Iterations should be updated")
	}
	if updated.BestValue != 123.45 {
		t.Error("BestValue should be updated")
	}

	if err := jm.UpdateJob("nonexistent", func(j *Job) {}); err == nil {
		t.Error("Update of nonexistent job should fail")
	}
}

func TestJobManager_RecordIteration(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(DefaultJobConfig())

	for i := 1; i <= 3; i++ {
		rec := pso.IterationRecord{
			Iteration:  i,
			GlobalBest: pso.GlobalBest{Position: []float64{float64(i), 0}, Value: 1 / float64(i)},
		}
		if err := jm.RecordIteration(job.ID, rec); err != nil {
			t.Fatalf("RecordIteration failed: %v", err)
		}
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.Iterations != 3 {
		t.Errorf("Expected 3 iterations, got %d", updated.Iterations)
	}
	if updated.BestValue != 1.0/3 {
		t.Errorf("Expected best value 1/3, got %f", updated.BestValue)
	}

	logs, ok := jm.JobLogs(job.ID)
	if !ok {
		t.Fatal("Expected logs for job")
	}
	if len(logs) != 3 {
		t.Errorf("Expected 3 records, got %d", len(logs))
	}

	if _, ok := jm.JobLogs("nonexistent"); ok {
		t.Error("Should not find logs for nonexistent job")
	}
	if err := jm.RecordIteration("nonexistent", pso.IterationRecord{}); err == nil {
		t.Error("RecordIteration on nonexistent job should fail")
	}
}

func TestJobManager_GetRunningJobs(t *testing.T) {
	jm := NewJobManager()
	a := jm.CreateJob(DefaultJobConfig())
	jm.CreateJob(DefaultJobConfig())

	jm.UpdateJob(a.ID, func(j *Job) { j.State = StateRunning })

	running := jm.GetRunningJobs()
	if len(running) != 1 || running[0].ID != a.ID {
		t.Errorf("Expected only job %s running, got %d jobs", a.ID, len(running))
	}
}

func TestJobManager_ThreadSafety(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(DefaultJobConfig())

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(iteration int) {
			jm.RecordIteration(job.ID, pso.IterationRecord{Iteration: iteration})
			jm.GetJob(job.ID)
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}

	logs, _ := jm.JobLogs(job.ID)
	if len(logs) != 10 {
		t.Errorf("Expected 10 records after concurrent updates, got %d", len(logs))
	}
}
