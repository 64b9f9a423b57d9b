package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cwbudde/psoswarm/internal/objective"
	"github.com/cwbudde/psoswarm/internal/pso"
	"github.com/cwbudde/psoswarm/internal/store"
)

// runJob executes a swarm job in the background.
// If dataDir is set, every iteration is appended to the run's trace. If
// runStore is not nil, a RunRecord is saved once the job completes.
func runJob(ctx context.Context, jm *JobManager, runStore store.Store, dataDir string, jobID string) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	if err := jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateRunning
	}); err != nil {
		return err
	}

	slog.Info("Starting job", "job_id", jobID, "function", job.Config.Function)

	fn, err := objective.Lookup(job.Config.Function)
	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}
	if err := objective.CheckDim(fn, job.Config.Dimension); err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}

	swarm, err := pso.New(job.Config.Config, fn.Eval)
	if err != nil {
		err = fmt.Errorf("failed to create swarm: %w", err)
		markJobFailed(jm, jobID, err)
		return err
	}

	var trace *store.TraceWriter
	if dataDir != "" {
		trace, err = store.NewTraceWriter(dataDir, jobID)
		if err != nil {
			markJobFailed(jm, jobID, err)
			return err
		}
		defer trace.Close()
	}

	swarm.OnIteration(func(rec pso.IterationRecord) {
		jm.RecordIteration(jobID, rec)
		if trace != nil {
			if err := trace.Write(rec); err != nil {
				slog.Warn("Failed to write trace entry", "job_id", jobID, "iteration", rec.Iteration, "error", err)
			}
		}
	})

	// Check for cancellation before starting the loop
	select {
	case <-ctx.Done():
		markJobCancelled(jm, jobID)
		return ctx.Err()
	default:
	}

	start := time.Now()
	progressDone := make(chan struct{})
	go monitorProgress(ctx, jm, jobID, start, progressDone)

	result, err := swarm.Run()
	close(progressDone)
	elapsed := time.Since(start)

	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}

	// The loop itself is not interruptible; honour a cancellation that
	// arrived while it ran.
	select {
	case <-ctx.Done():
		markJobCancelled(jm, jobID)
		return ctx.Err()
	default:
	}

	endTime := time.Now()
	if err := jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.BestPosition = result.Position
		j.BestValue = result.Value
		j.Iterations = result.Iterations
		j.EndTime = &endTime
	}); err != nil {
		return err
	}

	eps := evalsPerSecond(result.Iterations, job.Config.Particles, elapsed)
	slog.Info("Job completed",
		"job_id", jobID,
		"elapsed", elapsed,
		"best_value", result.Value,
		"evals_per_second", eps,
	)

	if runStore != nil {
		record := store.NewRunRecord(jobID, job.Config.Function, job.Config.Config, result, elapsed)
		if trace != nil {
			record.Artifacts = map[string]string{"trace": trace.Path()}
		}
		if err := runStore.SaveRun(record); err != nil {
			slog.Error("Failed to save run", "job_id", jobID, "error", err)
		}
	}

	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:          jobID,
		State:          StateCompleted,
		Iterations:     result.Iterations,
		BestValue:      result.Value,
		EvalsPerSecond: eps,
		Timestamp:      time.Now(),
	})

	return nil
}

// monitorProgress periodically broadcasts progress events while the swarm runs
func monitorProgress(ctx context.Context, jm *JobManager, jobID string, startTime time.Time, done chan struct{}) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			job, exists := jm.GetJob(jobID)
			if !exists {
				return
			}

			jm.broadcaster.Broadcast(ProgressEvent{
				JobID:          jobID,
				State:          job.State,
				Iterations:     job.Iterations,
				BestValue:      job.BestValue,
				EvalsPerSecond: evalsPerSecond(job.Iterations, job.Config.Particles, time.Since(startTime)),
				Timestamp:      time.Now(),
			})
		}
	}
}

// evalsPerSecond counts one objective call per particle per iteration.
func evalsPerSecond(iterations, particles int, elapsed time.Duration) float64 {
	if elapsed <= 0 || iterations == 0 {
		return 0
	}
	return float64(iterations*particles) / elapsed.Seconds()
}

// markJobFailed marks a job as failed with an error message
func markJobFailed(jm *JobManager, jobID string, err error) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &endTime
	})
	slog.Error("Job failed", "job_id", jobID, "error", err)

	if job, ok := jm.GetJob(jobID); ok {
		jm.broadcaster.Broadcast(ProgressEvent{
			JobID:      jobID,
			State:      StateFailed,
			Iterations: job.Iterations,
			BestValue:  job.BestValue,
			Timestamp:  endTime,
		})
	}
}

// markJobCancelled marks a job as cancelled
func markJobCancelled(jm *JobManager, jobID string) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCancelled
		j.EndTime = &endTime
	})
	slog.Info("Job cancelled", "job_id", jobID)
}
