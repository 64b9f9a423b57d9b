package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/psoswarm/internal/report"
	"github.com/cwbudde/psoswarm/internal/server"
)

var (
	serverURL string
)

var statusCmd = &cobra.Command{
	Use:   "status [job-id]",
	Short: "Query server status or specific job",
	Long: `Queries the server for job status information.
If no job-id is provided, lists all jobs.
If job-id is provided, shows detailed status for that job.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return listJobs(cmd.OutOrStdout(), fmt.Sprintf("%s/api/v1/jobs", serverURL))
	}

	jobID := args[0]
	return getJobStatus(cmd.OutOrStdout(), fmt.Sprintf("%s/api/v1/jobs/%s/status", serverURL, jobID), jobID)
}

func listJobs(out io.Writer, url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned error: %s", string(body))
	}

	var jobs []server.Job
	if err := json.NewDecoder(resp.Body).Decode(&jobs); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if len(jobs) == 0 {
		fmt.Fprintln(out, "No jobs found")
		return nil
	}

	fmt.Fprintf(out, "Found %d job(s):\n\n", len(jobs))
	for _, job := range jobs {
		fmt.Fprintf(out, "Job ID: %s\n", job.ID)
		fmt.Fprintf(out, "  State: %s\n", job.State)
		fmt.Fprintf(out, "  Function: %s (dim %d)\n", job.Config.Function, job.Config.Dimension)
		fmt.Fprintf(out, "  Progress: %d/%d iterations\n", job.Iterations, job.Config.Iterations)
		if job.Iterations > 0 {
			fmt.Fprintf(out, "  Best Value: %g\n", job.BestValue)
		}
		fmt.Fprintln(out)
	}

	return nil
}

// jobStatus mirrors the status endpoint's response.
type jobStatus struct {
	ID             string           `json:"id"`
	State          server.JobState  `json:"state"`
	Config         server.JobConfig `json:"config"`
	BestPosition   []float64        `json:"bestPosition"`
	BestValue      float64          `json:"bestValue"`
	Iterations     int              `json:"iterations"`
	Elapsed        float64          `json:"elapsed"`
	EvalsPerSecond float64          `json:"evalsPerSecond"`
	Error          string           `json:"error"`
}

func getJobStatus(out io.Writer, url, jobID string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("job not found: %s", jobID)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned error: %s", string(body))
	}

	var status jobStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	fmt.Fprintf(out, "Job: %s\n", status.ID)
	fmt.Fprintf(out, "State: %s\n", status.State)
	fmt.Fprintln(out)

	cfg := status.Config
	fmt.Fprintln(out, "Configuration:")
	fmt.Fprintf(out, "  Function: %s\n", cfg.Function)
	fmt.Fprintf(out, "  Dimension: %d\n", cfg.Dimension)
	fmt.Fprintf(out, "  Bounds: [%g, %g]\n", cfg.Lower, cfg.Upper)
	fmt.Fprintf(out, "  Particles: %d\n", cfg.Particles)
	fmt.Fprintf(out, "  Iterations: %d\n", cfg.Iterations)
	fmt.Fprintf(out, "  c1/c2: %g/%g\n", cfg.C1, cfg.C2)
	fmt.Fprintf(out, "  Seed: %d\n", cfg.Seed)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Progress:")
	fmt.Fprintf(out, "  Iterations: %d/%d\n", status.Iterations, cfg.Iterations)
	if len(status.BestPosition) > 0 {
		fmt.Fprintf(out, "  Best Position: %s\n", report.FormatVec(status.BestPosition))
		fmt.Fprintf(out, "  Best Value: %g\n", status.BestValue)
	}

	elapsed := time.Duration(status.Elapsed * float64(time.Second))
	fmt.Fprintf(out, "  Elapsed: %s\n", elapsed.Round(time.Millisecond))

	if status.EvalsPerSecond > 0 {
		fmt.Fprintf(out, "  Throughput: %.0f evals/sec\n", status.EvalsPerSecond)
	}

	if status.Error != "" {
		fmt.Fprintf(out, "\nError: %s\n", status.Error)
	}

	return nil
}
