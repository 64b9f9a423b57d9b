package server

import (
	"net/http"

	"github.com/cwbudde/psoswarm/internal/ui"
)

// handleIndex handles GET /
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	jobs := s.jobManager.ListJobs()

	jobItems := make([]ui.JobListItem, len(jobs))
	for i, job := range jobs {
		jobItems[i] = ui.JobListItem{
			ID:         job.ID,
			State:      string(job.State),
			Function:   job.Config.Function,
			Dimension:  job.Config.Dimension,
			Particles:  job.Config.Particles,
			Iterations: job.Iterations,
			MaxIters:   job.Config.Iterations,
			BestValue:  job.BestValue,
			StartTime:  job.StartTime,
			EndTime:    job.EndTime,
			Error:      job.Error,
		}
	}

	if err := ui.JobList(jobItems).Render(r.Context(), w); err != nil {
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
}
