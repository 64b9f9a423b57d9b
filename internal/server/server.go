package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cwbudde/psoswarm/internal/objective"
	"github.com/cwbudde/psoswarm/internal/pso"
	"github.com/cwbudde/psoswarm/internal/report"
	"github.com/cwbudde/psoswarm/internal/store"
)

// Server represents the HTTP server
type Server struct {
	jobManager *JobManager
	addr       string
	server     *http.Server

	runStore store.Store
	dataDir  string
	style    report.Style

	// ctx is cancelled on Shutdown so that running jobs end up cancelled
	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a new HTTP server. runStore may be nil, in which case
// finished runs are not persisted. An empty dataDir disables traces.
func NewServer(addr string, runStore store.Store, dataDir string) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		jobManager: NewJobManager(),
		addr:       addr,
		runStore:   runStore,
		dataDir:    dataDir,
		style:      report.DefaultStyle(),
		ctx:        ctx,
		cancel:     cancel,
	}
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// SetStyle sets the plot style used for frame images.
func (s *Server) SetStyle(style report.Style) {
	s.style = style
}

// Handler builds the routed and wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleIndex)

	mux.HandleFunc("/api/v1/jobs", s.handleJobs)
	mux.HandleFunc("/api/v1/jobs/", s.handleJobsWithID)
	mux.HandleFunc("/api/v1/functions", s.handleListFunctions)

	return s.loggingMiddleware(s.corsMiddleware(mux))
}

// Start starts the HTTP server
func (s *Server) Start() error {
	slog.Info("Starting HTTP server", "addr", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down HTTP server")
	s.cancel()
	return s.server.Shutdown(ctx)
}

// handleJobs handles /api/v1/jobs
func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateJob(w, r)
	case http.MethodGet:
		s.handleListJobs(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleJobsWithID handles /api/v1/jobs/:id/*
func (s *Server) handleJobsWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/jobs/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "Job ID required", http.StatusBadRequest)
		return
	}

	jobID := parts[0]

	switch {
	case len(parts) == 1 || parts[1] == "status":
		s.handleGetJobStatus(w, r, jobID)
	case parts[1] == "trace":
		s.handleGetTrace(w, r, jobID)
	case parts[1] == "stream":
		s.handleJobStream(w, r, jobID)
	case parts[1] == "frames" && len(parts) == 3:
		s.handleGetFrame(w, r, jobID, parts[2])
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

// handleCreateJob handles POST /api/v1/jobs.
// Fields missing from the body keep their defaults; missing bounds default
// to the function's own search domain.
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to read body: %v", err), http.StatusBadRequest)
		return
	}

	config := DefaultJobConfig()
	if err := json.Unmarshal(body, &config); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}
	var given struct {
		Lower *float64 `json:"lower"`
		Upper *float64 `json:"upper"`
	}
	if err := json.Unmarshal(body, &given); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	fn, err := objective.Lookup(config.Function)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	lo, hi := fn.Bounds()
	if given.Lower == nil {
		config.Lower = lo
	}
	if given.Upper == nil {
		config.Upper = hi
	}

	if err := objective.CheckDim(fn, config.Dimension); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := config.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	job := s.jobManager.CreateJob(config)

	go runJob(s.ctx, s.jobManager, s.runStore, s.dataDir, job.ID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(job)
}

// handleListJobs handles GET /api/v1/jobs
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := s.jobManager.ListJobs()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(jobs)
}

// handleGetJobStatus handles GET /api/v1/jobs/:id/status
func (s *Server) handleGetJobStatus(w http.ResponseWriter, r *http.Request, jobID string) {
	job, exists := s.jobManager.GetJob(jobID)
	if !exists {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	var elapsed time.Duration
	if job.EndTime != nil {
		elapsed = job.EndTime.Sub(job.StartTime)
	} else {
		elapsed = time.Since(job.StartTime)
	}

	response := map[string]interface{}{
		"id":             job.ID,
		"state":          job.State,
		"config":         job.Config,
		"bestPosition":   job.BestPosition,
		"bestValue":      job.BestValue,
		"iterations":     job.Iterations,
		"elapsed":        elapsed.Seconds(),
		"evalsPerSecond": evalsPerSecond(job.Iterations, job.Config.Particles, elapsed),
		"startTime":      job.StartTime,
		"endTime":        job.EndTime,
		"error":          job.Error,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleGetTrace handles GET /api/v1/jobs/:id/trace.
// Jobs unknown to this process fall back to a trace on disk.
func (s *Server) handleGetTrace(w http.ResponseWriter, r *http.Request, jobID string) {
	logs, err := s.jobTrace(jobID)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	} else if err != nil {
		http.Error(w, fmt.Sprintf("Failed to load trace: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(logs)
}

// handleGetFrame handles GET /api/v1/jobs/:id/frames/:n.png
func (s *Server) handleGetFrame(w http.ResponseWriter, r *http.Request, jobID, name string) {
	logs, err := s.jobTrace(jobID)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	} else if err != nil {
		http.Error(w, fmt.Sprintf("Failed to load trace: %v", err), http.StatusInternalServerError)
		return
	}

	n, err := strconv.Atoi(strings.TrimSuffix(name, ".png"))
	if err != nil || !strings.HasSuffix(name, ".png") {
		http.Error(w, "Invalid frame", http.StatusBadRequest)
		return
	}
	if n < 1 || n > len(logs) {
		http.Error(w, "Frame not available", http.StatusNotFound)
		return
	}

	style := s.style
	if !style.AutoRange {
		if lo, hi, ok := s.jobBounds(jobID); ok {
			style.Min, style.Max = lo, hi
		}
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")

	if err := report.WriteIterationPNG(w, logs[n-1], style); err != nil {
		slog.Error("Failed to encode PNG", "job_id", jobID, "frame", n, "error", err)
	}
}

// jobTrace returns the iteration log of a job, read from memory for jobs of
// this process and from the trace on disk otherwise.
func (s *Server) jobTrace(jobID string) ([]pso.IterationRecord, error) {
	if logs, exists := s.jobManager.JobLogs(jobID); exists {
		return logs, nil
	}
	if s.dataDir == "" {
		return nil, &store.NotFoundError{RunID: jobID}
	}
	return store.LoadTrace(s.dataDir, jobID)
}

// jobBounds returns the search bounds of a live or persisted job.
func (s *Server) jobBounds(jobID string) (float64, float64, bool) {
	if job, exists := s.jobManager.GetJob(jobID); exists {
		return job.Config.Lower, job.Config.Upper, true
	}
	if s.runStore == nil {
		return 0, 0, false
	}
	record, err := s.runStore.LoadRun(jobID)
	if err != nil {
		return 0, 0, false
	}
	return record.Config.Lower, record.Config.Upper, true
}

type functionInfo struct {
	Name  string  `json:"name"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Dim   int     `json:"dim,omitempty"`
}

// handleListFunctions handles GET /api/v1/functions
func (s *Server) handleListFunctions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	names := objective.Names()
	infos := make([]functionInfo, 0, len(names))
	for _, name := range names {
		fn, _ := objective.Lookup(name)
		lo, hi := fn.Bounds()
		infos = append(infos, functionInfo{Name: fn.Name(), Lower: lo, Upper: hi, Dim: fn.Dim()})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(infos)
}

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("HTTP request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
