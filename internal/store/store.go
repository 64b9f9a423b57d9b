package store

// Store persists the records of completed swarm runs.
// Implementations must be safe for concurrent use.
//
// Error handling conventions:
//   - Return ErrNotFound (matched with errors.Is) if a run doesn't exist
//   - Wrap underlying errors with context using fmt.Errorf("context: %w", err)
type Store interface {
	// SaveRun saves the record for a run, replacing any existing record
	// with the same RunID.
	SaveRun(record *RunRecord) error

	// LoadRun retrieves the record for runID.
	LoadRun(runID string) (*RunRecord, error)

	// ListRuns returns summaries of all stored runs, oldest first.
	ListRuns() ([]RunInfo, error)

	// DeleteRun removes the record for runID and any artifacts the store
	// keeps alongside it.
	DeleteRun(runID string) error

	// Close releases resources held by the store.
	Close() error
}

// ErrNotFound is returned when a requested run does not exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &NotFoundError{}

// NotFoundError represents a missing run.
type NotFoundError struct {
	RunID string
}

func (e *NotFoundError) Error() string {
	if e.RunID != "" {
		return "run not found: " + e.RunID
	}
	return "run not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
