package diagnostics

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FileResult holds the outcome of checking one file
type FileResult struct {
	Path       string      `json:"path"`
	Violations []Violation `json:"violations"`
	// Error is set when the file could not be read or tokenized
	Error string `json:"error,omitempty"`
}

// Report aggregates the results of a run
type Report struct {
	RunID     string
	StartedAt time.Time

	mu    sync.Mutex
	files []FileResult
}

// NewReport creates an empty report with a fresh run ID
func NewReport() *Report {
	return &Report{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
	}
}

// Add appends a file result
func (r *Report) Add(res FileResult) {
	r.mu.Lock()
	r.files = append(r.files, res)
	r.mu.Unlock()
}

// Files returns the file results ordered by path
func (r *Report) Files() []FileResult {
	r.mu.Lock()
	out := make([]FileResult, len(r.files))
	copy(out, r.files)
	r.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Path < out[j].Path
	})
	return out
}

// Count returns the number of violations with the given severity
func (r *Report) Count(sev Severity) int {
	n := 0
	for _, f := range r.Files() {
		for _, v := range f.Violations {
			if v.Severity == sev {
				n++
			}
		}
	}
	return n
}

// ErrorCount returns the number of error-level violations
func (r *Report) ErrorCount() int {
	return r.Count(SeverityError)
}

// WarningCount returns the number of warning-level violations
func (r *Report) WarningCount() int {
	return r.Count(SeverityWarning)
}

// FailedFiles returns the number of files that could not be checked
func (r *Report) FailedFiles() int {
	n := 0
	for _, f := range r.Files() {
		if f.Error != "" {
			n++
		}
	}
	return n
}

// HasErrors reports whether any error-level violation was found
func (r *Report) HasErrors() bool {
	return r.ErrorCount() > 0
}
