// Package diagnostics collects the violations reported by sniffs, resolves
// their positions and formats them for output.
package diagnostics

import (
	"sort"
	"sync"

	"github.com/akam1o/scopebrace/pkg/token"
)

// Severity indicates the severity level of a violation
type Severity string

// Severity levels
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Violation is a single finding in a source file
type Violation struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Index    int      `json:"-"`
	Line     int      `json:"line"`
	Column   int      `json:"column"`
	Severity Severity `json:"severity"`
	// Reference is the coding-standard requirement the code maps to
	Reference string `json:"reference,omitempty"`
}

// Text returns the message prefixed with its requirement reference
func (v Violation) Text() string {
	if v.Reference == "" {
		return v.Message
	}
	return v.Reference + " " + v.Message
}

// Policy decides how reported codes are surfaced
type Policy interface {
	Enabled(code string) bool
	Severity(code string) Severity
	Reference(code string) string
}

// File is the diagnostics sink for one source file.
// Report is safe for concurrent use.
type File struct {
	path   string
	stream *token.Stream
	policy Policy

	mu         sync.Mutex
	violations []Violation
}

// NewFile creates a sink for the file at path. policy may be nil, in which
// case every code is enabled as an error without a reference.
func NewFile(path string, stream *token.Stream, policy Policy) *File {
	return &File{
		path:   path,
		stream: stream,
		policy: policy,
	}
}

// Path returns the file path
func (f *File) Path() string {
	return f.path
}

// Report records a violation at the token with the given index
func (f *File) Report(code, message string, index int) {
	v := Violation{
		Code:     code,
		Message:  message,
		Index:    index,
		Severity: SeverityError,
	}
	if f.policy != nil {
		if !f.policy.Enabled(code) {
			return
		}
		v.Severity = f.policy.Severity(code)
		v.Reference = f.policy.Reference(code)
	}
	if f.stream != nil && index >= 0 && index < f.stream.Len() {
		tok := f.stream.At(index)
		v.Line, v.Column = tok.Line, tok.Column
	}

	f.mu.Lock()
	f.violations = append(f.violations, v)
	f.mu.Unlock()
}

// Violations returns a copy of the recorded violations ordered by position
func (f *File) Violations() []Violation {
	f.mu.Lock()
	out := make([]Violation, len(f.violations))
	copy(out, f.violations)
	f.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		return out[i].Column < out[j].Column
	})
	return out
}

// Result snapshots the file into a report entry
func (f *File) Result() FileResult {
	return FileResult{
		Path:       f.path,
		Violations: f.Violations(),
	}
}
