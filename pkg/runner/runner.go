// Package runner discovers source files and checks them concurrently.
package runner

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"go.uber.org/multierr"

	"github.com/akam1o/scopebrace/pkg/diagnostics"
	"github.com/akam1o/scopebrace/pkg/errors"
	"github.com/akam1o/scopebrace/pkg/logger"
	"github.com/akam1o/scopebrace/pkg/ruleset"
	"github.com/akam1o/scopebrace/pkg/sniff"
	"github.com/akam1o/scopebrace/pkg/token"
)

// Runner checks files against a ruleset
type Runner struct {
	ruleset *ruleset.Ruleset
	checker *sniff.Checker
	log     *logger.Logger
	workers int
}

// Option configures a Runner
type Option func(*Runner)

// WithLogger sets the logger; the default discards all records
func WithLogger(log *logger.Logger) Option {
	return func(r *Runner) {
		if log != nil {
			r.log = log
		}
	}
}

// WithWorkers bounds the number of files checked in parallel
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// New creates a runner for rs. A nil ruleset selects the default one.
func New(rs *ruleset.Ruleset, opts ...Option) *Runner {
	if rs == nil {
		rs = ruleset.Default()
	}
	r := &Runner{
		ruleset: rs,
		checker: sniff.New(sniff.WithIndentWidth(rs.IndentWidth)),
		log:     logger.Discard(),
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Analysis is the full outcome of checking one source buffer
type Analysis struct {
	Path   string
	Source []byte
	Stream *token.Stream
	// Findings holds only the findings whose code the ruleset enables
	Findings []sniff.Finding
	Result   diagnostics.FileResult
}

// CheckSource checks an in-memory buffer as if it were the file at path
func (r *Runner) CheckSource(path string, src []byte) (*Analysis, error) {
	stream, err := token.Tokenize(src, token.WithTabWidth(r.ruleset.TabWidth))
	if err != nil {
		return nil, err
	}

	sink := diagnostics.NewFile(path, stream, r.ruleset)
	var findings []sniff.Finding
	for _, f := range r.checker.EvaluateAll(stream) {
		if !r.ruleset.Enabled(f.Code) {
			continue
		}
		findings = append(findings, f)
		sink.Report(f.Code, f.Message, f.Index)
	}
	r.log.Debug("Checked source",
		slog.String("path", path),
		slog.Int("tokens", stream.Len()),
		slog.Int("findings", len(findings)),
	)

	return &Analysis{
		Path:     path,
		Source:   src,
		Stream:   stream,
		Findings: findings,
		Result:   sink.Result(),
	}, nil
}

// Analyze reads and checks the file at path
func (r *Runner) Analyze(path string) (*Analysis, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileNotFound(path)
		}
		return nil, errors.FileReadError(path, err)
	}
	return r.CheckSource(path, src)
}

// Run checks every file reachable from paths. Directories are walked and
// filtered by the ruleset; files named explicitly are always checked.
// Files that cannot be read or tokenized are recorded in the report and
// their errors are combined into the returned error.
func (r *Runner) Run(ctx context.Context, paths []string) (*diagnostics.Report, error) {
	report := diagnostics.NewReport()
	log := r.log.WithField("run_id", report.RunID)

	files, err := r.Discover(paths)
	for _, e := range multierr.Errors(err) {
		report.Add(diagnostics.FileResult{Path: pathOf(e), Error: e.Error()})
	}
	log.Debug("Discovered source files", slog.Int("count", len(files)))

	jobs := make(chan string)
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs = err
	)

	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				res, ferr := r.checkFile(path)
				if ferr != nil {
					log.Warn("Failed to check file",
						slog.String("path", path),
						slog.Any("error", ferr),
					)
					mu.Lock()
					errs = multierr.Append(errs, ferr)
					mu.Unlock()
				}
				report.Add(res)
			}
		}()
	}

feed:
	for _, path := range files {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- path:
		}
	}
	close(jobs)
	wg.Wait()

	if ctxErr := ctx.Err(); ctxErr != nil {
		errs = multierr.Append(errs, ctxErr)
	}

	log.Info("Run finished",
		slog.Int("files", len(files)),
		slog.Int("errors", report.ErrorCount()),
		slog.Int("warnings", report.WarningCount()),
	)
	return report, errs
}

func (r *Runner) checkFile(path string) (diagnostics.FileResult, error) {
	a, err := r.Analyze(path)
	if err != nil {
		return diagnostics.FileResult{Path: path, Error: err.Error()}, err
	}
	return a.Result, nil
}

// Discover expands paths into the sorted list of files to check
func (r *Runner) Discover(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var (
		files []string
		errs  error
	)
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			errs = multierr.Append(errs, &pathError{path: root, err: errors.FileNotFound(root)})
			continue
		}
		if !info.IsDir() {
			add(root)
			continue
		}

		walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				errs = multierr.Append(errs, &pathError{path: path, err: errors.FileReadError(path, err)})
				return nil
			}
			if d.IsDir() {
				if path != root && r.ruleset.Excluded(path) {
					return filepath.SkipDir
				}
				return nil
			}
			if r.ruleset.Matches(path) {
				add(path)
			}
			return nil
		})
		if walkErr != nil {
			errs = multierr.Append(errs, &pathError{path: root, err: errors.FileReadError(root, walkErr)})
		}
	}

	sort.Strings(files)
	return files, errs
}

// pathError ties a discovery failure to the path it occurred on
type pathError struct {
	path string
	err  error
}

func (e *pathError) Error() string { return e.err.Error() }
func (e *pathError) Unwrap() error { return e.err }

func pathOf(err error) string {
	var pe *pathError
	if errors.As(err, &pe) {
		return pe.path
	}
	return ""
}
