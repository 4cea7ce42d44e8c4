package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/akam1o/scopebrace/pkg/diagnostics"
	"github.com/akam1o/scopebrace/pkg/errors"
	"github.com/akam1o/scopebrace/pkg/fixer"
	"github.com/akam1o/scopebrace/pkg/logger"
	"github.com/akam1o/scopebrace/pkg/runner"
)

// applyFixes re-analyzes every file with violations and either prints the
// indentation fixes as a diff or writes them back to disk
func applyFixes(r *runner.Runner, report *diagnostics.Report, write bool, w io.Writer, log *logger.Logger) error {
	total := 0
	for _, res := range report.Files() {
		if res.Error != "" || len(res.Violations) == 0 {
			continue
		}

		a, err := r.Analyze(res.Path)
		if err != nil {
			return err
		}
		fixed, changed := fixer.Fix(a.Source, a.Stream, a.Findings)
		if changed == 0 {
			continue
		}
		total += changed

		if !write {
			fmt.Fprint(w, fixer.Diff(res.Path, string(a.Source), string(fixed)))
			continue
		}

		info, err := os.Stat(res.Path)
		if err != nil {
			return errors.FileWriteError(res.Path, err)
		}
		if err := os.WriteFile(res.Path, fixed, info.Mode().Perm()); err != nil {
			return errors.FileWriteError(res.Path, err)
		}
		log.Info("Fixed file", slog.String("path", res.Path), slog.Int("lines", changed))
		fmt.Fprintf(w, "fixed %d line(s) in %s\n", changed, res.Path)
	}

	if total == 0 {
		fmt.Fprintln(w, "no fixable violations")
	}
	return nil
}
