package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/akam1o/scopebrace/pkg/diagnostics"
	"github.com/akam1o/scopebrace/pkg/logger"
	"github.com/akam1o/scopebrace/pkg/ruleset"
	"github.com/akam1o/scopebrace/pkg/runner"
)

var (
	// Version information (set by ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Exit codes
const (
	ExitSuccess        = 0
	ExitOperationError = 1
	ExitUsageError     = 2
	ExitViolations     = 3
)

type flags struct {
	rulesetPath string
	format      string
	indent      int
	tabWidth    int
	workers     int
	diff        bool
	fix         bool
	debug       bool
	version     bool
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (*flags, []string, error) {
	f := &flags{}
	fs := flag.NewFlagSet("scopebrace", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&f.rulesetPath, "ruleset", "",
		"Path to ruleset YAML file (default: built-in ruleset)")
	fs.StringVar(&f.format, "format", "text",
		"Report format (text, json)")
	fs.IntVar(&f.indent, "indent", 0,
		"Override the ruleset's indent width")
	fs.IntVar(&f.tabWidth, "tab-width", -1,
		"Override the ruleset's tab width (0 counts a tab as one column)")
	fs.IntVar(&f.workers, "workers", 0,
		"Number of files checked in parallel (default: number of CPUs)")
	fs.BoolVar(&f.diff, "diff", false,
		"Print a diff of the indentation fixes instead of the report")
	fs.BoolVar(&f.fix, "fix", false,
		"Rewrite files with indentation fixes applied")
	fs.BoolVar(&f.debug, "debug", false,
		"Enable debug logging to stderr")
	fs.BoolVar(&f.version, "version", false,
		"Print version information and exit")

	fs.Usage = func() { showUsage(stderr) }
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	f, paths, err := parseFlags(args, stderr)
	if err != nil {
		if err == flag.ErrHelp {
			return ExitSuccess
		}
		return ExitUsageError
	}

	if f.version {
		printVersion(stdout)
		return ExitSuccess
	}

	if len(paths) == 0 {
		fmt.Fprintf(stderr, "Error: at least one path is required\n\n")
		showUsage(stderr)
		return ExitUsageError
	}

	format, err := diagnostics.ParseFormat(f.format)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n\n", err)
		return ExitUsageError
	}
	if f.diff && f.fix {
		fmt.Fprintf(stderr, "Error: -diff and -fix are mutually exclusive\n\n")
		return ExitUsageError
	}

	logCfg := logger.DefaultConfig()
	logCfg.Output = stderr
	if f.debug {
		logCfg.Level = slog.LevelDebug
	}
	log := logger.New("scopebrace", logCfg)

	rs, err := loadRuleset(f, log)
	if err != nil {
		log.ErrorWithCause("Failed to load ruleset", err,
			"The ruleset file is missing or invalid",
			"Fix the ruleset or run without -ruleset to use the defaults")
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitOperationError
	}

	r := runner.New(rs, runner.WithLogger(log), runner.WithWorkers(f.workers))
	report, runErr := r.Run(ctx, paths)
	if runErr != nil {
		log.Warn("Some files could not be checked", slog.Any("error", runErr))
	}

	if f.diff || f.fix {
		if err := applyFixes(r, report, f.fix, stdout, log); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return ExitOperationError
		}
	} else if err := diagnostics.Write(stdout, report, format); err != nil {
		fmt.Fprintf(stderr, "Error: failed to write report: %v\n", err)
		return ExitOperationError
	}

	if f.fix && report.HasErrors() {
		// Re-check so the exit code reflects what the fixer could not repair
		report, runErr = r.Run(ctx, paths)
		for _, res := range report.Files() {
			for _, v := range res.Violations {
				if v.Severity == diagnostics.SeverityError {
					fmt.Fprintf(stdout, "unfixed: %s:%d:%d %s\n", res.Path, v.Line, v.Column, v.Text())
				}
			}
		}
	}

	switch {
	case runErr != nil:
		return ExitOperationError
	case report.HasErrors():
		return ExitViolations
	default:
		return ExitSuccess
	}
}

// loadRuleset reads the ruleset file, if any, and applies flag overrides
func loadRuleset(f *flags, log *logger.Logger) (*ruleset.Ruleset, error) {
	rs := ruleset.Default()
	if f.rulesetPath != "" {
		loaded, err := ruleset.Load(f.rulesetPath, log)
		if err != nil {
			return nil, err
		}
		rs = loaded
	}

	if f.indent > 0 {
		rs.IndentWidth = f.indent
	}
	if f.tabWidth >= 0 {
		rs.TabWidth = f.tabWidth
	}
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return rs, nil
}

func showUsage(w io.Writer) {
	fmt.Fprintf(w, `Usage: scopebrace [options] <path>...

Checks that the closing brace of every scope is on its own line and aligned
with the statement that opened it. Directories are searched recursively for
files with the ruleset's extensions.

Options:
  -ruleset <path>     Ruleset YAML file (default: built-in ruleset)
  -format <fmt>       Report format: text, json (default: text)
  -indent <n>         Override indent width between a case label and its break
  -tab-width <n>      Override tab width (0 counts a tab as one column)
  -workers <n>        Files checked in parallel (default: number of CPUs)
  -diff               Print the indentation fixes as a diff
  -fix                Rewrite files with indentation fixes applied
  -debug              Enable debug logging to stderr
  -version            Print version information and exit

Exit codes:
  0  no error-level violations
  1  a file or the ruleset could not be processed
  2  usage error
  3  error-level violations found (with -fix: violations left unfixed)

Examples:
  scopebrace src/
  scopebrace -ruleset scopebrace.yaml -format json src/ lib/Foo.php
  scopebrace -diff src/

`)
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "scopebrace\n")
	fmt.Fprintf(w, "  Version:    %s\n", Version)
	fmt.Fprintf(w, "  Commit:     %s\n", Commit)
	fmt.Fprintf(w, "  Build Date: %s\n", BuildDate)
}
