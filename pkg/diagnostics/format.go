package diagnostics

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"
)

// Format selects the output renderer
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (expected text or json)", s)
	}
}

// Write renders the report in the given format
func Write(w io.Writer, r *Report, format Format) error {
	if format == FormatJSON {
		return WriteJSON(w, r)
	}
	return WriteText(w, r)
}

// WriteText renders one aligned table per file followed by a summary line.
// Files without violations or errors are omitted.
func WriteText(w io.Writer, r *Report) error {
	files := r.Files()
	for _, f := range files {
		if f.Error != "" {
			fmt.Fprintf(w, "FILE: %s\n  failed: %s\n\n", f.Path, f.Error)
			continue
		}
		if len(f.Violations) == 0 {
			continue
		}

		fmt.Fprintf(w, "FILE: %s\n", f.Path)
		rows := make([][]string, 0, len(f.Violations))
		for _, v := range f.Violations {
			rows = append(rows, []string{
				strconv.Itoa(v.Line),
				strconv.Itoa(v.Column),
				strings.ToUpper(string(v.Severity)),
				v.Text(),
			})
		}
		if err := formatTable(w, []string{"LINE", "COL", "SEVERITY", "MESSAGE"}, rows); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	_, err := fmt.Fprintf(w, "%d error(s), %d warning(s) in %d file(s)\n",
		r.ErrorCount(), r.WarningCount(), len(files))
	return err
}

// formatTable formats data as a table with aligned columns
func formatTable(w io.Writer, headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	sep := make([]string, len(headers))
	for i := range headers {
		sep[i] = strings.Repeat("-", len(headers[i]))
	}
	fmt.Fprintln(tw, strings.Join(sep, "\t"))

	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	return tw.Flush()
}

type jsonReport struct {
	RunID    string       `json:"run_id"`
	Started  string       `json:"started_at"`
	Errors   int          `json:"errors"`
	Warnings int          `json:"warnings"`
	Files    []FileResult `json:"files"`
}

// WriteJSON renders the report as an indented JSON document
func WriteJSON(w io.Writer, r *Report) error {
	files := r.Files()
	for i := range files {
		if files[i].Violations == nil {
			files[i].Violations = []Violation{}
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{
		RunID:    r.RunID,
		Started:  r.StartedAt.Format(time.RFC3339),
		Errors:   r.ErrorCount(),
		Warnings: r.WarningCount(),
		Files:    files,
	})
}
