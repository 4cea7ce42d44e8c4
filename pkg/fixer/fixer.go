// Package fixer re-indents misaligned scope closers and renders the change
// as a line diff.
package fixer

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/akam1o/scopebrace/pkg/sniff"
	"github.com/akam1o/scopebrace/pkg/token"
)

// Fix rewrites the leading whitespace of every misindented closer's line so
// the closer starts at its expected column. Findings without an expected
// column (closers sharing a line with content) are left alone. It returns
// the new source and the number of lines changed.
func Fix(src []byte, s *token.Stream, findings []sniff.Finding) ([]byte, int) {
	want := make(map[int]int)
	for _, f := range findings {
		if f.Expected < 1 || f.Index < 0 || f.Index >= s.Len() {
			continue
		}
		line := s.At(f.Index).Line
		if _, ok := want[line]; !ok {
			want[line] = f.Expected
		}
	}
	if len(want) == 0 {
		return src, 0
	}

	lines := strings.SplitAfter(string(src), "\n")
	changed := 0
	for i, text := range lines {
		expected, ok := want[i+1]
		if !ok {
			continue
		}
		body := strings.TrimLeft(text, " \t")
		fixed := strings.Repeat(" ", expected-1) + body
		if fixed != text {
			lines[i] = fixed
			changed++
		}
	}
	return []byte(strings.Join(lines, "")), changed
}

// contextLines is the number of unchanged lines shown around each change
const contextLines = 3

// Diff returns a line diff between oldText and newText, or "" when they are
// identical. Removed lines start with "- ", added lines with "+ ", and
// unchanged context lines with two spaces.
func Diff(path, oldText, newText string) string {
	oldText = normalizeLineEndings(oldText)
	newText = normalizeLineEndings(newText)
	if oldText == newText {
		return ""
	}

	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var result strings.Builder
	result.WriteString("--- " + path + "\n")
	result.WriteString("+++ " + path + " (fixed)\n")

	for i, diff := range diffs {
		lines := splitLines(diff.Text)

		switch diff.Type {
		case diffmatchpatch.DiffDelete:
			writeLines(&result, "- ", lines)

		case diffmatchpatch.DiffInsert:
			writeLines(&result, "+ ", lines)

		case diffmatchpatch.DiffEqual:
			first, last := i == 0, i == len(diffs)-1
			switch {
			case len(lines) <= contextLines*2 && !first && !last:
				writeLines(&result, "  ", lines)
			case first:
				if len(lines) > contextLines {
					result.WriteString("  ...\n")
					lines = lines[len(lines)-contextLines:]
				}
				writeLines(&result, "  ", lines)
			case last:
				if len(lines) > contextLines {
					writeLines(&result, "  ", lines[:contextLines])
					result.WriteString("  ...\n")
				} else {
					writeLines(&result, "  ", lines)
				}
			default:
				writeLines(&result, "  ", lines[:contextLines])
				result.WriteString("  ...\n")
				writeLines(&result, "  ", lines[len(lines)-contextLines:])
			}
		}
	}

	return result.String()
}

func writeLines(sb *strings.Builder, prefix string, lines []string) {
	for _, line := range lines {
		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteString("\n")
	}
}

// splitLines splits text into lines, dropping the empty tail after a final newline
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// normalizeLineEndings converts all line endings to \n for consistent comparison
func normalizeLineEndings(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}
