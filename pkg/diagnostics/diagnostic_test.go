package diagnostics

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/akam1o/scopebrace/pkg/token"
)

type stubPolicy struct {
	disabled map[string]bool
	warn     map[string]bool
	refs     map[string]string
}

func (p stubPolicy) Enabled(code string) bool { return !p.disabled[code] }
func (p stubPolicy) Reference(code string) string {
	return p.refs[code]
}
func (p stubPolicy) Severity(code string) Severity {
	if p.warn[code] {
		return SeverityWarning
	}
	return SeverityError
}

func mustTokenize(t *testing.T, src string) *token.Stream {
	t.Helper()
	s, err := token.Tokenize([]byte(src), token.Fragment())
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	return s
}

func TestFile_Report(t *testing.T) {
	// if(0) ' '(1) '{'(2) '\n'(3) '  '(4) '}'(5)
	s := mustTokenize(t, "if {\n  }")
	policy := stubPolicy{
		disabled: map[string]bool{"Off": true},
		warn:     map[string]bool{"Warn": true},
		refs:     map[string]string{"Err": "REQ.PHP.2.5.3"},
	}
	f := NewFile("a.php", s, policy)

	f.Report("Warn", "second", 5)
	f.Report("Err", "first", 2)
	f.Report("Off", "dropped", 2)

	got := f.Violations()
	if len(got) != 2 {
		t.Fatalf("expected 2 violations, got %d: %+v", len(got), got)
	}

	if got[0].Code != "Err" || got[0].Line != 1 || got[0].Column != 4 {
		t.Errorf("violation[0] = %+v, want Err at 1:4", got[0])
	}
	if got[0].Severity != SeverityError {
		t.Errorf("violation[0] severity = %q, want %q", got[0].Severity, SeverityError)
	}
	if got[0].Text() != "REQ.PHP.2.5.3 first" {
		t.Errorf("violation[0] text = %q", got[0].Text())
	}

	if got[1].Code != "Warn" || got[1].Line != 2 || got[1].Column != 3 {
		t.Errorf("violation[1] = %+v, want Warn at 2:3", got[1])
	}
	if got[1].Severity != SeverityWarning {
		t.Errorf("violation[1] severity = %q, want %q", got[1].Severity, SeverityWarning)
	}
	if got[1].Text() != "second" {
		t.Errorf("violation[1] text = %q, want unprefixed message", got[1].Text())
	}
}

func TestFile_ReportConcurrent(t *testing.T) {
	s := mustTokenize(t, "{}")
	f := NewFile("a.php", s, nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.Report("Code", "msg", 1)
		}()
	}
	wg.Wait()

	if n := len(f.Violations()); n != 50 {
		t.Errorf("expected 50 violations, got %d", n)
	}
}

func newTestReport(t *testing.T) *Report {
	t.Helper()
	s := mustTokenize(t, "if {\n  }")
	r := NewReport()

	f := NewFile("src/b.php", s, stubPolicy{refs: map[string]string{"Indent": "REQ.PHP.2.5.3"}})
	f.Report("Indent", "Closing brace indented incorrectly; expected 0 spaces, found 2", 5)
	r.Add(f.Result())

	r.Add(FileResult{Path: "src/a.php"})
	r.Add(FileResult{Path: "src/c.php", Error: "[TOKENIZE_ERROR] unterminated string"})
	return r
}

func TestReport_Counts(t *testing.T) {
	r := newTestReport(t)

	if r.RunID == "" {
		t.Error("RunID is empty")
	}
	if got := r.ErrorCount(); got != 1 {
		t.Errorf("ErrorCount() = %d, want 1", got)
	}
	if got := r.WarningCount(); got != 0 {
		t.Errorf("WarningCount() = %d, want 0", got)
	}
	if got := r.FailedFiles(); got != 1 {
		t.Errorf("FailedFiles() = %d, want 1", got)
	}
	if !r.HasErrors() {
		t.Error("HasErrors() = false, want true")
	}

	files := r.Files()
	if files[0].Path != "src/a.php" || files[2].Path != "src/c.php" {
		t.Errorf("Files() not sorted by path: %v, %v, %v", files[0].Path, files[1].Path, files[2].Path)
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, newTestReport(t)); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}
	out := buf.String()

	wantContains := []string{
		"FILE: src/b.php",
		"LINE  COL  SEVERITY  MESSAGE",
		"2     3    ERROR     REQ.PHP.2.5.3 Closing brace indented incorrectly; expected 0 spaces, found 2",
		"FILE: src/c.php\n  failed: [TOKENIZE_ERROR] unterminated string",
		"1 error(s), 0 warning(s) in 3 file(s)",
	}
	for _, want := range wantContains {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "src/a.php") {
		t.Errorf("clean file listed in output:\n%s", out)
	}
}

func TestWriteJSON(t *testing.T) {
	r := newTestReport(t)
	var buf bytes.Buffer
	if err := Write(&buf, r, FormatJSON); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	var doc struct {
		RunID  string `json:"run_id"`
		Errors int    `json:"errors"`
		Files  []struct {
			Path       string `json:"path"`
			Violations []struct {
				Code      string `json:"code"`
				Line      int    `json:"line"`
				Reference string `json:"reference"`
			} `json:"violations"`
			Error string `json:"error"`
		} `json:"files"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}

	if doc.RunID != r.RunID {
		t.Errorf("run_id = %q, want %q", doc.RunID, r.RunID)
	}
	if doc.Errors != 1 {
		t.Errorf("errors = %d, want 1", doc.Errors)
	}
	if len(doc.Files) != 3 {
		t.Fatalf("expected 3 files, got %d", len(doc.Files))
	}
	if doc.Files[0].Violations == nil {
		t.Error("clean file violations encoded as null, want []")
	}
	v := doc.Files[1].Violations[0]
	if v.Code != "Indent" || v.Line != 2 || v.Reference != "REQ.PHP.2.5.3" {
		t.Errorf("violation = %+v", v)
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("JSON"); err != nil || f != FormatJSON {
		t.Errorf("ParseFormat(JSON) = %q, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) expected error")
	}
}
