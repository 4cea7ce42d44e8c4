package ruleset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/akam1o/scopebrace/pkg/diagnostics"
	"github.com/akam1o/scopebrace/pkg/errors"
	"github.com/akam1o/scopebrace/pkg/sniff"
)

func writeRuleset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scopebrace.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	return path
}

func TestLoad_Success(t *testing.T) {
	path := writeRuleset(t, `indent_width: 2
tab_width: 4
extensions: [php, phtml]
exclude:
  - "vendor/*"
rules:
  ScopeClosingBrace.BreakIndent:
    severity: warning
  ScopeClosingBrace.ContentBefore:
    disabled: true
`)

	rs, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if rs.IndentWidth != 2 {
		t.Errorf("Expected indent_width 2, got %d", rs.IndentWidth)
	}
	if rs.TabWidth != 4 {
		t.Errorf("Expected tab_width 4, got %d", rs.TabWidth)
	}
	if len(rs.Extensions) != 2 || rs.Extensions[1] != "phtml" {
		t.Errorf("Expected extensions [php phtml], got %v", rs.Extensions)
	}

	if got := rs.Severity(sniff.CodeBreakIndent); got != diagnostics.SeverityWarning {
		t.Errorf("BreakIndent severity = %q, want warning", got)
	}
	if got := rs.Reference(sniff.CodeBreakIndent); got != "REQ.PHP.2.5.15" {
		t.Errorf("BreakIndent reference = %q, want default kept after override", got)
	}
	if rs.Enabled(sniff.CodeContentBefore) {
		t.Error("ContentBefore should be disabled")
	}
	if !rs.Enabled(sniff.CodeIndent) {
		t.Error("Indent should stay enabled")
	}
	if got := rs.Severity(sniff.CodeIndent); got != diagnostics.SeverityError {
		t.Errorf("Indent severity = %q, want error", got)
	}
}

func TestLoad_EmptyFileUsesDefaults(t *testing.T) {
	rs, err := Load(writeRuleset(t, ""), nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if rs.IndentWidth != sniff.DefaultIndentWidth {
		t.Errorf("Expected default indent width, got %d", rs.IndentWidth)
	}
	if got := rs.Reference(sniff.CodeContentBefore); got != "REQ.PHP.2.5.4" {
		t.Errorf("ContentBefore reference = %q", got)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantCode string
		wantText string
	}{
		{
			name:     "invalid yaml",
			content:  "indent_width: [4\n",
			wantCode: errors.ErrCodeRulesetParseError,
		},
		{
			name:     "unknown field",
			content:  "indent_widht: 4\n",
			wantCode: errors.ErrCodeRulesetParseError,
		},
		{
			name:     "indent width out of range",
			content:  "indent_width: 0\n",
			wantCode: errors.ErrCodeRulesetValidation,
			wantText: "indent_width",
		},
		{
			name:     "unknown rule code",
			content:  "rules:\n  ScopeClosingBrace.Spacing:\n    severity: error\n",
			wantCode: errors.ErrCodeRulesetValidation,
			wantText: "unknown rule code",
		},
		{
			name:     "bad severity",
			content:  "rules:\n  ScopeClosingBrace.Indent:\n    severity: fatal\n",
			wantCode: errors.ErrCodeRulesetValidation,
			wantText: "severity",
		},
		{
			name:     "empty extensions",
			content:  "extensions: []\n",
			wantCode: errors.ErrCodeRulesetValidation,
			wantText: "extensions",
		},
		{
			name:     "bad exclude pattern",
			content:  "exclude: [\"[\"]\n",
			wantCode: errors.ErrCodeRulesetValidation,
			wantText: "exclude",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeRuleset(t, tt.content), nil)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			var e *errors.Error
			if !errors.As(err, &e) {
				t.Fatalf("Expected *errors.Error, got %T", err)
			}
			if e.Code != tt.wantCode {
				t.Errorf("Expected code %s, got %s", tt.wantCode, e.Code)
			}
			if tt.wantText != "" && !strings.Contains(err.Error(), tt.wantText) {
				t.Errorf("Expected error to mention %q, got %v", tt.wantText, err)
			}
		})
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/scopebrace.yaml", nil)
	var e *errors.Error
	if !errors.As(err, &e) || e.Code != errors.ErrCodeRulesetNotFound {
		t.Errorf("Expected %s, got %v", errors.ErrCodeRulesetNotFound, err)
	}
}

func TestRuleset_Matches(t *testing.T) {
	rs := Default()
	rs.Exclude = []string{"vendor/*", "*.tpl.php"}

	tests := []struct {
		path string
		want bool
	}{
		{"src/Foo.php", true},
		{"src/Foo.PHP", true},
		{"lib/bar.inc", true},
		{"README.md", false},
		{"vendor/x.php", false},
		{"app/vendor/x.php", false},
		{"views/page.tpl.php", false},
	}

	for _, tt := range tests {
		if got := rs.Matches(tt.path); got != tt.want {
			t.Errorf("Matches(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
