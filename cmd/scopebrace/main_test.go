package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const misindented = "<?php\nif ($x) {\n    f();\n  }\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_ExitCodes(t *testing.T) {
	dir := t.TempDir()
	clean := writeFile(t, dir, "clean.php", "<?php\nif ($x) {\n    f();\n}\n")
	dirty := writeFile(t, dir, "dirty.php", misindented)
	broken := writeFile(t, dir, "broken.php", "<?php\n/* open\n")
	rules := writeFile(t, dir, "warn.yaml", "rules:\n  ScopeClosingBrace.Indent:\n    severity: warning\n")
	badRules := writeFile(t, dir, "bad.yaml", "indent_width: -1\n")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{name: "clean file", args: []string{clean}, want: ExitSuccess},
		{name: "violations", args: []string{dirty}, want: ExitViolations},
		{name: "warnings only", args: []string{"-ruleset", rules, dirty}, want: ExitSuccess},
		{name: "unreadable source", args: []string{broken}, want: ExitOperationError},
		{name: "invalid ruleset", args: []string{"-ruleset", badRules, clean}, want: ExitOperationError},
		{name: "no paths", args: nil, want: ExitUsageError},
		{name: "unknown flag", args: []string{"-bogus", clean}, want: ExitUsageError},
		{name: "unknown format", args: []string{"-format", "xml", clean}, want: ExitUsageError},
		{name: "diff and fix", args: []string{"-diff", "-fix", clean}, want: ExitUsageError},
		{name: "version", args: []string{"-version"}, want: ExitSuccess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, tt.args...)
			if code != tt.want {
				t.Errorf("exit code = %d, want %d (stderr: %s)", code, tt.want, stderr)
			}
		})
	}
}

func TestRun_TextReport(t *testing.T) {
	dirty := writeFile(t, t.TempDir(), "dirty.php", misindented)

	_, stdout, _ := runCLI(t, dirty)
	want := "REQ.PHP.2.5.3 Closing brace indented incorrectly; expected 0 spaces, found 2"
	if !strings.Contains(stdout, want) {
		t.Errorf("report missing %q:\n%s", want, stdout)
	}
}

func TestRun_JSONReport(t *testing.T) {
	dirty := writeFile(t, t.TempDir(), "dirty.php", misindented)

	_, stdout, _ := runCLI(t, "-format", "json", dirty)
	var doc struct {
		Errors int `json:"errors"`
	}
	if err := json.Unmarshal([]byte(stdout), &doc); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, stdout)
	}
	if doc.Errors != 1 {
		t.Errorf("errors = %d, want 1", doc.Errors)
	}
}

func TestRun_DiffAndFix(t *testing.T) {
	dir := t.TempDir()
	dirty := writeFile(t, dir, "dirty.php", misindented)

	code, stdout, _ := runCLI(t, "-diff", dirty)
	if code != ExitViolations {
		t.Errorf("-diff exit code = %d, want %d", code, ExitViolations)
	}
	if !strings.Contains(stdout, "-   }\n+ }\n") {
		t.Errorf("diff output missing change:\n%s", stdout)
	}
	if data, _ := os.ReadFile(dirty); string(data) != misindented {
		t.Error("-diff modified the file")
	}

	code, stdout, _ = runCLI(t, "-fix", dirty)
	if code != ExitSuccess {
		t.Errorf("-fix exit code = %d, want %d", code, ExitSuccess)
	}
	if !strings.Contains(stdout, "fixed 1 line(s)") {
		t.Errorf("unexpected -fix output: %s", stdout)
	}
	data, err := os.ReadFile(dirty)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if want := "<?php\nif ($x) {\n    f();\n}\n"; string(data) != want {
		t.Errorf("fixed file = %q, want %q", data, want)
	}

	code, _, _ = runCLI(t, dirty)
	if code != ExitSuccess {
		t.Errorf("exit code after fix = %d, want %d", code, ExitSuccess)
	}
}

func TestRun_IndentOverride(t *testing.T) {
	src := "<?php\nswitch ($x) {\n  case 1:\n    f();\n    break;\n}\n"
	path := writeFile(t, t.TempDir(), "switch.php", src)

	if code, stdout, _ := runCLI(t, path); code != ExitViolations {
		t.Errorf("default width exit code = %d, want %d\n%s", code, ExitViolations, stdout)
	}
	if code, stdout, _ := runCLI(t, "-indent", "2", path); code != ExitSuccess {
		t.Errorf("-indent 2 exit code = %d, want %d\n%s", code, ExitSuccess, stdout)
	}
}

func TestRun_FixHonorsDisabledRules(t *testing.T) {
	dir := t.TempDir()
	src := "<?php\nif ($x) {\n    f();\n  }\nswitch ($y) {\n    case 1:\n        g();\n    break;\n}\n"
	path := writeFile(t, dir, "mixed.php", src)
	rules := writeFile(t, dir, "rules.yaml", "rules:\n  ScopeClosingBrace.Indent:\n    disabled: true\n")

	code, stdout, stderr := runCLI(t, "-ruleset", rules, "-fix", path)
	if code != ExitSuccess {
		t.Errorf("-fix exit code = %d, want %d (stderr: %s)", code, ExitSuccess, stderr)
	}
	if !strings.Contains(stdout, "fixed 1 line(s)") {
		t.Errorf("unexpected -fix output: %s", stdout)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	want := "<?php\nif ($x) {\n    f();\n  }\nswitch ($y) {\n    case 1:\n        g();\n        break;\n}\n"
	if string(data) != want {
		t.Errorf("fixed file = %q, want %q", data, want)
	}
}

func TestRun_FixReportsUnfixable(t *testing.T) {
	src := "<?php\nif ($x) {\n    f(); }\n"
	path := writeFile(t, t.TempDir(), "inline.php", src)

	code, stdout, _ := runCLI(t, "-fix", path)
	if code != ExitViolations {
		t.Errorf("-fix exit code = %d, want %d", code, ExitViolations)
	}
	if !strings.Contains(stdout, "no fixable violations") {
		t.Errorf("unexpected -fix output: %s", stdout)
	}
	if want := "REQ.PHP.2.5.4 Closing brace must be on a line by itself"; !strings.Contains(stdout, want) {
		t.Errorf("-fix output missing %q:\n%s", want, stdout)
	}
	if data, _ := os.ReadFile(path); string(data) != src {
		t.Errorf("file changed to %q", data)
	}
}
