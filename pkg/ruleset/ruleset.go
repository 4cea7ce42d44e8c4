// Package ruleset loads the YAML ruleset that configures the checker and
// decides how its codes are reported.
package ruleset

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/akam1o/scopebrace/pkg/diagnostics"
	"github.com/akam1o/scopebrace/pkg/sniff"
)

// Ruleset represents a scopebrace ruleset file
type Ruleset struct {
	// IndentWidth is the step between a switch label and its break
	IndentWidth int `yaml:"indent_width" json:"indent_width"`

	// TabWidth expands tabs to tab stops when computing columns; 0 counts a
	// tab as one column
	TabWidth int `yaml:"tab_width" json:"tab_width"`

	// Extensions lists the file extensions to check, without the dot
	Extensions []string `yaml:"extensions" json:"extensions"`

	// Exclude lists glob patterns matched against slash-separated paths
	Exclude []string `yaml:"exclude,omitempty" json:"exclude,omitempty"`

	// Rules overrides per-code settings
	Rules map[string]Rule `yaml:"rules,omitempty" json:"rules,omitempty"`
}

// Rule holds the settings of one rule code
type Rule struct {
	Severity  string `yaml:"severity,omitempty" json:"severity,omitempty"`
	Reference string `yaml:"reference,omitempty" json:"reference,omitempty"`
	Disabled  bool   `yaml:"disabled,omitempty" json:"disabled,omitempty"`
}

// defaultReferences maps each code to its coding-standard requirement
var defaultReferences = map[string]string{
	sniff.CodeContentBefore: "REQ.PHP.2.5.4",
	sniff.CodeIndent:        "REQ.PHP.2.5.3",
	sniff.CodeBreakIndent:   "REQ.PHP.2.5.15",
}

// Default returns the built-in ruleset
func Default() *Ruleset {
	rules := make(map[string]Rule, len(defaultReferences))
	for code, ref := range defaultReferences {
		rules[code] = Rule{Severity: string(diagnostics.SeverityError), Reference: ref}
	}
	return &Ruleset{
		IndentWidth: sniff.DefaultIndentWidth,
		TabWidth:    0,
		Extensions:  []string{"php", "inc"},
		Rules:       rules,
	}
}

// Validate checks if the ruleset is valid
func (r *Ruleset) Validate() error {
	if r.IndentWidth < 1 || r.IndentWidth > 16 {
		return &ValidationError{Field: "indent_width", Message: fmt.Sprintf("must be between 1 and 16, got %d", r.IndentWidth)}
	}
	if r.TabWidth < 0 || r.TabWidth > 16 {
		return &ValidationError{Field: "tab_width", Message: fmt.Sprintf("must be between 0 and 16, got %d", r.TabWidth)}
	}
	if len(r.Extensions) == 0 {
		return &ValidationError{Field: "extensions", Message: "at least one extension is required"}
	}
	for _, ext := range r.Extensions {
		if ext == "" || strings.ContainsAny(ext, `/\`) {
			return &ValidationError{Field: "extensions", Message: fmt.Sprintf("invalid extension %q", ext)}
		}
	}
	for _, pattern := range r.Exclude {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return &ValidationError{Field: "exclude", Message: fmt.Sprintf("invalid pattern %q: %v", pattern, err)}
		}
	}

	for code, rule := range r.Rules {
		if _, ok := defaultReferences[code]; !ok {
			return &ValidationError{
				Field:   "rules." + code,
				Message: "unknown rule code (expected one of: " + strings.Join(sniff.Codes, ", ") + ")",
			}
		}
		switch diagnostics.Severity(rule.Severity) {
		case "", diagnostics.SeverityError, diagnostics.SeverityWarning:
		default:
			return &ValidationError{
				Field:   "rules." + code + ".severity",
				Message: "severity must be one of: error, warning",
			}
		}
	}

	return nil
}

// Enabled reports whether code is reported at all
func (r *Ruleset) Enabled(code string) bool {
	return !r.Rules[code].Disabled
}

// Severity returns the severity code is reported with
func (r *Ruleset) Severity(code string) diagnostics.Severity {
	if sev := r.Rules[code].Severity; sev != "" {
		return diagnostics.Severity(sev)
	}
	return diagnostics.SeverityError
}

// Reference returns the requirement reference prefixed to code's messages
func (r *Ruleset) Reference(code string) string {
	if rule, ok := r.Rules[code]; ok && rule.Reference != "" {
		return rule.Reference
	}
	return defaultReferences[code]
}

// Matches reports whether path has a checked extension and is not excluded
func (r *Ruleset) Matches(path string) bool {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	found := false
	for _, want := range r.Extensions {
		if strings.EqualFold(ext, want) {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	return !r.Excluded(path)
}

// Excluded reports whether path matches an exclude pattern. Patterns are
// tried against the whole path and against every trailing sub-path.
func (r *Ruleset) Excluded(path string) bool {
	slashed := filepath.ToSlash(path)
	parts := strings.Split(slashed, "/")
	for _, pattern := range r.Exclude {
		for i := range parts {
			if ok, _ := filepath.Match(pattern, strings.Join(parts[i:], "/")); ok {
				return true
			}
		}
	}
	return false
}

// ValidationError represents a ruleset validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
