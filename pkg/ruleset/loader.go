package ruleset

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/akam1o/scopebrace/pkg/errors"
	"github.com/akam1o/scopebrace/pkg/logger"
)

// Load loads and validates a ruleset from a YAML file.
// Fields missing from the file keep their default values.
func Load(path string, log *logger.Logger) (*Ruleset, error) {
	if log != nil {
		log.Debug("Loading ruleset", slog.String("path", path))
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.New(
			errors.ErrCodeRulesetNotFound,
			fmt.Sprintf("Ruleset file not found: %s", path),
			"The specified ruleset file does not exist",
			"Create the ruleset file or specify a valid path with -ruleset",
		)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(
			err,
			errors.ErrCodeRulesetNotFound,
			fmt.Sprintf("Failed to read ruleset: %s", path),
			"Permission denied or file is not readable",
			"Check file permissions with 'ls -l' and ensure the file is readable",
		)
	}

	rs, err := Parse(data)
	if err != nil {
		var e *errors.Error
		if errors.As(err, &e) && e.Code == errors.ErrCodeRulesetValidation {
			return nil, err
		}
		return nil, errors.RulesetParseError(path, err)
	}

	if log != nil {
		log.Info("Ruleset loaded successfully",
			slog.Int("indent_width", rs.IndentWidth),
			slog.Int("rule_overrides", len(rs.Rules)),
		)
	}

	return rs, nil
}

// Parse decodes and validates a ruleset document on top of Default
func Parse(data []byte) (*Ruleset, error) {
	rs := Default()
	defaults := rs.Rules
	rs.Rules = nil

	// Strict mode rejects unknown fields (typo detection)
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(rs); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	// Merge overrides over the default rule settings
	merged := defaults
	for code, rule := range rs.Rules {
		base, ok := merged[code]
		if !ok {
			merged[code] = rule
			continue
		}
		if rule.Severity != "" {
			base.Severity = rule.Severity
		}
		if rule.Reference != "" {
			base.Reference = rule.Reference
		}
		base.Disabled = rule.Disabled
		merged[code] = base
	}
	rs.Rules = merged

	if err := rs.Validate(); err != nil {
		return nil, errors.Wrap(
			err,
			errors.ErrCodeRulesetValidation,
			"Ruleset validation failed",
			"Ruleset contains invalid values",
			"Review the error details and fix the ruleset file",
		)
	}
	return rs, nil
}
