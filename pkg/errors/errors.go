package errors

import (
	"errors"
	"fmt"
)

// Error represents a scopebrace error with context
type Error struct {
	// Code is the error code (e.g., "RULESET_PARSE_ERROR")
	Code string
	// Message is the human-readable error message
	Message string
	// Cause describes why the error occurred
	Cause string
	// Action suggests what the user should do
	Action string
	// Underlying is the wrapped error
	Underlying error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *Error) Unwrap() error {
	return e.Underlying
}

// New creates a new Error
func New(code, message, cause, action string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
		Action:  action,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, code, message, cause, action string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Cause:      cause,
		Action:     action,
		Underlying: err,
	}
}

// Common error codes
const (
	// Source file errors
	ErrCodeFileNotFound  = "FILE_NOT_FOUND"
	ErrCodeFileRead      = "FILE_READ_ERROR"
	ErrCodeFileWrite     = "FILE_WRITE_ERROR"
	ErrCodeTokenizeError = "TOKENIZE_ERROR"

	// Ruleset errors
	ErrCodeRulesetNotFound   = "RULESET_NOT_FOUND"
	ErrCodeRulesetParseError = "RULESET_PARSE_ERROR"
	ErrCodeRulesetValidation = "RULESET_VALIDATION_ERROR"
)

// Common error constructors

// FileNotFound creates a source file not found error
func FileNotFound(path string) *Error {
	return New(
		ErrCodeFileNotFound,
		fmt.Sprintf("Source path not found: %s", path),
		"The specified file or directory does not exist",
		"Check the path passed on the command line",
	)
}

// FileReadError creates a source file read error
func FileReadError(path string, err error) *Error {
	return Wrap(
		err,
		ErrCodeFileRead,
		fmt.Sprintf("Failed to read source file: %s", path),
		"Permission denied or file is not readable",
		"Check file permissions with 'ls -l' and ensure the file is readable",
	)
}

// FileWriteError creates a fixed-file write error
func FileWriteError(path string, err error) *Error {
	return Wrap(
		err,
		ErrCodeFileWrite,
		fmt.Sprintf("Failed to write fixed source file: %s", path),
		"The file or its directory is not writable",
		"Check file permissions or rerun with -diff to preview the fix",
	)
}

// TokenizeError creates a tokenizer error pointing at a source position
func TokenizeError(line, column int, reason string) *Error {
	return New(
		ErrCodeTokenizeError,
		fmt.Sprintf("Failed to tokenize source at line %d, column %d: %s", line, column, reason),
		"The source file contains an unterminated string or comment",
		"Fix the syntax error before running the checker",
	)
}

// RulesetParseError creates a ruleset parse error
func RulesetParseError(path string, err error) *Error {
	return Wrap(
		err,
		ErrCodeRulesetParseError,
		fmt.Sprintf("Failed to parse ruleset: %s", path),
		"Invalid YAML syntax, structure, or unknown fields (check for typos)",
		"Verify YAML syntax with a validator or compare against the default ruleset",
	)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
