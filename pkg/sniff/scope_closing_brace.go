// Package sniff implements the ScopeClosingBrace rule: the closing delimiter
// of every scope must sit alone on its line, aligned with the first token of
// the line that opened the scope.
package sniff

import (
	"fmt"

	"github.com/akam1o/scopebrace/pkg/token"
)

// Rule codes reported by the checker
const (
	CodeContentBefore = "ScopeClosingBrace.ContentBefore"
	CodeIndent        = "ScopeClosingBrace.Indent"
	CodeBreakIndent   = "ScopeClosingBrace.BreakIndent"
)

// Codes lists every code the checker can report
var Codes = []string{CodeContentBefore, CodeIndent, CodeBreakIndent}

// DefaultIndentWidth is the indentation step between a switch label and its
// break statement
const DefaultIndentWidth = 4

// Reporter receives violations. Report is fire-and-forget.
type Reporter interface {
	Report(code, message string, index int)
}

// Finding is the outcome of evaluating one trigger token
type Finding struct {
	Code    string
	Message string
	// Index is the position of the offending closer in the stream
	Index int
	// Expected and Found are 1-based columns; both are zero for
	// CodeContentBefore
	Expected int
	Found    int
}

// Placement classifies how a scope's closer must be indented
type Placement int

const (
	// PlacementGeneral aligns the closer with the opening line
	PlacementGeneral Placement = iota
	// PlacementStandaloneBreak is a break closing a case label
	PlacementStandaloneBreak
	// PlacementDefaultBreak is a break closing a default label
	PlacementDefaultBreak
	// PlacementDefaultClosingBrace is the switch's own brace closing a default label
	PlacementDefaultClosingBrace
)

func (p Placement) String() string {
	switch p {
	case PlacementGeneral:
		return "general"
	case PlacementStandaloneBreak:
		return "standalone-break"
	case PlacementDefaultBreak:
		return "default-break"
	case PlacementDefaultClosingBrace:
		return "default-closing-brace"
	default:
		return "unknown"
	}
}

// Classify maps a (trigger, closer) kind pair to its placement
func Classify(trigger, closer token.Kind) Placement {
	switch {
	case trigger == token.KindCase && closer == token.KindBreak:
		return PlacementStandaloneBreak
	case trigger == token.KindDefault && closer == token.KindBreak:
		return PlacementDefaultBreak
	case trigger == token.KindDefault && closer == token.KindCloseCurly:
		return PlacementDefaultClosingBrace
	default:
		return PlacementGeneral
	}
}

// Checker verifies the placement of scope closers
type Checker struct {
	indentWidth int
}

// Option configures a Checker
type Option func(*Checker)

// WithIndentWidth sets the indentation step used for switch labels
func WithIndentWidth(width int) Option {
	return func(c *Checker) {
		if width > 0 {
			c.indentWidth = width
		}
	}
}

// New creates a checker with a 4-column indentation step unless overridden
func New(opts ...Option) *Checker {
	c := &Checker{indentWidth: DefaultIndentWidth}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IndentWidth returns the configured indentation step
func (c *Checker) IndentWidth() int {
	return c.indentWidth
}

var scopeOpeners = []token.Kind{
	token.KindClass,
	token.KindInterface,
	token.KindTrait,
	token.KindFunction,
	token.KindIf,
	token.KindSwitch,
	token.KindCase,
	token.KindDefault,
	token.KindWhile,
	token.KindElse,
	token.KindElseif,
	token.KindFor,
	token.KindForeach,
	token.KindDo,
	token.KindTry,
	token.KindCatch,
}

// Register returns the token kinds the checker is triggered by
func (c *Checker) Register() []token.Kind {
	return append([]token.Kind(nil), scopeOpeners...)
}

var whitespace = []token.Kind{token.KindWhitespace}

// Expected returns the column the closer must start at for a placement,
// given the reference column of the opening line
func (c *Checker) Expected(p Placement, reference int) int {
	switch p {
	case PlacementStandaloneBreak, PlacementDefaultBreak:
		return reference + c.indentWidth
	case PlacementDefaultClosingBrace:
		return reference - c.indentWidth
	default:
		return reference
	}
}

// ReferenceColumn returns the column of the first non-whitespace token on
// the line holding the token at index trigger. Leading modifiers such as
// "public static" or a "}" before "else" are part of that line.
func ReferenceColumn(s *token.Stream, trigger int) int {
	lineStart := -1
	for i := trigger - 1; i >= 0; i-- {
		if s.At(i).HasEOL() {
			lineStart = i
			break
		}
	}

	first := s.FindNext(whitespace, lineStart+1, trigger, true)
	if first < 0 {
		first = trigger
	}
	return s.At(first).Column
}

// Evaluate checks the scope introduced by the token at index trigger.
// It reports false when the trigger has no scope or the closer is placed
// correctly.
func (c *Checker) Evaluate(s *token.Stream, trigger int) (Finding, bool) {
	scope, ok := s.Scope(trigger)
	if !ok {
		return Finding{}, false
	}

	startColumn := ReferenceColumn(s, trigger)
	closer := s.At(scope.Closer)

	lastContent := s.FindPrevious(whitespace, scope.Closer-1, scope.Opener, true)
	if lastContent >= 0 && s.At(lastContent).Line == closer.Line {
		return Finding{
			Code:    CodeContentBefore,
			Message: "Closing brace must be on a line by itself",
			Index:   scope.Closer,
		}, true
	}

	placement := Classify(s.At(trigger).Kind, closer.Kind)
	expected := c.Expected(placement, startColumn)
	if closer.Column == expected {
		return Finding{}, false
	}

	f := Finding{
		Code:     CodeIndent,
		Index:    scope.Closer,
		Expected: expected,
		Found:    closer.Column,
	}
	what := "Closing brace"
	if placement != PlacementGeneral {
		f.Code = CodeBreakIndent
		what = "Break statement"
	}
	f.Message = fmt.Sprintf("%s indented incorrectly; expected %d spaces, found %d",
		what, expected-1, closer.Column-1)
	return f, true
}

// Check evaluates one trigger and hands any violation to r
func (c *Checker) Check(s *token.Stream, trigger int, r Reporter) {
	if f, ok := c.Evaluate(s, trigger); ok {
		r.Report(f.Code, f.Message, f.Index)
	}
}

// Triggers returns the indices of every token the checker is registered for
func (c *Checker) Triggers(s *token.Stream) []int {
	var idx []int
	for i := 0; i < s.Len(); i++ {
		if matchAny(s.At(i).Kind, scopeOpeners) {
			idx = append(idx, i)
		}
	}
	return idx
}

// CheckAll runs the checker over every trigger of s in stream order
func (c *Checker) CheckAll(s *token.Stream, r Reporter) {
	for _, i := range c.Triggers(s) {
		c.Check(s, i, r)
	}
}

// EvaluateAll returns the findings for every trigger of s in stream order
func (c *Checker) EvaluateAll(s *token.Stream) []Finding {
	var findings []Finding
	for _, i := range c.Triggers(s) {
		if f, ok := c.Evaluate(s, i); ok {
			findings = append(findings, f)
		}
	}
	return findings
}

func matchAny(k token.Kind, kinds []token.Kind) bool {
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}
