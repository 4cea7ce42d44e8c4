package token

import (
	"strings"
	"unicode"

	"github.com/akam1o/scopebrace/pkg/errors"
)

// Option configures the tokenizer
type Option func(*Lexer)

// WithTabWidth makes a tab advance the column to the next multiple of width.
// A width of 0 counts a tab as a single column.
func WithTabWidth(width int) Option {
	return func(l *Lexer) {
		l.tabWidth = width
	}
}

// Fragment treats the input as PHP code from the first byte, without
// requiring an opening "<?php" tag.
func Fragment() Option {
	return func(l *Lexer) {
		l.inCode = true
	}
}

// Lexer performs lexical analysis on PHP-style source text
type Lexer struct {
	src      []rune
	pos      int
	line     int
	column   int
	tabWidth int
	inCode   bool
	tokens   []Token
}

// NewLexer creates a new lexer over src
func NewLexer(src []byte, opts ...Option) *Lexer {
	l := &Lexer{
		src:    []rune(string(src)),
		line:   1,
		column: 1,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Tokenize lexes src and pairs its scopes into an immutable stream
func Tokenize(src []byte, opts ...Option) (*Stream, error) {
	l := NewLexer(src, opts...)
	tokens, err := l.All()
	if err != nil {
		return nil, err
	}
	return NewStream(tokens, PairScopes(tokens)), nil
}

// All consumes the whole input and returns its tokens
func (l *Lexer) All() ([]Token, error) {
	for !l.eof() {
		if !l.inCode {
			l.readInlineHTML()
			continue
		}
		if err := l.next(); err != nil {
			return nil, err
		}
	}
	return l.tokens, nil
}

func (l *Lexer) eof() bool {
	return l.pos >= len(l.src)
}

func (l *Lexer) peek(offset int) rune {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

func (l *Lexer) hasPrefix(s string) bool {
	rs := []rune(s)
	if l.pos+len(rs) > len(l.src) {
		return false
	}
	for i, r := range rs {
		if l.src[l.pos+i] != r {
			return false
		}
	}
	return true
}

// advance consumes one rune and updates line and column
func (l *Lexer) advance() rune {
	ch := l.src[l.pos]
	l.pos++
	switch {
	case ch == '\n':
		l.line++
		l.column = 1
	case ch == '\t' && l.tabWidth > 0:
		l.column += l.tabWidth - (l.column-1)%l.tabWidth
	default:
		l.column++
	}
	return ch
}

// emit records a token spanning src[start:l.pos]
func (l *Lexer) emit(kind Kind, start, line, column int) {
	l.tokens = append(l.tokens, Token{
		Kind:   kind,
		Text:   string(l.src[start:l.pos]),
		Line:   line,
		Column: column,
	})
}

func (l *Lexer) readInlineHTML() {
	start, line, column := l.pos, l.line, l.column
	for !l.eof() && !l.hasPrefix("<?") {
		l.advance()
	}
	if l.pos > start {
		l.emit(KindInlineHTML, start, line, column)
	}
	if l.eof() {
		return
	}

	start, line, column = l.pos, l.line, l.column
	switch {
	case l.hasPrefix("<?php"):
		l.consume(5)
	case l.hasPrefix("<?="):
		l.consume(3)
	default:
		l.consume(2)
	}
	l.emit(KindOpenTag, start, line, column)
	l.inCode = true
}

func (l *Lexer) consume(n int) {
	for i := 0; i < n && !l.eof(); i++ {
		l.advance()
	}
}

// next reads one token in code mode
func (l *Lexer) next() error {
	start, line, column := l.pos, l.line, l.column
	ch := l.peek(0)

	switch {
	case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == '\f' || ch == '\v':
		l.readWhitespace()
		l.emit(KindWhitespace, start, line, column)
	case l.hasPrefix("?>"):
		l.consume(2)
		if l.peek(0) == '\n' {
			l.advance()
		} else if l.peek(0) == '\r' && l.peek(1) == '\n' {
			l.consume(2)
		}
		l.emit(KindCloseTag, start, line, column)
		l.inCode = false
	case l.hasPrefix("#["):
		l.consume(2)
		l.emit(KindOperator, start, line, column)
	case ch == '#' || l.hasPrefix("//"):
		l.readLineComment()
		l.emit(KindComment, start, line, column)
	case l.hasPrefix("/*"):
		if !l.readBlockComment() {
			return errors.TokenizeError(line, column, "unterminated comment")
		}
		l.emit(KindComment, start, line, column)
	case ch == '\'' || ch == '"' || ch == '`':
		if !l.readQuoted(ch) {
			return errors.TokenizeError(line, column, "unterminated string")
		}
		l.emit(KindString, start, line, column)
	case l.hasPrefix("<<<"):
		if !l.readHeredoc() {
			return errors.TokenizeError(line, column, "unterminated heredoc")
		}
		l.emit(KindString, start, line, column)
	case ch == '$' && isIdentStart(l.peek(1)):
		l.advance()
		l.readWord()
		l.emit(KindVariable, start, line, column)
	case unicode.IsDigit(ch):
		l.readNumber()
		l.emit(KindNumber, start, line, column)
	case isIdentStart(ch) || ch == '\\':
		word := l.readWord()
		l.emit(l.classifyWord(word), start, line, column)
	default:
		l.emit(l.readPunctuation(), start, line, column)
	}
	return nil
}

// readWhitespace consumes blanks up to and including the first newline
func (l *Lexer) readWhitespace() {
	for !l.eof() {
		ch := l.peek(0)
		if ch == '\n' {
			l.advance()
			return
		}
		if ch != ' ' && ch != '\t' && ch != '\r' && ch != '\f' && ch != '\v' {
			return
		}
		l.advance()
	}
}

// readLineComment consumes a comment through its newline, stopping short of "?>"
func (l *Lexer) readLineComment() {
	for !l.eof() {
		if l.hasPrefix("?>") {
			return
		}
		if l.advance() == '\n' {
			return
		}
	}
}

func (l *Lexer) readBlockComment() bool {
	l.consume(2)
	for !l.eof() {
		if l.hasPrefix("*/") {
			l.consume(2)
			return true
		}
		l.advance()
	}
	return false
}

func (l *Lexer) readQuoted(quote rune) bool {
	l.advance()
	for !l.eof() {
		ch := l.advance()
		if ch == '\\' {
			if l.eof() {
				return false
			}
			l.advance()
			continue
		}
		if ch == quote {
			return true
		}
	}
	return false
}

// readHeredoc consumes a heredoc or nowdoc through its closing identifier
func (l *Lexer) readHeredoc() bool {
	l.consume(3)
	for l.peek(0) == ' ' || l.peek(0) == '\t' {
		l.advance()
	}
	quote := l.peek(0)
	if quote == '\'' || quote == '"' {
		l.advance()
	}
	var id strings.Builder
	for !l.eof() && isIdentPart(l.peek(0)) {
		id.WriteRune(l.advance())
	}
	if id.Len() == 0 {
		return false
	}
	if quote == '\'' || quote == '"' {
		if l.peek(0) != quote {
			return false
		}
		l.advance()
	}

	label := id.String()
	for !l.eof() {
		if l.advance() != '\n' {
			continue
		}
		for l.peek(0) == ' ' || l.peek(0) == '\t' {
			l.advance()
		}
		if l.hasPrefix(label) && !isIdentPart(l.peek(len([]rune(label)))) {
			l.consume(len([]rune(label)))
			return true
		}
	}
	return false
}

func (l *Lexer) readNumber() {
	for !l.eof() {
		ch := l.peek(0)
		if !isIdentPart(ch) && !(ch == '.' && unicode.IsDigit(l.peek(1))) {
			return
		}
		l.advance()
	}
}

func (l *Lexer) readWord() string {
	var sb strings.Builder
	for !l.eof() && (isIdentPart(l.peek(0)) || l.peek(0) == '\\') {
		sb.WriteRune(l.advance())
	}
	return sb.String()
}

// classifyWord maps a word to its keyword kind unless it is used as a member
// or constant name ("$obj->list", "Foo::class")
func (l *Lexer) classifyWord(word string) Kind {
	kind := LookupKeyword(word)
	if kind == KindIdentifier {
		return kind
	}
	for i := len(l.tokens) - 1; i >= 0; i-- {
		prev := l.tokens[i]
		if prev.Kind == KindWhitespace || prev.Kind == KindComment {
			continue
		}
		if prev.Kind == KindOperator && (prev.Text == "->" || prev.Text == "?->" || prev.Text == "::") {
			return KindIdentifier
		}
		break
	}
	return kind
}

var multiCharOperators = []string{"?->", "->", "::", "=>"}

func (l *Lexer) readPunctuation() Kind {
	for _, op := range multiCharOperators {
		if l.hasPrefix(op) {
			l.consume(len(op))
			return KindOperator
		}
	}

	switch l.advance() {
	case '{':
		return KindOpenCurly
	case '}':
		return KindCloseCurly
	case '(':
		return KindOpenParen
	case ')':
		return KindCloseParen
	case '[':
		return KindOpenSquare
	case ']':
		return KindCloseSquare
	case ';':
		return KindSemicolon
	case ':':
		return KindColon
	case ',':
		return KindComma
	default:
		return KindOperator
	}
}

func isIdentStart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch) || ch >= 0x80
}

func isIdentPart(ch rune) bool {
	return isIdentStart(ch) || unicode.IsDigit(ch)
}
