// Package token turns PHP-style source into an indexed token stream with
// scope pairing, the input every sniff operates on.
package token

import "strings"

// Kind represents the lexical category of a token
type Kind int

const (
	// KindWhitespace is a run of blanks; a newline ends the run and is part of it
	KindWhitespace Kind = iota
	// KindComment is a line or block comment
	KindComment
	// KindOpenTag is "<?php" or "<?"
	KindOpenTag
	// KindCloseTag is "?>"
	KindCloseTag
	// KindInlineHTML is text outside of PHP tags
	KindInlineHTML
	// KindIdentifier is a name that is not a recognised keyword
	KindIdentifier
	// KindVariable is a "$name" token
	KindVariable
	// KindString is a quoted string literal
	KindString
	// KindNumber is a numeric literal
	KindNumber
	// KindOperator is any punctuation not listed below
	KindOperator
	KindOpenCurly
	KindCloseCurly
	KindOpenParen
	KindCloseParen
	KindOpenSquare
	KindCloseSquare
	KindSemicolon
	KindColon
	KindComma

	// Scope-introducing keywords
	KindClass
	KindInterface
	KindTrait
	KindFunction
	KindIf
	KindElse
	KindElseif
	KindSwitch
	KindCase
	KindDefault
	KindWhile
	KindDo
	KindFor
	KindForeach
	KindTry
	KindCatch

	// Statement keywords
	KindBreak
	KindReturn

	// Modifiers that may precede a declaration on the same line
	KindPublic
	KindProtected
	KindPrivate
	KindStatic
	KindAbstract
	KindFinal
)

var kindNames = map[Kind]string{
	KindWhitespace:  "WHITESPACE",
	KindComment:     "COMMENT",
	KindOpenTag:     "OPEN_TAG",
	KindCloseTag:    "CLOSE_TAG",
	KindInlineHTML:  "INLINE_HTML",
	KindIdentifier:  "IDENTIFIER",
	KindVariable:    "VARIABLE",
	KindString:      "STRING",
	KindNumber:      "NUMBER",
	KindOperator:    "OPERATOR",
	KindOpenCurly:   "OPEN_CURLY_BRACKET",
	KindCloseCurly:  "CLOSE_CURLY_BRACKET",
	KindOpenParen:   "OPEN_PARENTHESIS",
	KindCloseParen:  "CLOSE_PARENTHESIS",
	KindOpenSquare:  "OPEN_SQUARE_BRACKET",
	KindCloseSquare: "CLOSE_SQUARE_BRACKET",
	KindSemicolon:   "SEMICOLON",
	KindColon:       "COLON",
	KindComma:       "COMMA",
	KindClass:       "CLASS",
	KindInterface:   "INTERFACE",
	KindTrait:       "TRAIT",
	KindFunction:    "FUNCTION",
	KindIf:          "IF",
	KindElse:        "ELSE",
	KindElseif:      "ELSEIF",
	KindSwitch:      "SWITCH",
	KindCase:        "CASE",
	KindDefault:     "DEFAULT",
	KindWhile:       "WHILE",
	KindDo:          "DO",
	KindFor:         "FOR",
	KindForeach:     "FOREACH",
	KindTry:         "TRY",
	KindCatch:       "CATCH",
	KindBreak:       "BREAK",
	KindReturn:      "RETURN",
	KindPublic:      "PUBLIC",
	KindProtected:   "PROTECTED",
	KindPrivate:     "PRIVATE",
	KindStatic:      "STATIC",
	KindAbstract:    "ABSTRACT",
	KindFinal:       "FINAL",
}

// String returns a string representation of the token kind
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// keywords maps lower-cased keyword text to its kind
var keywords = map[string]Kind{
	"class":     KindClass,
	"interface": KindInterface,
	"trait":     KindTrait,
	"function":  KindFunction,
	"if":        KindIf,
	"else":      KindElse,
	"elseif":    KindElseif,
	"switch":    KindSwitch,
	"case":      KindCase,
	"default":   KindDefault,
	"while":     KindWhile,
	"do":        KindDo,
	"for":       KindFor,
	"foreach":   KindForeach,
	"try":       KindTry,
	"catch":     KindCatch,
	"break":     KindBreak,
	"return":    KindReturn,
	"public":    KindPublic,
	"protected": KindProtected,
	"private":   KindPrivate,
	"static":    KindStatic,
	"abstract":  KindAbstract,
	"final":     KindFinal,
}

// LookupKeyword returns the keyword kind for word, or KindIdentifier.
// PHP keywords are case-insensitive.
func LookupKeyword(word string) Kind {
	if k, ok := keywords[strings.ToLower(word)]; ok {
		return k
	}
	return KindIdentifier
}

// EOL is the end-of-line marker recognised inside token text
const EOL = "\n"

// Token represents a single token of the source stream
type Token struct {
	Kind   Kind
	Text   string
	Line   int
	Column int
}

// HasEOL reports whether the token text contains an end-of-line marker
func (t Token) HasEOL() bool {
	return strings.Contains(t.Text, EOL)
}
