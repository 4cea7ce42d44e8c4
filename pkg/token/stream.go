package token

// Stream is an immutable, indexed sequence of tokens.
// Scope pairing is kept in a side table keyed by the index of the token that
// introduces the scope.
type Stream struct {
	tokens []Token
	scopes map[int]Scope
}

// Scope holds the indices of the delimiters of a scope
type Scope struct {
	Opener int
	Closer int
}

// NewStream builds a stream from tokens and a pairing table.
// Pairs that violate opener < closer or fall outside the stream are dropped.
func NewStream(tokens []Token, scopes map[int]Scope) *Stream {
	s := &Stream{
		tokens: append([]Token(nil), tokens...),
		scopes: make(map[int]Scope, len(scopes)),
	}
	for idx, sc := range scopes {
		if idx < 0 || idx >= len(s.tokens) {
			continue
		}
		if sc.Opener < 0 || sc.Closer >= len(s.tokens) || sc.Opener >= sc.Closer {
			continue
		}
		s.scopes[idx] = sc
	}
	return s
}

// Len returns the number of tokens
func (s *Stream) Len() int {
	return len(s.tokens)
}

// At returns the token at index i
func (s *Stream) At(i int) Token {
	return s.tokens[i]
}

// Scope returns the scope introduced by the token at index i
func (s *Stream) Scope(i int) (Scope, bool) {
	sc, ok := s.scopes[i]
	return sc, ok
}

// FindNext returns the index of the first token at or after start, up to and
// including end, whose kind is in kinds (or, with exclude, is not in kinds).
// An end of -1 means the end of the stream. Returns -1 when nothing matches.
func (s *Stream) FindNext(kinds []Kind, start, end int, exclude bool) int {
	if end < 0 || end >= len(s.tokens) {
		end = len(s.tokens) - 1
	}
	if start < 0 {
		start = 0
	}
	for i := start; i <= end; i++ {
		if matchKind(s.tokens[i].Kind, kinds) != exclude {
			return i
		}
	}
	return -1
}

// FindPrevious returns the index of the first token at or before start, down
// to and including end, whose kind is in kinds (or, with exclude, is not in
// kinds). An end of -1 means the start of the stream. Returns -1 when nothing
// matches.
func (s *Stream) FindPrevious(kinds []Kind, start, end int, exclude bool) int {
	if start >= len(s.tokens) {
		start = len(s.tokens) - 1
	}
	if end < 0 {
		end = 0
	}
	for i := start; i >= end; i-- {
		if matchKind(s.tokens[i].Kind, kinds) != exclude {
			return i
		}
	}
	return -1
}

func matchKind(k Kind, kinds []Kind) bool {
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}
