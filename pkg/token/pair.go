package token

// blockOwners are the keywords whose scope is delimited by curly brackets
var blockOwners = map[Kind]bool{
	KindClass:     true,
	KindInterface: true,
	KindTrait:     true,
	KindFunction:  true,
	KindIf:        true,
	KindElse:      true,
	KindElseif:    true,
	KindSwitch:    true,
	KindWhile:     true,
	KindDo:        true,
	KindFor:       true,
	KindForeach:   true,
	KindTry:       true,
	KindCatch:     true,
}

// PairScopes computes the scope table for tokens.
//
// A block keyword is paired with the first "{" that follows it outside of
// parentheses, provided no ";" or other block keyword comes first. A case or
// default label directly inside a switch body opens at its ":" and closes at
// the first break of the same nesting level, or else at the next label, or
// else at the switch's closing brace.
func PairScopes(tokens []Token) map[int]Scope {
	braces := matchBraces(tokens)
	scopes := make(map[int]Scope)
	owners := make(map[int]Kind)

	for i, tok := range tokens {
		if !blockOwners[tok.Kind] {
			continue
		}
		open := findBlockOpener(tokens, i)
		if open < 0 {
			continue
		}
		close, ok := braces[open]
		if !ok {
			continue
		}
		scopes[i] = Scope{Opener: open, Closer: close}
		owners[open] = tok.Kind
	}

	var stack []int
	for i, tok := range tokens {
		switch tok.Kind {
		case KindOpenCurly:
			stack = append(stack, i)
		case KindCloseCurly:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case KindCase, KindDefault:
			if len(stack) == 0 || owners[stack[len(stack)-1]] != KindSwitch {
				continue
			}
			body := stack[len(stack)-1]
			end, ok := braces[body]
			if !ok {
				continue
			}
			if sc, ok := pairLabel(tokens, braces, i, end); ok {
				scopes[i] = sc
			}
		}
	}

	return scopes
}

// matchBraces maps each "{" index to its matching "}" index
func matchBraces(tokens []Token) map[int]int {
	pairs := make(map[int]int)
	var stack []int
	for i, tok := range tokens {
		switch tok.Kind {
		case KindOpenCurly:
			stack = append(stack, i)
		case KindCloseCurly:
			if len(stack) == 0 {
				continue
			}
			pairs[stack[len(stack)-1]] = i
			stack = stack[:len(stack)-1]
		}
	}
	return pairs
}

func findBlockOpener(tokens []Token, owner int) int {
	depth := 0
	for j := owner + 1; j < len(tokens); j++ {
		switch kind := tokens[j].Kind; {
		case kind == KindOpenParen || kind == KindOpenSquare:
			depth++
		case kind == KindCloseParen || kind == KindCloseSquare:
			depth--
			if depth < 0 {
				return -1
			}
		case depth > 0:
		case kind == KindOpenCurly:
			return j
		case kind == KindSemicolon || kind == KindCloseCurly || kind == KindCloseTag:
			return -1
		case blockOwners[kind]:
			// "else if": the inner keyword owns the brace
			return -1
		}
	}
	return -1
}

// pairLabel pairs the case or default label at index label inside a switch
// body whose closing brace is at end
func pairLabel(tokens []Token, braces map[int]int, label, end int) (Scope, bool) {
	opener := -1
	depth := 0
	for j := label + 1; j < end; j++ {
		kind := tokens[j].Kind
		if kind == KindOpenParen || kind == KindOpenSquare {
			depth++
		} else if kind == KindCloseParen || kind == KindCloseSquare {
			depth--
		} else if depth == 0 && (kind == KindColon || kind == KindSemicolon) {
			opener = j
			break
		}
	}
	if opener < 0 {
		return Scope{}, false
	}

	for j := opener + 1; j < end; j++ {
		switch tokens[j].Kind {
		case KindOpenCurly:
			close, ok := braces[j]
			if !ok || close >= end {
				return Scope{}, false
			}
			j = close
		case KindBreak, KindCase, KindDefault:
			return Scope{Opener: opener, Closer: j}, true
		}
	}
	return Scope{Opener: opener, Closer: end}, true
}
