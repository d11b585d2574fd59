package token

// The combinators below never modify their input. Results that are
// sub-slices of the input are capacity-clipped, so appending to them
// cannot overwrite the caller's tokens.

// IndexOf returns the position of the first token in set, or -1.
func IndexOf(tokens []Token, set Set) int {
	for i, t := range tokens {
		if set.Has(t) {
			return i
		}
	}
	return -1
}

// Contains reports whether any token is in set.
func Contains(tokens []Token, set Set) bool {
	return IndexOf(tokens, set) >= 0
}

// SliceBetween returns the tokens strictly after the first token in from
// and strictly before the first following token in to. When no closing
// token follows, the slice runs to the end. It is empty when from never
// occurs.
func SliceBetween(tokens []Token, from, to Set) []Token {
	start := IndexOf(tokens, from)
	if start < 0 {
		return nil
	}
	rest := tokens[start+1:]
	end := IndexOf(rest, to)
	if end < 0 {
		return rest
	}
	return rest[:end:end]
}

// SliceFromFirstNonMatch drops the leading run of tokens that are in set.
func SliceFromFirstNonMatch(tokens []Token, set Set) []Token {
	i := 0
	for i < len(tokens) && set.Has(tokens[i]) {
		i++
	}
	return tokens[i:]
}

// SliceBeforeFirstMatch returns the tokens before the first token in set,
// or all tokens when none matches.
func SliceBeforeFirstMatch(tokens []Token, set Set) []Token {
	i := IndexOf(tokens, set)
	if i < 0 {
		return tokens
	}
	return tokens[:i:i]
}

// SliceFromFirstMatch returns the tokens from the first token in set
// onwards, including it. It is empty when nothing matches.
func SliceFromFirstMatch(tokens []Token, set Set) []Token {
	i := IndexOf(tokens, set)
	if i < 0 {
		return nil
	}
	return tokens[i:]
}

// SliceAfterFirstMatch returns the tokens after the first token in set.
// It is empty when nothing matches.
func SliceAfterFirstMatch(tokens []Token, set Set) []Token {
	i := IndexOf(tokens, set)
	if i < 0 {
		return nil
	}
	return tokens[i+1:]
}

// Shift drops the first token.
func Shift(tokens []Token) []Token {
	if len(tokens) == 0 {
		return tokens
	}
	return tokens[1:]
}

// FilterOut returns the tokens not in set, preserving order.
func FilterOut(tokens []Token, set Set) []Token {
	out := make([]Token, 0, len(tokens))
	for _, t := range tokens {
		if !set.Has(t) {
			out = append(out, t)
		}
	}
	return out
}

// SplitTopLevel splits tokens at separators that sit outside any
// parentheses. Empty groups are dropped and separators are not returned.
func SplitTopLevel(tokens []Token, sep Set) [][]Token {
	var (
		groups [][]Token
		depth  int
		start  int
	)
	flush := func(end int) {
		if end > start {
			groups = append(groups, tokens[start:end:end])
		}
	}
	for i, t := range tokens {
		switch {
		case t == LParen:
			depth++
		case t == RParen:
			if depth > 0 {
				depth--
			}
		case depth == 0 && sep.Has(t):
			flush(i)
			start = i + 1
		}
	}
	flush(len(tokens))
	return groups
}

// MatchingParen returns the index of the parenthesis that closes the one
// at open, or -1 when it is unbalanced.
func MatchingParen(tokens []Token, open int) int {
	if open < 0 || open >= len(tokens) || tokens[open] != LParen {
		return -1
	}
	depth := 0
	for i := open; i < len(tokens); i++ {
		switch tokens[i] {
		case LParen:
			depth++
		case RParen:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
