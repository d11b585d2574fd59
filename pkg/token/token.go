// Package token defines the lexical units of a SQL statement and the
// combinators used to carve a token stream into clauses.
//
// Tokens carry no type information. Keywords are recognized by comparing
// text case-insensitively against a Set, while identifiers keep the casing
// they had in the source statement.
package token

import "strings"

// Token is a single whitespace-free fragment of a statement.
type Token string

// Punctuation that always stands alone after tokenization, plus the
// positional parameter marker.
const (
	LParen      Token = "("
	RParen      Token = ")"
	Comma       Token = ","
	Placeholder Token = "?"
	Star        Token = "*"
)

// String returns the token text.
func (t Token) String() string {
	return string(t)
}

// Upper returns the token in upper case for keyword comparison.
func (t Token) Upper() string {
	return strings.ToUpper(string(t))
}

// Is reports whether the token equals any of the keywords, ignoring case.
func (t Token) Is(keywords ...string) bool {
	for _, kw := range keywords {
		if strings.EqualFold(string(t), kw) {
			return true
		}
	}
	return false
}

// IsPlaceholder reports whether the token is a positional parameter marker.
func (t Token) IsPlaceholder() bool {
	return t == Placeholder
}

// IsPunctuation reports whether the token is a parenthesis or a comma.
func (t Token) IsPunctuation() bool {
	return t == LParen || t == RParen || t == Comma
}

// Join renders tokens back into space separated text.
func Join(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = string(t)
	}
	return strings.Join(parts, " ")
}

// Set is a case-insensitive collection of keywords.
type Set map[string]struct{}

// NewSet builds a Set from the given words.
func NewSet(words ...string) Set {
	s := make(Set, len(words))
	for _, w := range words {
		s[strings.ToUpper(w)] = struct{}{}
	}
	return s
}

// Has reports whether the token matches a word in the set.
func (s Set) Has(t Token) bool {
	_, ok := s[t.Upper()]
	return ok
}

// Union returns a new Set holding the words of s and all others.
func (s Set) Union(others ...Set) Set {
	out := make(Set, len(s))
	for w := range s {
		out[w] = struct{}{}
	}
	for _, o := range others {
		for w := range o {
			out[w] = struct{}{}
		}
	}
	return out
}

// Common punctuation sets.
var (
	Parens      = NewSet(string(LParen), string(RParen))
	Commas      = NewSet(string(Comma))
	Punctuation = NewSet(string(LParen), string(RParen), string(Comma))
)
