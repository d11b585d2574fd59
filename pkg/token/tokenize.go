package token

import "strings"

// padder isolates punctuation so that it splits into separate tokens.
var padder = strings.NewReplacer(
	",", " , ",
	"(", " ( ",
	")", " ) ",
)

// Tokenize splits a statement into tokens.
//
// Parentheses and commas become tokens of their own and any run of
// whitespace separates tokens. Quoted literals and comments receive no
// special treatment. Tokenize never fails; empty input yields no tokens.
func Tokenize(query string) []Token {
	fields := strings.Fields(padder.Replace(query))
	if len(fields) == 0 {
		return nil
	}
	tokens := make([]Token, len(fields))
	for i, f := range fields {
		tokens[i] = Token(f)
	}
	return tokens
}
