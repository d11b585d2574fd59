package parser

import (
	"github.com/michaelhaar/type-safe-sql-query/pkg/core"
	"github.com/michaelhaar/type-safe-sql-query/pkg/token"
)

// ExtractPlaceholders scans a WHERE or SET clause and returns the column
// each `?` is compared with or assigned to, in source order.
//
// The scanner holds a current column. A token in resets clears it. With
// the column clear, the next token becomes the current column; with it
// set, every `?` appends it and any other token is skipped. The AND that
// closes `BETWEEN ? AND ?` does not clear the column. NOT is skipped in
// both states, so `NOT deleted = ?` and `name NOT LIKE ?` both bind to
// their column. A `?` seen while the column is clear appends a zero
// reference, so the result always has one entry per placeholder.
//
// Callers filter out the punctuation that carries no meaning for their
// clause before scanning.
func ExtractPlaceholders(tokens []token.Token, resets token.Set) []core.ColumnRef {
	var (
		params  []core.ColumnRef
		current token.Token
		between bool
	)
	for _, t := range tokens {
		switch {
		case t.Is("NOT"):
			continue
		case between && t.Is("AND"):
			between = false
		case resets.Has(t):
			current, between = "", false
		case t.IsPlaceholder():
			if current == "" {
				params = append(params, core.ColumnRef{})
				continue
			}
			params = append(params, core.ParseColumnRef(string(current)))
		case current == "":
			current = t
		case t.Is("BETWEEN"):
			between = true
		}
	}
	return params
}

// extractWhere scans a WHERE clause; parentheses and commas are dropped
// so that `id IN (?, ?)` yields two references to id.
func extractWhere(tokens []token.Token) []core.ColumnRef {
	return ExtractPlaceholders(token.FilterOut(tokens, token.Punctuation), whereResets)
}

// extractSet scans a SET list, where commas separate assignments.
func extractSet(tokens []token.Token) []core.ColumnRef {
	return ExtractPlaceholders(token.FilterOut(tokens, token.Parens), setResets)
}
