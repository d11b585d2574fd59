package parser

import (
	"github.com/michaelhaar/type-safe-sql-query/pkg/core"
	"github.com/michaelhaar/type-safe-sql-query/pkg/token"
)

// ParseSelectExpressions resolves a select list into projections.
//
// Each comma separated item is reduced to its first token, split at the
// first dot. Unqualified columns and a bare `*` are qualified with
// defaultTable. An alias is taken from a trailing `AS name` or from a
// single bare word after the column. Wildcards are kept as such and are
// expanded against the schema when the statement is bound.
func ParseSelectExpressions(tokens []token.Token, defaultTable string) []core.Projection {
	items := token.SplitTopLevel(tokens, token.Commas)
	projections := make([]core.Projection, 0, len(items))
	for _, item := range items {
		ref := core.ParseColumnRef(string(item[0])).WithDefault(defaultTable)
		p := core.Projection{Ref: ref}
		if !ref.Wildcard {
			p.Alias = selectAlias(item)
		}
		projections = append(projections, p)
	}
	return projections
}

func selectAlias(item []token.Token) string {
	n := len(item)
	switch {
	case n >= 3 && item[n-2].Is("AS"):
		return string(item[n-1])
	case n == 2 && !item[1].Is("AS") && !item[1].IsPunctuation():
		return string(item[1])
	}
	return ""
}
