package parser

import "github.com/michaelhaar/type-safe-sql-query/pkg/token"

// Statement heads and their modifiers.
var (
	selectModifiers = token.NewSet(
		"SELECT", "ALL", "DISTINCT", "DISTINCTROW", "HIGH_PRIORITY", "STRAIGHT_JOIN",
		"SQL_SMALL_RESULT", "SQL_BIG_RESULT", "SQL_BUFFER_RESULT", "SQL_NO_CACHE",
		"SQL_CALC_FOUND_ROWS",
	)
	insertModifiers = token.NewSet("INSERT", "LOW_PRIORITY", "DELAYED", "HIGH_PRIORITY", "IGNORE", "INTO")
	updateModifiers = token.NewSet("UPDATE", "LOW_PRIORITY", "IGNORE")
	deleteModifiers = token.NewSet("DELETE", "LOW_PRIORITY", "QUICK", "IGNORE", "FROM")
)

// Clause openers.
var (
	kwFrom   = token.NewSet("FROM")
	kwWhere  = token.NewSet("WHERE")
	kwSet    = token.NewSet("SET")
	kwValues = token.NewSet("VALUES", "VALUE")
)

// Clause boundaries. Multi-word clauses such as GROUP BY are detected by
// their first word.
var (
	selectListEnd  = token.NewSet("INTO", "FROM", "WHERE", "GROUP", "HAVING", "WINDOW", "ORDER", "LIMIT", "FOR")
	selectFromEnd  = token.NewSet("WHERE", "GROUP", "HAVING", "WINDOW", "ORDER", "LIMIT", "INTO", "FOR")
	selectWhereEnd = token.NewSet("GROUP", "HAVING", "WINDOW", "ORDER", "LIMIT", "INTO", "FOR")

	insertColumnsEnd = token.NewSet("VALUES", "VALUE", "SET", "SELECT", "TABLE")
	insertValuesEnd  = token.NewSet("AS", "ON")
	insertSetEnd     = token.NewSet("AS", "ON")

	updateSetEnd = token.NewSet("WHERE", "ORDER", "LIMIT")
	orderOrLimit = token.NewSet("ORDER", "LIMIT")

	deleteTargetEnd = token.NewSet("WHERE", "ORDER", "LIMIT")
)

// Placeholder extractor resets.
var (
	whereResets = token.NewSet("AND", "OR")
	setResets   = whereResets.Union(token.Commas)
)

// Table reference grammar.
var (
	joinStart  = token.NewSet("JOIN", "INNER", "CROSS", "STRAIGHT_JOIN", "LEFT", "RIGHT", "NATURAL")
	joinSpec   = token.NewSet("ON", "USING")
	notAnAlias = joinStart.Union(joinSpec, token.Punctuation, token.NewSet("AS", "OUTER", "PARTITION", "USE", "FORCE", "IGNORE"))
)
