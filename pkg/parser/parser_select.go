package parser

import (
	"github.com/michaelhaar/type-safe-sql-query/pkg/core"
	"github.com/michaelhaar/type-safe-sql-query/pkg/token"
)

type selectParser struct {
	tokens []token.Token
	body   []token.Token
	stmt   *core.SelectStmt
}

// parseSelect parses
//
//	SELECT [modifiers] select_list FROM table_references [WHERE condition] ...
//
// Placeholders are taken from the WHERE clause only.
func parseSelect(tokens []token.Token) (*core.SelectStmt, error) {
	p := &selectParser{tokens: tokens, stmt: &core.SelectStmt{}}
	err := runSteps(core.KindSelect,
		step{core.StageStripModifiers, p.stripModifiers},
		step{core.StageExtractPrimaryTable, p.extractTables},
		step{core.StageExtractClauses, p.extractProjections},
		step{core.StageExtractPlaceholders, p.extractPlaceholders},
	)
	if err != nil {
		return nil, err
	}
	return p.stmt, nil
}

func (p *selectParser) stripModifiers() error {
	p.body = token.SliceFromFirstNonMatch(p.tokens, selectModifiers)
	return nil
}

func (p *selectParser) extractTables() error {
	if !token.Contains(p.body, kwFrom) {
		return newError(ErrMissingClause, "SELECT requires a FROM clause")
	}
	refs, err := ParseTableReferences(token.SliceBetween(p.body, kwFrom, selectFromEnd))
	if err != nil {
		return err
	}
	p.stmt.Tables = refs
	return nil
}

func (p *selectParser) extractProjections() error {
	list := token.SliceBeforeFirstMatch(p.body, selectListEnd)
	if len(list) == 0 {
		return newError(ErrMissingClause, "empty select list")
	}
	p.stmt.Projections = ParseSelectExpressions(list, p.stmt.PrimaryTable())
	return nil
}

func (p *selectParser) extractPlaceholders() error {
	p.stmt.Params = extractWhere(token.SliceBetween(p.body, kwWhere, selectWhereEnd))
	return nil
}
