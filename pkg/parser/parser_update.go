package parser

import (
	"github.com/michaelhaar/type-safe-sql-query/pkg/core"
	"github.com/michaelhaar/type-safe-sql-query/pkg/token"
)

type updateParser struct {
	tokens []token.Token
	body   []token.Token
	set    []token.Token
	where  []token.Token
	stmt   *core.UpdateStmt
}

// parseUpdate parses the single-table form
//
//	UPDATE [LOW_PRIORITY] [IGNORE] table [[AS] alias] SET assignments [WHERE condition] [ORDER BY ...] [LIMIT ...]
//
// SET placeholders come first in the parameter list, WHERE placeholders
// after them.
func parseUpdate(tokens []token.Token) (*core.UpdateStmt, error) {
	p := &updateParser{tokens: tokens, stmt: &core.UpdateStmt{}}
	err := runSteps(core.KindUpdate,
		step{core.StageStripModifiers, p.stripModifiers},
		step{core.StageExtractPrimaryTable, p.extractTarget},
		step{core.StageExtractClauses, p.extractClauses},
		step{core.StageExtractPlaceholders, p.extractPlaceholders},
	)
	if err != nil {
		return nil, err
	}
	return p.stmt, nil
}

func (p *updateParser) stripModifiers() error {
	p.body = token.SliceFromFirstNonMatch(p.tokens, updateModifiers)
	return nil
}

func (p *updateParser) extractTarget() error {
	if len(p.body) == 0 || p.body[0].Is("SET") || p.body[0].IsPunctuation() {
		return newError(ErrMissingClause, "UPDATE requires a target table")
	}
	p.stmt.Table = string(p.body[0])
	p.stmt.Alias = targetAlias(p.body[1:], kwSet)
	return nil
}

func (p *updateParser) extractClauses() error {
	if !token.Contains(p.body, kwSet) {
		return newError(ErrMissingClause, "UPDATE requires a SET clause")
	}
	p.set = token.SliceBetween(p.body, kwSet, updateSetEnd)
	p.where = token.SliceBetween(p.body, kwWhere, orderOrLimit)
	return nil
}

func (p *updateParser) extractPlaceholders() error {
	set := extractSet(p.set)
	p.stmt.SetParams = len(set)
	p.stmt.Params = append(set, extractWhere(p.where)...)
	return nil
}
