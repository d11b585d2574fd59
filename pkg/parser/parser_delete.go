package parser

import (
	"github.com/michaelhaar/type-safe-sql-query/pkg/core"
	"github.com/michaelhaar/type-safe-sql-query/pkg/token"
)

type deleteParser struct {
	tokens []token.Token
	body   []token.Token
	stmt   *core.DeleteStmt
}

// parseDelete parses the single-table form
//
//	DELETE [LOW_PRIORITY] [QUICK] [IGNORE] FROM table [[AS] alias] [WHERE condition] [ORDER BY ...] [LIMIT ...]
func parseDelete(tokens []token.Token) (*core.DeleteStmt, error) {
	p := &deleteParser{tokens: tokens, stmt: &core.DeleteStmt{}}
	err := runSteps(core.KindDelete,
		step{core.StageStripModifiers, p.stripModifiers},
		step{core.StageExtractPrimaryTable, p.extractTarget},
		step{core.StageExtractPlaceholders, p.extractPlaceholders},
	)
	if err != nil {
		return nil, err
	}
	return p.stmt, nil
}

func (p *deleteParser) stripModifiers() error {
	p.body = token.SliceFromFirstNonMatch(p.tokens, deleteModifiers)
	return nil
}

func (p *deleteParser) extractTarget() error {
	if len(p.body) == 0 || p.body[0].Is("WHERE") || p.body[0].IsPunctuation() {
		return newError(ErrMissingClause, "DELETE requires a target table")
	}
	p.stmt.Table = string(p.body[0])
	p.stmt.Alias = targetAlias(p.body[1:], deleteTargetEnd)
	return nil
}

func (p *deleteParser) extractPlaceholders() error {
	p.stmt.Params = extractWhere(token.SliceBetween(p.body, kwWhere, orderOrLimit))
	return nil
}
