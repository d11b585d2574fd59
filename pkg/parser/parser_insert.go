package parser

import (
	"github.com/michaelhaar/type-safe-sql-query/pkg/core"
	"github.com/michaelhaar/type-safe-sql-query/pkg/token"
)

type insertParser struct {
	tokens []token.Token
	body   []token.Token
	rest   []token.Token
	stmt   *core.InsertStmt
}

// parseInsert parses the two single-table INSERT forms:
//
//	INSERT [modifiers] [INTO] table [(columns)] VALUES (values) [, (values)]...
//	INSERT [modifiers] [INTO] table SET column = value [, column = value]...
//
// In the VALUES form a column is a parameter when the value at its
// position is `?`. Every row is matched against the column list, and a
// row longer than the list is truncated to it. Without a column list the
// parameters are matched against the table's declared columns at bind
// time.
func parseInsert(tokens []token.Token) (*core.InsertStmt, error) {
	p := &insertParser{tokens: tokens, stmt: &core.InsertStmt{}}
	err := runSteps(core.KindInsert,
		step{core.StageStripModifiers, p.stripModifiers},
		step{core.StageExtractPrimaryTable, p.extractTarget},
		step{core.StageExtractClauses, p.extractColumns},
		step{core.StageExtractPlaceholders, p.extractPlaceholders},
	)
	if err != nil {
		return nil, err
	}
	return p.stmt, nil
}

func (p *insertParser) stripModifiers() error {
	p.body = token.SliceFromFirstNonMatch(p.tokens, insertModifiers)
	return nil
}

func (p *insertParser) extractTarget() error {
	if len(p.body) == 0 || p.body[0].IsPunctuation() || insertColumnsEnd.Has(p.body[0]) {
		return newError(ErrMissingClause, "INSERT requires a target table")
	}
	p.stmt.Table = string(p.body[0])
	p.rest = token.Shift(p.body)
	return nil
}

func (p *insertParser) extractColumns() error {
	if p.isSetForm() {
		return nil
	}
	cols := token.FilterOut(token.SliceBeforeFirstMatch(p.rest, insertColumnsEnd), token.Punctuation)
	for _, c := range cols {
		p.stmt.Columns = append(p.stmt.Columns, string(c))
	}
	p.stmt.ImplicitColumns = len(cols) == 0
	return nil
}

func (p *insertParser) extractPlaceholders() error {
	if p.isSetForm() {
		set := extractSet(token.SliceBetween(p.rest, kwSet, insertSetEnd))
		p.stmt.Params = set
		p.stmt.Columns = assignedColumns(set)
		p.stmt.Rows = 1
		return nil
	}

	for _, row := range valueRows(token.SliceBetween(p.rest, kwValues, insertValuesEnd)) {
		p.stmt.Rows++
		for i, value := range row {
			if !p.stmt.ImplicitColumns && i >= len(p.stmt.Columns) {
				break
			}
			if len(value) != 1 || !value[0].IsPlaceholder() {
				continue
			}
			ref := core.ColumnRef{}
			if !p.stmt.ImplicitColumns {
				ref = core.ParseColumnRef(p.stmt.Columns[i])
			}
			p.stmt.Params = append(p.stmt.Params, ref)
			p.stmt.Slots = append(p.stmt.Slots, i)
		}
	}
	return nil
}

// isSetForm reports whether SET follows the target directly.
func (p *insertParser) isSetForm() bool {
	return len(p.rest) > 0 && p.rest[0].Is("SET")
}

// valueRows splits a VALUES list into rows of comma separated values.
// Tokens between rows, such as the ROW keyword, are ignored.
func valueRows(tokens []token.Token) [][][]token.Token {
	var rows [][][]token.Token
	for i := 0; i < len(tokens); i++ {
		if tokens[i] != token.LParen {
			continue
		}
		end := token.MatchingParen(tokens, i)
		if end < 0 {
			end = len(tokens)
		}
		rows = append(rows, token.SplitTopLevel(tokens[i+1:end], token.Commas))
		i = end
	}
	return rows
}

func assignedColumns(refs []core.ColumnRef) []string {
	cols := make([]string, 0, len(refs))
	for _, r := range refs {
		if !r.IsZero() {
			cols = append(cols, r.String())
		}
	}
	return cols
}
