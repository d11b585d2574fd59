package parser

import (
	"github.com/michaelhaar/type-safe-sql-query/pkg/core"
	"github.com/michaelhaar/type-safe-sql-query/pkg/token"
)

// ParseTableReferences resolves the tokens of a FROM clause into the
// tables it names, flattened in source order.
//
// The clause is a comma separated list of table factors, each optionally
// followed by a chain of joins:
//
//	table_reference: table_factor { join_operator table_factor [join_spec] }
//	table_factor:    name [[AS] alias] | ( table_references )
//	join_operator:   JOIN | INNER JOIN | CROSS JOIN | STRAIGHT_JOIN
//	               | LEFT [OUTER] JOIN | RIGHT [OUTER] JOIN
//	               | NATURAL [INNER | LEFT [OUTER] | RIGHT [OUTER]] JOIN
//	join_spec:       ON condition | USING ( columns )
//
// Join conditions are skipped. The first returned reference is the
// default table for unqualified columns.
func ParseTableReferences(tokens []token.Token) ([]core.TableRef, error) {
	groups := token.SplitTopLevel(tokens, token.Commas)
	if len(groups) == 0 {
		return nil, newError(ErrMissingClause, "no table references")
	}

	var refs []core.TableRef
	for i, g := range groups {
		join := core.JoinNone
		if i > 0 {
			join = core.JoinComma
		}
		c := &fromCursor{tokens: g}
		if err := c.reference(join); err != nil {
			return nil, err
		}
		refs = append(refs, c.refs...)
	}
	return refs, nil
}

// fromCursor walks one comma separated group of a FROM clause.
type fromCursor struct {
	tokens []token.Token
	pos    int
	refs   []core.TableRef
}

func (c *fromCursor) eof() bool {
	return c.pos >= len(c.tokens)
}

func (c *fromCursor) peek() token.Token {
	if c.eof() {
		return ""
	}
	return c.tokens[c.pos]
}

func (c *fromCursor) next() token.Token {
	t := c.peek()
	if !c.eof() {
		c.pos++
	}
	return t
}

func (c *fromCursor) reference(join core.JoinKind) error {
	if err := c.factor(join); err != nil {
		return err
	}
	for !c.eof() {
		switch t := c.peek(); {
		case joinStart.Has(t):
			kind, err := c.joinOperator()
			if err != nil {
				return err
			}
			if err := c.factor(kind); err != nil {
				return err
			}
		case t.Is("ON"):
			c.skipCondition()
		case t.Is("USING"):
			if err := c.skipUsing(); err != nil {
				return err
			}
		default:
			// Index hints and other unsupported decorations.
			c.next()
		}
	}
	return nil
}

func (c *fromCursor) factor(join core.JoinKind) error {
	if c.eof() {
		return newError(ErrMalformedJoin, "expected table after %s", describeJoin(join))
	}

	if c.peek() == token.LParen {
		end := token.MatchingParen(c.tokens, c.pos)
		if end < 0 {
			return newError(ErrMalformedJoin, "unbalanced parentheses in table references")
		}
		inner, err := ParseTableReferences(c.tokens[c.pos+1 : end])
		if err != nil {
			return err
		}
		inner[0].Join = join
		c.refs = append(c.refs, inner...)
		c.pos = end + 1
		c.alias()
		return nil
	}

	name := c.next()
	if notAnAlias.Has(name) {
		return newError(ErrMalformedJoin, "expected table after %s, got %q", describeJoin(join), name)
	}
	c.refs = append(c.refs, core.TableRef{Name: string(name), Alias: c.alias(), Join: join})
	return nil
}

// alias consumes an optional `AS alias` or bare alias.
func (c *fromCursor) alias() string {
	if c.peek().Is("AS") {
		c.next()
		if c.eof() {
			return ""
		}
		return string(c.next())
	}
	if c.eof() || notAnAlias.Has(c.peek()) {
		return ""
	}
	return string(c.next())
}

// targetAlias reads the optional `[AS] alias` following the target table of
// an UPDATE or DELETE. rest starts right after the table name.
func targetAlias(rest []token.Token, stop token.Set) string {
	c := &fromCursor{tokens: rest}
	if !c.eof() && stop.Has(c.peek()) {
		return ""
	}
	return c.alias()
}

func (c *fromCursor) joinOperator() (core.JoinKind, error) {
	first := c.next()
	switch {
	case first.Is("JOIN"):
		return core.JoinInner, nil
	case first.Is("STRAIGHT_JOIN"):
		return core.JoinStraight, nil
	case first.Is("INNER"):
		return core.JoinInner, c.expectJoin(first)
	case first.Is("CROSS"):
		return core.JoinCross, c.expectJoin(first)
	case first.Is("LEFT"):
		return core.JoinLeft, c.expectOuterJoin(first)
	case first.Is("RIGHT"):
		return core.JoinRight, c.expectOuterJoin(first)
	case first.Is("NATURAL"):
		return c.naturalJoin()
	}
	return core.JoinNone, newError(ErrMalformedJoin, "unexpected %q", first)
}

func (c *fromCursor) naturalJoin() (core.JoinKind, error) {
	switch t := c.peek(); {
	case t.Is("INNER"):
		c.next()
		return core.JoinNatural, c.expectJoin(t)
	case t.Is("LEFT"):
		c.next()
		return core.JoinNaturalLeft, c.expectOuterJoin(t)
	case t.Is("RIGHT"):
		c.next()
		return core.JoinNaturalRight, c.expectOuterJoin(t)
	}
	return core.JoinNatural, c.expectJoin("NATURAL")
}

func (c *fromCursor) expectOuterJoin(after token.Token) error {
	if c.peek().Is("OUTER") {
		after = c.next()
	}
	return c.expectJoin(after)
}

func (c *fromCursor) expectJoin(after token.Token) error {
	if t := c.next(); !t.Is("JOIN") {
		if t == "" {
			return newError(ErrMalformedJoin, "expected JOIN after %s", after.Upper())
		}
		return newError(ErrMalformedJoin, "expected JOIN after %s, got %q", after.Upper(), t)
	}
	return nil
}

// skipCondition consumes ON and everything up to the next join operator.
func (c *fromCursor) skipCondition() {
	c.next()
	depth := 0
	for !c.eof() {
		t := c.peek()
		switch {
		case t == token.LParen:
			depth++
		case t == token.RParen:
			depth--
		case depth == 0 && joinStart.Has(t):
			return
		}
		c.next()
	}
}

func (c *fromCursor) skipUsing() error {
	c.next()
	end := token.MatchingParen(c.tokens, c.pos)
	if end < 0 {
		return newError(ErrMalformedJoin, "USING requires a parenthesized column list")
	}
	c.pos = end + 1
	return nil
}

func describeJoin(join core.JoinKind) string {
	switch join {
	case core.JoinNone:
		return "FROM"
	case core.JoinComma:
		return "','"
	case core.JoinStraight:
		return string(join)
	default:
		return string(join) + " JOIN"
	}
}
