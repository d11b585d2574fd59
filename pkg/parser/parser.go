// Package parser turns the text of a single SQL statement into a per-kind
// AST that records the tables it touches, the columns it selects, and the
// column each `?` placeholder stands for.
//
// The grammar covered is the single-table subset of SELECT, INSERT, UPDATE
// and DELETE. Each statement parser is a fixed sequence of stages (see
// core.Stage) that slices the token stream into clauses and hands them to
// the table-reference resolver, the select-expression resolver and the
// placeholder extractor. Nothing here consults a schema; binding happens
// in package analyzer.
package parser

import (
	"fmt"
	"strings"

	"github.com/michaelhaar/type-safe-sql-query/pkg/core"
	"github.com/michaelhaar/type-safe-sql-query/pkg/token"
)

// Parse classifies a statement by its leading keyword and runs the
// matching statement parser. Any structural failure is a *ParseError.
func Parse(query string) (core.Statement, error) {
	tokens := token.Tokenize(TrimTerminator(query))

	kind, err := Classify(tokens)
	if err != nil {
		return nil, err
	}

	switch kind {
	case core.KindSelect:
		stmt, err := parseSelect(tokens)
		if err != nil {
			return nil, err
		}
		return stmt, nil
	case core.KindInsert:
		stmt, err := parseInsert(tokens)
		if err != nil {
			return nil, err
		}
		return stmt, nil
	case core.KindUpdate:
		stmt, err := parseUpdate(tokens)
		if err != nil {
			return nil, err
		}
		return stmt, nil
	default:
		stmt, err := parseDelete(tokens)
		if err != nil {
			return nil, err
		}
		return stmt, nil
	}
}

// Classify returns the statement kind named by the first token.
func Classify(tokens []token.Token) (core.StatementKind, error) {
	if len(tokens) == 0 {
		return "", &ParseError{Stage: core.StageInit, Err: ErrUnsupportedStatement, Message: "empty statement"}
	}
	switch head := tokens[0]; {
	case head.Is("SELECT"):
		return core.KindSelect, nil
	case head.Is("INSERT"):
		return core.KindInsert, nil
	case head.Is("UPDATE"):
		return core.KindUpdate, nil
	case head.Is("DELETE"):
		return core.KindDelete, nil
	default:
		return "", &ParseError{
			Stage:   core.StageInit,
			Err:     ErrUnsupportedStatement,
			Message: fmt.Sprintf("%q is not one of SELECT, INSERT, UPDATE, DELETE", string(head)),
		}
	}
}

// TrimTerminator removes surrounding whitespace and one trailing semicolon.
func TrimTerminator(query string) string {
	q := strings.TrimSpace(query)
	q = strings.TrimSuffix(q, ";")
	return strings.TrimSpace(q)
}
