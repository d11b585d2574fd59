package parser

import (
	"errors"
	"fmt"

	"github.com/michaelhaar/type-safe-sql-query/pkg/core"
)

// Structural failures. A *ParseError wraps exactly one of these, so callers
// can branch with errors.Is.
var (
	// ErrUnsupportedStatement is returned when the leading keyword is not
	// SELECT, INSERT, UPDATE or DELETE.
	ErrUnsupportedStatement = errors.New("unsupported statement")

	// ErrMissingClause is returned when a mandatory clause or the target
	// table is absent.
	ErrMissingClause = errors.New("missing clause")

	// ErrMalformedJoin is returned when join keywords do not form a join
	// operator, such as LEFT without JOIN.
	ErrMalformedJoin = errors.New("malformed join")
)

// ParseError is a structural failure that aborts analysis of a statement.
type ParseError struct {
	Kind    core.StatementKind
	Stage   core.Stage
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	where := e.Stage.String()
	if e.Kind != "" {
		where = fmt.Sprintf("%s %s", e.Kind, where)
	}
	if e.Message == "" {
		return fmt.Sprintf("parse error (%s): %v", where, e.Err)
	}
	return fmt.Sprintf("parse error (%s): %v: %s", where, e.Err, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func newError(err error, format string, args ...any) *ParseError {
	return &ParseError{Err: err, Message: fmt.Sprintf(format, args...)}
}
