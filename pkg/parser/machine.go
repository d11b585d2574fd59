package parser

import (
	"errors"

	"github.com/michaelhaar/type-safe-sql-query/pkg/core"
)

// step is one transition of a statement parser.
type step struct {
	stage core.Stage
	run   func() error
}

// runSteps executes the steps in order and stops at the first failure,
// stamping the statement kind and current stage onto the error.
func runSteps(kind core.StatementKind, steps ...step) error {
	for _, s := range steps {
		if err := s.run(); err != nil {
			var pe *ParseError
			if !errors.As(err, &pe) {
				pe = &ParseError{Err: err}
			}
			pe.Kind = kind
			pe.Stage = s.stage
			return pe
		}
	}
	return nil
}
