// Package state persists analysis results and the history of CLI runs in
// a local SQLite database, so repeated invocations skip statements that
// were already analyzed against the same schema.
package state

import "time"

// Run is one invocation of `sqltype analyze`.
type Run struct {
	ID          string     `json:"id"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Statements  int        `json:"statements"`
	Failed      int        `json:"failed"`
}

// Done reports whether the run was completed.
func (r *Run) Done() bool {
	return r.CompletedAt != nil
}
