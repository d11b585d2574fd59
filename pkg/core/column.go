package core

import "strings"

// ColumnRef names a column, optionally qualified by a table.
//
// An empty Table means the reference is unqualified and binds against the
// default table of its statement. Wildcard marks `*` or `table.*`. The zero
// value stands for a placeholder with no column in front of it.
type ColumnRef struct {
	Table    string `json:"table,omitempty"`
	Column   string `json:"column,omitempty"`
	Wildcard bool   `json:"wildcard,omitempty"`
}

// ParseColumnRef splits an expression at its first dot.
func ParseColumnRef(expr string) ColumnRef {
	if expr == "*" {
		return ColumnRef{Wildcard: true}
	}
	table, column, ok := strings.Cut(expr, ".")
	if !ok {
		return ColumnRef{Column: expr}
	}
	if column == "*" {
		return ColumnRef{Table: table, Wildcard: true}
	}
	return ColumnRef{Table: table, Column: column}
}

// IsZero reports whether the reference names nothing.
func (r ColumnRef) IsZero() bool {
	return r == ColumnRef{}
}

// Qualified reports whether the reference carries its own table.
func (r ColumnRef) Qualified() bool {
	return r.Table != ""
}

// WithDefault qualifies an unqualified reference with table.
func (r ColumnRef) WithDefault(table string) ColumnRef {
	if r.Table == "" && !r.IsZero() {
		r.Table = table
	}
	return r
}

func (r ColumnRef) String() string {
	switch {
	case r.IsZero():
		return "?"
	case r.Wildcard && r.Table == "":
		return "*"
	case r.Wildcard:
		return r.Table + ".*"
	case r.Table == "":
		return r.Column
	default:
		return r.Table + "." + r.Column
	}
}
