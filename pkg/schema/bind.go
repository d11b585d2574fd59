package schema

import "github.com/michaelhaar/type-safe-sql-query/pkg/core"

// Bind resolves a column reference to its declared type.
//
// A qualified reference is looked up in its own table, an unqualified one
// in defaultTable. Unknown tables, unknown columns, wildcards and bare
// placeholders all yield core.Unresolvable. Bind never fails.
func (s *Schema) Bind(ref core.ColumnRef, defaultTable string) core.Type {
	if ref.IsZero() || ref.Wildcard {
		return core.Unresolvable
	}
	table := ref.Table
	if table == "" {
		table = defaultTable
	}
	t, _ := s.Lookup(table, ref.Column)
	return t
}
