// Package schema holds the user-supplied table definitions that statements
// are analyzed against, and binds column references to their types.
//
// A Schema is immutable once built and safe for concurrent use. Tables and
// columns keep their declaration order, which determines wildcard
// expansion and the implicit column list of an INSERT.
package schema

import (
	"fmt"

	"github.com/michaelhaar/type-safe-sql-query/pkg/core"
)

// Column is a named, typed column.
type Column struct {
	Name string
	Type core.Type
}

// Table is a named, ordered list of columns.
type Table struct {
	Name    string
	Columns []Column
}

// Schema maps table names to their columns.
type Schema struct {
	tables  []Table
	tableAt map[string]int
	columns []map[string]core.Type
}

// New validates the tables and builds a Schema from copies of them.
// Names must be non-empty and unique, and every column needs a type.
func New(tables ...Table) (*Schema, error) {
	s := &Schema{
		tables:  make([]Table, 0, len(tables)),
		tableAt: make(map[string]int, len(tables)),
		columns: make([]map[string]core.Type, 0, len(tables)),
	}
	for _, t := range tables {
		if t.Name == "" {
			return nil, fmt.Errorf("table name must not be empty")
		}
		if _, dup := s.tableAt[t.Name]; dup {
			return nil, fmt.Errorf("duplicate table %q", t.Name)
		}

		cols := make([]Column, len(t.Columns))
		byName := make(map[string]core.Type, len(t.Columns))
		for i, c := range t.Columns {
			if c.Name == "" {
				return nil, fmt.Errorf("table %q: column %d has no name", t.Name, i+1)
			}
			if !c.Type.Resolved() {
				return nil, fmt.Errorf("table %q: column %q has no type", t.Name, c.Name)
			}
			if _, dup := byName[c.Name]; dup {
				return nil, fmt.Errorf("table %q: duplicate column %q", t.Name, c.Name)
			}
			cols[i] = c
			byName[c.Name] = c.Type
		}

		s.tableAt[t.Name] = len(s.tables)
		s.tables = append(s.tables, Table{Name: t.Name, Columns: cols})
		s.columns = append(s.columns, byName)
	}
	return s, nil
}

// MustNew is like New but panics on invalid input. Intended for tests and
// package-level fixtures.
func MustNew(tables ...Table) *Schema {
	s, err := New(tables...)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of tables.
func (s *Schema) Len() int {
	return len(s.tables)
}

// TableNames returns the table names in declaration order.
func (s *Schema) TableNames() []string {
	names := make([]string, len(s.tables))
	for i, t := range s.tables {
		names[i] = t.Name
	}
	return names
}

// HasTable reports whether the table is declared.
func (s *Schema) HasTable(name string) bool {
	_, ok := s.tableAt[name]
	return ok
}

// Columns returns a copy of a table's columns in declaration order.
func (s *Schema) Columns(table string) ([]Column, bool) {
	i, ok := s.tableAt[table]
	if !ok {
		return nil, false
	}
	cols := make([]Column, len(s.tables[i].Columns))
	copy(cols, s.tables[i].Columns)
	return cols, true
}

// Tables returns copies of all tables in declaration order.
func (s *Schema) Tables() []Table {
	out := make([]Table, len(s.tables))
	for i, t := range s.tables {
		cols, _ := s.Columns(t.Name)
		out[i] = Table{Name: t.Name, Columns: cols}
	}
	return out
}

// Lookup returns the type of table.column.
func (s *Schema) Lookup(table, column string) (core.Type, bool) {
	i, ok := s.tableAt[table]
	if !ok {
		return core.Unresolvable, false
	}
	t, ok := s.columns[i][column]
	return t, ok
}
