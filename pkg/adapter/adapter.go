// Package adapter defines how sqltype reads table definitions out of a
// live database.
//
// Concrete adapters live in pkg/adapters/ and register themselves by name
// from an init function. Introspect turns any connected adapter into a
// *schema.Schema whose column types are the database's own type names.
package adapter

import (
	"context"
	"fmt"

	"github.com/michaelhaar/type-safe-sql-query/pkg/core"
	"github.com/michaelhaar/type-safe-sql-query/pkg/schema"
)

// UntypedColumn is the type given to columns the database declares
// without one.
const UntypedColumn core.Type = "any"

// Config holds the connection settings of a target database.
type Config struct {
	Type     string
	Path     string
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Schema   string
	Options  map[string]string

	// Params holds adapter-specific settings, decoded by each adapter.
	Params map[string]any
}

// Column is one column as reported by the database.
type Column struct {
	Name     string
	Type     string
	Position int
}

// Adapter is implemented by every database adapter.
type Adapter interface {
	// Connect opens and verifies the connection.
	Connect(ctx context.Context, cfg Config) error

	// Close releases the connection. It is safe to call on an adapter
	// that never connected.
	Close() error

	// Tables lists the base tables of the configured schema.
	Tables(ctx context.Context) ([]string, error)

	// TableColumns returns a table's columns in ordinal order. The table
	// may be qualified as schema.table.
	TableColumns(ctx context.Context, table string) ([]Column, error)

	// DialectName names the database family, e.g. "postgres".
	DialectName() string
}

// Introspect reads the given tables, or every table when none are named,
// and builds a schema from them. Tables keep the order they were listed in.
func Introspect(ctx context.Context, a Adapter, tables ...string) (*schema.Schema, error) {
	if len(tables) == 0 {
		names, err := a.Tables(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list tables: %w", err)
		}
		tables = names
	}

	defs := make([]schema.Table, 0, len(tables))
	for _, table := range tables {
		cols, err := a.TableColumns(ctx, table)
		if err != nil {
			return nil, err
		}
		if len(cols) == 0 {
			return nil, fmt.Errorf("table %s not found", table)
		}

		_, name := ParseQualifiedName(table, "")
		def := schema.Table{Name: name, Columns: make([]schema.Column, len(cols))}
		for i, c := range cols {
			typ := core.Type(c.Type)
			if typ == "" {
				typ = UntypedColumn
			}
			def.Columns[i] = schema.Column{Name: c.Name, Type: typ}
		}
		defs = append(defs, def)
	}

	s, err := schema.New(defs...)
	if err != nil {
		return nil, fmt.Errorf("failed to build schema from %s: %w", a.DialectName(), err)
	}
	return s, nil
}
