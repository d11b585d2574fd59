package analyzer

import (
	"github.com/michaelhaar/type-safe-sql-query/pkg/core"
	"github.com/michaelhaar/type-safe-sql-query/pkg/schema"
)

// Bind resolves every reference of a parsed statement against s.
//
// Unqualified references bind to the statement's primary table. A
// qualifier that names a table alias rather than a declared table is
// rewritten to the aliased table first.
func Bind(stmt core.Statement, s *schema.Schema) *core.Result {
	res := &core.Result{Kind: stmt.Kind(), Statement: stmt}
	resolve := aliasResolver(tableRefs(stmt), s)

	if sel, ok := stmt.(*core.SelectStmt); ok {
		res.Shape = bindShape(sel, s, resolve)
	} else {
		res.Status = core.StatusType
	}
	res.Params = bindParams(stmt, s, resolve)
	return res
}

// tableRefs lists the tables a statement's qualifiers may name.
func tableRefs(stmt core.Statement) []core.TableRef {
	switch st := stmt.(type) {
	case *core.SelectStmt:
		return st.Tables
	case *core.UpdateStmt:
		return []core.TableRef{{Name: st.Table, Alias: st.Alias}}
	case *core.DeleteStmt:
		return []core.TableRef{{Name: st.Table, Alias: st.Alias}}
	}
	return nil
}

func bindParams(stmt core.Statement, s *schema.Schema, resolve func(core.ColumnRef) core.ColumnRef) []core.Param {
	refs := stmt.Placeholders()
	table := stmt.PrimaryTable()

	var implicit []schema.Column
	ins, _ := stmt.(*core.InsertStmt)
	if ins != nil && ins.ImplicitColumns {
		implicit, _ = s.Columns(ins.Table)
	}

	params := make([]core.Param, 0, len(refs))
	for i, ref := range refs {
		if ins != nil && ins.ImplicitColumns && ref.IsZero() && i < len(ins.Slots) {
			if slot := ins.Slots[i]; slot < len(implicit) {
				ref = core.ColumnRef{Column: implicit[slot].Name}
			}
		}
		ref = resolve(ref.WithDefault(table))
		params = append(params, core.Param{Ref: ref, Type: s.Bind(ref, table)})
	}
	return params
}

// bindShape builds the row of a SELECT. Wildcards expand to the table's
// columns in declaration order; later fields replace earlier ones of the
// same name.
func bindShape(sel *core.SelectStmt, s *schema.Schema, resolve func(core.ColumnRef) core.ColumnRef) *core.RowShape {
	table := sel.PrimaryTable()
	shape := core.NewRowShape()
	for _, p := range sel.Projections {
		ref := resolve(p.Ref.WithDefault(table))
		if !ref.Wildcard {
			shape.Set(p.OutputName(), s.Bind(ref, table), ref)
			continue
		}
		cols, ok := s.Columns(ref.Table)
		if !ok {
			shape.Set(ref.String(), core.Unresolvable, ref)
			continue
		}
		for _, c := range cols {
			shape.Set(c.Name, c.Type, core.ColumnRef{Table: ref.Table, Column: c.Name})
		}
	}
	return shape
}

// aliasResolver maps alias qualifiers to table names. Declared table
// names win over aliases that shadow them.
func aliasResolver(tables []core.TableRef, s *schema.Schema) func(core.ColumnRef) core.ColumnRef {
	aliases := make(map[string]string)
	for _, t := range tables {
		if t.Alias != "" && !s.HasTable(t.Alias) {
			aliases[t.Alias] = t.Name
		}
	}
	return func(ref core.ColumnRef) core.ColumnRef {
		if name, ok := aliases[ref.Table]; ok {
			ref.Table = name
		}
		return ref
	}
}
