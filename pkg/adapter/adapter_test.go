package adapter

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michaelhaar/type-safe-sql-query/pkg/core"
)

type fakeAdapter struct {
	tables  map[string][]Column
	order   []string
	listErr error
}

func (f *fakeAdapter) Connect(context.Context, Config) error { return nil }
func (f *fakeAdapter) Close() error                          { return nil }
func (f *fakeAdapter) DialectName() string                   { return "fake" }

func (f *fakeAdapter) Tables(context.Context) ([]string, error) {
	return f.order, f.listErr
}

func (f *fakeAdapter) TableColumns(_ context.Context, table string) ([]Column, error) {
	cols, ok := f.tables[table]
	if !ok {
		return nil, fmt.Errorf("table %s not found", table)
	}
	return cols, nil
}

func newFake() *fakeAdapter {
	return &fakeAdapter{
		order: []string{"users", "posts"},
		tables: map[string][]Column{
			"users":      {{Name: "id", Type: "integer", Position: 1}, {Name: "blob", Type: "", Position: 2}},
			"posts":      {{Name: "id", Type: "integer", Position: 1}, {Name: "title", Type: "text", Position: 2}},
			"crm.people": {{Name: "email", Type: "text", Position: 1}},
		},
	}
}

func TestIntrospect(t *testing.T) {
	ctx := context.Background()

	t.Run("all tables", func(t *testing.T) {
		s, err := Introspect(ctx, newFake())
		require.NoError(t, err)

		assert.Equal(t, []string{"users", "posts"}, s.TableNames())
		typ, ok := s.Lookup("posts", "title")
		require.True(t, ok)
		assert.Equal(t, core.Type("text"), typ)

		typ, _ = s.Lookup("users", "blob")
		assert.Equal(t, UntypedColumn, typ)
	})

	t.Run("named tables drop the schema qualifier", func(t *testing.T) {
		s, err := Introspect(ctx, newFake(), "crm.people")
		require.NoError(t, err)
		assert.Equal(t, []string{"people"}, s.TableNames())
	})

	t.Run("missing table", func(t *testing.T) {
		_, err := Introspect(ctx, newFake(), "ghosts")
		assert.EqualError(t, err, "table ghosts not found")
	})

	t.Run("list failure", func(t *testing.T) {
		f := newFake()
		f.listErr = assert.AnError
		_, err := Introspect(ctx, f)
		require.ErrorIs(t, err, assert.AnError)
	})

	t.Run("duplicate names across schemas", func(t *testing.T) {
		f := newFake()
		f.tables["crm.users"] = []Column{{Name: "id", Type: "integer"}}
		_, err := Introspect(ctx, f, "users", "crm.users")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate table")
	})
}
