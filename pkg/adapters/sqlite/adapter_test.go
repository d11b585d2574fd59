package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michaelhaar/type-safe-sql-query/internal/testutil"
	"github.com/michaelhaar/type-safe-sql-query/pkg/adapter"
	"github.com/michaelhaar/type-safe-sql-query/pkg/core"
)

func TestAdapter_Introspect(t *testing.T) {
	ctx := context.Background()
	a := New(testutil.NewTestLogger(t))
	require.NoError(t, a.Connect(ctx, adapter.Config{}))
	defer func() { _ = a.Close() }()

	require.NoError(t, a.Exec(ctx, `CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT NOT NULL, meta)`))
	require.NoError(t, a.Exec(ctx, `CREATE TABLE posts (id INTEGER, userId INTEGER, title VARCHAR(200))`))

	tables, err := a.Tables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"posts", "users"}, tables)

	cols, err := a.TableColumns(ctx, "main.users")
	require.NoError(t, err)
	assert.Equal(t, []adapter.Column{
		{Name: "id", Type: "INTEGER", Position: 1},
		{Name: "name", Type: "TEXT", Position: 2},
		{Name: "meta", Type: "", Position: 3},
	}, cols)

	s, err := adapter.Introspect(ctx, a, "users", "posts")
	require.NoError(t, err)
	assert.Equal(t, []string{"users", "posts"}, s.TableNames())

	typ, _ := s.Lookup("users", "meta")
	assert.Equal(t, adapter.UntypedColumn, typ)
	typ, _ = s.Lookup("posts", "title")
	assert.Equal(t, core.Type("VARCHAR(200)"), typ)
}

func TestAdapter_Errors(t *testing.T) {
	ctx := context.Background()

	a := New(nil)
	_, err := a.Tables(ctx)
	assert.ErrorContains(t, err, "database connection not established")

	require.NoError(t, a.Connect(ctx, adapter.Config{}))
	defer func() { _ = a.Close() }()
	_, err = a.TableColumns(ctx, "ghosts")
	assert.ErrorContains(t, err, "table ghosts not found")
}

func TestRegistration(t *testing.T) {
	a, err := adapter.NewAdapter(adapter.Config{Type: "sqlite"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", a.DialectName())
}
