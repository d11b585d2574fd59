package adapter

import (
	"context"
	"database/sql/driver"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockBase(t *testing.T) (*BaseSQLAdapter, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return &BaseSQLAdapter{DB: db}, mock
}

func TestBaseSQLAdapter_Close(t *testing.T) {
	t.Run("never connected", func(t *testing.T) {
		base := &BaseSQLAdapter{}
		assert.NoError(t, base.Close())
	})

	t.Run("open connection", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		mock.ExpectClose()

		base := &BaseSQLAdapter{DB: db}
		require.NoError(t, base.Close())
		assert.False(t, base.IsConnected())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBaseSQLAdapter_NotConnected(t *testing.T) {
	ctx := context.Background()
	base := &BaseSQLAdapter{}

	tests := []struct {
		name string
		call func() error
	}{
		{"exec", func() error { return base.Exec(ctx, "SELECT 1") }},
		{"tables", func() error { _, err := base.TablesCommon(ctx, "main", QuestionPlaceholder); return err }},
		{"columns", func() error {
			_, err := base.TableColumnsCommon(ctx, "users", "main", QuestionPlaceholder)
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "database connection not established")
		})
	}
}

func TestBaseSQLAdapter_Exec(t *testing.T) {
	base, mock := newMockBase(t)
	mock.ExpectExec("SET memory_limit").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INVALID").WillReturnError(assert.AnError)

	require.NoError(t, base.Exec(context.Background(), "SET memory_limit = '1GB'"))

	err := base.Exec(context.Background(), "INVALID SQL")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to execute SQL")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBaseSQLAdapter_TablesCommon(t *testing.T) {
	base, mock := newMockBase(t)
	mock.ExpectQuery(`FROM information_schema.tables\s+WHERE table_schema = \$1`).
		WithArgs("public").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("posts").AddRow("users"))

	names, err := base.TablesCommon(context.Background(), "public", DollarPlaceholder)
	require.NoError(t, err)
	assert.Equal(t, []string{"posts", "users"}, names)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBaseSQLAdapter_TableColumnsCommon(t *testing.T) {
	columns := []string{"column_name", "data_type", "ordinal_position"}

	tests := []struct {
		name       string
		table      string
		wantArgs   []driver.Value
		rows       *sqlmock.Rows
		queryErr   error
		want       []Column
		wantErrMsg string
	}{
		{
			name:     "default schema",
			table:    "users",
			wantArgs: []driver.Value{"main", "users"},
			rows: sqlmock.NewRows(columns).
				AddRow("id", "INTEGER", 1).
				AddRow("name", "VARCHAR", 2),
			want: []Column{
				{Name: "id", Type: "INTEGER", Position: 1},
				{Name: "name", Type: "VARCHAR", Position: 2},
			},
		},
		{
			name:     "qualified table",
			table:    "analytics.events",
			wantArgs: []driver.Value{"analytics", "events"},
			rows:     sqlmock.NewRows(columns).AddRow("ts", "TIMESTAMP", 1),
			want:     []Column{{Name: "ts", Type: "TIMESTAMP", Position: 1}},
		},
		{
			name:       "missing table",
			table:      "ghosts",
			wantArgs:   []driver.Value{"main", "ghosts"},
			rows:       sqlmock.NewRows(columns),
			wantErrMsg: "table ghosts not found",
		},
		{
			name:       "query failure",
			table:      "users",
			wantArgs:   []driver.Value{"main", "users"},
			queryErr:   assert.AnError,
			wantErrMsg: "failed to query column metadata",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, mock := newMockBase(t)
			exp := mock.ExpectQuery("FROM information_schema.columns").WithArgs(tt.wantArgs...)
			if tt.queryErr != nil {
				exp.WillReturnError(tt.queryErr)
			} else {
				exp.WillReturnRows(tt.rows)
			}

			got, err := base.TableColumnsCommon(context.Background(), tt.table, "main", QuestionPlaceholder)
			if tt.wantErrMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestParseQualifiedName(t *testing.T) {
	s, n := ParseQualifiedName("users", "public")
	assert.Equal(t, "public", s)
	assert.Equal(t, "users", n)

	s, n = ParseQualifiedName("crm.accounts", "public")
	assert.Equal(t, "crm", s)
	assert.Equal(t, "accounts", n)
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "?", QuestionPlaceholder(3))
	assert.Equal(t, "$3", DollarPlaceholder(3))
}
