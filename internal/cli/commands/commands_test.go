package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clitestutil "github.com/michaelhaar/type-safe-sql-query/internal/cli/testutil"
	"github.com/michaelhaar/type-safe-sql-query/internal/state"
	"github.com/michaelhaar/type-safe-sql-query/pkg/core"
	"github.com/michaelhaar/type-safe-sql-query/pkg/parser"
)

type jsonItem struct {
	Source string       `json:"source"`
	Query  string       `json:"query"`
	Result *core.Result `json:"result"`
	Error  string       `json:"error"`
}

// execute runs cmd with args and returns stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)
	cmd.SetContext(context.Background())
	err := cmd.Execute()
	return out.String(), err
}

func TestNewAnalyzeCommand(t *testing.T) {
	cmd := NewAnalyzeCommand()

	assert.Equal(t, "analyze [SQL]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	for _, flag := range []string{"file", "watch", "jobs"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewSchemaCommand(t *testing.T) {
	cmd := NewSchemaCommand()

	assert.Equal(t, "schema", cmd.Use)
	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"show", "dump"}, names)
}

func TestAnalyze_SingleStatement(t *testing.T) {
	clitestutil.SetupTestProject(t)
	t.Setenv("SQLTYPE_OUTPUT", "json")

	out, err := execute(t, NewAnalyzeCommand(), "DELETE FROM users WHERE id = ? AND name = ?")
	require.NoError(t, err)

	var res core.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, core.KindDelete, res.Kind)
	assert.Equal(t, []core.Type{"number", "string"}, res.ParamTypes())
	assert.Equal(t, core.StatusType, res.Status)
}

func TestAnalyze_Markdown(t *testing.T) {
	clitestutil.SetupTestProject(t)

	out, err := execute(t, NewAnalyzeCommand(), "SELECT", "id,", "name", "FROM", "users")
	require.NoError(t, err)

	clitestutil.AssertNoANSI(t, out)
	clitestutil.AssertValidMarkdown(t, out)
	assert.Contains(t, out, "## Select statement")
	assert.Contains(t, out, "SELECT id, name FROM users")
}

func TestAnalyze_Files(t *testing.T) {
	clitestutil.SetupTestProject(t)
	t.Setenv("SQLTYPE_OUTPUT", "json")

	users := filepath.Join("queries", "users.sql")
	posts := filepath.Join("queries", "posts.sql")
	out, err := execute(t, NewAnalyzeCommand(), "-f", users, "--file", posts, "-j", "2")
	require.NoError(t, err)

	var items []jsonItem
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 3)

	assert.Equal(t, users+":1", items[0].Source)
	assert.Equal(t, []core.Type{`"AT"|"DE"`}, items[0].Result.ParamTypes())
	assert.Equal(t, users+":2", items[1].Source)
	assert.Equal(t, []core.Type{"string", "number"}, items[1].Result.ParamTypes())
	assert.Equal(t, posts, items[2].Source)
	assert.Equal(t, []string{"id", "userId", "title"}, items[2].Result.Shape.Names())
	assert.Equal(t, []core.Type{"string"}, items[2].Result.ParamTypes())
}

func TestAnalyze_Stdin(t *testing.T) {
	clitestutil.SetupTestProject(t)
	t.Setenv("SQLTYPE_OUTPUT", "json")

	cmd := NewAnalyzeCommand()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetIn(strings.NewReader("SELECT id FROM users;\nDELETE FROM posts WHERE id = ?;"))
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	var items []jsonItem
	require.NoError(t, json.Unmarshal(out.Bytes(), &items))
	require.Len(t, items, 2)
	assert.Equal(t, "stdin:1", items[0].Source)
	assert.Equal(t, "stdin:2", items[1].Source)
}

func TestAnalyze_Errors(t *testing.T) {
	clitestutil.SetupTestProject(t)
	t.Setenv("SQLTYPE_OUTPUT", "json")

	t.Run("unsupported statement", func(t *testing.T) {
		_, err := execute(t, NewAnalyzeCommand(), "TRUNCATE users")
		assert.ErrorIs(t, err, parser.ErrUnsupportedStatement)
	})

	t.Run("failures in a batch are reported and fail the command", func(t *testing.T) {
		dir, _ := os.Getwd()
		clitestutil.WriteFile(t, dir, "mixed.sql", "SELECT id FROM users; DROP TABLE users;")

		out, err := execute(t, NewAnalyzeCommand(), "-f", "mixed.sql")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 of 2 statements failed")

		var items []jsonItem
		require.NoError(t, json.Unmarshal([]byte(out), &items))
		require.Len(t, items, 2)
		assert.NotNil(t, items[0].Result)
		assert.Contains(t, items[1].Error, "unsupported statement")
	})

	t.Run("empty file", func(t *testing.T) {
		dir, _ := os.Getwd()
		clitestutil.WriteFile(t, dir, "empty.sql", "-- nothing here\n")

		_, err := execute(t, NewAnalyzeCommand(), "-f", "empty.sql")
		assert.ErrorContains(t, err, "no statements found")
	})

	t.Run("args and files together", func(t *testing.T) {
		_, err := execute(t, NewAnalyzeCommand(), "-f", "queries/users.sql", "SELECT id FROM users")
		assert.Error(t, err)
	})

	t.Run("watch without files", func(t *testing.T) {
		_, err := execute(t, NewAnalyzeCommand(), "--watch", "SELECT id FROM users")
		assert.ErrorContains(t, err, "--watch requires")
	})

	t.Run("missing schema file", func(t *testing.T) {
		t.Setenv("SQLTYPE_SCHEMA_FILE", "missing.yaml")
		_, err := execute(t, NewAnalyzeCommand(), "SELECT id FROM users")
		assert.ErrorContains(t, err, "schema file not found")
	})
}

func TestAnalyze_Strict(t *testing.T) {
	clitestutil.SetupTestProject(t)
	t.Setenv("SQLTYPE_OUTPUT", "json")

	_, err := execute(t, NewAnalyzeCommand(), "SELECT ghost FROM users")
	require.NoError(t, err, "unresolved references only fail in strict mode")

	t.Setenv("SQLTYPE_STRICT", "true")
	_, err = execute(t, NewAnalyzeCommand(), "SELECT ghost FROM users")
	assert.ErrorContains(t, err, "unresolved references")

	_, err = execute(t, NewAnalyzeCommand(), "SELECT id FROM users")
	assert.NoError(t, err)
}

func TestAnalyze_RecordsRuns(t *testing.T) {
	dir := clitestutil.SetupTestProject(t)
	t.Setenv("SQLTYPE_OUTPUT", "json")

	_, err := execute(t, NewAnalyzeCommand(), "-f", filepath.Join("queries", "users.sql"))
	require.NoError(t, err)

	store := state.NewSQLiteStore(nil)
	require.NoError(t, store.Open(filepath.Join(dir, ".sqltype", "cache.db")))
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	runs, err := store.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.True(t, runs[0].Done())
	assert.Equal(t, 2, runs[0].Statements)
	assert.Equal(t, 0, runs[0].Failed)

	n, err := store.CountResults(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestAnalyze_NoCache(t *testing.T) {
	dir := clitestutil.SetupTestProject(t)
	t.Setenv("SQLTYPE_OUTPUT", "json")
	t.Setenv("SQLTYPE_NO_CACHE", "true")

	_, err := execute(t, NewAnalyzeCommand(), "SELECT id FROM users")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, ".sqltype", "cache.db"))
	assert.True(t, os.IsNotExist(err), "cache must not be created")
}

func TestSchemaShow(t *testing.T) {
	clitestutil.SetupTestProject(t)
	t.Setenv("SQLTYPE_OUTPUT", "json")

	out, err := execute(t, NewSchemaCommand(), "show")
	require.NoError(t, err)

	var tables []struct {
		Name    string `json:"name"`
		Columns []struct {
			Name string `json:"name"`
			Type string `json:"type"`
		} `json:"columns"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &tables))
	require.Len(t, tables, 2)
	assert.Equal(t, "users", tables[0].Name)
	assert.Equal(t, `"AT"|"DE"`, tables[0].Columns[2].Type)
}

func TestSchemaDump_NoTarget(t *testing.T) {
	clitestutil.SetupTestProject(t)

	_, err := execute(t, NewSchemaCommand(), "dump")
	assert.ErrorContains(t, err, "no target configured")
}

func TestCacheCommands(t *testing.T) {
	clitestutil.SetupTestProject(t)
	t.Setenv("SQLTYPE_OUTPUT", "json")

	_, err := execute(t, NewAnalyzeCommand(), "-f", filepath.Join("queries", "users.sql"))
	require.NoError(t, err)

	out, err := execute(t, NewCacheCommand(), "stats")
	require.NoError(t, err)
	var stats cacheStats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 2, stats.Results)
	assert.Equal(t, int64(1), stats.Version)

	out, err = execute(t, NewCacheCommand(), "runs", "-n", "5")
	require.NoError(t, err)
	var runs []state.Run
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	assert.Len(t, runs, 1)

	// Changing the schema makes the cached results stale.
	dir, _ := os.Getwd()
	clitestutil.WriteFile(t, dir, "schema.yaml", "tables:\n  users:\n    id: string\n")
	t.Setenv("SQLTYPE_OUTPUT", "text")
	out, err = execute(t, NewCacheCommand(), "prune")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 2 stale results")
}

func TestRenderRuns(t *testing.T) {
	tr := clitestutil.NewTestRendererMarkdown()
	require.NoError(t, renderRuns(tr.Renderer, nil))
	assert.Contains(t, tr.Output(), "(0 runs)")

	tr = clitestutil.NewTestRendererText()
	run := &state.Run{ID: "run-1", Statements: 4, Failed: 1}
	require.NoError(t, renderRuns(tr.Renderer, []*state.Run{run}))
	assert.Contains(t, tr.Output(), "run-1")
	assert.Contains(t, tr.Output(), "running")
}
