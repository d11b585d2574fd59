package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readPage(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(data)
}

func TestGenerateCLIDocs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, generateCLIDocs(dir))

	for _, page := range []string{"index.md", "analyze.md", "schema.md", "repl.md", "serve.md", "cache.md", "version.md"} {
		assert.FileExists(t, filepath.Join(dir, page))
	}

	analyze := readPage(t, dir, "analyze.md")
	assert.Contains(t, analyze, generatedHeader)
	assert.Contains(t, analyze, "sqltype analyze [SQL]")
	for _, flag := range []string{"`--file`", "`--watch`", "`--jobs`"} {
		assert.Contains(t, analyze, flag)
	}
	assert.Contains(t, analyze, "## Global Options")
	assert.Contains(t, analyze, "`cache_path`", "global flags show the config key they set")
	assert.NotContains(t, analyze, "\n  sqltype", "examples are dedented")

	cache := readPage(t, dir, "cache.md")
	assert.Contains(t, cache, "sqltype cache <subcommand> [options]")
	assert.Contains(t, cache, "`prune`")

	index := readPage(t, dir, "index.md")
	assert.Contains(t, index, "[`analyze`](/cli/analyze)")
	assert.Contains(t, index, "`SQLTYPE_SCHEMA_FILE`")
	assert.Contains(t, index, "`SQLTYPE_TARGET__HOST`")
	assert.NotContains(t, index, "SQLTYPE_TARGET__OPTIONS")
}

func TestGenerateConfigDocs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, generateConfigDocs(dir))

	doc := readPage(t, dir, "configuration.md")
	assert.Contains(t, doc, "## Target")
	assert.Contains(t, doc, "`SQLTYPE_SERVE__PORT`")
	assert.Contains(t, doc, "`target.password`")
}

func TestGetConfigSchema(t *testing.T) {
	fields := make(map[string]ConfigField)
	for _, f := range getConfigSchema() {
		fields[f.Key] = f
		assert.NotEmpty(t, f.Description, "%s has no description", f.Key)
	}
	for key := range fieldDescriptions {
		assert.Contains(t, fields, key, "description for unknown key")
	}

	assert.Equal(t, "8766", fields["serve.port"].Default)
	assert.Equal(t, "serve", fields["serve.port"].Section())
	assert.Equal(t, "port", fields["serve.port"].Name())
	assert.Equal(t, "duckdb", fields["target.type"].Default)
	assert.Equal(t, "schema.yaml", fields["schema_file"].Default)
	assert.Equal(t, "project", fields["schema_file"].Section())
	assert.Equal(t, "map[string]any", fields["target.params"].Type)
	assert.Equal(t, "int", fields["target.port"].Type)
	assert.Equal(t, "SQLTYPE_NO_CACHE", fields["no_cache"].EnvVar())
	assert.NotContains(t, fields, "environments")
}

func TestDedent(t *testing.T) {
	in := "  # first\n  sqltype analyze\n\n    --watch\n"
	assert.Equal(t, "# first\nsqltype analyze\n\n  --watch", dedent(in))
}
