package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/michaelhaar/type-safe-sql-query/pkg/adapters/duckdb"
	_ "github.com/michaelhaar/type-safe-sql-query/pkg/adapters/postgres"
	_ "github.com/michaelhaar/type-safe-sql-query/pkg/adapters/sqlite"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newFlags(t *testing.T, set map[string]string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.StringP("schema", "s", "", "")
	fs.StringP("output", "o", "", "")
	fs.BoolP("verbose", "v", false, "")
	fs.Bool("strict", false, "")
	fs.String("cache", "", "")
	fs.String("env", "", "")
	fs.Int("port", 0, "")
	fs.StringSlice("file", nil, "")
	for name, val := range set {
		require.NoError(t, fs.Set(name, val))
	}
	return fs
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "schema.yaml"), cfg.SchemaFile)
	assert.Equal(t, filepath.Join(dir, ".sqltype", "cache.db"), cfg.CachePath)
	assert.Equal(t, OutputAuto, cfg.Output)
	assert.Equal(t, 8766, cfg.Serve.Port)
	assert.False(t, cfg.Strict)
	assert.Nil(t, cfg.Target)
	assert.Empty(t, GetConfigFileUsed())
}

func TestLoadConfig_FileSearchedUpward(t *testing.T) {
	ResetConfig()
	root := t.TempDir()
	path := writeConfig(t, root, `
schema_file: db/schema.yaml
output: markdown
strict: true
target:
  type: sqlite
  database: app.db
`)
	nested := filepath.Join(root, "queries", "reports")
	require.NoError(t, os.MkdirAll(nested, 0o750))
	t.Chdir(nested)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, path, GetConfigFileUsed())
	assert.Equal(t, root, cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(root, "db", "schema.yaml"), cfg.SchemaFile)
	assert.Equal(t, OutputMarkdown, cfg.Output)
	assert.True(t, cfg.Strict)
	require.NotNil(t, cfg.Target)
	assert.Equal(t, filepath.Join(root, "app.db"), cfg.Target.Database)
	assert.Equal(t, "main", cfg.Target.Schema)
}

func TestLoadConfig_Precedence(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	writeConfig(t, dir, `
output: markdown
target:
  type: postgres
  host: filehost
`)
	t.Chdir(dir)
	t.Setenv("SQLTYPE_OUTPUT", "json")
	t.Setenv("SQLTYPE_TARGET__HOST", "envhost")

	t.Run("env beats file", func(t *testing.T) {
		cfg, err := LoadConfig("", nil)
		require.NoError(t, err)
		assert.Equal(t, OutputJSON, cfg.Output)
		assert.Equal(t, "envhost", cfg.Target.Host)
		assert.Equal(t, 5432, cfg.Target.Port)
	})

	t.Run("flags beat env", func(t *testing.T) {
		cfg, err := LoadConfig("", newFlags(t, map[string]string{"output": "text", "port": "9000"}))
		require.NoError(t, err)
		assert.Equal(t, OutputText, cfg.Output)
		assert.Equal(t, 9000, cfg.Serve.Port)
	})

	t.Run("unset flags are ignored", func(t *testing.T) {
		cfg, err := LoadConfig("", newFlags(t, nil))
		require.NoError(t, err)
		assert.Equal(t, OutputJSON, cfg.Output)
	})
}

func TestLoadConfig_SchemaFlagIsRelativeToWorkingDir(t *testing.T) {
	ResetConfig()
	root := t.TempDir()
	writeConfig(t, root, "schema_file: schema.yaml\n")
	sub := filepath.Join(root, "sub")
	require.NoError(t, os.Mkdir(sub, 0o750))
	t.Chdir(sub)

	cfg, err := LoadConfig("", newFlags(t, map[string]string{"schema": "local.yaml"}))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(sub, "local.yaml"), cfg.SchemaFile)
}

func TestLoadConfig_Environments(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	writeConfig(t, dir, `
target:
  type: postgres
  host: localhost
  password: ${SQLTYPE_TEST_PASSWORD}
environments:
  prod:
    schema_file: prod.yaml
    target:
      host: prod.internal
`)
	t.Chdir(dir)
	t.Setenv("SQLTYPE_TEST_PASSWORD", "s3cret")

	cfg, err := LoadConfig("", newFlags(t, map[string]string{"env": "prod"}))
	require.NoError(t, err)
	assert.Equal(t, "prod.internal", cfg.Target.Host)
	assert.Equal(t, "s3cret", cfg.Target.Password)
	assert.Equal(t, filepath.Join(dir, "prod.yaml"), cfg.SchemaFile)

	_, err = LoadConfig("", newFlags(t, map[string]string{"env": "staging"}))
	assert.ErrorContains(t, err, `unknown environment "staging"`)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		errSubstr string
	}{
		{"bad output", "output: html\n", "invalid output"},
		{"unknown target", "target:\n  type: oracle\n", "unknown adapter type"},
		{"missing target type", "target:\n  host: x\n", "target type is required"},
		{"malformed yaml", "output: [\n", "error reading config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetConfig()
			dir := t.TempDir()
			path := writeConfig(t, dir, tt.content)

			_, err := LoadConfig(path, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR_ONE", "value_one")

	tests := []struct {
		input    string
		expected string
	}{
		{"${TEST_VAR_ONE}", "value_one"},
		{"/path/${TEST_VAR_ONE}/file", "/path/value_one/file"},
		{"${UNSET_VARIABLE}", "${UNSET_VARIABLE}"},
		{"plain", "plain"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, expandEnvVars(tt.input))
		})
	}
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "schema_file", envKey("SQLTYPE_SCHEMA_FILE"))
	assert.Equal(t, "target.password", envKey("SQLTYPE_TARGET__PASSWORD"))

	for _, key := range []string{"schema_file", "target.password", "serve.port"} {
		assert.Equal(t, key, envKey(EnvVar(key)))
	}
}

func TestFlagKey(t *testing.T) {
	key, ok := FlagKey("cache")
	require.True(t, ok)
	assert.Equal(t, "cache_path", key)
	assert.Contains(t, Defaults(), key)

	_, ok = FlagKey("watch")
	assert.False(t, ok, "command options never reach the config")
}

func TestGetLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()))

	logger := slog.New(slog.DiscardHandler)
	ctx := context.WithValue(context.Background(), LoggerKey(), logger)
	assert.Same(t, logger, GetLogger(ctx))
}

func TestConfigContext(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))

	cfg := &Config{Output: OutputJSON}
	assert.Same(t, cfg, FromContext(NewContext(context.Background(), cfg)))
}
