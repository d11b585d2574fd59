package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	clicfg "github.com/michaelhaar/type-safe-sql-query/internal/cli/config"
	sharedcfg "github.com/michaelhaar/type-safe-sql-query/internal/config"
)

// generateConfigDocs generates the configuration file reference.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating config docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := generateConfigurationDoc(outDir); err != nil {
		return fmt.Errorf("failed to generate configuration.md: %w", err)
	}
	log.Printf("  Generated configuration.md")
	return nil
}

// ConfigField is one leaf of the configuration, named by its dotted key.
type ConfigField struct {
	Key         string
	Type        string
	Default     string
	Description string
}

// Section is the top-level key a field lives under, or "project".
func (f ConfigField) Section() string {
	if i := strings.IndexByte(f.Key, '.'); i > 0 {
		return f.Key[:i]
	}
	return "project"
}

// Name is the key within its section.
func (f ConfigField) Name() string {
	return f.Key[strings.LastIndexByte(f.Key, '.')+1:]
}

// EnvVar is the environment variable that sets the field.
func (f ConfigField) EnvVar() string {
	return clicfg.EnvVar(f.Key)
}

var fieldDescriptions = map[string]string{
	"schema_file":     "Schema file statements are analyzed against",
	"output":          "Output format: auto, text, markdown, json",
	"verbose":         "Log debug output to stderr",
	"strict":          "Fail when a reference does not resolve",
	"cache_path":      "SQLite database holding cached results and runs",
	"no_cache":        "Skip the result cache",
	"environment":     "Entry of environments to apply",
	"target.type":     "Database type: duckdb, postgres, sqlite",
	"target.database": "File path (duckdb, sqlite) or database name (postgres)",
	"target.host":     "Database host",
	"target.port":     "Database port (postgres defaults to 5432)",
	"target.user":     "Database username",
	"target.password": "Database password",
	"target.schema":   "Database schema to introspect",
	"target.options":  "Additional driver-specific options",
	"target.params":   "Adapter-specific settings such as duckdb extensions",
	"serve.port":      "HTTP port of sqltype serve",
	"serve.watch":     "Reload the schema file when it changes",
}

// targetDefaults are filled in when a target section is present.
var targetDefaults = map[string]string{
	"target.type": sharedcfg.DefaultTargetType,
}

// getConfigSchema walks the koanf tags of the CLI config. Environments
// are documented separately since each entry repeats schema_file and
// target.
func getConfigSchema() []ConfigField {
	defaults := clicfg.Defaults()
	var fields []ConfigField
	var walk func(t reflect.Type, prefix string)
	walk = func(t reflect.Type, prefix string) {
		for i := range t.NumField() {
			sf := t.Field(i)
			tag := sf.Tag.Get("koanf")
			if tag == "" || tag == "-" || tag == "environments" {
				continue
			}
			key := prefix + tag

			ft := sf.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				walk(ft, key+".")
				continue
			}

			def := targetDefaults[key]
			if v, ok := defaults[key]; ok {
				def = fmt.Sprint(v)
			}
			fields = append(fields, ConfigField{
				Key:         key,
				Type:        typeName(ft),
				Default:     def,
				Description: fieldDescriptions[key],
			})
		}
	}
	walk(reflect.TypeFor[clicfg.Config](), "")
	return fields
}

func typeName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Map:
		return "map[" + typeName(t.Key()) + "]" + typeName(t.Elem())
	case reflect.Interface:
		return "any"
	default:
		return t.Kind().String()
	}
}

func fieldRows(section string) [][]string {
	var rows [][]string
	for _, f := range getConfigSchema() {
		if f.Section() != section {
			continue
		}
		def := "-"
		if f.Default != "" {
			def = InlineCode(f.Default)
		}
		rows = append(rows, []string{InlineCode(f.Name()), f.Type, def, cleanDescription(f.Description)})
	}
	return rows
}

// generateConfigurationDoc generates the configuration reference page.
func generateConfigurationDoc(outDir string) error {
	w := NewMarkdownWriter()
	headers := []string{"Field", "Type", "Default", "Description"}

	w.Frontmatter("Configuration", "sqltype configuration reference")
	w.GeneratedMarker()

	w.Header(1, "Configuration")
	w.Paragraph(fmt.Sprintf("sqltype is configured via %s (or %s) in your project root. The file is searched upward from the working directory.",
		InlineCode(clicfg.ConfigFileName), InlineCode(clicfg.ConfigFileNameAlt)))

	w.Header(2, "Project Settings")
	w.Table(headers, fieldRows("project"))

	w.Header(2, "Target")
	w.Paragraph("The `target` section is the database `sqltype schema dump` reads the schema from. Analysis never connects to it.")
	w.Table(headers, fieldRows("target"))

	w.Header(2, "Server")
	w.Table(headers, fieldRows("serve"))

	w.Header(2, "Environments")
	w.Paragraph("Entries under `environments` override `schema_file` and `target` when selected with `--env` or `environment`.")

	w.Header(2, "Full Configuration Example")
	w.CodeBlock("yaml", `# sqltype.yaml
schema_file: schema.yaml
output: auto
strict: false
cache_path: .sqltype/cache.db

target:
  type: duckdb
  database: ./data/dev.duckdb

serve:
  port: 8766

environments:
  prod:
    schema_file: schema.prod.yaml
    target:
      type: postgres
      host: prod-db.example.com
      user: sqltype
      password: ${PROD_DB_PASSWORD}
      database: app
      schema: public`)

	w.Header(2, "Environment Variables")
	w.Paragraph(fmt.Sprintf("Every field can be set with a %s variable. Nested fields use a double underscore.",
		InlineCode(clicfg.EnvPrefix+"*")))
	w.Table([]string{"Variable", "Field"}, envRows())
	w.Paragraph("Use `${VAR_NAME}` inside target values to reference environment variables.")

	filename := filepath.Join(outDir, "configuration.md")
	return os.WriteFile(filename, w.Bytes(), 0600)
}

// envRows lists the scalar fields that an environment variable can set.
func envRows() [][]string {
	var rows [][]string
	for _, f := range getConfigSchema() {
		if strings.HasPrefix(f.Type, "map[") {
			continue
		}
		rows = append(rows, []string{InlineCode(f.EnvVar()), InlineCode(f.Key)})
	}
	return rows
}
