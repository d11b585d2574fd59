package config

import "strings"

// Default configuration values.
const (
	DefaultSchemaFile = "schema.yaml"
	DefaultOutput     = "auto"
	DefaultCachePath  = ".sqltype/cache.db"
	DefaultTargetType = "duckdb"
	DefaultServePort  = 8766
)

// IsFileBased reports whether the target type opens a local file.
func IsFileBased(dbType string) bool {
	switch strings.ToLower(dbType) {
	case "duckdb", "sqlite":
		return true
	}
	return false
}

// DefaultSchemaForType returns the schema introspected when none is set.
func DefaultSchemaForType(dbType string) string {
	if strings.ToLower(dbType) == "postgres" {
		return "public"
	}
	return "main"
}

// ApplyTargetDefaults fills in the schema and, for postgres, the port.
func ApplyTargetDefaults(t *TargetConfig) {
	if t == nil {
		return
	}
	if t.Schema == "" {
		t.Schema = DefaultSchemaForType(t.Type)
	}
	if strings.ToLower(t.Type) == "postgres" && t.Port == 0 {
		t.Port = 5432
	}
}

// MergeTargetConfig returns base with every non-empty field of override
// applied on top. Options and params are merged key by key.
func MergeTargetConfig(base, override *TargetConfig) *TargetConfig {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	merged := *base
	merged.Options = make(map[string]string, len(base.Options)+len(override.Options))
	merged.Params = make(map[string]any, len(base.Params)+len(override.Params))
	for k, v := range base.Options {
		merged.Options[k] = v
	}
	for k, v := range base.Params {
		merged.Params[k] = v
	}

	if override.Type != "" {
		merged.Type = override.Type
	}
	if override.Database != "" {
		merged.Database = override.Database
	}
	if override.Host != "" {
		merged.Host = override.Host
	}
	if override.Port != 0 {
		merged.Port = override.Port
	}
	if override.User != "" {
		merged.User = override.User
	}
	if override.Password != "" {
		merged.Password = override.Password
	}
	if override.Schema != "" {
		merged.Schema = override.Schema
	}
	for k, v := range override.Options {
		merged.Options[k] = v
	}
	for k, v := range override.Params {
		merged.Params[k] = v
	}
	return &merged
}
