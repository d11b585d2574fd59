// Package config holds the configuration types shared by the CLI and the
// HTTP server: where the schema comes from, how results are rendered and
// which database to introspect.
package config

import (
	"fmt"
	"strings"

	"github.com/michaelhaar/type-safe-sql-query/pkg/adapter"
)

// TargetConfig describes the database `schema dump` introspects.
type TargetConfig struct {
	Type string `koanf:"type"` // duckdb, postgres, sqlite

	// File path for duckdb and sqlite, database name for postgres.
	Database string `koanf:"database"`

	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Schema   string `koanf:"schema"`

	Options map[string]string `koanf:"options"`

	// Params holds adapter-specific settings such as duckdb extensions.
	Params map[string]any `koanf:"params"`
}

// Validate checks the type against the adapter registry.
func (t *TargetConfig) Validate() error {
	if t.Type == "" {
		return fmt.Errorf("target type is required")
	}
	if !adapter.IsRegistered(strings.ToLower(t.Type)) {
		return &adapter.UnknownAdapterError{
			Type:      t.Type,
			Available: adapter.ListAdapters(),
		}
	}
	return nil
}

// ToAdapterConfig converts the target into connection settings.
func (t *TargetConfig) ToAdapterConfig() adapter.Config {
	cfg := adapter.Config{
		Type:     strings.ToLower(t.Type),
		Host:     t.Host,
		Port:     t.Port,
		Database: t.Database,
		Username: t.User,
		Password: t.Password,
		Schema:   t.Schema,
		Options:  t.Options,
		Params:   t.Params,
	}
	if IsFileBased(cfg.Type) {
		cfg.Path = t.Database
	}
	return cfg
}

// ServeConfig configures `sqltype serve`.
type ServeConfig struct {
	Port  int  `koanf:"port"`
	Watch bool `koanf:"watch"`
}
