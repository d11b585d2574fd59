// Package config loads the sqltype CLI configuration.
//
// Values come, lowest precedence first, from built-in defaults, the
// sqltype.yaml file, SQLTYPE_* environment variables and explicitly set
// command-line flags. The target and serve types are shared with the
// server through internal/config.
package config

import (
	"fmt"

	sharedcfg "github.com/michaelhaar/type-safe-sql-query/internal/config"
)

// TargetConfig is the shared target configuration.
type TargetConfig = sharedcfg.TargetConfig

// ServeConfig is the shared server configuration.
type ServeConfig = sharedcfg.ServeConfig

// Config holds all CLI configuration options.
type Config struct {
	SchemaFile   string               `koanf:"schema_file"`
	Output       string               `koanf:"output"`
	Verbose      bool                 `koanf:"verbose"`
	Strict       bool                 `koanf:"strict"`
	CachePath    string               `koanf:"cache_path"`
	NoCache      bool                 `koanf:"no_cache"`
	Environment  string               `koanf:"environment"`
	Target       *TargetConfig        `koanf:"target"`
	Serve        ServeConfig          `koanf:"serve"`
	Environments map[string]EnvConfig `koanf:"environments"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
}

// EnvConfig holds per-environment overrides selected with --env.
type EnvConfig struct {
	SchemaFile string        `koanf:"schema_file"`
	Target     *TargetConfig `koanf:"target"`
}

// Output modes.
const (
	OutputAuto     = "auto" // text on a terminal, markdown otherwise
	OutputText     = "text"
	OutputMarkdown = "markdown"
	OutputJSON     = "json"
)

// Config file names, in lookup order.
const (
	ConfigFileName    = "sqltype.yaml"
	ConfigFileNameAlt = "sqltype.yml"
)

// Validate checks values that koanf cannot type-check.
func (c *Config) Validate() error {
	switch c.Output {
	case OutputAuto, OutputText, OutputMarkdown, OutputJSON:
	default:
		return fmt.Errorf("invalid output %q: must be one of auto, text, markdown, json", c.Output)
	}
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return fmt.Errorf("invalid serve.port %d", c.Serve.Port)
	}
	if c.Target != nil {
		if err := c.Target.Validate(); err != nil {
			return fmt.Errorf("invalid target configuration: %w", err)
		}
	}
	return nil
}
