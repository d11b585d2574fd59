package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	sharedcfg "github.com/michaelhaar/type-safe-sql-query/internal/config"
)

// EnvPrefix prefixes every environment variable the loader reads.
// A double underscore separates nesting levels: SQLTYPE_TARGET__HOST.
const EnvPrefix = "SQLTYPE_"

// maxUpwardSearchLevels limits how far up the tree the config file is searched.
const maxUpwardSearchLevels = 10

type (
	loggerKey struct{}
	configKey struct{}
)

var configFileUsed string

// flagKeys maps flag names to config keys. Flags not listed here are
// command options and never reach the config.
var flagKeys = map[string]string{
	"schema":   "schema_file",
	"output":   "output",
	"verbose":  "verbose",
	"strict":   "strict",
	"cache":    "cache_path",
	"no-cache": "no_cache",
	"env":      "environment",
	"port":     "serve.port",
}

// pathFlags are resolved against the working directory, not the project root.
var pathFlags = map[string]string{
	"schema": "schema_file",
	"cache":  "cache_path",
}

// Defaults returns the built-in values, keyed by dotted config key.
func Defaults() map[string]any {
	return map[string]any{
		"schema_file": sharedcfg.DefaultSchemaFile,
		"output":      OutputAuto,
		"verbose":     false,
		"strict":      false,
		"cache_path":  sharedcfg.DefaultCachePath,
		"no_cache":    false,
		"serve.port":  sharedcfg.DefaultServePort,
	}
}

// FlagKey returns the config key a flag sets, if any.
func FlagKey(flag string) (string, bool) {
	key, ok := flagKeys[flag]
	return key, ok
}

// EnvVar returns the environment variable that sets a dotted config key.
func EnvVar(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "__"))
}

// ResetConfig forgets the config file of the previous load. Used by tests.
func ResetConfig() {
	configFileUsed = ""
}

// GetConfigFileUsed returns the config file of the last load, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// LoadConfig loads the configuration. cfgFile may be empty, in which case
// sqltype.yaml is searched upward from the working directory. flags may
// be nil.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")
	configFileUsed = ""

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	// 1. Defaults
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	projectRoot := cwd
	if cfgFile == "" {
		if root := findProjectRootUpward(cwd); root != "" {
			projectRoot = root
			cfgFile = findConfigFile(root)
		}
	} else if abs, err := filepath.Abs(cfgFile); err == nil {
		projectRoot = filepath.Dir(abs)
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
		configFileUsed = cfgFile
	}

	// 3. Environment
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags that were set explicitly
	flagPaths := make(map[string]string)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			val := posflag.FlagVal(flags, f)
			if pathKey, ok := pathFlags[f.Name]; ok {
				if abs, err := filepath.Abs(f.Value.String()); err == nil {
					flagPaths[pathKey] = abs
				}
			}
			return key, val
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.ProjectRoot = projectRoot

	if envCfg, ok := cfg.Environments[cfg.Environment]; ok && cfg.Environment != "" {
		if envCfg.SchemaFile != "" && flagPaths["schema_file"] == "" {
			cfg.SchemaFile = envCfg.SchemaFile
		}
		cfg.Target = sharedcfg.MergeTargetConfig(cfg.Target, envCfg.Target)
	} else if cfg.Environment != "" {
		return nil, fmt.Errorf("unknown environment %q", cfg.Environment)
	}

	cfg.SchemaFile = resolvePath(cfg.SchemaFile, flagPaths["schema_file"], projectRoot)
	cfg.CachePath = resolvePath(cfg.CachePath, flagPaths["cache_path"], projectRoot)

	if cfg.Target != nil {
		sharedcfg.ApplyTargetDefaults(cfg.Target)
		expandTargetEnvVars(cfg.Target)
		if sharedcfg.IsFileBased(cfg.Target.Type) && cfg.Target.Database != ":memory:" {
			cfg.Target.Database = resolvePath(cfg.Target.Database, "", projectRoot)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey turns SQLTYPE_TARGET__HOST into target.host.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

func findConfigFile(dir string) string {
	for _, name := range []string{ConfigFileName, ConfigFileNameAlt} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func findProjectRootUpward(startDir string) string {
	dir := startDir
	for range maxUpwardSearchLevels {
		if findConfigFile(dir) != "" {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// resolvePath prefers an absolute flag value, then resolves path against base.
func resolvePath(path, fromFlag, base string) string {
	if fromFlag != "" {
		return fromFlag
	}
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} with its value. Unset variables are kept.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if val := os.Getenv(match[2 : len(match)-1]); val != "" {
			return val
		}
		return match
	})
}

func expandTargetEnvVars(t *TargetConfig) {
	t.Password = expandEnvVars(t.Password)
	t.User = expandEnvVars(t.User)
	t.Host = expandEnvVars(t.Host)
	t.Database = expandEnvVars(t.Database)
}

// LoggerKey returns the context key under which the root command stores
// its logger.
func LoggerKey() any {
	return loggerKey{}
}

// GetLogger returns the logger stored in ctx, or a discarding one.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

// NewContext returns a copy of ctx carrying cfg.
func NewContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext returns the config stored in ctx, or nil.
func FromContext(ctx context.Context) *Config {
	cfg, _ := ctx.Value(configKey{}).(*Config)
	return cfg
}
