// Package commands implements the sqltype subcommands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/michaelhaar/type-safe-sql-query/internal/cli/config"
	"github.com/michaelhaar/type-safe-sql-query/internal/cli/output"
	"github.com/michaelhaar/type-safe-sql-query/internal/state"
	"github.com/michaelhaar/type-safe-sql-query/pkg/analyzer"
	"github.com/michaelhaar/type-safe-sql-query/pkg/schema"
)

// CommandContext holds the shared dependencies of a command.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext collects the config, logger and renderer that the root
// command stored in the context. Commands run on their own, as in tests,
// load the config from the working directory instead.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := config.FromContext(ctx)
	if cfg == nil {
		var err error
		cfg, err = config.LoadConfig("", nil)
		if err != nil {
			return nil, err
		}
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(ctx),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.Output)),
	}, nil
}

// LoadSchema reads the configured schema file.
func (c *CommandContext) LoadSchema() (*schema.Schema, error) {
	s, err := schema.LoadFile(c.Cfg.SchemaFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("schema file not found: %s\nHint: Create it, run 'sqltype schema dump', or pass --schema", c.Cfg.SchemaFile)
	}
	return s, err
}

// NewAnalyzer builds an analyzer with an in-memory cache and, unless
// no_cache is set, the persistent result store. The returned cleanup
// closes the store and must always be called.
func (c *CommandContext) NewAnalyzer() (*analyzer.Analyzer, *state.SQLiteStore, func(), error) {
	opts := []analyzer.Option{
		analyzer.WithLogger(c.Logger),
		analyzer.WithCache(analyzer.NewCache(analyzer.DefaultCacheSize)),
	}
	if c.Cfg.NoCache {
		return analyzer.New(opts...), nil, func() {}, nil
	}

	store := state.NewSQLiteStore(c.Logger)
	if err := store.Open(c.Cfg.CachePath); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open cache: %w", err)
	}
	opts = append(opts, analyzer.WithStore(store))

	cleanup := func() {
		if err := store.Close(); err != nil {
			c.Logger.Warn("failed to close cache", "error", err)
		}
	}
	return analyzer.New(opts...), store, cleanup, nil
}
