package commands

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/michaelhaar/type-safe-sql-query/internal/cli/output"
	"github.com/michaelhaar/type-safe-sql-query/internal/state"
)

// NewCacheCommand creates the cache command and its subcommands.
func NewCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the result cache",
		Long: `The result cache stores analyzed statements keyed by statement text and
schema fingerprint, so unchanged statements are not analyzed again. It
also records the history of analyze runs.`,
	}

	cmd.AddCommand(newCacheStatsCommand())
	cmd.AddCommand(newCachePruneCommand())
	cmd.AddCommand(newCacheRunsCommand())
	return cmd
}

// withStore opens the cache for a maintenance command.
func withStore(cmd *cobra.Command, fn func(*CommandContext, *state.SQLiteStore) error) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	store := state.NewSQLiteStore(cmdCtx.Logger)
	if err := store.Open(cmdCtx.Cfg.CachePath); err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer func() { _ = store.Close() }()
	return fn(cmdCtx, store)
}

type cacheStats struct {
	Path    string `json:"path"`
	Results int    `json:"results"`
	Version int64  `json:"schema_version"`
}

func newCacheStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the number of cached results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(cmdCtx *CommandContext, store *state.SQLiteStore) error {
				n, err := store.CountResults(cmd.Context())
				if err != nil {
					return err
				}
				version, err := store.GetMigrationVersion()
				if err != nil {
					return err
				}

				stats := cacheStats{Path: store.Path(), Results: n, Version: version}
				r := cmdCtx.Renderer
				if r.EffectiveMode() == output.ModeJSON {
					return r.JSON(stats)
				}
				r.Printf("Cache:   %s\n", stats.Path)
				r.Printf("Results: %d\n", stats.Results)
				r.Printf("Version: %d\n", stats.Version)
				return nil
			})
		},
	}
}

func newCachePruneCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove results computed against other schema versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(cmdCtx *CommandContext, store *state.SQLiteStore) error {
				s, err := cmdCtx.LoadSchema()
				if err != nil {
					return err
				}
				removed, err := store.PruneResults(cmd.Context(), s.FingerprintHex())
				if err != nil {
					return err
				}
				cmdCtx.Renderer.Success(fmt.Sprintf("Removed %d stale results", removed))
				return nil
			})
		},
	}
}

func newCacheRunsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent analyze runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(cmdCtx *CommandContext, store *state.SQLiteStore) error {
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				return renderRuns(cmdCtx.Renderer, runs)
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	return cmd
}

func renderRuns(r *output.Renderer, runs []*state.Run) error {
	mode := r.EffectiveMode()
	if mode == output.ModeJSON {
		return r.JSON(runs)
	}
	if len(runs) == 0 {
		r.Println("(0 runs)")
		return nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Run", "Started", "Duration", "Statements", "Failed"})
	for _, run := range runs {
		duration := "running"
		if run.Done() {
			duration = run.CompletedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
		}
		t.AppendRow(table.Row{run.ID, run.StartedAt.Local().Format(time.DateTime), duration, run.Statements, run.Failed})
	}

	if mode == output.ModeMarkdown {
		r.Println(t.RenderMarkdown())
		return nil
	}
	r.Println(t.Render())
	return nil
}
