package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/michaelhaar/type-safe-sql-query/internal/cli/output"
	"github.com/michaelhaar/type-safe-sql-query/internal/watch"
	"github.com/michaelhaar/type-safe-sql-query/pkg/analyzer"
	"github.com/michaelhaar/type-safe-sql-query/pkg/parser"
	"github.com/michaelhaar/type-safe-sql-query/pkg/schema"
)

// AnalyzeOptions holds options for the analyze command.
type AnalyzeOptions struct {
	Files []string
	Watch bool
	Jobs  int
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	opts := &AnalyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze [SQL]",
		Short: "Infer parameter types and row shapes of statements",
		Long: `Analyze SQL statements against the schema file.

For every statement, prints the type of each ? placeholder in order and,
for SELECT, the name and type of every result column. References that are
not in the schema are reported as unresolvable; with --strict they fail
the command.

Statements come from the arguments, from --file (several statements per
file, separated by semicolons) or from stdin.`,
		Example: `  # A single statement
  sqltype analyze "SELECT id, name FROM users WHERE id = ?"

  # Every statement in some files, as JSON
  sqltype analyze -f queries/users.sql -f queries/posts.sql -o json

  # Fail on unresolved references, e.g. in CI
  sqltype analyze --strict -f queries/*.sql

  # Re-run whenever the files or the schema change
  sqltype analyze -f queries/users.sql --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.Files, "file", "f", nil, "Read statements from file (repeatable)")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-analyze when the files or the schema change")
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", runtime.NumCPU(), "Number of statements analyzed in parallel")

	return cmd
}

// statement is one input statement and where it came from.
type statement struct {
	source string
	query  string
}

// batchStats summarizes one analysis pass.
type batchStats struct {
	total      int
	failed     int
	unresolved int
}

func runAnalyze(cmd *cobra.Command, args []string, opts *AnalyzeOptions) error {
	if opts.Watch && len(opts.Files) == 0 {
		return fmt.Errorf("--watch requires at least one --file")
	}
	if len(args) > 0 && len(opts.Files) > 0 {
		return fmt.Errorf("pass statements either as arguments or with --file, not both")
	}

	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	a, store, cleanup, err := cmdCtx.NewAnalyzer()
	if err != nil {
		return err
	}
	defer cleanup()

	pass := func(ctx context.Context) (batchStats, error) {
		stmts, err := collectStatements(cmd, args, opts.Files)
		if err != nil {
			return batchStats{}, err
		}
		s, err := cmdCtx.LoadSchema()
		if err != nil {
			return batchStats{}, err
		}

		var runID string
		if store != nil {
			run, err := store.CreateRun(ctx)
			if err != nil {
				cmdCtx.Logger.Warn("failed to record run", "error", err)
			} else {
				runID = run.ID
			}
		}

		items := analyzeAll(ctx, a, s, stmts, opts.Jobs)
		stats := summarize(items)

		if runID != "" {
			if err := store.CompleteRun(ctx, runID, stats.total, stats.failed); err != nil {
				cmdCtx.Logger.Warn("failed to complete run", "run", runID, "error", err)
			}
		}

		// A lone statement from the arguments renders without batch framing.
		if len(items) == 1 && items[0].Source == "" {
			if items[0].Err != nil {
				return stats, items[0].Err
			}
			if err := cmdCtx.Renderer.Result(items[0].Result); err != nil {
				return stats, err
			}
		} else {
			if err := cmdCtx.Renderer.Items(items); err != nil {
				return stats, err
			}
			cmdCtx.Renderer.Summary(stats.total, stats.failed, stats.unresolved)
		}
		return stats, checkStats(stats, cmdCtx.Cfg.Strict)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	_, err = pass(ctx)
	if !opts.Watch {
		return err
	}
	if err != nil {
		cmdCtx.Renderer.Error(err.Error())
	}

	w, err := watch.New(append([]string{cmdCtx.Cfg.SchemaFile}, opts.Files...), watch.DefaultDebounce, cmdCtx.Logger)
	if err != nil {
		return err
	}
	cmdCtx.Renderer.Muted(fmt.Sprintf("Watching %d files for changes. Press Ctrl+C to stop.", len(opts.Files)+1))
	return w.Run(ctx, func(changed []string) {
		cmdCtx.Renderer.Println("")
		cmdCtx.Renderer.Muted("Changed: " + strings.Join(relPaths(changed), ", "))
		if _, err := pass(ctx); err != nil {
			cmdCtx.Renderer.Error(err.Error())
		}
	})
}

// analyzeAll analyzes statements concurrently. Results keep input order.
func analyzeAll(ctx context.Context, a *analyzer.Analyzer, s *schema.Schema, stmts []statement, jobs int) []output.Item {
	items := make([]output.Item, len(stmts))

	var g errgroup.Group
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, st := range stmts {
		g.Go(func() error {
			res, err := a.Analyze(ctx, st.query, s)
			items[i] = output.Item{Source: st.source, Query: st.query, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return items
}

func summarize(items []output.Item) batchStats {
	stats := batchStats{total: len(items)}
	for _, it := range items {
		switch {
		case it.Err != nil:
			stats.failed++
		case len(it.Result.Unresolved()) > 0:
			stats.unresolved++
		}
	}
	return stats
}

func checkStats(stats batchStats, strict bool) error {
	if stats.failed > 0 {
		return fmt.Errorf("%d of %d statements failed to parse", stats.failed, stats.total)
	}
	if strict && stats.unresolved > 0 {
		return fmt.Errorf("%d of %d statements have unresolved references", stats.unresolved, stats.total)
	}
	return nil
}

// collectStatements reads statements from args, files or piped stdin,
// in that order of preference.
func collectStatements(cmd *cobra.Command, args, files []string) ([]statement, error) {
	if len(args) > 0 {
		return []statement{{query: strings.Join(args, " ")}}, nil
	}

	if len(files) > 0 {
		var stmts []statement
		for _, f := range files {
			data, err := os.ReadFile(f) //nolint:gosec // path is supplied by the user
			if err != nil {
				return nil, fmt.Errorf("failed to read file: %w", err)
			}
			parts := parser.SplitStatements(string(data))
			for i, q := range parts {
				source := f
				if len(parts) > 1 {
					source = f + ":" + strconv.Itoa(i+1)
				}
				stmts = append(stmts, statement{source: source, query: q})
			}
		}
		if len(stmts) == 0 {
			return nil, fmt.Errorf("no statements found in %s", strings.Join(files, ", "))
		}
		return stmts, nil
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return nil, fmt.Errorf("no statement given\nHint: Pass a statement, use --file, or pipe statements on stdin")
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	parts := parser.SplitStatements(string(data))
	if len(parts) == 0 {
		return nil, fmt.Errorf("no statement given")
	}
	stmts := make([]statement, len(parts))
	for i, q := range parts {
		stmts[i] = statement{query: q}
		if len(parts) > 1 {
			stmts[i].source = "stdin:" + strconv.Itoa(i+1)
		}
	}
	return stmts, nil
}

func relPaths(paths []string) []string {
	wd, err := os.Getwd()
	if err != nil {
		return paths
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		if rel, err := filepath.Rel(wd, p); err == nil {
			out[i] = rel
		} else {
			out[i] = p
		}
	}
	return out
}
