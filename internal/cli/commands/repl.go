package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/michaelhaar/type-safe-sql-query/internal/cli/output"
	"github.com/michaelhaar/type-safe-sql-query/pkg/analyzer"
	"github.com/michaelhaar/type-safe-sql-query/pkg/schema"
)

const (
	replPrompt     = "sqltype> "
	replContPrompt = "     ...> "
)

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Analyze statements interactively",
		Long: `Start an interactive session that analyzes each statement you type
against the schema file. Statements end with a semicolon and may span
several lines.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runREPL(cmd)
		},
	}
}

// repl is the state of one interactive session.
type repl struct {
	ctx      context.Context
	analyzer *analyzer.Analyzer
	schema   *schema.Schema
	renderer *output.Renderer
	reload   func() (*schema.Schema, error)
	out      io.Writer
	errOut   io.Writer
}

func runREPL(cmd *cobra.Command) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	s, err := cmdCtx.LoadSchema()
	if err != nil {
		return err
	}
	a, _, cleanup, err := cmdCtx.NewAnalyzer()
	if err != nil {
		return err
	}
	defer cleanup()

	historyFile := filepath.Join(filepath.Dir(cmdCtx.Cfg.CachePath), "repl_history")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile,
		AutoComplete:    newSchemaCompleter(s),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdin:           io.NopCloser(cmd.InOrStdin()),
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	r := &repl{
		ctx:      cmd.Context(),
		analyzer: a,
		schema:   s,
		renderer: cmdCtx.Renderer,
		reload:   cmdCtx.LoadSchema,
		out:      cmd.OutOrStdout(),
		errOut:   cmd.ErrOrStderr(),
	}

	_, _ = fmt.Fprintf(r.out, "sqltype REPL (schema: %s, %d tables)\n", cmdCtx.Cfg.SchemaFile, s.Len())
	_, _ = fmt.Fprintln(r.out, "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(r.out)

	return r.loop(rl, func() {
		rl.Config.AutoComplete = newSchemaCompleter(r.schema)
	})
}

// lineReader is the part of *readline.Instance the loop needs.
type lineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

// loop reads statements until .quit or EOF. onReload runs after the
// schema was reloaded.
func (r *repl) loop(rl lineReader, onReload func()) error {
	var buf strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			buf.Reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if buf.Len() == 0 && strings.HasPrefix(line, ".") {
			quit, reloaded := r.dotCommand(line)
			if quit {
				return nil
			}
			if reloaded && onReload != nil {
				onReload()
			}
			continue
		}

		// Accumulate multi-line SQL until semicolon
		buf.WriteString(line)
		if !strings.HasSuffix(line, ";") {
			buf.WriteString(" ")
			rl.SetPrompt(replContPrompt)
			continue
		}
		rl.SetPrompt(replPrompt)

		query := buf.String()
		buf.Reset()
		r.analyze(query)
	}
}

func (r *repl) analyze(query string) {
	res, err := r.analyzer.Analyze(r.ctx, query, r.schema)
	if err != nil {
		_, _ = fmt.Fprintf(r.errOut, "Error: %v\n", err)
		return
	}
	if err := r.renderer.Result(res); err != nil {
		_, _ = fmt.Fprintf(r.errOut, "Error: %v\n", err)
	}
	_, _ = fmt.Fprintln(r.out)
}

// dotCommand runs a dot-command and reports whether the session should
// end and whether the schema was reloaded.
func (r *repl) dotCommand(line string) (quit, reloaded bool) {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true, false

	case ".help":
		printREPLHelp(r.out)

	case ".tables":
		for _, name := range r.schema.TableNames() {
			_, _ = fmt.Fprintln(r.out, name)
		}

	case ".schema":
		if len(parts) < 2 {
			if err := r.renderer.Schema(r.schema); err != nil {
				_, _ = fmt.Fprintf(r.errOut, "Error: %v\n", err)
			}
			return false, false
		}
		cols, ok := r.schema.Columns(parts[1])
		if !ok {
			_, _ = fmt.Fprintf(r.errOut, "Error: table %s not found\n", parts[1])
			return false, false
		}
		single := schema.MustNew(schema.Table{Name: parts[1], Columns: cols})
		if err := r.renderer.Schema(single); err != nil {
			_, _ = fmt.Fprintf(r.errOut, "Error: %v\n", err)
		}

	case ".reload":
		s, err := r.reload()
		if err != nil {
			_, _ = fmt.Fprintf(r.errOut, "Error: %v\n", err)
			return false, false
		}
		r.schema = s
		_, _ = fmt.Fprintf(r.out, "Reloaded schema (%d tables)\n", s.Len())
		return false, true

	default:
		_, _ = fmt.Fprintf(r.errOut, "Unknown command: %s (type .help for commands)\n", command)
	}
	return false, false
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help            Show this help message
  .tables          List the schema's tables
  .schema [table]  Show the columns of one or all tables
  .reload          Re-read the schema file
  .quit / .exit    Exit the REPL

Tips:
  - Statements must end with a semicolon (;)
  - Use arrow keys to navigate history
  - Tab completion works for table names
`
	_, _ = fmt.Fprintln(w, help)
}

// newSchemaCompleter creates a readline completer for dot-commands and
// table names.
func newSchemaCompleter(s *schema.Schema) *readline.PrefixCompleter {
	tables := make([]readline.PrefixCompleterInterface, 0, s.Len())
	var items []readline.PrefixCompleterInterface
	for _, name := range s.TableNames() {
		tables = append(tables, readline.PcItem(name))
		items = append(items, readline.PcItem(name))
	}

	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".tables"),
		readline.PcItem(".schema", tables...),
		readline.PcItem(".reload"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
	return readline.NewPrefixCompleter(items...)
}
