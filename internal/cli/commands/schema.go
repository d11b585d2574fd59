package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/michaelhaar/type-safe-sql-query/pkg/adapter"
)

// SchemaDumpOptions holds options for the schema dump command.
type SchemaDumpOptions struct {
	Tables []string
	Out    string
}

// NewSchemaCommand creates the schema command and its subcommands.
func NewSchemaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Show or generate the schema file",
	}

	cmd.AddCommand(newSchemaShowCommand())
	cmd.AddCommand(newSchemaDumpCommand())
	return cmd
}

func newSchemaShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the tables and columns of the schema file",
		Example: `  sqltype schema show
  sqltype schema show -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			s, err := cmdCtx.LoadSchema()
			if err != nil {
				return err
			}
			return cmdCtx.Renderer.Schema(s)
		},
	}
}

func newSchemaDumpCommand() *cobra.Command {
	opts := &SchemaDumpOptions{}

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Generate a schema file from the target database",
		Long: `Connect to the database configured under target and write its tables
as a schema file. Column types are the database's own type names; edit the
file afterwards to use the type tags your code generator expects.`,
		Example: `  # Print the schema of every table
  sqltype schema dump

  # Write selected tables to the configured schema file
  sqltype schema dump --table users --table posts --out schema.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSchemaDump(cmd, opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Tables, "table", nil, "Table to include (repeatable, default: all)")
	cmd.Flags().StringVar(&opts.Out, "out", "", "Write to file instead of stdout")
	return cmd
}

func runSchemaDump(cmd *cobra.Command, opts *SchemaDumpOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	target := cmdCtx.Cfg.Target
	if target == nil {
		return fmt.Errorf("no target configured\nHint: Add a target section to sqltype.yaml")
	}

	ctx := cmd.Context()
	a, err := adapter.NewAdapter(target.ToAdapterConfig(), cmdCtx.Logger)
	if err != nil {
		return err
	}
	if err := a.Connect(ctx, target.ToAdapterConfig()); err != nil {
		return fmt.Errorf("failed to connect to %s: %w", target.Type, err)
	}
	defer func() { _ = a.Close() }()

	s, err := adapter.Introspect(ctx, a, opts.Tables...)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode schema: %w", err)
	}

	if opts.Out == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if dir := filepath.Dir(opts.Out); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(opts.Out, data, 0o600); err != nil {
		return fmt.Errorf("failed to write schema: %w", err)
	}
	cmdCtx.Renderer.Success(fmt.Sprintf("Wrote %d tables to %s", s.Len(), opts.Out))
	return nil
}
