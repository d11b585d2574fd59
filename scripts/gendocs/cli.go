package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/michaelhaar/type-safe-sql-query/internal/cli"
	clicfg "github.com/michaelhaar/type-safe-sql-query/internal/cli/config"
)

// generateCLIDocs writes index.md plus one page per visible command.
func generateCLIDocs(outDir string) error {
	log.Printf("Generating CLI docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	root := cli.NewRootCmd()
	pages := map[string]*MarkdownWriter{"index": cliIndex(root)}
	for _, cmd := range visibleCommands(root) {
		pages[cmd.Name()] = commandPage(cmd)
	}

	for name, w := range pages {
		filename := filepath.Join(outDir, name+".md")
		if err := os.WriteFile(filename, w.Bytes(), 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", filename, err)
		}
		log.Printf("  Generated %s.md", name)
	}
	return nil
}

func visibleCommands(parent *cobra.Command) []*cobra.Command {
	var out []*cobra.Command
	for _, cmd := range parent.Commands() {
		if cmd.Hidden || cmd.Name() == "help" || cmd.Name() == "__complete" {
			continue
		}
		out = append(out, cmd)
	}
	return out
}

func cliIndex(root *cobra.Command) *MarkdownWriter {
	w := NewMarkdownWriter()
	w.Frontmatter("CLI Reference", "Command-line interface reference for sqltype")
	w.GeneratedMarker()

	w.Header(1, "CLI Reference")
	w.Paragraph(root.Short)

	w.Header(2, "Installation")
	w.CodeBlock("bash", "go install github.com/michaelhaar/type-safe-sql-query/cmd/sqltype@latest")

	w.Header(2, "Commands")
	var rows [][]string
	for _, cmd := range visibleCommands(root) {
		link := fmt.Sprintf("[%s](/cli/%s)", InlineCode(cmd.Name()), cmd.Name())
		rows = append(rows, []string{link, cleanDescription(cmd.Short)})
	}
	w.Table([]string{"Command", "Description"}, rows)

	w.Header(2, "Global Options")
	w.Paragraph("Options that map to a config key override the config file and its environment variable.")
	writeFlagsTable(w, root.PersistentFlags(), true)

	w.Header(2, "Environment Variables")
	w.Paragraph(fmt.Sprintf("Every config key can be set with a %s variable. Nested keys use a double underscore.",
		InlineCode(clicfg.EnvPrefix+"*")))
	w.Table([]string{"Variable", "Config key"}, envRows())

	w.Header(2, "Exit Codes")
	w.Table([]string{"Code", "Meaning"}, [][]string{
		{InlineCode("0"), "Success"},
		{InlineCode("1"), "Error, including unresolved references with --strict"},
	})
	return w
}

func commandPage(cmd *cobra.Command) *MarkdownWriter {
	w := NewMarkdownWriter()
	w.Frontmatter(cmd.Name(), cmd.Short)
	w.GeneratedMarker()

	w.Header(1, cmd.Name())
	if cmd.Long != "" {
		w.Paragraph(cmd.Long)
	} else {
		w.Paragraph(cmd.Short)
	}

	w.Header(2, "Usage")
	use := cmd.UseLine()
	if cmd.HasSubCommands() {
		use = cmd.CommandPath() + " <subcommand> [options]"
	}
	w.CodeBlock("bash", use)

	if subs := visibleCommands(cmd); len(subs) > 0 {
		w.Header(2, "Subcommands")
		var rows [][]string
		for _, sub := range subs {
			rows = append(rows, []string{InlineCode(sub.Name()), cleanDescription(sub.Short)})
		}
		w.Table([]string{"Subcommand", "Description"}, rows)
	}

	if cmd.HasLocalFlags() {
		w.Header(2, "Options")
		writeFlagsTable(w, cmd.LocalFlags(), false)
	}
	if cmd.HasInheritedFlags() {
		w.Header(2, "Global Options")
		writeFlagsTable(w, cmd.InheritedFlags(), true)
	}

	if cmd.Example != "" {
		w.Header(2, "Examples")
		w.CodeBlock("bash", dedent(cmd.Example))
	}
	return w
}

// writeFlagsTable lists flags. withKeys adds the config key each flag
// sets, for flags that reach the config.
func writeFlagsTable(w *MarkdownWriter, flags *pflag.FlagSet, withKeys bool) {
	headers := []string{"Option", "Short", "Default", "Description"}
	if withKeys {
		headers = append(headers, "Config key")
	}

	var rows [][]string
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		short, def := "", f.DefValue
		if f.Shorthand != "" {
			short = "-" + f.Shorthand
		}
		if f.Value.Type() == "string" && def != "" {
			def = InlineCode(def)
		}
		row := []string{InlineCode("--" + f.Name), short, def, cleanDescription(f.Usage)}
		if withKeys {
			key := "-"
			if k, ok := clicfg.FlagKey(f.Name); ok {
				key = InlineCode(k)
			}
			row = append(row, key)
		}
		rows = append(rows, row)
	})
	w.Table(headers, rows)
}

// dedent strips the indentation cobra examples share.
func dedent(s string) string {
	lines := strings.Split(strings.Trim(s, "\n"), "\n")
	indent := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		if n := len(l) - len(strings.TrimLeft(l, " \t")); indent < 0 || n < indent {
			indent = n
		}
	}
	for i, l := range lines {
		if len(l) >= indent && indent > 0 {
			lines[i] = l[indent:]
		}
	}
	return strings.Join(lines, "\n")
}
