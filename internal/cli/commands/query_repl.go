package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/leapsqlite/pkg/adapters/sqlite"
	"github.com/leapstack-labs/leapsqlite/pkg/dialect"
	"github.com/spf13/cobra"
)

const (
	replPrompt    = "leapsqlite> "
	replContinued = "       ...> "
)

func runQueryREPL(cmd *cobra.Command, cmdCtx *CommandContext, opts *QueryOptions) error {
	ctx := cmd.Context()
	a := cmdCtx.Adapter

	if _, err := a.Connect(ctx); err != nil {
		return err
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     cmdCtx.Cfg.HistoryFile,
		AutoComplete:    newTableCompleter(ctx, a),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	cmdCtx.Renderer.Header(1, fmt.Sprintf("leapsqlite REPL (%s: %s)", cmdCtx.Cfg.Connection.Driver, cmdCtx.Cfg.Connection.Database))
	cmdCtx.Renderer.Muted("Type .help for commands, .quit to exit")
	cmdCtx.Renderer.Println()

	var buf strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			buf.Reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if buf.Len() == 0 && strings.HasPrefix(line, ".") {
			if quit := handleDotCommand(ctx, cmd, a, line, opts.Format); quit {
				break
			}
			continue
		}

		// Accumulate multi-line SQL until semicolon
		buf.WriteString(line)
		if !strings.HasSuffix(line, ";") {
			buf.WriteString("\n")
			rl.SetPrompt(replContinued)
			continue
		}
		rl.SetPrompt(replPrompt)

		script := buf.String()
		buf.Reset()
		if err := executeScript(ctx, cmd.OutOrStdout(), a, script, opts.Format); err != nil {
			cmdCtx.Renderer.Error(err.Error())
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout())
	}

	return nil
}

// handleDotCommand runs a REPL dot-command and reports whether the REPL should exit.
func handleDotCommand(ctx context.Context, cmd *cobra.Command, a *sqlite.Adapter, line, format string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(out)

	case ".tables":
		if err := listSources(ctx, out, a, format); err != nil {
			_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
		}

	case ".schema":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(errOut, "Usage: .schema <table>")
			return false
		}
		if err := describeTable(ctx, out, a, parts[1], format); err != nil {
			_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
		}

	case ".types":
		listDataTypes(out, a.Dialect())

	case ".clear":
		_, _ = fmt.Fprint(out, "\033[H\033[2J")

	default:
		_, _ = fmt.Fprintf(errOut, "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .tables         List tables
  .schema <name>  Show the fields of a table
  .types          List native types and their logical types
  .clear          Clear the screen
  .quit / .exit   Exit the REPL

Tips:
  - SQL statements must end with a semicolon (;)
  - Use arrow keys to navigate history
  - Tab completion works for table names
`
	_, _ = fmt.Fprintln(w, help)
}

// newTableCompleter creates a readline completer for table names.
func newTableCompleter(ctx context.Context, a *sqlite.Adapter) *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface

	// Completion is best effort; a failed listing leaves only dot-commands.
	if names, err := a.Sources(ctx); err == nil {
		items = append(items, tableItems(names)...)
		items = append(items, readline.PcItem(".schema", tableItems(names)...))
	}

	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".tables"),
		readline.PcItem(".types"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
	return readline.NewPrefixCompleter(items...)
}

func tableItems(names []string) []readline.PrefixCompleterInterface {
	items := make([]readline.PrefixCompleterInterface, len(names))
	for i, name := range names {
		items[i] = readline.PcItem(name)
	}
	return items
}

// listDataTypes prints the dialect's native type names with the logical
// type each maps to.
func listDataTypes(w io.Writer, d *dialect.Dialect) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Native", "Logical"})
	for _, name := range d.DataTypes() {
		t.AppendRow(table.Row{name, d.TypeOf(name).String()})
	}
	t.Render()
}
