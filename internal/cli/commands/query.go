package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/leapstack-labs/leapsqlite/internal/cli/output"
	"github.com/leapstack-labs/leapsqlite/pkg/adapters/sqlite"
	"github.com/leapstack-labs/leapsqlite/pkg/core"
	"github.com/spf13/cobra"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Format string
	Input  string
	Watch  bool
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Run SQL against the database",
		Long: `Run SQL statements against the configured database.

Statements are classified by their leading keyword and dispatched to the
connection. Reads print their rows; writes print OK and, for inserts, the
last insert id. Several statements may be separated by semicolons.

When invoked without arguments on a terminal, enters interactive REPL mode.`,
		Example: `  # Execute SQL directly
  leapsqlite query "SELECT * FROM users"

  # Output as JSON
  leapsqlite query "SELECT * FROM users" --format json

  # Run a file, and again every time it is saved
  leapsqlite query --input report.sql --watch

  # Pipe SQL in
  echo "SELECT 1 + 1 AS sum" | leapsqlite query

  # Interactive mode
  leapsqlite query`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", formatTable, "Output format: table, json, csv, md")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-run the input file whenever it changes")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	if opts.Watch && opts.Input == "" {
		return errors.New("--watch requires --input")
	}

	cmdCtx, cleanup := NewCommandContext(cmd)
	defer cleanup()

	var sqlText string
	switch {
	case len(args) > 0:
		sqlText = strings.Join(args, " ")
	case opts.Input != "":
		if opts.Watch {
			return watchFile(cmd.Context(), opts.Input, cmdCtx.Logger, func() {
				runWatchedFile(cmd, cmdCtx, opts)
			})
		}
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		sqlText = string(content)
	case !output.IsTerminal(cmd.InOrStdin()):
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		sqlText = string(content)
	default:
		return runQueryREPL(cmd, cmdCtx, opts)
	}

	return executeScript(cmd.Context(), cmd.OutOrStdout(), cmdCtx.Adapter, sqlText, opts.Format)
}

// runWatchedFile runs the input file once, reporting errors without stopping the watch.
func runWatchedFile(cmd *cobra.Command, cmdCtx *CommandContext, opts *QueryOptions) {
	r := cmdCtx.Renderer
	content, err := os.ReadFile(opts.Input)
	if err != nil {
		r.Error(fmt.Sprintf("failed to read file: %v", err))
		return
	}
	r.Muted(fmt.Sprintf("-- %s", opts.Input))
	if err := executeScript(cmd.Context(), cmd.OutOrStdout(), cmdCtx.Adapter, string(content), opts.Format); err != nil {
		r.Error(err.Error())
	}
}

// executeScript runs each statement of sqlText in order, stopping at the first error.
func executeScript(ctx context.Context, w io.Writer, a *sqlite.Adapter, sqlText, format string) error {
	stmts := splitStatements(sqlText)
	if len(stmts) == 0 {
		return errors.New("no SQL to run")
	}
	for _, stmt := range stmts {
		if err := executeAndRender(ctx, w, a, stmt, format); err != nil {
			return err
		}
	}
	return nil
}

// executeAndRender runs one statement and writes its outcome.
func executeAndRender(ctx context.Context, w io.Writer, a *sqlite.Adapter, stmt, format string) error {
	resp, err := a.Query(ctx, stmt)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	if resp.Cursor != nil {
		return renderResults(w, resp.Cursor, format)
	}

	if resp.Kind == core.StatementInsert {
		if id, ok := a.LastInsertID(); ok {
			_, _ = fmt.Fprintf(w, "OK (last insert id %d)\n", id)
			return nil
		}
	}
	_, _ = fmt.Fprintln(w, "OK")
	return nil
}

// splitStatements splits SQL text on semicolons that are outside quotes
// and comments. Empty statements are dropped.
func splitStatements(s string) []string {
	var (
		stmts []string
		cur   strings.Builder
		quote byte
	)
	flush := func() {
		if stmt := strings.TrimSpace(cur.String()); stmt != "" && !onlyComments(stmt) {
			stmts = append(stmts, stmt)
		}
		cur.Reset()
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			cur.WriteByte(c)
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"' || c == '`':
			quote = c
			cur.WriteByte(c)
		case c == '-' && i+1 < len(s) && s[i+1] == '-':
			end := strings.IndexByte(s[i:], '\n')
			if end < 0 {
				end = len(s) - i
			}
			cur.WriteString(s[i : i+end])
			i += end - 1
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			end := strings.Index(s[i+2:], "*/")
			if end < 0 {
				cur.WriteString(s[i:])
				i = len(s)
				continue
			}
			cur.WriteString(s[i : i+end+4])
			i += end + 3
		case c == ';':
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return stmts
}

// onlyComments reports whether stmt holds nothing but comments.
func onlyComments(stmt string) bool {
	return strings.TrimSpace(stripComments(stmt)) == ""
}

func stripComments(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '-' && i+1 < len(s) && s[i+1] == '-':
			end := strings.IndexByte(s[i:], '\n')
			if end < 0 {
				return b.String()
			}
			i += end
		case s[i] == '/' && i+1 < len(s) && s[i+1] == '*':
			end := strings.Index(s[i+2:], "*/")
			if end < 0 {
				return b.String()
			}
			i += end + 3
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
