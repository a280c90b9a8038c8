package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/leapsqlite/pkg/adapters/sqlite"
	"github.com/leapstack-labs/leapsqlite/pkg/core"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewDescribeCommand creates the describe command.
func NewDescribeCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "describe <table>",
		Short: "Show the fields of a table",
		Long: `Introspect a table and print its field descriptors.

Each field shows its logical type, the native storage type, size
arguments, nullability and the normalized default value. Defaults the
database evaluates at write time, such as CURRENT_TIMESTAMP, show as NULL.`,
		Example: `  leapsqlite describe users
  leapsqlite describe users --format json
  leapsqlite describe users --format yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup := NewCommandContext(cmd)
			defer cleanup()
			return describeTable(cmd.Context(), cmd.OutOrStdout(), cmdCtx.Adapter, args[0], format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "Output format: table, json, yaml")
	return cmd
}

func describeTable(ctx context.Context, w io.Writer, a *sqlite.Adapter, name, format string) error {
	schema, err := a.Describe(ctx, name)
	if err != nil {
		return err
	}

	switch format {
	case formatJSON:
		return renderJSON(w, schema)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(schema); err != nil {
			return fmt.Errorf("failed to encode schema: %w", err)
		}
		return enc.Close()
	}

	_, _ = fmt.Fprintf(w, "Table: %s\n", a.Dialect().QuoteIfNeeded(schema.Name))

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Column", "Type", "Native", "Size", "Nullable", "Default", "PK"})
	for _, f := range schema.Fields {
		t.AppendRow(table.Row{
			f.Name,
			f.Type.String(),
			f.Use,
			formatSize(f),
			yesNo(f.Nullable),
			formatValue(f.Default),
			yesNo(f.PrimaryKey),
		})
	}
	if format == formatMarkdown {
		t.RenderMarkdown()
		return nil
	}
	t.Render()
	return nil
}

func formatSize(f core.Field) string {
	switch {
	case f.Length != nil && f.Precision != nil:
		return fmt.Sprintf("%d,%d", *f.Length, *f.Precision)
	case f.Length != nil:
		return fmt.Sprintf("%d", *f.Length)
	default:
		return ""
	}
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}
