package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/leapstack-labs/leapsqlite/pkg/adapters/sqlite"
	"github.com/spf13/cobra"
)

// NewSourcesCommand creates the sources command.
func NewSourcesCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:     "sources",
		Aliases: []string{"tables"},
		Short:   "List the tables in the database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup := NewCommandContext(cmd)
			defer cleanup()
			return listSources(cmd.Context(), cmd.OutOrStdout(), cmdCtx.Adapter, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "Output format: table, json")
	return cmd
}

func listSources(ctx context.Context, w io.Writer, a *sqlite.Adapter, format string) error {
	names, err := a.Sources(ctx)
	if err != nil {
		return err
	}

	if format == formatJSON {
		if names == nil {
			names = []string{}
		}
		return renderJSON(w, names)
	}

	if len(names) == 0 {
		_, _ = fmt.Fprintln(w, "(no tables)")
		return nil
	}
	for _, name := range names {
		_, _ = fmt.Fprintln(w, name)
	}
	return nil
}
