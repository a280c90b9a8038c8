package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/leapsqlite/pkg/core"
)

// Result formats accepted by --format.
const (
	formatTable    = "table"
	formatJSON     = "json"
	formatCSV      = "csv"
	formatMarkdown = "md"
	formatYAML     = "yaml"
)

// renderResults drains cur and writes it in the given format.
func renderResults(w io.Writer, cur *core.Cursor, format string) error {
	cols := cur.Columns()
	results := cur.All()

	switch format {
	case formatJSON:
		return renderJSON(w, jsonRows(cols, results))
	case formatCSV:
		newResultTable(w, cols, results).RenderCSV()
		return nil
	case formatMarkdown, "markdown":
		if len(results) == 0 {
			_, _ = fmt.Fprintln(w, "(0 rows)")
			return nil
		}
		newResultTable(w, cols, results).RenderMarkdown()
		return nil
	default:
		return renderTable(w, cols, results)
	}
}

func newResultTable(w io.Writer, cols []string, results []core.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(cols))
	for i, col := range cols {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, result := range results {
		row := make(table.Row, len(cols))
		for i, col := range cols {
			row[i] = formatValue(result[col])
		}
		t.AppendRow(row)
	}
	return t
}

func renderTable(w io.Writer, cols []string, results []core.Row) error {
	if len(results) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}
	newResultTable(w, cols, results).Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(results))
	return nil
}

// jsonRows converts rows for JSON output. Blobs become strings.
func jsonRows(cols []string, results []core.Row) []map[string]any {
	out := make([]map[string]any, 0, len(results))
	for _, result := range results {
		row := make(map[string]any, len(cols))
		for _, col := range cols {
			v := result[col]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[col] = v
		}
		out = append(out, row)
	}
	return out
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", val)
	}
}
