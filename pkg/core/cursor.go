package core

import "iter"

// Row is one result record keyed by column name.
type Row map[string]any

// Cursor is a lazy, forward-only, single-pass sequence of rows.
// Row objects are built only when the cursor advances onto them.
type Cursor struct {
	columns []string
	rows    [][]any
	pos     int
	current Row
	closed  bool
}

// NewCursor creates a cursor over raw row values in column order.
func NewCursor(columns []string, rows [][]any) *Cursor {
	return &Cursor{columns: columns, rows: rows, pos: -1}
}

// Columns returns the column names in result order.
func (c *Cursor) Columns() []string {
	return c.columns
}

// Next advances to the next row. It returns false when the rows are
// exhausted or the cursor is closed.
func (c *Cursor) Next() bool {
	if c.closed || c.pos+1 >= len(c.rows) {
		c.current = nil
		return false
	}
	c.pos++
	values := c.rows[c.pos]
	row := make(Row, len(c.columns))
	for i, col := range c.columns {
		if i < len(values) {
			row[col] = values[i]
		} else {
			row[col] = nil
		}
	}
	c.rows[c.pos] = nil // single pass
	c.current = row
	return true
}

// Row returns the row the cursor is positioned on, or nil.
func (c *Cursor) Row() Row {
	return c.current
}

// All consumes the remaining rows.
func (c *Cursor) All() []Row {
	var out []Row
	for c.Next() {
		out = append(out, c.current)
	}
	return out
}

// Rows returns an iterator over the remaining rows.
func (c *Cursor) Rows() iter.Seq[Row] {
	return func(yield func(Row) bool) {
		for c.Next() {
			if !yield(c.current) {
				return
			}
		}
	}
}

// Close releases the remaining rows. Further calls to Next return false.
func (c *Cursor) Close() error {
	c.closed = true
	c.rows = nil
	c.current = nil
	return nil
}
