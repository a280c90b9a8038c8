package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapsqlite/pkg/core"
	"github.com/leapstack-labs/leapsqlite/pkg/dialect"
)

// columnInfo is one record of PRAGMA table_info.
type columnInfo struct {
	Name     string
	Type     string
	NotNull  bool
	Default  any
	PKOrder  int64
	Position int64
}

// Fields returns the field descriptors of a table in column order.
func (a *Adapter) Fields(ctx context.Context, table string) ([]core.Field, error) {
	stmt, kind := a.tableInfoStatement(table)

	resp, err := a.QueryKind(ctx, kind, stmt)
	if err != nil {
		return nil, err
	}

	columns, err := scanColumnInfo(resp.Cursor)
	if err != nil {
		return nil, &core.QueryError{Message: err.Error(), SQL: stmt, Kind: kind, Err: err}
	}
	if len(columns) == 0 {
		return nil, &core.QueryError{Message: "no such table: " + table, SQL: stmt, Kind: kind}
	}

	fields := make([]core.Field, 0, len(columns))
	for _, col := range columns {
		f, err := a.fieldFromColumn(col)
		if err != nil {
			return nil, &core.QueryError{Message: err.Error(), SQL: stmt, Kind: kind, Err: err}
		}
		fields = append(fields, f)
	}

	a.logger.Debug("introspected table", "table", table, "fields", len(fields))
	return fields, nil
}

// Describe returns the schema of a table. When known fields are supplied
// they are used as-is and no statement is issued.
func (a *Adapter) Describe(ctx context.Context, table string, known ...core.Field) (*core.Schema, error) {
	if len(known) > 0 {
		return &core.Schema{Name: table, Fields: known}, nil
	}
	fields, err := a.Fields(ctx, table)
	if err != nil {
		return nil, err
	}
	return &core.Schema{Name: table, Fields: fields}, nil
}

// tableInfoStatement picks the introspection statement the session can route.
func (a *Adapter) tableInfoStatement(table string) (string, core.StatementKind) {
	if a.introspectWithPragma() {
		return "PRAGMA table_info(" + a.Quote(table) + ")", core.StatementPragma
	}
	return `SELECT cid, name, type, "notnull", dflt_value, pk FROM pragma_table_info(` +
		quoteString(table) + ") ORDER BY cid", core.StatementSelect
}

func scanColumnInfo(cur *core.Cursor) ([]columnInfo, error) {
	if cur == nil {
		return nil, nil
	}
	defer cur.Close()

	var out []columnInfo
	for cur.Next() {
		row := cur.Row()
		var col columnInfo
		var err error

		if col.Name, err = textValue(row, "name"); err != nil {
			return nil, err
		}
		if col.Type, err = textValue(row, "type"); err != nil {
			return nil, err
		}
		notNull, err := intValue(row, "notnull")
		if err != nil {
			return nil, err
		}
		col.NotNull = notNull != 0
		if col.PKOrder, err = intValue(row, "pk"); err != nil {
			return nil, err
		}
		if col.Position, err = intValue(row, "cid"); err != nil {
			return nil, err
		}
		col.Default = row["dflt_value"]
		out = append(out, col)
	}
	return out, nil
}

func textValue(row core.Row, key string) (string, error) {
	switch v := row[key].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("table_info column %s: unexpected %T", key, v)
	}
}

func intValue(row core.Row, key string) (int64, error) {
	if row[key] == nil {
		return 0, nil
	}
	n, err := toInt64(row[key])
	if err != nil {
		return 0, fmt.Errorf("table_info column %s: %w", key, err)
	}
	return n, nil
}

func (a *Adapter) fieldFromColumn(col columnInfo) (core.Field, error) {
	nt, err := ParseNativeType(col.Type)
	if err != nil {
		return core.Field{}, fmt.Errorf("column %q: %w", col.Name, err)
	}

	f := core.Field{
		Name:       col.Name,
		Use:        strings.ToLower(nt.Name),
		Length:     nt.Length,
		Precision:  nt.Precision,
		Nullable:   !col.NotNull,
		PrimaryKey: col.PKOrder > 0,
	}
	f.Type = a.dialect.Mapped(f)
	// An INTEGER primary key aliases the rowid and is assigned by the engine.
	if f.PrimaryKey && strings.EqualFold(nt.Name, "INTEGER") {
		f.Type = core.TypeSerial
	}

	if f.Default, err = normalizeDefault(a.dialect, a.conv, f, col.Default); err != nil {
		return core.Field{}, fmt.Errorf("invalid default: %w", err)
	}
	return f, nil
}

// normalizeDefault turns a dflt_value literal into an application value.
// Write-time sentinels such as CURRENT_TIMESTAMP have no fixed value and
// become nil. A literal that does not convert to the field's type is an error.
func normalizeDefault(d *dialect.Dialect, conv Converter, f core.Field, raw any) (any, error) {
	var literal string
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		literal = v
	case []byte:
		literal = string(v)
	default:
		return conv.ToApplication(f, v)
	}

	literal = strings.TrimSpace(literal)
	if strings.EqualFold(literal, "NULL") || d.IsCurrentTimestamp(literal) {
		return nil, nil
	}

	text := unquote(stripParens(literal))
	switch f.Type {
	case core.TypeString, core.TypeDefault:
		return text, nil
	case core.TypeBoolean:
		if value, ok := d.BoolLiteral(literal); ok {
			return value, nil
		}
	}
	return conv.ToApplication(f, text)
}

// stripParens removes parentheses wrapping a whole default expression.
func stripParens(s string) string {
	for len(s) >= 2 && s[0] == '(' && s[len(s)-1] == ')' {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

// unquote strips one level of single or double quotes and undoubles the
// embedded quote character.
func unquote(s string) string {
	for _, q := range []string{"'", `"`} {
		if len(s) >= 2 && strings.HasPrefix(s, q) && strings.HasSuffix(s, q) {
			return strings.ReplaceAll(s[1:len(s)-1], q+q, q)
		}
	}
	return s
}
