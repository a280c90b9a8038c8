package sqlite

import (
	"context"
	"testing"

	"github.com/leapstack-labs/leapsqlite/pkg/core"
	"github.com/leapstack-labs/leapsqlite/pkg/dialect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	a := newMemoryAdapter(t)
	mustExec(t, a, `CREATE TABLE people (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name VARCHAR(128) DEFAULT 'Johnny Boy',
		active BOOLEAN DEFAULT 1
	)`)

	schema, err := a.Describe(context.Background(), "people")
	require.NoError(t, err)
	assert.Equal(t, "people", schema.Name)

	want := []core.Field{
		{Name: "id", Type: core.TypeSerial, Use: "integer", Nullable: true, PrimaryKey: true},
		{Name: "name", Type: core.TypeString, Use: "varchar", Length: intPtr(128), Nullable: true, Default: "Johnny Boy"},
		{Name: "active", Type: core.TypeBoolean, Use: "boolean", Nullable: true, Default: true},
	}
	assert.Equal(t, want, schema.Fields)
}

func TestDescribe_DeclaredTypeNames(t *testing.T) {
	a := newMemoryAdapter(t)
	mustExec(t, a, `CREATE TABLE p (id serial, name string(128) default 'Johnny Boy', active boolean default true)`)

	schema, err := a.Describe(context.Background(), "p")
	require.NoError(t, err)

	want := []core.Field{
		{Name: "id", Type: core.TypeSerial, Use: "serial", Nullable: true},
		{Name: "name", Type: core.TypeString, Use: "string", Length: intPtr(128), Nullable: true, Default: "Johnny Boy"},
		{Name: "active", Type: core.TypeBoolean, Use: "boolean", Nullable: true, Default: true},
	}
	assert.Equal(t, want, schema.Fields)
}

func TestFields_Defaults(t *testing.T) {
	a := newMemoryAdapter(t)
	mustExec(t, a, `CREATE TABLE events (
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		day DATE DEFAULT (date('now')),
		stamp TIMESTAMP DEFAULT (datetime('now', 'localtime')),
		epoch INTEGER DEFAULT (strftime('%s', 'now')),
		launched DATE DEFAULT '2024-01-02',
		score REAL DEFAULT 1.5,
		amount DECIMAL(8, 2) DEFAULT 10,
		off BOOLEAN DEFAULT 'false',
		agreed BOOLEAN DEFAULT 'yes',
		retries INTEGER DEFAULT (3),
		quoted TEXT DEFAULT 'it''s',
		empty_text TEXT DEFAULT NULL,
		required TEXT NOT NULL,
		blob_col BLOB
	)`)

	fields, err := a.Fields(context.Background(), "events")
	require.NoError(t, err)
	require.Len(t, fields, 14)

	byName := make(map[string]core.Field, len(fields))
	for _, f := range fields {
		byName[f.Name] = f
	}

	tests := []struct {
		column      string
		wantType    core.LogicalType
		wantDefault any
	}{
		{"created_at", core.TypeDateTime, nil},
		{"day", core.TypeDate, nil},
		{"stamp", core.TypeDateTime, nil},
		{"epoch", core.TypeInteger, nil},
		{"launched", core.TypeDate, mustDate(t, "2024-01-02")},
		{"score", core.TypeFloat, 1.5},
		{"amount", core.TypeDecimal, "10.00"},
		{"off", core.TypeBoolean, false},
		{"agreed", core.TypeBoolean, true},
		{"retries", core.TypeInteger, int64(3)},
		{"quoted", core.TypeString, "it's"},
		{"empty_text", core.TypeString, nil},
		{"blob_col", core.TypeDefault, nil},
	}

	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			f, ok := byName[tt.column]
			require.True(t, ok)
			assert.Equal(t, tt.wantType, f.Type)
			assert.Equal(t, tt.wantDefault, f.Default)
		})
	}

	assert.False(t, byName["required"].Nullable)
	assert.True(t, byName["quoted"].Nullable)
	assert.Equal(t, intPtr(8), byName["amount"].Length)
	assert.Equal(t, intPtr(2), byName["amount"].Precision)
}

func TestFields_InvalidDefault(t *testing.T) {
	tests := []struct {
		name string
		ddl  string
	}{
		{"unknown boolean spelling", `CREATE TABLE t (flag BOOLEAN DEFAULT 'maybe')`},
		{"text on integer", `CREATE TABLE t (n INTEGER DEFAULT 'abc')`},
		{"text on date", `CREATE TABLE t (d DATE DEFAULT 'someday')`},
		{"expression", `CREATE TABLE t (n INTEGER DEFAULT (1 + 1))`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newMemoryAdapter(t)
			mustExec(t, a, tt.ddl)

			_, err := a.Fields(context.Background(), "t")
			var qe *core.QueryError
			require.ErrorAs(t, err, &qe)
			assert.Contains(t, qe.Message, "invalid default")
			assert.ErrorIs(t, err, core.ErrInvalidValue)
		})
	}
}

func TestNormalizeDefault(t *testing.T) {
	d, ok := dialect.Get("sqlite")
	require.True(t, ok)

	tests := []struct {
		name  string
		field core.Field
		raw   any
		want  any
	}{
		{"nil", core.Field{Type: core.TypeString}, nil, nil},
		{"null literal", core.Field{Type: core.TypeInteger}, "NULL", nil},
		{"single quoted", core.Field{Type: core.TypeString}, `'it''s'`, "it's"},
		{"double quoted", core.Field{Type: core.TypeString}, `"x"`, "x"},
		{"double quoted with escapes", core.Field{Type: core.TypeString}, `"say ""hi"""`, `say "hi"`},
		{"parenthesized string", core.Field{Type: core.TypeString}, `('boxed')`, "boxed"},
		{"parenthesized integer", core.Field{Type: core.TypeInteger}, "(42)", int64(42)},
		{"integer value", core.Field{Type: core.TypeInteger}, int64(7), int64(7)},
		{"dialect true", core.Field{Type: core.TypeBoolean}, "TRUE", true},
		{"converter yes", core.Field{Type: core.TypeBoolean}, "'yes'", true},
		{"converter off", core.Field{Type: core.TypeBoolean}, "'off'", false},
		{"current timestamp", core.Field{Type: core.TypeDateTime}, "CURRENT_TIMESTAMP", nil},
		{"bytes", core.Field{Type: core.TypeString}, []byte("'raw'"), "raw"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeDefault(d, Converter{}, tt.field, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("unconvertible", func(t *testing.T) {
		_, err := normalizeDefault(d, Converter{}, core.Field{Name: "flag", Type: core.TypeBoolean}, "'maybe'")
		assert.ErrorIs(t, err, core.ErrInvalidValue)
	})
}

func TestFields_NoSuchTable(t *testing.T) {
	a := newMemoryAdapter(t)

	_, err := a.Fields(context.Background(), "ghost")
	var qe *core.QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "no such table: ghost", qe.Message)
}

func TestFields_QuotesTableName(t *testing.T) {
	a := newMemoryAdapter(t)
	mustExec(t, a, `CREATE TABLE "odd ""name""" (x INTEGER)`)

	fields, err := a.Fields(context.Background(), `odd "name"`)
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "x", fields[0].Name)
}

func TestFields_StatementPerClient(t *testing.T) {
	tableInfo := &core.Result{
		Columns: []string{"cid", "name", "type", "notnull", "dflt_value", "pk"},
		Rows:    [][]any{{int64(0), "id", "INTEGER", int64(1), nil, int64(1)}},
	}

	t.Run("pragma", func(t *testing.T) {
		supplied := &recordingClient{result: tableInfo}
		a := New(core.AdapterConfig{Client: supplied}, nil)

		fields, err := a.Fields(context.Background(), "t")
		require.NoError(t, err)
		assert.Equal(t, []core.Field{{Name: "id", Type: core.TypeSerial, Use: "integer", PrimaryKey: true}}, fields)
		assert.Equal(t, []call{{Method: "select", SQL: `PRAGMA table_info("t")`}}, supplied.Calls())
	})

	t.Run("table-valued function", func(t *testing.T) {
		d := &countingDriver{pragma: false}
		a := New(core.AdapterConfig{Driver: registerDriver(t, d), Database: "x"}, nil)

		_, err := a.Fields(context.Background(), "it's")
		var qe *core.QueryError
		require.ErrorAs(t, err, &qe, "the counting driver returns no rows")
		assert.Equal(t, core.StatementSelect, qe.Kind)
		assert.Equal(t,
			`SELECT cid, name, type, "notnull", dflt_value, pk FROM pragma_table_info('it''s') ORDER BY cid`,
			qe.SQL)
	})
}

func TestFields_InvalidRows(t *testing.T) {
	tests := []struct {
		name string
		row  []any
	}{
		{"bad type declaration", []any{int64(0), "x", "VARCHAR(", int64(0), nil, int64(0)}},
		{"non-text name", []any{int64(0), 3.5, "TEXT", int64(0), nil, int64(0)}},
		{"non-integer pk", []any{int64(0), "x", "TEXT", int64(0), nil, "yes"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			supplied := &recordingClient{result: &core.Result{
				Columns: []string{"cid", "name", "type", "notnull", "dflt_value", "pk"},
				Rows:    [][]any{tt.row},
			}}
			a := New(core.AdapterConfig{Client: supplied}, nil)

			_, err := a.Fields(context.Background(), "t")
			var qe *core.QueryError
			assert.ErrorAs(t, err, &qe)
		})
	}
}

func TestDescribe_KnownFieldsSkipIntrospection(t *testing.T) {
	d := &countingDriver{}
	a := New(core.AdapterConfig{Driver: registerDriver(t, d), Database: "x"}, nil)

	known := []core.Field{{Name: "id", Type: core.TypeSerial}, {Name: "label", Type: core.TypeString}}
	schema, err := a.Describe(context.Background(), "things", known...)
	require.NoError(t, err)

	assert.Equal(t, &core.Schema{Name: "things", Fields: known}, schema)
	assert.Zero(t, d.opens.Load(), "no connection is opened")
	assert.False(t, a.Connected())
}

func mustDate(t *testing.T, s string) any {
	t.Helper()
	v, err := Converter{}.ToApplication(core.Field{Type: core.TypeDate}, s)
	require.NoError(t, err)
	return v
}
