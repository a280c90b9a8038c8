package dialect

import (
	"fmt"
	"strings"
	"testing"

	"github.com/leapstack-labs/leapsqlite/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDialect() *Dialect {
	return NewDialect("test").
		Types(core.TypeInteger, "INTEGER", "BIGINT").
		Types(core.TypeString, "VARCHAR", "TEXT").
		Types(core.TypeFloat, "DOUBLE PRECISION").
		CurrentTimestamp("CURRENT_TIMESTAMP", "datetime('now')").
		BoolLiterals([]string{"1", "TRUE"}, []string{"0", "FALSE"}).
		WithReservedWords("select", "order").
		Build()
}

func TestQuote(t *testing.T) {
	tests := []struct {
		name     string
		quote    [3]string
		ident    string
		expected string
	}{
		{"double quotes", [3]string{`"`, `"`, `""`}, "users", `"users"`},
		{"embedded double quote", [3]string{`"`, `"`, `""`}, `we"ird`, `"we""ird"`},
		{"brackets", [3]string{"[", "]", "]]"}, "a]b", "[a]]b]"},
		{"backticks", [3]string{"`", "`", "``"}, "col", "`col`"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDialect("test").Identifiers(tt.quote[0], tt.quote[1], tt.quote[2]).Build()
			assert.Equal(t, tt.expected, d.Quote(tt.ident))
		})
	}
}

func TestQuoteIfNeeded(t *testing.T) {
	d := testDialect()

	assert.Equal(t, "users", d.QuoteIfNeeded("users"))
	assert.Equal(t, `"order"`, d.QuoteIfNeeded("ORDER"))
	assert.Equal(t, `"first name"`, d.QuoteIfNeeded("first name"))
	assert.Equal(t, `"1col"`, d.QuoteIfNeeded("1col"))
	assert.Equal(t, `""`, d.QuoteIfNeeded(""))
}

func TestTypeOf(t *testing.T) {
	d := testDialect()

	tests := []struct {
		native string
		want   core.LogicalType
	}{
		{"INTEGER", core.TypeInteger},
		{"integer", core.TypeInteger}, // case insensitive
		{"varchar", core.TypeString},
		{"double  precision", core.TypeFloat}, // inner whitespace collapsed
		{"BLOB", core.TypeDefault},
		{"", core.TypeDefault},
	}

	for _, tt := range tests {
		t.Run(tt.native, func(t *testing.T) {
			assert.Equal(t, tt.want, d.TypeOf(tt.native))
			assert.Equal(t, tt.want, d.Mapped(core.Field{Use: tt.native}))
		})
	}
}

func TestAffinityFallback(t *testing.T) {
	d := NewDialect("test").
		Types(core.TypeString, "TEXT").
		Affinity(func(native string) core.LogicalType {
			if strings.Contains(native, "INT") {
				return core.TypeInteger
			}
			return core.TypeDecimal
		}).
		Build()

	assert.Equal(t, core.TypeString, d.TypeOf("text"))
	assert.Equal(t, core.TypeInteger, d.TypeOf("mediumint"))
	assert.Equal(t, core.TypeDecimal, d.TypeOf("money"))
}

func TestDataTypes(t *testing.T) {
	d := testDialect()
	assert.Equal(t, []string{"BIGINT", "DOUBLE PRECISION", "INTEGER", "TEXT", "VARCHAR"}, d.DataTypes())
}

func TestIsCurrentTimestamp(t *testing.T) {
	d := testDialect()

	tests := []struct {
		literal string
		want    bool
	}{
		{"CURRENT_TIMESTAMP", true},
		{"current_timestamp", true},
		{"(CURRENT_TIMESTAMP)", true},
		{"datetime('now')", true},
		{"DATETIME( 'now' )", true},
		{"'2024-01-01'", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.literal, func(t *testing.T) {
			assert.Equal(t, tt.want, d.IsCurrentTimestamp(tt.literal))
		})
	}
}

func TestBoolLiteral(t *testing.T) {
	d := testDialect()

	tests := []struct {
		literal string
		value   bool
		ok      bool
	}{
		{"1", true, true},
		{"true", true, true},
		{"'TRUE'", true, true},
		{"0", false, true},
		{"False", false, true},
		{"yes", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.literal, func(t *testing.T) {
			value, ok := d.BoolLiteral(tt.literal)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.value, value)
		})
	}
}

type fakeConverter struct{}

func (fakeConverter) ToDatasource(f core.Field, v any) (string, error) {
	if v == nil {
		return "NULL", nil
	}
	return fmt.Sprintf("<%s:%v>", f.Type, v), nil
}

func TestFormatter(t *testing.T) {
	d := testDialect()
	f := NewFormatter(d, fakeConverter{})
	assert.Equal(t, `"users"`, f.Quote("users"))

	got, err := f.Value(42, core.Field{Type: core.TypeInteger})
	require.NoError(t, err)
	assert.Equal(t, "<integer:42>", got)

	got, err = f.Value(nil, core.Field{Type: core.TypeString})
	require.NoError(t, err)
	assert.Equal(t, "NULL", got)
}

func TestRegistry(t *testing.T) {
	Register(NewDialect("Test_Registry").Build())

	d, ok := Get("test_registry")
	require.True(t, ok, "lookup should be case insensitive")
	assert.Equal(t, "Test_Registry", d.Name)
	assert.Contains(t, List(), "test_registry")

	_, ok = Get("missing_dialect")
	assert.False(t, ok)
}
