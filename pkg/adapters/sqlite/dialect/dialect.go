// Package dialect provides the SQLite SQL dialect definition.
// This package is lightweight and has no database driver dependencies,
// making it suitable for tools that need dialect information without
// opening a connection.
package dialect

import (
	"strings"

	"github.com/leapstack-labs/leapsqlite/pkg/core"
	"github.com/leapstack-labs/leapsqlite/pkg/dialect"
)

// Name is the registry name of the SQLite dialect.
const Name = core.DefaultDialect

func init() {
	dialect.Register(SQLite)
}

// SQLite is the SQLite dialect configuration.
var SQLite = dialect.NewDialect(Name).
	Identifiers(`"`, `"`, `""`).
	Types(core.TypeInteger,
		"INTEGER", "INT", "TINYINT", "SMALLINT", "MEDIUMINT", "BIGINT",
		"UNSIGNED BIG INT", "INT2", "INT8",
	).
	Types(core.TypeSerial, "SERIAL", "BIGSERIAL", "SMALLSERIAL").
	Types(core.TypeFloat, "REAL", "FLOAT", "DOUBLE", "DOUBLE PRECISION").
	Types(core.TypeDecimal, "NUMERIC", "DECIMAL").
	Types(core.TypeBoolean, "BOOLEAN", "BOOL").
	Types(core.TypeDate, "DATE").
	Types(core.TypeDateTime, "DATETIME", "TIMESTAMP").
	Types(core.TypeString,
		"VARCHAR", "CHAR", "CHARACTER", "VARYING CHARACTER", "NCHAR",
		"NATIVE CHARACTER", "NVARCHAR", "TEXT", "CLOB", "STRING",
	).
	Affinity(affinity).
	CurrentTimestamp(
		"CURRENT_TIMESTAMP", "CURRENT_DATE", "CURRENT_TIME",
		"datetime('now')", "date('now')", "time('now')",
		"datetime('now','localtime')", "strftime('%s','now')",
	).
	BoolLiterals(
		[]string{"1", "TRUE", "'t'", "'true'"},
		[]string{"0", "FALSE", "'f'", "'false'"},
	).
	WithReservedWords(
		"abort", "action", "add", "after", "all", "alter", "analyze", "and",
		"as", "asc", "attach", "autoincrement", "before", "begin", "between",
		"by", "cascade", "case", "cast", "check", "collate", "column", "commit",
		"conflict", "constraint", "create", "cross", "current_date",
		"current_time", "current_timestamp", "database", "default",
		"deferrable", "deferred", "delete", "desc", "detach", "distinct",
		"drop", "each", "else", "end", "escape", "except", "exclusive",
		"exists", "explain", "fail", "for", "foreign", "from", "full", "glob",
		"group", "having", "if", "ignore", "immediate", "in", "index",
		"indexed", "initially", "inner", "insert", "instead", "intersect",
		"into", "is", "isnull", "join", "key", "left", "like", "limit",
		"match", "natural", "no", "not", "notnull", "null", "of", "offset",
		"on", "or", "order", "outer", "plan", "pragma", "primary", "query",
		"raise", "recursive", "references", "regexp", "reindex", "release",
		"rename", "replace", "restrict", "right", "rollback", "row",
		"savepoint", "select", "set", "table", "temp", "temporary", "then",
		"to", "transaction", "trigger", "union", "unique", "update", "using",
		"vacuum", "values", "view", "virtual", "when", "where", "with",
		"without",
	).
	Build()

// affinity applies SQLite's column affinity rules to types missing from
// the type map. Names arrive upper-cased.
func affinity(native string) core.LogicalType {
	switch {
	case native == "":
		return core.TypeDefault
	case strings.Contains(native, "INT"):
		return core.TypeInteger
	case strings.Contains(native, "CHAR"), strings.Contains(native, "CLOB"), strings.Contains(native, "TEXT"):
		return core.TypeString
	case strings.Contains(native, "BLOB"):
		return core.TypeDefault
	case strings.Contains(native, "REAL"), strings.Contains(native, "FLOA"), strings.Contains(native, "DOUB"):
		return core.TypeFloat
	default:
		return core.TypeDefault
	}
}
