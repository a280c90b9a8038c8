package core

// StatementKind classifies a SQL statement for dispatch.
type StatementKind int

// StatementKind constants.
const (
	StatementUnknown StatementKind = iota
	StatementSelect
	StatementPragma
	StatementInsert
	StatementUpdate
	StatementDelete
	StatementCreateTable
	StatementDropTable
)

// String returns the statement kind name.
func (k StatementKind) String() string {
	switch k {
	case StatementSelect:
		return "select"
	case StatementPragma:
		return "pragma"
	case StatementInsert:
		return "insert"
	case StatementUpdate:
		return "update"
	case StatementDelete:
		return "delete"
	case StatementCreateTable:
		return "create_table"
	case StatementDropTable:
		return "drop_table"
	default:
		return "unknown"
	}
}

// ParseStatementKind is the inverse of String. Unrecognized names map to StatementUnknown.
func ParseStatementKind(name string) StatementKind {
	for k := StatementSelect; k <= StatementDropTable; k++ {
		if k.String() == name {
			return k
		}
	}
	return StatementUnknown
}

// IsRead reports whether the statement produces rows.
func (k StatementKind) IsRead() bool {
	return k == StatementSelect || k == StatementPragma
}

// Response is the normalized outcome of a dispatched statement.
type Response struct {
	Kind StatementKind

	// Cursor is set for read statements.
	Cursor *Cursor

	// OK is true for every successful statement.
	OK bool
}
