package remote

import (
	"encoding/json"
	"io"
)

// Protocol routes, relative to the store URL.
const (
	SessionsPath   = "/v1/sessions"
	StatementsPath = "/statements"
)

// SessionRequest opens a session on a database.
type SessionRequest struct {
	Database string `json:"database"`
	Mode     string `json:"mode,omitempty"`
}

// SessionResponse carries the id of a new session.
type SessionResponse struct {
	Session string `json:"session"`
}

// StatementRequest runs one statement of the given kind.
type StatementRequest struct {
	Kind string `json:"kind"`
	SQL  string `json:"sql"`
}

// StatementResponse is the outcome of a statement. Error is set, and the
// other fields are empty, when the statement failed.
type StatementResponse struct {
	Columns         []string `json:"columns,omitempty"`
	Rows            [][]any  `json:"rows,omitempty"`
	LastInsertID    int64    `json:"last_insert_id,omitempty"`
	HasLastInsertID bool     `json:"has_last_insert_id,omitempty"`
	RowsAffected    int64    `json:"rows_affected,omitempty"`
	Error           string   `json:"error,omitempty"`
}

// DecodeJSON decodes r into v keeping numbers as json.Number.
func DecodeJSON(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return dec.Decode(v)
}

// NormalizeRows converts json.Number cells into int64 or float64 in place.
func NormalizeRows(rows [][]any) {
	for _, row := range rows {
		for i, cell := range row {
			row[i] = normalizeValue(cell)
		}
	}
}

func normalizeValue(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
