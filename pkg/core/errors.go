package core

import "errors"

// ErrInvalidValue is wrapped by conversion errors for values that cannot be
// represented in the requested logical type.
var ErrInvalidValue = errors.New("invalid value")

// ConfigurationError reports missing or invalid connection parameters.
// It is raised before any I/O and is not worth retrying.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// ConnectionError reports that the backend refused or failed to open a session.
// Its message is the backend's own text.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	if e.Err == nil {
		return "connection failed"
	}
	return e.Err.Error()
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// QueryError reports a failed statement. Message carries the backend's
// error text unmodified; callers match on it.
type QueryError struct {
	Message string
	SQL     string
	Kind    StatementKind
	Err     error
}

func (e *QueryError) Error() string {
	return e.Message
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// NewQueryError wraps a backend error, keeping its text verbatim.
func NewQueryError(kind StatementKind, sql string, err error) *QueryError {
	var qe *QueryError
	if errors.As(err, &qe) {
		return &QueryError{Message: qe.Message, SQL: sql, Kind: kind, Err: err}
	}
	return &QueryError{Message: err.Error(), SQL: sql, Kind: kind, Err: err}
}
