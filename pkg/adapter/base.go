package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapsqlite/pkg/core"
)

// errNotConnected is returned when a statement runs before a session is open.
var errNotConnected = fmt.Errorf("database connection not established")

// BaseSQLClient provides common database/sql functionality for clients.
// Embed this struct in concrete clients to get standard Close, Query, Exec
// and transaction implementations.
type BaseSQLClient struct {
	DB     *sql.DB
	Logger *slog.Logger
}

// Close closes the database connection.
func (b *BaseSQLClient) Close() error {
	if b.IsConnected() {
		if b.Logger != nil {
			b.Logger.Debug("closing database connection")
		}
		return b.DB.Close()
	}
	return nil
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLClient) IsConnected() bool {
	return b.DB != nil
}

// Query executes a statement that returns rows and materializes them.
// Backend errors are returned unwrapped so their text reaches the caller verbatim.
func (b *BaseSQLClient) Query(ctx context.Context, sqlStr string) (*core.Result, error) {
	if !b.IsConnected() {
		return nil, errNotConnected
	}
	rows, err := b.DB.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &core.Result{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Exec executes a statement that doesn't return rows.
// The last insert id is reported when the driver provides one.
func (b *BaseSQLClient) Exec(ctx context.Context, sqlStr string) (*core.Result, error) {
	if !b.IsConnected() {
		return nil, errNotConnected
	}
	res, err := b.DB.ExecContext(ctx, sqlStr)
	if err != nil {
		return nil, err
	}

	result := &core.Result{}
	if id, err := res.LastInsertId(); err == nil {
		result.LastInsertID = id
		result.HasLastInsertID = true
	}
	if n, err := res.RowsAffected(); err == nil {
		result.RowsAffected = n
	}
	return result, nil
}

// Begin starts a transaction on the session.
func (b *BaseSQLClient) Begin(ctx context.Context) error {
	return b.control(ctx, "BEGIN")
}

// Commit commits the open transaction.
func (b *BaseSQLClient) Commit(ctx context.Context) error {
	return b.control(ctx, "COMMIT")
}

// Rollback rolls back the open transaction.
func (b *BaseSQLClient) Rollback(ctx context.Context) error {
	return b.control(ctx, "ROLLBACK")
}

// control runs a transaction statement. It relies on the pool holding a
// single connection so the statements share one session.
func (b *BaseSQLClient) control(ctx context.Context, stmt string) error {
	if !b.IsConnected() {
		return errNotConnected
	}
	if b.Logger != nil {
		b.Logger.Debug("transaction control", "statement", stmt)
	}
	if _, err := b.DB.ExecContext(ctx, stmt); err != nil {
		return err
	}
	return nil
}
