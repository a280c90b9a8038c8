package sqlite

import (
	"context"
	"sort"

	"github.com/leapstack-labs/leapsqlite/pkg/core"
)

const (
	errUnsupportedStatement = "unsupported statement"
	errNoTransactions       = "transactions are not supported by this client"
)

// sourcesQuery lists user tables; SQLite's internal tables are excluded.
const sourcesQuery = `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`

// Query classifies sql by its leading keyword and runs it.
func (a *Adapter) Query(ctx context.Context, sql string) (*core.Response, error) {
	return a.QueryKind(ctx, Classify(sql), sql)
}

// QueryKind runs sql as the given kind without classifying it. Read kinds
// produce a cursor; every other kind reports OK.
func (a *Adapter) QueryKind(ctx context.Context, kind core.StatementKind, sql string) (*core.Response, error) {
	if kind == core.StatementUnknown {
		return nil, &core.QueryError{Message: errUnsupportedStatement, SQL: sql, Kind: kind}
	}

	client, err := a.Connect(ctx)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("dispatching statement", "kind", kind.String(), "sql", sql)

	var res *core.Result
	switch kind {
	case core.StatementSelect, core.StatementPragma:
		res, err = client.Select(ctx, sql)
	case core.StatementInsert:
		res, err = client.Insert(ctx, sql)
	case core.StatementUpdate:
		res, err = client.Update(ctx, sql)
	case core.StatementDelete:
		res, err = client.Delete(ctx, sql)
	case core.StatementCreateTable:
		res, err = client.CreateTable(ctx, sql)
	case core.StatementDropTable:
		res, err = client.DropTable(ctx, sql)
	default:
		return nil, &core.QueryError{Message: errUnsupportedStatement, SQL: sql, Kind: kind}
	}
	if err != nil {
		a.logger.Debug("statement failed", "kind", kind.String(), "error", err)
		return nil, core.NewQueryError(kind, sql, err)
	}
	if res == nil {
		res = &core.Result{}
	}

	if kind == core.StatementInsert && res.HasLastInsertID {
		a.setLastInsertID(res.LastInsertID)
	}

	if kind.IsRead() {
		return &core.Response{Kind: kind, Cursor: core.NewCursor(res.Columns, res.Rows), OK: true}, nil
	}
	return &core.Response{Kind: kind, OK: true}, nil
}

// Exec runs sql and reports success. Rows from read statements are discarded.
func (a *Adapter) Exec(ctx context.Context, sql string) (bool, error) {
	resp, err := a.Query(ctx, sql)
	if err != nil {
		return false, err
	}
	if resp.Cursor != nil {
		resp.Cursor.Close()
	}
	return resp.OK, nil
}

// Sources returns the names of user tables, sorted.
func (a *Adapter) Sources(ctx context.Context) ([]string, error) {
	resp, err := a.QueryKind(ctx, core.StatementSelect, sourcesQuery)
	if err != nil {
		return nil, err
	}
	defer resp.Cursor.Close()

	var names []string
	for resp.Cursor.Next() {
		name, err := textValue(resp.Cursor.Row(), "name")
		if err != nil {
			return nil, &core.QueryError{Message: err.Error(), SQL: sourcesQuery, Kind: core.StatementSelect, Err: err}
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Begin starts a transaction on the session.
func (a *Adapter) Begin(ctx context.Context) error {
	return a.transaction(ctx, "BEGIN", core.Transactor.Begin)
}

// Commit commits the open transaction.
func (a *Adapter) Commit(ctx context.Context) error {
	return a.transaction(ctx, "COMMIT", core.Transactor.Commit)
}

// Rollback rolls back the open transaction.
func (a *Adapter) Rollback(ctx context.Context) error {
	return a.transaction(ctx, "ROLLBACK", core.Transactor.Rollback)
}

func (a *Adapter) transaction(ctx context.Context, stmt string, op func(core.Transactor, context.Context) error) error {
	client, err := a.Connect(ctx)
	if err != nil {
		return err
	}
	tx, ok := client.(core.Transactor)
	if !ok {
		return &core.QueryError{Message: errNoTransactions, SQL: stmt}
	}
	if err := op(tx, ctx); err != nil {
		return core.NewQueryError(core.StatementUnknown, stmt, err)
	}
	return nil
}
