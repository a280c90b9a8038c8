package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/leapstack-labs/leapsqlite/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery_Select(t *testing.T) {
	a := newMemoryAdapter(t)

	resp, err := a.Query(context.Background(), "SELECT 1 + 1 as sum")
	require.NoError(t, err)
	require.NotNil(t, resp.Cursor)
	assert.Equal(t, core.StatementSelect, resp.Kind)
	assert.True(t, resp.OK)

	rows := resp.Cursor.All()
	require.Len(t, rows, 1)
	assert.Equal(t, core.Row{"sum": int64(2)}, rows[0])
}

func TestQuery_ConnectsTransparently(t *testing.T) {
	a := newMemoryAdapter(t)
	require.False(t, a.Connected())

	_, err := a.Query(context.Background(), "SELECT 1")
	require.NoError(t, err)
	assert.True(t, a.Connected())
}

func TestQuery_InsertUpdatesLastInsertID(t *testing.T) {
	a := newMemoryAdapter(t)
	ctx := context.Background()

	_, ok := a.LastInsertID()
	assert.False(t, ok, "undefined before any insert")

	mustExec(t, a, "CREATE TABLE users (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT)")

	ok, err := a.Exec(ctx, "INSERT INTO users (name) VALUES ('alice')")
	require.NoError(t, err)
	assert.True(t, ok)

	id, ok := a.LastInsertID()
	require.True(t, ok)
	assert.Positive(t, id)

	mustExec(t, a, "INSERT INTO users (name) VALUES ('bob')")
	second, _ := a.LastInsertID()
	assert.Greater(t, second, id)

	mustExec(t, a, "UPDATE users SET name = 'carol' WHERE id = 1")
	afterUpdate, _ := a.LastInsertID()
	assert.Equal(t, second, afterUpdate, "only inserts update the id")

	require.NoError(t, a.Disconnect(ctx))
	kept, ok := a.LastInsertID()
	assert.True(t, ok)
	assert.Equal(t, second, kept, "disconnect keeps the last insert id")
}

func TestQuery_BackendErrorTextPreserved(t *testing.T) {
	a := newMemoryAdapter(t)

	resp, err := a.Query(context.Background(), "SELECT * FROM")
	require.Error(t, err)
	assert.Nil(t, resp)

	var qe *core.QueryError
	require.ErrorAs(t, err, &qe)
	assert.Contains(t, qe.Error(), "incomplete input")
	assert.Equal(t, "SELECT * FROM", qe.SQL)
	assert.Equal(t, core.StatementSelect, qe.Kind)
}

func TestQuery_UnsupportedStatement(t *testing.T) {
	supplied := &recordingClient{result: &core.Result{}}
	a := New(core.AdapterConfig{Client: supplied}, nil)

	for _, sql := range []string{"VACUUM", "CREATE INDEX i ON t (x)", "ALTER TABLE t ADD COLUMN y", ""} {
		t.Run(sql, func(t *testing.T) {
			_, err := a.Query(context.Background(), sql)
			var qe *core.QueryError
			require.ErrorAs(t, err, &qe)
			assert.Equal(t, "unsupported statement", qe.Message)
		})
	}
	assert.Empty(t, supplied.Calls(), "unsupported statements never reach the backend")
	assert.False(t, a.Connected(), "unsupported statements do not connect")
}

func TestQuery_Routing(t *testing.T) {
	tests := []struct {
		sql    string
		method string
		read   bool
	}{
		{"SELECT * FROM t", "select", true},
		{"  select 1", "select", true},
		{"PRAGMA table_info(t)", "select", true},
		{"INSERT INTO t VALUES (1)", "insert", false},
		{"UPDATE t SET x = 1", "update", false},
		{"DELETE FROM t", "delete", false},
		{"CREATE TABLE t (x INTEGER)", "create_table", false},
		{"CREATE TEMP TABLE t (x INTEGER)", "create_table", false},
		{"DROP TABLE t", "drop_table", false},
	}

	for _, tt := range tests {
		t.Run(tt.sql, func(t *testing.T) {
			supplied := &recordingClient{result: &core.Result{Columns: []string{"x"}, Rows: [][]any{{int64(1)}}}}
			a := New(core.AdapterConfig{Client: supplied}, nil)

			resp, err := a.Query(context.Background(), tt.sql)
			require.NoError(t, err)
			assert.True(t, resp.OK)
			assert.Equal(t, tt.read, resp.Cursor != nil)
			assert.Equal(t, []call{{Method: tt.method, SQL: tt.sql}}, supplied.Calls())
		})
	}
}

func TestQueryKind_SkipsClassification(t *testing.T) {
	supplied := &recordingClient{result: &core.Result{}}
	a := New(core.AdapterConfig{Client: supplied}, nil)

	resp, err := a.QueryKind(context.Background(), core.StatementInsert, "WITH x AS (SELECT 1) INSERT INTO t SELECT * FROM x")
	require.NoError(t, err)
	assert.Nil(t, resp.Cursor)
	assert.Equal(t, "insert", supplied.Calls()[0].Method)
}

func TestQuery_NilResultIsEmpty(t *testing.T) {
	supplied := &recordingClient{}
	a := New(core.AdapterConfig{Client: supplied}, nil)

	resp, err := a.Query(context.Background(), "SELECT 1")
	require.NoError(t, err)
	assert.False(t, resp.Cursor.Next())
}

func TestQuery_WrapsClientErrors(t *testing.T) {
	backend := errors.New("database is locked")
	supplied := &recordingClient{err: backend}
	a := New(core.AdapterConfig{Client: supplied}, nil)

	_, err := a.Query(context.Background(), "DELETE FROM t")
	var qe *core.QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "database is locked", qe.Error())
	assert.ErrorIs(t, err, backend)
	assert.Equal(t, core.StatementDelete, qe.Kind)
}

func TestExec_ReadStatement(t *testing.T) {
	a := newMemoryAdapter(t)
	ok, err := a.Exec(context.Background(), "SELECT 1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCursor_FromAdapter(t *testing.T) {
	a := newMemoryAdapter(t)
	mustExec(t, a,
		"CREATE TABLE n (v INTEGER)",
		"INSERT INTO n VALUES (1)",
		"INSERT INTO n VALUES (2)",
		"INSERT INTO n VALUES (3)",
	)

	resp, err := a.Query(context.Background(), "SELECT v FROM n ORDER BY v")
	require.NoError(t, err)

	var got []int64
	for row := range resp.Cursor.Rows() {
		got = append(got, row["v"].(int64))
	}
	assert.Equal(t, []int64{1, 2, 3}, got)
	assert.False(t, resp.Cursor.Next(), "cursor is single pass")
}

func TestSources(t *testing.T) {
	a := newMemoryAdapter(t)
	mustExec(t, a,
		"CREATE TABLE zebra (id INTEGER PRIMARY KEY AUTOINCREMENT)",
		"CREATE TABLE apple (id INTEGER)",
		"INSERT INTO zebra DEFAULT VALUES",
	)

	names, err := a.Sources(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"apple", "zebra"}, names, "sqlite_sequence is excluded")
}

func TestTransactions(t *testing.T) {
	a := newMemoryAdapter(t)
	ctx := context.Background()
	mustExec(t, a, "CREATE TABLE t (x INTEGER)")

	require.NoError(t, a.Begin(ctx))
	mustExec(t, a, "INSERT INTO t VALUES (1)")
	require.NoError(t, a.Rollback(ctx))

	require.NoError(t, a.Begin(ctx))
	mustExec(t, a, "INSERT INTO t VALUES (2)")
	require.NoError(t, a.Commit(ctx))

	resp, err := a.Query(ctx, "SELECT x FROM t")
	require.NoError(t, err)
	assert.Equal(t, []core.Row{{"x": int64(2)}}, resp.Cursor.All())

	err = a.Commit(ctx)
	var qe *core.QueryError
	require.ErrorAs(t, err, &qe, "commit without a transaction fails in the backend")
	assert.Equal(t, "COMMIT", qe.SQL)
}

func TestTransactions_NotSupported(t *testing.T) {
	a := New(core.AdapterConfig{Client: &recordingClient{}}, nil)

	err := a.Begin(context.Background())
	var qe *core.QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "transactions are not supported by this client", qe.Message)
}
