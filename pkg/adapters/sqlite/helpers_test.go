package sqlite

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/leapstack-labs/leapsqlite/internal/testutil"
	"github.com/leapstack-labs/leapsqlite/pkg/adapter"
	"github.com/leapstack-labs/leapsqlite/pkg/core"
	"github.com/stretchr/testify/require"
)

// call is one statement seen by a recordingClient.
type call struct {
	Method string
	SQL    string
}

// recordingClient is a core.Client that records every statement and
// returns canned results.
type recordingClient struct {
	mu      sync.Mutex
	calls   []call
	result  *core.Result
	err     error
	closed  int
	closeFn func() error
}

func (c *recordingClient) record(method, sql string) (*core.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, call{Method: method, SQL: sql})
	if c.err != nil {
		return nil, c.err
	}
	return c.result, nil
}

func (c *recordingClient) Select(_ context.Context, sql string) (*core.Result, error) {
	return c.record("select", sql)
}

func (c *recordingClient) Insert(_ context.Context, sql string) (*core.Result, error) {
	return c.record("insert", sql)
}

func (c *recordingClient) Update(_ context.Context, sql string) (*core.Result, error) {
	return c.record("update", sql)
}

func (c *recordingClient) Delete(_ context.Context, sql string) (*core.Result, error) {
	return c.record("delete", sql)
}

func (c *recordingClient) CreateTable(_ context.Context, sql string) (*core.Result, error) {
	return c.record("create_table", sql)
}

func (c *recordingClient) DropTable(_ context.Context, sql string) (*core.Result, error) {
	return c.record("drop_table", sql)
}

func (c *recordingClient) Close() error {
	c.mu.Lock()
	c.closed++
	c.mu.Unlock()
	if c.closeFn != nil {
		return c.closeFn()
	}
	return nil
}

func (c *recordingClient) Calls() []call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]call(nil), c.calls...)
}

// countingDriver opens recordingClients and counts the opens. When gate is
// set, Open blocks until it is closed. The first failures opens fail.
type countingDriver struct {
	opens    atomic.Int32
	last     atomic.Pointer[recordingClient]
	gate     chan struct{}
	failures int32
	features core.Features
	pragma   bool
}

var errOpenFailed = errors.New("unable to open database file")

func (d *countingDriver) Open(ctx context.Context, _ adapter.Config) (core.Client, error) {
	n := d.opens.Add(1)
	if d.gate != nil {
		select {
		case <-d.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if n <= d.failures {
		return nil, errOpenFailed
	}
	c := &recordingClient{result: &core.Result{}}
	d.last.Store(c)
	return c, nil
}

func (d *countingDriver) Features() core.Features    { return d.features }
func (d *countingDriver) IntrospectWithPragma() bool { return d.pragma }

// registerDriver registers d under a name unique to the test.
func registerDriver(t *testing.T, d adapter.Driver) string {
	t.Helper()
	name := "test-" + t.Name()
	adapter.Register(name, func(*slog.Logger) adapter.Driver { return d })
	return name
}

// newMemoryAdapter returns an adapter on a fresh in-memory embedded database.
func newMemoryAdapter(t *testing.T) *Adapter {
	t.Helper()
	a := New(core.AdapterConfig{Database: ":memory:"}, testutil.NewTestLogger(t))
	t.Cleanup(func() { _ = a.Disconnect(context.Background()) })
	return a
}

// mustExec runs statements on a, failing the test on error.
func mustExec(t *testing.T, a *Adapter, stmts ...string) {
	t.Helper()
	for _, stmt := range stmts {
		ok, err := a.Exec(context.Background(), stmt)
		require.NoError(t, err, stmt)
		require.True(t, ok, stmt)
	}
}
