// Package embedded provides the in-process SQLite driver for leapsqlite.
//
// Sessions run on database/sql with modernc.org/sqlite by default, or
// github.com/mattn/go-sqlite3 when built with the cgo_sqlite tag.
// Import this package with a blank identifier to register the driver:
//
//	import _ "github.com/leapstack-labs/leapsqlite/pkg/clients/embedded"
package embedded

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/leapstack-labs/leapsqlite/pkg/adapter"
	"github.com/leapstack-labs/leapsqlite/pkg/core"
)

// features are the capabilities of an embedded session.
var features = core.Features{
	Arrays:       false,
	Transactions: true,
	Savepoints:   true,
	Booleans:     false,
}

// Client is a session on an embedded SQLite database.
type Client struct {
	adapter.BaseSQLClient
}

// New wraps an open *sql.DB as a client.
// If logger is nil, a discard logger is used.
func New(db *sql.DB, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		BaseSQLClient: adapter.BaseSQLClient{DB: db, Logger: logger},
	}
}

// DB returns the underlying database handle.
func (c *Client) DB() *sql.DB {
	return c.BaseSQLClient.DB
}

// Features reports the capabilities of the session.
func (c *Client) Features() core.Features {
	return features
}

// Select runs a read statement.
func (c *Client) Select(ctx context.Context, query string) (*core.Result, error) {
	return c.Query(ctx, query)
}

// Insert runs an INSERT statement.
func (c *Client) Insert(ctx context.Context, query string) (*core.Result, error) {
	return c.Exec(ctx, query)
}

// Update runs an UPDATE statement.
func (c *Client) Update(ctx context.Context, query string) (*core.Result, error) {
	return c.Exec(ctx, query)
}

// Delete runs a DELETE statement.
func (c *Client) Delete(ctx context.Context, query string) (*core.Result, error) {
	return c.Exec(ctx, query)
}

// CreateTable runs a CREATE TABLE statement.
func (c *Client) CreateTable(ctx context.Context, query string) (*core.Result, error) {
	return c.Exec(ctx, query)
}

// DropTable runs a DROP TABLE statement.
func (c *Client) DropTable(ctx context.Context, query string) (*core.Result, error) {
	return c.Exec(ctx, query)
}

// Ensure Client implements the client interfaces
var (
	_ core.Client          = (*Client)(nil)
	_ core.Transactor      = (*Client)(nil)
	_ core.FeatureReporter = (*Client)(nil)
)
