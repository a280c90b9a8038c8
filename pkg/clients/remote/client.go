// Package remote provides the HTTP driver for leapsqlite.
//
// A remote store exposes SQLite sessions over a small JSON protocol (see
// protocol.go). Sessions are select-only for introspection and do not
// support transactions. Import this package with a blank identifier to
// register the driver:
//
//	import _ "github.com/leapstack-labs/leapsqlite/pkg/clients/remote"
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"golang.org/x/time/rate"

	"github.com/leapstack-labs/leapsqlite/pkg/core"
)

// Client is a session on a remote store.
type Client struct {
	http    *http.Client
	base    string
	session string
	limiter *rate.Limiter
	logger  *slog.Logger

	mu     sync.Mutex
	closed bool
}

// Features reports the capabilities of a remote session.
func (c *Client) Features() core.Features {
	return core.Features{}
}

// IntrospectWithPragma reports that remote sessions are introspected with
// the pragma_table_info function.
func (c *Client) IntrospectWithPragma() bool {
	return false
}

// Session returns the session id assigned by the store.
func (c *Client) Session() string {
	return c.session
}

// Select runs a read statement.
func (c *Client) Select(ctx context.Context, query string) (*core.Result, error) {
	return c.statement(ctx, core.StatementSelect, query)
}

// Insert runs an INSERT statement.
func (c *Client) Insert(ctx context.Context, query string) (*core.Result, error) {
	return c.statement(ctx, core.StatementInsert, query)
}

// Update runs an UPDATE statement.
func (c *Client) Update(ctx context.Context, query string) (*core.Result, error) {
	return c.statement(ctx, core.StatementUpdate, query)
}

// Delete runs a DELETE statement.
func (c *Client) Delete(ctx context.Context, query string) (*core.Result, error) {
	return c.statement(ctx, core.StatementDelete, query)
}

// CreateTable runs a CREATE TABLE statement.
func (c *Client) CreateTable(ctx context.Context, query string) (*core.Result, error) {
	return c.statement(ctx, core.StatementCreateTable, query)
}

// DropTable runs a DROP TABLE statement.
func (c *Client) DropTable(ctx context.Context, query string) (*core.Result, error) {
	return c.statement(ctx, core.StatementDropTable, query)
}

// Close ends the session on the store. Closing twice is a no-op.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.logger.Debug("closing remote session", "session", c.session)
	var out StatementResponse
	return c.do(context.Background(), http.MethodDelete, c.sessionURL(), nil, &out)
}

func (c *Client) statement(ctx context.Context, kind core.StatementKind, query string) (*core.Result, error) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return nil, errors.New("remote session is closed")
	}

	var out StatementResponse
	req := StatementRequest{Kind: kind.String(), SQL: query}
	if err := c.do(ctx, http.MethodPost, c.sessionURL()+StatementsPath, req, &out); err != nil {
		return nil, err
	}
	NormalizeRows(out.Rows)
	return &core.Result{
		Columns:         out.Columns,
		Rows:            out.Rows,
		LastInsertID:    out.LastInsertID,
		HasLastInsertID: out.HasLastInsertID,
		RowsAffected:    out.RowsAffected,
	}, nil
}

func (c *Client) sessionURL() string {
	return c.base + SessionsPath + "/" + url.PathEscape(c.session)
}

// do sends one request. A response carrying {"error": ...} is returned as
// an error with that text unchanged.
func (c *Client) do(ctx context.Context, method, target string, body, out any) error {
	return doJSON(ctx, c.http, c.limiter, method, target, body, out)
}

func doJSON(ctx context.Context, hc *http.Client, limiter *rate.Limiter, method, target string, body, out any) error {
	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	var envelope struct {
		Error string `json:"error"`
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if len(bytes.TrimSpace(raw)) > 0 {
		_ = json.Unmarshal(raw, &envelope)
	}
	if envelope.Error != "" {
		return errors.New(envelope.Error)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("remote store returned %s", resp.Status)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := DecodeJSON(bytes.NewReader(raw), out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Ensure Client implements the client interfaces
var (
	_ core.Client          = (*Client)(nil)
	_ core.FeatureReporter = (*Client)(nil)
)
