// Package sqlite provides the SQLite connection adapter for leapsqlite.
//
// The adapter connects lazily through a registered driver (embedded or
// remote), classifies statements by their leading keyword and routes them
// to the session, normalizes results into cursors, introspects tables into
// field descriptors, and converts values between logical types and SQLite.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/leapstack-labs/leapsqlite/pkg/adapter"
	"github.com/leapstack-labs/leapsqlite/pkg/core"
	"github.com/leapstack-labs/leapsqlite/pkg/dialect"
)

// errNoDatabase is returned by Connect when neither a database nor a client is configured.
const errNoDatabase = "no database name has been configured"

// errDisconnected is reported to a connect that was overtaken by Disconnect.
var errDisconnected = errors.New("disconnected while connecting")

// Adapter connects the generic data layer to a SQLite session.
type Adapter struct {
	cfg    core.AdapterConfig
	logger *slog.Logger

	conv      Converter
	dialect   *dialect.Dialect
	formatter *dialect.Formatter
	driver    adapter.Driver

	// configErr is reported by Connect; set when the config names an
	// unknown dialect or driver.
	configErr error

	connect singleflight.Group

	mu        sync.RWMutex
	client    core.Client
	connected bool
	gen       uint64 // bumped by Disconnect
	lastID    int64
	hasLastID bool
}

// New creates an adapter for cfg. The config is copied; later changes to
// the caller's value have no effect. If logger is nil, a discard logger is used.
func New(cfg core.AdapterConfig, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	cfg = cfg.Clone()
	if cfg.Dialect == "" {
		cfg.Dialect = core.DefaultDialect
	}
	if cfg.Driver == "" {
		cfg.Driver = core.DefaultDriver
	}

	a := &Adapter{
		cfg:    cfg,
		logger: logger.With("component", "sqlite"),
	}

	d, ok := dialect.Get(cfg.Dialect)
	if !ok {
		a.configErr = &core.ConfigurationError{
			Message: fmt.Sprintf("unknown dialect %q (available: %v)", cfg.Dialect, dialect.List()),
		}
		return a
	}
	a.dialect = d
	a.formatter = dialect.NewFormatter(d, a.conv)

	drv, err := adapter.NewDriver(cfg, logger)
	switch {
	case err == nil:
		a.driver = drv
	case cfg.Client == nil:
		a.configErr = &core.ConfigurationError{Message: err.Error()}
	}
	return a
}

// Config returns a copy of the adapter's configuration.
func (a *Adapter) Config() core.AdapterConfig {
	return a.cfg.Clone()
}

// Dialect returns the SQL dialect used for quoting and type mapping.
func (a *Adapter) Dialect() *dialect.Dialect {
	return a.dialect
}

// Converter returns the adapter's type converter.
func (a *Adapter) Converter() Converter {
	return a.conv
}

// Connect returns the session, opening it on first use. Concurrent callers
// share a single open that no single caller's cancellation aborts; each
// caller stops waiting when its own ctx is done. A failed open leaves the
// adapter disconnected so the next call retries.
func (a *Adapter) Connect(ctx context.Context) (core.Client, error) {
	if c, ok := a.Client(); ok {
		return c, nil
	}
	if a.configErr != nil {
		return nil, a.configErr
	}

	ch := a.connect.DoChan("connect", func() (any, error) {
		return a.open(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			a.logger.Debug("joined in-flight connect")
		}
		return res.Val.(core.Client), nil
	}
}

func (a *Adapter) open(ctx context.Context) (core.Client, error) {
	// A caller may have completed the connect between the fast path and Do.
	a.mu.RLock()
	client, connected, gen := a.client, a.connected, a.gen
	a.mu.RUnlock()
	if connected {
		return client, nil
	}

	opened := false
	switch {
	case a.cfg.Client != nil:
		a.logger.Debug("adopting supplied client")
		client = a.cfg.Client
	case a.cfg.Database == "":
		return nil, &core.ConfigurationError{Message: errNoDatabase}
	default:
		a.logger.Debug("connecting", "driver", a.cfg.Driver, "database", a.cfg.Database)
		c, err := a.driver.Open(ctx, a.cfg)
		if err != nil {
			var cfgErr *core.ConfigurationError
			if errors.As(err, &cfgErr) {
				return nil, cfgErr
			}
			a.logger.Debug("connect failed", "error", err)
			return nil, &core.ConnectionError{Err: err}
		}
		client, opened = c, true
	}

	a.mu.Lock()
	if a.gen != gen {
		a.mu.Unlock()
		a.logger.Debug("discarding session opened across a disconnect")
		if opened {
			_ = client.Close()
		}
		return nil, &core.ConnectionError{Err: errDisconnected}
	}
	a.client = client
	a.connected = true
	a.mu.Unlock()
	return client, nil
}

// Connected reports whether a session is open.
func (a *Adapter) Connected() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.connected
}

// Client returns the open session, if any.
func (a *Adapter) Client() (core.Client, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.client, a.connected
}

// Disconnect closes the session. It is a no-op when none is open. The
// session is released even when closing it fails. LastInsertID survives.
func (a *Adapter) Disconnect(_ context.Context) error {
	a.mu.Lock()
	client := a.client
	a.client = nil
	a.connected = false
	a.gen++
	a.mu.Unlock()

	if client == nil {
		return nil
	}
	a.logger.Debug("disconnecting")
	if err := client.Close(); err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}
	return nil
}

// LastInsertID returns the id reported by the most recent successful
// insert. ok is false until an insert has reported one.
func (a *Adapter) LastInsertID() (id int64, ok bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastID, a.hasLastID
}

func (a *Adapter) setLastInsertID(id int64) {
	a.mu.Lock()
	a.lastID = id
	a.hasLastID = true
	a.mu.Unlock()
}

// Features reports the SQL constructs the backend supports. A session
// that reports its own features takes precedence over the driver.
func (a *Adapter) Features() core.Features {
	if c, ok := a.Client(); ok {
		if fr, ok := c.(core.FeatureReporter); ok {
			return fr.Features()
		}
	}
	if fr, ok := a.cfg.Client.(core.FeatureReporter); ok {
		return fr.Features()
	}
	if a.driver != nil {
		return a.driver.Features()
	}
	return core.Features{}
}

// introspectWithPragma reports whether tables are read with PRAGMA table_info.
func (a *Adapter) introspectWithPragma() bool {
	type pragmaIntrospector interface{ IntrospectWithPragma() bool }

	if a.cfg.Client != nil {
		if pi, ok := a.cfg.Client.(pragmaIntrospector); ok {
			return pi.IntrospectWithPragma()
		}
		return true
	}
	if a.driver != nil {
		return a.driver.IntrospectWithPragma()
	}
	return true
}

// Cast converts a value returned by the backend into field f's Go type.
func (a *Adapter) Cast(f core.Field, v any) (any, error) {
	return a.conv.ToApplication(f, v)
}

// Literal renders v as a SQL literal for field f.
func (a *Adapter) Literal(f core.Field, v any) (string, error) {
	if a.formatter == nil {
		return "", a.configErr
	}
	return a.formatter.Value(v, f)
}

// Quote quotes an identifier for the dialect.
func (a *Adapter) Quote(name string) string {
	if a.formatter == nil {
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	}
	return a.formatter.Quote(name)
}
