package embedded

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"github.com/leapstack-labs/leapsqlite/pkg/adapter"
	"github.com/leapstack-labs/leapsqlite/pkg/core"
)

// DriverName is the registry name of the embedded driver.
const DriverName = core.DefaultDriver

func init() {
	adapter.Register(DriverName, func(logger *slog.Logger) adapter.Driver { return NewDriver(logger) })
}

// Driver opens embedded SQLite sessions.
type Driver struct {
	logger *slog.Logger
}

// NewDriver creates an embedded driver.
// If logger is nil, a discard logger is used.
func NewDriver(logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Driver{logger: logger}
}

// Features reports the capabilities of embedded sessions.
func (d *Driver) Features() core.Features {
	return features
}

// IntrospectWithPragma reports that embedded sessions read PRAGMA table_info directly.
func (d *Driver) IntrospectWithPragma() bool {
	return true
}

// Open opens a session on the configured database file.
// Use ":memory:" as the database for an in-memory database.
func (d *Driver) Open(ctx context.Context, cfg adapter.Config) (core.Client, error) {
	params, err := decodeParams(cfg.Params)
	if err != nil {
		return nil, err
	}

	dsn, err := BuildDSN(cfg)
	if err != nil {
		return nil, err
	}

	d.logger.Debug("opening sqlite session",
		slog.String("dsn", dsn),
		slog.String("driver", driverType))

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite connection: %w", err)
	}

	// One connection keeps BEGIN/COMMIT and :memory: state on a single session.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := applyParams(ctx, db, params); err != nil {
		_ = db.Close()
		return nil, err
	}

	return New(db, d.logger), nil
}

// applyParams runs the PRAGMA statements requested by params.
func applyParams(ctx context.Context, db *sql.DB, p Params) error {
	var stmts []string
	if p.ForeignKeys != nil {
		if *p.ForeignKeys {
			stmts = append(stmts, "PRAGMA foreign_keys = ON")
		} else {
			stmts = append(stmts, "PRAGMA foreign_keys = OFF")
		}
	}
	if p.BusyTimeoutMS > 0 {
		stmts = append(stmts, "PRAGMA busy_timeout = "+strconv.Itoa(p.BusyTimeoutMS))
	}

	names := make([]string, 0, len(p.Pragmas))
	for name := range p.Pragmas {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !isPragmaName(name) {
			return fmt.Errorf("invalid pragma name %q", name)
		}
		stmts = append(stmts, fmt.Sprintf("PRAGMA %s = %s", name, p.Pragmas[name]))
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply %q: %w", stmt, err)
		}
	}
	return nil
}

func isPragmaName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r != '_' && (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

// Ensure Driver implements adapter.Driver interface
var _ adapter.Driver = (*Driver)(nil)
