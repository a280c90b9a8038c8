// Package adapter provides the driver contract and registry used by
// leapsqlite's connection adapters.
//
// A Driver opens sessions (core.Client) to a backing SQLite engine. Concrete
// drivers are in pkg/clients/ subdirectories and register themselves in
// init(). BaseSQLClient implements the database/sql parts shared by drivers.
package adapter

import (
	"context"

	"github.com/leapstack-labs/leapsqlite/pkg/core"
)

// Config is an alias for core.AdapterConfig.
type Config = core.AdapterConfig

// Driver opens sessions to a backing engine.
type Driver interface {
	// Open establishes a new session using the provided config.
	Open(ctx context.Context, cfg Config) (core.Client, error)

	// Features reports the SQL constructs sessions opened by this driver support.
	Features() core.Features

	// IntrospectWithPragma reports whether table structure is read with
	// PRAGMA table_info. Drivers that only route reads through SELECT
	// return false and are introspected with the pragma_table_info function.
	IntrospectWithPragma() bool
}
