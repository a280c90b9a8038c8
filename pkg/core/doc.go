// Package core defines the shared language of leapsqlite.
//
// This package contains:
//   - Connection configuration (AdapterConfig) and capabilities (Features)
//   - Schema entities (LogicalType, Field, Schema)
//   - The client contract consumed by adapters (Client, Result, Transactor)
//   - Normalized statement results (StatementKind, Response, Cursor)
//   - The error taxonomy (ConfigurationError, ConnectionError, QueryError)
//
// The Golden Rule: pkg/core imports ONLY the standard library.
// All other packages depend on core, not the reverse.
package core
