package core

import "maps"

// Default configuration values.
const (
	DefaultDialect = "sqlite"
	DefaultDriver  = "embedded"
)

// OpenMode selects how the backing database is opened.
type OpenMode string

// OpenMode constants. The zero value behaves like ModeReadWriteCreate.
const (
	ModeReadWriteCreate OpenMode = "rwc"
	ModeReadWrite       OpenMode = "rw"
	ModeReadOnly        OpenMode = "ro"
	ModeMemory          OpenMode = "memory"
)

// Valid reports whether m is a known open mode (empty counts as the default).
func (m OpenMode) Valid() bool {
	switch m {
	case "", ModeReadWriteCreate, ModeReadWrite, ModeReadOnly, ModeMemory:
		return true
	default:
		return false
	}
}

// AdapterConfig holds configuration for connecting to a database.
// It is read once when an adapter is constructed.
type AdapterConfig struct {
	// Database is the file path (or ":memory:") for the embedded driver,
	// or the database name on a remote store.
	Database string
	Mode     OpenMode
	Dialect  string
	Driver   string

	// Client is an optional pre-opened client. When set, Connect adopts it
	// instead of opening a new session.
	Client Client

	// UseAlias tells statement builders to qualify columns with table aliases.
	UseAlias bool

	// Remote store settings
	URL   string
	Token string

	Options map[string]string
	Params  map[string]any
}

// Clone returns a copy of the config that does not share its maps.
func (c AdapterConfig) Clone() AdapterConfig {
	out := c
	out.Options = maps.Clone(c.Options)
	out.Params = maps.Clone(c.Params)
	return out
}

// Features reports the SQL constructs a backend supports.
type Features struct {
	Arrays       bool
	Transactions bool
	Savepoints   bool
	Booleans     bool
}
