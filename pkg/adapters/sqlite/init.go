package sqlite

// Importing this package registers the SQLite dialect and both drivers.
import (
	_ "github.com/leapstack-labs/leapsqlite/pkg/adapters/sqlite/dialect"
	_ "github.com/leapstack-labs/leapsqlite/pkg/clients/embedded"
	_ "github.com/leapstack-labs/leapsqlite/pkg/clients/remote"
)
