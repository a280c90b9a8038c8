package config

import (
	"fmt"
	"os"

	"github.com/leapstack-labs/leapsqlite/pkg/adapter"
	"github.com/leapstack-labs/leapsqlite/pkg/core"
	"github.com/leapstack-labs/leapsqlite/pkg/dialect"
)

// Validate checks that the connection names a registered driver and
// dialect and that the driver's required settings are present.
func (c *Config) Validate() error {
	if c.Connection == nil {
		return fmt.Errorf("connection is required")
	}
	return c.Connection.Validate()
}

// Validate checks a connection config.
func (c *ConnectionConfig) Validate() error {
	if c.Driver == "" {
		return fmt.Errorf("connection driver is required")
	}
	if !adapter.IsRegistered(c.Driver) {
		return &adapter.UnknownDriverError{Name: c.Driver, Available: adapter.ListDrivers()}
	}
	if c.Dialect != "" {
		if _, ok := dialect.Get(c.Dialect); !ok {
			return fmt.Errorf("unknown dialect %q (available: %v)", c.Dialect, dialect.List())
		}
	}
	if !core.OpenMode(c.Mode).Valid() {
		return fmt.Errorf("unknown open mode %q (want rwc, rw, ro or memory)", c.Mode)
	}
	if c.IsRemote() && c.URL == "" {
		return fmt.Errorf("connection.url is required for the remote driver")
	}
	return nil
}

// ValidateMigrationsDir checks that the migrations directory exists.
func (c *Config) ValidateMigrationsDir() error {
	if _, err := os.Stat(c.MigrationsDir); os.IsNotExist(err) {
		return fmt.Errorf("migrations directory does not exist: %s\nHint: Create the directory or use --migrations-dir to specify a different path", c.MigrationsDir)
	}
	return nil
}
