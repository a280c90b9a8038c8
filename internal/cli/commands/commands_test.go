// Package commands_test provides tests for CLI command creation.
package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/leapsqlite/internal/cli/config"
)

func TestNewDescribeCommand(t *testing.T) {
	cmd := NewDescribeCommand()

	assert.Equal(t, "describe <table>", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("format"), "flag %q should exist", "format")
	assert.Error(t, cmd.Args(cmd, nil), "a table name is required")
}

func TestNewSourcesCommand(t *testing.T) {
	cmd := NewSourcesCommand()

	assert.Equal(t, "sources", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")

	// Verify alias exists
	assert.NotEmpty(t, cmd.Aliases, "sources command should have aliases")
	assert.Equal(t, "tables", cmd.Aliases[0], "sources command should have 'tables' alias")
}

func TestGetConfigDefaults(t *testing.T) {
	config.ResetConfig()
	cfg := getConfig()

	assert.Equal(t, "embedded", cfg.Connection.Driver)
	assert.Equal(t, "sqlite", cfg.Connection.Dialect)
	assert.Equal(t, "migrations", cfg.MigrationsDir)
	assert.NotEmpty(t, cfg.Server.Addr)
}
