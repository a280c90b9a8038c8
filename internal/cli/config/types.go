// Package config provides configuration management for the leapsqlite CLI.
//
// Configuration is layered with koanf: built-in defaults, then
// leapsqlite.yaml, then LEAPSQLITE_* environment variables, then
// explicitly set command-line flags.
package config

import (
	"github.com/leapstack-labs/leapsqlite/pkg/core"
)

// ConnectionConfig describes how to reach the database.
type ConnectionConfig struct {
	Driver   string `koanf:"driver"`
	Database string `koanf:"database"`
	Mode     string `koanf:"mode"`
	Dialect  string `koanf:"dialect"`

	// Remote store settings
	URL   string `koanf:"url"`
	Token string `koanf:"token"`

	Options map[string]string `koanf:"options"`
	Params  map[string]any    `koanf:"params"`
}

// AdapterConfig converts the connection settings into an adapter config.
func (c *ConnectionConfig) AdapterConfig() core.AdapterConfig {
	if c == nil {
		return core.AdapterConfig{}
	}
	return core.AdapterConfig{
		Database: c.Database,
		Mode:     core.OpenMode(c.Mode),
		Dialect:  c.Dialect,
		Driver:   c.Driver,
		URL:      c.URL,
		Token:    c.Token,
		Options:  c.Options,
		Params:   c.Params,
	}
}

// IsRemote reports whether the connection goes through the remote store.
func (c *ConnectionConfig) IsRemote() bool {
	return c != nil && c.Driver == RemoteDriver
}

// ServerConfig holds configuration for the store server.
type ServerConfig struct {
	Addr     string `koanf:"addr"`
	Token    string `koanf:"token"`
	MaxConns int    `koanf:"max_conns"`
}

// Config holds all CLI configuration options.
type Config struct {
	Connection    *ConnectionConfig    `koanf:"connection"`
	Server        *ServerConfig        `koanf:"server"`
	MigrationsDir string               `koanf:"migrations_dir"`
	HistoryFile   string               `koanf:"history_file"`
	Environment   string               `koanf:"environment"`
	Verbose       bool                 `koanf:"verbose"`
	OutputFormat  string               `koanf:"output"`
	Environments  map[string]EnvConfig `koanf:"environments"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
}

// EnvConfig holds environment-specific configuration overrides.
type EnvConfig struct {
	Connection    *ConnectionConfig `koanf:"connection"`
	MigrationsDir string            `koanf:"migrations_dir"`
}

// Default configuration values.
const (
	DefaultDriver        = core.DefaultDriver
	DefaultDialect       = core.DefaultDialect
	RemoteDriver         = "remote"
	DefaultMigrationsDir = "migrations"
	DefaultHistoryFile   = ".leapsqlite_history"
	DefaultServerAddr    = "127.0.0.1:7433"
	DefaultEnv           = "dev"
	DefaultOutput        = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)
