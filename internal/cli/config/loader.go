package config

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// loggerKey is used to store logger in context.
type loggerKey struct{}

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

// envPrefix is the prefix of environment variables read into the config.
const envPrefix = "LEAPSQLITE_"

// configNames are the config file names searched for, in order.
var configNames = []string{"leapsqlite.yaml", "leapsqlite.yml"}

// flagKeys maps flag names to config keys when they differ from the
// snake_case form of the flag.
var flagKeys = map[string]string{
	"database":  "connection.database",
	"driver":    "connection.driver",
	"mode":      "connection.mode",
	"dialect":   "connection.dialect",
	"url":       "connection.url",
	"addr":      "server.addr",
	"max-conns": "server.max_conns",
	"env":       "environment",
}

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config
)

// configExistsIn returns the config file in dir, if any.
func configExistsIn(dir string) string {
	for _, name := range configNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// findProjectRootUpward searches upward from startDir for a config file.
// Returns empty string if not found within maxUpwardSearchLevels.
func findProjectRootUpward(startDir string) string {
	dir := startDir
	for range maxUpwardSearchLevels {
		if configExistsIn(dir) != "" {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// inferProjectRoot determines the project root.
// Priority:
//  1. Explicit --project-dir flag
//  2. Directory of an explicit --config file
//  3. Search upward from CWD for leapsqlite.yaml
//  4. Current working directory
func inferProjectRoot(cfgFile string, flags *pflag.FlagSet) string {
	if flags != nil && flags.Changed("project-dir") {
		if projectDir, _ := flags.GetString("project-dir"); projectDir != "" {
			if abs, err := filepath.Abs(projectDir); err == nil {
				return abs
			}
			return filepath.Clean(projectDir)
		}
	}

	if cfgFile != "" {
		if abs, err := filepath.Abs(cfgFile); err == nil {
			return filepath.Dir(abs)
		}
	}

	cwd, err := os.Getwd()
	if err != nil || cwd == "" {
		return "."
	}
	if root := findProjectRootUpward(cwd); root != "" {
		return root
	}
	return cwd
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// resolveDatabasePath resolves an embedded database path. In-memory names
// and file: URIs are left alone.
func resolveDatabasePath(path, baseDir string) string {
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		return path
	}
	return resolvePathRelativeTo(path, baseDir)
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	return LoadConfigWithEnv(cfgFile, "", flags)
}

// LoadConfigWithEnv loads configuration with an optional environment
// override. The selected environment's connection settings are merged over
// the base connection.
func LoadConfigWithEnv(cfgFile string, envOverride string, flags *pflag.FlagSet) (*Config, error) {
	k = koanf.New(".")

	projectRoot := inferProjectRoot(cfgFile, flags)

	// Paths given as flags are relative to CWD, not the project root.
	var flagDatabase, flagMigrationsDir string
	if flags != nil {
		if flags.Changed("database") {
			if v, _ := flags.GetString("database"); v != "" {
				flagDatabase = resolveDatabasePath(v, mustGetwd())
			}
		}
		if flags.Changed("migrations-dir") {
			if v, _ := flags.GetString("migrations-dir"); v != "" {
				flagMigrationsDir, _ = filepath.Abs(v)
			}
		}
	}

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]any{
		"connection.driver":  DefaultDriver,
		"connection.dialect": DefaultDialect,
		"server.addr":        DefaultServerAddr,
		"migrations_dir":     DefaultMigrationsDir,
		"history_file":       DefaultHistoryFile,
		"environment":        DefaultEnv,
		"verbose":            false,
		"output":             DefaultOutput,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	if cfgFile == "" {
		cfgFile = configExistsIn(projectRoot)
	}
	configFileUsed = cfgFile
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Load environment variables (LEAPSQLITE_ prefix)
	// Transform: LEAPSQLITE_CONNECTION__DATABASE -> connection.database
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority - overrides env vars and config file)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			if key, ok := flagKeys[f.Name]; ok {
				return key, posflag.FlagVal(flags, f)
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.ProjectRoot = projectRoot
	if cfg.Connection == nil {
		cfg.Connection = &ConnectionConfig{Driver: DefaultDriver, Dialect: DefaultDialect}
	}
	if cfg.Server == nil {
		cfg.Server = &ServerConfig{Addr: DefaultServerAddr}
	}

	// 6. Apply the selected environment
	envName := cfg.Environment
	if envOverride != "" {
		envName = envOverride
	}
	if envCfg, ok := cfg.Environments[envName]; ok {
		if envCfg.Connection != nil {
			cfg.Connection = MergeConnectionConfig(cfg.Connection, envCfg.Connection)
		}
		if envCfg.MigrationsDir != "" {
			cfg.MigrationsDir = envCfg.MigrationsDir
		}
	}

	// Flags win over environment overrides too.
	if flags != nil {
		for name, key := range flagKeys {
			if !flags.Changed(name) || !strings.HasPrefix(key, "connection.") {
				continue
			}
			if v, _ := flags.GetString(name); v != "" {
				setConnectionField(cfg.Connection, strings.TrimPrefix(key, "connection."), v)
			}
		}
	}

	// 7. Expand secrets and resolve paths
	expandConnectionEnvVars(cfg.Connection)
	cfg.Server.Token = expandEnvVars(cfg.Server.Token)

	if flagDatabase != "" {
		cfg.Connection.Database = flagDatabase
	} else if !cfg.Connection.IsRemote() {
		cfg.Connection.Database = resolveDatabasePath(cfg.Connection.Database, projectRoot)
	}
	if flagMigrationsDir != "" {
		cfg.MigrationsDir = flagMigrationsDir
	} else {
		cfg.MigrationsDir = resolvePathRelativeTo(cfg.MigrationsDir, projectRoot)
	}
	cfg.HistoryFile = resolvePathRelativeTo(cfg.HistoryFile, projectRoot)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid connection configuration: %w", err)
	}

	currentConfig = &cfg
	return &cfg, nil
}

func mustGetwd() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}

func setConnectionField(c *ConnectionConfig, field, value string) {
	switch field {
	case "database":
		c.Database = value
	case "driver":
		c.Driver = value
	case "mode":
		c.Mode = value
	case "dialect":
		c.Dialect = value
	case "url":
		c.URL = value
	}
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the currently loaded configuration.
func GetCurrentConfig() *Config {
	return currentConfig
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() any {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})
}

// expandConnectionEnvVars expands environment variables in connection fields
// that typically carry secrets or host-specific values.
func expandConnectionEnvVars(c *ConnectionConfig) {
	if c == nil {
		return
	}
	c.Database = expandEnvVars(c.Database)
	c.URL = expandEnvVars(c.URL)
	c.Token = expandEnvVars(c.Token)
}

// MergeConnectionConfig merges two connection configs, with override taking precedence.
func MergeConnectionConfig(base, override *ConnectionConfig) *ConnectionConfig {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	merged := &ConnectionConfig{
		Driver:   base.Driver,
		Database: base.Database,
		Mode:     base.Mode,
		Dialect:  base.Dialect,
		URL:      base.URL,
		Token:    base.Token,
		Options:  make(map[string]string),
		Params:   make(map[string]any),
	}
	maps.Copy(merged.Options, base.Options)
	maps.Copy(merged.Params, base.Params)

	if override.Driver != "" {
		merged.Driver = override.Driver
	}
	if override.Database != "" {
		merged.Database = override.Database
	}
	if override.Mode != "" {
		merged.Mode = override.Mode
	}
	if override.Dialect != "" {
		merged.Dialect = override.Dialect
	}
	if override.URL != "" {
		merged.URL = override.URL
	}
	if override.Token != "" {
		merged.Token = override.Token
	}
	maps.Copy(merged.Options, override.Options)
	maps.Copy(merged.Params, override.Params)

	return merged
}
