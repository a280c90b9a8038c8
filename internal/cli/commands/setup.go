package commands

import (
	"context"
	"log/slog"

	"github.com/leapstack-labs/leapsqlite/internal/cli/config"
	"github.com/leapstack-labs/leapsqlite/internal/cli/output"
	"github.com/leapstack-labs/leapsqlite/pkg/adapters/sqlite"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Adapter  *sqlite.Adapter
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with an adapter for the
// configured connection. The adapter connects on first use. The returned
// cleanup function must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func()) {
	cmdCtx := NewCommandContextWithoutAdapter(cmd)
	cmdCtx.Adapter = sqlite.New(cmdCtx.Cfg.Connection.AdapterConfig(), cmdCtx.Logger)

	cleanup := func() {
		if err := cmdCtx.Adapter.Disconnect(context.Background()); err != nil {
			cmdCtx.Logger.Warn("failed to disconnect", "error", err)
		}
	}
	return cmdCtx, cleanup
}

// NewCommandContextWithoutAdapter creates a CommandContext without an adapter.
// Useful for commands that don't need database access.
func NewCommandContextWithoutAdapter(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// getConfig returns the current configuration, or the defaults when none
// has been loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		Connection: &config.ConnectionConfig{
			Driver:  config.DefaultDriver,
			Dialect: config.DefaultDialect,
		},
		Server:        &config.ServerConfig{Addr: config.DefaultServerAddr},
		MigrationsDir: config.DefaultMigrationsDir,
		HistoryFile:   config.DefaultHistoryFile,
		Environment:   config.DefaultEnv,
		OutputFormat:  config.DefaultOutput,
	}
}
